package master

// Master is the parent of the legacy master/detail pair. No derived
// aggregate, kept for backward compatibility.
type Master struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Detail belongs to exactly one Master.
type Detail struct {
	ID          int64  `json:"id"`
	MasterID    int64  `json:"master_id"`
	Description string `json:"description"`
}
