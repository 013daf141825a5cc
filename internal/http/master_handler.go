package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/onestomanys/orders-api/internal/master"
)

type MasterHandler struct {
	repo master.Repository
}

func NewMasterHandler(repo master.Repository) *MasterHandler {
	return &MasterHandler{repo: repo}
}

func respondMasterError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, master.ErrMasterNotFound):
		writeError(w, http.StatusNotFound, "Master not found")
	case errors.Is(err, master.ErrDetailNotFound):
		writeError(w, http.StatusNotFound, "Detail not found")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (h *MasterHandler) ListMasters(w http.ResponseWriter, r *http.Request) {
	masters, err := h.repo.ListMasters(r.Context())
	if err != nil {
		respondMasterError(w, err)
		return
	}
	if masters == nil {
		masters = []master.Master{}
	}
	writeJSON(w, http.StatusOK, masters)
}

func (h *MasterHandler) GetMaster(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "masterID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid master id")
		return
	}

	m, err := h.repo.GetMaster(r.Context(), id)
	if err != nil {
		respondMasterError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (h *MasterHandler) CreateMaster(w http.ResponseWriter, r *http.Request) {
	var m master.Master
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.repo.CreateMaster(r.Context(), &m); err != nil {
		respondMasterError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (h *MasterHandler) UpdateMaster(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "masterID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid master id")
		return
	}

	var m master.Master
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	m.ID = id

	if err := h.repo.UpdateMaster(r.Context(), &m); err != nil {
		respondMasterError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (h *MasterHandler) DeleteMaster(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "masterID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid master id")
		return
	}

	if err := h.repo.DeleteMaster(r.Context(), id); err != nil {
		respondMasterError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Master deleted"})
}

func (h *MasterHandler) ListDetails(w http.ResponseWriter, r *http.Request) {
	details, err := h.repo.ListDetails(r.Context())
	if err != nil {
		respondMasterError(w, err)
		return
	}
	if details == nil {
		details = []master.Detail{}
	}
	writeJSON(w, http.StatusOK, details)
}

func (h *MasterHandler) ListDetailsForMaster(w http.ResponseWriter, r *http.Request) {
	masterID, err := pathID(r, "masterID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid master id")
		return
	}

	details, err := h.repo.ListDetailsForMaster(r.Context(), masterID)
	if err != nil {
		respondMasterError(w, err)
		return
	}
	if details == nil {
		details = []master.Detail{}
	}
	writeJSON(w, http.StatusOK, details)
}

func (h *MasterHandler) GetDetail(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "detailID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid detail id")
		return
	}

	d, err := h.repo.GetDetail(r.Context(), id)
	if err != nil {
		respondMasterError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *MasterHandler) CreateDetail(w http.ResponseWriter, r *http.Request) {
	var d master.Detail
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.repo.CreateDetail(r.Context(), &d); err != nil {
		respondMasterError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *MasterHandler) UpdateDetail(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "detailID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid detail id")
		return
	}

	var d master.Detail
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	d.ID = id

	if err := h.repo.UpdateDetail(r.Context(), &d); err != nil {
		respondMasterError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *MasterHandler) DeleteDetail(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "detailID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid detail id")
		return
	}

	if err := h.repo.DeleteDetail(r.Context(), id); err != nil {
		respondMasterError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Detail deleted"})
}
