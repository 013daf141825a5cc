package db

import _ "embed"

// Schema holds the bootstrap SQL executed idempotently at startup.
//
//go:embed schema.sql
var Schema string
