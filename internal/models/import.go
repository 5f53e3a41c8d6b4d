package models

import "time"

// ImportMode selects the transaction outcome of a timetable import.
// Both modes execute every write so that a dry run surfaces the same
// constraint errors a real import would; dry_run always rolls back.
type ImportMode string

const (
	ImportModeDryRun ImportMode = "dry_run"
	ImportModeWrite  ImportMode = "write"
)

// Valid reports whether the mode is one of the two accepted values.
func (m ImportMode) Valid() bool {
	return m == ImportModeDryRun || m == ImportModeWrite
}

// Import represents one ingested timetable batch. All rooms, groups,
// teachers, lessons and availabilities are scoped to exactly one import;
// deleting the import cascades to everything it owns.
type Import struct {
	ID       string    `db:"id" json:"id"`
	UserID   string    `db:"user_id" json:"user_id"`
	FileName string    `db:"file_name" json:"file_name"`
	FileHash string    `db:"file_hash" json:"file_hash"`
	ImportTS time.Time `db:"import_ts" json:"import_ts"`
	BeginTS  time.Time `db:"begin_ts" json:"begin_ts"`
	EndTS    time.Time `db:"end_ts" json:"end_ts"`
}

// ImportMeta carries the caller-supplied parameters of one import call.
type ImportMeta struct {
	FileName string     `json:"file_name" validate:"required"`
	Mode     ImportMode `json:"mode" validate:"required"`
	BeginTS  time.Time  `json:"begin_ts" validate:"required"`
	EndTS    time.Time  `json:"end_ts" validate:"required"`
}
