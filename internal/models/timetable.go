package models

// AvailabilityKind classifies a declared free slot: ordinary free time or
// owed make-up hours. Both are valid substitute-coverage signals.
type AvailabilityKind string

const (
	KindAvailability  AvailabilityKind = "AVAILABILITY"
	KindRecoveryHours AvailabilityKind = "RECOVERY_HOURS"
)

// Room is a named room within one import scope.
type Room struct {
	ID       string `db:"id" json:"id"`
	Name     string `db:"name" json:"name"`
	ImportID string `db:"import_id" json:"import_id"`
}

// Group is a named class group within one import scope.
type Group struct {
	ID       string `db:"id" json:"id"`
	Name     string `db:"name" json:"name"`
	ImportID string `db:"import_id" json:"import_id"`
}

// Teacher is a teacher referenced by a timetable, scoped to one import.
// The same full name in two imports is two distinct rows.
type Teacher struct {
	ID       string `db:"id" json:"id"`
	FullName string `db:"full_name" json:"full_name"`
	ImportID string `db:"import_id" json:"import_id"`
}

// Lesson is one scheduled teaching slot. Day is ISO 1-7, time of day is a
// zero-padded "HH:MM" string so slot equality is plain string equality.
type Lesson struct {
	ID              string  `db:"id" json:"id"`
	Day             int     `db:"day" json:"day"`
	TimeOfDay       string  `db:"time_of_day" json:"time_of_day"`
	DurationMinutes *int    `db:"duration_minutes" json:"duration_minutes,omitempty"`
	RoomID          *string `db:"room_id" json:"room_id,omitempty"`
	GroupID         *string `db:"group_id" json:"group_id,omitempty"`
	TeacherID       string  `db:"teacher_id" json:"teacher_id"`
}

// Availability is a teacher-declared free or make-up slot.
type Availability struct {
	ID        string           `db:"id" json:"id"`
	Day       int              `db:"day" json:"day"`
	TimeOfDay string           `db:"time_of_day" json:"time_of_day"`
	Kind      AvailabilityKind `db:"kind" json:"kind"`
	TeacherID string           `db:"teacher_id" json:"teacher_id"`
}

// Candidate is a teacher able to cover an absent lesson's exact slot.
type Candidate struct {
	TeacherID string           `db:"teacher_id" json:"teacher_id"`
	FullName  string           `db:"full_name" json:"full_name"`
	Kind      AvailabilityKind `db:"kind" json:"kind"`
}

// TeacherSummary is a teacher row returned by roster queries.
type TeacherSummary struct {
	ID       string `db:"id" json:"id"`
	FullName string `db:"full_name" json:"full_name"`
}
