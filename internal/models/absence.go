package models

import "time"

// AbsenceStatus is the resolution lifecycle of a declared absence.
type AbsenceStatus string

const (
	StatusUncovered       AbsenceStatus = "UNCOVERED"
	StatusClassDelayed    AbsenceStatus = "CLASS_DELAYED"
	StatusClassCancelled  AbsenceStatus = "CLASS_CANCELLED"
	StatusSubstituteFound AbsenceStatus = "SUBSTITUTE_FOUND"
)

// Valid reports whether the status is a known lifecycle state.
func (s AbsenceStatus) Valid() bool {
	switch s {
	case StatusUncovered, StatusClassDelayed, StatusClassCancelled, StatusSubstituteFound:
		return true
	}
	return false
}

// Absence records one teacher not attending one lesson on one date.
// SubstituteAvailabilityID is set iff Status is SUBSTITUTE_FOUND.
type Absence struct {
	ID                       string        `db:"id" json:"id"`
	LessonID                 string        `db:"lesson_id" json:"lesson_id"`
	AbsenceDate              time.Time     `db:"absence_date" json:"absence_date"`
	Status                   AbsenceStatus `db:"status" json:"status"`
	SubstituteAvailabilityID *string       `db:"substitute_availability_id" json:"substitute_availability_id,omitempty"`
	CreatedAt                time.Time     `db:"created_at" json:"created_at"`
}

// AbsentClass is one absent lesson slot in the daily dashboard view.
type AbsentClass struct {
	ID                string        `json:"id"`
	SubstituteTeacher *string       `json:"substitute_teacher,omitempty"`
	TimeOfDay         string        `json:"time_of_day"`
	Room              *string       `json:"room,omitempty"`
	Group             *string       `json:"group,omitempty"`
	Status            AbsenceStatus `json:"status"`
}

// DayAbsence groups a teacher's absent classes for one date.
type DayAbsence struct {
	AbsentTeacher string        `json:"absent_teacher"`
	Classes       []AbsentClass `json:"classes"`
}

// AbsenceRow is the flat projection the dashboard query returns before
// grouping by absent teacher.
type AbsenceRow struct {
	ID                string        `db:"id"`
	AbsentTeacherID   string        `db:"absent_teacher_id"`
	AbsentTeacher     string        `db:"absent_teacher"`
	TimeOfDay         string        `db:"time_of_day"`
	Room              *string       `db:"room"`
	Group             *string       `db:"group_name"`
	Status            AbsenceStatus `db:"status"`
	SubstituteTeacher *string       `db:"substitute_teacher"`
}
