package timetable

import (
	"fmt"

	"github.com/supplenze/supplenze-api/internal/models"
	appErrors "github.com/supplenze/supplenze-api/pkg/errors"
)

// LessonRecord is a normalized teaching slot. Multi-valued teacher, group
// and room lists collapse to their first element: one lesson is taught by
// one teacher in one room to one group.
type LessonRecord struct {
	Day             int
	TimeOfDay       string
	DurationMinutes *int
	Teacher         *string
	Group           *string
	Room            *string
}

// AvailabilityRecord is a normalized free or make-up slot declared by
// exactly one teacher.
type AvailabilityRecord struct {
	Day       int
	TimeOfDay string
	Kind      models.AvailabilityKind
	Teacher   string
}

// Batch is the outcome of normalizing a full export: every record lands
// in exactly one of the two lists.
type Batch struct {
	Lessons        []LessonRecord
	Availabilities []AvailabilityRecord
}

// classification is the single place the availability signals are
// evaluated: a record is availability when its subject is one of the two
// sentinels or any of its rooms carries the reserved prefix.
type classification struct {
	availability bool
	kind         models.AvailabilityKind
}

func classify(record RawRecord) (classification, error) {
	kind := models.KindAvailability
	sentinel := false
	if record.Subject != nil {
		switch *record.Subject {
		case SubjectAvailability:
			kind = models.KindAvailability
			sentinel = true
		case SubjectRecoveryHours:
			kind = models.KindRecoveryHours
			sentinel = true
		}
	}

	tagged := false
	for _, room := range record.Rooms {
		if len(room) >= len(AvailabilityRoomTag) && room[:len(AvailabilityRoomTag)] == AvailabilityRoomTag {
			tagged = true
			break
		}
	}

	if !sentinel && !tagged {
		return classification{}, nil
	}
	if !sentinel && record.Subject != nil {
		// A reserved-prefix room with an ordinary subject has no
		// defensible availability kind.
		return classification{}, appErrors.Clone(appErrors.ErrParse, fmt.Sprintf("invalid availability subject %q", *record.Subject))
	}
	return classification{availability: true, kind: kind}, nil
}

// Normalize converts a full raw batch into typed records. It fails fast:
// the first malformed record aborts the pass, with the record index in
// the error message.
func Normalize(records []RawRecord) (*Batch, error) {
	batch := &Batch{}
	for i, record := range records {
		class, err := classify(record)
		if err != nil {
			return nil, indexed(err, i)
		}
		if class.availability {
			availability, err := toAvailability(record, class.kind)
			if err != nil {
				return nil, indexed(err, i)
			}
			batch.Availabilities = append(batch.Availabilities, *availability)
			continue
		}
		lesson, err := toLesson(record)
		if err != nil {
			return nil, indexed(err, i)
		}
		batch.Lessons = append(batch.Lessons, *lesson)
	}
	return batch, nil
}

func toLesson(record RawRecord) (*LessonRecord, error) {
	if record.Day == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "lesson record has no day")
	}
	day, err := ParseDay(*record.Day)
	if err != nil {
		return nil, err
	}
	if record.Time == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "lesson record has no time")
	}
	timeOfDay, err := ParseTimeOfDay(*record.Time)
	if err != nil {
		return nil, err
	}

	lesson := &LessonRecord{
		Day:       day,
		TimeOfDay: timeOfDay,
		Teacher:   first(record.Teachers),
		Group:     first(record.Groups),
		Room:      first(record.Rooms),
	}
	if record.Duration != nil {
		minutes, err := ParseDuration(*record.Duration)
		if err != nil {
			return nil, err
		}
		lesson.DurationMinutes = &minutes
	}
	return lesson, nil
}

func toAvailability(record RawRecord, kind models.AvailabilityKind) (*AvailabilityRecord, error) {
	if len(record.Teachers) != 1 {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("availability record has %d teachers, want exactly 1", len(record.Teachers)))
	}
	if record.Day == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "availability record has no day")
	}
	day, err := ParseDay(*record.Day)
	if err != nil {
		return nil, err
	}
	if record.Time == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "availability record has no time")
	}
	timeOfDay, err := ParseTimeOfDay(*record.Time)
	if err != nil {
		return nil, err
	}

	return &AvailabilityRecord{
		Day:       day,
		TimeOfDay: timeOfDay,
		Kind:      kind,
		Teacher:   record.Teachers[0],
	}, nil
}

func first(values []string) *string {
	if len(values) == 0 {
		return nil
	}
	return &values[0]
}

func indexed(err error, i int) error {
	appErr := appErrors.FromError(err)
	return appErrors.Clone(appErr, fmt.Sprintf("record %d: %s", i, appErr.Message))
}
