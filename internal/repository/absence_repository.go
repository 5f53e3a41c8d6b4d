package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/supplenze/supplenze-api/internal/models"
)

// AbsenceRepository manages declared absences. Ownership is always
// enforced through the lesson -> teacher -> import -> user join, so a
// foreign caller simply sees no rows.
type AbsenceRepository struct {
	db *sqlx.DB
}

// NewAbsenceRepository constructs an AbsenceRepository.
func NewAbsenceRepository(db *sqlx.DB) *AbsenceRepository {
	return &AbsenceRepository{db: db}
}

// FindLessonIDsForSlot returns the ids of the teacher's lessons on the
// given ISO day whose time falls inside [begin, end], scoped to imports
// owned by the caller.
func (r *AbsenceRepository) FindLessonIDsForSlot(ctx context.Context, userID, teacherID string, day int, begin, end string) ([]string, error) {
	const query = `SELECT l.id
		FROM lessons l
		JOIN teachers t ON l.teacher_id = t.id
		JOIN imports i ON t.import_id = i.id
		WHERE l.teacher_id = $1
		  AND l.day = $2
		  AND l.time_of_day BETWEEN $3 AND $4
		  AND i.user_id = $5`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, teacherID, day, begin, end, userID); err != nil {
		return nil, fmt.Errorf("find lessons for slot: %w", err)
	}
	return ids, nil
}

// Create inserts one absence row for a lesson.
func (r *AbsenceRepository) Create(ctx context.Context, absence *models.Absence) error {
	if absence.ID == "" {
		absence.ID = uuid.NewString()
	}
	if absence.Status == "" {
		absence.Status = models.StatusUncovered
	}
	if absence.CreatedAt.IsZero() {
		absence.CreatedAt = time.Now().UTC()
	}

	const query = `INSERT INTO absences (id, lesson_id, absence_date, status, substitute_availability_id, created_at)
		VALUES (:id, :lesson_id, :absence_date, :status, :substitute_availability_id, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, absence); err != nil {
		return fmt.Errorf("create absence: %w", err)
	}
	return nil
}

// ListByDate returns the flat dashboard rows for one date: every absence
// of the caller's active import for that date, with room, group and any
// chosen substitute resolved. The active import is the one whose
// validity window contains the date, latest import_ts winning.
func (r *AbsenceRepository) ListByDate(ctx context.Context, userID string, date time.Time) ([]models.AbsenceRow, error) {
	const query = `WITH active_import AS (
			SELECT id FROM imports
			WHERE user_id = $1 AND begin_ts <= $2 AND end_ts >= $2
			ORDER BY import_ts DESC
			LIMIT 1
		)
		SELECT ab.id             AS id,
		       t.id              AS absent_teacher_id,
		       t.full_name       AS absent_teacher,
		       l.time_of_day     AS time_of_day,
		       r.name            AS room,
		       g.name            AS group_name,
		       ab.status         AS status,
		       st.full_name      AS substitute_teacher
		FROM absences ab
		JOIN lessons l ON ab.lesson_id = l.id
		JOIN teachers t ON l.teacher_id = t.id
		JOIN active_import ON t.import_id = active_import.id
		LEFT JOIN rooms r ON l.room_id = r.id
		LEFT JOIN groups g ON l.group_id = g.id
		LEFT JOIN availabilities av ON ab.substitute_availability_id = av.id
		LEFT JOIN teachers st ON av.teacher_id = st.id
		WHERE ab.absence_date = $2
		ORDER BY t.full_name, l.time_of_day`
	var rows []models.AbsenceRow
	if err := r.db.SelectContext(ctx, &rows, query, userID, date); err != nil {
		return nil, fmt.Errorf("list absences by date: %w", err)
	}
	return rows, nil
}

// UpdateStatus writes a new status and substitute reference. The
// substitute availability is resolved only within imports owned by the
// caller; an absence outside the caller's scope matches zero rows.
func (r *AbsenceRepository) UpdateStatus(ctx context.Context, id, userID string, status models.AbsenceStatus, substituteAvailabilityID *string) (int64, error) {
	const query = `UPDATE absences ab
		SET status = $3,
		    substitute_availability_id = (
		        SELECT av.id
		        FROM availabilities av
		        JOIN teachers t2 ON av.teacher_id = t2.id
		        JOIN imports i2 ON t2.import_id = i2.id
		        WHERE av.id = $4 AND i2.user_id = $2
		    )
		FROM lessons l, teachers t, imports i
		WHERE ab.id = $1
		  AND ab.lesson_id = l.id
		  AND l.teacher_id = t.id
		  AND t.import_id = i.id
		  AND i.user_id = $2`
	res, err := r.db.ExecContext(ctx, query, id, userID, status, substituteAvailabilityID)
	if err != nil {
		return 0, fmt.Errorf("update absence status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("update absence status: %w", err)
	}
	return affected, nil
}

// Delete removes an absence owned by the caller.
func (r *AbsenceRepository) Delete(ctx context.Context, id, userID string) (int64, error) {
	const query = `DELETE FROM absences ab
		USING lessons l, teachers t, imports i
		WHERE ab.id = $1
		  AND ab.lesson_id = l.id
		  AND l.teacher_id = t.id
		  AND t.import_id = i.id
		  AND i.user_id = $2`
	res, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return 0, fmt.Errorf("delete absence: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete absence: %w", err)
	}
	return affected, nil
}
