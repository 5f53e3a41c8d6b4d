package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/supplenze/supplenze-api/internal/models"
)

// TeacherRepository answers the read-only teacher queries: who can be
// declared absent and who can cover an absence.
type TeacherRepository struct {
	db *sqlx.DB
}

// NewTeacherRepository constructs a TeacherRepository.
func NewTeacherRepository(db *sqlx.DB) *TeacherRepository {
	return &TeacherRepository{db: db}
}

// FindCandidates returns every teacher of the absence's owning import
// whose declared availability matches the absent lesson's exact day and
// time. The join keeps the absence date inside the import's validity
// window and the import owned by the caller, so an unowned absence
// yields no rows rather than an authorization error. Teachers appear at
// most once per availability kind.
func (r *TeacherRepository) FindCandidates(ctx context.Context, absenceID, userID string) ([]models.Candidate, error) {
	const query = `SELECT DISTINCT t.id AS teacher_id,
		       t.full_name AS full_name,
		       av.kind AS kind
		FROM absences ab
		JOIN lessons absent_lesson ON ab.lesson_id = absent_lesson.id
		JOIN teachers absent_teacher ON absent_teacher.id = absent_lesson.teacher_id
		JOIN imports active_import ON active_import.id = absent_teacher.import_id
		  AND ab.absence_date BETWEEN active_import.begin_ts AND active_import.end_ts
		JOIN teachers t ON t.import_id = active_import.id
		JOIN availabilities av ON av.teacher_id = t.id
		WHERE ab.id = $1
		  AND av.day = absent_lesson.day
		  AND av.time_of_day = absent_lesson.time_of_day
		  AND active_import.user_id = $2`
	var candidates []models.Candidate
	if err := r.db.SelectContext(ctx, &candidates, query, absenceID, userID); err != nil {
		return nil, fmt.Errorf("find substitute candidates: %w", err)
	}
	return candidates, nil
}

// ListCanBeAbsent returns the distinct teachers who teach at least one
// lesson on the given ISO day within the caller's imports.
func (r *TeacherRepository) ListCanBeAbsent(ctx context.Context, userID string, day int) ([]models.TeacherSummary, error) {
	const query = `SELECT DISTINCT t.id, t.full_name
		FROM teachers t
		JOIN imports i ON t.import_id = i.id
		JOIN lessons l ON t.id = l.teacher_id
		WHERE l.day = $1
		  AND i.user_id = $2
		ORDER BY t.full_name`
	var teachers []models.TeacherSummary
	if err := r.db.SelectContext(ctx, &teachers, query, day, userID); err != nil {
		return nil, fmt.Errorf("list teachers who can be absent: %w", err)
	}
	return teachers, nil
}
