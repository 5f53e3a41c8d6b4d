package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/supplenze/supplenze-api/internal/models"
	"github.com/supplenze/supplenze-api/internal/timetable"
	appErrors "github.com/supplenze/supplenze-api/pkg/errors"
)

// ImportRepository manages timetable import batches and their scoped
// entities. All writes of one batch happen inside a single transaction.
type ImportRepository struct {
	db *sqlx.DB
}

// NewImportRepository constructs an ImportRepository.
func NewImportRepository(db *sqlx.DB) *ImportRepository {
	return &ImportRepository{db: db}
}

// ImportBatch is one fully normalized upload ready for persistence.
type ImportBatch struct {
	Meta     models.ImportMeta
	FileHash string
	Entities timetable.EntitySets
	Records  *timetable.Batch
}

const (
	insertImportQuery = `INSERT INTO imports (id, user_id, file_name, file_hash, import_ts, begin_ts, end_ts) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	insertRoomQuery    = `INSERT INTO rooms (id, name, import_id) VALUES ($1, $2, $3)`
	insertGroupQuery   = `INSERT INTO groups (id, name, import_id) VALUES ($1, $2, $3)`
	insertTeacherQuery = `INSERT INTO teachers (id, full_name, import_id) VALUES ($1, $2, $3)`

	insertAvailabilityQuery = `INSERT INTO availabilities (id, day, time_of_day, kind, teacher_id) VALUES ($1, $2, $3, $4, $5)`
	insertLessonQuery       = `INSERT INTO lessons (id, day, time_of_day, duration_minutes, room_id, group_id, teacher_id) VALUES ($1, $2, $3, $4, $5, $6, $7)`
)

// RunImport executes the full ordered write sequence for one batch:
// import row, rooms, groups, teachers, availabilities, lessons. Every
// step runs in both modes so a dry run hits the same store constraints a
// real import would; the single decision point at the end rolls back
// (dry_run) or commits (write). Any failure rolls back everything.
func (r *ImportRepository) RunImport(ctx context.Context, userID string, batch ImportBatch) (string, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin import tx: %w", err)
	}
	decided := false
	defer func() {
		if !decided {
			_ = tx.Rollback()
		}
	}()

	importID := uuid.NewString()
	if _, err := tx.ExecContext(ctx, insertImportQuery,
		importID, userID, batch.Meta.FileName, batch.FileHash,
		time.Now().UTC(), batch.Meta.BeginTS, batch.Meta.EndTS,
	); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrConstraint.Code, appErrors.ErrConstraint.Status, "insert import record")
	}

	roomIDs, err := insertEntities(ctx, tx, insertRoomQuery, batch.Entities.Rooms, importID)
	if err != nil {
		return "", err
	}
	groupIDs, err := insertEntities(ctx, tx, insertGroupQuery, batch.Entities.Groups, importID)
	if err != nil {
		return "", err
	}
	teacherIDs, err := insertEntities(ctx, tx, insertTeacherQuery, batch.Entities.Teachers, importID)
	if err != nil {
		return "", err
	}

	for _, availability := range batch.Records.Availabilities {
		teacherID, ok := teacherIDs[availability.Teacher]
		if !ok {
			return "", appErrors.Clone(appErrors.ErrConstraint, fmt.Sprintf("availability references unknown teacher %q", availability.Teacher))
		}
		if _, err := tx.ExecContext(ctx, insertAvailabilityQuery,
			uuid.NewString(), availability.Day, availability.TimeOfDay, availability.Kind, teacherID,
		); err != nil {
			return "", appErrors.Wrap(err, appErrors.ErrConstraint.Code, appErrors.ErrConstraint.Status,
				fmt.Sprintf("insert availability for teacher %q", availability.Teacher))
		}
	}

	for _, lesson := range batch.Records.Lessons {
		roomID, err := resolveOptional(roomIDs, lesson.Room, "room")
		if err != nil {
			return "", err
		}
		groupID, err := resolveOptional(groupIDs, lesson.Group, "group")
		if err != nil {
			return "", err
		}
		teacherID, err := resolveOptional(teacherIDs, lesson.Teacher, "teacher")
		if err != nil {
			return "", err
		}
		if _, err := tx.ExecContext(ctx, insertLessonQuery,
			uuid.NewString(), lesson.Day, lesson.TimeOfDay, lesson.DurationMinutes, roomID, groupID, teacherID,
		); err != nil {
			return "", appErrors.Wrap(err, appErrors.ErrConstraint.Code, appErrors.ErrConstraint.Status,
				fmt.Sprintf("insert lesson at day %d %s", lesson.Day, lesson.TimeOfDay))
		}
	}

	decided = true
	if batch.Meta.Mode == models.ImportModeWrite {
		if err := tx.Commit(); err != nil {
			return "", fmt.Errorf("commit import: %w", err)
		}
	} else {
		if err := tx.Rollback(); err != nil {
			return "", fmt.Errorf("roll back dry-run import: %w", err)
		}
	}
	return importID, nil
}

// insertEntities bulk-inserts one deduplicated name set and returns the
// name to id map used to resolve lesson and availability references
// within this import's scope.
func insertEntities(ctx context.Context, tx *sqlx.Tx, query string, names []string, importID string) (map[string]string, error) {
	ids := make(map[string]string, len(names))
	for _, name := range names {
		id := uuid.NewString()
		if _, err := tx.ExecContext(ctx, query, id, name, importID); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrConstraint.Code, appErrors.ErrConstraint.Status,
				fmt.Sprintf("insert entity %q", name))
		}
		ids[name] = id
	}
	return ids, nil
}

func resolveOptional(ids map[string]string, name *string, kind string) (*string, error) {
	if name == nil {
		return nil, nil
	}
	id, ok := ids[*name]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrConstraint, fmt.Sprintf("lesson references unknown %s %q", kind, *name))
	}
	return &id, nil
}

// List returns every import owned by a user, newest validity first.
func (r *ImportRepository) List(ctx context.Context, userID string) ([]models.Import, error) {
	const query = `SELECT id, user_id, file_name, file_hash, import_ts, begin_ts, end_ts FROM imports WHERE user_id = $1 ORDER BY begin_ts DESC`
	var imports []models.Import
	if err := r.db.SelectContext(ctx, &imports, query, userID); err != nil {
		return nil, fmt.Errorf("list imports: %w", err)
	}
	return imports, nil
}

// FindByID loads one import scoped to its owner.
func (r *ImportRepository) FindByID(ctx context.Context, id, userID string) (*models.Import, error) {
	const query = `SELECT id, user_id, file_name, file_hash, import_ts, begin_ts, end_ts FROM imports WHERE id = $1 AND user_id = $2 LIMIT 1`
	var imp models.Import
	if err := r.db.GetContext(ctx, &imp, query, id, userID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find import: %w", err)
	}
	return &imp, nil
}

// UpdateWindow patches an import's validity window. Nil bounds keep the
// stored value.
func (r *ImportRepository) UpdateWindow(ctx context.Context, id, userID string, begin, end *time.Time) (int64, error) {
	const query = `UPDATE imports SET begin_ts = COALESCE($3, begin_ts), end_ts = COALESCE($4, end_ts) WHERE id = $1 AND user_id = $2`
	res, err := r.db.ExecContext(ctx, query, id, userID, begin, end)
	if err != nil {
		return 0, fmt.Errorf("update import window: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("update import window: %w", err)
	}
	return affected, nil
}

// Delete removes an import; the schema cascades to every entity the
// import owns.
func (r *ImportRepository) Delete(ctx context.Context, id, userID string) (int64, error) {
	const query = `DELETE FROM imports WHERE id = $1 AND user_id = $2`
	res, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return 0, fmt.Errorf("delete import: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete import: %w", err)
	}
	return affected, nil
}
