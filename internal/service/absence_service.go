package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/supplenze/supplenze-api/internal/models"
	appErrors "github.com/supplenze/supplenze-api/pkg/errors"
)

type absenceRepository interface {
	FindLessonIDsForSlot(ctx context.Context, userID, teacherID string, day int, begin, end string) ([]string, error)
	Create(ctx context.Context, absence *models.Absence) error
	ListByDate(ctx context.Context, userID string, date time.Time) ([]models.AbsenceRow, error)
	UpdateStatus(ctx context.Context, id, userID string, status models.AbsenceStatus, substituteAvailabilityID *string) (int64, error)
	Delete(ctx context.Context, id, userID string) (int64, error)
}

// DeclareAbsenceRequest covers one teacher being out for a span of
// slots on one date. Times are inclusive "HH:MM" bounds.
type DeclareAbsenceRequest struct {
	TeacherID string    `json:"teacher_id" validate:"required"`
	Date      time.Time `json:"date" validate:"required"`
	BeginTime string    `json:"begin_time" validate:"required"`
	EndTime   string    `json:"end_time" validate:"required"`
}

// UpdateAbsenceRequest patches the resolution of one absence.
type UpdateAbsenceRequest struct {
	Status                   models.AbsenceStatus `json:"status" validate:"required"`
	SubstituteAvailabilityID *string              `json:"substitute_availability_id"`
}

// AbsenceService manages the absence lifecycle: declaration across a
// slot range and the resolution state machine.
type AbsenceService struct {
	repo      absenceRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAbsenceService constructs an AbsenceService.
func NewAbsenceService(repo absenceRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *AbsenceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AbsenceService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// Declare records one absence per lesson the teacher holds inside the
// requested slot range on the given date. A teacher with no lesson in
// the range yields an empty result, not an error.
func (s *AbsenceService) Declare(ctx context.Context, userID string, req DeclareAbsenceRequest) ([]models.Absence, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid absence declaration")
	}
	if req.BeginTime > req.EndTime {
		return nil, appErrors.Clone(appErrors.ErrValidation, "begin time must not be after end time")
	}

	day := isoWeekday(req.Date)
	lessonIDs, err := s.repo.FindLessonIDsForSlot(ctx, userID, req.TeacherID, day, req.BeginTime, req.EndTime)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to find lessons for slot")
	}

	absences := make([]models.Absence, 0, len(lessonIDs))
	for _, lessonID := range lessonIDs {
		absence := models.Absence{
			LessonID:    lessonID,
			AbsenceDate: req.Date,
			Status:      models.StatusUncovered,
		}
		if err := s.repo.Create(ctx, &absence); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create absence")
		}
		absences = append(absences, absence)
	}

	if len(absences) > 0 {
		s.invalidateUser(ctx, userID)
	}
	s.logger.Info("absences declared",
		zap.String("teacher_id", req.TeacherID),
		zap.Time("date", req.Date),
		zap.Int("count", len(absences)))
	return absences, nil
}

// ListByDate returns the dashboard view for one date: absences of the
// active import grouped by absent teacher, slots in time order.
func (s *AbsenceService) ListByDate(ctx context.Context, userID string, date time.Time) ([]models.DayAbsence, error) {
	rows, err := s.repo.ListByDate(ctx, userID, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list absences")
	}
	return groupAbsenceRows(rows), nil
}

// UpdateStatus applies a resolution transition. A substitute reference
// is required for SUBSTITUTE_FOUND and rejected for any other status.
func (s *AbsenceService) UpdateStatus(ctx context.Context, userID, absenceID string, req UpdateAbsenceRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid absence update")
	}
	if !req.Status.Valid() {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown absence status %q", req.Status))
	}
	if req.Status == models.StatusSubstituteFound && req.SubstituteAvailabilityID == nil {
		return appErrors.Clone(appErrors.ErrValidation, "substitute reference required for SUBSTITUTE_FOUND")
	}
	if req.Status != models.StatusSubstituteFound && req.SubstituteAvailabilityID != nil {
		return appErrors.Clone(appErrors.ErrValidation, "substitute reference allowed only with SUBSTITUTE_FOUND")
	}

	affected, err := s.repo.UpdateStatus(ctx, absenceID, userID, req.Status, req.SubstituteAvailabilityID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update absence")
	}
	if affected == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "absence not found")
	}
	s.invalidateUser(ctx, userID)
	return nil
}

// Delete removes an owned absence.
func (s *AbsenceService) Delete(ctx context.Context, userID, absenceID string) error {
	affected, err := s.repo.Delete(ctx, absenceID, userID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete absence")
	}
	if affected == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "absence not found")
	}
	s.invalidateUser(ctx, userID)
	return nil
}

func (s *AbsenceService) invalidateUser(ctx context.Context, userID string) {
	if err := s.cache.Invalidate(ctx, userCachePattern(userID)); err != nil {
		s.logger.Warn("failed to invalidate cache", zap.String("user_id", userID), zap.Error(err))
	}
}

// groupAbsenceRows folds the flat projection into per-teacher groups,
// preserving the query's teacher/time ordering.
func groupAbsenceRows(rows []models.AbsenceRow) []models.DayAbsence {
	grouped := make([]models.DayAbsence, 0)
	index := make(map[string]int)
	for _, row := range rows {
		class := models.AbsentClass{
			ID:                row.ID,
			SubstituteTeacher: row.SubstituteTeacher,
			TimeOfDay:         row.TimeOfDay,
			Room:              row.Room,
			Group:             row.Group,
			Status:            row.Status,
		}
		if i, ok := index[row.AbsentTeacherID]; ok {
			grouped[i].Classes = append(grouped[i].Classes, class)
			continue
		}
		index[row.AbsentTeacherID] = len(grouped)
		grouped = append(grouped, models.DayAbsence{
			AbsentTeacher: row.AbsentTeacher,
			Classes:       []models.AbsentClass{class},
		})
	}
	return grouped
}

// isoWeekday maps time.Weekday to ISO numbering, Monday 1 through
// Sunday 7.
func isoWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}
