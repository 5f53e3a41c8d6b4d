package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/supplenze/supplenze-api/internal/models"
	appErrors "github.com/supplenze/supplenze-api/pkg/errors"
)

type teacherRepository interface {
	FindCandidates(ctx context.Context, absenceID, userID string) ([]models.Candidate, error)
	ListCanBeAbsent(ctx context.Context, userID string, day int) ([]models.TeacherSummary, error)
}

// SubstituteService answers "who can cover this absence": teachers of
// the same scope whose availability slot matches the absent lesson's
// slot exactly.
type SubstituteService struct {
	repo     teacherRepository
	cache    *CacheService
	metrics  *MetricsService
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewSubstituteService constructs a SubstituteService.
func NewSubstituteService(repo teacherRepository, cache *CacheService, metrics *MetricsService, cacheTTL time.Duration, logger *zap.Logger) *SubstituteService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubstituteService{repo: repo, cache: cache, metrics: metrics, cacheTTL: cacheTTL, logger: logger}
}

// Candidates returns every teacher able to cover the absence. An empty
// list is a valid answer; an absence outside the caller's scope also
// yields an empty list.
func (s *SubstituteService) Candidates(ctx context.Context, userID, absenceID string) ([]models.Candidate, error) {
	key := candidateCacheKey(userID, absenceID)
	var cached []models.Candidate
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		return cached, nil
	}

	start := time.Now()
	candidates, err := s.repo.FindCandidates(ctx, absenceID, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to find substitute candidates")
	}
	s.metrics.ObserveMatcher(time.Since(start))
	if candidates == nil {
		candidates = []models.Candidate{}
	}

	if err := s.cache.Set(ctx, key, candidates, s.cacheTTL); err != nil {
		s.logger.Warn("failed to cache substitute candidates", zap.String("absence_id", absenceID), zap.Error(err))
	}
	return candidates, nil
}

// CanBeAbsent lists the teachers holding at least one lesson on the
// given date's weekday, the set the declaration form offers.
func (s *SubstituteService) CanBeAbsent(ctx context.Context, userID string, date time.Time) ([]models.TeacherSummary, error) {
	teachers, err := s.repo.ListCanBeAbsent(ctx, userID, isoWeekday(date))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teachers")
	}
	if teachers == nil {
		teachers = []models.TeacherSummary{}
	}
	return teachers, nil
}

func candidateCacheKey(userID, absenceID string) string {
	return fmt.Sprintf("supplenze:%s:candidates:%s", userID, absenceID)
}
