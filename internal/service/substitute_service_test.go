package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/supplenze/supplenze-api/internal/models"
	appErrors "github.com/supplenze/supplenze-api/pkg/errors"
)

type mockTeacherRepo struct {
	candidates []models.Candidate
	calls      int
	roster     []models.TeacherSummary
	rosterDay  int
}

func (m *mockTeacherRepo) FindCandidates(ctx context.Context, absenceID, userID string) ([]models.Candidate, error) {
	m.calls++
	return m.candidates, nil
}

func (m *mockTeacherRepo) ListCanBeAbsent(ctx context.Context, userID string, day int) ([]models.TeacherSummary, error) {
	m.rosterDay = day
	return m.roster, nil
}

type memoryCacheRepo struct {
	entries map[string][]byte
}

func (m *memoryCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if m.entries == nil {
		m.entries = make(map[string][]byte)
	}
	m.entries[key] = raw
	return nil
}

func (m *memoryCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	m.entries = nil
	return nil
}

func TestCandidatesReturnsMatches(t *testing.T) {
	repo := &mockTeacherRepo{candidates: []models.Candidate{
		{TeacherID: "tea-2", FullName: "ROSSI ANNA", Kind: models.KindAvailability},
		{TeacherID: "tea-3", FullName: "VERDI PAOLA", Kind: models.KindRecoveryHours},
	}}
	service := NewSubstituteService(repo, nil, nil, 0, zap.NewNop())

	candidates, err := service.Candidates(context.Background(), "user-1", "abs-1")
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	assert.Equal(t, models.KindAvailability, candidates[0].Kind)
}

func TestCandidatesEmptyIsNotAnError(t *testing.T) {
	service := NewSubstituteService(&mockTeacherRepo{}, nil, nil, 0, zap.NewNop())

	candidates, err := service.Candidates(context.Background(), "user-1", "abs-unknown")
	require.NoError(t, err)
	assert.NotNil(t, candidates)
	assert.Empty(t, candidates)
}

func TestCandidatesUsesCacheOnSecondCall(t *testing.T) {
	repo := &mockTeacherRepo{candidates: []models.Candidate{
		{TeacherID: "tea-2", FullName: "ROSSI ANNA", Kind: models.KindAvailability},
	}}
	cache := NewCacheService(&memoryCacheRepo{}, nil, time.Minute, zap.NewNop(), true)
	service := NewSubstituteService(repo, cache, nil, time.Minute, zap.NewNop())

	first, err := service.Candidates(context.Background(), "user-1", "abs-1")
	require.NoError(t, err)
	second, err := service.Candidates(context.Background(), "user-1", "abs-1")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, repo.calls, "second call must be served from cache")
}

func TestCandidatesCacheKeyIsScopedToUser(t *testing.T) {
	repo := &mockTeacherRepo{}
	cache := NewCacheService(&memoryCacheRepo{}, nil, time.Minute, zap.NewNop(), true)
	service := NewSubstituteService(repo, cache, nil, time.Minute, zap.NewNop())

	_, err := service.Candidates(context.Background(), "user-1", "abs-1")
	require.NoError(t, err)
	_, err = service.Candidates(context.Background(), "user-2", "abs-1")
	require.NoError(t, err)

	assert.Equal(t, 2, repo.calls)
}

func TestCanBeAbsentUsesISOWeekday(t *testing.T) {
	repo := &mockTeacherRepo{roster: []models.TeacherSummary{{ID: "tea-1", FullName: "SCIALPI MARIO"}}}
	service := NewSubstituteService(repo, nil, nil, 0, zap.NewNop())

	// 2026-09-12 is a Saturday.
	teachers, err := service.CanBeAbsent(context.Background(), "user-1", time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 6, repo.rosterDay)
	require.Len(t, teachers, 1)
}
