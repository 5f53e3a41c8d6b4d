package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/supplenze/supplenze-api/internal/models"
)

func TestFindCandidatesMatchesExactSlot(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTeacherRepository(db)

	rows := sqlmock.NewRows([]string{"teacher_id", "full_name", "kind"}).
		AddRow("t2", "ROSSI ANNA", "AVAILABILITY").
		AddRow("t3", "VERDI LUCA", "RECOVERY_HOURS")
	mock.ExpectQuery("SELECT DISTINCT t.id AS teacher_id").
		WithArgs("abs-1", "user-1").
		WillReturnRows(rows)

	candidates, err := repo.FindCandidates(context.Background(), "abs-1", "user-1")
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	assert.Equal(t, "ROSSI ANNA", candidates[0].FullName)
	assert.Equal(t, models.KindAvailability, candidates[0].Kind)
	assert.Equal(t, models.KindRecoveryHours, candidates[1].Kind)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindCandidatesEmptyIsNotAnError(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTeacherRepository(db)

	mock.ExpectQuery("SELECT DISTINCT t.id AS teacher_id").
		WithArgs("abs-1", "someone-else").
		WillReturnRows(sqlmock.NewRows([]string{"teacher_id", "full_name", "kind"}))

	candidates, err := repo.FindCandidates(context.Background(), "abs-1", "someone-else")
	require.NoError(t, err)
	assert.Empty(t, candidates)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListCanBeAbsent(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTeacherRepository(db)

	rows := sqlmock.NewRows([]string{"id", "full_name"}).
		AddRow("t1", "SCIALPI MARIO")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT DISTINCT t.id, t.full_name")).
		WithArgs(1, "user-1").
		WillReturnRows(rows)

	teachers, err := repo.ListCanBeAbsent(context.Background(), "user-1", 1)
	require.NoError(t, err)
	require.Len(t, teachers, 1)
	assert.Equal(t, "SCIALPI MARIO", teachers[0].FullName)
	assert.NoError(t, mock.ExpectationsWereMet())
}
