package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-planner-api/internal/models"
)

func TestPlanRepositoryCreateVersioned(t *testing.T) {
	db, mock, cleanup := newPlannerRepoMock(t)
	defer cleanup()
	repo := NewPlanRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(MAX(version), 0) + 1 FROM saved_plans WHERE student_id = $1")).
		WithArgs("stu-1").
		WillReturnRows(sqlmock.NewRows([]string{"next"}).AddRow(3))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO saved_plans")).
		WithArgs(sqlmock.AnyArg(), "stu-1", "Plan v3", 3, string(models.SavedPlanStatusDraft), 32, 3.5, "Spring 2026", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	plan := &models.SavedPlan{
		StudentID:       "stu-1",
		TotalUnits:      32,
		OverallGPA:      3.5,
		GraduationLabel: "Spring 2026",
		Payload:         types.JSONText(`{"terms":[]}`),
	}
	require.NoError(t, repo.CreateVersioned(context.Background(), nil, plan))
	assert.Equal(t, 3, plan.Version)
	assert.NotEmpty(t, plan.ID)
	assert.Equal(t, models.SavedPlanStatusDraft, plan.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlanRepositoryCreateVersionedTaken(t *testing.T) {
	db, mock, cleanup := newPlannerRepoMock(t)
	defer cleanup()
	repo := NewPlanRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(MAX(version), 0) + 1 FROM saved_plans")).
		WithArgs("stu-1").
		WillReturnRows(sqlmock.NewRows([]string{"next"}).AddRow(2))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO saved_plans")).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "saved_plans_student_id_version_key"})

	err := repo.CreateVersioned(context.Background(), nil, &models.SavedPlan{StudentID: "stu-1"})
	assert.ErrorIs(t, err, ErrPlanVersionTaken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlanRepositoryCreateVersionedRequiresStudent(t *testing.T) {
	db, _, cleanup := newPlannerRepoMock(t)
	defer cleanup()
	repo := NewPlanRepository(db)

	assert.Error(t, repo.CreateVersioned(context.Background(), nil, &models.SavedPlan{}))
	assert.Error(t, repo.CreateVersioned(context.Background(), nil, nil))
}

func TestPlanRepositoryListByStudent(t *testing.T) {
	db, mock, cleanup := newPlannerRepoMock(t)
	defer cleanup()
	repo := NewPlanRepository(db)

	rows := sqlmock.NewRows([]string{"id", "student_id", "name", "version", "status", "total_units", "overall_gpa", "graduation_label", "payload", "created_at", "updated_at"}).
		AddRow("plan-2", "stu-1", "Plan v2", 2, "ACTIVE", 32, 3.5, "Spring 2026", []byte(`{}`), time.Now(), time.Now()).
		AddRow("plan-1", "stu-1", "Plan v1", 1, "ARCHIVED", 28, 3.4, "Fall 2026", []byte(`{}`), time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM saved_plans WHERE student_id = $1 ORDER BY version DESC")).
		WithArgs("stu-1").
		WillReturnRows(rows)

	plans, err := repo.ListByStudent(context.Background(), "stu-1")
	require.NoError(t, err)
	require.Len(t, plans, 2)
	assert.Equal(t, models.SavedPlanStatusActive, plans[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlanRepositoryArchiveActive(t *testing.T) {
	db, mock, cleanup := newPlannerRepoMock(t)
	defer cleanup()
	repo := NewPlanRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE saved_plans SET status = $1, updated_at = $2 WHERE student_id = $3 AND status = $4")).
		WithArgs(string(models.SavedPlanStatusArchived), sqlmock.AnyArg(), "stu-1", string(models.SavedPlanStatusActive)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := repo.ArchiveActive(context.Background(), nil, "stu-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlanRepositoryUpdateStatusNotFound(t *testing.T) {
	db, mock, cleanup := newPlannerRepoMock(t)
	defer cleanup()
	repo := NewPlanRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE saved_plans SET status = $1, updated_at = $2 WHERE id = $3")).
		WithArgs(string(models.SavedPlanStatusActive), sqlmock.AnyArg(), "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateStatus(context.Background(), nil, "missing", models.SavedPlanStatusActive)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlanRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newPlannerRepoMock(t)
	defer cleanup()
	repo := NewPlanRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM saved_plans WHERE id = $1 AND status = $2")).
		WithArgs("plan-1", "DRAFT").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), "plan-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlanRepositoryDeleteKeepsNonDraft(t *testing.T) {
	db, mock, cleanup := newPlannerRepoMock(t)
	defer cleanup()
	repo := NewPlanRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM saved_plans WHERE id = $1 AND status = $2")).
		WithArgs("plan-1", "DRAFT").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT status FROM saved_plans WHERE id = $1")).
		WithArgs("plan-1").
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("ACTIVE"))

	err := repo.Delete(context.Background(), "plan-1")
	assert.ErrorIs(t, err, ErrPlanNotDraft)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlanRepositoryDeleteMissing(t *testing.T) {
	db, mock, cleanup := newPlannerRepoMock(t)
	defer cleanup()
	repo := NewPlanRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM saved_plans WHERE id = $1 AND status = $2")).
		WithArgs("gone", "DRAFT").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT status FROM saved_plans WHERE id = $1")).
		WithArgs("gone").
		WillReturnRows(sqlmock.NewRows([]string{"status"}))

	assert.ErrorIs(t, repo.Delete(context.Background(), "gone"), sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
