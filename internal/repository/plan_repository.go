package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"

	"github.com/noah-isme/course-planner-api/internal/models"
)

// ErrPlanVersionTaken is returned when a concurrent save claimed the same version number.
var ErrPlanVersionTaken = errors.New("plan version already taken")

// ErrPlanNotDraft is returned when deleting a plan that is no longer a draft.
var ErrPlanNotDraft = errors.New("plan is not a draft")

const uniqueViolation = "23505"

const savedPlanColumns = `id, student_id, name, version, status, total_units, overall_gpa, graduation_label, payload, created_at, updated_at`

// PlanRepository persists versioned student plans.
type PlanRepository struct {
	db *sqlx.DB
}

// NewPlanRepository constructs repository.
func NewPlanRepository(db *sqlx.DB) *PlanRepository {
	return &PlanRepository{db: db}
}

func (r *PlanRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// CreateVersioned inserts a plan assigning the next version for the student.
func (r *PlanRepository) CreateVersioned(ctx context.Context, exec sqlx.ExtContext, plan *models.SavedPlan) error {
	if plan == nil {
		return fmt.Errorf("plan payload is nil")
	}
	if plan.StudentID == "" {
		return fmt.Errorf("student_id is required")
	}
	if plan.ID == "" {
		plan.ID = uuid.NewString()
	}
	if plan.Status == "" {
		plan.Status = models.SavedPlanStatusDraft
	}
	if len(plan.Payload) == 0 {
		plan.Payload = types.JSONText(`{}`)
	}
	now := time.Now().UTC()
	if plan.CreatedAt.IsZero() {
		plan.CreatedAt = now
	}
	plan.UpdatedAt = now

	target := r.exec(exec)

	const nextVersionQuery = `SELECT COALESCE(MAX(version), 0) + 1 FROM saved_plans WHERE student_id = $1`
	if err := sqlx.GetContext(ctx, target, &plan.Version, nextVersionQuery, plan.StudentID); err != nil {
		return fmt.Errorf("compute next plan version: %w", err)
	}
	if plan.Name == "" {
		plan.Name = fmt.Sprintf("Plan v%d", plan.Version)
	}

	const insertQuery = `
INSERT INTO saved_plans (id, student_id, name, version, status, total_units, overall_gpa, graduation_label, payload, created_at, updated_at)
VALUES (:id, :student_id, :name, :version, :status, :total_units, :overall_gpa, :graduation_label, :payload, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, target, insertQuery, plan); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return fmt.Errorf("%w: %s v%d", ErrPlanVersionTaken, plan.StudentID, plan.Version)
		}
		return fmt.Errorf("insert saved plan: %w", err)
	}
	return nil
}

// ListByStudent returns every version for the student, newest first.
func (r *PlanRepository) ListByStudent(ctx context.Context, studentID string) ([]models.SavedPlan, error) {
	query := "SELECT " + savedPlanColumns + " FROM saved_plans WHERE student_id = $1 ORDER BY version DESC"
	var plans []models.SavedPlan
	if err := r.db.SelectContext(ctx, &plans, query, studentID); err != nil {
		return nil, fmt.Errorf("list saved plans: %w", err)
	}
	return plans, nil
}

// FindByID loads a plan by its identifier.
func (r *PlanRepository) FindByID(ctx context.Context, id string) (*models.SavedPlan, error) {
	query := "SELECT " + savedPlanColumns + " FROM saved_plans WHERE id = $1"
	var plan models.SavedPlan
	if err := r.db.GetContext(ctx, &plan, query, id); err != nil {
		return nil, err
	}
	return &plan, nil
}

// UpdateStatus moves a plan to the given lifecycle status.
func (r *PlanRepository) UpdateStatus(ctx context.Context, exec sqlx.ExtContext, id string, status models.SavedPlanStatus) error {
	const query = `UPDATE saved_plans SET status = $1, updated_at = $2 WHERE id = $3`
	result, err := r.exec(exec).ExecContext(ctx, query, status, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update saved plan status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("saved plan status rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ArchiveActive archives the student's active plans and returns how many changed.
func (r *PlanRepository) ArchiveActive(ctx context.Context, exec sqlx.ExtContext, studentID string) (int64, error) {
	const query = `UPDATE saved_plans SET status = $1, updated_at = $2 WHERE student_id = $3 AND status = $4`
	result, err := r.exec(exec).ExecContext(ctx, query, models.SavedPlanStatusArchived, time.Now().UTC(), studentID, models.SavedPlanStatusActive)
	if err != nil {
		return 0, fmt.Errorf("archive active plans: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("archive active plans rows affected: %w", err)
	}
	return affected, nil
}

// Delete removes a DRAFT plan. It returns sql.ErrNoRows when the plan does not exist and
// ErrPlanNotDraft when its status changed away from DRAFT.
func (r *PlanRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM saved_plans WHERE id = $1 AND status = $2`
	result, err := r.db.ExecContext(ctx, query, id, string(models.SavedPlanStatusDraft))
	if err != nil {
		return fmt.Errorf("delete saved plan: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("saved plan rows affected: %w", err)
	}
	if affected > 0 {
		return nil
	}

	var status models.SavedPlanStatus
	if err := r.db.GetContext(ctx, &status, `SELECT status FROM saved_plans WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return sql.ErrNoRows
		}
		return fmt.Errorf("load saved plan status: %w", err)
	}
	return fmt.Errorf("%w: %s is %s", ErrPlanNotDraft, id, status)
}
