package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/course-planner-api/internal/models"
)

// RequirementRepository reads degree requirements per major.
type RequirementRepository struct {
	db *sqlx.DB
}

// NewRequirementRepository constructs a RequirementRepository.
func NewRequirementRepository(db *sqlx.DB) *RequirementRepository {
	return &RequirementRepository{db: db}
}

// FindByMajor returns the requirement for major or sql.ErrNoRows.
func (r *RequirementRepository) FindByMajor(ctx context.Context, major string) (*models.DegreeRequirement, error) {
	const query = `SELECT major, core_courses, elective_courses, electives_required FROM degree_requirements WHERE major = $1`
	var row struct {
		Major             string         `db:"major"`
		CoreCourses       pq.StringArray `db:"core_courses"`
		ElectiveCourses   pq.StringArray `db:"elective_courses"`
		ElectivesRequired int            `db:"electives_required"`
	}
	if err := r.db.GetContext(ctx, &row, query, major); err != nil {
		return nil, err
	}
	return &models.DegreeRequirement{
		Major:             row.Major,
		CoreCourses:       []string(row.CoreCourses),
		ElectiveCourses:   []string(row.ElectiveCourses),
		ElectivesRequired: row.ElectivesRequired,
	}, nil
}
