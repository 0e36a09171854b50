package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/course-planner-api/internal/models"
)

// StudentRepository loads the planner's view of a student.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// FindByID returns the stored student profile.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.StudentRecord, error) {
	const query = `SELECT id, major, gpa, current_season, current_year FROM students WHERE id = $1`
	var record models.StudentRecord
	if err := r.db.GetContext(ctx, &record, query, id); err != nil {
		return nil, err
	}
	return &record, nil
}

// CompletedCourseIDs lists finished course identifiers in lexical order.
func (r *StudentRepository) CompletedCourseIDs(ctx context.Context, studentID string) ([]string, error) {
	const query = `SELECT course_id FROM student_completed_courses WHERE student_id = $1 ORDER BY course_id`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, studentID); err != nil {
		return nil, fmt.Errorf("list completed courses: %w", err)
	}
	return ids, nil
}

// LoadState assembles the student state used as planning input.
func (r *StudentRepository) LoadState(ctx context.Context, studentID string) (*models.StudentState, error) {
	record, err := r.FindByID(ctx, studentID)
	if err != nil {
		return nil, err
	}
	completed, err := r.CompletedCourseIDs(ctx, studentID)
	if err != nil {
		return nil, err
	}
	season, err := models.ParseSeason(record.CurrentSeason)
	if err != nil {
		return nil, fmt.Errorf("student %s: %w", studentID, err)
	}
	return &models.StudentState{
		StudentID:   record.ID,
		Completed:   models.NewCompletedSet(completed...),
		CurrentTerm: models.Term{Season: season, Year: record.CurrentYear},
		GPA:         record.GPA,
		Major:       record.Major,
	}, nil
}
