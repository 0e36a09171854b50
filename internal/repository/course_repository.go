package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/course-planner-api/internal/models"
)

const courseColumns = `id, name, units, difficulty, type, prerequisites, offered_terms, majors, default_time, instructor, description, updated_at`

type courseRow struct {
	ID            string         `db:"id"`
	Name          string         `db:"name"`
	Units         int            `db:"units"`
	Difficulty    string         `db:"difficulty"`
	Type          string         `db:"type"`
	Prerequisites pq.StringArray `db:"prerequisites"`
	OfferedTerms  pq.StringArray `db:"offered_terms"`
	Majors        pq.StringArray `db:"majors"`
	DefaultTime   string         `db:"default_time"`
	Instructor    string         `db:"instructor"`
	Description   string         `db:"description"`
	UpdatedAt     time.Time      `db:"updated_at"`
}

func (r courseRow) toModel() models.Course {
	offered := make([]models.Season, 0, len(r.OfferedTerms))
	for _, s := range r.OfferedTerms {
		offered = append(offered, models.Season(s))
	}
	return models.Course{
		ID:            r.ID,
		Name:          r.Name,
		Units:         r.Units,
		Difficulty:    models.Difficulty(r.Difficulty),
		Type:          models.CourseType(r.Type),
		Prerequisites: []string(r.Prerequisites),
		OfferedTerms:  offered,
		Majors:        []string(r.Majors),
		DefaultTime:   r.DefaultTime,
		Instructor:    r.Instructor,
		Description:   r.Description,
		UpdatedAt:     r.UpdatedAt,
	}
}

func rowFromCourse(c models.Course, now time.Time) courseRow {
	offered := make(pq.StringArray, 0, len(c.OfferedTerms))
	for _, s := range c.OfferedTerms {
		offered = append(offered, string(s))
	}
	difficulty := c.Difficulty
	if difficulty == "" {
		difficulty = models.DifficultyMedium
	}
	courseType := c.Type
	if courseType == "" {
		courseType = models.CourseTypeElective
	}
	return courseRow{
		ID:            c.ID,
		Name:          c.Name,
		Units:         c.Units,
		Difficulty:    string(difficulty),
		Type:          string(courseType),
		Prerequisites: pq.StringArray(nonNil(c.Prerequisites)),
		OfferedTerms:  offered,
		Majors:        pq.StringArray(nonNil(c.Majors)),
		DefaultTime:   c.DefaultTime,
		Instructor:    c.Instructor,
		Description:   c.Description,
		UpdatedAt:     now,
	}
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

// CourseRepository reads and writes the course catalog.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs a CourseRepository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

func (r *CourseRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// List returns catalog courses ordered by id. A major filter also keeps courses linked to no major.
func (r *CourseRepository) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, error) {
	var conditions []string
	var args []interface{}

	if filter.Major != "" {
		args = append(args, filter.Major)
		conditions = append(conditions, fmt.Sprintf("(cardinality(majors) = 0 OR $%d = ANY(majors))", len(args)))
	}
	if filter.Season != "" {
		args = append(args, string(filter.Season))
		conditions = append(conditions, fmt.Sprintf("$%d = ANY(offered_terms)", len(args)))
	}

	query := "SELECT " + courseColumns + " FROM courses"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY id ASC"

	var rows []courseRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	courses := make([]models.Course, 0, len(rows))
	for _, row := range rows {
		courses = append(courses, row.toModel())
	}
	return courses, nil
}

// FindByID loads a course by its identifier.
func (r *CourseRepository) FindByID(ctx context.Context, id string) (*models.Course, error) {
	query := "SELECT " + courseColumns + " FROM courses WHERE id = $1"
	var row courseRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		return nil, err
	}
	course := row.toModel()
	return &course, nil
}

// FindByIDs loads the listed courses; unknown identifiers are ignored.
func (r *CourseRepository) FindByIDs(ctx context.Context, ids []string) ([]models.Course, error) {
	if len(ids) == 0 {
		return []models.Course{}, nil
	}
	query := "SELECT " + courseColumns + " FROM courses WHERE id = ANY($1) ORDER BY id ASC"
	var rows []courseRow
	if err := r.db.SelectContext(ctx, &rows, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("find courses by ids: %w", err)
	}
	courses := make([]models.Course, 0, len(rows))
	for _, row := range rows {
		courses = append(courses, row.toModel())
	}
	return courses, nil
}

// Upsert inserts or replaces courses by id and returns the number written.
func (r *CourseRepository) Upsert(ctx context.Context, exec sqlx.ExtContext, courses []models.Course) (int, error) {
	const query = `
INSERT INTO courses (id, name, units, difficulty, type, prerequisites, offered_terms, majors, default_time, instructor, description, updated_at)
VALUES (:id, :name, :units, :difficulty, :type, :prerequisites, :offered_terms, :majors, :default_time, :instructor, :description, :updated_at)
ON CONFLICT (id) DO UPDATE SET
	name = EXCLUDED.name,
	units = EXCLUDED.units,
	difficulty = EXCLUDED.difficulty,
	type = EXCLUDED.type,
	prerequisites = EXCLUDED.prerequisites,
	offered_terms = EXCLUDED.offered_terms,
	majors = EXCLUDED.majors,
	default_time = EXCLUDED.default_time,
	instructor = EXCLUDED.instructor,
	description = EXCLUDED.description,
	updated_at = EXCLUDED.updated_at`

	target := r.exec(exec)
	now := time.Now().UTC()
	for i, c := range courses {
		if _, err := sqlx.NamedExecContext(ctx, target, query, rowFromCourse(c, now)); err != nil {
			return i, fmt.Errorf("upsert course %s: %w", c.ID, err)
		}
	}
	return len(courses), nil
}
