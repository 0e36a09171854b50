package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-planner-api/internal/models"
)

func TestStudentRepositoryLoadState(t *testing.T) {
	db, mock, cleanup := newPlannerRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, major, gpa, current_season, current_year FROM students WHERE id = $1")).
		WithArgs("stu-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "major", "gpa", "current_season", "current_year"}).
			AddRow("stu-1", "CS", 3.4, "Winter", 2025))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT course_id FROM student_completed_courses WHERE student_id = $1 ORDER BY course_id")).
		WithArgs("stu-1").
		WillReturnRows(sqlmock.NewRows([]string{"course_id"}).AddRow("CS31").AddRow("MATH31A"))

	state, err := repo.LoadState(context.Background(), "stu-1")
	require.NoError(t, err)
	assert.Equal(t, models.Term{Season: models.SeasonWinter, Year: 2025}, state.CurrentTerm)
	assert.Equal(t, []string{"CS31", "MATH31A"}, state.Completed.IDs())
	assert.Equal(t, "CS", state.Major)
	assert.InDelta(t, 3.4, state.GPA, 0.0001)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryLoadStateBadSeason(t *testing.T) {
	db, mock, cleanup := newPlannerRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM students WHERE id = $1")).
		WithArgs("stu-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "major", "gpa", "current_season", "current_year"}).
			AddRow("stu-1", "CS", 3.4, "Autumn", 2025))
	mock.ExpectQuery(regexp.QuoteMeta("FROM student_completed_courses")).
		WithArgs("stu-1").
		WillReturnRows(sqlmock.NewRows([]string{"course_id"}))

	_, err := repo.LoadState(context.Background(), "stu-1")
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequirementRepositoryFindByMajor(t *testing.T) {
	db, mock, cleanup := newPlannerRepoMock(t)
	defer cleanup()
	repo := NewRequirementRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT major, core_courses, elective_courses, electives_required FROM degree_requirements WHERE major = $1")).
		WithArgs("CS").
		WillReturnRows(sqlmock.NewRows([]string{"major", "core_courses", "elective_courses", "electives_required"}).
			AddRow("CS", "{CS31,CS32}", "{CS111,CS118}", 1))

	req, err := repo.FindByMajor(context.Background(), "CS")
	require.NoError(t, err)
	assert.Equal(t, []string{"CS31", "CS32"}, req.CoreCourses)
	assert.Equal(t, 1, req.ElectivesRequired)
	assert.Equal(t, []string{"CS111", "CS118"}, req.ElectiveCourses)
	assert.NoError(t, mock.ExpectationsWereMet())
}
