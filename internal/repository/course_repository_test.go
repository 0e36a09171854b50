package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-planner-api/internal/models"
)

func newPlannerRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

var courseRowColumns = []string{"id", "name", "units", "difficulty", "type", "prerequisites", "offered_terms", "majors", "default_time", "instructor", "description", "updated_at"}

func TestCourseRepositoryListFilters(t *testing.T) {
	db, mock, cleanup := newPlannerRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	rows := sqlmock.NewRows(courseRowColumns).
		AddRow("CS32", "Data Structures", 4, "medium", "core", "{CS31}", "{Fall,Winter}", "{CS}", "morning", "", "", time.Now()).
		AddRow("ENGCOMP3", "Writing", 5, "easy", "general-education", "{}", "{Fall}", "{}", "", "Staff", "", time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, units, difficulty, type, prerequisites, offered_terms, majors, default_time, instructor, description, updated_at FROM courses WHERE (cardinality(majors) = 0 OR $1 = ANY(majors)) AND $2 = ANY(offered_terms) ORDER BY id ASC")).
		WithArgs("CS", "Fall").
		WillReturnRows(rows)

	courses, err := repo.List(context.Background(), models.CourseFilter{Major: "CS", Season: models.SeasonFall})
	require.NoError(t, err)
	require.Len(t, courses, 2)
	assert.Equal(t, []string{"CS31"}, courses[0].Prerequisites)
	assert.Equal(t, []models.Season{models.SeasonFall, models.SeasonWinter}, courses[0].OfferedTerms)
	assert.Equal(t, models.CourseTypeGeneralEducation, courses[1].Type)
	assert.Empty(t, courses[1].Majors)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryListUnfiltered(t *testing.T) {
	db, mock, cleanup := newPlannerRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM courses ORDER BY id ASC")).
		WillReturnRows(sqlmock.NewRows(courseRowColumns))

	courses, err := repo.List(context.Background(), models.CourseFilter{})
	require.NoError(t, err)
	assert.Empty(t, courses)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryFindByIDNotFound(t *testing.T) {
	db, mock, cleanup := newPlannerRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM courses WHERE id = $1")).
		WithArgs("CS999").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "CS999")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryFindByIDsEmpty(t *testing.T) {
	db, mock, cleanup := newPlannerRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	courses, err := repo.FindByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, courses)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryUpsert(t *testing.T) {
	db, mock, cleanup := newPlannerRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO courses")).
		WithArgs("CS31", "Intro", 4, "medium", "elective", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), "", "", "", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO courses")).
		WillReturnError(sql.ErrConnDone)

	n, err := repo.Upsert(context.Background(), nil, []models.Course{
		{ID: "CS31", Name: "Intro", Units: 4, OfferedTerms: []models.Season{models.SeasonFall}},
		{ID: "CS32", Name: "Data Structures", Units: 4},
	})
	assert.Error(t, err)
	assert.Equal(t, 1, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
