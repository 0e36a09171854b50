package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-planner-api/internal/dto"
	"github.com/noah-isme/course-planner-api/internal/models"
	appErrors "github.com/noah-isme/course-planner-api/pkg/errors"
)

type catalogRepoStub struct {
	courses   []models.Course
	filter    models.CourseFilter
	upserted  []models.Course
	upsertErr error
}

func (s *catalogRepoStub) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, error) {
	s.filter = filter
	return s.courses, nil
}

func (s *catalogRepoStub) FindByID(ctx context.Context, id string) (*models.Course, error) {
	for _, c := range s.courses {
		if c.ID == id {
			course := c
			return &course, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *catalogRepoStub) Upsert(ctx context.Context, exec sqlx.ExtContext, courses []models.Course) (int, error) {
	if s.upsertErr != nil {
		return 0, s.upsertErr
	}
	s.upserted = append(s.upserted, courses...)
	return len(courses), nil
}

const importCSV = `id,name,units,difficulty,type,prerequisites,offered_terms,majors,default_time,instructor,description
CS 32,Intro to CS II,4,medium,core,CS31,Fall|Winter,CS,morning,,
CS33,Computer Organization,4,hard,core,CS32;PHYS1A,Winter,CS,,,
bad id,Broken,4,medium,core,,Fall,CS,,,
CS35L,Software Lab,12,easy,core,,Spring,CS,,,
`

func TestCatalogServiceList(t *testing.T) {
	repo := &catalogRepoStub{courses: []models.Course{catalogCourse("CS31", 4)}}
	svc := NewCatalogService(repo, nil, nil, nil, nil)

	courses, err := svc.List(context.Background(), dto.CourseListQuery{Major: "CS", Term: "winter"})
	require.NoError(t, err)
	assert.Len(t, courses, 1)
	assert.Equal(t, models.CourseFilter{Major: "CS", Season: models.SeasonWinter}, repo.filter)

	_, err = svc.List(context.Background(), dto.CourseListQuery{Term: "autumn"})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestCatalogServiceGet(t *testing.T) {
	repo := &catalogRepoStub{courses: []models.Course{catalogCourse("CS31", 4)}}
	svc := NewCatalogService(repo, nil, nil, nil, nil)

	course, err := svc.Get(context.Background(), "cs 31")
	require.NoError(t, err)
	assert.Equal(t, "CS31", course.ID)

	_, err = svc.Get(context.Background(), "CS99")
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestCatalogServiceImport(t *testing.T) {
	tx, mock := newTxProviderMock(t)
	repo := &catalogRepoStub{courses: []models.Course{catalogCourse("CS31", 4)}}
	cacheRepo := newCacheRepoStub()
	svc := NewCatalogService(repo, tx, NewCacheService(cacheRepo, nil, time.Minute, nil, true), nil, nil)

	mock.ExpectBegin()
	mock.ExpectCommit()

	resp, err := svc.Import(context.Background(), strings.NewReader(importCSV))
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Imported)
	require.Len(t, resp.Rejected, 2)
	assert.Equal(t, 4, resp.Rejected[0].Line)
	assert.Equal(t, 5, resp.Rejected[1].Line)
	assert.Contains(t, resp.Rejected[1].Message, "units 12 outside 1-8")
	assert.Equal(t, []string{"CS33 references unknown prerequisites [PHYS1A]"}, resp.Warnings)

	require.Len(t, repo.upserted, 2)
	assert.Equal(t, "CS32", repo.upserted[0].ID)
	assert.Equal(t, []models.Season{models.SeasonFall, models.SeasonWinter}, repo.upserted[0].OfferedTerms)
	assert.Equal(t, []string{"planner:plans:*"}, cacheRepo.patterns)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogServiceImportRollsBack(t *testing.T) {
	tx, mock := newTxProviderMock(t)
	repo := &catalogRepoStub{upsertErr: errors.New("boom")}
	svc := NewCatalogService(repo, tx, nil, nil, nil)

	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := svc.Import(context.Background(), strings.NewReader(importCSV))
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogServiceImportNothingValid(t *testing.T) {
	svc := NewCatalogService(&catalogRepoStub{}, nil, nil, nil, nil)

	resp, err := svc.Import(context.Background(), strings.NewReader("id,name,units\nx,,0\n"))
	require.NoError(t, err)
	assert.Zero(t, resp.Imported)
	assert.Len(t, resp.Rejected, 1)
}
