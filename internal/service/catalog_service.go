package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/course-planner-api/internal/catalogio"
	"github.com/noah-isme/course-planner-api/internal/dto"
	"github.com/noah-isme/course-planner-api/internal/models"
	"github.com/noah-isme/course-planner-api/pkg/cache"
	appErrors "github.com/noah-isme/course-planner-api/pkg/errors"
)

type catalogRepository interface {
	List(ctx context.Context, filter models.CourseFilter) ([]models.Course, error)
	FindByID(ctx context.Context, id string) (*models.Course, error)
	Upsert(ctx context.Context, exec sqlx.ExtContext, courses []models.Course) (int, error)
}

// CatalogService exposes the course catalog and CSV imports.
type CatalogService struct {
	repo      catalogRepository
	tx        txProvider
	cache     planCache
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCatalogService constructs the catalog service.
func NewCatalogService(repo catalogRepository, tx txProvider, cache planCache, validate *validator.Validate, logger *zap.Logger) *CatalogService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{repo: repo, tx: tx, cache: cache, validator: validate, logger: logger}
}

// List returns catalog courses filtered by major and season.
func (s *CatalogService) List(ctx context.Context, query dto.CourseListQuery) ([]models.Course, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course filter")
	}
	filter := models.CourseFilter{Major: query.Major}
	if query.Term != "" {
		season, err := models.ParseSeason(query.Term)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid term")
		}
		filter.Season = season
	}
	courses, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}
	return courses, nil
}

// Get returns a single course.
func (s *CatalogService) Get(ctx context.Context, id string) (*models.Course, error) {
	course, err := s.repo.FindByID(ctx, catalogio.NormalizeID(id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	return course, nil
}

// Import loads a catalog CSV, rejects invalid rows and upserts the rest in one transaction.
// Prerequisites that resolve to no known course are reported as warnings.
func (s *CatalogService) Import(ctx context.Context, in io.Reader) (resp *dto.CourseImportResponse, err error) {
	courses, rejected, loadErr := catalogio.Load(in, ',')
	if loadErr != nil {
		return nil, appErrors.Wrap(loadErr, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "catalog file is not valid CSV")
	}
	resp = &dto.CourseImportResponse{Rejected: make([]dto.ImportRowError, 0, len(rejected))}
	for _, r := range rejected {
		resp.Rejected = append(resp.Rejected, dto.ImportRowError{Line: r.Line, CourseID: r.CourseID, Message: r.Err.Error()})
	}
	if len(courses) == 0 {
		return resp, nil
	}

	existing, err := s.repo.List(ctx, models.CourseFilter{})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load catalog")
	}
	resp.Warnings = danglingWarnings(append(existing, courses...))

	if s.tx == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "transaction provider missing")
	}
	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if resp.Imported, err = s.repo.Upsert(ctx, tx, courses); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to import courses")
	}
	if err = tx.Commit(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit catalog import")
	}

	if s.cache != nil {
		if cacheErr := s.cache.Invalidate(ctx, cache.Key("plans", "*")); cacheErr != nil {
			s.logger.Warn("plan cache invalidation failed", zap.Error(cacheErr))
		}
	}
	s.logger.Info("catalog imported", zap.Int("imported", resp.Imported), zap.Int("rejected", len(resp.Rejected)))
	return resp, nil
}

func danglingWarnings(courses []models.Course) []string {
	dangling := catalogio.DanglingPrerequisites(courses)
	if len(dangling) == 0 {
		return nil
	}
	ids := make([]string, 0, len(dangling))
	for id := range dangling {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	warnings := make([]string, 0, len(ids))
	for _, id := range ids {
		warnings = append(warnings, fmt.Sprintf("%s references unknown prerequisites %v", id, dangling[id]))
	}
	return warnings
}
