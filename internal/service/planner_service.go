package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"go.uber.org/zap"

	"github.com/noah-isme/course-planner-api/internal/catalogio"
	"github.com/noah-isme/course-planner-api/internal/dto"
	"github.com/noah-isme/course-planner-api/internal/models"
	"github.com/noah-isme/course-planner-api/internal/planner"
	"github.com/noah-isme/course-planner-api/internal/repository"
	appErrors "github.com/noah-isme/course-planner-api/pkg/errors"
	"github.com/noah-isme/course-planner-api/pkg/jobs"
)

type plannerCourseReader interface {
	List(ctx context.Context, filter models.CourseFilter) ([]models.Course, error)
	FindByID(ctx context.Context, id string) (*models.Course, error)
}

type plannerStudentReader interface {
	LoadState(ctx context.Context, studentID string) (*models.StudentState, error)
}

type requirementReader interface {
	FindByMajor(ctx context.Context, major string) (*models.DegreeRequirement, error)
}

type savedPlanRepository interface {
	CreateVersioned(ctx context.Context, exec sqlx.ExtContext, plan *models.SavedPlan) error
	ListByStudent(ctx context.Context, studentID string) ([]models.SavedPlan, error)
	FindByID(ctx context.Context, id string) (*models.SavedPlan, error)
	UpdateStatus(ctx context.Context, exec sqlx.ExtContext, id string, status models.SavedPlanStatus) error
	ArchiveActive(ctx context.Context, exec sqlx.ExtContext, studentID string) (int64, error)
	Delete(ctx context.Context, id string) error
}

type planCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Invalidate(ctx context.Context, pattern string) error
}

type planExporter interface {
	Supports(format string) bool
	Generate(record *models.SavedPlan, content models.MultiTermPlan, format string) (*ExportResult, error)
}

type planObserver interface {
	ObservePlan(plan models.MultiTermPlan, minUnits int, duration time.Duration)
	ObserveCatalogLoad(source string, courses int, duration time.Duration)
}

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

const (
	autoSaveJobType       = "plan.autosave"
	maxCoursesPerTermWarn = 6
)

// PlannerConfig governs planner behaviour.
type PlannerConfig struct {
	Enabled             bool
	ProposalTTL         time.Duration
	CacheTTL            time.Duration
	DefaultMaxTerms     int
	DefaultMaxUnits     int
	DefaultMinUnits     int
	DefaultOptimalUnits int
}

// PlannerService wraps the planning engine with persistence, caching and access control.
type PlannerService struct {
	courses      plannerCourseReader
	students     plannerStudentReader
	requirements requirementReader
	plans        savedPlanRepository
	cache        planCache
	exports      planExporter
	metrics      planObserver
	tx           txProvider
	engine       *planner.Engine
	validator    *validator.Validate
	logger       *zap.Logger
	cfg          PlannerConfig
	store        *proposalStore
	autosave     *jobs.Queue[string]
}

// PlannerDeps bundles the collaborators of PlannerService.
type PlannerDeps struct {
	Courses      plannerCourseReader
	Students     plannerStudentReader
	Requirements requirementReader
	Plans        savedPlanRepository
	Cache        planCache
	Exports      planExporter
	Metrics      planObserver
	Tx           txProvider
}

// NewPlannerService wires planner dependencies.
func NewPlannerService(deps PlannerDeps, validate *validator.Validate, logger *zap.Logger, cfg PlannerConfig) *PlannerService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ProposalTTL <= 0 {
		cfg.ProposalTTL = 30 * time.Minute
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 30 * time.Minute
	}
	if cfg.DefaultMaxTerms <= 0 {
		cfg.DefaultMaxTerms = 12
	}
	if cfg.DefaultMaxUnits <= 0 {
		cfg.DefaultMaxUnits = 20
	}
	return &PlannerService{
		courses:      deps.Courses,
		students:     deps.Students,
		requirements: deps.Requirements,
		plans:        deps.Plans,
		cache:        deps.Cache,
		exports:      deps.Exports,
		metrics:      deps.Metrics,
		tx:           deps.Tx,
		engine:       planner.NewEngine(nil, logger.Named("engine")),
		validator:    validate,
		logger:       logger,
		cfg:          cfg,
		store:        newProposalStore(cfg.ProposalTTL),
	}
}

// AutoSaveHandler persists a stored proposal; it is the handler for the autosave queue.
func (s *PlannerService) AutoSaveHandler(ctx context.Context, job jobs.Job[string]) error {
	proposal, ok := s.store.Get(job.Payload)
	if !ok {
		s.logger.Warn("autosave proposal expired", zap.String("proposal_id", job.Payload))
		return nil
	}
	record, err := s.persist(ctx, proposal, proposal.Name)
	if err != nil {
		return err
	}
	s.store.Delete(proposal.ProposalID)
	s.logger.Info("plan autosaved", zap.String("plan_id", record.ID), zap.String("student_id", record.StudentID), zap.Int("version", record.Version))
	return nil
}

// UseAutoSaveQueue routes autoSave requests through q instead of saving inline.
func (s *PlannerService) UseAutoSaveQueue(q *jobs.Queue[string]) {
	s.autosave = q
}

// Generate runs the engine for a stored or inline student and keeps the result as a proposal.
func (s *PlannerService) Generate(ctx context.Context, req dto.GeneratePlanRequest, actor *models.JWTClaims) (*dto.GeneratePlanResponse, error) {
	if !s.cfg.Enabled {
		return nil, appErrors.Clone(appErrors.ErrFeatureDisabled, "planner is disabled")
	}
	req.Constraints = s.withDefaults(req.Constraints)
	if req.MaxTerms == 0 {
		req.MaxTerms = s.cfg.DefaultMaxTerms
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid plan generation payload")
	}
	if err := checkConstraints(req.Constraints); err != nil {
		return nil, err
	}
	if err := ensureAccess(actor, req.StudentID); err != nil {
		return nil, err
	}

	state, err := s.resolveState(ctx, req)
	if err != nil {
		return nil, err
	}

	cacheKey, err := PlanCacheKey(state.StudentID, planCacheInput{
		Completed:   state.Completed.IDs(),
		CurrentTerm: state.CurrentTerm,
		GPA:         state.GPA,
		Major:       state.Major,
		Courses:     req.Courses,
		Constraints: req.Constraints,
		MaxTerms:    req.MaxTerms,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to derive cache key")
	}

	var result cachedPlan
	cached := false
	if s.cache != nil {
		hit, cacheErr := s.cache.Get(ctx, cacheKey, &result)
		cached = hit && cacheErr == nil
	}
	if !cached {
		result, err = s.runEngine(ctx, state, req)
		if err != nil {
			return nil, err
		}
		if s.cache != nil {
			if err := s.cache.Set(ctx, cacheKey, result, s.cfg.CacheTTL); err != nil {
				s.logger.Warn("plan cache write failed", zap.String("student_id", state.StudentID), zap.Error(err))
			}
		}
	}

	proposal := planProposal{
		ProposalID:  uuid.NewString(),
		StudentID:   state.StudentID,
		Name:        req.Name,
		Plan:        result.Plan,
		RequestedAt: time.Now().UTC(),
	}
	s.store.Save(proposal)

	if req.AutoSave && proposal.StudentID != "" {
		s.scheduleAutoSave(ctx, proposal)
	}

	return &dto.GeneratePlanResponse{
		ProposalID: proposal.ProposalID,
		StudentID:  proposal.StudentID,
		Cached:     cached,
		Plan:       result.Plan,
		Dropped:    result.Dropped,
	}, nil
}

// Save persists a generated proposal as a new draft version.
func (s *PlannerService) Save(ctx context.Context, req dto.SavePlanRequest, actor *models.JWTClaims) (*models.SavedPlan, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid save plan payload")
	}
	proposal, ok := s.store.Get(req.ProposalID)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "proposal not found or expired")
	}
	if proposal.StudentID == "" {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "proposal has no student and cannot be saved")
	}
	if err := ensureAccess(actor, proposal.StudentID); err != nil {
		return nil, err
	}
	name := req.Name
	if name == "" {
		name = proposal.Name
	}
	record, err := s.persist(ctx, proposal, name)
	if err != nil {
		return nil, err
	}
	s.store.Delete(req.ProposalID)
	return record, nil
}

// List returns saved plan versions for a student, newest first.
func (s *PlannerService) List(ctx context.Context, query dto.PlanListQuery, actor *models.JWTClaims) ([]models.SavedPlanMeta, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "studentId is required")
	}
	if err := ensureAccess(actor, query.StudentID); err != nil {
		return nil, err
	}
	plans, err := s.plans.ListByStudent(ctx, query.StudentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list saved plans")
	}
	out := make([]models.SavedPlanMeta, 0, len(plans))
	for _, p := range plans {
		out = append(out, p.Meta())
	}
	return out, nil
}

// Get returns a saved plan with its decoded content.
func (s *PlannerService) Get(ctx context.Context, id string, actor *models.JWTClaims) (*dto.SavedPlanResponse, error) {
	record, err := s.loadPlan(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	content, err := decodePlan(record)
	if err != nil {
		return nil, err
	}
	return &dto.SavedPlanResponse{SavedPlanMeta: record.Meta(), StudentID: record.StudentID, Plan: content}, nil
}

// Activate marks a plan ACTIVE and archives the student's previously active plan.
func (s *PlannerService) Activate(ctx context.Context, id string, actor *models.JWTClaims) (*models.SavedPlanMeta, error) {
	record, err := s.loadPlan(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	if record.Status == models.SavedPlanStatusActive {
		meta := record.Meta()
		return &meta, nil
	}
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

	if _, err = s.plans.ArchiveActive(ctx, tx, record.StudentID); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to archive active plan")
	}
	if err = s.plans.UpdateStatus(ctx, tx, record.ID, models.SavedPlanStatusActive); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to activate plan")
	}
	if err = tx.Commit(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit plan activation")
	}

	s.invalidateStudent(ctx, record.StudentID)
	record.Status = models.SavedPlanStatusActive
	meta := record.Meta()
	return &meta, nil
}

// Delete removes a draft plan version.
func (s *PlannerService) Delete(ctx context.Context, id string, actor *models.JWTClaims) error {
	record, err := s.loadPlan(ctx, id, actor)
	if err != nil {
		return err
	}
	if record.Status != models.SavedPlanStatusDraft {
		return appErrors.Clone(appErrors.ErrPlanLocked, "only draft plans can be deleted")
	}
	if err := s.plans.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "plan not found")
		}
		if errors.Is(err, repository.ErrPlanNotDraft) {
			return appErrors.Clone(appErrors.ErrPlanLocked, "only draft plans can be deleted")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete plan")
	}
	s.invalidateStudent(ctx, record.StudentID)
	return nil
}

// Export renders a saved plan and returns a signed download link.
func (s *PlannerService) Export(ctx context.Context, id string, req dto.ExportRequest, actor *models.JWTClaims) (*dto.ExportResponse, error) {
	if req.Format == "" {
		req.Format = "csv"
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "format must be csv or pdf")
	}
	if s.exports == nil || !s.exports.Supports(req.Format) {
		return nil, appErrors.Clone(appErrors.ErrFeatureDisabled, "export format unavailable")
	}
	record, err := s.loadPlan(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	content, err := decodePlan(record)
	if err != nil {
		return nil, err
	}
	result, err := s.exports.Generate(record, content, req.Format)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to export plan")
	}
	return &dto.ExportResponse{
		PlanID:      record.ID,
		Format:      result.Format,
		DownloadURL: result.URL,
		ExpiresAt:   result.ExpiresAt.Format(time.RFC3339),
	}, nil
}

// Score explains how the engine would rank one course for a student.
func (s *PlannerService) Score(ctx context.Context, req dto.ScoreRequest) (*models.ScoreBreakdown, error) {
	req.Constraints = s.withDefaults(req.Constraints)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid score payload")
	}
	var course models.Course
	if req.Course != nil {
		course = *req.Course
	} else {
		found, err := s.courses.FindByID(ctx, req.CourseID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
		}
		course = *found
	}
	completed := make([]string, 0, len(req.Student.Completed))
	for _, id := range req.Student.Completed {
		completed = append(completed, catalogio.NormalizeID(id))
	}
	state := models.StudentState{
		Completed: models.NewCompletedSet(completed...),
		GPA:       req.Student.GPA,
		Major:     req.Student.Major,
	}
	breakdown := planner.ScoreCourse(course, state, req.Constraints)
	return &breakdown, nil
}

// DetectConflicts reports overlapping meeting windows among the given courses.
func (s *PlannerService) DetectConflicts(req dto.ConflictsRequest) (*dto.ConflictsResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid conflicts payload")
	}
	return &dto.ConflictsResponse{Conflicts: planner.DetectConflicts(req.Courses)}, nil
}

// Validate checks a hand-edited plan for prerequisite, duplicate, unit and time conflicts.
func (s *PlannerService) Validate(req dto.ValidatePlanRequest) (*dto.ValidatePlanResponse, error) {
	req.Constraints = s.withDefaults(req.Constraints)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid plan validation payload")
	}
	return ValidatePlan(req), nil
}

// ValidatePlan applies the plan validation rules. Time conflicts make a plan invalid.
func ValidatePlan(req dto.ValidatePlanRequest) *dto.ValidatePlanResponse {
	resp := &dto.ValidatePlanResponse{
		Errors:    []string{},
		Warnings:  []string{},
		Conflicts: map[string][]string{},
	}
	completed := models.NewCompletedSet(req.Completed...)
	scheduledIn := map[string]string{}

	for _, term := range req.Terms {
		label := term.Term.Label()
		units := 0
		inTerm := map[string]struct{}{}
		for _, c := range term.Courses {
			units += c.Units
			if _, dup := inTerm[c.ID]; dup {
				resp.Errors = append(resp.Errors, fmt.Sprintf("%s: %s is listed more than once", label, c.ID))
				continue
			}
			inTerm[c.ID] = struct{}{}
			if prev, ok := scheduledIn[c.ID]; ok {
				resp.Errors = append(resp.Errors, fmt.Sprintf("%s: %s is already scheduled in %s", label, c.ID, prev))
			} else if completed.Has(c.ID) {
				resp.Errors = append(resp.Errors, fmt.Sprintf("%s: %s is already completed", label, c.ID))
			}
			var missing []string
			for _, p := range c.Prerequisites {
				if !completed.Has(p) {
					missing = append(missing, p)
				}
			}
			if len(missing) > 0 {
				resp.Errors = append(resp.Errors, fmt.Sprintf("%s: %s missing prerequisites %v", label, c.ID, missing))
			}
		}
		if units > req.Constraints.MaxUnits {
			resp.Errors = append(resp.Errors, fmt.Sprintf("%s: %d units exceeds maximum %d", label, units, req.Constraints.MaxUnits))
		}
		if len(term.Courses) > 0 && units < req.Constraints.MinUnits {
			resp.Warnings = append(resp.Warnings, fmt.Sprintf("%s: %d units below minimum %d", label, units, req.Constraints.MinUnits))
		}
		if len(term.Courses) > maxCoursesPerTermWarn {
			resp.Warnings = append(resp.Warnings, fmt.Sprintf("%s: %d courses exceeds recommended %d", label, len(term.Courses), maxCoursesPerTermWarn))
		}
		if conflicts := planner.DetectConflicts(term.Courses); len(conflicts) > 0 {
			resp.Conflicts[label] = conflicts
		}
		for id := range inTerm {
			scheduledIn[id] = label
			completed.Add(id)
		}
	}
	resp.IsValid = len(resp.Errors) == 0 && len(resp.Conflicts) == 0
	return resp
}

func (s *PlannerService) resolveState(ctx context.Context, req dto.GeneratePlanRequest) (models.StudentState, error) {
	if req.Student != nil {
		return req.Student.ToState(req.StudentID), nil
	}
	if s.students == nil {
		return models.StudentState{}, appErrors.Clone(appErrors.ErrPreconditionFailed, "student lookup unavailable; send an inline student")
	}
	state, err := s.students.LoadState(ctx, req.StudentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.StudentState{}, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return models.StudentState{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return *state, nil
}

func (s *PlannerService) runEngine(ctx context.Context, state models.StudentState, req dto.GeneratePlanRequest) (cachedPlan, error) {
	candidates := req.Courses
	if len(candidates) == 0 {
		if s.courses == nil {
			return cachedPlan{}, appErrors.Clone(appErrors.ErrPreconditionFailed, "course catalog unavailable; send inline courses")
		}
		loadStart := time.Now()
		var err error
		candidates, err = s.courses.List(ctx, models.CourseFilter{Major: state.Major})
		if err != nil {
			return cachedPlan{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course catalog")
		}
		if s.metrics != nil {
			s.metrics.ObserveCatalogLoad("postgres", len(candidates), time.Since(loadStart))
		}
	} else if s.metrics != nil {
		s.metrics.ObserveCatalogLoad("inline", len(candidates), 0)
	}

	checker, err := s.checkerFor(ctx, state.Major)
	if err != nil {
		return cachedPlan{}, err
	}

	start := time.Now()
	plan := s.engine.WithChecker(checker).GenerateMultiTermPlan(state, candidates, req.Constraints, req.MaxTerms)
	if s.metrics != nil {
		s.metrics.ObservePlan(plan, req.Constraints.MinUnits, time.Since(start))
	}

	dropped := map[string][]string{}
	for _, term := range plan.Terms {
		if len(term.Dropped) > 0 {
			dropped[term.Label] = term.Dropped
		}
	}
	if len(dropped) == 0 {
		dropped = nil
	}
	s.logger.Info("plan generated",
		zap.String("student_id", state.StudentID),
		zap.Int("candidates", len(candidates)),
		zap.Int("terms", len(plan.Terms)),
		zap.String("termination", string(plan.Termination)),
		zap.Duration("elapsed", time.Since(start)))
	return cachedPlan{Plan: plan, Dropped: dropped}, nil
}

func (s *PlannerService) checkerFor(ctx context.Context, major string) (planner.CompletionChecker, error) {
	if s.requirements == nil || major == "" {
		return planner.NeverComplete{}, nil
	}
	req, err := s.requirements.FindByMajor(ctx, major)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return planner.NeverComplete{}, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load degree requirements")
	}
	return planner.CheckerFor(req), nil
}

func (s *PlannerService) persist(ctx context.Context, proposal planProposal, name string) (record *models.SavedPlan, err error) {
	if s.tx == nil || s.plans == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "plan persistence unavailable")
	}
	payload, marshalErr := json.Marshal(proposal.Plan)
	if marshalErr != nil {
		return nil, appErrors.Wrap(marshalErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode plan")
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

	record = &models.SavedPlan{
		StudentID:       proposal.StudentID,
		Name:            name,
		Status:          models.SavedPlanStatusDraft,
		TotalUnits:      proposal.Plan.TotalUnits,
		OverallGPA:      proposal.Plan.OverallGPA,
		GraduationLabel: proposal.Plan.GraduationLabel,
		Payload:         types.JSONText(payload),
	}
	if err = s.plans.CreateVersioned(ctx, tx, record); err != nil {
		if errors.Is(err, repository.ErrPlanVersionTaken) {
			return nil, appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "another save for this student is in progress; retry")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save plan")
	}
	if err = tx.Commit(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit plan transaction")
	}

	s.invalidateStudent(ctx, proposal.StudentID)
	return record, nil
}

func (s *PlannerService) scheduleAutoSave(ctx context.Context, proposal planProposal) {
	if s.autosave != nil {
		err := s.autosave.Enqueue(jobs.Job[string]{ID: proposal.ProposalID, Type: autoSaveJobType, Payload: proposal.ProposalID})
		if err == nil {
			return
		}
		s.logger.Warn("autosave enqueue failed, saving inline", zap.String("proposal_id", proposal.ProposalID), zap.Error(err))
	}
	if err := s.AutoSaveHandler(ctx, jobs.Job[string]{ID: proposal.ProposalID, Type: autoSaveJobType, Payload: proposal.ProposalID}); err != nil {
		s.logger.Error("autosave failed", zap.String("proposal_id", proposal.ProposalID), zap.Error(err))
	}
}

func (s *PlannerService) loadPlan(ctx context.Context, id string, actor *models.JWTClaims) (*models.SavedPlan, error) {
	if id == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "plan id is required")
	}
	record, err := s.plans.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "plan not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load plan")
	}
	if err := ensureAccess(actor, record.StudentID); err != nil {
		return nil, err
	}
	return record, nil
}

func (s *PlannerService) invalidateStudent(ctx context.Context, studentID string) {
	if s.cache == nil || studentID == "" {
		return
	}
	if err := s.cache.Invalidate(ctx, PlanCachePattern(studentID)); err != nil {
		s.logger.Warn("plan cache invalidation failed", zap.String("student_id", studentID), zap.Error(err))
	}
}

func (s *PlannerService) withDefaults(c models.ScheduleConstraints) models.ScheduleConstraints {
	if c.MaxUnits == 0 {
		c.MaxUnits = s.cfg.DefaultMaxUnits
	}
	if c.MinUnits == 0 && s.cfg.DefaultMinUnits <= c.MaxUnits {
		c.MinUnits = s.cfg.DefaultMinUnits
	}
	if c.OptimalUnits == 0 && s.cfg.DefaultOptimalUnits >= c.MinUnits && s.cfg.DefaultOptimalUnits <= c.MaxUnits {
		c.OptimalUnits = s.cfg.DefaultOptimalUnits
	}
	return c
}

func checkConstraints(c models.ScheduleConstraints) error {
	if c.MinUnits > c.MaxUnits {
		return appErrors.Clone(appErrors.ErrInvalidConstraints, fmt.Sprintf("minUnits (%d) exceeds maxUnits (%d)", c.MinUnits, c.MaxUnits))
	}
	if c.OptimalUnits > 0 && (c.OptimalUnits < c.MinUnits || c.OptimalUnits > c.MaxUnits) {
		return appErrors.Clone(appErrors.ErrInvalidConstraints, fmt.Sprintf("optimalUnits (%d) must lie between minUnits (%d) and maxUnits (%d)", c.OptimalUnits, c.MinUnits, c.MaxUnits))
	}
	avoided := models.NewCompletedSet(c.AvoidedCourses...)
	for _, id := range c.RequiredCourses {
		if avoided.Has(id) {
			return appErrors.Clone(appErrors.ErrInvalidConstraints, fmt.Sprintf("course %s is both required and avoided", id))
		}
	}
	return nil
}

func ensureAccess(actor *models.JWTClaims, studentID string) error {
	if actor == nil {
		return appErrors.ErrUnauthorized
	}
	if studentID == "" {
		return nil
	}
	if !actor.CanActFor(studentID) {
		return appErrors.Clone(appErrors.ErrForbidden, "not allowed to act for this student")
	}
	return nil
}

func decodePlan(record *models.SavedPlan) (models.MultiTermPlan, error) {
	var content models.MultiTermPlan
	if err := json.Unmarshal(record.Payload, &content); err != nil {
		return content, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "stored plan payload is corrupt")
	}
	return content, nil
}

type planCacheInput struct {
	Completed   []string                   `json:"completed"`
	CurrentTerm models.Term                `json:"currentTerm"`
	GPA         float64                    `json:"gpa"`
	Major       string                     `json:"major"`
	Courses     []models.Course            `json:"courses,omitempty"`
	Constraints models.ScheduleConstraints `json:"constraints"`
	MaxTerms    int                        `json:"maxTerms"`
}

type cachedPlan struct {
	Plan    models.MultiTermPlan `json:"plan"`
	Dropped map[string][]string  `json:"dropped,omitempty"`
}

type planProposal struct {
	ProposalID  string
	StudentID   string
	Name        string
	Plan        models.MultiTermPlan
	RequestedAt time.Time
}

type proposalStore struct {
	ttl   time.Duration
	mu    sync.RWMutex
	items map[string]planProposal
}

func newProposalStore(ttl time.Duration) *proposalStore {
	return &proposalStore{
		ttl:   ttl,
		items: make(map[string]planProposal),
	}
}

func (s *proposalStore) Save(proposal planProposal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[proposal.ProposalID] = proposal
}

func (s *proposalStore) Get(id string) (planProposal, bool) {
	s.mu.RLock()
	proposal, ok := s.items[id]
	s.mu.RUnlock()
	if !ok {
		return planProposal{}, false
	}
	if time.Since(proposal.RequestedAt) > s.ttl {
		s.Delete(id)
		return planProposal{}, false
	}
	return proposal, true
}

func (s *proposalStore) Delete(id string) {
	s.mu.Lock()
	delete(s.items, id)
	s.mu.Unlock()
}

// Sweep drops expired proposals and returns how many were removed.
func (s *proposalStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, p := range s.items {
		if time.Since(p.RequestedAt) > s.ttl {
			delete(s.items, id)
			removed++
		}
	}
	return removed
}

// SweepProposals drops expired in-memory proposals.
func (s *PlannerService) SweepProposals() int {
	return s.store.Sweep()
}
