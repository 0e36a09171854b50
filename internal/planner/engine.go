package planner

import (
	"go.uber.org/zap"

	"github.com/noah-isme/course-planner-api/internal/models"
)

// Engine runs the greedy multi-term planning loop. It holds no per-run state and is safe
// to share between goroutines.
type Engine struct {
	checker CompletionChecker
	logger  *zap.Logger
}

// NewEngine builds an engine. A nil checker never reports completion.
func NewEngine(checker CompletionChecker, logger *zap.Logger) *Engine {
	if checker == nil {
		checker = NeverComplete{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{checker: checker, logger: logger}
}

// WithChecker returns a copy of the engine using checker.
func (e *Engine) WithChecker(checker CompletionChecker) *Engine {
	return NewEngine(checker, e.logger)
}

// GenerateMultiTermPlan plans up to maxTerms terms starting at the student's current term.
// Neither state nor candidates are modified.
func (e *Engine) GenerateMultiTermPlan(state models.StudentState, candidates []models.Course, constraints models.ScheduleConstraints, maxTerms int) models.MultiTermPlan {
	run := state.Clone()
	index := NewCatalogIndex(candidates)
	pool := schedulablePool(candidates, run.Completed, constraints.AvoidedCourses)
	schedulable := len(pool)

	termination := models.PlanPlanning
	terms := make([]models.TermPlan, 0, maxInt(maxTerms, 0))
	term := run.CurrentTerm
	for i := 0; i < maxTerms; i++ {
		tp := e.planTerm(term, run, pool, constraints, index)
		terms = append(terms, tp)

		scheduled := tp.CourseIDs()
		run.Completed.Add(scheduled...)
		pool = removeCourses(pool, scheduled)

		term = term.Next()
		run.CurrentTerm = term
		if e.checker.IsComplete(run) {
			termination = models.PlanComplete
			break
		}
	}
	if termination == models.PlanPlanning {
		termination = models.PlanTargetReached
	}

	plan := Aggregate(terms, state.GPA, schedulable)
	plan.Termination = termination
	e.logger.Debug("multi-term plan generated",
		zap.String("student_id", state.StudentID),
		zap.Int("catalog", index.Len()),
		zap.Int("terms", len(plan.Terms)),
		zap.Int("total_units", plan.TotalUnits),
		zap.String("termination", string(termination)))
	return plan
}

func (e *Engine) planTerm(term models.Term, state models.StudentState, pool []models.Course, constraints models.ScheduleConstraints, index *CatalogIndex) models.TermPlan {
	eligible, skipped := FilterEligible(pool, state.Completed, term.Season, index)
	for _, s := range skipped {
		if s.Reason == SkipUnresolvable {
			e.logger.Debug("course skipped: unresolvable prerequisite",
				zap.String("course_id", s.CourseID),
				zap.Strings("missing", s.Missing),
				zap.String("term", term.Label()))
		}
	}

	ranked := RankCourses(eligible, state, constraints)
	selected := SelectTerm(ranked, constraints)
	placed, dropped := AssignTimeSlots(selected)

	tp := BuildTermPlan(term, placed, state.GPA)
	for _, c := range dropped {
		tp.Dropped = append(tp.Dropped, c.ID)
		e.logger.Debug("course dropped: no free time slot",
			zap.String("course_id", c.ID),
			zap.String("term", term.Label()))
	}
	return tp
}

// schedulablePool copies candidates, skipping completed, avoided and duplicate identifiers.
func schedulablePool(candidates []models.Course, completed models.CompletedSet, avoided []string) []models.Course {
	skip := models.NewCompletedSet(avoided...)
	pool := make([]models.Course, 0, len(candidates))
	seen := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		if completed.Has(c.ID) || skip.Has(c.ID) {
			continue
		}
		if _, dup := seen[c.ID]; dup {
			continue
		}
		seen[c.ID] = struct{}{}
		pool = append(pool, c)
	}
	return pool
}

func removeCourses(pool []models.Course, ids []string) []models.Course {
	if len(ids) == 0 {
		return pool
	}
	drop := models.NewCompletedSet(ids...)
	kept := make([]models.Course, 0, len(pool))
	for _, c := range pool {
		if !drop.Has(c.ID) {
			kept = append(kept, c)
		}
	}
	return kept
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
