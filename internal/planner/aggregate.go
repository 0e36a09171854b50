package planner

import (
	"math"

	"github.com/noah-isme/course-planner-api/internal/models"
)

// BuildTermPlan computes unit, GPA and workload figures for a placed term.
func BuildTermPlan(term models.Term, courses []models.ScheduledCourse, incomingGPA float64) models.TermPlan {
	tp := models.TermPlan{
		Term:      term,
		Label:     term.Label(),
		Courses:   courses,
		Conflicts: DetectConflicts(courses),
	}
	if tp.Courses == nil {
		tp.Courses = []models.ScheduledCourse{}
	}
	var gpaPoints, load float64
	for _, c := range courses {
		tp.TotalUnits += c.Units
		gpaPoints += float64(c.Units) * math.Min(maxGPA, incomingGPA*multiplierFor(c.Difficulty))
		load += float64(c.Units * c.Difficulty.Level())
	}
	if tp.TotalUnits > 0 {
		tp.EstimatedGPA = round2(gpaPoints / float64(tp.TotalUnits))
		tp.WorkloadScore = round2(load / float64(tp.TotalUnits))
	}
	return tp
}

// Aggregate folds term plans into the plan summary. schedulable is the pool size at the start
// of planning; a zero-unit plan reports the incoming GPA.
func Aggregate(terms []models.TermPlan, incomingGPA float64, schedulable int) models.MultiTermPlan {
	plan := models.MultiTermPlan{Terms: terms, OverallGPA: incomingGPA}
	if plan.Terms == nil {
		plan.Terms = []models.TermPlan{}
	}
	var weighted float64
	seen := make(map[string]struct{})
	for _, t := range terms {
		plan.TotalUnits += t.TotalUnits
		weighted += t.EstimatedGPA * float64(t.TotalUnits)
		for _, c := range t.Courses {
			seen[c.ID] = struct{}{}
		}
	}
	if plan.TotalUnits > 0 {
		plan.OverallGPA = round2(weighted / float64(plan.TotalUnits))
	}
	if schedulable > 0 {
		plan.CompletionRate = round2(float64(len(seen)) / float64(schedulable))
	}
	if len(terms) > 0 {
		plan.GraduationLabel = terms[len(terms)-1].Label
	}
	return plan
}

// TrimTrailingEmpty drops empty terms at the end of the plan and re-derives the graduation label.
func TrimTrailingEmpty(plan models.MultiTermPlan) models.MultiTermPlan {
	end := len(plan.Terms)
	for end > 0 && len(plan.Terms[end-1].Courses) == 0 {
		end--
	}
	plan.Terms = plan.Terms[:end]
	plan.GraduationLabel = ""
	if end > 0 {
		plan.GraduationLabel = plan.Terms[end-1].Label
	}
	return plan
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
