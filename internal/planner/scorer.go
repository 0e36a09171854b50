package planner

import (
	"math"
	"sort"

	"github.com/noah-isme/course-planner-api/internal/models"
)

const (
	weightPrerequisites      = 0.25
	weightWorkloadFit        = 0.20
	weightTimePreference     = 0.15
	weightGPAImpact          = 0.20
	weightGraduationProgress = 0.20

	maxScore = 100.0
	maxGPA   = 4.0
)

var workloadFit = map[models.Difficulty]float64{
	models.DifficultyEasy:   100,
	models.DifficultyMedium: 75,
	models.DifficultyHard:   50,
}

var gpaMultiplier = map[models.Difficulty]float64{
	models.DifficultyEasy:   1.1,
	models.DifficultyMedium: 1.0,
	models.DifficultyHard:   0.9,
}

// ScoreCourse computes the weighted composite score for course. It is a pure function.
func ScoreCourse(course models.Course, state models.StudentState, constraints models.ScheduleConstraints) models.ScoreBreakdown {
	b := models.ScoreBreakdown{CourseID: course.ID}

	if PrerequisitesMet(course, state.Completed) {
		b.Prerequisites = maxScore
	}

	if fit, ok := workloadFit[course.Difficulty]; ok {
		b.WorkloadFit = fit
	} else {
		b.WorkloadFit = workloadFit[models.DifficultyMedium]
	}

	b.TimePreference = 60
	if constraints.Prefers(course.DefaultTime) {
		b.TimePreference = maxScore
	}

	b.GPAImpact = math.Min(maxScore, (state.GPA/maxGPA)*maxScore*multiplierFor(course.Difficulty))

	switch {
	case course.Type == models.CourseTypeCore && course.LinkedToMajor(state.Major):
		b.GraduationProgress = 100
	case course.LinkedToMajor(state.Major):
		b.GraduationProgress = 80
	default:
		b.GraduationProgress = 40
	}

	b.Total = b.Prerequisites*weightPrerequisites +
		b.WorkloadFit*weightWorkloadFit +
		b.TimePreference*weightTimePreference +
		b.GPAImpact*weightGPAImpact +
		b.GraduationProgress*weightGraduationProgress
	return b
}

func multiplierFor(d models.Difficulty) float64 {
	if m, ok := gpaMultiplier[d]; ok {
		return m
	}
	return 1.0
}

// ScoredCourse pairs a course with its breakdown.
type ScoredCourse struct {
	Course models.Course
	Score  models.ScoreBreakdown
}

// RankCourses scores and sorts descending. Required courses come first; equal scores keep input order.
func RankCourses(courses []models.Course, state models.StudentState, constraints models.ScheduleConstraints) []ScoredCourse {
	required := make(map[string]struct{}, len(constraints.RequiredCourses))
	for _, id := range constraints.RequiredCourses {
		required[id] = struct{}{}
	}
	ranked := make([]ScoredCourse, 0, len(courses))
	for _, c := range courses {
		ranked = append(ranked, ScoredCourse{Course: c, Score: ScoreCourse(c, state, constraints)})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		_, ri := required[ranked[i].Course.ID]
		_, rj := required[ranked[j].Course.ID]
		if ri != rj {
			return ri
		}
		return ranked[i].Score.Total > ranked[j].Score.Total
	})
	return ranked
}
