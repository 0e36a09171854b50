package planner

import "github.com/noah-isme/course-planner-api/internal/models"

// SelectTerm walks ranked once, best first, adding a course while the unit total stays
// within MaxUnits and the placement check passes. It stops once the optimal target is reached.
// The result may fall below MinUnits; callers read that from the term's unit total.
func SelectTerm(ranked []ScoredCourse, constraints models.ScheduleConstraints) []models.Course {
	target := constraints.OptimalUnits
	if target <= 0 || target > constraints.MaxUnits {
		target = constraints.MaxUnits
	}
	var (
		selected []models.Course
		units    int
	)
	for _, candidate := range ranked {
		if units >= target {
			break
		}
		course := candidate.Course
		if units+course.Units > constraints.MaxUnits {
			continue
		}
		if !placementAllowed(selected, course, constraints) {
			continue
		}
		selected = append(selected, course)
		units += course.Units
	}
	return selected
}

// placementAllowed enforces the optional difficulty ceiling and the one-hard-course rule
// of workload balancing.
func placementAllowed(selected []models.Course, course models.Course, constraints models.ScheduleConstraints) bool {
	if constraints.MaxDifficulty != "" && course.Difficulty.Level() > constraints.MaxDifficulty.Level() {
		return false
	}
	if constraints.BalanceWorkload && course.Difficulty == models.DifficultyHard {
		for _, c := range selected {
			if c.Difficulty == models.DifficultyHard {
				return false
			}
		}
	}
	return true
}
