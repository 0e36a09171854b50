package planner

import "github.com/noah-isme/course-planner-api/internal/models"

// SkipReason explains why a candidate was not eligible for a term.
type SkipReason string

const (
	SkipNotOffered          SkipReason = "not_offered"
	SkipPrerequisitePending SkipReason = "prerequisite_pending"
	SkipUnresolvable        SkipReason = "prerequisite_unresolvable"
)

// SkippedCourse records an ineligible candidate.
type SkippedCourse struct {
	CourseID string
	Reason   SkipReason
	Missing  []string
}

// FilterEligible keeps the courses offered in season whose prerequisites are all completed.
// A prerequisite absent from both the completed set and the index marks the course unresolvable.
func FilterEligible(courses []models.Course, completed models.CompletedSet, season models.Season, index *CatalogIndex) ([]models.Course, []SkippedCourse) {
	eligible := make([]models.Course, 0, len(courses))
	var skipped []SkippedCourse
	for _, course := range courses {
		if !course.OfferedIn(season) {
			skipped = append(skipped, SkippedCourse{CourseID: course.ID, Reason: SkipNotOffered})
			continue
		}
		var pending, unresolved []string
		for _, id := range course.Prerequisites {
			if completed.Has(id) {
				continue
			}
			if index.Has(id) {
				pending = append(pending, id)
			} else {
				unresolved = append(unresolved, id)
			}
		}
		switch {
		case len(unresolved) > 0:
			skipped = append(skipped, SkippedCourse{CourseID: course.ID, Reason: SkipUnresolvable, Missing: unresolved})
		case len(pending) > 0:
			skipped = append(skipped, SkippedCourse{CourseID: course.ID, Reason: SkipPrerequisitePending, Missing: pending})
		default:
			eligible = append(eligible, course)
		}
	}
	return eligible, skipped
}

// PrerequisitesMet reports whether every prerequisite of course is in completed.
func PrerequisitesMet(course models.Course, completed models.CompletedSet) bool {
	for _, id := range course.Prerequisites {
		if !completed.Has(id) {
			return false
		}
	}
	return true
}
