package planner

import "github.com/noah-isme/course-planner-api/internal/models"

// CompletionChecker decides whether the student has finished the degree.
type CompletionChecker interface {
	IsComplete(state models.StudentState) bool
}

// NeverComplete is used when no requirement data exists; planning runs to the term limit.
type NeverComplete struct{}

// IsComplete always returns false.
func (NeverComplete) IsComplete(models.StudentState) bool { return false }

// RequirementChecker completes once every core course and enough electives are done.
type RequirementChecker struct {
	Requirement models.DegreeRequirement
}

// IsComplete implements CompletionChecker.
func (r RequirementChecker) IsComplete(state models.StudentState) bool {
	return r.Requirement.SatisfiedBy(state.Completed)
}

// CheckerFor returns a RequirementChecker, or NeverComplete when req is nil or empty.
func CheckerFor(req *models.DegreeRequirement) CompletionChecker {
	if req == nil || (len(req.CoreCourses) == 0 && req.ElectivesRequired == 0) {
		return NeverComplete{}
	}
	return RequirementChecker{Requirement: *req}
}
