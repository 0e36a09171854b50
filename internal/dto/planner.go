package dto

import "github.com/noah-isme/course-planner-api/internal/models"

// StudentStateInput is an inline student state used instead of a stored student.
type StudentStateInput struct {
	Completed   []string    `json:"completed" yaml:"completed"`
	CurrentTerm models.Term `json:"currentTerm" yaml:"currentTerm" validate:"required"`
	GPA         float64     `json:"gpa" yaml:"gpa" validate:"min=0,max=4"`
	Major       string      `json:"major" yaml:"major"`
}

// ToState converts the input into a planner state.
func (s StudentStateInput) ToState(studentID string) models.StudentState {
	return models.StudentState{
		StudentID:   studentID,
		Completed:   models.NewCompletedSet(s.Completed...),
		CurrentTerm: s.CurrentTerm,
		GPA:         s.GPA,
		Major:       s.Major,
	}
}

// GeneratePlanRequest asks the engine for a multi-term plan.
type GeneratePlanRequest struct {
	StudentID   string                     `json:"studentId" validate:"required_without=Student"`
	Student     *StudentStateInput         `json:"student,omitempty" validate:"omitempty"`
	Courses     []models.Course            `json:"courses,omitempty" validate:"omitempty,dive"`
	Constraints models.ScheduleConstraints `json:"constraints"`
	MaxTerms    int                        `json:"maxTerms" validate:"omitempty,min=1,max=24"`
	AutoSave    bool                       `json:"autoSave"`
	Name        string                     `json:"name" validate:"omitempty,max=120"`
}

// GeneratePlanResponse wraps the generated plan with its proposal handle.
type GeneratePlanResponse struct {
	ProposalID string               `json:"proposalId"`
	StudentID  string               `json:"studentId,omitempty"`
	Cached     bool                 `json:"cached"`
	Plan       models.MultiTermPlan `json:"plan"`
	Dropped    map[string][]string  `json:"dropped,omitempty"`
}

// SavePlanRequest persists a generated proposal.
type SavePlanRequest struct {
	ProposalID string `json:"proposalId" validate:"required"`
	Name       string `json:"name" validate:"omitempty,max=120"`
}

// SavedPlanResponse returns a stored plan with its decoded content.
type SavedPlanResponse struct {
	models.SavedPlanMeta
	StudentID string               `json:"student_id"`
	Plan      models.MultiTermPlan `json:"plan"`
}

// ScoreStudentInput carries the student attributes the scorer reads.
type ScoreStudentInput struct {
	Completed []string `json:"completed"`
	GPA       float64  `json:"gpa" validate:"min=0,max=4"`
	Major     string   `json:"major"`
}

// ScoreRequest asks for the score breakdown of one course.
type ScoreRequest struct {
	CourseID    string                     `json:"courseId" validate:"required_without=Course"`
	Course      *models.Course             `json:"course,omitempty" validate:"omitempty"`
	Student     ScoreStudentInput          `json:"student"`
	Constraints models.ScheduleConstraints `json:"constraints"`
}

// ConflictsRequest checks a set of scheduled courses for overlaps.
type ConflictsRequest struct {
	Courses []models.ScheduledCourse `json:"courses" validate:"required,dive"`
}

// ConflictsResponse lists the detected overlaps.
type ConflictsResponse struct {
	Conflicts []string `json:"conflicts"`
}

// ValidateTermInput is one term of a plan under validation.
type ValidateTermInput struct {
	Term    models.Term              `json:"term" validate:"required"`
	Courses []models.ScheduledCourse `json:"courses" validate:"dive"`
}

// ValidatePlanRequest checks a hand-edited plan against prerequisites and unit bounds.
type ValidatePlanRequest struct {
	Completed   []string                   `json:"completed"`
	Terms       []ValidateTermInput        `json:"terms" validate:"required,min=1,dive"`
	Constraints models.ScheduleConstraints `json:"constraints"`
}

// ValidatePlanResponse reports validation findings.
type ValidatePlanResponse struct {
	IsValid   bool                `json:"isValid"`
	Errors    []string            `json:"errors"`
	Warnings  []string            `json:"warnings"`
	Conflicts map[string][]string `json:"conflicts"`
}

// ExportRequest selects the export format.
type ExportRequest struct {
	Format string `form:"format" json:"format" validate:"omitempty,oneof=csv pdf"`
}

// ExportResponse points at the rendered export.
type ExportResponse struct {
	PlanID      string `json:"planId"`
	Format      string `json:"format"`
	DownloadURL string `json:"downloadUrl"`
	ExpiresAt   string `json:"expiresAt"`
}

// PlanListQuery filters saved plans.
type PlanListQuery struct {
	StudentID string `form:"studentId" validate:"required"`
}
