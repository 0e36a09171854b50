package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// SavedPlanStatus represents lifecycle phases for persisted plans.
type SavedPlanStatus string

const (
	SavedPlanStatusDraft    SavedPlanStatus = "DRAFT"
	SavedPlanStatusActive   SavedPlanStatus = "ACTIVE"
	SavedPlanStatusArchived SavedPlanStatus = "ARCHIVED"
)

// SavedPlan is a versioned multi-term plan stored for a student.
type SavedPlan struct {
	ID              string          `db:"id" json:"id"`
	StudentID       string          `db:"student_id" json:"student_id"`
	Name            string          `db:"name" json:"name"`
	Version         int             `db:"version" json:"version"`
	Status          SavedPlanStatus `db:"status" json:"status"`
	TotalUnits      int             `db:"total_units" json:"total_units"`
	OverallGPA      float64         `db:"overall_gpa" json:"overall_gpa"`
	GraduationLabel string          `db:"graduation_label" json:"graduation_label"`
	Payload         types.JSONText  `db:"payload" json:"payload"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updated_at"`
}

// SavedPlanMeta is the lightweight list view of a saved plan.
type SavedPlanMeta struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Version         int             `json:"version"`
	Status          SavedPlanStatus `json:"status"`
	TotalUnits      int             `json:"total_units"`
	GraduationLabel string          `json:"graduation_label"`
	CreatedAt       time.Time       `json:"created_at"`
}

// Meta projects the list view.
func (p SavedPlan) Meta() SavedPlanMeta {
	return SavedPlanMeta{
		ID:              p.ID,
		Name:            p.Name,
		Version:         p.Version,
		Status:          p.Status,
		TotalUnits:      p.TotalUnits,
		GraduationLabel: p.GraduationLabel,
		CreatedAt:       p.CreatedAt,
	}
}
