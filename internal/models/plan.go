package models

import (
	"fmt"
	"strings"
)

// ClockTime is minutes since midnight. It marshals as "HH:MM".
type ClockTime int

// NewClockTime builds a ClockTime from hours and minutes.
func NewClockTime(hour, minute int) ClockTime {
	return ClockTime(hour*60 + minute)
}

// String renders the zero-padded 24h form.
func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// MarshalText implements encoding.TextMarshaler.
func (c ClockTime) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *ClockTime) UnmarshalText(text []byte) error {
	parsed, err := ParseClockTime(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseClockTime reads "HH:MM".
func ParseClockTime(raw string) (ClockTime, error) {
	var hour, minute int
	if _, err := fmt.Sscanf(strings.TrimSpace(raw), "%d:%d", &hour, &minute); err != nil {
		return 0, fmt.Errorf("invalid clock time %q", raw)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("clock time out of range %q", raw)
	}
	return NewClockTime(hour, minute), nil
}

// Weekday names a meeting day.
type Weekday string

const (
	Monday    Weekday = "MONDAY"
	Tuesday   Weekday = "TUESDAY"
	Wednesday Weekday = "WEDNESDAY"
	Thursday  Weekday = "THURSDAY"
	Friday    Weekday = "FRIDAY"
)

var weekdayAbbrev = map[Weekday]string{
	Monday:    "M",
	Tuesday:   "T",
	Wednesday: "W",
	Thursday:  "R",
	Friday:    "F",
}

// DayPattern renders days compactly, e.g. "MWF" or "TR".
func DayPattern(days []Weekday) string {
	var b strings.Builder
	for _, d := range days {
		if abbr, ok := weekdayAbbrev[d]; ok {
			b.WriteString(abbr)
		} else {
			b.WriteString(string(d))
		}
	}
	return b.String()
}

// ScheduledCourse is a course placed in a concrete meeting window for one term.
type ScheduledCourse struct {
	Course
	Days      []Weekday `json:"days"`
	StartTime ClockTime `json:"startTime"`
	EndTime   ClockTime `json:"endTime"`
	Location  string    `json:"location"`
}

// MeetsOn reports whether the course meets on any of the given days.
func (s ScheduledCourse) MeetsOn(days []Weekday) bool {
	for _, a := range s.Days {
		for _, b := range days {
			if a == b {
				return true
			}
		}
	}
	return false
}

// Overlaps reports a same-day window overlap with another scheduled course.
func (s ScheduledCourse) Overlaps(other ScheduledCourse) bool {
	if !s.MeetsOn(other.Days) {
		return false
	}
	return s.StartTime < other.EndTime && other.StartTime < s.EndTime
}

// ScheduleConstraints are supplied once per planning run and never mutated.
type ScheduleConstraints struct {
	MaxUnits        int        `json:"maxUnits" yaml:"maxUnits" validate:"required,min=1,max=40"`
	MinUnits        int        `json:"minUnits" yaml:"minUnits" validate:"min=0"`
	OptimalUnits    int        `json:"optimalUnits" yaml:"optimalUnits" validate:"min=0"`
	PreferredTimes  []string   `json:"preferredTimes" yaml:"preferredTimes"`
	RequiredCourses []string   `json:"requiredCourses" yaml:"requiredCourses"`
	AvoidedCourses  []string   `json:"avoidedCourses" yaml:"avoidedCourses"`
	BalanceWorkload bool       `json:"balanceWorkload" yaml:"balanceWorkload"`
	MaxDifficulty   Difficulty `json:"maxDifficulty,omitempty" yaml:"maxDifficulty,omitempty" validate:"omitempty,oneof=easy medium hard"`
}

// Prefers reports whether a time hint is among the preferred times.
func (c ScheduleConstraints) Prefers(hint string) bool {
	if hint == "" {
		return false
	}
	for _, t := range c.PreferredTimes {
		if t == hint {
			return true
		}
	}
	return false
}

// ScoreBreakdown explains a composite course score.
type ScoreBreakdown struct {
	CourseID           string  `json:"courseId"`
	Prerequisites      float64 `json:"prerequisites"`
	WorkloadFit        float64 `json:"workloadFit"`
	TimePreference     float64 `json:"timePreference"`
	GPAImpact          float64 `json:"gpaImpact"`
	GraduationProgress float64 `json:"graduationProgress"`
	Total              float64 `json:"total"`
}

// TermPlan is the output of one planning iteration.
type TermPlan struct {
	Term          Term              `json:"term"`
	Label         string            `json:"label"`
	Courses       []ScheduledCourse `json:"courses"`
	TotalUnits    int               `json:"totalUnits"`
	EstimatedGPA  float64           `json:"estimatedGpa"`
	WorkloadScore float64           `json:"workloadScore"`
	Conflicts     []string          `json:"conflicts"`
	// Dropped holds courses selected for the term that found no free slot.
	Dropped []string `json:"-"`
}

// CourseIDs lists the identifiers scheduled in the term.
func (t TermPlan) CourseIDs() []string {
	ids := make([]string, 0, len(t.Courses))
	for _, c := range t.Courses {
		ids = append(ids, c.ID)
	}
	return ids
}

// PlanTermination records why the planning loop stopped.
type PlanTermination string

const (
	PlanPlanning      PlanTermination = "PLANNING"
	PlanTargetReached PlanTermination = "TARGET_REACHED"
	PlanComplete      PlanTermination = "COMPLETE"
)

// MultiTermPlan is the full planning output.
type MultiTermPlan struct {
	Terms           []TermPlan      `json:"terms"`
	TotalUnits      int             `json:"totalUnits"`
	OverallGPA      float64         `json:"overallGpa"`
	CompletionRate  float64         `json:"completionRate"`
	GraduationLabel string          `json:"graduationLabel"`
	Termination     PlanTermination `json:"termination"`
}
