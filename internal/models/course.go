package models

import "time"

// Difficulty grades how demanding a course is.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Level maps the difficulty onto 1..3 for workload arithmetic. Unknown values count as medium.
func (d Difficulty) Level() int {
	switch d {
	case DifficultyEasy:
		return 1
	case DifficultyHard:
		return 3
	default:
		return 2
	}
}

// CourseType classifies a course for time-slot priority and graduation progress.
type CourseType string

const (
	CourseTypeCore             CourseType = "core"
	CourseTypeMath             CourseType = "math"
	CourseTypeScience          CourseType = "science"
	CourseTypeElective         CourseType = "elective"
	CourseTypeGeneralEducation CourseType = "general-education"
)

// courseTypePriority orders courses for slot assignment, highest first.
var courseTypePriority = map[CourseType]int{
	CourseTypeCore:             3,
	CourseTypeMath:             2,
	CourseTypeScience:          2,
	CourseTypeElective:         1,
	CourseTypeGeneralEducation: 1,
}

// Priority returns the slot-assignment priority; unknown types rank lowest.
func (t CourseType) Priority() int {
	return courseTypePriority[t]
}

// Course is an immutable catalog record.
type Course struct {
	ID            string     `json:"id" yaml:"id" validate:"required"`
	Name          string     `json:"name" yaml:"name"`
	Units         int        `json:"units" yaml:"units" validate:"required,min=1"`
	Difficulty    Difficulty `json:"difficulty" yaml:"difficulty" validate:"omitempty,oneof=easy medium hard"`
	Type          CourseType `json:"type" yaml:"type" validate:"omitempty,oneof=core math science elective general-education"`
	Prerequisites []string   `json:"prerequisites" yaml:"prerequisites"`
	OfferedTerms  []Season   `json:"offeredTerms" yaml:"offeredTerms" validate:"omitempty,dive,oneof=Fall Winter Spring Summer"`
	Majors        []string   `json:"majors,omitempty" yaml:"majors,omitempty"`
	DefaultTime   string     `json:"defaultTime,omitempty" yaml:"defaultTime,omitempty"`
	Instructor    string     `json:"instructor,omitempty" yaml:"instructor,omitempty"`
	Description   string     `json:"description,omitempty" yaml:"description,omitempty"`
	UpdatedAt     time.Time  `json:"updatedAt,omitempty" yaml:"-"`
}

// OfferedIn reports whether the course runs in the given season.
func (c Course) OfferedIn(season Season) bool {
	for _, s := range c.OfferedTerms {
		if s == season {
			return true
		}
	}
	return false
}

// LinkedToMajor reports whether the course is associated with the major.
func (c Course) LinkedToMajor(major string) bool {
	if major == "" {
		return false
	}
	for _, m := range c.Majors {
		if m == major {
			return true
		}
	}
	return false
}

// CourseFilter narrows catalog listings.
type CourseFilter struct {
	Major  string
	Season Season
}
