package models

import "sort"

// CompletedSet is the set of course identifiers a student has finished.
type CompletedSet map[string]struct{}

// NewCompletedSet builds a set from identifiers.
func NewCompletedSet(ids ...string) CompletedSet {
	set := make(CompletedSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// Has reports membership.
func (s CompletedSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Add inserts identifiers.
func (s CompletedSet) Add(ids ...string) {
	for _, id := range ids {
		s[id] = struct{}{}
	}
}

// Clone returns an independent copy.
func (s CompletedSet) Clone() CompletedSet {
	out := make(CompletedSet, len(s))
	for id := range s {
		out[id] = struct{}{}
	}
	return out
}

// IDs returns the identifiers in lexical order.
func (s CompletedSet) IDs() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// StudentState is the planner's view of a student. Only Completed changes during planning.
type StudentState struct {
	StudentID   string       `json:"studentId,omitempty"`
	Completed   CompletedSet `json:"-"`
	CurrentTerm Term         `json:"currentTerm"`
	GPA         float64      `json:"gpa"`
	Major       string       `json:"major"`
}

// Clone copies the state so a planning run never mutates the caller's set.
func (s StudentState) Clone() StudentState {
	out := s
	if s.Completed == nil {
		out.Completed = CompletedSet{}
	} else {
		out.Completed = s.Completed.Clone()
	}
	return out
}

// StudentRecord is the persisted student profile row.
type StudentRecord struct {
	ID            string  `db:"id" json:"id"`
	Major         string  `db:"major" json:"major"`
	GPA           float64 `db:"gpa" json:"gpa"`
	CurrentSeason string  `db:"current_season" json:"current_season"`
	CurrentYear   int     `db:"current_year" json:"current_year"`
}
