package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Season is one academic scheduling period inside a year.
type Season string

const (
	SeasonFall   Season = "Fall"
	SeasonWinter Season = "Winter"
	SeasonSpring Season = "Spring"
	SeasonSummer Season = "Summer"
)

// seasonOrder is the planning rotation. The year advances when Summer wraps to Fall.
var seasonOrder = []Season{SeasonFall, SeasonWinter, SeasonSpring, SeasonSummer}

// Valid reports whether the season is one of the four known seasons.
func (s Season) Valid() bool {
	for _, known := range seasonOrder {
		if s == known {
			return true
		}
	}
	return false
}

// ParseSeason normalises user input ("fall", " SPRING ") into a Season.
func ParseSeason(raw string) (Season, error) {
	trimmed := strings.TrimSpace(raw)
	for _, known := range seasonOrder {
		if strings.EqualFold(trimmed, string(known)) {
			return known, nil
		}
	}
	return "", fmt.Errorf("invalid season %q", raw)
}

// Term is a season+year label such as "Fall 2025".
type Term struct {
	Season Season `json:"season" yaml:"season" validate:"required,oneof=Fall Winter Spring Summer"`
	Year   int    `json:"year" yaml:"year" validate:"required,min=1900,max=3000"`
}

// Next advances to the following season, incrementing the year on the Summer to Fall wrap.
func (t Term) Next() Term {
	idx := 0
	for i, s := range seasonOrder {
		if s == t.Season {
			idx = i
			break
		}
	}
	next := (idx + 1) % len(seasonOrder)
	year := t.Year
	if next == 0 {
		year++
	}
	return Term{Season: seasonOrder[next], Year: year}
}

// Label renders the display form, e.g. "Winter 2026".
func (t Term) Label() string {
	if t.Season == "" {
		return ""
	}
	return fmt.Sprintf("%s %d", t.Season, t.Year)
}

// String implements fmt.Stringer.
func (t Term) String() string {
	return t.Label()
}

// ParseTerm reads a label produced by Label.
func ParseTerm(label string) (Term, error) {
	parts := strings.Fields(label)
	if len(parts) != 2 {
		return Term{}, fmt.Errorf("invalid term label %q", label)
	}
	season, err := ParseSeason(parts[0])
	if err != nil {
		return Term{}, err
	}
	year, err := strconv.Atoi(parts[1])
	if err != nil {
		return Term{}, fmt.Errorf("invalid term year %q", parts[1])
	}
	return Term{Season: season, Year: year}, nil
}
