package planner

import (
	"sort"
	"strings"
	"unicode"

	"github.com/noah-isme/course-planner-api/internal/models"
)

const (
	blockMinutes      = 110
	defaultLocation   = "TBA"
	defaultInstructor = "Staff"
)

var (
	slotStarts = []models.ClockTime{
		models.NewClockTime(8, 0),
		models.NewClockTime(10, 0),
		models.NewClockTime(12, 0),
		models.NewClockTime(14, 0),
		models.NewClockTime(16, 0),
	}
	dayPatterns = [][]models.Weekday{
		{models.Monday, models.Wednesday, models.Friday},
		{models.Tuesday, models.Thursday},
	}
	buildings = map[string]string{
		"CS":      "Engineering VI",
		"COMSCI":  "Engineering VI",
		"EC":      "Engineering IV",
		"MATH":    "Mathematical Sciences",
		"STATS":   "Mathematical Sciences",
		"PHYSICS": "Knudsen Hall",
		"CHEM":    "Young Hall",
		"LS":      "Life Sciences",
		"ENGL":    "Humanities",
		"ENGCOMP": "Humanities",
	}
)

type timeSlot struct {
	days  []models.Weekday
	start models.ClockTime
	end   models.ClockTime
}

// candidateSlots lists every start time on MWF then TR, in that order.
func candidateSlots() []timeSlot {
	slots := make([]timeSlot, 0, len(slotStarts)*len(dayPatterns))
	for _, start := range slotStarts {
		for _, days := range dayPatterns {
			slots = append(slots, timeSlot{days: days, start: start, end: start + blockMinutes})
		}
	}
	return slots
}

// AssignTimeSlots places courses by type priority into the first free slot.
// Courses that fit nowhere are returned in dropped and left out of the term.
func AssignTimeSlots(courses []models.Course) (placed []models.ScheduledCourse, dropped []models.Course) {
	ordered := make([]models.Course, len(courses))
	copy(ordered, courses)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Type.Priority() > ordered[j].Type.Priority()
	})

	slots := candidateSlots()
	for _, course := range ordered {
		assigned := false
		for _, slot := range slots {
			candidate := models.ScheduledCourse{
				Course:    course,
				Days:      slot.days,
				StartTime: slot.start,
				EndTime:   slot.end,
				Location:  LocationFor(course.ID),
			}
			if overlapsAny(candidate, placed) {
				continue
			}
			if candidate.Instructor == "" {
				candidate.Instructor = defaultInstructor
			}
			placed = append(placed, candidate)
			assigned = true
			break
		}
		if !assigned {
			dropped = append(dropped, course)
		}
	}
	return placed, dropped
}

func overlapsAny(candidate models.ScheduledCourse, placed []models.ScheduledCourse) bool {
	for _, p := range placed {
		if candidate.Overlaps(p) {
			return true
		}
	}
	return false
}

// LocationFor maps the alphabetic code prefix to a building.
func LocationFor(courseID string) string {
	if b, ok := buildings[codePrefix(courseID)]; ok {
		return b
	}
	return defaultLocation
}

// codePrefix returns the leading letters of a code with spaces removed, e.g. "COMSCI" for "COM SCI 31".
func codePrefix(id string) string {
	id = strings.ToUpper(strings.ReplaceAll(id, " ", ""))
	if end := strings.IndexFunc(id, func(r rune) bool { return !unicode.IsLetter(r) }); end >= 0 {
		return id[:end]
	}
	return id
}
