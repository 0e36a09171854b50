package planner

import (
	"fmt"
	"sort"

	"github.com/noah-isme/course-planner-api/internal/models"
)

// DetectConflicts reports one line per overlapping pair. Each line names the codes in lexical
// order and the result is sorted, so input order does not matter.
func DetectConflicts(courses []models.ScheduledCourse) []string {
	conflicts := make([]string, 0)
	for i := 0; i < len(courses); i++ {
		for j := i + 1; j < len(courses); j++ {
			a, b := courses[i], courses[j]
			if !a.Overlaps(b) {
				continue
			}
			if b.ID < a.ID {
				a, b = b, a
			}
			conflicts = append(conflicts, fmt.Sprintf("%s (%s %s-%s) overlaps %s (%s %s-%s)",
				a.ID, models.DayPattern(a.Days), a.StartTime, a.EndTime,
				b.ID, models.DayPattern(b.Days), b.StartTime, b.EndTime))
		}
	}
	sort.Strings(conflicts)
	return conflicts
}
