// Package catalogio reads course catalogs from CSV files.
package catalogio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/noah-isme/course-planner-api/internal/models"
)

// CourseRecord is one catalog CSV row. List columns separate values with '|' or ';'.
type CourseRecord struct {
	ID            string `csv:"id"`
	Name          string `csv:"name"`
	Units         int    `csv:"units"`
	Difficulty    string `csv:"difficulty"`
	Type          string `csv:"type"`
	Prerequisites string `csv:"prerequisites"`
	OfferedTerms  string `csv:"offered_terms"`
	Majors        string `csv:"majors"`
	DefaultTime   string `csv:"default_time"`
	Instructor    string `csv:"instructor"`
	Description   string `csv:"description"`
}

// RowError ties a rejected row to its line in the source file.
type RowError struct {
	Line     int
	CourseID string
	Err      error
}

func (e RowError) Error() string {
	return fmt.Sprintf("line %d (%s): %v", e.Line, e.CourseID, e.Err)
}

var courseIDPattern = regexp.MustCompile(`^[A-Z]+\d+[A-Z]*$`)

// NormalizeID strips spaces and upper-cases a course code, e.g. "cs 31" -> "CS31".
func NormalizeID(raw string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(raw), " ", ""))
}

func splitList(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool { return r == '|' || r == ';' })
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// ToCourse converts a row into a catalog course.
func (r CourseRecord) ToCourse() (models.Course, error) {
	course := models.Course{
		ID:          NormalizeID(r.ID),
		Name:        strings.TrimSpace(r.Name),
		Units:       r.Units,
		Difficulty:  models.Difficulty(strings.ToLower(strings.TrimSpace(r.Difficulty))),
		Type:        models.CourseType(strings.ToLower(strings.TrimSpace(r.Type))),
		Majors:      splitList(r.Majors),
		DefaultTime: strings.TrimSpace(r.DefaultTime),
		Instructor:  strings.TrimSpace(r.Instructor),
		Description: strings.TrimSpace(r.Description),
	}
	if course.Difficulty == "" {
		course.Difficulty = models.DifficultyMedium
	}
	for _, p := range splitList(r.Prerequisites) {
		course.Prerequisites = append(course.Prerequisites, NormalizeID(p))
	}
	for _, raw := range splitList(r.OfferedTerms) {
		season, err := models.ParseSeason(raw)
		if err != nil {
			return course, err
		}
		course.OfferedTerms = append(course.OfferedTerms, season)
	}
	return course, nil
}

// ValidateCourse applies catalog rules and joins every violation into one error.
func ValidateCourse(c models.Course) error {
	var errs []error
	if !courseIDPattern.MatchString(c.ID) {
		errs = append(errs, fmt.Errorf("invalid course id format %q", c.ID))
	}
	if c.Name == "" {
		errs = append(errs, errors.New("missing name"))
	}
	if c.Units < 1 || c.Units > 8 {
		errs = append(errs, fmt.Errorf("units %d outside 1-8", c.Units))
	}
	switch c.Difficulty {
	case "", models.DifficultyEasy, models.DifficultyMedium, models.DifficultyHard:
	default:
		errs = append(errs, fmt.Errorf("unknown difficulty %q", c.Difficulty))
	}
	for _, s := range c.OfferedTerms {
		if !s.Valid() {
			errs = append(errs, fmt.Errorf("invalid season %q", s))
		}
	}
	for _, p := range c.Prerequisites {
		if p == c.ID {
			errs = append(errs, fmt.Errorf("course %s cannot be a prerequisite of itself", c.ID))
		}
	}
	return errors.Join(errs...)
}

// ReadRecords decodes CSV rows with a header line.
func ReadRecords(in io.Reader, delim rune) ([]CourseRecord, error) {
	reader := csv.NewReader(in)
	if delim != 0 {
		reader.Comma = delim
	}
	reader.TrimLeadingSpace = true

	var records []CourseRecord
	if err := gocsv.UnmarshalCSV(reader, &records); err != nil {
		return nil, fmt.Errorf("decode catalog csv: %w", err)
	}
	return records, nil
}

// Load reads a catalog and splits it into valid courses and rejected rows.
// Later rows replace earlier rows with the same id.
func Load(in io.Reader, delim rune) ([]models.Course, []RowError, error) {
	records, err := ReadRecords(in, delim)
	if err != nil {
		return nil, nil, err
	}

	courses := make([]models.Course, 0, len(records))
	position := make(map[string]int, len(records))
	var rejected []RowError
	for i, rec := range records {
		line := i + 2
		course, err := rec.ToCourse()
		if err == nil {
			err = ValidateCourse(course)
		}
		if err != nil {
			rejected = append(rejected, RowError{Line: line, CourseID: course.ID, Err: err})
			continue
		}
		if at, ok := position[course.ID]; ok {
			courses[at] = course
			continue
		}
		position[course.ID] = len(courses)
		courses = append(courses, course)
	}
	return courses, rejected, nil
}

// LoadFile opens path and calls Load with a comma delimiter.
func LoadFile(path string) ([]models.Course, []RowError, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	return Load(f, ',')
}

// Write encodes courses as catalog CSV.
func Write(out io.Writer, courses []models.Course) error {
	records := make([]CourseRecord, 0, len(courses))
	for _, c := range courses {
		seasons := make([]string, 0, len(c.OfferedTerms))
		for _, s := range c.OfferedTerms {
			seasons = append(seasons, string(s))
		}
		records = append(records, CourseRecord{
			ID:            c.ID,
			Name:          c.Name,
			Units:         c.Units,
			Difficulty:    string(c.Difficulty),
			Type:          string(c.Type),
			Prerequisites: strings.Join(c.Prerequisites, "|"),
			OfferedTerms:  strings.Join(seasons, "|"),
			Majors:        strings.Join(c.Majors, "|"),
			DefaultTime:   c.DefaultTime,
			Instructor:    c.Instructor,
			Description:   c.Description,
		})
	}
	return gocsv.Marshal(&records, out)
}

// DanglingPrerequisites lists prerequisites that reference no course in the set, keyed by course id.
func DanglingPrerequisites(courses []models.Course) map[string][]string {
	known := make(map[string]struct{}, len(courses))
	for _, c := range courses {
		known[c.ID] = struct{}{}
	}
	out := map[string][]string{}
	for _, c := range courses {
		for _, p := range c.Prerequisites {
			if _, ok := known[p]; !ok {
				out[c.ID] = append(out[c.ID], p)
			}
		}
	}
	return out
}
