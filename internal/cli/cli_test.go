package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-planner-api/internal/models"
)

const catalogCSV = `id,name,units,difficulty,type,prerequisites,offered_terms,majors,default_time,instructor,description
CS31,Intro to CS I,4,medium,core,,Fall|Winter|Spring,CS,,,
CS32,Intro to CS II,4,medium,core,CS31,Fall|Winter|Spring,CS,,,
CS33,Computer Organization,4,hard,core,CS32,Fall|Winter|Spring,CS,,,
MATH31A,Calculus I,4,medium,math,,Fall|Winter|Spring,CS,,,
oops,Broken row,4,medium,core,,Fall,CS,,,
`

const studentYAML = `studentId: stu-1
currentTerm:
  season: Fall
  year: 2025
gpa: 3.4
major: CS
completed: [cs31]
constraints:
  maxUnits: 8
  minUnits: 4
requirement:
  coreCourses: [CS31, CS32, CS33]
`

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var stdout bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), err
}

func TestPlanCommandJSON(t *testing.T) {
	catalog := writeFixture(t, "courses.csv", catalogCSV)
	student := writeFixture(t, "student.yaml", studentYAML)

	stdout, err := runCLI(t, "plan", "--catalog", catalog, "--student", student, "--terms", "6", "--format", "json")
	require.NoError(t, err)

	var result PlanOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &result))
	assert.Equal(t, "stu-1", result.StudentID)
	assert.Equal(t, models.PlanComplete, result.Plan.Termination)
	require.Len(t, result.Plan.Terms, 2)
	assert.ElementsMatch(t, []string{"CS32", "MATH31A"}, result.Plan.Terms[0].CourseIDs())
	assert.Equal(t, []string{"CS33"}, result.Plan.Terms[1].CourseIDs())
	assert.Equal(t, "Winter 2025", result.Plan.GraduationLabel)
	require.Len(t, result.Rejected, 1)
	assert.Contains(t, result.Rejected[0], "line 6")
}

func TestPlanCommandText(t *testing.T) {
	catalog := writeFixture(t, "courses.csv", catalogCSV)
	student := writeFixture(t, "student.yaml", studentYAML)

	stdout, err := runCLI(t, "plan", "-c", catalog, "-s", student)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Fall 2025  (8 units")
	assert.Contains(t, stdout, "Stopped: COMPLETE")
	assert.Contains(t, stdout, "Rejected catalog rows:")
}

func TestPlanCommandRejectsBadInput(t *testing.T) {
	catalog := writeFixture(t, "courses.csv", catalogCSV)
	bad := writeFixture(t, "student.yaml", "currentTerm:\n  season: Autumn\n  year: 2025\n")

	_, err := runCLI(t, "plan", "-c", catalog, "-s", bad)
	assert.ErrorContains(t, err, "invalid student file")

	inverted := writeFixture(t, "inverted.yaml", "currentTerm: {season: Fall, year: 2025}\nconstraints: {maxUnits: 8, minUnits: 12}\n")
	_, err = runCLI(t, "plan", "-c", catalog, "-s", inverted)
	assert.ErrorContains(t, err, "minUnits 12 exceeds maxUnits 8")

	_, err = runCLI(t, "plan", "-c", catalog)
	assert.Error(t, err)

	_, err = runCLI(t, "plan", "-c", catalog, "-s", bad, "-f", "xml")
	assert.ErrorContains(t, err, "unknown format")
}

func TestConflictsCommand(t *testing.T) {
	plan := `{"plan":{"terms":[{"label":"Fall 2025","courses":[
		{"id":"CS31","units":4,"days":["MONDAY","WEDNESDAY"],"startTime":"08:00","endTime":"09:50"},
		{"id":"CS32","units":4,"days":["MONDAY"],"startTime":"09:00","endTime":"10:50"}
	]},{"label":"Winter 2026","courses":[]}]}}`
	path := writeFixture(t, "plan.json", plan)

	stdout, err := runCLI(t, "conflicts", "--plan", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Fall 2025:\n  CS31 (MW 08:00-09:50) overlaps CS32 (M 09:00-10:50)")
	assert.Contains(t, stdout, "Winter 2026: no conflicts")

	_, err = runCLI(t, "conflicts", "--plan", path, "--strict")
	assert.ErrorIs(t, err, errConflictsFound)

	stdout, err = runCLI(t, "conflicts", "--plan", path, "-f", "json")
	require.NoError(t, err)
	var report []TermConflicts
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))
	assert.Len(t, report[0].Conflicts, 1)
	assert.Empty(t, report[1].Conflicts)
}

func TestLoadPlanFileAcceptsEnvelope(t *testing.T) {
	path := writeFixture(t, "plan.json", `{"data":{"plan":{"terms":[{"label":"Fall 2025","courses":[]}],"termination":"TARGET_REACHED"}}}`)
	plan, err := LoadPlanFile(path)
	require.NoError(t, err)
	assert.Equal(t, models.PlanTargetReached, plan.Termination)

	bare := writeFixture(t, "bare.json", `{"terms":[],"termination":"COMPLETE"}`)
	plan, err = LoadPlanFile(bare)
	require.NoError(t, err)
	assert.Equal(t, models.PlanComplete, plan.Termination)
}

func TestTruncateKeepsRunesWhole(t *testing.T) {
	assert.Equal(t, "Short", truncate("Short", 36))
	assert.Equal(t, "Éléments d…", truncate("Éléments de géométrie", 11))
	assert.Equal(t, "日本語…", truncate("日本語の歴史", 4))
	assert.True(t, utf8.ValidString(truncate("Économie politique européenne avancée", 36)))
}
