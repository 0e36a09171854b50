package catalogio

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-planner-api/internal/models"
)

const sampleCatalog = `id,name,units,difficulty,type,prerequisites,offered_terms,majors,default_time,instructor,description
CS31,Intro to CS,4,easy,core,,Fall|Winter|Spring,CS,morning,Smallberg,
cs 32,Data Structures,4,Medium,core,CS31,Winter;Spring,CS,,,
CS33,Computer Organization,5,hard,core,CS32,Autumn,CS,,,
MATH31A,Calculus,4,medium,math,,Fall|Winter,,,,
CS35L,Software Lab,9,medium,core,CS35L,Fall,CS,,,
MATH31A,Calculus I,4,medium,math,,Fall|Winter|Spring,,,,
`

func TestLoadSplitsValidAndRejected(t *testing.T) {
	courses, rejected, err := Load(strings.NewReader(sampleCatalog), ',')
	require.NoError(t, err)

	ids := make([]string, 0, len(courses))
	for _, c := range courses {
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []string{"CS31", "CS32", "MATH31A"}, ids)

	cs32 := courses[1]
	assert.Equal(t, []string{"CS31"}, cs32.Prerequisites)
	assert.Equal(t, []models.Season{models.SeasonWinter, models.SeasonSpring}, cs32.OfferedTerms)
	assert.Equal(t, models.DifficultyMedium, cs32.Difficulty)
	assert.Equal(t, "Calculus I", courses[2].Name)
	assert.Len(t, courses[2].OfferedTerms, 3)

	require.Len(t, rejected, 2)
	assert.Equal(t, 4, rejected[0].Line)
	assert.Equal(t, 6, rejected[1].Line)
	assert.Contains(t, rejected[1].Err.Error(), "units 9 outside 1-8")
	assert.Contains(t, rejected[1].Err.Error(), "prerequisite of itself")
}

func TestValidateCourse(t *testing.T) {
	valid := models.Course{ID: "COMSCI31", Name: "Intro", Units: 4, OfferedTerms: []models.Season{models.SeasonFall}}
	assert.NoError(t, ValidateCourse(valid))

	bad := valid
	bad.ID = "31CS"
	assert.Error(t, ValidateCourse(bad))

	bad = valid
	bad.Difficulty = "brutal"
	assert.Error(t, ValidateCourse(bad))
}

func TestNormalizeID(t *testing.T) {
	assert.Equal(t, "CS31", NormalizeID(" cs 31 "))
	assert.Equal(t, "MATH31A", NormalizeID("Math 31a"))
}

func TestWriteRoundTripsThroughLoad(t *testing.T) {
	in := []models.Course{{
		ID: "PHYSICS1A", Name: "Mechanics", Units: 5, Difficulty: models.DifficultyHard, Type: models.CourseTypeScience,
		Prerequisites: []string{"MATH31A"}, OfferedTerms: []models.Season{models.SeasonFall, models.SeasonSpring},
	}}
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, in))

	out, rejected, err := Load(&buf, ',')
	require.NoError(t, err)
	assert.Empty(t, rejected)
	require.Len(t, out, 1)
	assert.Equal(t, in[0].Prerequisites, out[0].Prerequisites)
	assert.Equal(t, in[0].OfferedTerms, out[0].OfferedTerms)
}

func TestDanglingPrerequisites(t *testing.T) {
	got := DanglingPrerequisites([]models.Course{
		{ID: "CS32", Prerequisites: []string{"CS31"}},
		{ID: "CS33", Prerequisites: []string{"CS32"}},
	})
	assert.Equal(t, map[string][]string{"CS32": {"CS31"}}, got)
}

func TestReadRecordsSemicolonDelimiter(t *testing.T) {
	records, err := ReadRecords(strings.NewReader("id;name;units\nCS31;Intro;4\n"), ';')
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 4, records[0].Units)
}
