package service

import (
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-planner-api/internal/models"
	appErrors "github.com/noah-isme/course-planner-api/pkg/errors"
	"github.com/noah-isme/course-planner-api/pkg/storage"
)

func samplePlanContent() models.MultiTermPlan {
	return models.MultiTermPlan{
		GraduationLabel: "Spring 2026",
		Terms: []models.TermPlan{
			{
				Label: "Winter 2026",
				Courses: []models.ScheduledCourse{{
					Course:    models.Course{ID: "CS32", Name: "Data Structures", Units: 4, Instructor: "Staff"},
					Days:      []models.Weekday{models.Monday, models.Wednesday, models.Friday},
					StartTime: models.NewClockTime(8, 0),
					EndTime:   models.NewClockTime(9, 50),
					Location:  "Engineering VI",
				}},
			},
			{Label: "Spring 2026"},
		},
	}
}

func TestPlanDataset(t *testing.T) {
	record := &models.SavedPlan{ID: "plan-1", Name: "Plan v2", Version: 2}
	data := PlanDataset(record, samplePlanContent())

	assert.Equal(t, "Plan v2 (v2) - graduation Spring 2026", data.Title)
	require.Len(t, data.Rows, 1)
	assert.Equal(t, "MWF", data.Rows[0]["Days"])
	assert.Equal(t, "08:00-09:50", data.Rows[0]["Time"])
	assert.Equal(t, "Winter 2026", data.Rows[0]["Term"])
}

func newExportServiceFixture(t *testing.T) *ExportService {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("secret", time.Hour)
	return NewExportService(store, signer, ExportConfig{APIPrefix: "/api/v1/"}, nil)
}

func TestExportServiceGenerateAndOpen(t *testing.T) {
	svc := newExportServiceFixture(t)
	record := &models.SavedPlan{ID: "plan-1", Name: "Plan v2", Version: 2}

	result, err := svc.Generate(record, samplePlanContent(), "csv")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(result.URL, "/api/v1/exports/download?token="))
	assert.True(t, strings.HasPrefix(result.RelativePath, "plans/plan-1/v2_"))

	download, err := svc.Open(result.Token)
	require.NoError(t, err)
	defer download.File.Close()
	assert.Equal(t, "text/csv", download.ContentType)
	assert.True(t, strings.HasSuffix(download.Filename, ".csv"))

	body, err := io.ReadAll(download.File)
	require.NoError(t, err)
	assert.Contains(t, string(body), "CS32")
}

func TestExportServiceGeneratePDF(t *testing.T) {
	svc := newExportServiceFixture(t)
	result, err := svc.Generate(&models.SavedPlan{ID: "plan-1", Version: 1}, samplePlanContent(), "pdf")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(result.RelativePath, ".pdf"))
}

func TestExportServiceRejects(t *testing.T) {
	svc := newExportServiceFixture(t)

	_, err := svc.Generate(&models.SavedPlan{ID: "plan-1"}, samplePlanContent(), "xlsx")
	assert.Error(t, err)
	assert.False(t, svc.Supports("xlsx"))
	assert.True(t, svc.Supports("pdf"))

	_, err = svc.Open("bogus.token.value.sig")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}
