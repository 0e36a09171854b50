package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-planner-api/internal/models"
)

func TestResponseMetaCarriesPlanSummary(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	var captured map[string]interface{}
	r.Use(WithResponseMeta())
	r.POST("/plans/generate", func(c *gin.Context) {
		SetCacheHit(c, false)
		SetPlanSummary(c, models.PlanComplete, 3, 1)
		captured = ExtractMeta(c)
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/plans/generate", nil))

	require.NotNil(t, captured)
	assert.Equal(t, false, captured["cache_hit"])
	assert.Equal(t, "COMPLETE", captured["termination"])
	assert.Equal(t, 3, captured["terms"])
	assert.Equal(t, 1, captured["dropped_courses"])
	assert.Contains(t, captured, "processing_time_ms")
}

func TestExtractMetaWithoutMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Nil(t, ExtractMeta(c))
	assert.Nil(t, ExtractMeta(nil))

	SetCacheHit(c, true)
	meta := ExtractMeta(c)
	assert.Equal(t, map[string]interface{}{"cache_hit": true}, meta)
}
