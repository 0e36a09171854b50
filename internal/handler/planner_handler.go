package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-planner-api/internal/dto"
	"github.com/noah-isme/course-planner-api/internal/middleware"
	"github.com/noah-isme/course-planner-api/internal/models"
	appErrors "github.com/noah-isme/course-planner-api/pkg/errors"
	"github.com/noah-isme/course-planner-api/pkg/response"
)

type plannerService interface {
	Generate(ctx context.Context, req dto.GeneratePlanRequest, actor *models.JWTClaims) (*dto.GeneratePlanResponse, error)
	Save(ctx context.Context, req dto.SavePlanRequest, actor *models.JWTClaims) (*models.SavedPlan, error)
	List(ctx context.Context, query dto.PlanListQuery, actor *models.JWTClaims) ([]models.SavedPlanMeta, error)
	Get(ctx context.Context, id string, actor *models.JWTClaims) (*dto.SavedPlanResponse, error)
	Activate(ctx context.Context, id string, actor *models.JWTClaims) (*models.SavedPlanMeta, error)
	Delete(ctx context.Context, id string, actor *models.JWTClaims) error
	Export(ctx context.Context, id string, req dto.ExportRequest, actor *models.JWTClaims) (*dto.ExportResponse, error)
	Score(ctx context.Context, req dto.ScoreRequest) (*models.ScoreBreakdown, error)
	DetectConflicts(req dto.ConflictsRequest) (*dto.ConflictsResponse, error)
	Validate(req dto.ValidatePlanRequest) (*dto.ValidatePlanResponse, error)
}

// PlannerHandler exposes plan generation and saved plan endpoints.
type PlannerHandler struct {
	service plannerService
}

// NewPlannerHandler constructs a planner handler.
func NewPlannerHandler(service plannerService) *PlannerHandler {
	return &PlannerHandler{service: service}
}

// Generate godoc
// @Summary Generate a multi-term plan
// @Description Runs the greedy planner for a stored or inline student. The proposal id can be saved later.
// @Tags Planner
// @Accept json
// @Produce json
// @Param payload body dto.GeneratePlanRequest true "Generation payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /plans/generate [post]
func (h *PlannerHandler) Generate(c *gin.Context) {
	var req dto.GeneratePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid plan generation payload"))
		return
	}
	result, err := h.service.Generate(c.Request.Context(), req, middleware.Claims(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	dropped := 0
	for _, ids := range result.Dropped {
		dropped += len(ids)
	}
	middleware.SetCacheHit(c, result.Cached)
	middleware.SetPlanSummary(c, result.Plan.Termination, len(result.Plan.Terms), dropped)
	response.JSON(c, http.StatusOK, result, nil, middleware.ExtractMeta(c))
}

// Save godoc
// @Summary Save a generated plan
// @Tags Planner
// @Accept json
// @Produce json
// @Param payload body dto.SavePlanRequest true "Proposal to save"
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /plans [post]
func (h *PlannerHandler) Save(c *gin.Context) {
	var req dto.SavePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid save plan payload"))
		return
	}
	plan, err := h.service.Save(c.Request.Context(), req, middleware.Claims(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, plan.Meta())
}

// List godoc
// @Summary List saved plans for a student
// @Tags Planner
// @Produce json
// @Param studentId query string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /plans [get]
func (h *PlannerHandler) List(c *gin.Context) {
	var query dto.PlanListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query"))
		return
	}
	plans, err := h.service.List(c.Request.Context(), query, middleware.Claims(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, plans, nil)
}

// Get godoc
// @Summary Get a saved plan
// @Tags Planner
// @Produce json
// @Param id path string true "Plan ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /plans/{id} [get]
func (h *PlannerHandler) Get(c *gin.Context) {
	plan, err := h.service.Get(c.Request.Context(), c.Param("id"), middleware.Claims(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, plan, nil)
}

// Activate godoc
// @Summary Activate a saved plan
// @Description Marks the plan ACTIVE and archives the student's previously active plan.
// @Tags Planner
// @Produce json
// @Param id path string true "Plan ID"
// @Success 200 {object} response.Envelope
// @Router /plans/{id}/activate [post]
func (h *PlannerHandler) Activate(c *gin.Context) {
	meta, err := h.service.Activate(c.Request.Context(), c.Param("id"), middleware.Claims(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, meta, nil)
}

// Delete godoc
// @Summary Delete a draft plan
// @Tags Planner
// @Param id path string true "Plan ID"
// @Success 204
// @Failure 409 {object} response.Envelope
// @Router /plans/{id} [delete]
func (h *PlannerHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id"), middleware.Claims(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Export godoc
// @Summary Export a saved plan
// @Tags Planner
// @Produce json
// @Param id path string true "Plan ID"
// @Param format query string false "csv or pdf"
// @Success 200 {object} response.Envelope
// @Router /plans/{id}/export [post]
func (h *PlannerHandler) Export(c *gin.Context) {
	var req dto.ExportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid export query"))
		return
	}
	result, err := h.service.Export(c.Request.Context(), c.Param("id"), req, middleware.Claims(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Score godoc
// @Summary Explain a course score
// @Tags Planner
// @Accept json
// @Produce json
// @Param payload body dto.ScoreRequest true "Course and student"
// @Success 200 {object} response.Envelope
// @Router /plans/score [post]
func (h *PlannerHandler) Score(c *gin.Context) {
	var req dto.ScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid score payload"))
		return
	}
	breakdown, err := h.service.Score(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, breakdown, nil)
}

// Conflicts godoc
// @Summary Detect time conflicts
// @Tags Planner
// @Accept json
// @Produce json
// @Param payload body dto.ConflictsRequest true "Scheduled courses"
// @Success 200 {object} response.Envelope
// @Router /plans/conflicts [post]
func (h *PlannerHandler) Conflicts(c *gin.Context) {
	var req dto.ConflictsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid conflicts payload"))
		return
	}
	result, err := h.service.DetectConflicts(req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Validate godoc
// @Summary Validate a hand-edited plan
// @Tags Planner
// @Accept json
// @Produce json
// @Param payload body dto.ValidatePlanRequest true "Plan terms"
// @Success 200 {object} response.Envelope
// @Router /plans/validate [post]
func (h *PlannerHandler) Validate(c *gin.Context) {
	var req dto.ValidatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid plan validation payload"))
		return
	}
	result, err := h.service.Validate(req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
