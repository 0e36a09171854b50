package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-planner-api/internal/dto"
	"github.com/noah-isme/course-planner-api/internal/models"
	appErrors "github.com/noah-isme/course-planner-api/pkg/errors"
	"github.com/noah-isme/course-planner-api/pkg/response"
)

const maxCatalogUpload = 8 << 20

type catalogService interface {
	List(ctx context.Context, query dto.CourseListQuery) ([]models.Course, error)
	Get(ctx context.Context, id string) (*models.Course, error)
	Import(ctx context.Context, in io.Reader) (*dto.CourseImportResponse, error)
}

// CatalogHandler exposes the course catalog.
type CatalogHandler struct {
	service catalogService
}

// NewCatalogHandler constructs a catalog handler.
func NewCatalogHandler(service catalogService) *CatalogHandler {
	return &CatalogHandler{service: service}
}

// List godoc
// @Summary List catalog courses
// @Tags Catalog
// @Produce json
// @Param major query string false "Major code"
// @Param term query string false "Season offered (Fall, Winter, Spring, Summer)"
// @Success 200 {object} response.Envelope
// @Router /courses [get]
func (h *CatalogHandler) List(c *gin.Context) {
	var query dto.CourseListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query"))
		return
	}
	courses, err := h.service.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses, nil)
}

// Get godoc
// @Summary Get a course
// @Tags Catalog
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /courses/{id} [get]
func (h *CatalogHandler) Get(c *gin.Context) {
	course, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course, nil)
}

// Import godoc
// @Summary Import a catalog CSV
// @Description Upserts valid rows and reports rejected ones with their line numbers.
// @Tags Catalog
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Catalog CSV"
// @Success 200 {object} response.Envelope
// @Router /courses/import [post]
func (h *CatalogHandler) Import(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "file is required"))
		return
	}
	if header.Size > maxCatalogUpload {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "catalog file is too large"))
		return
	}
	file, err := header.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read upload"))
		return
	}
	defer file.Close()

	result, err := h.service.Import(c.Request.Context(), file)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
