package service

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/course-planner-api/internal/models"
	appErrors "github.com/noah-isme/course-planner-api/pkg/errors"
	"github.com/noah-isme/course-planner-api/pkg/export"
	"github.com/noah-isme/course-planner-api/pkg/storage"
)

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	Format       string
	ExpiresAt    time.Time
}

// ExportDownload is an opened export ready to stream.
type ExportDownload struct {
	File        *os.File
	Filename    string
	ContentType string
}

// ExportService renders saved plans and hands out signed download links.
type ExportService struct {
	storage   fileStorage
	renderers map[string]export.Renderer
	signer    *storage.SignedURLSigner
	logger    *zap.Logger
	cfg       ExportConfig
}

// NewExportService constructs an ExportService. Without renderers it registers CSV and PDF.
func NewExportService(storage fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, logger *zap.Logger, renderers ...export.Renderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if len(renderers) == 0 {
		renderers = []export.Renderer{export.NewCSVExporter(), export.NewPDFExporter()}
	}
	byExt := make(map[string]export.Renderer, len(renderers))
	for _, r := range renderers {
		byExt[r.Extension()] = r
	}
	return &ExportService{
		storage:   storage,
		renderers: byExt,
		signer:    signer,
		logger:    logger,
		cfg:       cfg,
	}
}

// Supports reports whether format has a renderer.
func (s *ExportService) Supports(format string) bool {
	_, ok := s.renderers[format]
	return ok
}

// Generate renders the plan content and stores the file under plans/<id>/.
func (s *ExportService) Generate(record *models.SavedPlan, content models.MultiTermPlan, format string) (*ExportResult, error) {
	if record == nil {
		return nil, fmt.Errorf("plan record nil")
	}
	renderer, ok := s.renderers[format]
	if !ok {
		return nil, fmt.Errorf("unsupported format %s", format)
	}

	payload, err := renderer.Render(PlanDataset(record, content))
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", format, err)
	}

	filename := fmt.Sprintf("plans/%s/v%d_%s.%s", sanitizeFilename(record.ID), record.Version, time.Now().UTC().Format("20060102_150405"), renderer.Extension())
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.signer.Generate(record.ID, relPath)
	if err != nil {
		return nil, err
	}
	signedURL := strings.TrimRight(s.cfg.APIPrefix, "/")
	if signedURL == "" {
		signedURL = "/api/v1"
	}
	signedURL = fmt.Sprintf("%s/exports/download?token=%s", signedURL, token)

	s.logger.Info("plan exported", zap.String("plan_id", record.ID), zap.String("format", format), zap.String("path", relPath))
	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          signedURL,
		Format:       format,
		ExpiresAt:    expiresAt,
	}, nil
}

// Open validates a download token and opens the referenced file.
func (s *ExportService) Open(token string) (*ExportDownload, error) {
	grant, err := s.signer.Parse(token, false)
	if err != nil {
		if errors.Is(err, storage.ErrTokenExpired) {
			return nil, appErrors.Wrap(err, appErrors.ErrForbidden.Code, appErrors.ErrForbidden.Status, "download link expired")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrForbidden.Code, appErrors.ErrForbidden.Status, "invalid download token")
	}
	file, err := s.storage.Open(grant.Path)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "export file not found")
	}
	contentType := "application/octet-stream"
	for ext, r := range s.renderers {
		if strings.HasSuffix(grant.Path, "."+ext) {
			contentType = r.ContentType()
			break
		}
	}
	parts := strings.Split(grant.Path, "/")
	return &ExportDownload{File: file, Filename: parts[len(parts)-1], ContentType: contentType}, nil
}

// Cleanup removes files older than ttl (defaults to configured ResultTTL when ttl <= 0).
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

// PlanDataset flattens a plan into one row per scheduled course.
func PlanDataset(record *models.SavedPlan, content models.MultiTermPlan) export.Dataset {
	data := export.Dataset{
		Title:   fmt.Sprintf("%s (v%d) - graduation %s", record.Name, record.Version, content.GraduationLabel),
		Headers: []string{"Term", "Code", "Name", "Units", "Days", "Time", "Location", "Instructor"},
	}
	for _, term := range content.Terms {
		for _, c := range term.Courses {
			data.Rows = append(data.Rows, map[string]string{
				"Term":       term.Label,
				"Code":       c.ID,
				"Name":       c.Name,
				"Units":      strconv.Itoa(c.Units),
				"Days":       models.DayPattern(c.Days),
				"Time":       c.StartTime.String() + "-" + c.EndTime.String(),
				"Location":   c.Location,
				"Instructor": c.Instructor,
			})
		}
	}
	return data
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := replacer.Replace(raw)
	if len(result) > 100 {
		return result[:100]
	}
	return result
}
