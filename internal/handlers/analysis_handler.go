package handlers

import (
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"fincoach/internal/dto"
	"fincoach/internal/errors"
	"fincoach/internal/repositories"
	"fincoach/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

var supportedExtensions = map[string]bool{
	".pdf": true,
	".csv": true,
}

// AnalysisHandler handles statement analysis HTTP requests
type AnalysisHandler struct {
	analysisService services.AnalysisServiceInterface
	maxUploadBytes  int64
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(analysisService services.AnalysisServiceInterface, maxUploadBytes int64) *AnalysisHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 20 << 20
	}
	return &AnalysisHandler{
		analysisService: analysisService,
		maxUploadBytes:  maxUploadBytes,
	}
}

// Analyze runs the full pipeline over an uploaded statement
// @Summary Analyze a bank statement
// @Description Upload a PDF or CSV statement (multipart field "file") or post JSON with raw statement text. Returns the full analysis; validation findings ride along and never fail the request.
// @Tags Analysis
// @Accept multipart/form-data
// @Accept json
// @Produce json
// @Param file formData file false "Statement document (PDF or CSV)"
// @Success 200 {object} SuccessResponse{data=dto.AnalysisResult} "Completed analysis"
// @Failure 400 {object} errors.ErrorResponse "DOCUMENT_001 - No document or text provided"
// @Failure 413 {object} errors.ErrorResponse "DOCUMENT_002 - Document too large"
// @Failure 415 {object} errors.ErrorResponse "DOCUMENT_003 - Unsupported document type"
// @Failure 422 {object} errors.ErrorResponse "DOCUMENT_004 - Document could not be read"
// @Failure 500 {object} errors.ErrorResponse "SYSTEM_001 - Internal server error"
// @Router /analyze [post]
func (h *AnalysisHandler) Analyze(c echo.Context) error {
	contentType := c.Request().Header.Get(echo.HeaderContentType)
	if strings.HasPrefix(contentType, echo.MIMEMultipartForm) {
		return h.analyzeUpload(c)
	}
	return h.analyzeText(c)
}

func (h *AnalysisHandler) analyzeUpload(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return SendError(c, errors.DocumentMissing)
	}

	if fileHeader.Size > h.maxUploadBytes {
		return SendError(c, errors.DocumentTooLarge)
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !supportedExtensions[ext] {
		return SendError(c, errors.DocumentUnsupported,
			errors.WithDetails("Supported types: PDF, CSV"))
	}

	src, err := fileHeader.Open()
	if err != nil {
		return SendError(c, errors.DocumentUnreadable)
	}
	defer src.Close()

	// The extraction libraries need a file on disk
	tmp, err := os.CreateTemp("", "statement-*"+ext)
	if err != nil {
		return SendSystemError(c, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		return SendSystemError(c, err)
	}
	if err := tmp.Close(); err != nil {
		return SendSystemError(c, err)
	}

	result, err := h.analysisService.AnalyzeDocument(c.Request().Context(), tmp.Name(), fileHeader.Filename)
	if err != nil {
		return SendError(c, errors.DocumentUnreadable, errors.WithDetails(err.Error()))
	}

	return c.JSON(http.StatusOK, SuccessResponse{
		Data:    result,
		Message: "Analysis completed",
	})
}

func (h *AnalysisHandler) analyzeText(c echo.Context) error {
	var req dto.AnalyzeTextRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationInvalidFormat,
			errors.WithDetails("Request body must be JSON"))
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if strings.TrimSpace(req.Text) == "" && len(req.Tables) == 0 {
		return SendError(c, errors.DocumentEmptyStatement)
	}

	result, err := h.analysisService.AnalyzeContent(c.Request().Context(), req.Text, req.Tables, "text", req.SourceName)
	if err != nil {
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{
		Data:    result,
		Message: "Analysis completed",
	})
}

// GetAnalysis loads one persisted analysis
// @Summary Get analysis by ID
// @Tags Analysis
// @Produce json
// @Param id path string true "Analysis ID (UUID)"
// @Success 200 {object} SuccessResponse{data=models.Analysis} "Persisted analysis"
// @Failure 400 {object} errors.ErrorResponse "ANALYSIS_002 - Invalid analysis ID"
// @Failure 404 {object} errors.ErrorResponse "ANALYSIS_001 - Analysis not found"
// @Failure 500 {object} errors.ErrorResponse "SYSTEM_001 - Internal server error"
// @Router /analyses/{id} [get]
func (h *AnalysisHandler) GetAnalysis(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return SendError(c, errors.AnalysisInvalidID)
	}

	analysis, err := h.analysisService.GetAnalysis(id)
	if err != nil {
		if err == repositories.ErrAnalysisNotFound {
			return SendError(c, errors.AnalysisNotFound)
		}
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{
		Data: analysis,
	})
}

// ListAnalyses returns persisted analyses, newest first
// @Summary List analyses
// @Tags Analysis
// @Produce json
// @Param offset query int false "Pagination offset" default(0)
// @Param limit query int false "Number of results per page (max 100)" default(20)
// @Success 200 {object} SuccessResponse{data=[]dto.AnalysisSummary} "Analysis summaries with pagination metadata"
// @Failure 500 {object} errors.ErrorResponse "SYSTEM_001 - Internal server error"
// @Router /analyses [get]
func (h *AnalysisHandler) ListAnalyses(c echo.Context) error {
	offset, limit := pageParams(c)

	analyses, total, err := h.analysisService.ListAnalyses(offset, limit)
	if err != nil {
		return SendSystemError(c, err)
	}

	summaries := make([]dto.AnalysisSummary, 0, len(analyses))
	for i := range analyses {
		summaries = append(summaries, dto.NewAnalysisSummary(&analyses[i]))
	}

	return c.JSON(http.StatusOK, SuccessResponse{
		Data: summaries,
		Meta: map[string]interface{}{
			"total":  total,
			"offset": offset,
			"limit":  limit,
		},
	})
}
