package handler

import (
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"credsped/internal/csvexport"
	"credsped/internal/domain"
	"credsped/internal/report"
	"credsped/internal/service"
	"credsped/internal/xlsxexport"
)

// AnalysisHandler handles EFD analysis endpoints.
type AnalysisHandler struct {
	analysisService service.AnalysisService
	maxFileBytes    int64
}

// NewAnalysisHandler creates a new AnalysisHandler.
func NewAnalysisHandler(analysisService service.AnalysisService, maxFileSizeMB int64) *AnalysisHandler {
	return &AnalysisHandler{
		analysisService: analysisService,
		maxFileBytes:    maxFileSizeMB * 1024 * 1024,
	}
}

// Analyze handles POST /api/v1/analyses. It accepts a multipart form with
// one or more "files" parts (txt or zip), runs the batch and returns the
// merged results plus the aggregated report.
func (h *AnalysisHandler) Analyze(c *gin.Context) {
	inputs, err := h.readArtifacts(c)
	if err != nil {
		HandleError(c, err)
		return
	}

	res, err := h.analysisService.Analyze(c.Request.Context(), inputs)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, gin.H{
		"batch":  res,
		"report": report.Build(res),
	})
}

// List handles GET /api/v1/analyses.
func (h *AnalysisHandler) List(c *gin.Context) {
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	batches, total, err := h.analysisService.ListBatches(c.Request.Context(), offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, batches, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// Get handles GET /api/v1/analyses/:id.
func (h *AnalysisHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid batch id")
		return
	}

	batch, files, err := h.analysisService.GetBatch(c.Request.Context(), id)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"batch": batch, "files": files})
}

// ExportCSV handles POST /api/v1/analyses/export/csv. It runs the same
// batch pipeline as Analyze and streams the NF-e credit lines as a
// UTF-8-with-BOM CSV attachment.
func (h *AnalysisHandler) ExportCSV(c *gin.Context) {
	res, ok := h.analyzeForExport(c)
	if !ok {
		return
	}

	name := fmt.Sprintf("creditos-%s.csv", time.Now().Format("20060102-150405"))
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Status(http.StatusOK)

	if _, err := c.Writer.Write(csvexport.BOM); err != nil {
		return
	}
	w := csvexport.NewWriter(c.Writer)
	if err := w.WriteHeader(); err != nil {
		return
	}
	if err := w.WriteCreditLines(res.CreditLines); err != nil {
		return
	}
	w.Flush()
}

// ExportXLSX handles POST /api/v1/analyses/export/xlsx. It runs the batch
// pipeline and streams a multi-sheet workbook attachment.
func (h *AnalysisHandler) ExportXLSX(c *gin.Context) {
	res, ok := h.analyzeForExport(c)
	if !ok {
		return
	}

	f, err := xlsxexport.Build(res)
	if err != nil {
		HandleError(c, err)
		return
	}
	defer func() { _ = f.Close() }()

	name := fmt.Sprintf("creditos-%s.xlsx", time.Now().Format("20060102-150405"))
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Status(http.StatusOK)

	if err := f.Write(c.Writer); err != nil {
		requestID, _ := c.Get("request_id")
		log.Printf("[%s] writing xlsx export: %v", requestID, err)
	}
}

func (h *AnalysisHandler) analyzeForExport(c *gin.Context) (*domain.BatchResult, bool) {
	inputs, err := h.readArtifacts(c)
	if err != nil {
		HandleError(c, err)
		return nil, false
	}
	res, err := h.analysisService.Analyze(c.Request.Context(), inputs)
	if err != nil {
		HandleError(c, err)
		return nil, false
	}
	return res, true
}

// readArtifacts pulls the "files" parts out of the multipart form, checks
// extension and size, and reads each into memory.
func (h *AnalysisHandler) readArtifacts(c *gin.Context) ([]service.ArtifactInput, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, domain.ErrNoFiles
	}
	headers := form.File["files"]
	if len(headers) == 0 {
		return nil, domain.ErrNoFiles
	}

	inputs := make([]service.ArtifactInput, 0, len(headers))
	for _, header := range headers {
		ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(header.Filename), "."))
		if _, ok := domain.AllowedExtensions[ext]; !ok {
			return nil, domain.ErrUnsupportedArtifact
		}
		if h.maxFileBytes > 0 && header.Size > h.maxFileBytes {
			return nil, domain.ErrFileTooLarge
		}
		data, err := readPart(header)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, service.ArtifactInput{
			Name: filepath.Base(header.Filename),
			Data: data,
		})
	}
	return inputs, nil
}

func readPart(header *multipart.FileHeader) ([]byte, error) {
	f, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("opening upload %s: %w", header.Filename, err)
	}
	defer func() { _ = f.Close() }()
	return io.ReadAll(f)
}
