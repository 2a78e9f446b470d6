package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	types "github.com/yungbote/onboarding-backend/internal/domain/onboarding"
	"github.com/yungbote/onboarding-backend/internal/http/response"
	"github.com/yungbote/onboarding-backend/internal/platform/logger"
	"github.com/yungbote/onboarding-backend/internal/services"
)

const defaultMaxUploadBytes = 20 << 20

type DocumentHandler struct {
	log      *logger.Logger
	pipeline services.PipelineService
	docs     services.DocumentService
	maxBytes int64
}

func NewDocumentHandler(log *logger.Logger, pipeline services.PipelineService, docs services.DocumentService, maxBytes int64) *DocumentHandler {
	if maxBytes <= 0 {
		maxBytes = defaultMaxUploadBytes
	}
	return &DocumentHandler{
		log:      log.With("handler", "DocumentHandler"),
		pipeline: pipeline,
		docs:     docs,
		maxBytes: maxBytes,
	}
}

// POST /api/documents
//
// multipart: file, kind (pdf|image|camera-capture). kind defaults from the
// sniffed mime type.
func (h *DocumentHandler) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes+(1<<20))
	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.RespondError(c, http.StatusRequestEntityTooLarge, "file_too_large", fmt.Errorf("request body exceeds %d bytes", tooLarge.Limit))
			return
		}
		response.RespondError(c, http.StatusBadRequest, "missing_file", err)
		return
	}
	if fh.Size > h.maxBytes {
		response.RespondError(c, http.StatusRequestEntityTooLarge, "file_too_large", fmt.Errorf("file exceeds %d bytes", h.maxBytes))
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_file", err)
		return
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, h.maxBytes+1))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_file", err)
		return
	}

	mimeType := sniffMimeType(fh.Header.Get("Content-Type"), fh.Filename, data)
	kind, ok := uploadKind(c.PostForm("kind"), mimeType)
	if !ok {
		response.RespondError(c, http.StatusBadRequest, "validation_error", fmt.Errorf("unsupported file kind %q", c.PostForm("kind")))
		return
	}

	res, err := h.pipeline.AnalyzeDocument(c.Request.Context(), services.UploadInput{
		FileName: filepath.Base(fh.Filename),
		Kind:     kind,
		MimeType: mimeType,
		Data:     data,
	})
	if err != nil {
		h.log.Warn("AnalyzeDocument failed", "error", err)
		response.RespondServiceError(c, err)
		return
	}
	response.RespondCreated(c, res)
}

// GET /api/documents
func (h *DocumentHandler) List(c *gin.Context) {
	docs, err := h.docs.List(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"documents": docs})
}

// DELETE /api/documents/:id
func (h *DocumentHandler) Delete(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.docs.Delete(c.Request.Context(), id); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type analyzeAllRequest struct {
	QuestionCount int               `json:"question_count"`
	Plan          types.PlanRequest `json:"plan"`
}

// POST /api/documents/:id/analyze
//
// Generates the quiz and the study plan for one document in parallel.
func (h *DocumentHandler) AnalyzeAll(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req analyzeAllRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.pipeline.AnalyzeAll(c.Request.Context(), id, req.QuestionCount, req.Plan)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, res)
}

func sniffMimeType(header, fileName string, data []byte) string {
	sniffed := http.DetectContentType(data)
	if strings.HasPrefix(sniffed, "application/pdf") || strings.HasPrefix(sniffed, "image/") {
		return sniffed
	}
	header = strings.TrimSpace(header)
	if header != "" && header != "application/octet-stream" {
		return header
	}
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".pdf":
		return "application/pdf"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	}
	return sniffed
}

func uploadKind(raw, mimeType string) (types.FileKind, bool) {
	if strings.TrimSpace(raw) != "" {
		return types.ParseFileKind(raw)
	}
	switch {
	case mimeType == "application/pdf":
		return types.FileKindPDF, true
	case strings.HasPrefix(mimeType, "image/"):
		return types.FileKindImage, true
	}
	return "", false
}

