package pipeline

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pdfsummarizer/core/internal/middleware"
	"github.com/pdfsummarizer/core/internal/modules/extract"
	"github.com/pdfsummarizer/core/internal/modules/summarizer"
	"github.com/pdfsummarizer/core/internal/pkg/response"
	"github.com/pdfsummarizer/core/internal/pkg/sanitize"
	"go.uber.org/zap"
)

const (
	formFile      = "pdf_file"
	formStyle     = "summary_type"
	formRequestID = "request_id"
	formSocketID  = "socket_id"

	msgNoFile      = "No PDF file uploaded"
	msgNoSelection = "No file selected"
	msgBadType     = "Invalid file type. Only PDF allowed"
	msgNoText      = "Could not extract text from PDF"
)

// Options configures the upload handler.
type Options struct {
	UploadDir         string
	MaxUploadBytes    int64
	AllowedExtensions []string
}

type Handler struct {
	svc    *Service
	opts   Options
	logger *zap.Logger
}

func NewHandler(svc *Service, opts Options, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(opts.AllowedExtensions) == 0 {
		opts.AllowedExtensions = []string{"pdf"}
	}
	return &Handler{svc: svc, opts: opts, logger: logger}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, middleware ...gin.HandlerFunc) {
	handlers := append(append([]gin.HandlerFunc{}, middleware...), h.summarize)
	rg.POST("/summarize", handlers...)
}

// POST /summarize (multipart: pdf_file, summary_type, request_id | socket_id)
func (h *Handler) summarize(c *gin.Context) {
	limit := h.opts.MaxUploadBytes
	if limit > 0 {
		if c.Request.ContentLength > limit {
			h.tooLarge(c)
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
	}

	form, err := c.MultipartForm()
	if err != nil {
		switch {
		case isBodyTooLarge(err):
			h.tooLarge(c)
		case errors.Is(err, http.ErrNotMultipart), errors.Is(err, http.ErrMissingBoundary):
			response.BadRequest(c, msgNoFile)
		default:
			h.logger.Debug("multipart parse failed", zap.Error(err))
			response.BadRequest(c, msgNoFile)
		}
		return
	}
	files := form.File[formFile]
	if len(files) == 0 {
		// an empty file input arrives as a part with filename="", which multipart keeps as a value
		if _, ok := form.Value[formFile]; ok {
			response.BadRequest(c, msgNoSelection)
		} else {
			response.BadRequest(c, msgNoFile)
		}
		return
	}
	fh := files[0]
	if strings.TrimSpace(fh.Filename) == "" {
		response.BadRequest(c, msgNoSelection)
		return
	}
	if !hasAllowedExtension(fh.Filename, h.opts.AllowedExtensions) {
		response.BadRequest(c, msgBadType)
		return
	}

	filename := SecureFilename(fh.Filename)
	if err := os.MkdirAll(h.opts.UploadDir, 0o755); err != nil {
		response.InternalError(c, sanitize.ForClient(h.logger, fmt.Errorf("create upload dir: %w", err)))
		return
	}
	tempPath := filepath.Join(h.opts.UploadDir, uuid.NewString()+"-"+filename)
	defer func() {
		if err := os.Remove(tempPath); err != nil && !os.IsNotExist(err) {
			h.logger.Warn("remove temp upload failed", zap.String("path", tempPath), zap.Error(err))
		}
	}()
	if err := c.SaveUploadedFile(fh, tempPath); err != nil {
		response.InternalError(c, sanitize.ForClient(h.logger, fmt.Errorf("save upload: %w", err)))
		return
	}

	job := Job{
		Path:      tempPath,
		Filename:  filename,
		Style:     summarizer.ParseStyle(c.PostForm(formStyle)),
		Topic:     topicFor(c),
		RequestID: middleware.RequestID(c),
	}
	out, err := h.svc.Process(c.Request.Context(), job)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, out)
}

func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case isNoText(err):
		response.BadRequest(c, msgNoText)
	case isSummarizerError(err):
		response.BadGateway(c, sanitize.ProviderForClient(h.logger, err))
	default:
		response.InternalError(c, sanitize.ForClient(h.logger, err))
	}
}

func (h *Handler) tooLarge(c *gin.Context) {
	response.TooLarge(c, fmt.Sprintf("File too large. Maximum size is %d MB", h.opts.MaxUploadBytes/(1024*1024)))
}

// topicFor picks the notification topic: the client's request id, else its socket id.
func topicFor(c *gin.Context) string {
	if id := strings.TrimSpace(c.PostForm(formRequestID)); id != "" {
		return id
	}
	return strings.TrimSpace(c.PostForm(formSocketID))
}

func isNoText(err error) bool {
	return errors.Is(err, extract.ErrNoText)
}

func isSummarizerError(err error) bool {
	var se *summarizer.Error
	return errors.As(err, &se)
}

func isBodyTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		return true
	}
	return strings.Contains(err.Error(), "request body too large")
}
