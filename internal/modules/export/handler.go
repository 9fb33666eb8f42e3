package export

import (
	"github.com/gin-gonic/gin"
	"github.com/pdfsummarizer/core/internal/pkg/response"
	"github.com/pdfsummarizer/core/internal/pkg/sanitize"
	"go.uber.org/zap"
)

const defaultDownloadName = "summary"

type Handler struct {
	logger *zap.Logger
}

func NewHandler(logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{logger: logger}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/download/:format", h.download)
}

// GET /download/:format?summary=...&filename=...
func (h *Handler) download(c *gin.Context) {
	format, err := Lookup(c.Param("format"))
	if err != nil {
		response.BadRequest(c, "Invalid format")
		return
	}

	summary := c.Query("summary")
	filename := c.DefaultQuery("filename", defaultDownloadName)
	if filename == "" {
		filename = defaultDownloadName
	}

	data, err := format.Render(summary, filename)
	if err != nil {
		response.InternalError(c, sanitize.ForClient(h.logger, err))
		return
	}
	response.Attachment(c, format.DownloadName(filename), format.ContentType, data)
}
