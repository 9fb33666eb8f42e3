package preference

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pdfsummarizer/core/internal/pkg/response"
	"github.com/pdfsummarizer/core/internal/pkg/sanitize"
	"github.com/pdfsummarizer/core/internal/pkg/session"
	"go.uber.org/zap"
)

const (
	keyTheme       = "theme"
	maxThemeLength = 32
)

type Handler struct {
	store        *session.Store
	defaultTheme string
	logger       *zap.Logger
}

func NewHandler(store *session.Store, defaultTheme string, logger *zap.Logger) *Handler {
	if defaultTheme == "" {
		defaultTheme = "light"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{store: store, defaultTheme: defaultTheme, logger: logger}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/theme", h.get)
	rg.POST("/theme", h.set)
}

type themeBody struct {
	Theme *string `json:"theme"`
}

func (h *Handler) get(c *gin.Context) {
	response.OK(c, gin.H{"theme": h.store.Get(c, keyTheme, h.defaultTheme)})
}

// POST /theme {"theme": "dark"}; a missing or blank theme falls back to the default.
func (h *Handler) set(c *gin.Context) {
	var body themeBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "Invalid JSON body")
		return
	}

	theme := h.defaultTheme
	if body.Theme != nil {
		if v := strings.TrimSpace(*body.Theme); v != "" {
			theme = v
		}
	}
	if len(theme) > maxThemeLength {
		response.BadRequest(c, "Invalid theme")
		return
	}

	if err := h.store.Set(c, keyTheme, theme); err != nil {
		response.InternalError(c, sanitize.ForClient(h.logger, err))
		return
	}
	response.OK(c, gin.H{"success": true, "theme": theme})
}
