package history

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pdfsummarizer/core/internal/pkg/response"
	"github.com/pdfsummarizer/core/internal/pkg/sanitize"
	"go.uber.org/zap"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Handler struct {
	svc    *Service
	logger *zap.Logger
}

func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/history")
	g.GET("", h.list)
	g.GET("/:id", h.get)
	g.POST("/:id/rate", h.rate)
	g.DELETE("/:id/delete", h.delete)
	g.DELETE("/:id", h.delete)

	rg.GET("/stats", h.stats)
	rg.GET("/export/history", h.export)
}

// GET /history?limit=N
func (h *Handler) list(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	items, err := h.svc.List(c.Request.Context(), limit)
	if err != nil {
		response.InternalError(c, sanitize.ForClient(h.logger, err))
		return
	}
	response.OK(c, items)
}

// GET /history/:id
func (h *Handler) get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	rec, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, rec)
}

// POST /history/:id/rate {"rating": N}
func (h *Handler) rate(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var body map[string]any
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "Invalid JSON body")
		return
	}
	value, ok := ratingValue(body["rating"])
	if !ok {
		response.BadRequest(c, "rating must be a number")
		return
	}

	rating, err := h.svc.Rate(c.Request.Context(), id, value)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, gin.H{"success": true, "rating": rating})
}

// DELETE /history/:id/delete
func (h *Handler) delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, gin.H{"success": true})
}

// GET /stats
func (h *Handler) stats(c *gin.Context) {
	stats, err := h.svc.Stats(c.Request.Context())
	if err != nil {
		response.InternalError(c, sanitize.ForClient(h.logger, err))
		return
	}
	response.OK(c, stats)
}

// GET /export/history
func (h *Handler) export(c *gin.Context) {
	data, err := h.svc.Export(c.Request.Context())
	if err != nil {
		response.InternalError(c, sanitize.ForClient(h.logger, err))
		return
	}
	response.Attachment(c, "summary_history.xlsx", xlsxContentType, data)
}

func (h *Handler) fail(c *gin.Context, err error) {
	if errors.Is(err, ErrNotFound) {
		response.NotFoundMsg(c, "Summary not found")
		return
	}
	response.InternalError(c, sanitize.ForClient(h.logger, err))
}

// parseID writes a 404 for ids that cannot name a record.
func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		response.Error(c, http.StatusNotFound, "Summary not found")
		return 0, false
	}
	return uint(id), true
}

// ratingValue accepts numbers and numeric strings; a missing value is 0, which clamps to 1.
func ratingValue(raw any) (int, bool) {
	switch v := raw.(type) {
	case nil:
		return 0, true
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return truncateRating(v), true
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		return truncateRating(f), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// truncateRating drops the fraction and keeps huge values inside int range.
func truncateRating(f float64) int {
	switch {
	case f > 1e6:
		return 1e6
	case f < -1e6:
		return -1e6
	}
	return int(f)
}
