package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"devcraft-studio/backend/internal/features/analysis/application"
	"devcraft-studio/backend/internal/features/analysis/domain"
	"devcraft-studio/backend/internal/storage"
)

// AnalysisHandler serves website analysis requests and their admin review.
type AnalysisHandler struct {
	analyses *application.AnalysisService
}

func NewAnalysisHandler(analyses *application.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{analyses: analyses}
}

// CreateAnalysisHandler stores a request and starts the review.
func (h *AnalysisHandler) CreateAnalysisHandler(c *gin.Context) {
	var req domain.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid data", "details": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, h.analyses.Create(c.Request.Context(), req))
}

func (h *AnalysisHandler) ListAnalysesHandler(c *gin.Context) {
	c.JSON(http.StatusOK, h.analyses.List())
}

func (h *AnalysisHandler) GetAnalysisHandler(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	a, err := h.analyses.Get(id)
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Website analysis not found"})
		return
	}
	c.JSON(http.StatusOK, a)
}

type viewedRequest struct {
	Viewed *bool `json:"viewed"`
}

func (h *AnalysisHandler) MarkViewedHandler(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req viewedRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Viewed == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid viewed status"})
		return
	}
	a, err := h.analyses.SetViewed(id, *req.Viewed)
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Website analysis not found"})
		return
	}
	c.JSON(http.StatusOK, a)
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return 0, false
	}
	return id, true
}
