package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"devcraft-studio/backend/internal/features/intake/application"
	"devcraft-studio/backend/internal/features/intake/domain"
	"devcraft-studio/backend/internal/features/intake/wizard"
	"devcraft-studio/backend/internal/storage"
)

// IntakeHandler serves the wizard sessions, the project request gateway and
// the admin review routes.
type IntakeHandler struct {
	intake      *application.IntakeService
	submissions *application.SubmissionService
	suggestions *application.SuggestionService
	logger      *slog.Logger
}

// NewIntakeHandler creates a new IntakeHandler.
func NewIntakeHandler(intake *application.IntakeService, submissions *application.SubmissionService, suggestions *application.SuggestionService, logger *slog.Logger) *IntakeHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &IntakeHandler{intake: intake, submissions: submissions, suggestions: suggestions, logger: logger}
}

type catalogEntry struct {
	ProjectType domain.ProjectType     `json:"projectType"`
	Features    []domain.FeatureOption `json:"features"`
}

// CatalogHandler lists the project types with their features and the
// accepted answers of the enumerated fields.
func (h *IntakeHandler) CatalogHandler(c *gin.Context) {
	entries := make([]catalogEntry, 0, len(domain.ProjectTypes))
	for _, t := range domain.ProjectTypes {
		entries = append(entries, catalogEntry{ProjectType: t, Features: domain.CatalogFor(t)})
	}
	c.JSON(http.StatusOK, gin.H{
		"projectTypes":  entries,
		"timelines":     domain.Timelines,
		"budgetRanges":  domain.BudgetRanges,
		"priorityRanks": domain.PriorityRanks,
		"totalSteps":    domain.TotalSteps,
	})
}

// StartSessionHandler opens a new wizard.
func (h *IntakeHandler) StartSessionHandler(c *gin.Context) {
	snap, err := h.intake.Start()
	if err != nil {
		h.logger.Error("failed to start intake session", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start intake session"})
		return
	}
	c.JSON(http.StatusCreated, snap)
}

// GetSessionHandler returns the current state of a wizard.
func (h *IntakeHandler) GetSessionHandler(c *gin.Context) {
	snap, err := h.intake.Snapshot(c.Param("id"))
	if err != nil {
		h.wizardError(c, snap, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// AdvanceHandler submits the fields of the current step.
func (h *IntakeHandler) AdvanceHandler(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	snap, err := h.intake.Advance(c.Request.Context(), c.Param("id"), raw)
	if err != nil {
		h.wizardError(c, snap, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// RetreatHandler moves the wizard back one step.
func (h *IntakeHandler) RetreatHandler(c *gin.Context) {
	snap, err := h.intake.Retreat(c.Param("id"))
	if err != nil {
		h.wizardError(c, snap, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

type featuresRequest struct {
	Features []string `json:"features"`
}

// FeaturesHandler refreshes suggestions while features are being toggled.
func (h *IntakeHandler) FeaturesHandler(c *gin.Context) {
	var req featuresRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	snap, err := h.intake.RefreshFeatures(c.Request.Context(), c.Param("id"), req.Features)
	if err != nil {
		h.wizardError(c, snap, err)
		return
	}
	c.JSON(http.StatusAccepted, snap)
}

func (h *IntakeHandler) wizardError(c *gin.Context, snap wizard.Snapshot, err error) {
	var (
		verrs  domain.ValidationErrors
		subErr *wizard.SubmissionError
	)
	switch {
	case errors.Is(err, application.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Intake session not found"})
	case errors.Is(err, application.ErrMalformedInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "session": snap})
	case errors.As(err, &verrs):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Invalid data", "details": verrs, "session": snap})
	case errors.As(err, &subErr):
		c.JSON(http.StatusBadGateway, gin.H{"error": subErr.Error(), "session": snap})
	case errors.Is(err, wizard.ErrStepMismatch),
		errors.Is(err, wizard.ErrSubmitting),
		errors.Is(err, wizard.ErrFinished),
		errors.Is(err, wizard.ErrIllegalTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "session": snap})
	default:
		h.logger.Error("intake session failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update intake session"})
	}
}

// CreateProjectRequestHandler stores a complete project request.
func (h *IntakeHandler) CreateProjectRequestHandler(c *gin.Context) {
	var req domain.ProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid data",
			"details": domain.ValidationErrors{{Field: "body", Message: err.Error()}},
		})
		return
	}

	sub, err := h.submissions.Submit(c.Request.Context(), req)
	var verrs domain.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid data", "details": verrs})
	case err != nil:
		h.logger.Error("failed to create project request", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create project request"})
	default:
		c.JSON(http.StatusCreated, sub)
	}
}

// ListProjectRequestsHandler lists every request, newest first.
func (h *IntakeHandler) ListProjectRequestsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, h.submissions.List())
}

// GetProjectRequestHandler returns a single request.
func (h *IntakeHandler) GetProjectRequestHandler(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	sub, err := h.submissions.Get(id)
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Project request not found"})
		return
	}
	c.JSON(http.StatusOK, sub)
}

type viewedRequest struct {
	Viewed *bool `json:"viewed"`
}

// MarkViewedHandler sets the viewed flag of a request.
func (h *IntakeHandler) MarkViewedHandler(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req viewedRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Viewed == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid viewed status"})
		return
	}
	sub, err := h.submissions.SetViewed(id, *req.Viewed)
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Project request not found"})
		return
	}
	c.JSON(http.StatusOK, sub)
}

type suggestionsRequest struct {
	ProjectType      domain.ProjectType `json:"projectType"`
	SelectedFeatures *[]string          `json:"selectedFeatures"`
}

// SuggestionsHandler proposes features for a project; model failures are
// answered with a generic list.
func (h *IntakeHandler) SuggestionsHandler(c *gin.Context) {
	var req suggestionsRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ProjectType == "" || req.SelectedFeatures == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data"})
		return
	}
	list := h.suggestions.SuggestOrFallback(c.Request.Context(), req.ProjectType, *req.SelectedFeatures)
	c.JSON(http.StatusOK, gin.H{"suggestions": list})
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return 0, false
	}
	return id, true
}
