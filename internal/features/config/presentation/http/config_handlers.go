package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"devcraft-studio/backend/internal/features/config/application"
	"devcraft-studio/backend/internal/features/config/domain"
)

// AppConfigHandler exposes the application configuration to admins.
type AppConfigHandler struct {
	configService application.ConfigService
	logger        *slog.Logger
}

// NewAppConfigHandler creates a new AppConfigHandler.
func NewAppConfigHandler(configService application.ConfigService, logger *slog.Logger) *AppConfigHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AppConfigHandler{configService: configService, logger: logger}
}

// GetAppConfigHandler handles fetching the application configuration.
func (h *AppConfigHandler) GetAppConfigHandler(c *gin.Context) {
	appConfig, err := h.configService.GetConfig()
	if err != nil {
		h.logger.Error("failed to load app config", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load app config"})
		return
	}
	c.JSON(http.StatusOK, appConfig)
}

// SaveAppConfigHandler handles saving the application configuration.
func (h *AppConfigHandler) SaveAppConfigHandler(c *gin.Context) {
	var appConfig domain.AppConfig
	if err := c.ShouldBindJSON(&appConfig); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.configService.SaveConfig(&appConfig); err != nil {
		var invalid *application.InvalidConfigError
		if errors.As(err, &invalid) {
			c.JSON(http.StatusBadRequest, gin.H{"error": invalid.Error()})
			return
		}
		h.logger.Error("failed to save app config", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save app config"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "App config saved successfully"})
}
