package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	analysis_http "devcraft-studio/backend/internal/features/analysis/presentation/http"
	assistant_http "devcraft-studio/backend/internal/features/assistant/presentation/http"
	auth_http "devcraft-studio/backend/internal/features/auth/presentation/http"
	configapp "devcraft-studio/backend/internal/features/config/application"
	config_http "devcraft-studio/backend/internal/features/config/presentation/http"
	intake_http "devcraft-studio/backend/internal/features/intake/presentation/http"
)

// Router registers every route of the API.
func (a *App) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	auth := auth_http.NewAuthHandler(a.Auth, a.Logger)
	requireAdmin := []gin.HandlerFunc{auth.RequireUser(), auth.RequireAdmin()}

	// Auth API routes
	api := r.Group("/api")
	{
		api.POST("/register", auth.RegisterHandler)
		api.POST("/login", auth.LoginHandler)
		api.POST("/logout", auth.LogoutHandler)
		api.GET("/user", auth.RequireUser(), auth.UserHandler)
	}

	// Intake wizard API routes
	intake := intake_http.NewIntakeHandler(a.Intake, a.Submissions, a.Suggestions, a.Logger)
	intakeGroup := api.Group("/intake")
	{
		intakeGroup.GET("/catalog", intake.CatalogHandler)
		intakeGroup.POST("/sessions", intake.StartSessionHandler)
		intakeGroup.GET("/sessions/:id", intake.GetSessionHandler)
		intakeGroup.POST("/sessions/:id/advance", intake.AdvanceHandler)
		intakeGroup.POST("/sessions/:id/retreat", intake.RetreatHandler)
		intakeGroup.POST("/sessions/:id/features", intake.FeaturesHandler)
	}

	// Project request API routes
	requestGroup := api.Group("/project-requests")
	{
		requestGroup.POST("", intake.CreateProjectRequestHandler)
		admin := requestGroup.Group("", requireAdmin...)
		admin.GET("", intake.ListProjectRequestsHandler)
		admin.GET("/:id", intake.GetProjectRequestHandler)
		admin.PUT("/:id/viewed", intake.MarkViewedHandler)
	}

	// Website analysis API routes
	analysis := analysis_http.NewAnalysisHandler(a.Analyses)
	analysisGroup := api.Group("/website-analyses")
	{
		analysisGroup.POST("", analysis.CreateAnalysisHandler)
		admin := analysisGroup.Group("", requireAdmin...)
		admin.GET("", analysis.ListAnalysesHandler)
		admin.GET("/:id", analysis.GetAnalysisHandler)
		admin.PUT("/:id/viewed", analysis.MarkViewedHandler)
	}

	// AI API routes
	aiGroup := api.Group("/ai")
	{
		aiGroup.POST("/suggestions", intake.SuggestionsHandler)
		aiGroup.POST("/chat", assistant_http.NewChatHandler(a.Chat, a.Logger).ChatHandler)
	}

	// Config API routes
	configHandler := config_http.NewAppConfigHandler(configapp.NewConfigService(a.Configs), a.Logger)
	configGroup := api.Group("/config", requireAdmin...)
	{
		configGroup.GET("/app", configHandler.GetAppConfigHandler)
		configGroup.POST("/app", configHandler.SaveAppConfigHandler)
	}

	return r
}
