// Package server wires the feature services into one gin engine.
package server

import (
	"fmt"
	"log/slog"

	"devcraft-studio/backend/internal/config"
	analysisapp "devcraft-studio/backend/internal/features/analysis/application"
	analysisdomain "devcraft-studio/backend/internal/features/analysis/domain"
	assistantapp "devcraft-studio/backend/internal/features/assistant/application"
	assistantdomain "devcraft-studio/backend/internal/features/assistant/domain"
	authapp "devcraft-studio/backend/internal/features/auth/application"
	authdomain "devcraft-studio/backend/internal/features/auth/domain"
	configapp "devcraft-studio/backend/internal/features/config/application"
	intakeapp "devcraft-studio/backend/internal/features/intake/application"
	intakedomain "devcraft-studio/backend/internal/features/intake/domain"
	"devcraft-studio/backend/internal/llm"
	"devcraft-studio/backend/internal/notify"
	"devcraft-studio/backend/internal/storage"
)

// App holds every service behind the HTTP API.
type App struct {
	Settings    *config.Settings
	Configs     config.AppConfigService
	Auth        *authapp.AuthService
	Intake      *intakeapp.IntakeService
	Suggestions *intakeapp.SuggestionService
	Submissions *intakeapp.SubmissionService
	Analyses    *analysisapp.AnalysisService
	Chat        *assistantapp.ChatService
	Logger      *slog.Logger
}

// New builds the services and seeds the admin account.
func New(settings *config.Settings, client llm.Client, notifier notify.Notifier, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	configs := config.NewAppConfigService(settings.AppConfigPath, logger)

	suggestions := intakeapp.NewSuggestionService(client, configs, logger)
	submissions := intakeapp.NewSubmissionService(storage.NewTable[intakedomain.Submission](), notifier, suggestions, logger)

	auth := authapp.NewAuthService(storage.NewTable[authdomain.User](), settings.JWTSecret, logger)
	if err := auth.SeedAdmin(settings.AdminUsername, settings.AdminPassword, settings.AdminEmail); err != nil {
		return nil, fmt.Errorf("seed admin user: %w", err)
	}

	return &App{
		Settings:    settings,
		Configs:     configs,
		Auth:        auth,
		Intake:      intakeapp.NewIntakeService(suggestions, submissions, configs, settings.SubmitTimeout, logger),
		Suggestions: suggestions,
		Submissions: submissions,
		Analyses:    analysisapp.NewAnalysisService(storage.NewTable[analysisdomain.Analysis](), client, configs, notifier, logger),
		Chat:        assistantapp.NewChatService(storage.NewTable[assistantdomain.Message](), client, configs, logger),
		Logger:      logger,
	}, nil
}

// NewLLMClient returns the OpenAI client with retries, or llm.Unavailable
// when no API key is set.
func NewLLMClient(settings *config.Settings, logger *slog.Logger) llm.Client {
	client, err := llm.NewOpenAIClient(llm.OpenAIConfig{
		APIKey:  settings.OpenAIAPIKey,
		Model:   settings.OpenAIModel,
		BaseURL: settings.OpenAIBaseURL,
	})
	if err != nil {
		logger.Warn("language model disabled, fallbacks will be used", "error", err)
		return llm.Unavailable{}
	}
	logger.Info("language model enabled", "model", client.Model())
	return llm.NewResilientClient(client, llm.DefaultResilience)
}

// NewNotifier returns the SMS and email notifier for the configured channels.
func NewNotifier(settings *config.Settings, logger *slog.Logger) *notify.Service {
	var (
		sms    *notify.SMSSender
		mailer *notify.Mailer
	)
	if settings.SMSConfigured() {
		sms = notify.NewSMSSender(notify.SMSConfig{
			AccountSID: settings.TwilioAccountSID,
			AuthToken:  settings.TwilioAuthToken,
			From:       settings.TwilioPhoneNumber,
			To:         settings.NotificationPhoneNumber,
		}, nil)
	}
	if settings.MailConfigured() {
		var err error
		mailer, err = notify.NewMailer(notify.MailConfig{
			Host:     settings.SMTPHost,
			Port:     settings.SMTPPort,
			User:     settings.SMTPUser,
			Password: settings.SMTPPassword,
			From:     settings.MailFrom,
			AdminTo:  settings.AdminMailTo,
		}, nil)
		if err != nil {
			logger.Error("email disabled", "error", err)
		}
	}
	return notify.NewService(sms, mailer, logger)
}

// Wait blocks until the background model passes finished.
func (a *App) Wait() {
	a.Submissions.Wait()
	a.Analyses.Wait()
}
