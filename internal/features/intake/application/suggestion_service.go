package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"devcraft-studio/backend/internal/config"
	configdomain "devcraft-studio/backend/internal/features/config/domain"
	"devcraft-studio/backend/internal/features/intake/domain"
	"devcraft-studio/backend/internal/llm"
)

var suggestionsSchema = llm.MustSchema(`{
  "type": "object",
  "required": ["suggestions"],
  "properties": {
    "suggestions": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["suggestion", "category", "impact"],
        "properties": {
          "suggestion": {"type": "string", "minLength": 1},
          "category": {"type": "string"},
          "impact": {"enum": ["High", "Medium", "Low"]}
        }
      }
    }
  }
}`)

// FallbackSuggestions is answered when the model cannot be reached.
func FallbackSuggestions() []domain.Suggestion {
	return []domain.Suggestion{
		{Suggestion: "Consider adding analytics to track user behavior", Category: "Analytics", Impact: domain.ImpactMedium},
		{Suggestion: "Implement user feedback collection mechanisms", Category: "User Engagement", Impact: domain.ImpactHigh},
	}
}

// SuggestionService asks the language model for features a client has not
// thought of yet. It is the in-process wizard.Enricher.
type SuggestionService struct {
	client  llm.Client
	configs config.AppConfigService
	logger  *slog.Logger
}

func NewSuggestionService(client llm.Client, configs config.AppConfigService, logger *slog.Logger) *SuggestionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SuggestionService{client: client, configs: configs, logger: logger}
}

// FetchSuggestions returns 3 to 5 suggestions for the project, or an error.
func (s *SuggestionService) FetchSuggestions(ctx context.Context, projectType domain.ProjectType, features []string) ([]domain.Suggestion, error) {
	cfg := config.LoadOrDefault(s.configs, s.logger)

	selected := strings.Join(features, ", ")
	if selected == "" {
		selected = "none yet"
	}
	reply, err := s.client.Complete(ctx, llm.Request{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: cfg.WithContext(cfg.RolePrompt(configdomain.RoleSuggestions))},
			{Role: llm.RoleUser, Content: fmt.Sprintf(
				"Project Type: %s\nSelected Features: %s\n\nProvide 3-5 additional feature suggestions that would enhance this project type. "+
					`Format the response as a JSON object with a "suggestions" array of objects with these properties: `+
					`"suggestion" (string), "category" (string), and "impact" (string - either "High", "Medium", or "Low").`,
				projectType, selected)},
		},
		JSON:        true,
		Model:       cfg.ModelParams.Model,
		Temperature: cfg.ModelParams.Temperature,
		MaxTokens:   cfg.ModelParams.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("generate suggestions: %w", err)
	}

	out, err := llm.Decode[struct {
		Suggestions []domain.Suggestion `json:"suggestions"`
	}](reply, suggestionsSchema)
	if err != nil {
		return nil, err
	}
	return out.Suggestions, nil
}

// SuggestOrFallback never fails: model errors yield FallbackSuggestions.
func (s *SuggestionService) SuggestOrFallback(ctx context.Context, projectType domain.ProjectType, features []string) []domain.Suggestion {
	list, err := s.FetchSuggestions(ctx, projectType, features)
	if err != nil {
		s.logger.Warn("suggestions unavailable, using fallback", "project_type", projectType, "error", err)
		return FallbackSuggestions()
	}
	return list
}
