package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"devcraft-studio/backend/internal/config"
	"devcraft-studio/backend/internal/features/analysis/domain"
	configdomain "devcraft-studio/backend/internal/features/config/domain"
	"devcraft-studio/backend/internal/llm"
	"devcraft-studio/backend/internal/notify"
	"devcraft-studio/backend/internal/sanitize"
	"devcraft-studio/backend/internal/storage"
)

const analysisTimeout = 90 * time.Second

var issueList = `{"type": "array", "items": {
  "type": "object",
  "required": ["description"],
  "properties": {
    "description": {"type": "string"},
    "priority": {"enum": ["High", "Medium", "Low"]},
    "estimatedCost": {"type": "string"}
  }
}}`

var resultSchema = llm.MustSchema(`{
  "type": "object",
  "required": ["summary", "issues", "recommendations", "totalEstimatedCost", "totalEstimatedTime"],
  "properties": {
    "summary": {"type": "string", "minLength": 1},
    "issues": {
      "type": "object",
      "properties": {
        "designIssues": ` + issueList + `,
        "performanceIssues": ` + issueList + `,
        "responsiveIssues": ` + issueList + `,
        "functionalityIssues": ` + issueList + `
      }
    },
    "recommendations": {"type": "array", "items": {
      "type": "object",
      "required": ["description"],
      "properties": {
        "description": {"type": "string"},
        "estimatedCost": {"type": "string"},
        "estimatedTime": {"type": "string"},
        "priority": {"enum": ["High", "Medium", "Low"]}
      }
    }},
    "totalEstimatedCost": {
      "type": "object",
      "required": ["low", "high"],
      "properties": {"low": {"type": "string"}, "high": {"type": "string"}}
    },
    "totalEstimatedTime": {"type": "string"}
  }
}`)

// AnalysisService stores website analysis requests and reviews them with the
// language model in the background.
type AnalysisService struct {
	analyses *storage.Table[domain.Analysis]
	client   llm.Client
	configs  config.AppConfigService
	notifier notify.Notifier
	logger   *slog.Logger
	now      func() time.Time

	background sync.WaitGroup
}

func NewAnalysisService(analyses *storage.Table[domain.Analysis], client llm.Client, configs config.AppConfigService, notifier notify.Notifier, logger *slog.Logger) *AnalysisService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalysisService{
		analyses: analyses,
		client:   client,
		configs:  configs,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// Create stores req, notifies the operator and starts the review. The
// returned analysis has no result yet.
func (s *AnalysisService) Create(ctx context.Context, req domain.Request) domain.Analysis {
	req.PainPoints = sanitize.Text(req.PainPoints)
	req.Budget = sanitize.Text(req.Budget)
	req.ImprovementAreas = sanitize.Texts(req.ImprovementAreas)

	a := s.analyses.Insert(func(id int64) domain.Analysis {
		return domain.Analysis{ID: id, Request: req, CreatedAt: s.now()}
	})
	s.logger.Info("website analysis stored", "id", a.ID, "url", a.WebsiteURL)

	if s.notifier != nil {
		s.notifier.AnalysisRequested(ctx, notify.AnalysisNotice{
			WebsiteURL:       req.WebsiteURL,
			Email:            req.Email,
			Budget:           req.Budget,
			PainPoints:       req.PainPoints,
			ImprovementAreas: req.ImprovementAreas,
		})
	}

	s.background.Add(1)
	go s.review(context.WithoutCancel(ctx), a.ID, req)
	return a
}

func (s *AnalysisService) review(ctx context.Context, id int64, req domain.Request) {
	defer s.background.Done()

	ctx, cancel := context.WithTimeout(ctx, analysisTimeout)
	defer cancel()

	result, err := s.Analyze(ctx, req)
	if err != nil {
		s.logger.Warn("website analysis failed, storing fallback", "id", id, "error", err)
		result = domain.FallbackResult()
	}
	if _, err := s.analyses.Update(id, func(a domain.Analysis) domain.Analysis {
		a.AIAnalysis = result
		return a
	}); err != nil {
		s.logger.Error("failed to attach analysis", "id", id, "error", err)
	}
}

// Analyze asks the model to review the website of req.
func (s *AnalysisService) Analyze(ctx context.Context, req domain.Request) (*domain.Result, error) {
	cfg := config.LoadOrDefault(s.configs, s.logger)

	pain := req.PainPoints
	if pain == "" {
		pain = "none given"
	}
	reply, err := s.client.Complete(ctx, llm.Request{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: cfg.WithContext(cfg.RolePrompt(configdomain.RoleAnalysis))},
			{Role: llm.RoleUser, Content: fmt.Sprintf(
				"Analyze this website: %s\n\nUser-reported pain points: %s\n\nAreas they want to improve: %s\n\n"+
					"Provide a detailed analysis with issues found, recommendations, and cost estimates. "+
					`Format your response as a JSON object with these properties: "summary" (string), `+
					`"issues" (object with "designIssues", "performanceIssues", "responsiveIssues" and "functionalityIssues" arrays of `+
					`{"description", "priority", "estimatedCost"}), "recommendations" (array of `+
					`{"description", "estimatedCost", "estimatedTime", "priority"}), "totalEstimatedCost" (object with "low" and "high" strings) `+
					`and "totalEstimatedTime" (string). Priorities are "High", "Medium" or "Low".`,
				req.WebsiteURL, pain, strings.Join(req.ImprovementAreas, ", "))},
		},
		JSON:        true,
		Model:       cfg.ModelParams.Model,
		Temperature: cfg.ModelParams.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("analyze website: %w", err)
	}
	result, err := llm.Decode[domain.Result](reply, resultSchema)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Wait blocks until every background review finished.
func (s *AnalysisService) Wait() { s.background.Wait() }

// List returns every analysis, newest first.
func (s *AnalysisService) List() []domain.Analysis {
	return s.analyses.List()
}

func (s *AnalysisService) Get(id int64) (domain.Analysis, error) {
	return s.analyses.Get(id)
}

func (s *AnalysisService) SetViewed(id int64, viewed bool) (domain.Analysis, error) {
	return s.analyses.Update(id, func(a domain.Analysis) domain.Analysis {
		a.Viewed = viewed
		return a
	})
}
