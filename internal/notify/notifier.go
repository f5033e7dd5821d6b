// Package notify alerts the studio operator about new client activity by SMS
// and email. Delivery failures are logged and never reach the caller.
package notify

import (
	"context"
	"fmt"
	"log/slog"

	"devcraft-studio/backend/internal/sanitize"
)

// ProjectNotice describes a new project request.
type ProjectNotice struct {
	Name        string
	ProjectType string
	Email       string
}

// AnalysisNotice describes a new website analysis request.
type AnalysisNotice struct {
	WebsiteURL       string
	Email            string
	Budget           string
	PainPoints       string
	ImprovementAreas []string
}

// Notifier is implemented by Service and by test fakes.
type Notifier interface {
	ProjectRequested(ctx context.Context, n ProjectNotice)
	AnalysisRequested(ctx context.Context, n AnalysisNotice)
}

// Service fans notices out to the configured channels. A nil channel is skipped.
type Service struct {
	sms    *SMSSender
	mailer *Mailer
	logger *slog.Logger
}

func NewService(sms *SMSSender, mailer *Mailer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{sms: sms, mailer: mailer, logger: logger}
}

func (s *Service) ProjectRequested(ctx context.Context, n ProjectNotice) {
	s.text(ctx, fmt.Sprintf("New Client Request! 🎉\nName: %s\nProject: %s\nEmail: %s\nCheck your admin dashboard for details.",
		sanitize.Text(n.Name), n.ProjectType, n.Email))
}

func (s *Service) AnalysisRequested(ctx context.Context, n AnalysisNotice) {
	s.text(ctx, fmt.Sprintf("New Website Analysis Request! 🔍\nWebsite: %s\nEmail: %s\nCheck your admin dashboard for details.",
		n.WebsiteURL, n.Email))

	if s.mailer == nil {
		s.logger.Warn("email not configured, analysis emails not sent")
		return
	}
	if err := s.mailer.Send(ctx, n.Email, "Your Website Analysis Request Confirmation", analysisConfirmationTmpl, n); err != nil {
		s.logger.Error("confirmation email failed", "error", err)
	}
	if s.mailer.cfg.AdminTo == "" {
		return
	}
	if err := s.mailer.Send(ctx, s.mailer.cfg.AdminTo, "New Website Analysis Request", adminAnalysisTmpl, n); err != nil {
		s.logger.Error("admin email failed", "error", err)
	}
}

func (s *Service) text(ctx context.Context, body string) {
	if s.sms == nil {
		s.logger.Warn("twilio not configured, sms notification not sent")
		return
	}
	sid, err := s.sms.Send(ctx, body)
	if err != nil {
		s.logger.Error("sms notification failed", "error", err)
		return
	}
	s.logger.Info("sms notification sent", "sid", sid)
}
