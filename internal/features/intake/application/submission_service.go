package application

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"devcraft-studio/backend/internal/features/intake/domain"
	"devcraft-studio/backend/internal/features/intake/wizard"
	"devcraft-studio/backend/internal/notify"
	"devcraft-studio/backend/internal/storage"
)

const reviewTimeout = 60 * time.Second

// SubmissionService stores project requests, alerts the operator and attaches
// model suggestions once they arrive. It is the in-process wizard.Gateway.
type SubmissionService struct {
	requests *storage.Table[domain.Submission]
	notifier notify.Notifier
	reviewer wizard.Enricher
	logger   *slog.Logger
	now      func() time.Time

	background sync.WaitGroup
}

// NewSubmissionService wires the store. reviewer may be nil to skip the
// suggestion pass on stored requests.
func NewSubmissionService(requests *storage.Table[domain.Submission], notifier notify.Notifier, reviewer wizard.Enricher, logger *slog.Logger) *SubmissionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SubmissionService{
		requests: requests,
		notifier: notifier,
		reviewer: reviewer,
		logger:   logger,
		now:      time.Now,
	}
}

// Submit validates req against every step schema and stores it as given.
// Invalid requests return domain.ValidationErrors. Markup is escaped where the
// answers are rendered, never in the stored row.
func (s *SubmissionService) Submit(ctx context.Context, req domain.ProjectRequest) (*domain.Submission, error) {
	if errs := domain.ValidateRequest(req); len(errs) > 0 {
		return nil, errs
	}

	sub := s.requests.Insert(func(id int64) domain.Submission {
		return domain.NewSubmission(id, req, s.now())
	})
	s.logger.Info("project request stored", "id", sub.ID, "project_type", sub.ProjectType)

	if s.notifier != nil {
		s.notifier.ProjectRequested(ctx, notify.ProjectNotice{
			Name:        sub.Name,
			ProjectType: string(sub.ProjectType),
			Email:       sub.Email,
		})
	}
	if s.reviewer != nil {
		s.background.Add(1)
		go s.review(context.WithoutCancel(ctx), sub.ID, sub.ProjectType, sub.Features)
	}
	return &sub, nil
}

// review attaches suggestions to a stored request for the admin view.
func (s *SubmissionService) review(ctx context.Context, id int64, projectType domain.ProjectType, features []string) {
	defer s.background.Done()

	ctx, cancel := context.WithTimeout(ctx, reviewTimeout)
	defer cancel()

	list, err := s.reviewer.FetchSuggestions(ctx, projectType, features)
	if err != nil {
		s.logger.Warn("suggestion pass failed", "id", id, "error", err)
		return
	}
	if _, err := s.requests.Update(id, func(sub domain.Submission) domain.Submission {
		sub.AISuggestions = list
		return sub
	}); err != nil {
		s.logger.Error("failed to attach suggestions", "id", id, "error", err)
	}
}

// Wait blocks until every background suggestion pass finished.
func (s *SubmissionService) Wait() { s.background.Wait() }

// List returns every stored request, newest first.
func (s *SubmissionService) List() []domain.Submission {
	return s.requests.List()
}

func (s *SubmissionService) Get(id int64) (domain.Submission, error) {
	return s.requests.Get(id)
}

// SetViewed flags a request as reviewed or unreviewed.
func (s *SubmissionService) SetViewed(id int64, viewed bool) (domain.Submission, error) {
	return s.requests.Update(id, func(sub domain.Submission) domain.Submission {
		sub.Viewed = viewed
		return sub
	})
}
