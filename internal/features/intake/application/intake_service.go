package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"devcraft-studio/backend/internal/config"
	configdomain "devcraft-studio/backend/internal/features/config/domain"
	"devcraft-studio/backend/internal/features/intake/domain"
	"devcraft-studio/backend/internal/features/intake/wizard"
)

var (
	ErrSessionNotFound = errors.New("intake session not found")
	ErrMalformedInput  = errors.New("malformed step input")
)

// IntakeService keeps the server-side wizards of clients filling the form.
type IntakeService struct {
	enricher      wizard.Enricher
	gateway       wizard.Gateway
	configs       config.AppConfigService
	submitTimeout time.Duration
	logger        *slog.Logger

	mu       sync.RWMutex
	sessions map[string]*wizard.Wizard
}

func NewIntakeService(enricher wizard.Enricher, gateway wizard.Gateway, configs config.AppConfigService, submitTimeout time.Duration, logger *slog.Logger) *IntakeService {
	if logger == nil {
		logger = slog.Default()
	}
	if submitTimeout <= 0 {
		submitTimeout = wizard.DefaultSubmitTimeout
	}
	return &IntakeService{
		enricher:      enricher,
		gateway:       gateway,
		configs:       configs,
		submitTimeout: submitTimeout,
		logger:        logger,
		sessions:      make(map[string]*wizard.Wizard),
	}
}

// Start opens a new wizard on step 1.
func (s *IntakeService) Start() (wizard.Snapshot, error) {
	cfg := config.LoadOrDefault(s.configs, s.logger)
	w, err := wizard.New(s.enricher, s.gateway,
		wizard.WithLogger(s.logger),
		wizard.WithSubmitTimeout(s.submitTimeout),
		wizard.WithPrompts(StepPrompts(cfg)),
	)
	if err != nil {
		return wizard.Snapshot{}, fmt.Errorf("failed to start intake session: %w", err)
	}

	s.mu.Lock()
	s.sessions[w.ID()] = w
	s.mu.Unlock()

	s.logger.Info("intake session started", "session", w.ID())
	return w.Snapshot(), nil
}

// StepPrompts maps the configured step messages, keyed "1" to "5", to steps.
// Unknown keys are ignored.
func StepPrompts(cfg *configdomain.AppConfig) map[domain.Step]string {
	prompts := make(map[domain.Step]string, len(cfg.StepPrompts))
	for key, text := range cfg.StepPrompts {
		n, err := strconv.Atoi(key)
		if err != nil || !domain.Step(n).Valid() {
			continue
		}
		prompts[domain.Step(n)] = text
	}
	return prompts
}

// Session returns the wizard registered under id.
func (s *IntakeService) Session(id string) (*wizard.Wizard, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return w, nil
}

func (s *IntakeService) Snapshot(id string) (wizard.Snapshot, error) {
	w, err := s.Session(id)
	if err != nil {
		return wizard.Snapshot{}, err
	}
	return w.Snapshot(), nil
}

// Advance decodes raw as the input of the session's current step and
// advances. The snapshot is returned alongside wizard errors so callers can
// render the state the client is in.
func (s *IntakeService) Advance(ctx context.Context, id string, raw []byte) (wizard.Snapshot, error) {
	w, err := s.Session(id)
	if err != nil {
		return wizard.Snapshot{}, err
	}
	snap := w.Snapshot()
	if err := w.Ready(); err != nil {
		return snap, err
	}
	in, err := domain.DecodeStepInput(snap.Step, raw)
	if err != nil {
		return snap, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	err = w.Advance(ctx, in)
	return w.Snapshot(), err
}

func (s *IntakeService) Retreat(id string) (wizard.Snapshot, error) {
	w, err := s.Session(id)
	if err != nil {
		return wizard.Snapshot{}, err
	}
	err = w.Retreat()
	return w.Snapshot(), err
}

// RefreshFeatures requests suggestions for a feature selection still being
// edited on step 2.
func (s *IntakeService) RefreshFeatures(ctx context.Context, id string, features []string) (wizard.Snapshot, error) {
	w, err := s.Session(id)
	if err != nil {
		return wizard.Snapshot{}, err
	}
	err = w.RefreshSuggestions(ctx, features)
	return w.Snapshot(), err
}

// Prune drops sessions idle for longer than ttl and reports how many went.
func (s *IntakeService) Prune(ttl time.Duration) int {
	cutoff := time.Now().Add(-ttl)

	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, w := range s.sessions {
		if w.LastActive().Before(cutoff) {
			delete(s.sessions, id)
			n++
		}
	}
	if n > 0 {
		s.logger.Info("pruned idle intake sessions", "count", n, "remaining", len(s.sessions))
	}
	return n
}

// Len reports the number of open sessions.
func (s *IntakeService) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
