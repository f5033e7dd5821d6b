package application

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"devcraft-studio/backend/internal/config"
	"devcraft-studio/backend/internal/features/config/domain"
)

// ConfigService defines the interface for config management.
type ConfigService interface {
	GetConfig() (*domain.AppConfig, error)
	SaveConfig(config *domain.AppConfig) error
}

// InvalidConfigError is returned when a submitted configuration is rejected.
type InvalidConfigError struct {
	Err error
}

func (e *InvalidConfigError) Error() string { return "invalid app config: " + e.Err.Error() }

func (e *InvalidConfigError) Unwrap() error { return e.Err }

// configService validates configurations before they reach the store.
type configService struct {
	store    config.AppConfigService
	validate *validator.Validate
}

// NewConfigService creates a new instance of configService.
func NewConfigService(store config.AppConfigService) ConfigService {
	return &configService{store: store, validate: validator.New()}
}

func (s *configService) GetConfig() (*domain.AppConfig, error) {
	return s.store.LoadAppConfig()
}

// SaveConfig checks the model parameters and step keys, then persists.
func (s *configService) SaveConfig(cfg *domain.AppConfig) error {
	if err := s.validate.Struct(cfg.ModelParams); err != nil {
		return &InvalidConfigError{Err: err}
	}
	for key := range cfg.StepPrompts {
		switch key {
		case "1", "2", "3", "4", "5":
		default:
			return &InvalidConfigError{Err: fmt.Errorf("unknown step %q in step_prompts", key)}
		}
	}
	return s.store.SaveAppConfig(cfg)
}
