package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"devcraft-studio/backend/internal/features/config/domain"
)

// AppConfigService defines the interface for application configuration management.
type AppConfigService interface {
	LoadAppConfig() (*domain.AppConfig, error)
	SaveAppConfig(config *domain.AppConfig) error
}

// appConfigService keeps the configuration in a YAML file.
type appConfigService struct {
	configPath string
	logger     *slog.Logger
	mu         sync.RWMutex
}

// NewAppConfigService creates a file-backed AppConfigService. A missing file
// loads as domain.Default().
func NewAppConfigService(configPath string, logger *slog.Logger) AppConfigService {
	if logger == nil {
		logger = slog.Default()
	}
	return &appConfigService{configPath: configPath, logger: logger}
}

// LoadAppConfig reads the configuration file. Keys absent from the file keep
// their default values.
func (s *appConfigService) LoadAppConfig() (*domain.AppConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.configPath)
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.Debug("app config file missing, using defaults", "path", s.configPath)
		return domain.Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read app config file %s: %w", s.configPath, err)
	}

	appConfig := domain.Default()
	if err := yaml.Unmarshal(data, appConfig); err != nil {
		return nil, fmt.Errorf("failed to unmarshal app config from %s: %w", s.configPath, err)
	}
	return appConfig, nil
}

// SaveAppConfig writes the configuration file, creating its directory.
func (s *appConfigService) SaveAppConfig(appConfig *domain.AppConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := yaml.Marshal(appConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal app config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.configPath), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(s.configPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write app config to file %s: %w", s.configPath, err)
	}
	s.logger.Info("app config saved", "path", s.configPath)
	return nil
}

// LoadOrDefault loads the configuration from store, falling back to
// domain.Default() when store is nil or fails.
func LoadOrDefault(store AppConfigService, logger *slog.Logger) *domain.AppConfig {
	if store == nil {
		return domain.Default()
	}
	cfg, err := store.LoadAppConfig()
	if err != nil {
		if logger == nil {
			logger = slog.Default()
		}
		logger.Error("failed to load app config, using defaults", "error", err)
		return domain.Default()
	}
	return cfg
}
