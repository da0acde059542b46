// Package settings assembles client configuration from three layers:
// built-in defaults, an optional YAML settings file, and environment
// variables, in that order of precedence (environment wins).
package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/loopwell/invitekit/pkg/apierrors"
)

// Settings is the full client configuration.
type Settings struct {
	APIBaseURL    string        `env:"INVITEKIT_API_BASE_URL" yaml:"api_base_url" validate:"required,url"`
	APIKey        string        `env:"INVITEKIT_API_KEY" yaml:"api_key"`
	ComponentID   string        `env:"INVITEKIT_COMPONENT_ID" yaml:"component_id"`
	Locale        string        `env:"INVITEKIT_LOCALE" yaml:"locale" validate:"omitempty,locale_tag"`
	Timeout       time.Duration `env:"INVITEKIT_TIMEOUT" yaml:"timeout"`
	ClientName    string        `env:"INVITEKIT_CLIENT_NAME" yaml:"client_name" validate:"required"`
	ClientVersion string        `env:"INVITEKIT_CLIENT_VERSION" yaml:"client_version"`
	LogLevel      string        `env:"INVITEKIT_LOG_LEVEL" yaml:"log_level" validate:"omitempty,oneof=trace debug info warn error fatal panic"`
	LogPretty     bool          `env:"INVITEKIT_LOG_PRETTY" yaml:"log_pretty"`
	SendRate      float64       `env:"INVITEKIT_SEND_RATE" yaml:"send_rate" validate:"gt=0"`
	SendBurst     int           `env:"INVITEKIT_SEND_BURST" yaml:"send_burst" validate:"gte=1"`
}

// Defaults returns the built-in configuration baseline.
func Defaults() Settings {
	return Settings{
		APIBaseURL:    "https://api.loopwell.dev",
		Timeout:       30 * time.Second,
		ClientName:    "invitekit-go",
		ClientVersion: "dev",
		LogLevel:      "info",
		LogPretty:     true,
		SendRate:      4,
		SendBurst:     2,
	}
}

// DefaultFilePath returns the conventional settings file location under the
// user's config directory.
func DefaultFilePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "invitekit", "config.yaml")
}

// Load assembles settings: defaults, then the YAML file at path (or the
// default location when path is empty; a missing file is fine), then
// environment variables. The result is validated.
func Load(path string) (Settings, error) {
	s := Defaults()

	filePath := path
	explicit := path != ""
	if filePath == "" {
		filePath = DefaultFilePath()
	}
	if filePath != "" {
		if err := applyFile(&s, filePath, explicit); err != nil {
			return Settings{}, err
		}
	}

	if err := env.Parse(&s); err != nil {
		return Settings{}, apierrors.NewValidationError("environment", err.Error(), err)
	}

	if s.Timeout <= 0 {
		s.Timeout = Defaults().Timeout
	}

	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

func applyFile(s *Settings, path string, explicit bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return nil
		}
		if errors.Is(err, os.ErrNotExist) {
			return apierrors.NewValidationError("config", fmt.Sprintf("settings file not found: %s", path), err)
		}
		return apierrors.NewDecodingError("settings file", err)
	}
	if err := yaml.Unmarshal(data, s); err != nil {
		return apierrors.NewDecodingError("settings file", err)
	}
	return nil
}

// Validate checks the assembled settings, reporting the first offending
// field.
func (s Settings) Validate() error {
	err := validatorInstance().Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
		first := validationErrs[0]
		return apierrors.NewValidationError(first.Field(), fmt.Sprintf("failed %q constraint", first.Tag()), err)
	}
	return apierrors.NewValidationError("", err.Error(), err)
}

// HasCredential reports whether an API key is configured.
func (s Settings) HasCredential() bool {
	return s.APIKey != ""
}
