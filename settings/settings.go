// Package settings persists client-local configuration, including the
// onboarding-complete flag, under ~/.cowork/settings.yaml.
package settings

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Settings is the on-disk client configuration.
type Settings struct {
	EngineBinary       string   `yaml:"engine_binary"`
	WorkingDirectory   string   `yaml:"working_directory"`
	Model              string   `yaml:"model"`
	Theme              string   `yaml:"theme"`
	EngineArgs         []string `yaml:"engine_args"`
	OnboardingComplete bool     `yaml:"onboarding_complete"`
}

// Default returns the settings used when no file exists yet.
func Default() *Settings {
	return &Settings{
		EngineBinary: "cowork-engine",
		Theme:        "dark",
	}
}

// DefaultPath returns ~/.cowork/settings.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".cowork", "settings.yaml"), nil
}

// Load reads settings from path. A missing file yields defaults, not an
// error.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}

	s := Default()
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}
	return s, nil
}

// Save writes settings atomically via a temp file and rename, creating the
// parent directory if needed.
func Save(path string, s *Settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace settings: %w", err)
	}
	return nil
}
