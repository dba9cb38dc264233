package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.yaml.in/yaml/v3"

	"stealth-overlay/internal/overlay"
)

const (
	configDirName  = ".stealth-overlay"
	configFileName = "config.yaml"
)

// Config holds all application configuration
type Config struct {
	// WindowTitle is also how the overlay window handle is looked up.
	WindowTitle string `yaml:"window_title"`
	Debug       bool   `yaml:"debug"`
	LogLevel    string `yaml:"log_level"`

	Overlay OverlayConfig `yaml:"overlay"`
	Hotkey  HotkeyConfig  `yaml:"hotkey"`
}

// OverlayConfig holds overlay window settings
type OverlayConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`

	// Alpha levels, 0-255. Must satisfy 1 <= hidden <= dimmed < shown.
	HiddenAlpha int `yaml:"hidden_alpha"`
	DimmedAlpha int `yaml:"dimmed_alpha"`
	ShownAlpha  int `yaml:"shown_alpha"`

	ExcludeFromPeek bool `yaml:"exclude_from_peek"`
	LegacyCloak     bool `yaml:"legacy_cloak"`
	// PreShow shows the overlay as soon as the window is ready.
	PreShow bool `yaml:"pre_show"`
}

// HotkeyConfig holds the global toggle hotkey settings
type HotkeyConfig struct {
	Enabled bool   `yaml:"enabled"`
	Binding string `yaml:"binding"`
}

// Service manages configuration persistence
type Service struct {
	mu       sync.RWMutex
	config   *Config
	filePath string
}

// New creates a new config service. An empty path selects DefaultPath.
// A default file is written when none exists.
func New(path string) (*Service, error) {
	if strings.TrimSpace(path) == "" {
		defaultPath, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = defaultPath
	}

	service := &Service{
		filePath: path,
		config:   getDefaultConfig(),
	}

	if _, err := os.Stat(path); err == nil {
		if err := service.Load(); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	} else if errors.Is(err, os.ErrNotExist) {
		if err := service.Save(); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
	} else {
		return nil, fmt.Errorf("failed to stat config: %w", err)
	}

	return service, nil
}

// DefaultPath returns ~/.stealth-overlay/config.yaml
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, configDirName, configFileName), nil
}

// getDefaultConfig returns the default configuration
func getDefaultConfig() *Config {
	levels := overlay.DefaultLevels
	return &Config{
		WindowTitle: "Stealth Overlay",
		LogLevel:    "info",
		Overlay: OverlayConfig{
			Width:           480,
			Height:          160,
			HiddenAlpha:     int(levels.Hidden),
			DimmedAlpha:     int(levels.Dimmed),
			ShownAlpha:      int(levels.Shown),
			ExcludeFromPeek: true,
		},
		Hotkey: HotkeyConfig{
			Enabled: true,
			Binding: overlay.DefaultBinding,
		},
	}
}

// Get returns a copy of the current configuration
func (s *Service) Get() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return *s.config
}

// Set updates the configuration
func (s *Service) Set(config *Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.config = config
}

// Path returns the full path to the configuration file
func (s *Service) Path() string {
	return s.filePath
}

// Load reads the file over the defaults and validates it. On error the
// current configuration is kept.
func (s *Service) Load() error {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return err
	}

	cfg := getDefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", s.filePath, err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validate %s: %w", s.filePath, err)
	}

	s.Set(cfg)
	return nil
}

// Save writes the configuration with a temp file and rename so readers
// never see a partial file.
func (s *Service) Save() error {
	cfg := s.Get()
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("save config: marshal: %w", err)
	}

	dir := filepath.Dir(s.filePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".config.yaml.tmp.*")
	if err != nil {
		return fmt.Errorf("save config: create temp: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("save config: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("save config: close: %w", err)
	}
	if err := os.Rename(tmpPath, s.filePath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("save config: rename: %w", err)
	}
	return nil
}

// Validate checks alpha ordering and that the hotkey binding combines
// three distinct modifiers with one key.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.WindowTitle) == "" {
		return errors.New("window_title must not be empty")
	}
	for name, v := range map[string]int{
		"hidden_alpha": c.Overlay.HiddenAlpha,
		"dimmed_alpha": c.Overlay.DimmedAlpha,
		"shown_alpha":  c.Overlay.ShownAlpha,
	} {
		if v < 0 || v > 255 {
			return fmt.Errorf("overlay.%s %d out of range 0-255", name, v)
		}
	}
	if err := c.Levels().Validate(); err != nil {
		return fmt.Errorf("overlay: %w", err)
	}
	binding, err := overlay.ParseBinding(c.Hotkey.Binding)
	if err != nil {
		return fmt.Errorf("hotkey.binding: %w", err)
	}
	if err := binding.Validate(); err != nil {
		return fmt.Errorf("hotkey.binding: %w", err)
	}
	return nil
}

// Levels converts the configured alphas. Call Validate first.
func (c *Config) Levels() overlay.Levels {
	return overlay.Levels{
		Hidden: overlay.Alpha(c.Overlay.HiddenAlpha),
		Dimmed: overlay.Alpha(c.Overlay.DimmedAlpha),
		Shown:  overlay.Alpha(c.Overlay.ShownAlpha),
	}
}

// OverlayOptions builds the overlay service options from a validated config.
func (c *Config) OverlayOptions() (overlay.Options, error) {
	binding, err := overlay.ParseBinding(c.Hotkey.Binding)
	if err != nil {
		return overlay.Options{}, fmt.Errorf("hotkey.binding: %w", err)
	}
	return overlay.Options{
		Levels:          c.Levels(),
		ExcludeFromPeek: c.Overlay.ExcludeFromPeek,
		LegacyCloak:     c.Overlay.LegacyCloak,
		Binding:         binding,
		HotkeyEnabled:   c.Hotkey.Enabled,
		PreShow:         c.Overlay.PreShow || c.Debug,
	}, nil
}

// Tuning returns the values that may change while the overlay is live.
func (c *Config) Tuning() overlay.Tuning {
	return overlay.Tuning{
		Levels:          c.Levels(),
		ExcludeFromPeek: c.Overlay.ExcludeFromPeek,
		LegacyCloak:     c.Overlay.LegacyCloak,
	}
}
