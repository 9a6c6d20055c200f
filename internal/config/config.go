package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// DefaultConfigFilename is the config file looked up in the XDG search paths
const DefaultConfigFilename = "config.json"

// FileLoggingConfig represents file-based logging configuration
type FileLoggingConfig struct {
	Enabled    bool   `json:"enabled"`      // Whether file logging is enabled
	Filename   string `json:"filename"`     // Log file path (empty = XDG cache path)
	MaxSizeMB  int    `json:"max_size_mb"`  // Max file size in MB before rotation
	MaxBackups int    `json:"max_backups"`  // Max number of backup files to keep
	MaxAgeDays int    `json:"max_age_days"` // Max age in days before deletion
	Compress   bool   `json:"compress"`     // Whether to compress rotated files
}

// Config represents wavetap configuration
type Config struct {
	Volume        float64            `json:"volume"`                 // Output gain (0.0 to 1.0)
	MusicDir      string             `json:"music_dir"`              // Directory scanned for tracks
	AudioBackend  string             `json:"audio_backend"`          // Sink backend (auto, beep, malgo)
	WindowSeconds float64            `json:"window_seconds"`         // Waveform window width in seconds
	LogLevel      string             `json:"log_level"`              // Log level (debug, info, warn, error)
	HistoryDB     string             `json:"history_db"`             // Play-history database path (empty = XDG cache path)
	FileLogging   *FileLoggingConfig `json:"file_logging,omitempty"` // File logging configuration
}

// Manager handles loading, saving, and validating configuration
type Manager struct {
	fs  afero.Fs
	xdg XDGInterface
}

// NewManager creates a configuration manager on the OS filesystem
func NewManager() *Manager {
	return NewManagerWithFilesystem(afero.NewOsFs())
}

// NewManagerWithFilesystem creates a configuration manager on the given
// filesystem (in-memory in tests)
func NewManagerWithFilesystem(fs afero.Fs) *Manager {
	slog.Debug("creating config manager")
	return &Manager{
		fs:  fs,
		xdg: NewXDGDirs(),
	}
}

// GetDefaultConfig returns the default configuration
func (m *Manager) GetDefaultConfig() *Config {
	defaults := &Config{
		Volume:        1.0,
		MusicDir:      "",
		AudioBackend:  "auto",
		WindowSeconds: 2.0,
		LogLevel:      "warn",
		FileLogging: &FileLoggingConfig{
			Enabled:    false,
			Filename:   "",
			MaxSizeMB:  10,
			MaxBackups: 5,
			MaxAgeDays: 30,
			Compress:   true,
		},
	}

	slog.Debug("generated default config",
		"volume", defaults.Volume,
		"audio_backend", defaults.AudioBackend,
		"window_seconds", defaults.WindowSeconds,
		"log_level", defaults.LogLevel)
	return defaults
}

// LoadFromFile loads configuration from a specific file
func (m *Manager) LoadFromFile(filePath string) (*Config, error) {
	slog.Debug("loading config from file", "file_path", filePath)

	data, err := afero.ReadFile(m.fs, filePath)
	if err != nil {
		slog.Error("failed to read config file", "file_path", filePath, "error", err)
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start from defaults so missing keys keep sensible values
	cfg := m.GetDefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		slog.Error("failed to parse config file", "file_path", filePath, "error", err)
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := m.ValidateConfig(cfg); err != nil {
		slog.Error("config validation failed", "file_path", filePath, "error", err)
		return nil, err
	}

	slog.Info("config loaded",
		"file_path", filePath,
		"volume", cfg.Volume,
		"music_dir", cfg.MusicDir,
		"audio_backend", cfg.AudioBackend)
	return cfg, nil
}

// LoadConfig loads configuration from the XDG search paths, falling back to
// defaults when no config file exists
func (m *Manager) LoadConfig() *Config {
	for _, path := range m.xdg.GetConfigPaths(DefaultConfigFilename) {
		exists, err := afero.Exists(m.fs, path)
		if err != nil || !exists {
			continue
		}

		cfg, err := m.LoadFromFile(path)
		if err != nil {
			slog.Warn("skipping unreadable config file", "path", path, "error", err)
			continue
		}
		return cfg
	}

	slog.Debug("no config file found, using defaults")
	return m.GetDefaultConfig()
}

// SaveToFile writes configuration to a specific file
func (m *Manager) SaveToFile(cfg *Config, filePath string) error {
	if err := m.ValidateConfig(cfg); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := afero.WriteFile(m.fs, filePath, data, 0644); err != nil {
		slog.Error("failed to write config file", "file_path", filePath, "error", err)
		return fmt.Errorf("failed to write config file: %w", err)
	}

	slog.Info("config saved", "file_path", filePath)
	return nil
}

// ValidateConfig checks configuration invariants
func (m *Manager) ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config cannot be nil")
	}

	if cfg.Volume < 0.0 || cfg.Volume > 1.0 {
		return fmt.Errorf("volume must be between 0.0 and 1.0, got %f", cfg.Volume)
	}

	if cfg.WindowSeconds <= 0 {
		return fmt.Errorf("window_seconds must be positive, got %f", cfg.WindowSeconds)
	}

	switch strings.ToLower(cfg.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", cfg.LogLevel)
	}

	switch cfg.AudioBackend {
	case "", "auto", "beep", "malgo":
	default:
		return fmt.Errorf("invalid audio backend: %s", cfg.AudioBackend)
	}

	return nil
}

// LogFilePath resolves the file-logging destination, defaulting to the XDG
// cache directory
func (m *Manager) LogFilePath(cfg *Config) string {
	if cfg.FileLogging != nil && cfg.FileLogging.Filename != "" {
		return cfg.FileLogging.Filename
	}
	return filepath.Join(m.xdg.GetCachePath(""), "wavetap.log")
}

// HistoryDBPath resolves the play-history database path, defaulting to the
// XDG cache directory
func (m *Manager) HistoryDBPath(cfg *Config) string {
	if cfg.HistoryDB != "" {
		return cfg.HistoryDB
	}
	return filepath.Join(m.xdg.GetCachePath(""), "history.db")
}
