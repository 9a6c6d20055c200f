package config

import (
	"log/slog"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/spf13/afero"
)

// XDGInterface defines the interface for XDG directory operations
type XDGInterface interface {
	GetConfigPaths(filename string) []string
	GetCachePath(purpose string) string
	CreateCacheDir(fs afero.Fs, purpose string) error
}

// XDGDirs provides XDG Base Directory compliant paths for wavetap
type XDGDirs struct{}

// NewXDGDirs creates a new XDG directory manager
func NewXDGDirs() *XDGDirs {
	slog.Debug("creating new XDG directory manager")
	return &XDGDirs{}
}

// GetConfigPaths returns prioritized paths where a config file can be found:
// user config dir first, then system config dirs.
func (x *XDGDirs) GetConfigPaths(filename string) []string {
	paths := []string{filepath.Join(xdg.ConfigHome, "wavetap", filename)}
	for _, configDir := range xdg.ConfigDirs {
		paths = append(paths, filepath.Join(configDir, "wavetap", filename))
	}

	slog.Debug("generated config search paths",
		"filename", filename,
		"total_paths", len(paths))
	return paths
}

// GetCachePath returns the cache directory path for a specific purpose
// (logs, history)
func (x *XDGDirs) GetCachePath(purpose string) string {
	baseDir := "wavetap"
	if purpose != "" {
		baseDir = filepath.Join(baseDir, purpose)
	}
	return filepath.Join(xdg.CacheHome, baseDir)
}

// CreateCacheDir ensures the cache directory for a purpose exists
func (x *XDGDirs) CreateCacheDir(fs afero.Fs, purpose string) error {
	path := x.GetCachePath(purpose)
	slog.Debug("ensuring cache directory", "path", path)
	return fs.MkdirAll(path, 0755)
}
