package config

import (
	"strings"
	"testing"

	"github.com/spf13/afero"
)

func TestGetDefaultConfig(t *testing.T) {
	m := NewManagerWithFilesystem(afero.NewMemMapFs())
	cfg := m.GetDefaultConfig()

	if cfg.Volume != 1.0 {
		t.Errorf("expected default volume 1.0, got %f", cfg.Volume)
	}
	if cfg.AudioBackend != "auto" {
		t.Errorf("expected default backend 'auto', got %q", cfg.AudioBackend)
	}
	if cfg.WindowSeconds != 2.0 {
		t.Errorf("expected default window 2.0s, got %f", cfg.WindowSeconds)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("expected default log level 'warn', got %q", cfg.LogLevel)
	}
	if cfg.FileLogging == nil || cfg.FileLogging.Enabled {
		t.Error("expected file logging configured but disabled by default")
	}

	if err := m.ValidateConfig(cfg); err != nil {
		t.Errorf("default config must validate, got %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	memFs := afero.NewMemMapFs()
	m := NewManagerWithFilesystem(memFs)

	t.Run("valid file", func(t *testing.T) {
		content := `{"volume": 0.5, "music_dir": "/srv/music", "audio_backend": "beep"}`
		if err := afero.WriteFile(memFs, "/etc/wavetap.json", []byte(content), 0644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		cfg, err := m.LoadFromFile("/etc/wavetap.json")
		if err != nil {
			t.Fatalf("unexpected load error: %v", err)
		}

		if cfg.Volume != 0.5 {
			t.Errorf("expected volume 0.5, got %f", cfg.Volume)
		}
		if cfg.MusicDir != "/srv/music" {
			t.Errorf("expected music dir /srv/music, got %q", cfg.MusicDir)
		}
		if cfg.AudioBackend != "beep" {
			t.Errorf("expected backend beep, got %q", cfg.AudioBackend)
		}
		// Keys absent from the file keep their defaults
		if cfg.WindowSeconds != 2.0 {
			t.Errorf("expected default window for missing key, got %f", cfg.WindowSeconds)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := m.LoadFromFile("/does/not/exist.json"); err == nil {
			t.Error("expected error for missing file")
		}
	})

	t.Run("malformed json", func(t *testing.T) {
		if err := afero.WriteFile(memFs, "/bad.json", []byte("{nope"), 0644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}
		if _, err := m.LoadFromFile("/bad.json"); err == nil {
			t.Error("expected error for malformed JSON")
		}
	})

	t.Run("invalid values", func(t *testing.T) {
		if err := afero.WriteFile(memFs, "/loud.json", []byte(`{"volume": 3.0}`), 0644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}
		if _, err := m.LoadFromFile("/loud.json"); err == nil {
			t.Error("expected validation error for volume 3.0")
		}
	})
}

func TestSaveAndReloadRoundTrip(t *testing.T) {
	memFs := afero.NewMemMapFs()
	m := NewManagerWithFilesystem(memFs)

	cfg := m.GetDefaultConfig()
	cfg.Volume = 0.25
	cfg.MusicDir = "/home/user/music"

	if err := m.SaveToFile(cfg, "/saved.json"); err != nil {
		t.Fatalf("unexpected save error: %v", err)
	}

	loaded, err := m.LoadFromFile("/saved.json")
	if err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}
	if loaded.Volume != 0.25 || loaded.MusicDir != "/home/user/music" {
		t.Errorf("round trip mismatch: %+v", loaded)
	}
}

func TestSaveRejectsInvalidConfig(t *testing.T) {
	m := NewManagerWithFilesystem(afero.NewMemMapFs())

	cfg := m.GetDefaultConfig()
	cfg.LogLevel = "verbose"

	if err := m.SaveToFile(cfg, "/x.json"); err == nil {
		t.Error("expected save to reject invalid log level")
	}
}

func TestValidateConfig(t *testing.T) {
	m := NewManagerWithFilesystem(afero.NewMemMapFs())

	cases := []struct {
		name   string
		mutate func(*Config)
		valid  bool
	}{
		{"defaults", func(c *Config) {}, true},
		{"volume low edge", func(c *Config) { c.Volume = 0.0 }, true},
		{"volume high edge", func(c *Config) { c.Volume = 1.0 }, true},
		{"volume negative", func(c *Config) { c.Volume = -0.1 }, false},
		{"volume too high", func(c *Config) { c.Volume = 1.5 }, false},
		{"zero window", func(c *Config) { c.WindowSeconds = 0 }, false},
		{"negative window", func(c *Config) { c.WindowSeconds = -1 }, false},
		{"debug level", func(c *Config) { c.LogLevel = "debug" }, true},
		{"uppercase level", func(c *Config) { c.LogLevel = "ERROR" }, true},
		{"bogus level", func(c *Config) { c.LogLevel = "loud" }, false},
		{"beep backend", func(c *Config) { c.AudioBackend = "beep" }, true},
		{"malgo backend", func(c *Config) { c.AudioBackend = "malgo" }, true},
		{"empty backend", func(c *Config) { c.AudioBackend = "" }, true},
		{"bogus backend", func(c *Config) { c.AudioBackend = "jack" }, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := m.GetDefaultConfig()
			tc.mutate(cfg)
			err := m.ValidateConfig(cfg)
			if tc.valid && err != nil {
				t.Errorf("expected valid config, got %v", err)
			}
			if !tc.valid && err == nil {
				t.Error("expected validation error")
			}
		})
	}

	if err := m.ValidateConfig(nil); err == nil {
		t.Error("expected error for nil config")
	}
}

func TestLoadConfigFallsBackToDefaults(t *testing.T) {
	// Empty filesystem: no config file exists anywhere in the search paths
	m := NewManagerWithFilesystem(afero.NewMemMapFs())

	cfg := m.LoadConfig()
	if cfg == nil {
		t.Fatal("expected defaults, got nil")
	}
	if cfg.Volume != 1.0 {
		t.Errorf("expected default volume, got %f", cfg.Volume)
	}
}

func TestPathResolution(t *testing.T) {
	m := NewManagerWithFilesystem(afero.NewMemMapFs())

	t.Run("explicit history db path wins", func(t *testing.T) {
		cfg := m.GetDefaultConfig()
		cfg.HistoryDB = "/custom/history.db"
		if got := m.HistoryDBPath(cfg); got != "/custom/history.db" {
			t.Errorf("expected explicit path, got %q", got)
		}
	})

	t.Run("default history db path under cache dir", func(t *testing.T) {
		cfg := m.GetDefaultConfig()
		got := m.HistoryDBPath(cfg)
		if !strings.Contains(got, "wavetap") || !strings.HasSuffix(got, "history.db") {
			t.Errorf("expected XDG cache path ending in history.db, got %q", got)
		}
	})

	t.Run("explicit log file path wins", func(t *testing.T) {
		cfg := m.GetDefaultConfig()
		cfg.FileLogging.Filename = "/var/log/wavetap.log"
		if got := m.LogFilePath(cfg); got != "/var/log/wavetap.log" {
			t.Errorf("expected explicit path, got %q", got)
		}
	})

	t.Run("default log file path under cache dir", func(t *testing.T) {
		cfg := m.GetDefaultConfig()
		got := m.LogFilePath(cfg)
		if !strings.HasSuffix(got, "wavetap.log") {
			t.Errorf("expected path ending in wavetap.log, got %q", got)
		}
	})
}

func TestXDGConfigPaths(t *testing.T) {
	dirs := NewXDGDirs()

	paths := dirs.GetConfigPaths(DefaultConfigFilename)
	if len(paths) == 0 {
		t.Fatal("expected at least one config search path")
	}
	for _, path := range paths {
		if !strings.Contains(path, "wavetap") {
			t.Errorf("config path %q must be namespaced under wavetap", path)
		}
		if !strings.HasSuffix(path, DefaultConfigFilename) {
			t.Errorf("config path %q must end with %s", path, DefaultConfigFilename)
		}
	}
}

func TestXDGCreateCacheDir(t *testing.T) {
	dirs := NewXDGDirs()
	memFs := afero.NewMemMapFs()

	if err := dirs.CreateCacheDir(memFs, "logs"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	exists, err := afero.DirExists(memFs, dirs.GetCachePath("logs"))
	if err != nil || !exists {
		t.Errorf("expected cache dir to exist, exists=%v err=%v", exists, err)
	}
}
