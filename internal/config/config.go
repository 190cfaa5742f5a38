// Package config loads the JSON settings file and merges CLI overrides.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// Config holds file paths, window and guide geometry, and session settings.
type Config struct {
	// Paths
	StateFile  string `json:"state_file"`
	LayoutFile string `json:"layout_file"`
	ExportDir  string `json:"export_dir"`

	// Geometry
	GuideWidth   int `json:"guide_width"`
	GuideHeight  int `json:"guide_height"`
	WindowWidth  int `json:"window_width"`
	WindowHeight int `json:"window_height"`

	// Live session
	ListenAddr string `json:"listen_addr"`
	Advertise  bool   `json:"advertise"`

	// Export
	RecordSeconds float64 `json:"record_seconds"`
	RecordFPS     int     `json:"record_fps"`

	FontSize int    `json:"font_size"`
	LogLevel string `json:"log_level"`
}

// Load reads a JSON config file. A missing file yields a zero Config so
// that Resolve can fill in every default.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Config{}, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Flags holds CLI values that override the config file when set.
type Flags struct {
	StateFile  string
	ExportDir  string
	ListenAddr string
	Advertise  bool
	LogLevel   string
	BaseDir    string
}

// Resolve applies flags, then fills empty fields with defaults. Relative
// paths are resolved against flags.BaseDir when it is set.
func (c *Config) Resolve(flags Flags) {
	if flags.StateFile != "" {
		c.StateFile = flags.StateFile
	}
	if flags.ExportDir != "" {
		c.ExportDir = flags.ExportDir
	}
	if flags.ListenAddr != "" {
		c.ListenAddr = flags.ListenAddr
	}
	if flags.Advertise {
		c.Advertise = true
	}
	if flags.LogLevel != "" {
		c.LogLevel = flags.LogLevel
	}

	if c.StateFile == "" {
		c.StateFile = ".shirtforge_state.json"
	}
	if c.LayoutFile == "" {
		c.LayoutFile = ".shirtforge_layout.json"
	}
	if c.ExportDir == "" {
		c.ExportDir = "exports"
	}
	if flags.BaseDir != "" {
		c.StateFile = under(flags.BaseDir, c.StateFile)
		c.LayoutFile = under(flags.BaseDir, c.LayoutFile)
		c.ExportDir = under(flags.BaseDir, c.ExportDir)
	}

	if c.GuideWidth <= 0 || c.GuideHeight <= 0 {
		c.GuideWidth, c.GuideHeight = 450, 400
	}
	if c.WindowWidth <= 0 {
		c.WindowWidth = 1280
	}
	if c.WindowHeight <= 0 {
		c.WindowHeight = 720
	}
	if c.ListenAddr == "" {
		c.ListenAddr = ":8888"
	}
	if c.RecordSeconds <= 0 {
		c.RecordSeconds = 5
	}
	if c.RecordFPS <= 0 {
		c.RecordFPS = 30
	}
	if c.FontSize <= 0 {
		c.FontSize = 48
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

func under(base, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

// RecordDuration is the fixed length of a frame recording.
func (c Config) RecordDuration() time.Duration {
	return time.Duration(c.RecordSeconds * float64(time.Second))
}
