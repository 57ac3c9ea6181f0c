package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// Config holds all configurable paths and engine settings.
type Config struct {
	// Paths
	AssetDir       string `json:"asset_dir"`
	FramesManifest string `json:"frames_manifest"`
	OutputDir      string `json:"output_dir"`

	// Engine settings
	LatencyTargetMs    int `json:"latency_target_ms"`
	CacheWarnThreshold int `json:"cache_warn_threshold"`
	PreloadGroupSize   int `json:"preload_group_size"`
	PreloadPauseMs     int `json:"preload_pause_ms"`

	// Prerender settings
	ThumbSize int `json:"thumb_size"`
	Workers   int `json:"workers"`
}

// Load reads a JSON config file and returns Config.
// Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	AssetDir  string
	OutputDir string
	Workers   int
}

// Resolve fills in any empty fields with defaults. CLI flags take priority
// when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) {
	if flags.AssetDir != "" {
		c.AssetDir = flags.AssetDir
	}
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}

	if c.AssetDir == "" {
		c.AssetDir = detectAssetDir()
	}

	if c.AssetDir != "" {
		if c.FramesManifest == "" {
			c.FramesManifest = filepath.Join(c.AssetDir, "static", "frames", "manifest.json")
		} else if !filepath.IsAbs(c.FramesManifest) {
			c.FramesManifest = filepath.Join(c.AssetDir, c.FramesManifest)
		}

		if c.OutputDir == "" {
			c.OutputDir = filepath.Join(c.AssetDir, "static", "renders")
		} else if !filepath.IsAbs(c.OutputDir) {
			c.OutputDir = filepath.Join(c.AssetDir, c.OutputDir)
		}
	}

	if c.LatencyTargetMs <= 0 {
		c.LatencyTargetMs = 100
	}
	if c.CacheWarnThreshold <= 0 {
		c.CacheWarnThreshold = 20
	}
	if c.PreloadGroupSize <= 0 {
		c.PreloadGroupSize = 3
	}
	if c.PreloadPauseMs <= 0 {
		c.PreloadPauseMs = 100
	}
	if c.ThumbSize <= 0 {
		c.ThumbSize = 256
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
}

func detectAssetDir() string {
	// Try relative to executable
	exe, _ := os.Executable()
	if exe != "" {
		dir := filepath.Dir(exe)
		for _, base := range []string{dir, filepath.Dir(dir)} {
			if _, err := os.Stat(filepath.Join(base, "static", "frames")); err == nil {
				return base
			}
		}
	}

	// Try current working directory
	cwd, _ := os.Getwd()
	if _, err := os.Stat(filepath.Join(cwd, "static", "frames")); err == nil {
		return cwd
	}

	return ""
}
