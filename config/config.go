// Package config holds the read-only settings shared by the manifest client and the
// archive fetcher.
package config

import (
	"errors"
	"fmt"
	"github.com/csnewman/droidmole/sdkfetch/repository"
	"gopkg.in/ini.v1"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
)

// Unpacker names accepted by the unpacker setting.
const (
	UnpackerAuto  = "auto"
	UnpackerUnzip = "unzip"
)

type Config struct {
	ManifestURL string
	BaseURL     string

	HostOS   repository.HostOS
	HostBits repository.HostBits

	TempDir           string
	ChunkSize         int
	RequestsPerSecond float64
	Progress          bool
	Unpacker          string
}

// Default targets the public Google repository and the running host.
func Default() Config {
	return Config{
		ManifestURL: repository.DefaultManifestURL,
		BaseURL:     repository.DefaultBaseURL,
		HostOS:      hostOS(runtime.GOOS),
		HostBits:    repository.HostBits(strconv.IntSize),
		ChunkSize:   repository.DefaultChunkSize,
		Progress:    true,
		Unpacker:    UnpackerAuto,
	}
}

// DefaultPath is the per-user config file, read when present.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "sdkfetch", "sdkfetch.ini")
}

func hostOS(goos string) repository.HostOS {
	switch goos {
	case "darwin":
		return repository.HostMacOSX
	case "windows":
		return repository.HostWindows
	default:
		return repository.HostLinux
	}
}

// Load reads path on top of the defaults. A missing file is not an error when
// optional is set.
//
//	[repository]
//	manifest-url = https://dl.google.com/android/repository/repository-11.xml
//	base-url = https://dl.google.com/android/repository
//	host-os = linux
//	host-bits = 64
//
//	[download]
//	temp-dir = /var/tmp
//	chunk-size = 2048
//	requests-per-second = 2
//	progress = true
//	unpacker = auto
func Load(path string, optional bool) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	if _, err := os.Stat(path); optional && errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}

	file, err := ini.Load(path)
	if err != nil {
		return Config{}, fmt.Errorf("load %s: %w", path, err)
	}

	repo := file.Section("repository")
	if repo.HasKey("manifest-url") {
		cfg.ManifestURL = repo.Key("manifest-url").String()
	}
	if repo.HasKey("base-url") {
		cfg.BaseURL = repo.Key("base-url").String()
	}

	if repo.HasKey("host-os") {
		v, err := repository.ParseHostOS(repo.Key("host-os").String())
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", path, err)
		}
		cfg.HostOS = v
	}

	if repo.HasKey("host-bits") {
		bits, err := repository.ParseHostBits(repo.Key("host-bits").String())
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", path, err)
		}
		cfg.HostBits = bits
	}

	download := file.Section("download")
	cfg.TempDir = download.Key("temp-dir").MustString(cfg.TempDir)
	cfg.Progress = download.Key("progress").MustBool(cfg.Progress)
	if download.HasKey("unpacker") {
		cfg.Unpacker = download.Key("unpacker").String()
	}

	if download.HasKey("chunk-size") {
		if cfg.ChunkSize, err = download.Key("chunk-size").Int(); err != nil {
			return Config{}, fmt.Errorf("%s: chunk-size: %w", path, err)
		}
	}

	if download.HasKey("requests-per-second") {
		if cfg.RequestsPerSecond, err = download.Key("requests-per-second").Float64(); err != nil {
			return Config{}, fmt.Errorf("%s: requests-per-second: %w", path, err)
		}
	}

	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if c.ManifestURL == "" {
		return errors.New("manifest url is empty")
	}
	if c.BaseURL == "" {
		return errors.New("base url is empty")
	}
	if _, err := repository.ParseHostOS(string(c.HostOS)); err != nil {
		return err
	}
	if _, err := repository.ParseHostBits(c.HostBits.String()); err != nil {
		return err
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("chunk size must be positive, got %d", c.ChunkSize)
	}
	if c.Unpacker != UnpackerAuto && c.Unpacker != UnpackerUnzip {
		return fmt.Errorf("unknown unpacker %q, expected %s or %s", c.Unpacker, UnpackerAuto, UnpackerUnzip)
	}
	if c.RequestsPerSecond < 0 {
		return fmt.Errorf("requests per second must not be negative, got %v", c.RequestsPerSecond)
	}
	return nil
}

// NewUnpacker returns the extraction step selected by Unpacker.
func (c Config) NewUnpacker() repository.Unpacker {
	if c.Unpacker == UnpackerUnzip {
		return repository.NewUnzipCommand()
	}
	return repository.NewDetectUnpacker()
}

func (c Config) FetcherConfig() repository.FetcherConfig {
	fc := repository.FetcherConfig{
		BaseURL:   c.BaseURL,
		TempDir:   c.TempDir,
		ChunkSize: c.ChunkSize,
	}
	if c.Progress {
		fc.ProgressOutput = os.Stderr
	}
	return fc
}
