// Package app wires the command line flags into the manifest client and fetcher.
package app

import (
	"github.com/csnewman/droidmole/sdkfetch/config"
	"github.com/csnewman/droidmole/sdkfetch/repository"
	"github.com/csnewman/droidmole/sdkfetch/util/di"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"net/http"
)

// Options are the persistent flags shared by every command.
type Options struct {
	ConfigPath  string
	ManifestURL string
	BaseURL     string
	HostOS      string
	HostBits    string
	Unpacker    string
	NoProgress  bool
	Verbose     bool
}

var Opts Options

func (o *Options) Register(flags *pflag.FlagSet) {
	flags.StringVar(&o.ConfigPath, "config", "", "INI config file (default "+config.DefaultPath()+" when present)")
	flags.StringVar(&o.ManifestURL, "manifest-url", "", "Manifest URL (default "+repository.DefaultManifestURL+")")
	flags.StringVar(&o.BaseURL, "base-url", "", "Base URL for archives (default "+repository.DefaultBaseURL+")")
	flags.StringVar(&o.HostOS, "host-os", "", "OS (linux, windows, macosx), defaults to the current host")
	flags.StringVar(&o.HostBits, "host-bits", "", "OS Bits (32, 64), defaults to the current host")
	flags.StringVar(&o.Unpacker, "unpacker", "", "Archive extraction (auto, unzip)")
	flags.BoolVar(&o.NoProgress, "no-progress", false, "Disable the download progress bar")
	flags.BoolVarP(&o.Verbose, "verbose", "v", false, "Debug logging")
}

// LoadConfig reads the config file and applies flag overrides.
func (o Options) LoadConfig() (config.Config, error) {
	path, optional := o.ConfigPath, false
	if path == "" {
		path, optional = config.DefaultPath(), true
	}

	cfg, err := config.Load(path, optional)
	if err != nil {
		return config.Config{}, err
	}

	if o.ManifestURL != "" {
		cfg.ManifestURL = o.ManifestURL
	}
	if o.BaseURL != "" {
		cfg.BaseURL = o.BaseURL
	}
	if o.HostOS != "" {
		if cfg.HostOS, err = repository.ParseHostOS(o.HostOS); err != nil {
			return config.Config{}, err
		}
	}
	if o.HostBits != "" {
		if cfg.HostBits, err = repository.ParseHostBits(o.HostBits); err != nil {
			return config.Config{}, err
		}
	}
	if o.Unpacker != "" {
		cfg.Unpacker = o.Unpacker
	}
	if o.NoProgress {
		cfg.Progress = false
	}

	return cfg, cfg.Validate()
}

func (o Options) NewLogger() (*zap.SugaredLogger, error) {
	zc := zap.NewDevelopmentConfig()
	if !o.Verbose {
		zc.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	logger, err := zc.Build()
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}

// Build assembles the object graph for o.
func Build(o Options) (*di.Container, error) {
	cfg, err := o.LoadConfig()
	if err != nil {
		return nil, err
	}

	return di.New(
		di.Value(cfg),
		di.Provider(o.NewLogger),
		di.Provider(func(cfg config.Config) repository.Doer {
			return repository.NewRateLimitedClient(http.DefaultClient, cfg.RequestsPerSecond)
		}),
		di.Provider(config.Config.NewUnpacker),
		di.Provider(func(cfg config.Config, doer repository.Doer, log *zap.SugaredLogger) *repository.Client {
			return repository.NewClient(cfg.ManifestURL, doer, log)
		}),
		di.Provider(func(cfg config.Config, doer repository.Doer, unpacker repository.Unpacker, log *zap.SugaredLogger) *repository.Fetcher {
			return repository.NewFetcher(cfg.FetcherConfig(), doer, unpacker, log)
		}),
		di.Eager(func(cfg config.Config, log *zap.SugaredLogger) {
			log.Debugw("Configuration",
				"manifest", cfg.ManifestURL,
				"host", cfg.HostOS,
				"bits", cfg.HostBits,
				"unpacker", cfg.Unpacker,
			)
		}),
	)
}

// Run builds the graph for Opts and calls fn with its arguments resolved from it.
func Run(fn any) error {
	c, err := Build(Opts)
	if err != nil {
		return err
	}
	return c.Invoke(fn)
}
