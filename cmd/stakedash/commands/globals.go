package commands

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/chukwumela909/project-bolt/internal/config"
	"github.com/chukwumela909/project-bolt/internal/logging"
)

// Global CLI flags
var (
	// ConfigPath is the config file; empty means ~/.stakedash/config.yaml
	ConfigPath string

	// APIEndpoint overrides api.base_url
	APIEndpoint string

	// OutputFormat controls output format: "" (auto), "json", "plain"
	OutputFormat string

	// LogLevel and LogFormat override the logging section
	LogLevel  string
	LogFormat string
)

// RegisterGlobalFlags adds the persistent flags to root.
func RegisterGlobalFlags(root *cobra.Command) {
	pf := root.PersistentFlags()
	pf.StringVar(&ConfigPath, "config", "", "Config file (default: ~/.stakedash/config.yaml)")
	pf.StringVar(&APIEndpoint, "api", "", "Backend base URL (overrides api.base_url)")
	pf.StringVarP(&OutputFormat, "output", "o", "", "Output format: json or plain (default: styled when on a terminal)")
	pf.StringVar(&LogLevel, "log-level", "", "Log level: debug, info, warn, error")
	pf.StringVar(&LogFormat, "log-format", "", "Log format: text or json")
}

// loadedConfig is set by Setup for the running command.
var loadedConfig *config.Config

// logCloser closes the log file, if one was opened.
var logCloser io.Closer

// Setup loads configuration and configures logging. It runs before every
// command.
func Setup(cmd *cobra.Command, args []string) error {
	switch OutputFormat {
	case "", "json", "plain":
	default:
		return fmt.Errorf("invalid --output %q (expected json or plain)", OutputFormat)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := setupLogging(cfg.Logging); err != nil {
		return err
	}
	loadedConfig = cfg
	return nil
}

// configPath returns --config or the default location.
func configPath() string {
	if ConfigPath != "" {
		return ConfigPath
	}
	return config.DefaultConfigPath()
}

// loadConfig loads the config file and applies flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath())
	if err != nil {
		return nil, err
	}
	if APIEndpoint != "" {
		cfg.API.BaseURL = APIEndpoint
	}
	if LogLevel != "" {
		cfg.Logging.Level = LogLevel
	}
	if LogFormat != "" {
		cfg.Logging.Format = LogFormat
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// currentConfig returns the config loaded by Setup, loading it on demand
// for commands run without the root pre-run hook.
func currentConfig() (*config.Config, error) {
	if loadedConfig != nil {
		return loadedConfig, nil
	}
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	loadedConfig = cfg
	return cfg, nil
}

func setupLogging(cfg config.LoggingConfig) error {
	level, err := logging.ParseLevel(cfg.Level)
	if err != nil {
		return err
	}

	var w io.Writer = os.Stderr
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		if logCloser != nil {
			logCloser.Close()
		}
		logCloser = f
		w = f
	}
	return logging.Configure(w, level, cfg.Format)
}

// jsonOutput reports whether results should be printed as JSON.
func jsonOutput() bool {
	return OutputFormat == "json"
}

// Version information (set at build time)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// GetVersion returns the version string
func GetVersion() string {
	if Version != "dev" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		if info.Main.Version != "" && info.Main.Version != "(devel)" {
			return info.Main.Version
		}
	}
	return "dev"
}

// GetCommit returns the git commit
func GetCommit() string {
	if Commit != "unknown" {
		return Commit
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			if setting.Key == "vcs.revision" {
				if len(setting.Value) > 8 {
					return setting.Value[:8]
				}
				return setting.Value
			}
		}
	}
	return "unknown"
}

// GetGoVersion returns the Go version
func GetGoVersion() string {
	return runtime.Version()
}
