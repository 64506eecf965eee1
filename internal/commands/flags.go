package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/colonyops/dismiss/internal/core/config"
)

// LogToStderr is the --log-file value that sends logs to stderr instead of
// a file.
const LogToStderr = "-"

type Flags struct {
	LogLevel   string
	LogFile    string
	ConfigPath string

	// Config is parsed in the Before hook and available to all commands. It
	// is not validated there so that 'config validate' can report problems.
	Config *config.Config
}

// DefaultConfigPath returns the default config file path using XDG_CONFIG_HOME.
func DefaultConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, _ := os.UserHomeDir()
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "dismiss", "config.yaml")
}

// DefaultLogFile returns the default log file path using the system's state directory.
// On macOS: ~/Library/Logs/dismiss/dismiss.log
// On Linux: $XDG_STATE_HOME/dismiss/dismiss.log (defaults to ~/.local/state/dismiss/dismiss.log)
func DefaultLogFile() string {
	stateHome := os.Getenv("XDG_STATE_HOME")
	if stateHome != "" {
		return filepath.Join(stateHome, "dismiss", "dismiss.log")
	}

	home, _ := os.UserHomeDir()

	if runtime.GOOS == "darwin" {
		return filepath.Join(home, "Library", "Logs", "dismiss", "dismiss.log")
	}

	return filepath.Join(home, ".local", "state", "dismiss", "dismiss.log")
}

// LogTarget resolves the --log-file value into the path handed to
// logutils.New. An empty result means stderr.
func (f *Flags) LogTarget() string {
	if f.LogFile == LogToStderr {
		return ""
	}
	if f.LogFile == "" {
		return DefaultLogFile()
	}
	return f.LogFile
}

// config returns the loaded config, falling back to defaults when commands
// run without the root Before hook (tests).
func (f *Flags) config() *config.Config {
	if f.Config == nil {
		cfg := config.DefaultConfig()
		f.Config = &cfg
	}
	return f.Config
}

// validConfig returns the loaded config after checking it is usable.
func (f *Flags) validConfig() (*config.Config, error) {
	cfg := f.config()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", f.ConfigPath, err)
	}
	return cfg, nil
}
