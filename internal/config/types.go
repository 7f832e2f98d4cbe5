// Package config loads the RSCheck YAML configuration file into the
// typed values the rest of the daemon needs: logging setup, HTTP server
// settings, the watchdog startup-delay gate, and the resolved list of
// check specifications with their Probe already constructed.
//
// YAML-tagged structs, a single Load entry point, defaults applied
// during loading, decoded directly with gopkg.in/yaml.v3.
package config

import (
	"time"

	"github.com/rscheck/rscheck/internal/logging"
	"github.com/rscheck/rscheck/internal/probe"
)

// HTTPConfig controls the status endpoint's listener and verdict
// computation.
type HTTPConfig struct {
	Address       string        `yaml:"address"`
	Location      string        `yaml:"location"`
	KeepAlive     bool          `yaml:"keep_alive"`
	ErrorMessage  bool          `yaml:"error_message"`
	QueryTimeout  time.Duration `yaml:"-"`
	QueryCacheTTL time.Duration `yaml:"-"`
}

// WatchdogConfig controls the systemd watchdog integration and the
// optional wait-for-first-healthy startup gate.
type WatchdogConfig struct {
	WaitStatusInterval time.Duration `yaml:"-"`
	WaitStatusTimeout  time.Duration `yaml:"-"`
}

// CheckSpec is one configured check, fully resolved: defaults applied and
// its Probe already constructed from the kind-specific parameters.
type CheckSpec struct {
	Name          string
	Kind          string
	Interval      time.Duration
	Timeout       time.Duration
	ErrorMessage  bool
	StatusMessage bool
	Probe         probe.Probe
}

// Config is the fully-loaded, ready-to-run configuration.
type Config struct {
	Logging  logging.Config
	HTTP     HTTPConfig
	Watchdog WatchdogConfig
	Checks   []CheckSpec
}
