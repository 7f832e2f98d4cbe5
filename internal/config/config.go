package config

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/rscheck/rscheck/internal/logging"
	"github.com/rscheck/rscheck/internal/probe"
	"gopkg.in/yaml.v3"
)

// rawDocument mirrors the top-level YAML keys: logging, threads (the
// per-check definitions), http, and watchdog.
type rawDocument struct {
	Logging  rawLoggingSection    `yaml:"logging"`
	Threads  map[string]yaml.Node `yaml:"threads"`
	HTTP     rawHTTPSection       `yaml:"http"`
	Watchdog rawWatchdogSection   `yaml:"watchdog"`
}

type rawLoggingSection struct {
	Level            string            `yaml:"level"`
	Structured       bool              `yaml:"structured"`
	StructuredFormat string            `yaml:"structured_format"`
	IncludePID       bool              `yaml:"include_pid"`
	ExtraFields      map[string]string `yaml:"extra_fields"`
}

type rawHTTPSection struct {
	Address       string `yaml:"address"`
	Location      string `yaml:"location"`
	KeepAlive     bool   `yaml:"keep_alive"`
	ErrorMessage  *bool  `yaml:"error_message"`
	QueryTimeout  string `yaml:"query_timeout"`
	QueryCacheTTL string `yaml:"query_cache_ttl"`
}

type rawWatchdogSection struct {
	WaitStatusInterval string `yaml:"wait_status_interval"`
	WaitStatusTimeout  string `yaml:"wait_status_timeout"`
}

// threadEnvelope holds the fields common to every check, independent of
// its class. Decoded from the same yaml.Node that is later handed to
// probe.Build, which decodes the kind-specific remainder; gopkg.in/yaml.v3
// ignores keys a target struct does not declare, so the two decodes never
// conflict.
type threadEnvelope struct {
	Class         string `yaml:"class"`
	Interval      string `yaml:"interval"`
	Timeout       string `yaml:"timeout"`
	ErrorMessage  *bool  `yaml:"error_message"`
	StatusMessage *bool  `yaml:"status_message"`
}

const (
	defaultInterval = 3 * time.Second
	defaultTimeout  = 1 * time.Second

	defaultHTTPAddress       = "0.0.0.0:5666"
	defaultHTTPLocation      = "/getstatus"
	defaultQueryTimeout      = 1 * time.Second
	defaultQueryCacheTTL     = 10 * time.Second
	defaultWaitStatusTimeout = 0 * time.Second
	defaultWaitStatusInt     = 1 * time.Second
)

// Load reads and validates the configuration file at path, building every
// check's Probe along the way. A configuration error (unknown class,
// missing required parameter, malformed YAML) is fatal and returned here
// for the caller (cmd/rscheck) to report and exit on.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var raw rawDocument
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	checks, err := buildChecks(raw.Threads)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Logging: loggingFromRaw(raw.Logging),
		HTTP: HTTPConfig{
			Address:       orDefault(raw.HTTP.Address, defaultHTTPAddress),
			Location:      orDefault(raw.HTTP.Location, defaultHTTPLocation),
			KeepAlive:     raw.HTTP.KeepAlive,
			ErrorMessage:  boolOrDefault(raw.HTTP.ErrorMessage, true),
			QueryTimeout:  durationOrDefault(raw.HTTP.QueryTimeout, defaultQueryTimeout),
			QueryCacheTTL: durationOrDefault(raw.HTTP.QueryCacheTTL, defaultQueryCacheTTL),
		},
		Watchdog: WatchdogConfig{
			WaitStatusInterval: durationOrDefault(raw.Watchdog.WaitStatusInterval, defaultWaitStatusInt),
			WaitStatusTimeout:  durationOrDefault(raw.Watchdog.WaitStatusTimeout, defaultWaitStatusTimeout),
		},
		Checks: checks,
	}
	return cfg, nil
}

func loggingFromRaw(r rawLoggingSection) logging.Config {
	return logging.Config{
		Level:            orDefault(r.Level, "INFO"),
		Structured:       r.Structured,
		StructuredFormat: r.StructuredFormat,
		IncludePID:       r.IncludePID,
		ExtraFields:      r.ExtraFields,
	}
}

func buildChecks(threads map[string]yaml.Node) ([]CheckSpec, error) {
	names := make([]string, 0, len(threads))
	for name := range threads {
		names = append(names, name)
	}
	sort.Strings(names)

	checks := make([]CheckSpec, 0, len(names))
	for _, name := range names {
		node := threads[name]
		spec, err := buildCheck(name, &node)
		if err != nil {
			return nil, fmt.Errorf("check %q: %w", name, err)
		}
		checks = append(checks, spec)
	}
	return checks, nil
}

func buildCheck(name string, node *yaml.Node) (CheckSpec, error) {
	var env threadEnvelope
	if err := node.Decode(&env); err != nil {
		return CheckSpec{}, fmt.Errorf("decode: %w", err)
	}
	if env.Class == "" {
		return CheckSpec{}, fmt.Errorf("class is required")
	}

	p, err := probe.Build(env.Class, node)
	if err != nil {
		return CheckSpec{}, err
	}

	interval, err := parseDuration(env.Interval, defaultInterval)
	if err != nil {
		return CheckSpec{}, fmt.Errorf("interval: %w", err)
	}
	if interval <= 0 {
		return CheckSpec{}, fmt.Errorf("interval must be positive")
	}
	timeout, err := parseDuration(env.Timeout, defaultTimeout)
	if err != nil {
		return CheckSpec{}, fmt.Errorf("timeout: %w", err)
	}
	if timeout <= 0 {
		return CheckSpec{}, fmt.Errorf("timeout must be positive")
	}

	return CheckSpec{
		Name:          name,
		Kind:          env.Class,
		Interval:      interval,
		Timeout:       timeout,
		ErrorMessage:  boolOrDefault(env.ErrorMessage, true),
		StatusMessage: boolOrDefault(env.StatusMessage, false),
		Probe:         p,
	}, nil
}

// parseDuration accepts either a Go duration string ("3s") or a bare
// number of seconds ("3"), matching how the original Python configuration
// format expressed intervals. Empty input yields def.
func parseDuration(s string, def time.Duration) (time.Duration, error) {
	if s == "" {
		return def, nil
	}
	if d, err := time.ParseDuration(s); err == nil {
		return d, nil
	}
	if secs, err := strconv.ParseFloat(s, 64); err == nil {
		return time.Duration(secs * float64(time.Second)), nil
	}
	return 0, fmt.Errorf("invalid duration %q", s)
}

func durationOrDefault(s string, def time.Duration) time.Duration {
	d, err := parseDuration(s, def)
	if err != nil {
		return def
	}
	return d
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func boolOrDefault(b *bool, def bool) bool {
	if b == nil {
		return def
	}
	return *b
}
