package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"schedrecur/internal/model"
	"schedrecur/internal/schedule"
)

// NOTE: This file provides the configuration model and full YAML-based
// load/save behavior, including first-run config creation and 0600
// permissions.

const (
	DefaultWeeks          = 4
	DefaultMinOccurrences = 2
	DefaultTolerance      = "13m"
	DefaultChannels       = "first"
	DefaultFormat         = "text"
	DefaultTimezone       = "Europe/Helsinki"
	DefaultListen         = "127.0.0.1:8080"
	DefaultRefresh        = "0 * * * *"

	// DefaultPath is where the CLI looks for its config when --config is
	// not given.
	DefaultPath = "~/.config/schedrecur/config.yaml"
)

// Formats lists the accepted output formats.
var Formats = []string{"text", "html", "ics", "json", "png"}

// BasicAuthConfig holds HTTP Basic Auth credentials for the serve mode.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level application configuration.
type Config struct {
	// Directory is the root of the YYYY/MM/DD.yaml schedule archive.
	// A leading "~" is expanded.
	Directory string `yaml:"directory" json:"directory"`

	// Weeks is the length of the analysis window, counted back from the
	// newest schedule file.
	Weeks int `yaml:"weeks" json:"weeks"`

	// MinOccurrences is the minimum number of distinct dates an entry
	// needs to be reported.
	MinOccurrences int `yaml:"min_occurrences" json:"min_occurrences"`

	// Tolerance is how far apart start times may drift and still count as
	// the same slot, as a Go duration string (e.g. "13m").
	Tolerance string `yaml:"tolerance" json:"tolerance"`

	// Channels selects which channels of a day are analyzed:
	//   - "first" (default): only the first channel listed
	//   - "all": every channel, kept apart per channel
	Channels string `yaml:"channels" json:"channels"`

	// Format is the default output format of the analyze command.
	Format string `yaml:"format" json:"format"`

	// Locale picks weekday names, e.g. "fi_FI.UTF-8". Empty means $LANG.
	Locale string `yaml:"locale" json:"locale"`

	// Timezone is the IANA timezone used for "today", the ICS export and
	// the refresh schedule.
	Timezone string `yaml:"timezone" json:"timezone"`

	// Listen is the HTTP listen address for serve mode.
	Listen string `yaml:"listen" json:"listen"`

	// RefreshCron is a cron-style schedule string (e.g. "0 * * * *") used
	// for periodic re-analysis in serve mode.
	RefreshCron string `yaml:"refresh" json:"refresh"`

	Debug bool `yaml:"debug" json:"debug"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all endpoints
	// except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Weeks:          DefaultWeeks,
		MinOccurrences: DefaultMinOccurrences,
		Tolerance:      DefaultTolerance,
		Channels:       DefaultChannels,
		Format:         DefaultFormat,
		Timezone:       DefaultTimezone,
		Listen:         DefaultListen,
		RefreshCron:    DefaultRefresh,
	}
}

// Normalize fills in missing/zero values with defaults so that
// partially-filled configs still behave correctly. Values that are set but
// wrong are left alone for Validate to report.
func (c *Config) Normalize() {
	if c.Weeks == 0 {
		c.Weeks = DefaultWeeks
	}
	if c.MinOccurrences == 0 {
		c.MinOccurrences = DefaultMinOccurrences
	}
	if c.Tolerance == "" {
		c.Tolerance = DefaultTolerance
	}
	if c.Channels == "" {
		c.Channels = DefaultChannels
	}
	if c.Format == "" {
		c.Format = DefaultFormat
	}
	if c.Timezone == "" {
		c.Timezone = DefaultTimezone
	}
	if c.Listen == "" {
		c.Listen = DefaultListen
	}
	if c.RefreshCron == "" {
		c.RefreshCron = DefaultRefresh
	}
}

// Validate reports the first invalid setting, wrapped in
// model.ErrInvalidConfiguration.
func (c *Config) Validate() error {
	if c.Weeks < 1 {
		return invalid("weeks must be >= 1, got %d", c.Weeks)
	}
	if c.MinOccurrences < 1 {
		return invalid("min_occurrences must be >= 1, got %d", c.MinOccurrences)
	}
	if _, err := c.ToleranceDuration(); err != nil {
		return err
	}
	if _, err := schedule.ParseChannelMode(c.Channels); err != nil {
		return err
	}
	if !validFormat(c.Format) {
		return invalid("format: unknown value %q", c.Format)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return invalid("timezone: %v", err)
	}
	if _, err := cron.ParseStandard(c.RefreshCron); err != nil {
		return invalid("refresh: %v", err)
	}
	return nil
}

// ToleranceDuration parses Tolerance. The tolerance must be positive; an
// empty or zero value is rejected rather than replaced by the default.
func (c *Config) ToleranceDuration() (time.Duration, error) {
	d, err := ParseDurationField("tolerance", c.Tolerance)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", model.ErrInvalidConfiguration, err)
	}
	if d <= 0 {
		return 0, invalid("tolerance: duration must be > 0, got %q", c.Tolerance)
	}
	return d, nil
}

// ChannelMode parses Channels.
func (c *Config) ChannelMode() (schedule.ChannelMode, error) {
	return schedule.ParseChannelMode(c.Channels)
}

// Location loads Timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, invalid("timezone: %v", err)
	}
	return loc, nil
}

// ArchiveRoot returns Directory with "~" expanded.
func (c *Config) ArchiveRoot() (string, error) {
	return homedir.Expand(c.Directory)
}

func validFormat(f string) bool {
	for _, known := range Formats {
		if f == known {
			return true
		}
	}
	return false
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{model.ErrInvalidConfiguration}, args...)...)
}

// Load loads configuration from the given YAML path. A leading "~" in path
// is expanded.
//
// Behavior:
//   - If the file does not exist:
//   - create parent directory if needed
//   - write a default config with 0600 perms
//   - return the default config
//   - If the file exists:
//   - read YAML and unmarshal into Config
//   - normalize defaults
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}
	path, err := homedir.Expand(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// First run: create default config file.
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", model.ErrInvalidConfiguration, path, err)
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the given configuration to the specified path.
//
// Implementation details:
//   - Ensures parent directory exists (0700).
//   - Marshals cfg to YAML.
//   - Writes atomically via a temp file + rename.
//   - Ensures final file permissions are 0600.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}
	path, err := homedir.Expand(path)
	if err != nil {
		return err
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".schedrecur-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// Save is a convenience method on Config that delegates to the package-level
// Save function.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
