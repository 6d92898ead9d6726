package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Timers holds the protocol timings read by the arrest session.
type Timers struct {
	// CPRCycle is the length of one compressions cycle between rhythm checks.
	CPRCycle time.Duration `yaml:"cpr_cycle"`
	// AdrenalineInterval is the time between adrenaline doses.
	AdrenalineInterval time.Duration `yaml:"adrenaline_interval"`
	// MetronomeBPM is the compression metronome tempo. Cosmetic only.
	MetronomeBPM int `yaml:"metronome_bpm"`
}

// TimerSettings lets a bare Timers value act as a fixed settings provider.
func (t Timers) TimerSettings() Timers {
	return t
}

// Archive selects where finalized arrest logs are stored.
type Archive struct {
	// Driver is either DriverSQLite or DriverFile.
	Driver string `yaml:"driver"`
	// Path is the database or JSON file location.
	Path string `yaml:"path"`
}

// Config holds every setting of the tracker binary.
type Config struct {
	// Timers are the protocol timings.
	Timers Timers `yaml:"timers"`
	// Archive configures the logbook store.
	Archive Archive `yaml:"archive"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
	// LogFile receives logs while the full-screen tracker owns the terminal.
	LogFile string `yaml:"log_file"`
}

const (
	// DefaultConfigFilename is the default filename for tracker settings.
	DefaultConfigFilename = "eresus-settings.yaml"

	// DefaultCPRCycle is the standard two-minute CPR cycle.
	DefaultCPRCycle = 120 * time.Second
	// MinCPRCycle and MaxCPRCycle bound the accepted cycle length.
	MinCPRCycle = 60 * time.Second
	MaxCPRCycle = 300 * time.Second

	// DefaultAdrenalineInterval is the standard four-minute dosing interval.
	DefaultAdrenalineInterval = 240 * time.Second
	// MinAdrenalineInterval and MaxAdrenalineInterval bound the accepted interval.
	MinAdrenalineInterval = 120 * time.Second
	MaxAdrenalineInterval = 600 * time.Second

	// DefaultMetronomeBPM is the default compression rate.
	DefaultMetronomeBPM = 110
	// MinMetronomeBPM and MaxMetronomeBPM bound the metronome tempo.
	MinMetronomeBPM = 100
	MaxMetronomeBPM = 120

	// DriverSQLite stores the logbook in a SQLite database.
	DriverSQLite = "sqlite"
	// DriverFile stores the logbook in a JSON file.
	DriverFile = "file"

	// DefaultSQLitePath is the default logbook database.
	DefaultSQLitePath = "eresus-logbook.db"
	// DefaultFilePath is the default logbook JSON file.
	DefaultFilePath = "eresus-logbook.json"
	// DefaultLogFile is where the tracker writes logs.
	DefaultLogFile = "eresus.log"

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600
	// DefaultDirPermissions is used when creating data directories.
	DefaultDirPermissions = 0o750
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errOutOfRange is returned when a timer setting falls outside its bounds.
	errOutOfRange = errors.New("value out of range")
	// errUnknownDriver is returned for an unsupported archive driver.
	errUnknownDriver = errors.New("unknown archive driver")
)

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := new(Config)
	_ = Validate(cfg) //nolint:errcheck // Zero values always validate.

	return cfg
}

// Load reads configuration from the provided path and validates it.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadOrDefault behaves like Load but falls back to Default when the file does not exist.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}

	return cfg, err
}

// Save writes the configuration to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate fills defaults for unset fields and rejects out-of-range values.
func Validate(settings *Config) error {
	if settings == nil {
		return errConfigIsNotSet
	}

	if err := validateTimers(&settings.Timers); err != nil {
		return err
	}

	switch settings.Archive.Driver {
	case "":
		settings.Archive.Driver = DriverSQLite
	case DriverSQLite, DriverFile:
	default:
		return fmt.Errorf("%w: %q", errUnknownDriver, settings.Archive.Driver)
	}

	if settings.Archive.Path == "" {
		settings.Archive.Path = DefaultSQLitePath
		if settings.Archive.Driver == DriverFile {
			settings.Archive.Path = DefaultFilePath
		}
	}

	if settings.LogLevel == "" {
		settings.LogLevel = "info"
	}

	if settings.LogFile == "" {
		settings.LogFile = DefaultLogFile
	}

	return nil
}

func validateTimers(t *Timers) error {
	if t.CPRCycle == 0 {
		t.CPRCycle = DefaultCPRCycle
	}

	if t.CPRCycle < MinCPRCycle || t.CPRCycle > MaxCPRCycle {
		return fmt.Errorf("cpr_cycle %s: %w [%s, %s]", t.CPRCycle, errOutOfRange, MinCPRCycle, MaxCPRCycle)
	}

	if t.AdrenalineInterval == 0 {
		t.AdrenalineInterval = DefaultAdrenalineInterval
	}

	if t.AdrenalineInterval < MinAdrenalineInterval || t.AdrenalineInterval > MaxAdrenalineInterval {
		return fmt.Errorf("adrenaline_interval %s: %w [%s, %s]",
			t.AdrenalineInterval, errOutOfRange, MinAdrenalineInterval, MaxAdrenalineInterval)
	}

	if t.MetronomeBPM == 0 {
		t.MetronomeBPM = DefaultMetronomeBPM
	}

	if t.MetronomeBPM < MinMetronomeBPM || t.MetronomeBPM > MaxMetronomeBPM {
		return fmt.Errorf("metronome_bpm %d: %w [%d, %d]", t.MetronomeBPM, errOutOfRange, MinMetronomeBPM, MaxMetronomeBPM)
	}

	return nil
}
