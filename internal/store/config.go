package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/viper"

	"timeruler/internal/codec"
	"timeruler/internal/mutate"
)

// Config is the user configuration, read from config.yaml.
type Config struct {
	// Vault is the directory of markdown files to schedule from.
	Vault string `mapstructure:"vault" yaml:"vault"`
	// Query narrows the vault to a path prefix.
	Query string `mapstructure:"query" yaml:"query"`

	// DayStartHour is where "today" begins for the timeline and now-shifts.
	DayStartHour int `mapstructure:"day_start_hour" yaml:"day_start_hour"`
	DayEndHour   int `mapstructure:"day_end_hour" yaml:"day_end_hour"`

	// ExtendBlocks stretches zero-length blocks to the next block.
	ExtendBlocks bool `mapstructure:"extend_blocks" yaml:"extend_blocks"`

	// FieldFormat is the annotation dialect written back to files.
	FieldFormat string `mapstructure:"field_format" yaml:"field_format"`

	ExcludePaths []string `mapstructure:"exclude_paths" yaml:"exclude_paths"`
	// FileOrder is the user's ordering of task files.
	FileOrder []string `mapstructure:"file_order" yaml:"file_order"`

	// SnapMinutes is the timeline cursor step.
	SnapMinutes int `mapstructure:"snap_minutes" yaml:"snap_minutes"`
}

func defaultConfig() *Config {
	return &Config{
		DayStartHour: 0,
		DayEndHour:   24,
		FieldFormat:  string(codec.DialectDataview),
		SnapMinutes:  15,
	}
}

// Dialect resolves FieldFormat, falling back to dataview.
func (c *Config) Dialect() codec.Dialect {
	d, err := codec.ParseDialect(c.FieldFormat)
	if err != nil {
		return codec.DialectDataview
	}
	return d
}

func (c *Config) Validate() error {
	if c.DayStartHour < 0 || c.DayStartHour > 23 {
		return fmt.Errorf("day_start_hour must be 0-23, got %d", c.DayStartHour)
	}
	if c.DayEndHour < 1 || c.DayEndHour > 48 {
		return fmt.Errorf("day_end_hour must be 1-48, got %d", c.DayEndHour)
	}
	if _, err := codec.ParseDialect(c.FieldFormat); err != nil {
		return fmt.Errorf("field_format: %w", err)
	}
	if c.SnapMinutes <= 0 || c.SnapMinutes > 60 {
		return fmt.Errorf("snap_minutes must be 1-60, got %d", c.SnapMinutes)
	}
	return nil
}

func ConfigDir() (string, error) {
	// Test/advanced override (keeps unit tests from touching ~/.timeruler).
	if v := strings.TrimSpace(os.Getenv("TIMERULER_CONFIG_DIR")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".timeruler"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

func newViper(path string) *viper.Viper {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("TIMERULER")
	v.AutomaticEnv()

	d := defaultConfig()
	v.SetDefault("vault", d.Vault)
	v.SetDefault("query", d.Query)
	v.SetDefault("day_start_hour", d.DayStartHour)
	v.SetDefault("day_end_hour", d.DayEndHour)
	v.SetDefault("extend_blocks", d.ExtendBlocks)
	v.SetDefault("field_format", d.FieldFormat)
	v.SetDefault("exclude_paths", []string{})
	v.SetDefault("file_order", []string{})
	v.SetDefault("snap_minutes", d.SnapMinutes)
	return v
}

// LoadConfig reads path (ConfigPath when empty). A missing file yields the
// defaults, still overridable from TIMERULER_* environment variables.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		p, err := ConfigPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	v := newViper(path)
	if err := v.ReadInConfig(); err != nil {
		var pathErr *os.PathError
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &pathErr) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}
	cfg := defaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// SaveConfig writes cfg as YAML. The file is replaced atomically.
func SaveConfig(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.Set("vault", cfg.Vault)
	v.Set("query", cfg.Query)
	v.Set("day_start_hour", cfg.DayStartHour)
	v.Set("day_end_hour", cfg.DayEndHour)
	v.Set("extend_blocks", cfg.ExtendBlocks)
	v.Set("field_format", cfg.FieldFormat)
	v.Set("exclude_paths", cfg.ExcludePaths)
	v.Set("file_order", cfg.FileOrder)
	v.Set("snap_minutes", cfg.SnapMinutes)

	f, err := os.CreateTemp(dir, "config.*.yaml")
	if err != nil {
		return err
	}
	tmp := f.Name()
	_ = f.Close()
	defer func() { _ = os.Remove(tmp) }()
	if err := v.WriteConfigAs(tmp); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	b, err := os.ReadFile(tmp)
	if err != nil {
		return err
	}
	return atomicWriteFile(dir, "config.yaml.*.tmp", path, b, 0o600)
}

func atomicWriteFile(dir, tmpPattern, path string, b []byte, perm os.FileMode) error {
	f, err := os.CreateTemp(dir, tmpPattern)
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	_ = os.Chmod(tmp, perm)
	return os.Rename(tmp, path)
}

// Settings guards a loaded Config and persists the file order.
type Settings struct {
	path string

	mu  sync.Mutex
	cfg Config
}

func NewSettings(path string, cfg *Config) *Settings {
	return &Settings{path: path, cfg: *cfg}
}

// Snapshot returns a copy of the current config.
func (s *Settings) Snapshot() Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.cfg
	c.FileOrder = append([]string(nil), s.cfg.FileOrder...)
	c.ExcludePaths = append([]string(nil), s.cfg.ExcludePaths...)
	return c
}

// MoveFileBefore moves file in front of before in the file order and saves.
func (s *Settings) MoveFileBefore(file, before string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := mutate.MoveBefore(s.cfg.FileOrder, file, before)
	if err != nil {
		return err
	}
	return s.saveLocked(next)
}

// MergeFileOrder adds paths the order has not seen yet and saves when it changed.
func (s *Settings) MergeFileOrder(paths []string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, changed := mutate.MergeFileOrder(s.cfg.FileOrder, paths)
	if !changed {
		return false, nil
	}
	return true, s.saveLocked(next)
}

func (s *Settings) saveLocked(order []string) error {
	cfg := s.cfg
	cfg.FileOrder = order
	if s.path != "" {
		if err := SaveConfig(s.path, &cfg); err != nil {
			return err
		}
	}
	s.cfg = cfg
	return nil
}
