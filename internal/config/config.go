package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/sadopc/fundr/internal/projection"
)

// Config holds all fundr configuration.
type Config struct {
	General GeneralConfig `toml:"general"`
	Log     LogConfig     `toml:"log"`
	Server  ServerConfig  `toml:"server"`
	Daemon  DaemonConfig  `toml:"daemon"`
}

// GeneralConfig holds storage and forecast defaults.
type GeneralConfig struct {
	DBPath            string  `toml:"db_path,omitempty"`
	HorizonMonths     int     `toml:"horizon_months"`
	ExtraWeeklyIncome float64 `toml:"extra_weekly_income"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
	File   string `toml:"file,omitempty"`
}

type ServerConfig struct {
	Listen string `toml:"listen"`
}

// DaemonConfig holds the cron schedules of `fundr daemon`.
type DaemonConfig struct {
	SettleSchedule string  `toml:"settle_schedule"`
	CheckSchedule  string  `toml:"check_schedule"`
	LowBalance     float64 `toml:"low_balance"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			HorizonMonths: 3,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Server: ServerConfig{
			Listen: "127.0.0.1:8087",
		},
		Daemon: DaemonConfig{
			SettleSchedule: "@daily",
			CheckSchedule:  "0 8 * * *",
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "fundr")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "fundr")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// Load reads .env, then the config file, then environment overrides.
// A missing file yields the defaults.
func Load() (Config, error) {
	_ = godotenv.Load()
	return LoadFile(ConfigPath())
}

// LoadFile reads the config at path and applies environment overrides.
func LoadFile(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err == nil {
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config: %w", err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	if m := cfg.General.HorizonMonths; m < 0 || m > projection.MaxMonths {
		return cfg, fmt.Errorf("horizon_months must be from 0 to %d, got %d", projection.MaxMonths, m)
	}
	if x := cfg.General.ExtraWeeklyIncome; x < 0 || math.IsInf(x, 0) || math.IsNaN(x) {
		return cfg, fmt.Errorf("extra_weekly_income must be a finite amount, zero or more, got %v", x)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("FUNDR_DB"); v != "" {
		cfg.General.DBPath = v
	}
	if v := os.Getenv("FUNDR_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("FUNDR_LISTEN"); v != "" {
		cfg.Server.Listen = v
	}
	if v := os.Getenv("FUNDR_HORIZON_MONTHS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("FUNDR_HORIZON_MONTHS: %w", err)
		}
		cfg.General.HorizonMonths = n
	}
	return nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(ConfigPath(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}

// DataDir is the directory holding the database and the TUI log file.
func (c Config) DataDir(defaultDB string) string {
	if c.General.DBPath != "" {
		return filepath.Dir(c.General.DBPath)
	}
	return filepath.Dir(defaultDB)
}
