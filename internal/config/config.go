package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// AbilityServer holds all configuration for the ability simulation server.
type AbilityServer struct {
	LogLevel string `yaml:"log_level"` // debug, info, warn, error

	// Simulation
	TickRate int `yaml:"tick_rate"` // ticks per second (default: 30)
	Workers  int `yaml:"workers"`   // parallel Advance workers, 1 = sequential

	// Ability catalog
	CatalogPath   string `yaml:"catalog_path"`
	CatalogReload bool   `yaml:"catalog_reload"` // hot reload via fsnotify

	// Scripted entities and triggers, optional
	ScenarioPath string `yaml:"scenario_path"`

	// World
	World WorldConfig `yaml:"world"`

	// Persistence
	Persistence PersistenceConfig `yaml:"persistence"`

	// Database
	Database DatabaseConfig `yaml:"database"`
}

// WorldConfig holds the kinematic constants and capacity limits of the world store.
type WorldConfig struct {
	MaxObjects int     `yaml:"max_objects"` // spawned object capacity, 0 = unlimited
	MoveSpeed  float64 `yaml:"move_speed"`  // units per second at full input
	JumpSpeed  float64 `yaml:"jump_speed"`  // initial vertical speed
	Gravity    float64 `yaml:"gravity"`
}

// PersistenceConfig toggles what is written to the database.
type PersistenceConfig struct {
	Enabled       bool          `yaml:"enabled"`        // restore/save ability states
	Journal       bool          `yaml:"journal"`        // record dispatched events
	JournalBuffer int           `yaml:"journal_buffer"` // pending tick batches before drop
	SaveTimeout   time.Duration `yaml:"save_timeout"`   // shutdown save deadline
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// TickInterval returns the fixed simulation step.
func (c AbilityServer) TickInterval() time.Duration {
	if c.TickRate <= 0 {
		return time.Second / 30
	}
	return time.Second / time.Duration(c.TickRate)
}

// Validate checks values that would make the simulation misbehave.
func (c AbilityServer) Validate() error {
	if c.TickRate <= 0 || c.TickRate > 1000 {
		return fmt.Errorf("tick_rate must be in [1,1000], got %d", c.TickRate)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be >= 1, got %d", c.Workers)
	}
	if c.World.MaxObjects < 0 {
		return fmt.Errorf("world.max_objects must be >= 0, got %d", c.World.MaxObjects)
	}
	if c.Persistence.Journal && c.Persistence.JournalBuffer <= 0 {
		return fmt.Errorf("persistence.journal_buffer must be > 0 when journal is enabled")
	}
	return nil
}

// DefaultAbilityServer returns AbilityServer config with sensible defaults.
func DefaultAbilityServer() AbilityServer {
	return AbilityServer{
		LogLevel:      "info",
		TickRate:      30,
		Workers:       1,
		CatalogPath:   "config/abilities.yaml",
		CatalogReload: true,
		World: WorldConfig{
			MaxObjects: 4096,
			MoveSpeed:  9,
			JumpSpeed:  10,
			Gravity:    25,
		},
		Persistence: PersistenceConfig{
			Enabled:       false,
			Journal:       false,
			JournalBuffer: 256,
			SaveTimeout:   5 * time.Second,
		},
		Database: DatabaseConfig{
			Host:     "127.0.0.1",
			Port:     5432,
			User:     "abilitysim",
			Password: "abilitysim",
			DBName:   "abilitysim",
			SSLMode:  "disable",
		},
	}
}

// LoadAbilityServer loads server config from a YAML file.
// If the file doesn't exist, returns defaults.
func LoadAbilityServer(path string) (AbilityServer, error) {
	cfg := DefaultAbilityServer()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("validating config %s: %w", path, err)
	}

	return cfg, nil
}
