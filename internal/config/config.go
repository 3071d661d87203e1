// Package config provides Viper-based configuration loading for the skirmish
// engine.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/dkoller/skirmish/internal/game/combat"
)

// SimulationConfig holds the fixed-step game loop settings.
type SimulationConfig struct {
	// TickSeconds is the simulated time advanced per update.
	TickSeconds float64 `mapstructure:"tick_seconds"`
	// MaxTicks bounds a demo run; zero means run until idle.
	MaxTicks int `mapstructure:"max_ticks"`
}

// CombatConfig holds the round and attack timers.
type CombatConfig struct {
	// RoundDurationSeconds is the full length of one combat round.
	RoundDurationSeconds float64 `mapstructure:"round_duration_seconds"`
	// DamageDelaySeconds is the attack-to-damage interval.
	DamageDelaySeconds float64 `mapstructure:"damage_delay_seconds"`
	// DeactivateDelaySeconds is the stance cool-down after a round finishes.
	DeactivateDelaySeconds float64 `mapstructure:"deactivate_delay_seconds"`
}

// Tuning converts the configured timers to the combat package's form.
//
// Postcondition: Returns a Tuning whose fields mirror this config.
func (c CombatConfig) Tuning() combat.Tuning {
	return combat.Tuning{
		RoundDuration:   c.RoundDurationSeconds,
		DamageDelay:     c.DamageDelaySeconds,
		DeactivateDelay: c.DeactivateDelaySeconds,
	}
}

// ProjectilesConfig holds ranged-attack projectile settings.
type ProjectilesConfig struct {
	// Speed is the bolt flight speed in world units per second.
	Speed float32 `mapstructure:"speed"`
	// TablePath optionally points at a YAML projectile table; empty uses
	// the built-in table.
	TablePath string `mapstructure:"table_path"`
}

// ScriptConfig holds bytecode interpreter settings.
type ScriptConfig struct {
	// Trace enables per-instruction debug logging in the interpreter.
	Trace bool `mapstructure:"trace"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// Config is the top-level application configuration.
type Config struct {
	Simulation  SimulationConfig  `mapstructure:"simulation"`
	Combat      CombatConfig      `mapstructure:"combat"`
	Projectiles ProjectilesConfig `mapstructure:"projectiles"`
	Script      ScriptConfig      `mapstructure:"script"`
	Logging     LoggingConfig     `mapstructure:"logging"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateSimulation(c.Simulation); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateCombat(c.Combat); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateProjectiles(c.Projectiles); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateSimulation(s SimulationConfig) error {
	var errs []string
	if s.TickSeconds <= 0 {
		errs = append(errs, fmt.Sprintf("simulation.tick_seconds must be positive, got %g", s.TickSeconds))
	}
	if s.MaxTicks < 0 {
		errs = append(errs, fmt.Sprintf("simulation.max_ticks must be >= 0, got %d", s.MaxTicks))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateCombat(c CombatConfig) error {
	var errs []string
	if c.RoundDurationSeconds <= 0 {
		errs = append(errs, fmt.Sprintf("combat.round_duration_seconds must be positive, got %g", c.RoundDurationSeconds))
	}
	if c.DamageDelaySeconds < 0 {
		errs = append(errs, fmt.Sprintf("combat.damage_delay_seconds must be >= 0, got %g", c.DamageDelaySeconds))
	}
	if c.DamageDelaySeconds > c.RoundDurationSeconds {
		errs = append(errs, "combat.damage_delay_seconds must not exceed combat.round_duration_seconds")
	}
	if c.DeactivateDelaySeconds < 0 {
		errs = append(errs, fmt.Sprintf("combat.deactivate_delay_seconds must be >= 0, got %g", c.DeactivateDelaySeconds))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateProjectiles(p ProjectilesConfig) error {
	if p.Speed <= 0 {
		return fmt.Errorf("projectiles.speed must be positive, got %g", p.Speed)
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with SKIRMISH_ prefix
	v.SetEnvPrefix("SKIRMISH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Default returns the stock configuration used when no file is supplied.
//
// Postcondition: The returned Config passes Validate.
func Default() Config {
	v := viper.New()
	setDefaults(v)
	cfg, err := LoadFromViper(v)
	if err != nil {
		panic("config: default configuration is invalid: " + err.Error())
	}
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("simulation.tick_seconds", 0.05)
	v.SetDefault("simulation.max_ticks", 0)

	v.SetDefault("combat.round_duration_seconds", 3.0)
	v.SetDefault("combat.damage_delay_seconds", 1.0)
	v.SetDefault("combat.deactivate_delay_seconds", 8.0)

	v.SetDefault("projectiles.speed", 16.0)
	v.SetDefault("projectiles.table_path", "")

	v.SetDefault("script.trace", false)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}
