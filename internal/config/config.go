package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
)

// Config is the root configuration for flex, stored in ~/.flex/config.json.
// The file supports single-line // comments for documentation purposes.
type Config struct {
	// Ledger is the path of the report card file.
	Ledger   string         `json:"ledger"`
	Report   ReportConfig   `json:"report"`
	Holidays HolidaysConfig `json:"holidays"`
	Outlook  OutlookConfig  `json:"outlook"`
	LogLevel string         `json:"log_level" validate:"omitempty,oneof=debug info warn error"`
}

// ReportConfig controls the default report.
type ReportConfig struct {
	DefaultDays int    `json:"default_days" validate:"gt=0"`
	Color       string `json:"color" validate:"oneof=auto always never"`
}

// HolidaysConfig selects the days off used when filling in missing days.
type HolidaysConfig struct {
	// Country is an ISO 3166 code with a built-in calendar ("SE"), or empty.
	Country        string `json:"country" validate:"omitempty,oneof=SE se"`
	IncludeSundays bool   `json:"include_sundays"`
	// File is an optional YAML map of extra days off.
	File string `json:"file"`
}

// OutlookConfig holds Microsoft Graph / Outlook calendar settings.
type OutlookConfig struct {
	// Enabled treats out-of-office all-day events as days off.
	Enabled bool `json:"enabled"`
	// TenantID is the Azure AD tenant. Use "common" for personal/multi-tenant accounts.
	TenantID string `json:"tenant_id"`
	// ClientID is the Azure app (client) ID for the OAuth2 device code flow.
	ClientID string `json:"client_id"`
	// Timezone is the IANA timezone for event times (e.g. "Europe/Stockholm"). Empty = UTC.
	Timezone string `json:"timezone"`
}

// env holds the FLEX_* overrides. Empty values leave the file setting alone.
type env struct {
	Ledger       string `envconfig:"LEDGER"`
	Days         int    `envconfig:"DAYS"`
	Color        string `envconfig:"COLOR"`
	Country      string `envconfig:"COUNTRY"`
	HolidaysFile string `envconfig:"HOLIDAYS_FILE"`
	LogLevel     string `envconfig:"LOG_LEVEL"`
}

const (
	// DefaultTenantID is the Microsoft "common" tenant (supports personal and
	// multi-tenant organisational accounts without additional registration).
	DefaultTenantID = "common"
	// DefaultClientID is the well-known public Azure CLI app ID.
	// It supports device code flow without a client secret and requires no
	// app registration.
	DefaultClientID = "04b07795-8542-4c4a-95af-30b2c573d5ab"
	// DefaultDays is the number of days printed by a bare "flex".
	DefaultDays = 31
	// EnvPrefix prefixes every environment override.
	EnvPrefix = "FLEX"
)

var validate = validator.New()

// Default returns a Config pre-filled with sensible defaults.
func Default() Config {
	return Config{
		Report: ReportConfig{
			DefaultDays: DefaultDays,
			Color:       "auto",
		},
		Holidays: HolidaysConfig{
			Country:        "SE",
			IncludeSundays: true,
		},
		Outlook: OutlookConfig{
			TenantID: DefaultTenantID,
			ClientID: DefaultClientID,
		},
		LogLevel: "info",
	}
}

// configTemplate is the annotated config written on first run.
// Lines whose trimmed content starts with // are stripped before JSON parsing,
// allowing human-readable documentation inside the file.
const configTemplate = `// flex configuration – ~/.flex/config.json
//
// All settings are optional. Every value can also be set from the
// environment: FLEX_LEDGER, FLEX_DAYS, FLEX_COLOR, FLEX_COUNTRY,
// FLEX_HOLIDAYS_FILE, FLEX_LOG_LEVEL.
{
  // Path of the report card. Empty means ~/.flex/report.card.
  "ledger": "",

  "report": {
    // Number of days printed by a bare "flex".
    "default_days": 31,
    // "auto" colours output on a terminal, "always" or "never" force it.
    "color": "auto"
  },

  // ── Days off used when filling in missing days ─────────────────────────
  "holidays": {
    // Built-in public holiday calendar: "SE" or "" for none.
    "country": "SE",
    // Treat every Sunday as a day off.
    "include_sundays": true,
    // Optional YAML file of extra days off, e.g. "2026-07-13": Vacation
    "file": ""
  },

  // ── Microsoft Graph / Outlook calendar ─────────────────────────────────
  "outlook": {
    // Use all-day out-of-office events as days off (needs: flex outlook login).
    "enabled": false,
    "tenant_id": "common",
    "client_id": "04b07795-8542-4c4a-95af-30b2c573d5ab",
    // IANA timezone for calendar event times, e.g. "Europe/Stockholm". Empty = UTC.
    "timezone": ""
  },

  // debug, info, warn or error.
  "log_level": "info"
}
`

// FilePath returns the path to ~/.flex/config.json.
func FilePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".flex", "config.json"), nil
}

// stripLineComments removes lines whose leading non-whitespace content starts
// with //. Only full-line comments are handled; inline comments are not stripped.
func stripLineComments(data []byte) []byte {
	var out []byte
	for _, line := range bytes.Split(data, []byte("\n")) {
		if bytes.HasPrefix(bytes.TrimLeft(line, " \t"), []byte("//")) {
			continue
		}
		out = append(out, line...)
		out = append(out, '\n')
	}
	return out
}

// Load reads ~/.flex/config.json, creating it with annotated defaults on
// first run, then applies FLEX_* environment overrides and validates.
func Load() (Config, error) {
	path, err := FilePath()
	if err != nil {
		return Default(), err
	}
	return LoadFrom(path)
}

// LoadFrom is Load for an explicit config path.
func LoadFrom(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// First run: write the annotated template so users can discover options.
		if writeErr := writeDefault(path); writeErr != nil {
			slog.Warn("could not create config file", "path", path, "err", writeErr)
		}
	case err != nil:
		return Default(), fmt.Errorf("reading config file %s: %w", path, err)
	default:
		if err := json.Unmarshal(stripLineComments(data), &cfg); err != nil {
			return Default(), fmt.Errorf("parsing config file %s: %w\nTip: delete the file to regenerate defaults", path, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Default(), err
	}

	// Fill zero-value fields with built-in defaults so callers always get
	// a usable Config even if the user only partially fills in the file.
	def := Default()
	if cfg.Report.DefaultDays == 0 {
		cfg.Report.DefaultDays = def.Report.DefaultDays
	}
	if cfg.Report.Color == "" {
		cfg.Report.Color = def.Report.Color
	}
	if cfg.Outlook.TenantID == "" {
		cfg.Outlook.TenantID = DefaultTenantID
	}
	if cfg.Outlook.ClientID == "" {
		cfg.Outlook.ClientID = DefaultClientID
	}
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		return Default(), err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	var e env
	if err := envconfig.Process(EnvPrefix, &e); err != nil {
		return fmt.Errorf("reading %s_* environment: %w", EnvPrefix, err)
	}
	if e.Ledger != "" {
		cfg.Ledger = e.Ledger
	}
	if e.Days != 0 {
		cfg.Report.DefaultDays = e.Days
	}
	if e.Color != "" {
		cfg.Report.Color = e.Color
	}
	if e.Country != "" {
		cfg.Holidays.Country = e.Country
	}
	if e.HolidaysFile != "" {
		cfg.Holidays.File = e.HolidaysFile
	}
	if e.LogLevel != "" {
		cfg.LogLevel = e.LogLevel
	}
	return nil
}

// Validate checks value ranges and enumerations.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// SlogLevel maps LogLevel onto a slog level.
func (c Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// writeDefault creates the config directory and writes the annotated default
// config template.
func writeDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(configTemplate), 0o600); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}
