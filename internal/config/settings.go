package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"slices"
	"strconv"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment override (e.g. CONTACTBOOK_PORT).
const EnvPrefix = "CONTACTBOOK_"

// reminderPattern matches the ISO8601 trigger subset produced for reminders
// ("-P1D", "P2H", "-P30M").
var reminderPattern = regexp.MustCompile(`^-?P[0-9]+[DHM]$`)

// Settings holds the runtime configuration of the daemon and batch commands.
// Values come from a YAML file first, then environment overrides.
type Settings struct {
	BookPath   string `yaml:"book_path" env:"BOOK_PATH"`
	PageSize   int    `yaml:"page_size" env:"PAGE_SIZE"`
	Port       string `yaml:"port" env:"PORT"`
	RefreshMin int    `yaml:"refresh_min" env:"REFRESH_MIN"`
	Language   string `yaml:"language" env:"LANGUAGE"`
	Reminder   string `yaml:"reminder" env:"REMINDER"` // ISO8601 trigger, empty disables alarms
	Import     Import `yaml:"import" envPrefix:"IMPORT_"`
}

// Import describes where remote or local vCards are imported from.
type Import struct {
	Mode      string `yaml:"mode" env:"MODE"` // SourceModeLocal or SourceModeWeb
	LocalPath string `yaml:"local_path" env:"LOCAL_PATH"`
	WebURL    string `yaml:"web_url" env:"WEB_URL"`
	WebUser   string `yaml:"web_user" env:"WEB_USER"`
}

// DefaultSettings returns Settings with sensible defaults.
func DefaultSettings() Settings {
	return Settings{
		BookPath:   DefaultBookFile,
		PageSize:   DefaultPageSize,
		Port:       DefaultPort,
		RefreshMin: DefaultRefreshMin,
		Language:   DefaultLanguage,
		Import: Import{
			Mode: SourceModeLocal,
		},
	}
}

// LoadSettings reads the YAML file at path and applies environment overrides.
// A missing or empty file yields the defaults. Unknown YAML keys are rejected.
func LoadSettings(path string) (*Settings, error) {
	s := DefaultSettings()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// Defaults only.
	case err != nil:
		return nil, fmt.Errorf("%s %s: %w", ErrSettingsRead, path, err)
	case len(data) > 0:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		// Comment-only files decode to io.EOF.
		if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%s %s: %w", ErrSettingsParse, path, err)
		}
	}

	if err := s.ApplyEnv(); err != nil {
		return nil, err
	}
	return &s, nil
}

// ApplyEnv overrides fields from CONTACTBOOK_* environment variables.
// Unset variables leave the current value untouched.
func (s *Settings) ApplyEnv() error {
	if err := env.ParseWithOptions(s, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("%s: %w", ErrSettingsEnv, err)
	}
	return nil
}

// Validate checks that settings values are usable.
func (s *Settings) Validate() error {
	if s.Port == "" {
		return errors.New(ErrPortRequired)
	}
	port, err := strconv.Atoi(s.Port)
	if err != nil {
		return fmt.Errorf("%s: %q", ErrPortNumber, s.Port)
	}
	if port < MinPort || port > MaxPort {
		return fmt.Errorf("%s: %d", ErrPortRange, port)
	}
	if s.PageSize <= 0 {
		return fmt.Errorf("%s: %d", ErrPageSize, s.PageSize)
	}
	if s.RefreshMin < DisabledInterval {
		return fmt.Errorf("%s: %d", ErrRefresh, s.RefreshMin)
	}
	if s.Reminder != "" && !reminderPattern.MatchString(s.Reminder) {
		return fmt.Errorf("%s: %q", ErrReminder, s.Reminder)
	}
	if !slices.Contains(SupportedLanguages, s.Language) {
		return fmt.Errorf("%s: %q", ErrLanguage, s.Language)
	}
	switch s.Import.Mode {
	case "", SourceModeLocal, SourceModeWeb:
	default:
		return fmt.Errorf("%s: %q", ErrModeUnsupport, s.Import.Mode)
	}
	return nil
}
