// Package config provides the typed settings file and its TOML parsing.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// EnvSaveLocation overrides the save-location setting.
const EnvSaveLocation = "MDLOG_SAVE_LOCATION"

// View names a report view that can be opened at startup.
type View string

const (
	ViewRateGraph   View = "rate-graph"
	ViewEnvironment View = "environment-distribution"
	ViewSummary     View = "match-summary"
)

// Views lists every report view in tab order.
var Views = []View{ViewSummary, ViewRateGraph, ViewEnvironment}

// Chart types.
const (
	RateGraphRate = "rate"
	RateGraphRank = "rank"
	GraphPie      = "pie"
	GraphBar      = "bar"
)

// ErrInvalidSettings is returned when a settings file holds unknown values.
var ErrInvalidSettings = errors.New("invalid settings")

// Settings is the application configuration. The zero value is not valid;
// start from DefaultSettings.
type Settings struct {
	// SaveLocation is the directory holding the record file.
	SaveLocation string
	// StartupWindow lists the views opened by the bare command. Empty opens all.
	StartupWindow []View
	// RateGraphType is RateGraphRate or RateGraphRank.
	RateGraphType string
	// GraphType is the environment chart, GraphPie or GraphBar.
	GraphType string
}

// FileConfig represents the TOML settings file.
type FileConfig struct {
	Settings SettingsConfig `toml:"settings"`
}

// SettingsConfig maps the [settings] section. Unset keys keep their defaults.
type SettingsConfig struct {
	SaveLocation  *string  `toml:"save-location"`
	StartupWindow []string `toml:"startup-window"`
	RateGraphType *string  `toml:"rate-graph-type"`
	GraphType     *string  `toml:"graph-type"`
}

// DefaultSettings returns the settings used when no file exists.
func DefaultSettings() Settings {
	dir, err := os.Getwd()
	if err != nil || dir == "" {
		dir = "."
	}
	return Settings{
		SaveLocation:  dir,
		RateGraphType: RateGraphRate,
		GraphType:     GraphPie,
	}
}

// LoadSettings reads settings from path on top of the defaults, then applies
// environment overrides. A missing file is not an error.
func LoadSettings(path string) (Settings, error) {
	s, err := ReadSettings(path)
	if err != nil {
		return Settings{}, err
	}
	if v := strings.TrimSpace(os.Getenv(EnvSaveLocation)); v != "" {
		s.SaveLocation = v
		if err := s.Validate(); err != nil {
			return Settings{}, err
		}
	}
	return s, nil
}

// ReadSettings reads settings from path on top of the defaults, ignoring the
// environment.
func ReadSettings(path string) (Settings, error) {
	if path == "" {
		return Settings{}, fmt.Errorf("settings path is empty")
	}
	s := DefaultSettings()
	cfg, err := LoadConfig(path)
	if err != nil {
		return Settings{}, err
	}
	cfg.Settings.apply(&s)
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// UpdateSettings applies fn to the settings stored at path and saves the
// result. Environment overrides never leak into the file.
func UpdateSettings(path string, fn func(*Settings) error) (Settings, error) {
	s, err := ReadSettings(path)
	if err != nil {
		return Settings{}, err
	}
	if err := fn(&s); err != nil {
		return Settings{}, err
	}
	if err := SaveSettings(path, s); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// LoadConfig decodes the raw TOML file. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat settings: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode settings: %w", err)
	}
	return cfg, nil
}

func (c SettingsConfig) apply(s *Settings) {
	if c.SaveLocation != nil && strings.TrimSpace(*c.SaveLocation) != "" {
		s.SaveLocation = strings.TrimSpace(*c.SaveLocation)
	}
	if c.StartupWindow != nil {
		views := make([]View, 0, len(c.StartupWindow))
		for _, name := range c.StartupWindow {
			views = append(views, View(strings.TrimSpace(name)))
		}
		s.StartupWindow = views
	}
	if c.RateGraphType != nil {
		s.RateGraphType = strings.ToLower(strings.TrimSpace(*c.RateGraphType))
	}
	if c.GraphType != nil {
		s.GraphType = strings.ToLower(strings.TrimSpace(*c.GraphType))
	}
}

// Validate reports every invalid value at once.
func (s Settings) Validate() error {
	var problems []string
	if strings.TrimSpace(s.SaveLocation) == "" {
		problems = append(problems, "save-location must not be empty")
	}
	seen := map[View]bool{}
	for _, v := range s.StartupWindow {
		if !v.Known() {
			problems = append(problems, fmt.Sprintf("unknown startup window %q: must be one of %s", v, viewNames()))
			continue
		}
		if seen[v] {
			problems = append(problems, fmt.Sprintf("startup window %q listed twice", v))
		}
		seen[v] = true
	}
	if s.RateGraphType != RateGraphRate && s.RateGraphType != RateGraphRank {
		problems = append(problems, fmt.Sprintf("invalid rate-graph-type %q: must be %q or %q", s.RateGraphType, RateGraphRate, RateGraphRank))
	}
	if s.GraphType != GraphPie && s.GraphType != GraphBar {
		problems = append(problems, fmt.Sprintf("invalid graph-type %q: must be %q or %q", s.GraphType, GraphPie, GraphBar))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w:\n- %s", ErrInvalidSettings, strings.Join(problems, "\n- "))
	}
	return nil
}

// StartupViews returns the views to open at startup, in tab order.
func (s Settings) StartupViews() []View {
	if len(s.StartupWindow) == 0 {
		return append([]View(nil), Views...)
	}
	want := map[View]bool{}
	for _, v := range s.StartupWindow {
		want[v] = true
	}
	views := make([]View, 0, len(want))
	for _, v := range Views {
		if want[v] {
			views = append(views, v)
		}
	}
	return views
}

// ToggleChart flips the chart type of view and reports whether it has one.
func (s *Settings) ToggleChart(view View) bool {
	switch view {
	case ViewRateGraph:
		if s.RateGraphType == RateGraphRank {
			s.RateGraphType = RateGraphRate
		} else {
			s.RateGraphType = RateGraphRank
		}
		return true
	case ViewEnvironment:
		if s.GraphType == GraphBar {
			s.GraphType = GraphPie
		} else {
			s.GraphType = GraphBar
		}
		return true
	}
	return false
}

// Known reports whether v names a report view.
func (v View) Known() bool {
	for _, known := range Views {
		if v == known {
			return true
		}
	}
	return false
}

// ParseViews splits a comma-separated list of view names.
func ParseViews(list string) ([]View, error) {
	var views []View
	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v := View(part)
		if !v.Known() {
			return nil, fmt.Errorf("unknown view %q: must be one of %s", part, viewNames())
		}
		views = append(views, v)
	}
	return views, nil
}

func viewNames() string {
	names := make([]string, len(Views))
	for i, v := range Views {
		names[i] = string(v)
	}
	return strings.Join(names, ", ")
}

// SaveSettings writes s to path, replacing the file atomically.
func SaveSettings(path string, s Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create settings dir: %w", err)
	}
	tmpFile, err := os.CreateTemp(filepath.Dir(path), "settings-*.toml")
	if err != nil {
		return fmt.Errorf("failed to create temp settings: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	startup := make([]string, len(s.StartupWindow))
	for i, v := range s.StartupWindow {
		startup[i] = string(v)
	}
	cfg := FileConfig{Settings: SettingsConfig{
		SaveLocation:  &s.SaveLocation,
		StartupWindow: startup,
		RateGraphType: &s.RateGraphType,
		GraphType:     &s.GraphType,
	}}
	writer := bufio.NewWriter(tmpFile)
	if err := toml.NewEncoder(writer).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush settings: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close settings: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	return nil
}

// Template is written by "mdlog config" when no settings file exists.
func Template() string {
	return fmt.Sprintf(`# mdlog settings
# Uncomment a value to enable it. CLI flags override settings.

[settings]
# save-location = "/path/to/records"   # Directory of %s (default: current directory)
# startup-window = ["match-summary"]   # Views opened by "mdlog": %s
# rate-graph-type = %q                 # %q or %q
# graph-type = %q                      # %q or %q
`,
		"master_duel_records.csv",
		viewNames(),
		RateGraphRate, RateGraphRate, RateGraphRank,
		GraphPie, GraphPie, GraphBar,
	)
}
