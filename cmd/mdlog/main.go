// Package main provides the CLI entrypoint for mdlog.
package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/eringiriri/YuGiOhMDAnalysis/internal/calendar"
	"github.com/eringiriri/YuGiOhMDAnalysis/internal/config"
	"github.com/eringiriri/YuGiOhMDAnalysis/internal/editor"
	"github.com/eringiriri/YuGiOhMDAnalysis/internal/record"
	"github.com/eringiriri/YuGiOhMDAnalysis/internal/reportui"
)

var (
	reportViews string
	reportMonth string
)

func main() {
	// An optional .env in the working directory can set MDLOG_* variables.
	_ = godotenv.Load()
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "mdlog",
		Short:         "Match record keeper for Master Duel",
		SilenceUsage:  true,
		SilenceErrors: false,
		Args:          cobra.NoArgs,
		RunE:          runRootCmd,
	}

	rootCmd.AddCommand(newAddCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newEditCmd())
	rootCmd.AddCommand(newDeleteCmd())
	rootCmd.AddCommand(newSummaryCmd())
	rootCmd.AddCommand(newRateCmd())
	rootCmd.AddCommand(newEnvCmd())
	rootCmd.AddCommand(newReportCmd())
	rootCmd.AddCommand(newEditorCmd())
	rootCmd.AddCommand(newSettingsCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newResetCmd())
	rootCmd.AddCommand(newExportCmd())

	return rootCmd
}

// app is the per-command state: settings loaded once and the record file.
type app struct {
	settingsPath string
	settings     config.Settings
	store        *record.Store
}

func loadApp() (*app, error) {
	path := config.DefaultSettingsPath()
	settings, err := config.LoadSettings(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	return &app{
		settingsPath: path,
		settings:     settings,
		store:        record.Open(settings.SaveLocation),
	}, nil
}

func runRootCmd(_ *cobra.Command, _ []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	return runReportUI(a, a.settings.StartupViews(), nil)
}

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Open the monthly report view",
		Args:  cobra.NoArgs,
		RunE:  runReportCmd,
	}
	cmd.Flags().StringVar(&reportViews, "view", "", "comma-separated views: match-summary, rate-graph, environment-distribution")
	cmd.Flags().StringVar(&reportMonth, "month", "", "month to open (YYYY/MM, default: current)")
	return cmd
}

func runReportCmd(_ *cobra.Command, _ []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	views := a.settings.StartupViews()
	if strings.TrimSpace(reportViews) != "" {
		views, err = config.ParseViews(reportViews)
		if err != nil {
			return err
		}
	}
	var month *calendar.Month
	if reportMonth != "" {
		m, err := resolveMonth(reportMonth)
		if err != nil {
			return err
		}
		month = &m
	}
	return runReportUI(a, views, month)
}

func runReportUI(a *app, views []config.View, month *calendar.Month) error {
	m := reportui.NewModel(reportui.Options{
		Source:   a.store,
		Views:    views,
		Settings: &a.settings,
		Save: func(s config.Settings) error {
			_, err := config.UpdateSettings(a.settingsPath, func(stored *config.Settings) error {
				stored.RateGraphType = s.RateGraphType
				stored.GraphType = s.GraphType
				return nil
			})
			return err
		},
		Month: month,
	})
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run report TUI: %w", err)
	}
	return nil
}

func newEditorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "editor",
		Short: "Open the record editor",
		Args:  cobra.NoArgs,
		RunE:  runEditorCmd,
	}
}

func runEditorCmd(_ *cobra.Command, _ []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	program := tea.NewProgram(editor.NewModel(a.store, nil), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run editor TUI: %w", err)
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open settings file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultSettingsPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat settings: %w", err)
		}
		if err := os.WriteFile(path, []byte(config.Template()), 0o644); err != nil {
			return fmt.Errorf("failed to write settings: %w", err)
		}
	}

	editorCmd := strings.TrimSpace(os.Getenv("EDITOR"))
	if editorCmd == "" {
		editorCmd = "vi"
	}
	parts := strings.Fields(editorCmd)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func resolveMonth(value string) (calendar.Month, error) {
	nav := calendar.NewNavigator(nil)
	if strings.TrimSpace(value) == "" {
		return nav.Cursor(), nil
	}
	m, err := calendar.ParseMonth(value)
	if err != nil {
		return calendar.Month{}, fmt.Errorf("invalid --month value: %w", err)
	}
	if !nav.Goto(m) {
		return calendar.Month{}, fmt.Errorf("month %s is after the current month", m)
	}
	return m, nil
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
