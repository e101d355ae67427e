package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/eringiriri/YuGiOhMDAnalysis/internal/config"
	"github.com/eringiriri/YuGiOhMDAnalysis/internal/record"
)

var (
	graphRate string
	graphEnv  string
)

func newSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change settings",
		Args:  cobra.NoArgs,
		RunE:  runSettingsShowCmd,
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective settings",
		Args:  cobra.NoArgs,
		RunE:  runSettingsShowCmd,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "set-location <dir>",
		Short: "Set the directory of the record file",
		Args:  cobra.ExactArgs(1),
		RunE:  runSetLocationCmd,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "set-startup [view...]",
		Short: "Set the views opened by mdlog (none opens all)",
		RunE:  runSetStartupCmd,
	})
	graphCmd := &cobra.Command{
		Use:   "set-graph",
		Short: "Set chart types",
		Args:  cobra.NoArgs,
		RunE:  runSetGraphCmd,
	}
	graphCmd.Flags().StringVar(&graphRate, "rate-graph", "", "rate or rank")
	graphCmd.Flags().StringVar(&graphEnv, "graph", "", "pie or bar")
	graphCmd.MarkFlagsOneRequired("rate-graph", "graph")
	cmd.AddCommand(graphCmd)
	return cmd
}

func runSettingsShowCmd(cmd *cobra.Command, _ []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	return writeSettings(cmd.OutOrStdout(), a.settingsPath, a.settings, a.store.Path())
}

func writeSettings(w io.Writer, path string, s config.Settings, recordPath string) error {
	views := make([]string, 0, len(s.StartupViews()))
	for _, v := range s.StartupViews() {
		views = append(views, string(v))
	}
	lines := []string{
		fmt.Sprintf("settings file:   %s", path),
		fmt.Sprintf("save-location:   %s", s.SaveLocation),
		fmt.Sprintf("record file:     %s", recordPath),
		fmt.Sprintf("startup-window:  %s", strings.Join(views, ", ")),
		fmt.Sprintf("rate-graph-type: %s", s.RateGraphType),
		fmt.Sprintf("graph-type:      %s", s.GraphType),
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func runSetLocationCmd(cmd *cobra.Command, args []string) error {
	dir, err := filepath.Abs(strings.TrimSpace(args[0]))
	if err != nil {
		return fmt.Errorf("failed to resolve %q: %w", args[0], err)
	}
	return updateSettings(cmd, func(s *config.Settings) error {
		s.SaveLocation = dir
		return nil
	})
}

func runSetStartupCmd(cmd *cobra.Command, args []string) error {
	views, err := config.ParseViews(strings.Join(args, ","))
	if err != nil {
		return err
	}
	return updateSettings(cmd, func(s *config.Settings) error {
		s.StartupWindow = views
		return nil
	})
}

func runSetGraphCmd(cmd *cobra.Command, _ []string) error {
	return updateSettings(cmd, func(s *config.Settings) error {
		if cmd.Flags().Changed("rate-graph") {
			s.RateGraphType = strings.ToLower(strings.TrimSpace(graphRate))
		}
		if cmd.Flags().Changed("graph") {
			s.GraphType = strings.ToLower(strings.TrimSpace(graphEnv))
		}
		return nil
	})
}

func updateSettings(cmd *cobra.Command, fn func(*config.Settings) error) error {
	path := config.DefaultSettingsPath()
	s, err := config.UpdateSettings(path, fn)
	if err != nil {
		return fmt.Errorf("failed to update settings: %w", err)
	}
	if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", path); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return writeSettings(cmd.OutOrStdout(), path, s, record.Open(s.SaveLocation).Path())
}
