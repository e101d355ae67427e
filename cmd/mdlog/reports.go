package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/eringiriri/YuGiOhMDAnalysis/internal/config"
	"github.com/eringiriri/YuGiOhMDAnalysis/internal/model"
	"github.com/eringiriri/YuGiOhMDAnalysis/internal/stats"
)

var (
	summaryMonth string
	rateMonth    string
	rateType     string
	envMonth     string
	envType      string
)

func newSummaryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print the match summary for a month",
		Args:  cobra.NoArgs,
		RunE:  runSummaryCmd,
	}
	cmd.Flags().StringVar(&summaryMonth, "month", "", "month (YYYY/MM, default: current)")
	return cmd
}

func runSummaryCmd(cmd *cobra.Command, _ []string) error {
	report, _, err := loadReport(summaryMonth)
	if err != nil {
		return err
	}
	return stats.RenderSummary(cmd.OutOrStdout(), "Match summary "+report.Month.String(), report.Summary)
}

func newRateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rate",
		Short: "Plot the rating or rank progression for a month",
		Args:  cobra.NoArgs,
		RunE:  runRateCmd,
	}
	cmd.Flags().StringVar(&rateMonth, "month", "", "month (YYYY/MM, default: current)")
	cmd.Flags().StringVar(&rateType, "type", "", "rate or rank (default: settings)")
	return cmd
}

func runRateCmd(cmd *cobra.Command, _ []string) error {
	report, a, err := loadReport(rateMonth)
	if err != nil {
		return err
	}
	graph := a.settings.RateGraphType
	if cmd.Flags().Changed("type") {
		graph = strings.ToLower(strings.TrimSpace(rateType))
	}
	return writeRateGraph(cmd.OutOrStdout(), report, graph)
}

func writeRateGraph(w io.Writer, report stats.Report, graph string) error {
	switch graph {
	case config.RateGraphRate:
		return stats.PlotSeries(w, "Rate "+report.Month.String(), report.Rates, stats.RateAxis())
	case config.RateGraphRank:
		labels := make([]string, len(model.Ranks))
		for i, r := range model.Ranks {
			labels[i] = string(r)
		}
		return stats.PlotSeries(w, "Rank "+report.Month.String(), report.Ranks, stats.RankAxis(labels))
	}
	return fmt.Errorf("invalid --type %q: must be %q or %q", graph, config.RateGraphRate, config.RateGraphRank)
}

func newEnvCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "env",
		Short: "Show the opponent deck distribution for a month",
		Args:  cobra.NoArgs,
		RunE:  runEnvCmd,
	}
	cmd.Flags().StringVar(&envMonth, "month", "", "month (YYYY/MM, default: current)")
	cmd.Flags().StringVar(&envType, "type", "", "pie or bar (default: settings)")
	return cmd
}

func runEnvCmd(cmd *cobra.Command, _ []string) error {
	report, a, err := loadReport(envMonth)
	if err != nil {
		return err
	}
	graph := a.settings.GraphType
	if cmd.Flags().Changed("type") {
		graph = strings.ToLower(strings.TrimSpace(envType))
	}
	var style stats.DistributionStyle
	switch graph {
	case config.GraphPie:
		style = stats.StylePie
	case config.GraphBar:
		style = stats.StyleBar
	default:
		return fmt.Errorf("invalid --type %q: must be %q or %q", graph, config.GraphPie, config.GraphBar)
	}
	return stats.RenderDistribution(cmd.OutOrStdout(), "Opponent decks "+report.Month.String(), report.Decks, style)
}

// loadReport builds the report of the month named by a --month flag.
func loadReport(monthFlag string) (stats.Report, *app, error) {
	a, err := loadApp()
	if err != nil {
		return stats.Report{}, nil, err
	}
	month, err := resolveMonth(monthFlag)
	if err != nil {
		return stats.Report{}, nil, err
	}
	report, err := stats.BuildReport(a.store, month)
	if err != nil {
		return stats.Report{}, nil, fmt.Errorf("failed to load records: %w", err)
	}
	if report.StoreMissing {
		logErrf("No records yet at %s\n", a.store.Path())
	}
	return report, a, nil
}

