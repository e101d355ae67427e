package stats

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
)

// DistributionStyle selects how the opponent distribution is drawn.
type DistributionStyle string

const (
	// StylePie lists each deck with its share of the month.
	StylePie DistributionStyle = "pie"
	// StyleBar draws one horizontal bar per deck.
	StyleBar DistributionStyle = "bar"
)

const maxBarWidth = 40

// SummaryLines formats the summary as label/value rows.
func SummaryLines(s Summary) []string {
	rows := [][]string{
		{"Matches", strconv.Itoa(s.TotalMatches)},
		{"Win rate", formatPercent(s.WinRate)},
		{"Heads", strconv.Itoa(s.HeadsCount)},
		{"Tails", strconv.Itoa(s.TailsCount)},
		{"Heads rate", formatPercent(s.HeadsRate)},
		{"First turn rate", formatPercent(s.FirstTurnRate)},
		{"Win rate (heads)", formatPercent(s.HeadsWinRate)},
		{"Win rate (tails)", formatPercent(s.TailsWinRate)},
		{"First turn rate (heads)", formatPercent(s.HeadsFirstTurnRate)},
		{"First turn rate (tails)", formatPercent(s.TailsFirstTurnRate)},
	}
	return FormatTable(nil, rows, map[int]bool{1: true})
}

// RenderSummary writes the summary for one month.
func RenderSummary(w io.Writer, title string, s Summary) error {
	if title != "" {
		if _, err := fmt.Fprintln(w, title); err != nil {
			return err
		}
	}
	if s.TotalMatches == 0 {
		_, err := fmt.Fprintln(w, "No data.")
		return err
	}
	for _, line := range SummaryLines(s) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// DistributionLines formats the opponent distribution in the given style.
func DistributionLines(decks []DeckCount, style DistributionStyle, width int) []string {
	if len(decks) == 0 {
		return []string{"No data."}
	}
	if style != StyleBar {
		rows := make([][]string, 0, len(decks))
		for _, d := range decks {
			rows = append(rows, []string{d.Deck, strconv.Itoa(d.Count), formatPercent(d.Share)})
		}
		return FormatTable([]string{"Deck", "Count", "Share"}, rows, map[int]bool{1: true, 2: true})
	}

	nameWidth := 0
	maxCount := 0
	for _, d := range decks {
		nameWidth = max(nameWidth, runewidth.StringWidth(d.Deck))
		maxCount = max(maxCount, d.Count)
	}
	nameWidth = min(nameWidth, 24)
	barWidth := maxBarWidth
	if width > 0 {
		barWidth = min(barWidth, max(width-nameWidth-8, 1))
	}
	lines := make([]string, 0, len(decks))
	for _, d := range decks {
		n := d.Count * barWidth / maxCount
		if n == 0 && d.Count > 0 {
			n = 1
		}
		name := runewidth.FillRight(Truncate(d.Deck, nameWidth), nameWidth)
		lines = append(lines, fmt.Sprintf("%s %s %d", name, strings.Repeat("█", n), d.Count))
	}
	return lines
}

// RenderDistribution writes the opponent distribution.
func RenderDistribution(w io.Writer, title string, decks []DeckCount, style DistributionStyle) error {
	if title != "" {
		if _, err := fmt.Fprintln(w, title); err != nil {
			return err
		}
	}
	for _, line := range DistributionLines(decks, style, terminalWidth()) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func formatPercent(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}
