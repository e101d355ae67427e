package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/eringiriri/YuGiOhMDAnalysis/internal/archive"
	"github.com/eringiriri/YuGiOhMDAnalysis/internal/calendar"
	"github.com/eringiriri/YuGiOhMDAnalysis/internal/config"
	"github.com/eringiriri/YuGiOhMDAnalysis/internal/model"
	"github.com/eringiriri/YuGiOhMDAnalysis/internal/record"
	"github.com/eringiriri/YuGiOhMDAnalysis/internal/stats"
)

// recordFlags holds the per-field flags shared by add and edit.
type recordFlags struct {
	date     string
	deck     string
	coin     string
	turn     string
	opponent string
	result   string
	rank     string
	rate     string
	memo     string
	rankUp   bool
	rankDown bool
}

var (
	addFlags  recordFlags
	editFlags recordFlags

	listMonth  string
	resetYes   bool
	exportPath string
)

var (
	winColor  = color.New(color.FgGreen)
	lossColor = color.New(color.FgRed)
	dimColor  = color.New(color.FgHiBlack)
)

func (f *recordFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.date, "date", "", "match date (YYYY/MM/DD)")
	cmd.Flags().StringVar(&f.deck, "deck", "", "your deck")
	cmd.Flags().StringVar(&f.coin, "coin", "", "coin toss: heads or tails")
	cmd.Flags().StringVar(&f.turn, "turn", "", "play order: first or second")
	cmd.Flags().StringVar(&f.opponent, "opponent", "", "opponent deck (default: unknown)")
	cmd.Flags().StringVar(&f.result, "result", "", "match result: win or loss")
	cmd.Flags().StringVar(&f.rank, "rank", "", "rank after the match, e.g. G3")
	cmd.Flags().StringVar(&f.rate, "rate", "", "rating after the match")
	cmd.Flags().StringVar(&f.memo, "memo", "", "free-form note")
	cmd.Flags().BoolVar(&f.rankUp, "rank-up", false, "move the rank one step up the ladder")
	cmd.Flags().BoolVar(&f.rankDown, "rank-down", false, "move the rank one step down the ladder")
	cmd.MarkFlagsMutuallyExclusive("rank-up", "rank-down")
}

// apply copies the flags the user set onto rec.
func (f *recordFlags) apply(cmd *cobra.Command, rec *model.Record) error {
	applyStringFlag(cmd, "date", &rec.Date, f.date)
	applyStringFlag(cmd, "deck", &rec.Deck, f.deck)
	applyStringFlag(cmd, "opponent", &rec.OpponentDeck, f.opponent)
	applyStringFlag(cmd, "memo", &rec.Memo, f.memo)
	if cmd.Flags().Changed("coin") {
		coin, ok := model.ParseCoin(f.coin)
		if !ok {
			return fmt.Errorf("invalid --coin %q: must be heads or tails", f.coin)
		}
		rec.Coin = coin
	}
	if cmd.Flags().Changed("turn") {
		turn, ok := model.ParseTurn(f.turn)
		if !ok {
			return fmt.Errorf("invalid --turn %q: must be first or second", f.turn)
		}
		rec.Turn = turn
	}
	if cmd.Flags().Changed("result") {
		result, ok := model.ParseResult(f.result)
		if !ok {
			return fmt.Errorf("invalid --result %q: must be win or loss", f.result)
		}
		rec.Result = result
	}
	if cmd.Flags().Changed("rank") {
		rank := model.Rank(strings.ToUpper(strings.TrimSpace(f.rank)))
		if rank != "" && !rank.Known() {
			return fmt.Errorf("invalid --rank %q", f.rank)
		}
		rec.Rank = rank
	}
	if f.rankUp {
		rec.Rank = rec.Rank.Step(1)
	}
	if f.rankDown {
		rec.Rank = rec.Rank.Step(-1)
	}
	if cmd.Flags().Changed("rate") {
		rec.Rate = model.ParseRate(f.rate)
	}
	return nil
}

func newAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a match",
		Args:  cobra.NoArgs,
		RunE:  runAddCmd,
	}
	addFlags.bind(cmd)
	return cmd
}

func runAddCmd(cmd *cobra.Command, _ []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	last, hasLast, err := a.store.Last()
	if err != nil && !errors.Is(err, record.ErrStoreUnavailable) {
		return fmt.Errorf("failed to read records: %w", err)
	}
	rec := newEntry(time.Now(), last, hasLast)
	if err := addFlags.apply(cmd, &rec); err != nil {
		return err
	}
	rec = rec.Normalize()
	if err := model.ValidateEntry(rec); err != nil {
		return fmt.Errorf("failed to add record: %w", err)
	}
	if err := a.store.Append(rec); err != nil {
		return fmt.Errorf("failed to add record: %w", err)
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Saved %s %s vs %s (%s %s)\n",
		rec.Date, rec.Result, rec.OpponentDeck, displayRank(rec.Rank), strconv.Itoa(rec.Rate))
	return err
}

// newEntry prefills a record the way the entry form does: today's date and
// the deck, rank and rate of the previous match.
func newEntry(now time.Time, last model.Record, hasLast bool) model.Record {
	rec := model.Record{Date: now.Format(model.DateLayout)}
	if hasLast {
		rec.Deck = last.Deck
		rec.Rank = last.Rank
		rec.Rate = last.Rate
	}
	return rec
}

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded matches",
		Args:  cobra.NoArgs,
		RunE:  runListCmd,
	}
	cmd.Flags().StringVar(&listMonth, "month", "", "only show this month (YYYY/MM)")
	return cmd
}

func runListCmd(cmd *cobra.Command, _ []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	records, err := a.store.LoadAll()
	if errors.Is(err, record.ErrStoreUnavailable) {
		logErrf("No records yet at %s\n", a.store.Path())
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load records: %w", err)
	}
	var month *calendar.Month
	if listMonth != "" {
		m, err := calendar.ParseMonth(listMonth)
		if err != nil {
			return fmt.Errorf("invalid --month value: %w", err)
		}
		month = &m
	}
	return writeRecordList(cmd.OutOrStdout(), records, month)
}

func writeRecordList(w io.Writer, records []model.Record, month *calendar.Month) error {
	headers := []string{"#", "Date", "Deck", "Coin", "Turn", "Opponent", "Result", "Rank", "Rate", "Memo"}
	var rows [][]string
	var results []model.Result
	for i, rec := range records {
		if month != nil {
			day, ok := rec.Day()
			if !ok || !month.Contains(day) {
				continue
			}
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			rec.Date,
			stats.Truncate(rec.Deck, 20),
			string(rec.Coin),
			string(rec.Turn),
			stats.Truncate(rec.OpponentDeck, 20),
			string(rec.Result),
			string(rec.Rank),
			strconv.Itoa(rec.Rate),
			stats.Truncate(strings.ReplaceAll(rec.Memo, "\n", " "), 30),
		})
		results = append(results, rec.Result)
	}
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "No matches.")
		return err
	}
	lines := stats.FormatTable(headers, rows, map[int]bool{0: true, 8: true})
	if _, err := fmt.Fprintln(w, dimColor.Sprint(lines[0])); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	for i, line := range lines[1:] {
		switch results[i] {
		case model.ResultWin:
			line = winColor.Sprint(line)
		case model.ResultLoss:
			line = lossColor.Sprint(line)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newEditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <n>",
		Short: "Change fields of the n-th match (see list)",
		Args:  cobra.ExactArgs(1),
		RunE:  runEditCmd,
	}
	editFlags.bind(cmd)
	return cmd
}

func runEditCmd(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	records, idx, err := loadRow(a.store, args[0])
	if err != nil {
		return err
	}
	rec := records[idx]
	if err := editFlags.apply(cmd, &rec); err != nil {
		return err
	}
	rec = rec.Normalize()
	if err := model.ValidateEntry(rec); err != nil {
		return fmt.Errorf("failed to edit record: %w", err)
	}
	records[idx] = rec
	if err := a.store.RewriteAll(records); err != nil {
		return fmt.Errorf("failed to edit record: %w", err)
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Updated #%d\n", idx+1)
	return err
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <n>",
		Short: "Delete the n-th match (see list)",
		Args:  cobra.ExactArgs(1),
		RunE:  runDeleteCmd,
	}
}

func runDeleteCmd(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	records, idx, err := loadRow(a.store, args[0])
	if err != nil {
		return err
	}
	deleted := records[idx]
	records = append(records[:idx], records[idx+1:]...)
	if err := a.store.RewriteAll(records); err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Deleted #%d (%s %s vs %s)\n", idx+1, deleted.Date, deleted.Result, deleted.OpponentDeck)
	return err
}

func loadRow(st *record.Store, arg string) ([]model.Record, int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil || n <= 0 {
		return nil, 0, fmt.Errorf("invalid row number %q", arg)
	}
	records, err := st.LoadAll()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load records: %w", err)
	}
	if n > len(records) {
		return nil, 0, fmt.Errorf("row %d does not exist (%d records)", n, len(records))
	}
	return records, n - 1, nil
}

func newResetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete the record file",
		Args:  cobra.NoArgs,
		RunE:  runResetCmd,
	}
	cmd.Flags().BoolVar(&resetYes, "yes", false, "do not ask for confirmation")
	return cmd
}

func runResetCmd(cmd *cobra.Command, _ []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	if !resetYes {
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Delete %s? [y/N] ", a.store.Path()); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		answer, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("failed to read answer: %w", err)
		}
		answer = strings.ToLower(strings.TrimSpace(answer))
		if answer != "y" && answer != "yes" {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
			return err
		}
	}
	if err := a.store.Remove(); err != nil {
		if errors.Is(err, record.ErrStoreUnavailable) {
			logErrf("No record file at %s\n", a.store.Path())
			return nil
		}
		return fmt.Errorf("failed to reset records: %w", err)
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", a.store.Path())
	return err
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a SQLite snapshot of all matches",
		Args:  cobra.NoArgs,
		RunE:  runExportCmd,
	}
	cmd.Flags().StringVar(&exportPath, "db", "", "SQLite database path (default: XDG data dir)")
	return cmd
}

func runExportCmd(cmd *cobra.Command, _ []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	records, err := a.store.LoadAll()
	if errors.Is(err, record.ErrStoreUnavailable) {
		logErrln("No records yet; exporting an empty snapshot")
		records = nil
	} else if err != nil {
		return fmt.Errorf("failed to load records: %w", err)
	}

	path := exportPath
	if path == "" {
		path = config.DefaultArchivePath()
	}
	arc, err := archive.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := arc.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	ctx := context.Background()
	if err := arc.ReplaceMatches(ctx, records); err != nil {
		return fmt.Errorf("failed to export matches: %w", err)
	}
	stored, err := arc.Matches(ctx)
	if err != nil {
		return fmt.Errorf("failed to read exported matches: %w", err)
	}
	if len(stored) != len(records) {
		return fmt.Errorf("failed to verify export: wrote %d matches, read back %d", len(records), len(stored))
	}
	counts, err := arc.MonthlyCounts(ctx)
	if err != nil {
		return fmt.Errorf("failed to read monthly counts: %w", err)
	}
	return writeMonthlyCounts(cmd.OutOrStdout(), path, len(stored), counts)
}

func writeMonthlyCounts(w io.Writer, path string, total int, counts []archive.MonthCount) error {
	if _, err := fmt.Fprintf(w, "Exported %d matches to %s\n", total, path); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	rows := make([][]string, 0, len(counts))
	for _, mc := range counts {
		rate := 0.0
		if mc.Matches > 0 {
			rate = float64(mc.Wins) / float64(mc.Matches) * 100
		}
		rows = append(rows, []string{mc.Month, strconv.Itoa(mc.Matches), strconv.Itoa(mc.Wins), fmt.Sprintf("%.1f%%", rate)})
	}
	if len(rows) == 0 {
		return nil
	}
	for _, line := range stats.FormatTable([]string{"Month", "Matches", "Wins", "Win rate"}, rows, map[int]bool{1: true, 2: true, 3: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func applyStringFlag(cmd *cobra.Command, name string, target *string, value string) {
	if !cmd.Flags().Changed(name) {
		return
	}
	*target = value
}

func displayRank(r model.Rank) string {
	if r == "" {
		return "-"
	}
	return string(r)
}
