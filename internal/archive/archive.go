// Package archive keeps a SQLite snapshot of the match records.
package archive

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/eringiriri/YuGiOhMDAnalysis/internal/calendar"
	"github.com/eringiriri/YuGiOhMDAnalysis/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Archive wraps SQLite access for exported matches.
type Archive struct {
	db *sql.DB
}

// MonthCount is the number of matches and wins archived for one month.
type MonthCount struct {
	Month   string
	Matches int
	Wins    int
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Archive, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	a := &Archive{db: db}
	if err := a.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return a, nil
}

// Close closes the underlying database.
func (a *Archive) Close() error {
	return a.db.Close()
}

func (a *Archive) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS matches (
			seq INTEGER PRIMARY KEY,
			date TEXT NOT NULL,
			month TEXT NOT NULL,
			deck TEXT NOT NULL,
			coin TEXT NOT NULL,
			turn TEXT NOT NULL,
			opponent_deck TEXT NOT NULL,
			result TEXT NOT NULL,
			rank TEXT NOT NULL,
			rank_ordinal INTEGER NOT NULL,
			rate INTEGER NOT NULL,
			memo TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_matches_month ON matches(month);`,
	}
	for _, stmt := range stmts {
		if _, err := a.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// ReplaceMatches swaps the archived matches for records in one transaction.
// Records keep their order through the seq column.
func (a *Archive) ReplaceMatches(ctx context.Context, records []model.Record) (err error) {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM matches`); err != nil {
		return fmt.Errorf("failed to clear matches: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO matches (seq, date, month, deck, coin, turn, opponent_deck, result, rank, rank_ordinal, rate, memo)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := stmt.Close(); cerr != nil {
			// Best-effort statement close.
			_ = cerr
		}
	}()
	for i, rec := range records {
		month := ""
		if day, ok := rec.Day(); ok {
			month = calendar.MonthOf(day).String()
		}
		if _, err = stmt.ExecContext(ctx, i+1, rec.Date, month, rec.Deck, string(rec.Coin), string(rec.Turn),
			rec.OpponentDeck, string(rec.Result), string(rec.Rank), rec.Rank.Ordinal(), rec.Rate, rec.Memo); err != nil {
			return fmt.Errorf("failed to insert match %d: %w", i+1, err)
		}
	}
	return tx.Commit()
}

// Matches returns the archived records in their original order.
func (a *Archive) Matches(ctx context.Context) ([]model.Record, error) {
	rows, err := a.db.QueryContext(ctx,
		`SELECT date, deck, coin, turn, opponent_deck, result, rank, rate, memo
		 FROM matches ORDER BY seq ASC`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.Record
	for rows.Next() {
		var rec model.Record
		var coin, turn, res, rank string
		if err := rows.Scan(&rec.Date, &rec.Deck, &coin, &turn, &rec.OpponentDeck, &res, &rank, &rec.Rate, &rec.Memo); err != nil {
			return nil, err
		}
		rec.Coin = model.Coin(coin)
		rec.Turn = model.Turn(turn)
		rec.Result = model.Result(res)
		rec.Rank = model.Rank(rank)
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// MonthlyCounts aggregates archived matches per month, oldest first. Rows
// without a valid date are left out.
func (a *Archive) MonthlyCounts(ctx context.Context) ([]MonthCount, error) {
	rows, err := a.db.QueryContext(ctx,
		`SELECT month, COUNT(*) AS matches, SUM(CASE WHEN result = ? THEN 1 ELSE 0 END) AS wins
		 FROM matches
		 WHERE month <> ''
		 GROUP BY month
		 ORDER BY month ASC`, string(model.ResultWin))
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []MonthCount
	for rows.Next() {
		var mc MonthCount
		if err := rows.Scan(&mc.Month, &mc.Matches, &mc.Wins); err != nil {
			return nil, err
		}
		result = append(result, mc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
