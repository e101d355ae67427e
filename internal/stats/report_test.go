package stats

import (
	"errors"
	"testing"
	"time"

	"github.com/eringiriri/YuGiOhMDAnalysis/internal/calendar"
	"github.com/eringiriri/YuGiOhMDAnalysis/internal/model"
	"github.com/eringiriri/YuGiOhMDAnalysis/internal/record"
)

type fakeLoader struct {
	records []model.Record
	err     error
}

func (f fakeLoader) LoadAll() ([]model.Record, error) {
	return f.records, f.err
}

func TestBuildReport(t *testing.T) {
	src := fakeLoader{records: []model.Record{
		{Date: "2024/01/15", Result: model.ResultWin, Coin: model.CoinHeads, Turn: model.TurnFirst, OpponentDeck: "A", Rate: 1500, Rank: "G3"},
		{Date: "2024/01/20", Result: model.ResultLoss, Coin: model.CoinTails, Turn: model.TurnSecond, OpponentDeck: "B", Rate: 1490, Rank: "G3"},
		{Date: "2024/02/01", Result: model.ResultWin, Coin: model.CoinHeads, Turn: model.TurnSecond, OpponentDeck: "A", Rate: 1510, Rank: "G2"},
	}}
	report, err := BuildReport(src, calendar.Month{Year: 2024, Month: time.January})
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if len(report.Records) != 2 || report.Summary.TotalMatches != 2 {
		t.Fatalf("expected 2 records, got %+v", report)
	}
	if len(report.Rates) != 2 || report.Rates[1].Value != 1490 {
		t.Fatalf("unexpected rate series: %+v", report.Rates)
	}
	if len(report.Decks) != 2 {
		t.Fatalf("unexpected distribution: %+v", report.Decks)
	}
	if report.StoreMissing || report.Empty() {
		t.Fatalf("unexpected flags: %+v", report)
	}
}

func TestBuildReportMissingStore(t *testing.T) {
	src := fakeLoader{err: record.ErrStoreUnavailable}
	report, err := BuildReport(src, calendar.Month{Year: 2024, Month: time.March})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !report.StoreMissing || !report.Empty() {
		t.Fatalf("expected empty report with missing store, got %+v", report)
	}
	if report.Summary.WinRate != 0 {
		t.Fatalf("expected zero rates, got %+v", report.Summary)
	}
}

func TestBuildReportCorruptStore(t *testing.T) {
	corrupt := &record.CorruptError{Line: 4, Reason: "bad row"}
	_, err := BuildReport(fakeLoader{err: corrupt}, calendar.Month{Year: 2024, Month: time.March})
	if !errors.Is(err, record.ErrStoreCorrupt) {
		t.Fatalf("expected corrupt error, got %v", err)
	}
}
