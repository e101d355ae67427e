package stats

import (
	"reflect"
	"testing"

	"github.com/eringiriri/YuGiOhMDAnalysis/internal/model"
)

func TestSummarizeJanuaryScenario(t *testing.T) {
	records := []model.Record{
		{Date: "2024/01/15", Result: model.ResultWin, Coin: model.CoinHeads, Turn: model.TurnFirst},
		{Date: "2024/01/20", Result: model.ResultLoss, Coin: model.CoinTails, Turn: model.TurnSecond},
	}
	s := Summarize(records)
	if s.TotalMatches != 2 {
		t.Fatalf("expected 2 matches, got %d", s.TotalMatches)
	}
	checks := []struct {
		name string
		got  float64
		want float64
	}{
		{"win", s.WinRate, 50},
		{"heads", s.HeadsRate, 50},
		{"first", s.FirstTurnRate, 50},
		{"heads win", s.HeadsWinRate, 100},
		{"tails win", s.TailsWinRate, 0},
		{"heads first", s.HeadsFirstTurnRate, 100},
		{"tails first", s.TailsFirstTurnRate, 0},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Fatalf("%s rate: expected %.1f, got %.1f", c.name, c.want, c.got)
		}
	}
	if s.HeadsCount != 1 || s.TailsCount != 1 {
		t.Fatalf("unexpected coin counts: %+v", s)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	if s != (Summary{}) {
		t.Fatalf("expected zero summary, got %+v", s)
	}
}

func TestSummarizeRatesStayInRange(t *testing.T) {
	coins := []model.Coin{model.CoinHeads, model.CoinTails, ""}
	turns := []model.Turn{model.TurnFirst, model.TurnSecond, ""}
	results := []model.Result{model.ResultWin, model.ResultLoss, ""}
	var records []model.Record
	for n := 0; n < 27; n++ {
		records = append(records, model.Record{
			Coin:   coins[n%3],
			Turn:   turns[(n/3)%3],
			Result: results[(n/9)%3],
		})
		s := Summarize(records)
		rates := []float64{
			s.WinRate, s.HeadsRate, s.FirstTurnRate,
			s.HeadsWinRate, s.TailsWinRate, s.HeadsFirstTurnRate, s.TailsFirstTurnRate,
		}
		for i, r := range rates {
			if r < 0 || r > 100 {
				t.Fatalf("n=%d rate %d out of range: %f", n, i, r)
			}
		}
		if s.TailsCount != s.TotalMatches-s.HeadsCount {
			t.Fatalf("tails count mismatch: %+v", s)
		}
	}
}

func TestSummarizeAllHeadsHasZeroTailsRates(t *testing.T) {
	s := Summarize([]model.Record{
		{Coin: model.CoinHeads, Turn: model.TurnFirst, Result: model.ResultWin},
		{Coin: model.CoinHeads, Turn: model.TurnSecond, Result: model.ResultWin},
	})
	if s.TailsCount != 0 || s.TailsWinRate != 0 || s.TailsFirstTurnRate != 0 {
		t.Fatalf("expected zero tails rates, got %+v", s)
	}
	if s.HeadsFirstTurnRate != 50 {
		t.Fatalf("expected 50%% heads first turn rate, got %f", s.HeadsFirstTurnRate)
	}
}

func TestSeries(t *testing.T) {
	records := []model.Record{
		{Date: "2024/01/01", Rate: 1500, Rank: "G3"},
		{Date: "2024/01/02", Rate: 1480, Rank: "not-a-rank"},
		{Date: "2024/01/03", Rate: 1510, Rank: "M1"},
	}
	rates := RateSeries(records)
	want := []Point{
		{Index: 1, Value: 1500, Label: "2024/01/01"},
		{Index: 2, Value: 1480, Label: "2024/01/02"},
		{Index: 3, Value: 1510, Label: "2024/01/03"},
	}
	if !reflect.DeepEqual(rates, want) {
		t.Fatalf("unexpected rate series: %+v", rates)
	}
	ranks := RankSeries(records)
	if ranks[0].Value != 13 || ranks[1].Value != 0 || ranks[2].Value != 30 {
		t.Fatalf("unexpected rank series: %+v", ranks)
	}
}

func TestDistribution(t *testing.T) {
	records := []model.Record{
		{OpponentDeck: "ユベル"},
		{OpponentDeck: "Snake-Eye"},
		{OpponentDeck: "Snake-Eye"},
		{OpponentDeck: "unknown"},
	}
	got := Distribution(records)
	want := []DeckCount{
		{Deck: "Snake-Eye", Count: 2, Share: 50},
		{Deck: "ユベル", Count: 1, Share: 25},
		{Deck: "unknown", Count: 1, Share: 25},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected distribution: %+v", got)
	}
	if d := Distribution(nil); len(d) != 0 {
		t.Fatalf("expected empty distribution, got %+v", d)
	}
}
