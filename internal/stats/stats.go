// Package stats contains statistics calculations and reporting.
package stats

import (
	"sort"

	"github.com/eringiriri/YuGiOhMDAnalysis/internal/model"
)

// Summary holds the monthly match statistics. Rates are percentages in
// [0, 100]; a rate with an empty denominator is 0.
type Summary struct {
	TotalMatches       int
	WinCount           int
	HeadsCount         int
	TailsCount         int
	FirstTurnCount     int
	WinRate            float64
	HeadsRate          float64
	FirstTurnRate      float64
	HeadsWinRate       float64
	TailsWinRate       float64
	HeadsFirstTurnRate float64
	TailsFirstTurnRate float64
}

// Point is one sample of a per-match series. Index is the 1-based
// registration order within the filtered set.
type Point struct {
	Index int
	Value float64
	Label string
}

// DeckCount is how often an opponent deck was faced.
type DeckCount struct {
	Deck  string
	Count int
	Share float64
}

// Summarize computes the summary statistics for records.
func Summarize(records []model.Record) Summary {
	var s Summary
	var headsWins, tailsWins, headsFirst, tailsFirst int
	s.TotalMatches = len(records)
	for _, rec := range records {
		win := rec.Result == model.ResultWin
		first := rec.Turn == model.TurnFirst
		heads := rec.Coin == model.CoinHeads
		if win {
			s.WinCount++
		}
		if first {
			s.FirstTurnCount++
		}
		if heads {
			s.HeadsCount++
		}
		switch {
		case heads && win:
			headsWins++
		case rec.Coin == model.CoinTails && win:
			tailsWins++
		}
		switch {
		case heads && first:
			headsFirst++
		case rec.Coin == model.CoinTails && first:
			tailsFirst++
		}
	}
	s.TailsCount = s.TotalMatches - s.HeadsCount

	s.WinRate = percent(s.WinCount, s.TotalMatches)
	s.HeadsRate = percent(s.HeadsCount, s.TotalMatches)
	s.FirstTurnRate = percent(s.FirstTurnCount, s.TotalMatches)
	s.HeadsWinRate = percent(headsWins, s.HeadsCount)
	s.TailsWinRate = percent(tailsWins, s.TailsCount)
	s.HeadsFirstTurnRate = percent(headsFirst, s.HeadsCount)
	s.TailsFirstTurnRate = percent(tailsFirst, s.TailsCount)
	return s
}

// RateSeries returns the rating of each record in order.
func RateSeries(records []model.Record) []Point {
	points := make([]Point, len(records))
	for i, rec := range records {
		points[i] = Point{Index: i + 1, Value: float64(rec.Rate), Label: rec.Date}
	}
	return points
}

// RankSeries returns the ladder ordinal of each record in order. Unknown
// ranks map to the lowest rung.
func RankSeries(records []model.Record) []Point {
	points := make([]Point, len(records))
	for i, rec := range records {
		points[i] = Point{Index: i + 1, Value: float64(rec.Rank.Ordinal()), Label: rec.Date}
	}
	return points
}

// Distribution counts opponent decks, most frequent first. Ties keep the
// order in which decks first appeared.
func Distribution(records []model.Record) []DeckCount {
	counts := []DeckCount{}
	index := map[string]int{}
	for _, rec := range records {
		deck := rec.OpponentDeck
		i, ok := index[deck]
		if !ok {
			i = len(counts)
			index[deck] = i
			counts = append(counts, DeckCount{Deck: deck})
		}
		counts[i].Count++
	}
	for i := range counts {
		counts[i].Share = percent(counts[i].Count, len(records))
	}
	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})
	return counts
}

func percent(n, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}
