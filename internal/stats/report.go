package stats

import (
	"errors"

	"github.com/eringiriri/YuGiOhMDAnalysis/internal/calendar"
	"github.com/eringiriri/YuGiOhMDAnalysis/internal/model"
	"github.com/eringiriri/YuGiOhMDAnalysis/internal/record"
)

// Loader supplies the full record set.
type Loader interface {
	LoadAll() ([]model.Record, error)
}

// Report contains precomputed data for one month of a report view.
type Report struct {
	Month        calendar.Month
	Records      []model.Record
	Summary      Summary
	Rates        []Point
	Ranks        []Point
	Decks        []DeckCount
	StoreMissing bool
}

// BuildReport loads the records, keeps the given month and aggregates them.
// A missing record file yields an empty report with StoreMissing set.
func BuildReport(src Loader, month calendar.Month) (Report, error) {
	all, err := src.LoadAll()
	missing := false
	if err != nil {
		if !errors.Is(err, record.ErrStoreUnavailable) {
			return Report{Month: month}, err
		}
		missing = true
	}
	records := calendar.ByMonth(all, month)
	return Report{
		Month:        month,
		Records:      records,
		Summary:      Summarize(records),
		Rates:        RateSeries(records),
		Ranks:        RankSeries(records),
		Decks:        Distribution(records),
		StoreMissing: missing,
	}, nil
}

// Empty reports whether the month has no matches.
func (r Report) Empty() bool {
	return len(r.Records) == 0
}
