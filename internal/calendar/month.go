// Package calendar provides month selection for the report views.
package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/eringiriri/YuGiOhMDAnalysis/internal/model"
)

// MonthLayout is the display and flag format for a month.
const MonthLayout = "2006/01"

// Month is a calendar month.
type Month struct {
	Year  int
	Month time.Month
}

// MonthOf returns the month containing t.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// ParseMonth parses "YYYY/MM". "YYYY-MM" is accepted as well.
func ParseMonth(s string) (Month, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), "-", "/")
	t, err := time.Parse(MonthLayout, s)
	if err != nil {
		return Month{}, fmt.Errorf("invalid month %q (expected YYYY/MM)", s)
	}
	return MonthOf(t), nil
}

// First returns midnight on the first day of the month.
func (m Month) First() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.Local)
}

// Before reports whether m is strictly earlier than other.
func (m Month) Before(other Month) bool {
	if m.Year != other.Year {
		return m.Year < other.Year
	}
	return m.Month < other.Month
}

// Contains reports whether t falls in the month.
func (m Month) Contains(t time.Time) bool {
	return t.Year() == m.Year && t.Month() == m.Month
}

func (m Month) String() string {
	return fmt.Sprintf("%04d/%02d", m.Year, int(m.Month))
}

// ByMonth returns the records dated in month, in their original order.
// Records with malformed dates are skipped.
func ByMonth(records []model.Record, month Month) []model.Record {
	out := make([]model.Record, 0, len(records))
	for _, rec := range records {
		day, ok := rec.Day()
		if !ok {
			continue
		}
		if month.Contains(day) {
			out = append(out, rec)
		}
	}
	return out
}
