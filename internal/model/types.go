// Package model defines shared data structures.
package model

import (
	"strconv"
	"strings"
	"time"
)

// DateLayout is the day-precision date format used in the record file.
const DateLayout = "2006/01/02"

// DefaultOpponentDeck replaces a blank opponent deck.
const DefaultOpponentDeck = "unknown"

// Coin is the coin toss outcome.
type Coin string

// Coin values. The zero value is unset.
const (
	CoinUnset Coin = ""
	CoinHeads Coin = "heads"
	CoinTails Coin = "tails"
)

// Turn is the play order.
type Turn string

// Turn values. The zero value is unset.
const (
	TurnUnset  Turn = ""
	TurnFirst  Turn = "first"
	TurnSecond Turn = "second"
)

// Result is the match outcome.
type Result string

// Result values. The zero value is unset.
const (
	ResultUnset Result = ""
	ResultWin   Result = "win"
	ResultLoss  Result = "loss"
)

// Legacy tokens found in older Japanese record files.
var (
	legacyCoins   = map[string]Coin{"表": CoinHeads, "裏": CoinTails}
	legacyTurns   = map[string]Turn{"先攻": TurnFirst, "後攻": TurnSecond}
	legacyResults = map[string]Result{"勝": ResultWin, "敗": ResultLoss}
)

// Record is one played match.
type Record struct {
	Date         string
	Deck         string
	Coin         Coin
	Turn         Turn
	OpponentDeck string
	Result       Result
	Rank         Rank
	Rate         int
	Memo         string
}

// Day parses the record date. ok is false when the date is malformed.
func (r Record) Day() (time.Time, bool) {
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(r.Date), time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Normalize applies the entry defaults for blank opponent deck.
func (r Record) Normalize() Record {
	r.Date = strings.TrimSpace(r.Date)
	r.Deck = strings.TrimSpace(r.Deck)
	r.OpponentDeck = strings.TrimSpace(r.OpponentDeck)
	if r.OpponentDeck == "" {
		r.OpponentDeck = DefaultOpponentDeck
	}
	return r
}

// ParseCoin accepts canonical and legacy tokens. Empty input is unset.
func ParseCoin(s string) (Coin, bool) {
	s = strings.TrimSpace(s)
	switch Coin(strings.ToLower(s)) {
	case CoinUnset, CoinHeads, CoinTails:
		return Coin(strings.ToLower(s)), true
	}
	c, ok := legacyCoins[s]
	return c, ok
}

// ParseTurn accepts canonical and legacy tokens. Empty input is unset.
func ParseTurn(s string) (Turn, bool) {
	s = strings.TrimSpace(s)
	switch Turn(strings.ToLower(s)) {
	case TurnUnset, TurnFirst, TurnSecond:
		return Turn(strings.ToLower(s)), true
	}
	t, ok := legacyTurns[s]
	return t, ok
}

// ParseResult accepts canonical and legacy tokens. Empty input is unset.
func ParseResult(s string) (Result, bool) {
	s = strings.TrimSpace(s)
	switch Result(strings.ToLower(s)) {
	case ResultUnset, ResultWin, ResultLoss:
		return Result(strings.ToLower(s)), true
	}
	r, ok := legacyResults[s]
	return r, ok
}

// ParseRate converts rating input to an int. Full-width digits are folded to
// ASCII; anything that is not a plain digit string yields 0.
func ParseRate(s string) int {
	s = foldWidthDigits(strings.TrimSpace(s))
	if s == "" {
		return 0
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

func foldWidthDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '０' && r <= '９' {
			r = r - '０' + '0'
		}
		b.WriteRune(r)
	}
	return b.String()
}
