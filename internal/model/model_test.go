package model

import (
	"errors"
	"testing"
)

func TestParseRate(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"1500", 1500},
		{" 42 ", 42},
		{"１２３", 123},
		{"12a", 0},
		{"-5", 0},
		{"99999999999999999999999", 0},
	}
	for _, tc := range cases {
		if got := ParseRate(tc.in); got != tc.want {
			t.Fatalf("ParseRate(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestParseEnumsAcceptLegacyTokens(t *testing.T) {
	if c, ok := ParseCoin("表"); !ok || c != CoinHeads {
		t.Fatalf("expected legacy heads, got %q %v", c, ok)
	}
	if c, ok := ParseCoin("Tails"); !ok || c != CoinTails {
		t.Fatalf("expected tails, got %q %v", c, ok)
	}
	if tr, ok := ParseTurn("後攻"); !ok || tr != TurnSecond {
		t.Fatalf("expected legacy second, got %q %v", tr, ok)
	}
	if r, ok := ParseResult("勝"); !ok || r != ResultWin {
		t.Fatalf("expected legacy win, got %q %v", r, ok)
	}
	if r, ok := ParseResult(""); !ok || r != ResultUnset {
		t.Fatalf("expected unset result, got %q %v", r, ok)
	}
	if _, ok := ParseResult("draw"); ok {
		t.Fatalf("expected draw to be rejected")
	}
}

func TestRankStep(t *testing.T) {
	if got := Rank("R1").Step(-1); got != "R1" {
		t.Fatalf("expected clamp at bottom, got %s", got)
	}
	if got := Rank("M1").Step(1); got != "M1" {
		t.Fatalf("expected clamp at top, got %s", got)
	}
	if got := Rank("G1").Step(1); got != "P5" {
		t.Fatalf("expected P5, got %s", got)
	}
	if got := Rank("??").Step(3); got != LowestRank() {
		t.Fatalf("expected reset to lowest, got %s", got)
	}
	if len(Ranks) != 31 {
		t.Fatalf("expected 31 ranks, got %d", len(Ranks))
	}
	if Rank("M1").Ordinal() != 30 || Rank("nope").Ordinal() != 0 {
		t.Fatalf("unexpected ordinals")
	}
}

func TestValidateEntryNamesFirstMissingField(t *testing.T) {
	full := Record{Date: "2024/01/15", Deck: "Snake-Eye", Coin: CoinHeads, Turn: TurnFirst, Result: ResultWin}
	if err := ValidateEntry(full); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cases := []struct {
		field  string
		mutate func(*Record)
	}{
		{"date", func(r *Record) { r.Date = " " }},
		{"date", func(r *Record) { r.Date = "2024-01-15" }},
		{"deck", func(r *Record) { r.Deck = "" }},
		{"coin", func(r *Record) { r.Coin = CoinUnset }},
		{"turn", func(r *Record) { r.Turn = TurnUnset }},
		{"result", func(r *Record) { r.Result = ResultUnset }},
	}
	for _, tc := range cases {
		rec := full
		tc.mutate(&rec)
		err := ValidateEntry(rec)
		if !errors.Is(err, ErrValidationFailed) {
			t.Fatalf("expected validation error for %s, got %v", tc.field, err)
		}
		var verr *ValidationError
		if !errors.As(err, &verr) || verr.Field != tc.field {
			t.Fatalf("expected field %s, got %v", tc.field, err)
		}
	}
}

func TestNormalizeDefaultsOpponent(t *testing.T) {
	rec := Record{OpponentDeck: "  "}.Normalize()
	if rec.OpponentDeck != DefaultOpponentDeck {
		t.Fatalf("expected default opponent, got %q", rec.OpponentDeck)
	}
}
