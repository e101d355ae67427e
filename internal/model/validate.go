package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrValidationFailed marks a record rejected at entry time.
var ErrValidationFailed = errors.New("validation failed")

// ValidationError names the field that failed entry validation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Unwrap lets errors.Is match ErrValidationFailed.
func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}

// ValidateEntry checks the required fields in entry order: date, deck, coin,
// turn, result. The first failure is returned.
func ValidateEntry(r Record) error {
	if strings.TrimSpace(r.Date) == "" {
		return &ValidationError{Field: "date", Reason: "required"}
	}
	if _, err := time.Parse(DateLayout, strings.TrimSpace(r.Date)); err != nil {
		return &ValidationError{Field: "date", Reason: "expected YYYY/MM/DD"}
	}
	if strings.TrimSpace(r.Deck) == "" {
		return &ValidationError{Field: "deck", Reason: "required"}
	}
	if r.Coin == CoinUnset {
		return &ValidationError{Field: "coin", Reason: "choose heads or tails"}
	}
	if r.Turn == TurnUnset {
		return &ValidationError{Field: "turn", Reason: "choose first or second"}
	}
	if r.Result == ResultUnset {
		return &ValidationError{Field: "result", Reason: "choose win or loss"}
	}
	return nil
}
