package models

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidInput is wrapped by every validation failure so callers can
// match on it while the message still names the offending value.
var ErrInvalidInput = errors.New("invalid input")

// Difficulty is the preparation difficulty of a meal
type Difficulty string

const (
	DifficultyLow  Difficulty = "LOW"
	DifficultyMed  Difficulty = "MED"
	DifficultyHigh Difficulty = "HIGH"
)

// ParseDifficulty accepts exactly one of LOW, MED or HIGH.
func ParseDifficulty(value string) (Difficulty, error) {
	switch d := Difficulty(value); d {
	case DifficultyLow, DifficultyMed, DifficultyHigh:
		return d, nil
	}
	return "", fmt.Errorf("%w: invalid difficulty level: %s. must be 'LOW', 'MED', or 'HIGH'", ErrInvalidInput, value)
}

// MealState reports whether a meal is visible to active-record queries.
type MealState int

const (
	StateActive MealState = iota
	StateDeleted
)

func (s MealState) String() string {
	if s == StateDeleted {
		return "deleted"
	}
	return "active"
}

// Meal represents a catalog entry that can be entered into battles
type Meal struct {
	ID         int64      `json:"id"`
	Name       string     `json:"meal"`
	Cuisine    string     `json:"cuisine"`
	Price      float64    `json:"price"`
	Difficulty Difficulty `json:"difficulty"`
	Battles    int        `json:"battles"`
	Wins       int        `json:"wins"`
	State      MealState  `json:"-"`
}

// Active reports whether the meal has not been soft deleted.
func (m Meal) Active() bool {
	return m.State == StateActive
}

// ValidatePrice rejects zero, negative and non-finite prices.
func ValidatePrice(price float64) error {
	if math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
		return fmt.Errorf("%w: invalid price: %v. price must be a positive number", ErrInvalidInput, price)
	}
	return nil
}

// ParsePrice converts a raw price such as "12.5" or "\"12.5\"" and validates it.
func ParsePrice(raw string) (float64, error) {
	value := strings.Trim(strings.TrimSpace(raw), `"`)
	price, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid price: %s. price must be a positive number", ErrInvalidInput, value)
	}
	if err := ValidatePrice(price); err != nil {
		return 0, err
	}
	return price, nil
}

// Outcome is the result of a single battle for one combatant
type Outcome string

const (
	OutcomeWin  Outcome = "win"
	OutcomeLoss Outcome = "loss"
)

// ParseOutcome accepts "win" or "loss".
func ParseOutcome(value string) (Outcome, error) {
	switch o := Outcome(value); o {
	case OutcomeWin, OutcomeLoss:
		return o, nil
	}
	return "", fmt.Errorf("%w: invalid result: %s. expected 'win' or 'loss'", ErrInvalidInput, value)
}
