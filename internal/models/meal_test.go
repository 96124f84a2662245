package models

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func TestParseDifficulty(t *testing.T) {
	tests := []struct {
		input   string
		want    Difficulty
		wantErr bool
	}{
		{"LOW", DifficultyLow, false},
		{"MED", DifficultyMed, false},
		{"HIGH", DifficultyHigh, false},
		{"low", "", true},
		{"Invalid", "", true},
		{"12", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDifficulty(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidInput) {
					t.Fatalf("expected ErrInvalidInput, got %v", err)
				}
				if !strings.Contains(err.Error(), "invalid difficulty level: "+tt.input+".") {
					t.Errorf("error %q does not echo input %q", err.Error(), tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    float64
		wantMsg string
	}{
		{name: "number", raw: "12.5", want: 12.5},
		{name: "quoted number", raw: `"3"`, want: 3},
		{name: "negative", raw: "-10", wantMsg: "invalid price: -10."},
		{name: "zero", raw: "0", wantMsg: "invalid price: 0."},
		{name: "non-numeric", raw: `"invalid"`, wantMsg: "invalid price: invalid."},
		{name: "nan", raw: "NaN", wantMsg: "invalid price: NaN."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePrice(tt.raw)
			if tt.wantMsg != "" {
				if !errors.Is(err, ErrInvalidInput) {
					t.Fatalf("expected ErrInvalidInput, got %v", err)
				}
				if !strings.Contains(err.Error(), tt.wantMsg) {
					t.Errorf("error %q does not contain %q", err.Error(), tt.wantMsg)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValidatePriceRejectsInfinity(t *testing.T) {
	if err := ValidatePrice(math.Inf(1)); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for +Inf, got %v", err)
	}
}

func TestParseOutcome(t *testing.T) {
	for _, valid := range []string{"win", "loss"} {
		if _, err := ParseOutcome(valid); err != nil {
			t.Errorf("ParseOutcome(%q) unexpected error: %v", valid, err)
		}
	}

	_, err := ParseOutcome("draw")
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if !strings.Contains(err.Error(), "draw") {
		t.Errorf("error %q does not echo the outcome", err.Error())
	}
}

func TestParseSortKey(t *testing.T) {
	if k, err := ParseSortKey("wins"); err != nil || k != SortByWins {
		t.Errorf("ParseSortKey(wins) = %v, %v", k, err)
	}
	if k, err := ParseSortKey("win_pct"); err != nil || k != SortByWinPct {
		t.Errorf("ParseSortKey(win_pct) = %v, %v", k, err)
	}

	_, err := ParseSortKey("invalid_sort")
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if !strings.Contains(err.Error(), "invalid sort_by parameter: invalid_sort") {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestWinPercentage(t *testing.T) {
	tests := []struct {
		wins, battles int
		want          float64
	}{
		{3, 5, 60},
		{5, 10, 50},
		{4, 8, 50},
		{0, 0, 0},
	}
	for _, tt := range tests {
		if got := WinPercentage(tt.wins, tt.battles); got != tt.want {
			t.Errorf("WinPercentage(%d, %d) = %v, want %v", tt.wins, tt.battles, got, tt.want)
		}
	}
}

func TestMealActive(t *testing.T) {
	m := Meal{Name: "Ramen"}
	if !m.Active() {
		t.Error("zero-value meal should be active")
	}
	m.State = StateDeleted
	if m.Active() {
		t.Error("deleted meal reported active")
	}
	if m.State.String() != "deleted" {
		t.Errorf("State.String() = %q", m.State.String())
	}
}
