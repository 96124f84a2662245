package models

import "fmt"

// SortKey selects the leaderboard ordering
type SortKey string

const (
	SortByWins   SortKey = "wins"
	SortByWinPct SortKey = "win_pct"
)

// ParseSortKey accepts "wins" or "win_pct".
func ParseSortKey(value string) (SortKey, error) {
	switch k := SortKey(value); k {
	case SortByWins, SortByWinPct:
		return k, nil
	}
	return "", fmt.Errorf("%w: invalid sort_by parameter: %s", ErrInvalidInput, value)
}

// LeaderboardEntry is an active meal with at least one battle, annotated with
// its win percentage (0-100).
type LeaderboardEntry struct {
	ID         int64      `json:"id"`
	Name       string     `json:"meal"`
	Cuisine    string     `json:"cuisine"`
	Price      float64    `json:"price"`
	Difficulty Difficulty `json:"difficulty"`
	Battles    int        `json:"battles"`
	Wins       int        `json:"wins"`
	WinPct     float64    `json:"win_pct"`
}

// WinPercentage returns 100 * wins / battles, or 0 when no battles were fought.
func WinPercentage(wins, battles int) float64 {
	if battles <= 0 {
		return 0
	}
	return 100 * float64(wins) / float64(battles)
}
