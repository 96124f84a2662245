package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Lixing-Zhang/meal-max/backend/internal/battle"
	"github.com/Lixing-Zhang/meal-max/backend/internal/models"
	"github.com/Lixing-Zhang/meal-max/backend/internal/repository"
)

// statusFor maps domain errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrInvalidInput),
		errors.Is(err, battle.ErrCombatantsFull),
		errors.Is(err, battle.ErrNotEnoughCombatants):
		return http.StatusBadRequest
	case errors.Is(err, repository.ErrMealNotFound):
		return http.StatusNotFound
	case errors.Is(err, repository.ErrMealDeleted):
		return http.StatusGone
	case errors.Is(err, repository.ErrDuplicateMeal):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// rawString turns a raw JSON scalar into its text, dropping string quotes.
func rawString(raw []byte) string {
	return strings.Trim(strings.TrimSpace(string(raw)), `"`)
}
