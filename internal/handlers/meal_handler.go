package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Lixing-Zhang/meal-max/backend/internal/models"
	"github.com/Lixing-Zhang/meal-max/backend/internal/service"
	"github.com/go-chi/chi/v5"
)

// MealHandler handles meal catalog HTTP requests
type MealHandler struct {
	service *service.MealService
	logger  *slog.Logger
}

// NewMealHandler creates a new meal handler
func NewMealHandler(service *service.MealService, logger *slog.Logger) *MealHandler {
	return &MealHandler{
		service: service,
		logger:  logger,
	}
}

// CreateMealRequest is the body of POST /api/create-meal. Price and
// difficulty are kept raw so malformed values can be echoed back.
type CreateMealRequest struct {
	Meal       string          `json:"meal"`
	Cuisine    string          `json:"cuisine"`
	Price      json.RawMessage `json:"price"`
	Difficulty json.RawMessage `json:"difficulty"`
}

// CreateMeal handles POST /api/create-meal
func (h *MealHandler) CreateMeal(w http.ResponseWriter, r *http.Request) {
	var req CreateMealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("failed to decode create meal request", "error", err)
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.logger)
		return
	}
	if req.Meal == "" || req.Cuisine == "" || len(req.Price) == 0 || len(req.Difficulty) == 0 {
		WriteError(w, http.StatusBadRequest, "Invalid input: meal, cuisine, price, and difficulty are required", h.logger)
		return
	}

	price, err := models.ParsePrice(rawString(req.Price))
	if err != nil {
		WriteDomainError(w, err, h.logger)
		return
	}

	id, err := h.service.CreateMeal(r.Context(), req.Meal, req.Cuisine, price, rawString(req.Difficulty))
	if err != nil {
		WriteDomainError(w, err, h.logger)
		return
	}

	h.logger.Info("meal created", "meal_id", id, "meal", req.Meal)
	WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"status": "success",
		"id":     id,
		"meal":   req.Meal,
	}, h.logger)
}

// DeleteMeal handles DELETE /api/delete-meal/{mealID}
func (h *MealHandler) DeleteMeal(w http.ResponseWriter, r *http.Request) {
	id, ok := h.mealID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteMeal(r.Context(), id); err != nil {
		WriteDomainError(w, err, h.logger)
		return
	}

	h.logger.Info("meal deleted", "meal_id", id)
	WriteJSON(w, http.StatusOK, map[string]string{"status": "meal deleted"}, h.logger)
}

// GetMealByID handles GET /api/get-meal-by-id/{mealID}
func (h *MealHandler) GetMealByID(w http.ResponseWriter, r *http.Request) {
	id, ok := h.mealID(w, r)
	if !ok {
		return
	}

	meal, err := h.service.GetMealByID(r.Context(), id)
	if err != nil {
		WriteDomainError(w, err, h.logger)
		return
	}
	WriteJSON(w, http.StatusOK, meal, h.logger)
}

// GetMealByName handles GET /api/get-meal-by-name/{mealName}
func (h *MealHandler) GetMealByName(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "mealName")
	if name == "" {
		WriteError(w, http.StatusBadRequest, "Meal name is required", h.logger)
		return
	}

	meal, err := h.service.GetMealByName(r.Context(), name)
	if err != nil {
		WriteDomainError(w, err, h.logger)
		return
	}
	WriteJSON(w, http.StatusOK, meal, h.logger)
}

// ClearMeals handles DELETE /api/clear-meals
func (h *MealHandler) ClearMeals(w http.ResponseWriter, r *http.Request) {
	if err := h.service.ResetCatalog(r.Context()); err != nil {
		WriteDomainError(w, err, h.logger)
		return
	}

	h.logger.Info("meal catalog reset")
	WriteJSON(w, http.StatusOK, map[string]string{"status": "success"}, h.logger)
}

// Leaderboard handles GET /api/leaderboard?sort=wins|win_pct
func (h *MealHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	sortBy := r.URL.Query().Get("sort")
	if sortBy == "" {
		sortBy = string(models.SortByWins)
	}

	entries, err := h.service.Leaderboard(r.Context(), sortBy)
	if err != nil {
		WriteDomainError(w, err, h.logger)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":      "success",
		"leaderboard": entries,
	}, h.logger)
}

// mealID parses the {mealID} URL parameter, writing 400 when it is not an integer
func (h *MealHandler) mealID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "mealID")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		h.logger.Warn("invalid meal ID format", "mealID", raw, "error", err)
		WriteError(w, http.StatusBadRequest, "Invalid ID supplied", h.logger)
		return 0, false
	}
	return id, true
}
