package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/Lixing-Zhang/meal-max/backend/internal/battle"
	"github.com/Lixing-Zhang/meal-max/backend/internal/models"
	"github.com/Lixing-Zhang/meal-max/backend/internal/service"
)

// BattleHandler handles combatant staging and battle HTTP requests
type BattleHandler struct {
	meals  *service.MealService
	engine *battle.Engine
	log    *slog.Logger
}

// NewBattleHandler creates a new battle handler
func NewBattleHandler(meals *service.MealService, engine *battle.Engine, log *slog.Logger) *BattleHandler {
	return &BattleHandler{
		meals:  meals,
		engine: engine,
		log:    log,
	}
}

// PrepCombatantRequest names the meal to stage
type PrepCombatantRequest struct {
	Meal string `json:"meal"`
}

// PrepCombatant handles POST /api/prep-combatant
func (h *BattleHandler) PrepCombatant(w http.ResponseWriter, r *http.Request) {
	var req PrepCombatantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Warn("failed to decode prep combatant request", "error", err)
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.log)
		return
	}
	if req.Meal == "" {
		WriteError(w, http.StatusBadRequest, "You must name a combatant", h.log)
		return
	}

	meal, err := h.meals.GetMealByName(r.Context(), req.Meal)
	if err != nil {
		WriteDomainError(w, err, h.log)
		return
	}
	if err := h.engine.Stage(*meal); err != nil {
		WriteDomainError(w, err, h.log)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":     "combatant prepared",
		"combatants": h.engine.Staged(),
	}, h.log)
}

// ClearCombatants handles POST /api/clear-combatants
func (h *BattleHandler) ClearCombatants(w http.ResponseWriter, r *http.Request) {
	h.engine.Clear()
	WriteJSON(w, http.StatusOK, map[string]string{"status": "combatants cleared"}, h.log)
}

// GetCombatants handles GET /api/get-combatants
func (h *BattleHandler) GetCombatants(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string][]models.Meal{
		"combatants": h.engine.Staged(),
	}, h.log)
}

// Battle handles GET /api/battle
func (h *BattleHandler) Battle(w http.ResponseWriter, r *http.Request) {
	winner, err := h.engine.Resolve(r.Context())
	if err != nil {
		WriteDomainError(w, err, h.log)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"status": "battle complete",
		"winner": winner,
	}, h.log)
}
