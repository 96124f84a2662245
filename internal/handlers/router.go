package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/Lixing-Zhang/meal-max/backend/internal/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter wires middleware and every API route
func NewRouter(log *slog.Logger, health *HealthHandler, meals *MealHandler, battles *BattleHandler) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", health.ServeHTTP)
		r.Get("/db-check", health.DBCheck)

		// Meal catalog
		r.Post("/create-meal", meals.CreateMeal)
		r.Delete("/delete-meal/{mealID}", meals.DeleteMeal)
		r.Get("/get-meal-by-id/{mealID}", meals.GetMealByID)
		r.Get("/get-meal-by-name/{mealName}", meals.GetMealByName)
		r.Delete("/clear-meals", meals.ClearMeals)
		r.Get("/leaderboard", meals.Leaderboard)

		// Battles
		r.Post("/prep-combatant", battles.PrepCombatant)
		r.Post("/clear-combatants", battles.ClearCombatants)
		r.Get("/get-combatants", battles.GetCombatants)
		r.Get("/battle", battles.Battle)
	})

	return r
}
