package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/Lixing-Zhang/meal-max/backend/internal/models"
	"github.com/Lixing-Zhang/meal-max/backend/internal/repository"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/Lixing-Zhang/meal-max/backend/internal/service")

// MealService owns meal validation and the rule that deleted meals are
// invisible to every lookup, update and leaderboard query.
type MealService struct {
	repo             repository.MealRepository
	schemaScriptPath string
}

// NewMealService creates a new meal service. schemaScriptPath is the SQL
// script ResetCatalog executes.
func NewMealService(repo repository.MealRepository, schemaScriptPath string) *MealService {
	return &MealService{
		repo:             repo,
		schemaScriptPath: schemaScriptPath,
	}
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// CreateMeal validates and inserts a new meal, returning its id
func (s *MealService) CreateMeal(ctx context.Context, name, cuisine string, price float64, difficulty string) (id int64, err error) {
	ctx, span := tracer.Start(ctx, "MealService.CreateMeal", trace.WithAttributes(attribute.String("meal.name", name)))
	defer func() { endSpan(span, err) }()

	if err := models.ValidatePrice(price); err != nil {
		return 0, err
	}
	level, err := models.ParseDifficulty(difficulty)
	if err != nil {
		return 0, err
	}
	if strings.TrimSpace(name) == "" {
		return 0, fmt.Errorf("%w: meal name is required", models.ErrInvalidInput)
	}
	if strings.TrimSpace(cuisine) == "" {
		return 0, fmt.Errorf("%w: cuisine is required", models.ErrInvalidInput)
	}

	id, err = s.repo.Create(ctx, models.Meal{
		Name:       name,
		Cuisine:    cuisine,
		Price:      price,
		Difficulty: level,
	})
	if errors.Is(err, repository.ErrDuplicateMeal) {
		return 0, fmt.Errorf("%w: meal with name '%s' already exists", repository.ErrDuplicateMeal, name)
	}
	return id, err
}

// DeleteMeal soft deletes an active meal
func (s *MealService) DeleteMeal(ctx context.Context, id int64) (err error) {
	ctx, span := tracer.Start(ctx, "MealService.DeleteMeal", trace.WithAttributes(attribute.Int64("meal.id", id)))
	defer func() { endSpan(span, err) }()

	if err := s.ensureActive(ctx, id); err != nil {
		return err
	}
	if err := s.repo.MarkDeleted(ctx, id); err != nil {
		return s.describe(err, id)
	}
	return nil
}

// GetMealByID returns an active meal by id
func (s *MealService) GetMealByID(ctx context.Context, id int64) (_ *models.Meal, err error) {
	ctx, span := tracer.Start(ctx, "MealService.GetMealByID", trace.WithAttributes(attribute.Int64("meal.id", id)))
	defer func() { endSpan(span, err) }()

	meal, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.describe(err, id)
	}
	if !meal.Active() {
		return nil, s.describe(repository.ErrMealDeleted, id)
	}
	return meal, nil
}

// GetMealByName returns an active meal by name
func (s *MealService) GetMealByName(ctx context.Context, name string) (_ *models.Meal, err error) {
	ctx, span := tracer.Start(ctx, "MealService.GetMealByName", trace.WithAttributes(attribute.String("meal.name", name)))
	defer func() { endSpan(span, err) }()

	meal, err := s.repo.GetByName(ctx, name)
	if errors.Is(err, repository.ErrMealNotFound) {
		return nil, fmt.Errorf("%w: meal with name '%s' not found", repository.ErrMealNotFound, name)
	}
	if err != nil {
		return nil, err
	}
	if !meal.Active() {
		return nil, fmt.Errorf("%w: meal with name '%s' has been deleted", repository.ErrMealDeleted, name)
	}
	return meal, nil
}

// RecordResult adds one battle to an active meal, and one win when outcome
// is a win. The update itself refuses deleted rows, so a delete racing the
// state check is still reported as deleted.
func (s *MealService) RecordResult(ctx context.Context, id int64, outcome models.Outcome) (err error) {
	ctx, span := tracer.Start(ctx, "MealService.RecordResult", trace.WithAttributes(
		attribute.Int64("meal.id", id),
		attribute.String("battle.outcome", string(outcome)),
	))
	defer func() { endSpan(span, err) }()

	if _, err := models.ParseOutcome(string(outcome)); err != nil {
		return err
	}
	if err := s.ensureActive(ctx, id); err != nil {
		return err
	}
	if err := s.repo.IncrementStats(ctx, id, outcome == models.OutcomeWin); err != nil {
		return s.describe(err, id)
	}
	return nil
}

// Leaderboard returns active meals with battles sorted by sortBy descending
func (s *MealService) Leaderboard(ctx context.Context, sortBy string) (_ []models.LeaderboardEntry, err error) {
	ctx, span := tracer.Start(ctx, "MealService.Leaderboard", trace.WithAttributes(attribute.String("leaderboard.sort", sortBy)))
	defer func() { endSpan(span, err) }()

	key, err := models.ParseSortKey(sortBy)
	if err != nil {
		return nil, err
	}
	return s.repo.Leaderboard(ctx, key)
}

// ResetCatalog rebuilds the meal schema from the configured script,
// discarding every meal.
func (s *MealService) ResetCatalog(ctx context.Context) (err error) {
	ctx, span := tracer.Start(ctx, "MealService.ResetCatalog")
	defer func() { endSpan(span, err) }()

	script, err := os.ReadFile(s.schemaScriptPath)
	if err != nil {
		return fmt.Errorf("read schema script %s: %w", s.schemaScriptPath, err)
	}
	return s.repo.Reset(ctx, string(script))
}

// Ping checks that storage is reachable
func (s *MealService) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

func (s *MealService) ensureActive(ctx context.Context, id int64) error {
	state, err := s.repo.DeletionState(ctx, id)
	if err != nil {
		return s.describe(err, id)
	}
	if state == models.StateDeleted {
		return s.describe(repository.ErrMealDeleted, id)
	}
	return nil
}

// describe attaches the meal id to not-found and deleted sentinels.
func (s *MealService) describe(err error, id int64) error {
	switch {
	case errors.Is(err, repository.ErrMealNotFound):
		return fmt.Errorf("%w: meal with ID %d not found", repository.ErrMealNotFound, id)
	case errors.Is(err, repository.ErrMealDeleted):
		return fmt.Errorf("%w: meal with ID %d has been deleted", repository.ErrMealDeleted, id)
	}
	return err
}
