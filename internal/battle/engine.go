// Package battle stages two meals and resolves a score-weighted battle
// between them.
package battle

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"sync"

	"github.com/Lixing-Zhang/meal-max/backend/internal/models"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var (
	ErrCombatantsFull      = errors.New("combatant list is full, cannot add more combatants")
	ErrNotEnoughCombatants = errors.New("two combatants must be prepped for a battle")
)

const capacity = 2

var tracer = otel.Tracer("github.com/Lixing-Zhang/meal-max/backend/internal/battle")

// ResultRecorder persists one battle outcome for one meal.
type ResultRecorder interface {
	RecordResult(ctx context.Context, id int64, outcome models.Outcome) error
}

// Engine holds at most two staged combatants. All methods serialize on one
// mutex so a resolution never overlaps staging changes.
type Engine struct {
	mu       sync.Mutex
	slots    [capacity]models.Meal
	count    int
	recorder ResultRecorder
	random   RandomSource
	log      *slog.Logger
}

// NewEngine creates an engine with an empty staging area
func NewEngine(recorder ResultRecorder, random RandomSource, log *slog.Logger) *Engine {
	return &Engine{
		recorder: recorder,
		random:   random,
		log:      log,
	}
}

// Stage appends a combatant. It fails with ErrCombatantsFull when two are
// already staged.
func (e *Engine) Stage(meal models.Meal) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.count == capacity {
		return ErrCombatantsFull
	}
	e.slots[e.count] = meal
	e.count++
	e.log.Info("combatant staged", "meal", meal.Name, "staged", e.count)
	return nil
}

// Clear empties the staging area.
func (e *Engine) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.slots = [capacity]models.Meal{}
	e.count = 0
	e.log.Info("combatants cleared")
}

// Staged returns a copy of the staged combatants in staging order.
func (e *Engine) Staged() []models.Meal {
	e.mu.Lock()
	defer e.mu.Unlock()

	staged := make([]models.Meal, e.count)
	copy(staged, e.slots[:e.count])
	return staged
}

// Resolve fights the two staged combatants and returns the winner's name.
//
// The normalized delta |score1 - score2| / 100 is compared against one
// random draw r. When delta > r the higher scorer wins, otherwise the other
// combatant does, so equal scores always go to the first staged meal. Both
// results are recorded, winner first, before the loser leaves the staging
// area; a recording failure leaves both combatants staged.
func (e *Engine) Resolve(ctx context.Context) (winnerName string, err error) {
	ctx, span := tracer.Start(ctx, "Engine.Resolve")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.count != capacity {
		return "", ErrNotEnoughCombatants
	}

	first, second := e.slots[0], e.slots[1]
	score1, score2 := Score(first), Score(second)
	delta := math.Abs(score1-score2) / 100
	r := e.random.Float64()

	winnerSlot := 0
	if delta > r {
		if score1 <= score2 {
			winnerSlot = 1
		}
	} else if score1 > score2 {
		winnerSlot = 1
	}
	winner, loser := e.slots[winnerSlot], e.slots[1-winnerSlot]

	battleID := uuid.New().String()
	span.SetAttributes(
		attribute.String("battle.id", battleID),
		attribute.Float64("battle.delta", delta),
		attribute.Float64("battle.draw", r),
		attribute.String("battle.winner", winner.Name),
	)

	// Once the draw is made both results are written, even if the caller
	// goes away between them.
	recordCtx := context.WithoutCancel(ctx)
	if err := e.recorder.RecordResult(recordCtx, winner.ID, models.OutcomeWin); err != nil {
		e.log.Error("failed to record battle win", "battle_id", battleID, "meal_id", winner.ID, "error", err)
		return "", err
	}
	if err := e.recorder.RecordResult(recordCtx, loser.ID, models.OutcomeLoss); err != nil {
		e.log.Error("failed to record battle loss", "battle_id", battleID, "meal_id", loser.ID, "error", err)
		return "", err
	}

	e.slots = [capacity]models.Meal{winner}
	e.count = 1

	e.log.Info("battle resolved",
		"battle_id", battleID,
		"score_1", score1,
		"score_2", score2,
		"delta", delta,
		"draw", r,
		"winner", winner.Name,
		"loser", loser.Name,
	)
	return winner.Name, nil
}
