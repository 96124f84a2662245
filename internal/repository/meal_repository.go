package repository

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/Lixing-Zhang/meal-max/backend/internal/models"
	"github.com/bits-and-blooms/bloom/v3"
)

const (
	// Sizing for the in-memory name index; the false positive rate grows
	// past this many names but lookups stay correct.
	nameIndexCapacity = 10000
	nameIndexFPRate   = 0.01
)

var (
	ErrMealNotFound  = errors.New("meal not found")
	ErrMealDeleted   = errors.New("meal has been deleted")
	ErrDuplicateMeal = errors.New("meal already exists")
)

// MealRepository defines the query contract for meal persistence.
// Implementations translate storage failures into the sentinels above and
// leave deletion policy to the caller: lookups return deleted rows with State
// set so the caller can reject them. MarkDeleted and IncrementStats only touch
// active rows and return ErrMealDeleted otherwise, so a concurrent delete can
// never be overwritten or counted.
type MealRepository interface {
	Create(ctx context.Context, meal models.Meal) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Meal, error)
	GetByName(ctx context.Context, name string) (*models.Meal, error)
	DeletionState(ctx context.Context, id int64) (models.MealState, error)
	MarkDeleted(ctx context.Context, id int64) error
	IncrementStats(ctx context.Context, id int64, won bool) error
	Leaderboard(ctx context.Context, sortBy models.SortKey) ([]models.LeaderboardEntry, error)
	Reset(ctx context.Context, schemaScript string) error
	Ping(ctx context.Context) error
}

// InMemoryMealRepository implements MealRepository with in-memory storage
type InMemoryMealRepository struct {
	mu     sync.RWMutex
	meals  map[int64]models.Meal
	nextID int64

	// names holds every name inserted since the last reset. The map is its
	// only writer, so a negative test skips the name scan.
	names *bloom.BloomFilter
}

// NewInMemoryMealRepository creates an empty in-memory meal repository
func NewInMemoryMealRepository() *InMemoryMealRepository {
	return &InMemoryMealRepository{
		meals:  make(map[int64]models.Meal),
		nextID: 1,
		names:  bloom.NewWithEstimates(nameIndexCapacity, nameIndexFPRate),
	}
}

// findByName scans for name. Callers hold r.mu.
func (r *InMemoryMealRepository) findByName(name string) (models.Meal, bool) {
	if !r.names.TestString(name) {
		return models.Meal{}, false
	}
	for _, meal := range r.meals {
		if meal.Name == name {
			return meal, true
		}
	}
	return models.Meal{}, false
}

// Create stores a new meal with zeroed statistics and returns its id.
// Names are unique across all rows, deleted or not, like the SQL schema.
func (r *InMemoryMealRepository) Create(ctx context.Context, meal models.Meal) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.findByName(meal.Name); exists {
		return 0, ErrDuplicateMeal
	}

	meal.ID = r.nextID
	meal.Battles = 0
	meal.Wins = 0
	meal.State = models.StateActive
	r.meals[meal.ID] = meal
	r.names.AddString(meal.Name)
	r.nextID++
	return meal.ID, nil
}

// GetByID returns a meal by its ID
func (r *InMemoryMealRepository) GetByID(ctx context.Context, id int64) (*models.Meal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	meal, exists := r.meals[id]
	if !exists {
		return nil, ErrMealNotFound
	}
	return &meal, nil
}

// GetByName returns a meal by its name
func (r *InMemoryMealRepository) GetByName(ctx context.Context, name string) (*models.Meal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	meal, exists := r.findByName(name)
	if !exists {
		return nil, ErrMealNotFound
	}
	return &meal, nil
}

// DeletionState returns whether the meal is active or soft deleted
func (r *InMemoryMealRepository) DeletionState(ctx context.Context, id int64) (models.MealState, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	meal, exists := r.meals[id]
	if !exists {
		return models.StateActive, ErrMealNotFound
	}
	return meal.State, nil
}

// MarkDeleted flags an active meal as deleted without removing it
func (r *InMemoryMealRepository) MarkDeleted(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	meal, exists := r.meals[id]
	if !exists {
		return ErrMealNotFound
	}
	if !meal.Active() {
		return ErrMealDeleted
	}
	meal.State = models.StateDeleted
	r.meals[id] = meal
	return nil
}

// IncrementStats adds one battle to an active meal, and one win when won is true
func (r *InMemoryMealRepository) IncrementStats(ctx context.Context, id int64, won bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	meal, exists := r.meals[id]
	if !exists {
		return ErrMealNotFound
	}
	if !meal.Active() {
		return ErrMealDeleted
	}
	meal.Battles++
	if won {
		meal.Wins++
	}
	r.meals[id] = meal
	return nil
}

// Leaderboard returns active meals with at least one battle, ordered by the
// sort key descending. Ties keep id order.
func (r *InMemoryMealRepository) Leaderboard(ctx context.Context, sortBy models.SortKey) ([]models.LeaderboardEntry, error) {
	r.mu.RLock()
	ids := make([]int64, 0, len(r.meals))
	for id, meal := range r.meals {
		if meal.Active() && meal.Battles > 0 {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	entries := make([]models.LeaderboardEntry, 0, len(ids))
	for _, id := range ids {
		meal := r.meals[id]
		entries = append(entries, models.LeaderboardEntry{
			ID:         meal.ID,
			Name:       meal.Name,
			Cuisine:    meal.Cuisine,
			Price:      meal.Price,
			Difficulty: meal.Difficulty,
			Battles:    meal.Battles,
			Wins:       meal.Wins,
			WinPct:     models.WinPercentage(meal.Wins, meal.Battles),
		})
	}
	r.mu.RUnlock()

	sort.SliceStable(entries, func(i, j int) bool {
		if sortBy == models.SortByWinPct {
			return entries[i].WinPct > entries[j].WinPct
		}
		return entries[i].Wins > entries[j].Wins
	})
	return entries, nil
}

// Reset drops every meal. The schema script only matters to SQL backends.
func (r *InMemoryMealRepository) Reset(ctx context.Context, schemaScript string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.meals = make(map[int64]models.Meal)
	r.names.ClearAll()
	r.nextID = 1
	return nil
}

// Ping always succeeds for in-memory storage
func (r *InMemoryMealRepository) Ping(ctx context.Context) error {
	return nil
}

var _ MealRepository = (*InMemoryMealRepository)(nil)
