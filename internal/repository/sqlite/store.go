// Package sqlite provides a SQLite-backed meal repository.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Lixing-Zhang/meal-max/backend/internal/models"
	"github.com/Lixing-Zhang/meal-max/backend/internal/repository"
	"github.com/Lixing-Zhang/meal-max/backend/internal/repository/sqlite/migrations"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// Store persists meals in SQLite. The database file may be shared with
// other stores or processes, so every read goes to SQL.
type Store struct {
	sqlDB *sql.DB
}

// Open opens a SQLite meal store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	ctx := context.Background()
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(ctx, sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Create inserts one meal with zeroed statistics.
func (s *Store) Create(ctx context.Context, meal models.Meal) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	result, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO meals (meal, cuisine, price, difficulty)
		 VALUES (?, ?, ?, ?)`,
		meal.Name,
		meal.Cuisine,
		meal.Price,
		string(meal.Difficulty),
	)
	if err != nil {
		if isMealUniqueViolation(err) {
			return 0, repository.ErrDuplicateMeal
		}
		return 0, fmt.Errorf("create meal: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("create meal: %w", err)
	}
	return id, nil
}

const selectMealColumns = `SELECT id, meal, cuisine, price, difficulty, battles, wins, deleted FROM meals`

// GetByID returns one meal by id, including soft deleted rows.
func (s *Store) GetByID(ctx context.Context, id int64) (*models.Meal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	row := s.sqlDB.QueryRowContext(ctx, selectMealColumns+` WHERE id = ?`, id)
	return scanMeal(row)
}

// GetByName returns one meal by name, including soft deleted rows.
func (s *Store) GetByName(ctx context.Context, name string) (*models.Meal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	row := s.sqlDB.QueryRowContext(ctx, selectMealColumns+` WHERE meal = ?`, name)
	return scanMeal(row)
}

func scanMeal(row *sql.Row) (*models.Meal, error) {
	var (
		meal       models.Meal
		difficulty string
		deleted    bool
	)
	err := row.Scan(
		&meal.ID,
		&meal.Name,
		&meal.Cuisine,
		&meal.Price,
		&difficulty,
		&meal.Battles,
		&meal.Wins,
		&deleted,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrMealNotFound
		}
		return nil, fmt.Errorf("get meal: %w", err)
	}
	meal.Difficulty = models.Difficulty(difficulty)
	if deleted {
		meal.State = models.StateDeleted
	}
	return &meal, nil
}

// DeletionState reads the deleted flag for one meal.
func (s *Store) DeletionState(ctx context.Context, id int64) (models.MealState, error) {
	if err := ctx.Err(); err != nil {
		return models.StateActive, err
	}
	var deleted bool
	err := s.sqlDB.QueryRowContext(ctx, `SELECT deleted FROM meals WHERE id = ?`, id).Scan(&deleted)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.StateActive, repository.ErrMealNotFound
		}
		return models.StateActive, fmt.Errorf("get deletion state: %w", err)
	}
	if deleted {
		return models.StateDeleted, nil
	}
	return models.StateActive, nil
}

// MarkDeleted soft deletes one active meal.
func (s *Store) MarkDeleted(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	result, err := s.sqlDB.ExecContext(ctx, `UPDATE meals SET deleted = TRUE WHERE id = ? AND deleted = FALSE`, id)
	if err != nil {
		return fmt.Errorf("delete meal: %w", err)
	}
	return s.requireActiveRow(ctx, result, id, "delete meal")
}

// IncrementStats records one battle for an active meal, counting a win when
// won is true. Both counters change in a single statement.
func (s *Store) IncrementStats(ctx context.Context, id int64, won bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	query := `UPDATE meals SET battles = battles + 1 WHERE id = ? AND deleted = FALSE`
	if won {
		query = `UPDATE meals SET battles = battles + 1, wins = wins + 1 WHERE id = ? AND deleted = FALSE`
	}
	result, err := s.sqlDB.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("update meal stats: %w", err)
	}
	return s.requireActiveRow(ctx, result, id, "update meal stats")
}

// requireActiveRow tells a missing row from a deleted one when an update
// guarded on deleted = FALSE touched nothing.
func (s *Store) requireActiveRow(ctx context.Context, result sql.Result, id int64, op string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected > 0 {
		return nil
	}
	state, err := s.DeletionState(ctx, id)
	if err != nil {
		return err
	}
	if state == models.StateDeleted {
		return repository.ErrMealDeleted
	}
	return fmt.Errorf("%s: no row updated for meal %d", op, id)
}

// Leaderboard returns active meals with battles, ordered by sortBy descending.
func (s *Store) Leaderboard(ctx context.Context, sortBy models.SortKey) ([]models.LeaderboardEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var orderBy string
	switch sortBy {
	case models.SortByWins:
		orderBy = "wins"
	case models.SortByWinPct:
		orderBy = "win_pct"
	default:
		return nil, fmt.Errorf("%w: invalid sort_by parameter: %s", models.ErrInvalidInput, sortBy)
	}

	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT id, meal, cuisine, price, difficulty, battles, wins, (wins * 1.0 / battles) AS win_pct
		   FROM meals
		  WHERE deleted = false AND battles > 0
		  ORDER BY `+orderBy+` DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list leaderboard: %w", err)
	}
	defer rows.Close()

	entries := make([]models.LeaderboardEntry, 0)
	for rows.Next() {
		var (
			entry      models.LeaderboardEntry
			difficulty string
			ratio      float64
		)
		if err := rows.Scan(
			&entry.ID,
			&entry.Name,
			&entry.Cuisine,
			&entry.Price,
			&difficulty,
			&entry.Battles,
			&entry.Wins,
			&ratio,
		); err != nil {
			return nil, fmt.Errorf("scan leaderboard row: %w", err)
		}
		entry.Difficulty = models.Difficulty(difficulty)
		entry.WinPct = models.WinPercentage(entry.Wins, entry.Battles)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list leaderboard: %w", err)
	}
	return entries, nil
}

// Reset executes schemaScript in one transaction.
func (s *Store) Reset(ctx context.Context, schemaScript string) error {
	if strings.TrimSpace(schemaScript) == "" {
		return fmt.Errorf("schema script is empty")
	}
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin reset: %w", err)
	}
	if _, err := tx.ExecContext(ctx, schemaScript); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("exec schema script: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit reset: %w", err)
	}
	return nil
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.sqlDB.PingContext(ctx)
}

func isMealUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	message := strings.ToLower(err.Error())
	return strings.Contains(message, "unique constraint failed") &&
		strings.Contains(message, "meals.meal")
}

var _ repository.MealRepository = (*Store)(nil)
