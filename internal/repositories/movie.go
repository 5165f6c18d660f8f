package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/flix/internal/models"
	"github.com/desertthunder/flix/internal/shared"
)

// MovieRepository caches the catalog for offline listing.
//
// The whole catalog is replaced on each refresh; the server's order is kept in the position column.
type MovieRepository struct {
	db *sql.DB
}

// NewMovieRepository creates a new MovieRepository with the given database connection
func NewMovieRepository(db *sql.DB) *MovieRepository {
	return &MovieRepository{db: db}
}

// ReplaceAll swaps the cached catalog for movies in a single transaction.
func (r *MovieRepository) ReplaceAll(movies []models.Movie) error {
	return withTx(r.db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM movies`); err != nil {
			return fmt.Errorf("failed to clear movie cache: %w", err)
		}

		stmt, err := tx.Prepare(`
			INSERT INTO movies (id, position, title, genre, director, data, cached_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare movie insert: %w", err)
		}
		defer stmt.Close()

		now := time.Now()
		for i, m := range movies {
			data, err := json.Marshal(m)
			if err != nil {
				return fmt.Errorf("failed to encode movie %s: %w", m.ID, err)
			}

			if _, err := stmt.Exec(m.ID, i, m.Title, m.Genre.Name, m.Director.Name, string(data), now); err != nil {
				return fmt.Errorf("failed to cache movie %s: %w", m.ID, err)
			}
		}
		return nil
	})
}

// List returns the cached catalog in its original order. An empty cache yields an empty slice.
func (r *MovieRepository) List() ([]models.Movie, error) {
	rows, err := r.db.Query(`SELECT data FROM movies ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to query movies: %w", err)
	}
	defer rows.Close()

	movies := []models.Movie{}
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			return nil, err
		}
		movies = append(movies, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating movies: %w", err)
	}
	return movies, nil
}

// Get retrieves a cached movie by id.
func (r *MovieRepository) Get(id string) (*models.Movie, error) {
	m, err := scanMovie(r.db.QueryRow(`SELECT data FROM movies WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrMovieNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Count returns the number of cached movies.
func (r *MovieRepository) Count() (int, error) {
	var n int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM movies`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count movies: %w", err)
	}
	return n, nil
}

// CachedAt returns when the catalog was last replaced; the zero time means never.
func (r *MovieRepository) CachedAt() (time.Time, error) {
	var ts time.Time
	err := r.db.QueryRow(`SELECT cached_at FROM movies ORDER BY position LIMIT 1`).Scan(&ts)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to read cache time: %w", err)
	}
	return ts, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMovie(row scanner) (models.Movie, error) {
	var data string
	if err := row.Scan(&data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Movie{}, err
		}
		return models.Movie{}, fmt.Errorf("failed to scan movie: %w", err)
	}

	var m models.Movie
	if err := json.Unmarshal([]byte(data), &m); err != nil {
		return models.Movie{}, fmt.Errorf("failed to decode cached movie: %w", err)
	}
	return m, nil
}
