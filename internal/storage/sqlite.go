package storage

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3"
	"github.com/meur/civatlas/internal/models"
)

//go:embed migrations/*.sql
var migrations embed.FS

// ErrNotFound is returned when a category has no stored dataset
var ErrNotFound = errors.New("dataset not found")

// Store handles all database operations
type Store struct {
	db *sql.DB
}

// New creates a new Store with SQLite
func New(dbPath string) (*Store, error) {
	dsn := dbPath + "?_foreign_keys=on&_journal_mode=WAL"
	if err := migrateUp(dsn); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// migrateUp applies the embedded migrations on a dedicated connection,
// which the migrate driver closes when done.
func migrateUp(dsn string) error {
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return err
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return err
	}
	driver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		db.Close()
		return err
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		db.Close()
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// --- Categories ---

// Categories returns every stored category with its item count
func (s *Store) Categories(ctx context.Context) ([]models.CategoryInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.title, COUNT(e.id)
		FROM categories c LEFT JOIN entities e ON e.category_id = c.id
		GROUP BY c.id, c.title
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stored := map[models.Category]models.CategoryInfo{}
	for rows.Next() {
		var info models.CategoryInfo
		if err := rows.Scan(&info.ID, &info.Title, &info.ItemCount); err != nil {
			return nil, err
		}
		stored[info.ID] = info
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Tab order, not storage order.
	var out []models.CategoryInfo
	for _, c := range models.Categories() {
		if info, ok := stored[c]; ok {
			info.Label = c.Label()
			out = append(out, info)
		}
	}
	return out, nil
}

// --- Datasets ---

// Fetch returns the dataset of a category with items in supplied order
func (s *Store) Fetch(ctx context.Context, c models.Category) (*models.Dataset, error) {
	var ds models.Dataset
	var sortOptions string
	err := s.db.QueryRowContext(ctx, `
		SELECT title, default_sort, sort_options FROM categories WHERE id = ?
	`, string(c)).Scan(&ds.Meta.Title, &ds.Meta.DefaultSort, &sortOptions)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, c)
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(sortOptions), &ds.SortOptions); err != nil {
		return nil, fmt.Errorf("decode sort options of %s: %w", c, err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT record FROM entities WHERE category_id = ? ORDER BY position
	`, string(c))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ds.Items = []models.Entity{}
	for rows.Next() {
		var record string
		if err := rows.Scan(&record); err != nil {
			return nil, err
		}
		var e models.Entity
		if err := json.Unmarshal([]byte(record), &e); err != nil {
			return nil, fmt.Errorf("decode entity of %s: %w", c, err)
		}
		ds.Items = append(ds.Items, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &ds, nil
}

// PutDataset replaces the stored dataset of a category in one transaction
func (s *Store) PutDataset(ctx context.Context, c models.Category, ds *models.Dataset) error {
	if err := ds.Validate(); err != nil {
		return err
	}
	sortOptions, err := json.Marshal(ds.SortOptions)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO categories (id, title, default_sort, sort_options, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			default_sort = excluded.default_sort,
			sort_options = excluded.sort_options,
			updated_at = excluded.updated_at
	`, string(c), ds.Meta.Title, ds.Meta.DefaultSort, string(sortOptions), time.Now())
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM entities WHERE category_id = ?`, string(c)); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO entities (category_id, id, position, name, record)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, e := range ds.Items {
		record, err := json.Marshal(e)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, string(c), e.ID, i, e.Name, string(record)); err != nil {
			return fmt.Errorf("insert %s/%s: %w", c, e.ID, err)
		}
	}

	return tx.Commit()
}

// DeleteDataset removes a category and its entities
func (s *Store) DeleteDataset(ctx context.Context, c models.Category) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, string(c))
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, c)
	}
	return nil
}
