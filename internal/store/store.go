package store

import (
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/rebeliceyang/lazytab/internal/filter"
	"github.com/rebeliceyang/lazytab/internal/styling"
)

//go:embed schema.sql
var schemaSQL string

// SavedFilter is a named filter tree kept in the library.
type SavedFilter struct {
	ID        string
	Name      string
	Expr      filter.Expr
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SavedStyleSet is a named style set kept in the library.
type SavedStyleSet struct {
	ID        string
	Set       styling.StyleSet
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Store persists named filters and style sets in a local sqlite
// database. Trees are stored in the filter codec's JSON form.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the library database at path.
func NewStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// SaveFilter stores a new named filter and returns it with its
// generated ID.
func (s *Store) SaveFilter(name string, expr filter.Expr) (SavedFilter, error) {
	data, err := filter.Marshal(expr)
	if err != nil {
		return SavedFilter{}, err
	}
	id := uuid.NewString()
	_, err = s.db.Exec(`
		INSERT INTO saved_filters (id, name, expr_json)
		VALUES (?, ?, ?)`,
		id, name, string(data),
	)
	if err != nil {
		return SavedFilter{}, err
	}
	return s.GetFilter(id)
}

// UpdateFilter replaces the tree of an existing saved filter.
func (s *Store) UpdateFilter(id string, expr filter.Expr) error {
	data, err := filter.Marshal(expr)
	if err != nil {
		return err
	}
	res, err := s.db.Exec(`
		UPDATE saved_filters
		SET expr_json = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		string(data), id,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("saved filter %s not found", id)
	}
	return nil
}

// GetFilter loads one saved filter by ID.
func (s *Store) GetFilter(id string) (SavedFilter, error) {
	row := s.db.QueryRow(`
		SELECT id, name, expr_json, created_at, updated_at
		FROM saved_filters WHERE id = ?`, id)
	return scanFilter(row)
}

// ListFilters returns every saved filter, most recently updated first.
func (s *Store) ListFilters() ([]SavedFilter, error) {
	rows, err := s.db.Query(`
		SELECT id, name, expr_json, created_at, updated_at
		FROM saved_filters
		ORDER BY updated_at DESC`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var filters []SavedFilter
	for rows.Next() {
		f, err := scanFilter(rows)
		if err != nil {
			return nil, err
		}
		filters = append(filters, f)
	}
	return filters, rows.Err()
}

// DeleteFilter removes a saved filter by ID.
func (s *Store) DeleteFilter(id string) error {
	_, err := s.db.Exec(`DELETE FROM saved_filters WHERE id = ?`, id)
	return err
}

// SaveStyleSet stores a style set and returns it with its generated
// ID.
func (s *Store) SaveStyleSet(set styling.StyleSet) (SavedStyleSet, error) {
	data, err := json.Marshal(set)
	if err != nil {
		return SavedStyleSet{}, err
	}
	id := uuid.NewString()
	_, err = s.db.Exec(`
		INSERT INTO style_sets (id, name, set_json)
		VALUES (?, ?, ?)`,
		id, set.Name, string(data),
	)
	if err != nil {
		return SavedStyleSet{}, err
	}
	return s.GetStyleSet(id)
}

// GetStyleSet loads one style set by ID.
func (s *Store) GetStyleSet(id string) (SavedStyleSet, error) {
	row := s.db.QueryRow(`
		SELECT id, set_json, created_at, updated_at
		FROM style_sets WHERE id = ?`, id)

	var (
		saved   SavedStyleSet
		setJSON string
		created string
		updated string
	)
	if err := row.Scan(&saved.ID, &setJSON, &created, &updated); err != nil {
		return SavedStyleSet{}, err
	}
	if err := json.Unmarshal([]byte(setJSON), &saved.Set); err != nil {
		return SavedStyleSet{}, err
	}
	saved.CreatedAt, _ = time.Parse("2006-01-02 15:04:05", created)
	saved.UpdatedAt, _ = time.Parse("2006-01-02 15:04:05", updated)
	return saved, nil
}

// ListStyleSets returns every saved style set, most recently updated
// first.
func (s *Store) ListStyleSets() ([]SavedStyleSet, error) {
	rows, err := s.db.Query(`SELECT id FROM style_sets ORDER BY updated_at DESC`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sets := make([]SavedStyleSet, 0, len(ids))
	for _, id := range ids {
		set, err := s.GetStyleSet(id)
		if err != nil {
			return nil, err
		}
		sets = append(sets, set)
	}
	return sets, nil
}

// DeleteStyleSet removes a style set by ID.
func (s *Store) DeleteStyleSet(id string) error {
	_, err := s.db.Exec(`DELETE FROM style_sets WHERE id = ?`, id)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFilter(row rowScanner) (SavedFilter, error) {
	var (
		f        SavedFilter
		exprJSON string
		created  string
		updated  string
	)
	if err := row.Scan(&f.ID, &f.Name, &exprJSON, &created, &updated); err != nil {
		return SavedFilter{}, err
	}
	expr, err := filter.Unmarshal([]byte(exprJSON))
	if err != nil {
		return SavedFilter{}, err
	}
	f.Expr = expr
	f.CreatedAt, _ = time.Parse("2006-01-02 15:04:05", created)
	f.UpdatedAt, _ = time.Parse("2006-01-02 15:04:05", updated)
	return f, nil
}
