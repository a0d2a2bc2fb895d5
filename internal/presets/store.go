package presets

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jask/rangepick/internal/database"
)

const dateLayout = "2006-01-02"

var (
	ErrEmptyName     = errors.New("preset name is required")
	ErrInvertedRange = errors.New("preset ends before it starts")
)

// Store persists named ranges in sqlite.
type Store struct {
	db  *sql.DB
	loc *time.Location
}

// NewStore returns a store reading dates back in loc.
func NewStore(db *sql.DB, loc *time.Location) *Store {
	if loc == nil {
		loc = time.Local
	}
	return &Store{db: db, loc: loc}
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) upsert(ctx context.Context, db execer, p Preset) (Preset, error) {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return Preset{}, ErrEmptyName
	}
	if p.To.Before(p.From) {
		return Preset{}, fmt.Errorf("%w: %s", ErrInvertedRange, p.Name)
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := database.Now()
	_, err := db.ExecContext(ctx, `
	INSERT INTO presets(id, name, from_date, to_date, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(name) DO UPDATE SET
		from_date=excluded.from_date,
		to_date=excluded.to_date,
		updated_at=excluded.updated_at;
	`, p.ID, p.Name, p.From.In(s.loc).Format(dateLayout), p.To.In(s.loc).Format(dateLayout), now, now)
	if err != nil {
		return Preset{}, fmt.Errorf("save preset %q: %w", p.Name, err)
	}
	return p, nil
}

// Save inserts p, or updates the range of the preset with the same name.
// The stored preset is returned with its id.
func (s *Store) Save(ctx context.Context, p Preset) (Preset, error) {
	p, err := s.upsert(ctx, s.db, p)
	if err != nil {
		return Preset{}, err
	}
	stored, err := s.ByName(ctx, p.Name)
	if err != nil {
		return Preset{}, err
	}
	if stored == nil {
		return Preset{}, fmt.Errorf("save preset %q: not found after write", p.Name)
	}
	return *stored, nil
}

// Import saves every preset in one transaction. Nothing is written if any
// preset is rejected.
func (s *Store) Import(ctx context.Context, items []Preset) error {
	return database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		for _, p := range items {
			if _, err := s.upsert(ctx, tx, p); err != nil {
				return err
			}
		}
		return nil
	})
}

const selectColumns = `SELECT id, name, from_date, to_date, use_count, last_used_at, created_at FROM presets`

// ByName looks a preset up case-insensitively. It returns nil when missing.
func (s *Store) ByName(ctx context.Context, name string) (*Preset, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+` WHERE name = ?`, strings.TrimSpace(name))
	p, err := s.scan(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// List returns presets most recently used first, then by name.
func (s *Store) List(ctx context.Context) ([]Preset, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+`
	ORDER BY last_used_at IS NULL, last_used_at DESC, name COLLATE NOCASE`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Preset
	for rows.Next() {
		p, err := s.scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Delete removes the preset with id. Missing ids are not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM presets WHERE id = ?`, id)
	return err
}

// Touch records a use of the preset with id.
func (s *Store) Touch(ctx context.Context, id string, at time.Time) error {
	_, err := s.db.ExecContext(ctx, `
	UPDATE presets SET use_count = use_count + 1, last_used_at = ? WHERE id = ?
	`, at.UTC().Truncate(time.Second), id)
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func (s *Store) scan(row scanner) (Preset, error) {
	var (
		p        Preset
		from, to string
		lastUsed sql.NullTime
	)
	if err := row.Scan(&p.ID, &p.Name, &from, &to, &p.UseCount, &lastUsed, &p.CreatedAt); err != nil {
		return Preset{}, err
	}
	var err error
	if p.From, err = time.ParseInLocation(dateLayout, from, s.loc); err != nil {
		return Preset{}, fmt.Errorf("preset %q from_date: %w", p.Name, err)
	}
	if p.To, err = time.ParseInLocation(dateLayout, to, s.loc); err != nil {
		return Preset{}, fmt.Errorf("preset %q to_date: %w", p.Name, err)
	}
	if lastUsed.Valid {
		t := lastUsed.Time
		p.LastUsedAt = &t
	}
	return p, nil
}
