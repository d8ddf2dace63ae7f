// internal/form/repository.go
//
// FormRelayer – form persistence (sqlx / MySQL).
//
// Context
//   Forms live in one row each: scalar columns for identity and status, and
//   two JSON columns for the field list and the settings overrides.  All
//   field-list reads go through schema.DecodeFields so legacy storage shapes
//   are normalized on the way in and only the canonical shape is ever
//   written back.
//
//------------------------------------------------------------------------------

package form

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/formrelayer/formrelayer/internal/routing"
	"github.com/formrelayer/formrelayer/internal/schema"
	"github.com/formrelayer/formrelayer/internal/settings"
)

// ErrNotFound is returned for unknown form IDs and slugs.
var ErrNotFound = errors.New("form not found")

// Repository wraps the form table.
type Repository struct {
	db *sqlx.DB
}

// NewRepository returns a form repository bound to db.
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// row mirrors the form table.
type row struct {
	ID        int64     `db:"id"`
	Slug      string    `db:"slug"`
	Title     string    `db:"title"`
	Status    string    `db:"status"`
	Fields    []byte    `db:"fields"`
	Settings  []byte    `db:"settings"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r row) toForm() (*Form, error) {
	fields, err := schema.DecodeFields(r.Fields)
	if err != nil {
		return nil, fmt.Errorf("form %d: %w", r.ID, err)
	}

	var ov settings.Overrides
	if len(r.Settings) > 0 {
		if err := json.Unmarshal(r.Settings, &ov); err != nil {
			return nil, fmt.Errorf("form %d: parse settings: %w", r.ID, err)
		}
	}

	return &Form{
		ID:        r.ID,
		Slug:      r.Slug,
		Title:     r.Title,
		Status:    r.Status,
		Fields:    fields,
		Settings:  ov,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}, nil
}

const selectCols = `id, slug, title, status, fields, settings, created_at, updated_at`

// Create inserts a new form and returns its ID.  The slug is derived from
// the title and suffixed until unique.
func (r *Repository) Create(ctx context.Context, f *Form) (int64, error) {
	if err := schema.Validate(f.Fields); err != nil {
		return 0, err
	}
	fieldsJSON, err := schema.EncodeFields(f.Fields)
	if err != nil {
		return 0, err
	}
	settingsJSON, err := json.Marshal(f.Settings)
	if err != nil {
		return 0, err
	}
	if f.Status == "" {
		f.Status = StatusDraft
	}

	slug, err := r.uniqueSlug(ctx, routing.MakeSlug(f.Title))
	if err != nil {
		return 0, err
	}

	const q = `
        INSERT INTO form (slug, title, status, fields, settings, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, NOW(), NOW())`
	res, err := r.db.ExecContext(ctx, q, slug, f.Title, f.Status, fieldsJSON, settingsJSON)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	f.ID = id
	f.Slug = slug
	return id, nil
}

// ByID fetches one form regardless of status.
func (r *Repository) ByID(ctx context.Context, id int64) (*Form, error) {
	var rec row
	err := r.db.GetContext(ctx, &rec, `SELECT `+selectCols+` FROM form WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return rec.toForm()
}

// BySlug fetches one non-trashed form by slug.
func (r *Repository) BySlug(ctx context.Context, slug string) (*Form, error) {
	var rec row
	const q = `SELECT ` + selectCols + ` FROM form WHERE slug = ? AND status <> 'trashed'`
	err := r.db.GetContext(ctx, &rec, q, slug)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return rec.toForm()
}

// List returns all forms, trashed ones excluded unless includeTrashed.
func (r *Repository) List(ctx context.Context, includeTrashed bool) ([]*Form, error) {
	q := `SELECT ` + selectCols + ` FROM form`
	if !includeTrashed {
		q += ` WHERE status <> 'trashed'`
	}
	q += ` ORDER BY updated_at DESC`

	var recs []row
	if err := r.db.SelectContext(ctx, &recs, q); err != nil {
		return nil, err
	}
	out := make([]*Form, 0, len(recs))
	for _, rec := range recs {
		f, err := rec.toForm()
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

// Update persists the builder's save payload: title, status, fields, and
// settings.  The slug is left alone so published URLs stay stable.
func (r *Repository) Update(ctx context.Context, f *Form) error {
	if err := schema.Validate(f.Fields); err != nil {
		return err
	}
	fieldsJSON, err := schema.EncodeFields(f.Fields)
	if err != nil {
		return err
	}
	settingsJSON, err := json.Marshal(f.Settings)
	if err != nil {
		return err
	}

	const q = `
        UPDATE form
        SET    title = ?, status = ?, fields = ?, settings = ?, updated_at = NOW()
        WHERE  id = ?`
	res, err := r.db.ExecContext(ctx, q, f.Title, f.Status, fieldsJSON, settingsJSON, f.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Trash soft-deletes a form.  There is deliberately no hard delete.
func (r *Repository) Trash(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE form SET status = 'trashed', updated_at = NOW() WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// uniqueSlug appends -2, -3, … until the candidate is free.
func (r *Repository) uniqueSlug(ctx context.Context, base string) (string, error) {
	candidate := base
	for i := 2; ; i++ {
		var n int
		err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM form WHERE slug = ?`, candidate)
		if err != nil {
			return "", err
		}
		if n == 0 {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}
