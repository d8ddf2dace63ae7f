// internal/submission/repository.go
//
// FormRelayer – submission persistence (sqlx / MySQL).
//
// Context
//   One row per submission: scalar metadata columns plus one JSON column for
//   the field values.  Earlier releases stored the values wrapped in a
//   `_submission_data` envelope and referenced the form as `parent_form_id`
//   inside that blob; decodeData unwraps both shapes on read so old rows keep
//   working.  Writes always produce the flat canonical map.
//
//------------------------------------------------------------------------------

package submission

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
)

// ErrNotFound is returned for unknown submission IDs.
var ErrNotFound = errors.New("submission not found")

// Repository wraps the submission table.
type Repository struct {
	db *sqlx.DB
}

// NewRepository returns a submission repository bound to db.
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// row mirrors the submission table.
type row struct {
	ID          int64     `db:"id"`
	FormID      int64     `db:"form_id"`
	Title       string    `db:"title"`
	Data        []byte    `db:"data"`
	Read        bool      `db:"is_read"`
	IP          string    `db:"ip"`
	UserAgent   string    `db:"user_agent"`
	Country     string    `db:"country"`
	SubmittedAt time.Time `db:"submitted_at"`
}

func (r row) toSubmission() (*Submission, error) {
	data, err := decodeData(r.Data)
	if err != nil {
		return nil, fmt.Errorf("submission %d: %w", r.ID, err)
	}
	return &Submission{
		ID:          r.ID,
		FormID:      r.FormID,
		Title:       r.Title,
		Data:        data,
		Read:        r.Read,
		IP:          r.IP,
		UserAgent:   r.UserAgent,
		Country:     r.Country,
		SubmittedAt: r.SubmittedAt,
	}, nil
}

// decodeData parses the data column, tolerating the legacy shapes.  Old rows
// wrap the map as {"_submission_data": {...}} and may carry a stray
// "parent_form_id" key alongside; array values from old multi-value inputs
// are joined into the canonical comma-separated string.
func decodeData(raw []byte) (map[string]string, error) {
	if len(raw) == 0 {
		return map[string]string{}, nil
	}

	var loose map[string]json.RawMessage
	if err := json.Unmarshal(raw, &loose); err != nil {
		return nil, fmt.Errorf("parse data: %w", err)
	}
	if inner, ok := loose["_submission_data"]; ok {
		return decodeData(inner)
	}

	out := make(map[string]string, len(loose))
	for k, v := range loose {
		if k == "parent_form_id" {
			continue
		}
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			out[k] = s
			continue
		}
		var list []string
		if err := json.Unmarshal(v, &list); err == nil {
			out[k] = strings.Join(list, ", ")
			continue
		}
		// Numbers, booleans: keep the raw literal.
		out[k] = string(v)
	}
	return out, nil
}

const selectCols = `id, form_id, title, data, is_read, ip, user_agent, country, submitted_at`

// Insert stores a new submission and fills in its ID.
func (r *Repository) Insert(ctx context.Context, s *Submission) error {
	dataJSON, err := json.Marshal(s.Data)
	if err != nil {
		return err
	}
	const q = `
        INSERT INTO submission (form_id, title, data, is_read, ip, user_agent, country, submitted_at)
        VALUES (?, ?, ?, 0, ?, ?, ?, NOW())`
	res, err := r.db.ExecContext(ctx, q, s.FormID, s.Title, dataJSON, s.IP, s.UserAgent, s.Country)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = id
	return nil
}

// ByID fetches one submission.
func (r *Repository) ByID(ctx context.Context, id int64) (*Submission, error) {
	var rec row
	err := r.db.GetContext(ctx, &rec, `SELECT `+selectCols+` FROM submission WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return rec.toSubmission()
}

// ListByForm returns one page of a form's submissions, newest first.
func (r *Repository) ListByForm(ctx context.Context, formID int64, limit, offset int) ([]*Submission, error) {
	if limit <= 0 {
		limit = 50
	}
	const q = `SELECT ` + selectCols + ` FROM submission
        WHERE form_id = ? ORDER BY submitted_at DESC LIMIT ? OFFSET ?`

	var recs []row
	if err := r.db.SelectContext(ctx, &recs, q, formID, limit, offset); err != nil {
		return nil, err
	}
	out := make([]*Submission, 0, len(recs))
	for _, rec := range recs {
		s, err := rec.toSubmission()
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// UnreadCount returns the number of unread submissions for a form.
func (r *Repository) UnreadCount(ctx context.Context, formID int64) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n,
		`SELECT COUNT(*) FROM submission WHERE form_id = ? AND is_read = 0`, formID)
	return n, err
}

// SetRead flips the read flag.
func (r *Repository) SetRead(ctx context.Context, id int64, read bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE submission SET is_read = ? WHERE id = ?`, read, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
