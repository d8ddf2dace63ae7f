// internal/submission/repository_test.go
//
// Repository tests using sqlmock, plus the legacy data decoder.
//
// Run: go test ./internal/submission -v

package submission

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

func subColumns() []string {
	return []string{"id", "form_id", "title", "data", "is_read", "ip", "user_agent", "country", "submitted_at"}
}

func TestDecodeDataLegacyShapes(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want map[string]string
	}{
		{
			name: "canonical flat map",
			raw:  `{"name":"Ada","email":"ada@example.com"}`,
			want: map[string]string{"name": "Ada", "email": "ada@example.com"},
		},
		{
			name: "legacy envelope with stray form reference",
			raw:  `{"_submission_data":{"name":"Ada","parent_form_id":7}}`,
			want: map[string]string{"name": "Ada"},
		},
		{
			name: "legacy array values joined",
			raw:  `{"toppings":["Cheese","Olives"]}`,
			want: map[string]string{"toppings": "Cheese, Olives"},
		},
		{
			name: "empty column",
			raw:  "",
			want: map[string]string{},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := decodeData([]byte(tc.raw))
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestByIDUnwrapsLegacyRow(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT id, form_id, title, data, is_read, ip, user_agent, country, submitted_at FROM submission WHERE id = ?`,
	)).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows(subColumns()).
			AddRow(int64(3), int64(7), "ada@example.com",
				[]byte(`{"_submission_data":{"email":"ada@example.com"}}`),
				false, "1.2.3.4", "agent", "GB", time.Now()))

	s, err := NewRepository(db).ByID(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", s.Data["email"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetReadUnknownID(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectExec(regexp.QuoteMeta(
		`UPDATE submission SET is_read = ? WHERE id = ?`,
	)).
		WithArgs(true, int64(404)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := NewRepository(db).SetRead(context.Background(), 404, true)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInsertAssignsID(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectExec(regexp.QuoteMeta(
		`INSERT INTO submission (form_id, title, data, is_read, ip, user_agent, country, submitted_at)
        VALUES (?, ?, ?, 0, ?, ?, ?, NOW())`,
	)).
		WithArgs(int64(7), "Ada", []byte(`{"name":"Ada"}`), "1.2.3.4", "agent", "GB").
		WillReturnResult(sqlmock.NewResult(42, 1))

	s := &Submission{FormID: 7, Title: "Ada", Data: map[string]string{"name": "Ada"}, IP: "1.2.3.4", UserAgent: "agent", Country: "GB"}
	require.NoError(t, NewRepository(db).Insert(context.Background(), s))
	assert.Equal(t, int64(42), s.ID)
}
