// internal/form/cache_test.go
//
// Cache behavior: single DB load per slug, singleflight dedupe under
// concurrency, and invalidation forcing a reload.
//
// Run: go test ./internal/form -v

package form

import (
	"context"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func expectSlugQuery(mock sqlmock.Sqlmock, slug, title string) {
	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT id, slug, title, status, fields, settings, created_at, updated_at FROM form WHERE slug = ? AND status <> 'trashed'`,
	)).
		WithArgs(slug).
		WillReturnRows(sqlmock.NewRows(formColumns()).
			AddRow(int64(1), slug, title, "published", []byte(`[]`), []byte(`{}`), now, now))
}

func TestCacheLoadsOncePerSlug(t *testing.T) {
	db, mock := newMock(t)
	expectSlugQuery(mock, "contact", "Contact")

	c := NewCache(NewRepository(db), time.Minute)
	defer c.Close()

	// Concurrent first hits collapse into one DB read.
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f, err := c.Get(context.Background(), "contact")
			if err != nil {
				t.Errorf("Get: %v", err)
				return
			}
			if f.Title != "Contact" {
				t.Errorf("title = %q", f.Title)
			}
		}()
	}
	wg.Wait()

	// A later hit is served from memory.
	if _, err := c.Get(context.Background(), "contact"); err != nil {
		t.Fatalf("cached Get: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestCacheInvalidateForcesReload(t *testing.T) {
	db, mock := newMock(t)
	expectSlugQuery(mock, "contact", "Contact")
	expectSlugQuery(mock, "contact", "Contact v2")

	c := NewCache(NewRepository(db), time.Minute)
	defer c.Close()

	if _, err := c.Get(context.Background(), "contact"); err != nil {
		t.Fatalf("first Get: %v", err)
	}
	c.Invalidate("contact")

	f, err := c.Get(context.Background(), "contact")
	if err != nil {
		t.Fatalf("second Get: %v", err)
	}
	if f.Title != "Contact v2" {
		t.Errorf("stale entry after Invalidate: title = %q", f.Title)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}
