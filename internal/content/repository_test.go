// internal/content/repository_test.go
//
// Run: go test ./internal/content -v

package content

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { raw.Close() })
	return sqlx.NewDb(raw, "sqlmock"), mock
}

func TestArticlesClampsAndPaginates(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM content_pages WHERE type = \?`).
		WithArgs(TypeArticle).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(61))

	rows := sqlmock.NewRows([]string{"id", "type", "slug", "title", "tags", "published_at"}).
		AddRow(1, "article", "vps-vs-dedicated", "VPS или выделенный сервер?",
			`["vps","guide"]`, time.Now())

	// limit 500 must clamp to the 50 cap, page 0 to 1.
	mock.ExpectQuery(`ORDER BY published_at DESC`).
		WithArgs(TypeArticle, 50, 0).
		WillReturnRows(rows)

	got, err := Articles(context.Background(), db, 0, 500)
	if err != nil {
		t.Fatalf("Articles error: %v", err)
	}
	if got.Total != 61 || got.Page != 1 || got.Pages != 2 {
		t.Fatalf("pagination = total %d page %d pages %d, want 61/1/2",
			got.Total, got.Page, got.Pages)
	}
	if len(got.Articles) != 1 || len(got.Articles[0].Tags) != 2 {
		t.Fatalf("unexpected articles: %#v", got.Articles)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestArticleBySlugNotFound(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`WHERE slug = \? AND type = \?`).
		WithArgs("missing", TypeArticle).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := ArticleBySlug(context.Background(), db, "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestFAQOrderedByID(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`WHERE type = \? ORDER BY id`).
		WithArgs(TypeFAQ).
		WillReturnRows(sqlmock.NewRows([]string{"id", "type", "title"}).
			AddRow(1, "faq", "Что такое VPS?").
			AddRow(2, "faq", "Как выбрать тариф?"))

	got, err := FAQ(context.Background(), db)
	if err != nil {
		t.Fatalf("FAQ error: %v", err)
	}
	if len(got) != 2 || got[0].ID != 1 {
		t.Fatalf("unexpected rows: %#v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}
