package repositories

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"testing"
	"time"

	"catalogapi/internal/db"
	"catalogapi/internal/domain"
	"catalogapi/internal/domain/models"
	"catalogapi/internal/filter"
	"catalogapi/internal/pagination"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
)

var nameFilter = filter.Whitelist{{Param: "name", Column: "name", Kind: filter.Contains}}

func TestFindPageReadsSliceAndCountInOneTransaction(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer sqlDB.Close()

	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, user_id, created_at FROM categories WHERE LOWER(name) LIKE ? ESCAPE '!' ORDER BY created_at, id LIMIT ? OFFSET ?")).
		WithArgs("%sh%", 5, 10).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "user_id", "created_at"}).
			AddRow("c1", "Shoes", nil, created).
			AddRow("c2", "Shirts", "u1", created))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM categories WHERE LOWER(name) LIKE ? ESCAPE '!'")).
		WithArgs("%sh%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))
	mock.ExpectCommit()

	repo := CategoryRepository{Conn: NewConn(sqlDB, db.MySQL)}
	items, total, err := repo.FindMany(context.Background(), pagination.Query{
		Filters: nameFilter.Build(url.Values{"name": {"Sh"}}),
		Skip:    10,
		Take:    5,
	})
	if err != nil {
		t.Fatalf("FindMany error: %v", err)
	}
	if total != 12 || len(items) != 2 {
		t.Fatalf("got %d items, total %d", len(items), total)
	}
	if items[0].UserID != nil || items[1].UserID == nil || *items[1].UserID != "u1" {
		t.Fatalf("owner mapping wrong: %+v", items)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestFindPageRollsBackOnFailure(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer sqlDB.Close()

	storeErr := errors.New("connection reset")
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id, email").WillReturnRows(sqlmock.NewRows([]string{"id", "email", "first_name", "last_name", "status", "created_at", "updated_at"}))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM users")).WillReturnError(storeErr)
	mock.ExpectRollback()

	repo := UserRepository{Conn: NewConn(sqlDB, db.MySQL)}
	items, _, err := repo.FindMany(context.Background(), pagination.Query{Take: 10})
	if !errors.Is(err, storeErr) {
		t.Fatalf("expected store error, got %v", err)
	}
	if items != nil {
		t.Fatalf("partial result returned: %v", items)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresPlaceholders(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer sqlDB.Close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM products WHERE category_id = $1")).
		WithArgs("c1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	repo := ProductRepository{Conn: NewConn(sqlDB, db.Postgres)}
	n, err := repo.CountByCategory(context.Background(), "c1")
	if err != nil || n != 4 {
		t.Fatalf("CountByCategory = %d, %v", n, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUniqueViolationAcrossDrivers(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"mysql duplicate", &mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'a@b.c' for key 'email'"}, true},
		{"mysql other", &mysql.MySQLError{Number: 1452, Message: "Cannot add or update a child row"}, false},
		{"postgres duplicate", fmt.Errorf("exec: %w", &pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"}), true},
		{"postgres other", &pgconn.PgError{Code: "23503"}, false},
		{"sqlite duplicate", errors.New("constraint failed: UNIQUE constraint failed: users.email (2067)"), true},
		{"unrelated", errors.New("connection reset"), false},
	}
	for _, tc := range cases {
		if got := uniqueViolation(tc.err); got != tc.want {
			t.Fatalf("%s: uniqueViolation = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestUserCreateMapsDuplicateEntryToConflict(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer sqlDB.Close()

	mock.ExpectExec("INSERT INTO users").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'a@example.com' for key 'users.email'"})
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET email = ?")).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'a@example.com' for key 'users.email'"})

	repo := UserRepository{Conn: NewConn(sqlDB, db.MySQL)}
	_, err = repo.Create(context.Background(), models.User{Email: "a@example.com", PasswordHash: "x", FirstName: "A"})
	if !domain.IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}
	email := "a@example.com"
	_, err = repo.Update(context.Background(), "u2", models.UpdateUserRequest{Email: &email})
	if !domain.IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
