package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"catalogapi/internal/db"
	"catalogapi/internal/pagination"

	"github.com/google/uuid"
)

// Conn is what every repository needs to talk to the database. Clock and IDs
// default to time.Now and random UUIDs.
type Conn struct {
	DB      *sql.DB
	Dialect db.Dialect
	Clock   func() time.Time
	IDs     func() string
}

func NewConn(sqlDB *sql.DB, dialect db.Dialect) Conn {
	return Conn{DB: sqlDB, Dialect: dialect}
}

type scanner interface {
	Scan(dest ...any) error
}

func (c Conn) q(query string) string {
	return c.Dialect.Rebind(query)
}

func (c Conn) now() time.Time {
	if c.Clock != nil {
		return c.Clock().UTC()
	}
	return time.Now().UTC()
}

func (c Conn) newID() string {
	if c.IDs != nil {
		return c.IDs()
	}
	return uuid.NewString()
}

// findPage reads one page and the total count of q.Filters inside a single
// transaction. listSQL must contain one %s for the WHERE clause and end with
// "LIMIT ? OFFSET ?"; countSQL gets the WHERE clause appended.
func (c Conn) findPage(ctx context.Context, listSQL, countSQL string, q pagination.Query, scan func(*sql.Rows) error) (int, error) {
	where, args := q.Filters.Where()

	tx, err := c.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	pageArgs := make([]any, 0, len(args)+2)
	pageArgs = append(pageArgs, args...)
	pageArgs = append(pageArgs, q.Take, q.Skip)

	rows, err := tx.QueryContext(ctx, c.q(fmt.Sprintf(listSQL, where)), pageArgs...)
	if err != nil {
		return 0, fmt.Errorf("list: %w", err)
	}
	for rows.Next() {
		if err := scan(rows); err != nil {
			_ = rows.Close()
			return 0, fmt.Errorf("scan: %w", err)
		}
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return 0, fmt.Errorf("list: %w", err)
	}
	if err := rows.Close(); err != nil {
		return 0, fmt.Errorf("list: %w", err)
	}

	var total int
	if err := tx.QueryRowContext(ctx, c.q(countSQL+where), args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return total, nil
}

// execOne runs a statement that must touch exactly one row; zero rows is a
// NotFound for resource.
func (c Conn) execOne(ctx context.Context, resource, query string, args ...any) error {
	res, err := c.DB.ExecContext(ctx, c.q(query), args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound(resource)
	}
	return nil
}
