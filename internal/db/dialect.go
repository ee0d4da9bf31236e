// Package db holds the SQL plumbing shared by the repositories: dialect
// handling, nullable helpers and embedded migrations.
package db

import (
	"database/sql"
	"strconv"
	"strings"
)

// Dialect is the database/sql driver name of the connected database.
type Dialect string

const (
	MySQL    Dialect = "mysql"
	Postgres Dialect = "pgx"
	SQLite   Dialect = "sqlite"
)

// Rebind rewrites ? placeholders into the dialect's native form. Queries must
// not contain a literal question mark.
func (d Dialect) Rebind(query string) string {
	if d != Postgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// NullableString stores nil as SQL NULL.
func NullableString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

// StringPtr turns a scanned nullable column back into an optional string.
func StringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
