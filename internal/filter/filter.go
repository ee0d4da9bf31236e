// Package filter turns list query parameters into whitelisted SQL conditions.
package filter

import (
	"net/url"
	"strings"
)

// Kind selects how a parameter value is matched against its column.
type Kind int

const (
	// Exact compares the column with the raw value.
	Exact Kind = iota
	// Contains is a case-insensitive substring match.
	Contains
	// Bool matches "true" as true and any other present value as false.
	Bool
)

// Field maps one accepted query parameter to a column.
type Field struct {
	Param  string
	Column string
	Kind   Kind
}

// Whitelist is the set of parameters a resource accepts. Anything else in the
// query string is ignored.
type Whitelist []Field

// Condition is one normalized constraint. Value is a string for Exact and
// Contains, a bool for Bool.
type Condition struct {
	Column string
	Kind   Kind
	Value  any
}

// Set is the normalized filter for one request, in whitelist order.
type Set []Condition

// likeEscape is the ESCAPE character used in LIKE patterns. It is not special in
// MySQL, PostgreSQL or SQLite string literals.
const likeEscape = "!"

var likeEscaper = strings.NewReplacer(likeEscape, likeEscape+likeEscape, "%", likeEscape+"%", "_", likeEscape+"_")

// Build reads the whitelisted parameters from values. Empty string values of
// Exact and Contains fields are treated as absent.
func (w Whitelist) Build(values url.Values) Set {
	set := Set{}
	for _, f := range w {
		if !values.Has(f.Param) {
			continue
		}
		raw := values.Get(f.Param)
		switch f.Kind {
		case Bool:
			set = append(set, Condition{Column: f.Column, Kind: Bool, Value: raw == "true"})
		default:
			if raw == "" {
				continue
			}
			set = append(set, Condition{Column: f.Column, Kind: f.Kind, Value: raw})
		}
	}
	return set
}

// Where renders the set as a SQL fragment with ? placeholders. The fragment is
// empty for an empty set, otherwise it starts with " WHERE ".
func (s Set) Where() (string, []any) {
	if len(s) == 0 {
		return "", nil
	}
	parts := make([]string, 0, len(s))
	args := make([]any, 0, len(s))
	for _, c := range s {
		switch c.Kind {
		case Contains:
			parts = append(parts, "LOWER("+c.Column+") LIKE ? ESCAPE '"+likeEscape+"'")
			args = append(args, "%"+likeEscaper.Replace(strings.ToLower(c.Value.(string)))+"%")
		default:
			parts = append(parts, c.Column+" = ?")
			args = append(args, c.Value)
		}
	}
	return " WHERE " + strings.Join(parts, " AND "), args
}
