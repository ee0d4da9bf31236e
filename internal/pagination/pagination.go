// Package pagination implements the page contract shared by every list endpoint.
package pagination

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"catalogapi/internal/filter"
)

const (
	DefaultPage = 1
	DefaultSize = 10
	// MaxSize bounds limit so that size arithmetic stays within int.
	MaxSize = math.MaxInt32
)

// Request is a normalized page request.
type Request struct {
	Page int
	Size int
}

// Skip is the number of matching rows before the page. A skip that does not
// fit in an int saturates at math.MaxInt, which is past the end of any table.
func (r Request) Skip() int {
	if r.Page <= 1 || r.Size <= 0 {
		return 0
	}
	if r.Page-1 > math.MaxInt/r.Size {
		return math.MaxInt
	}
	return (r.Page - 1) * r.Size
}

// Parse normalizes raw page and limit values. Missing, non-integer or < 1
// values fall back to the defaults; limit is capped at MaxSize.
func Parse(page, limit string) Request {
	return Request{
		Page: positiveOr(page, DefaultPage),
		Size: min(positiveOr(limit, DefaultSize), MaxSize),
	}
}

func positiveOr(raw string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return def
	}
	return n
}

// Query is what a collection adapter receives.
type Query struct {
	Filters filter.Set
	Skip    int
	Take    int
}

// QueryFunc returns one page of raw rows plus the total number of rows matching
// q.Filters. Both reads must come from the same transaction.
type QueryFunc[R any] func(ctx context.Context, q Query) ([]R, int, error)

// Meta is the pagination block of a list response.
type Meta struct {
	TotalItems  int `json:"totalItems"`
	TotalPages  int `json:"totalPages"`
	CurrentPage int `json:"currentPage"`
	PageSize    int `json:"pageSize"`
}

// Result is one page of mapped items.
type Result[T any] struct {
	Items      []T  `json:"items"`
	Pagination Meta `json:"pagination"`
}

// TotalPages is ceil(total/size), 0 when there is nothing to show.
func TotalPages(total, size int) int {
	if total <= 0 || size <= 0 {
		return 0
	}
	pages := total / size
	if total%size != 0 {
		pages++
	}
	return pages
}

// Paginate runs queryFn for the requested page and maps every row. A query or
// mapping error fails the whole call; no partial result is returned.
func Paginate[R, D any](
	ctx context.Context,
	queryFn QueryFunc[R],
	filters filter.Set,
	page, limit string,
	mapper func(R) (D, error),
) (Result[D], error) {
	req := Parse(page, limit)

	rows, total, err := queryFn(ctx, Query{Filters: filters, Skip: req.Skip(), Take: req.Size})
	if err != nil {
		return Result[D]{}, err
	}

	items := make([]D, 0, len(rows))
	for i, row := range rows {
		item, err := mapper(row)
		if err != nil {
			return Result[D]{}, fmt.Errorf("map item %d: %w", i, err)
		}
		items = append(items, item)
	}

	return Result[D]{
		Items: items,
		Pagination: Meta{
			TotalItems:  total,
			TotalPages:  TotalPages(total, req.Size),
			CurrentPage: req.Page,
			PageSize:    req.Size,
		},
	}, nil
}

// Pure adapts an infallible mapping function for Paginate.
func Pure[R, D any](fn func(R) D) func(R) (D, error) {
	return func(r R) (D, error) {
		return fn(r), nil
	}
}
