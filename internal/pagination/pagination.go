// Package pagination slices ordered result sets into fixed-size, clamped pages.
package pagination

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// DefaultPageSize is the number of items per feed page.
const DefaultPageSize = 10

// Window locates one page inside a result set of Count items.
type Window struct {
	Number   int
	NumPages int
	Size     int
	Offset   int
	Limit    int
	Count    int64
}

// HasNext reports whether a page follows this one.
func (w Window) HasNext() bool { return w.Number < w.NumPages }

// HasPrevious reports whether a page precedes this one.
func (w Window) HasPrevious() bool { return w.Number > 1 }

// Page is the slice of items for one window plus navigation metadata.
type Page[T any] struct {
	Items          []T   `json:"items"`
	Number         int   `json:"number"`
	NumPages       int   `json:"num_pages"`
	Count          int64 `json:"count"`
	HasNext        bool  `json:"has_next"`
	HasPrevious    bool  `json:"has_previous"`
	NextNumber     int   `json:"next_page_number,omitempty"`
	PreviousNumber int   `json:"previous_page_number,omitempty"`
}

// ParseNumber reads a 1-based page number from a query value.
// Absent, non-numeric, zero and negative values all mean page 1.
// Positive numbers too large for an int become math.MaxInt so Resolve clamps them to the last page.
func ParseNumber(raw string) int {
	raw = strings.TrimSpace(raw)
	n, err := strconv.Atoi(raw)
	if errors.Is(err, strconv.ErrRange) && !strings.HasPrefix(raw, "-") {
		return math.MaxInt
	}
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// Resolve clamps number into [1, NumPages] for count items of the given size.
// An empty set still has one page.
func Resolve(count int64, size, number int) Window {
	if size <= 0 {
		size = DefaultPageSize
	}
	if count < 0 {
		count = 0
	}
	numPages := int((count + int64(size) - 1) / int64(size))
	if numPages < 1 {
		numPages = 1
	}
	if number < 1 {
		number = 1
	}
	if number > numPages {
		number = numPages
	}

	offset := (number - 1) * size
	limit := size
	if remaining := count - int64(offset); remaining < int64(limit) {
		limit = int(remaining)
	}
	if limit < 0 {
		limit = 0
	}

	return Window{
		Number:   number,
		NumPages: numPages,
		Size:     size,
		Offset:   offset,
		Limit:    limit,
		Count:    count,
	}
}

// NewPage wraps items already fetched for w.
func NewPage[T any](items []T, w Window) Page[T] {
	if items == nil {
		items = []T{}
	}
	p := Page[T]{
		Items:       items,
		Number:      w.Number,
		NumPages:    w.NumPages,
		Count:       w.Count,
		HasNext:     w.HasNext(),
		HasPrevious: w.HasPrevious(),
	}
	if p.HasNext {
		p.NextNumber = w.Number + 1
	}
	if p.HasPrevious {
		p.PreviousNumber = w.Number - 1
	}
	return p
}

// Paginate slices an in-memory ordered sequence.
func Paginate[T any](items []T, size int, raw string) Page[T] {
	w := Resolve(int64(len(items)), size, ParseNumber(raw))
	return NewPage(items[w.Offset:w.Offset+w.Limit], w)
}
