package storage

import (
	"errors"
	"strconv"
)

const (
	// DefaultLimit applies when the client sends no limit parameter.
	DefaultLimit = 100
	// MaxLimit is the page size ceiling; larger requests are rejected.
	MaxLimit = 500
)

var (
	ErrNegativeOffset = errors.New("offset must be greater than or equal to zero")
	ErrInvalidLimit   = errors.New("limit must be between 1 and 500")
)

// Page is a parsed offset/limit pair.
type Page struct {
	Offset int
	Limit  int
}

// ParsePage validates the raw offset/limit query values. Empty strings fall
// back to the defaults.
func ParsePage(rawOffset, rawLimit string) (Page, error) {
	p := Page{Offset: 0, Limit: DefaultLimit}

	if rawOffset != "" {
		n, err := strconv.Atoi(rawOffset)
		if err != nil || n < 0 {
			return Page{}, ErrNegativeOffset
		}
		p.Offset = n
	}

	if rawLimit != "" {
		n, err := strconv.Atoi(rawLimit)
		if err != nil || n < 1 || n > MaxLimit {
			return Page{}, ErrInvalidLimit
		}
		p.Limit = n
	}
	return p, nil
}

// PageMeta is the pagination envelope returned alongside list results.
type PageMeta struct {
	TotalCount      int64 `json:"totalCount"`
	TotalPages      int64 `json:"totalPages"`
	CurrentPage     int64 `json:"currentPage"`
	HasNextPage     bool  `json:"hasNextPage"`
	HasPreviousPage bool  `json:"hasPreviousPage"`
}

// Meta computes the pagination metadata for a total row count.
func (p Page) Meta(total int64) PageMeta {
	limit := int64(p.Limit)
	offset := int64(p.Offset)

	totalPages := total / limit
	if total%limit != 0 {
		totalPages++
	}
	if totalPages == 0 {
		totalPages = 1
	}

	current := offset/limit + 1

	return PageMeta{
		TotalCount:      total,
		TotalPages:      totalPages,
		CurrentPage:     current,
		HasNextPage:     offset+limit < total,
		HasPreviousPage: offset > 0,
	}
}
