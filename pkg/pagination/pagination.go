package pagination

import (
	"math"
	"net/url"
	"strconv"
)

// PageRequest represents a client request for a window of data.
// A zero Limit selects the configured default.
type PageRequest struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// Normalize adjusts the request to ensure valid pagination values based on the config.
func (r *PageRequest) Normalize(cfg Config) {
	if r.Page < 1 {
		r.Page = 1
	}
	if r.Limit == 0 {
		r.Limit = cfg.DefaultPageSize
	}
	if r.Limit < 1 {
		r.Limit = 1
	}
	if r.Limit > cfg.MaxPageSize {
		r.Limit = cfg.MaxPageSize
	}
	if maxPage := math.MaxInt / r.Limit; r.Page > maxPage {
		r.Page = maxPage
	}
}

// Offset calculates the number of records to skip based on page and limit.
func (r *PageRequest) Offset() int {
	return Offset(r.Page, r.Limit)
}

// Offset returns (page-1)*limit, saturating at math.MaxInt instead of
// overflowing. Pages below one and non-positive limits yield zero.
func Offset(page, limit int) int {
	if page < 2 || limit < 1 {
		return 0
	}
	if page-1 > math.MaxInt/limit {
		return math.MaxInt
	}
	return (page - 1) * limit
}

// PageRequestFromQuery parses pagination parameters from URL query values.
// Supported parameters: page, limit. Missing or malformed values take defaults;
// an explicit limit below one clamps to one.
func PageRequestFromQuery(values url.Values, cfg Config) PageRequest {
	var req PageRequest

	if page, err := strconv.Atoi(values.Get("page")); err == nil {
		req.Page = page
	}

	if limit, err := strconv.Atoi(values.Get("limit")); err == nil {
		req.Limit = max(limit, 1)
	}

	req.Normalize(cfg)
	return req
}

// Meta describes the position of a page within the full result set.
type Meta struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"totalPages"`
	HasNext    bool `json:"hasNext"`
	HasPrev    bool `json:"hasPrev"`
}

// PageResult holds a page of data along with pagination metadata.
type PageResult[T any] struct {
	Data       []T  `json:"data"`
	Pagination Meta `json:"pagination"`
}

// NewPageResult creates a PageResult with calculated total pages and navigation flags.
// An empty result set has zero total pages and no navigation in either direction.
func NewPageResult[T any](data []T, total, page, limit int) PageResult[T] {
	totalPages := 0
	if limit > 0 {
		totalPages = total / limit
		if total%limit != 0 {
			totalPages++
		}
	}

	if data == nil {
		data = []T{}
	}

	return PageResult[T]{
		Data: data,
		Pagination: Meta{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
			HasPrev:    page > 1,
		},
	}
}
