package common

import (
	"net/http"
	"strconv"
)

const (
	defaultPageLimit = 50
	maxPageLimit     = 100
)

// PageParams holds cursor-based pagination parameters
type PageParams struct {
	Limit  int    `json:"limit"`
	Cursor string `json:"cursor,omitempty"`
}

// ExtractPageParams extracts pagination parameters from the request.
// Limits are clamped to [1, 100] with a default of 50.
func ExtractPageParams(r *http.Request) PageParams {
	params := PageParams{Limit: defaultPageLimit}

	if limit := r.URL.Query().Get("limit"); limit != "" {
		if n, err := strconv.Atoi(limit); err == nil && n > 0 {
			if n > maxPageLimit {
				n = maxPageLimit
			}
			params.Limit = n
		}
	}
	params.Cursor = r.URL.Query().Get("cursor")

	return params
}

// PagedResult wraps a page of items with the cursor for the next page
type PagedResult struct {
	Items      interface{} `json:"items"`
	NextCursor string      `json:"next_cursor,omitempty"`
}
