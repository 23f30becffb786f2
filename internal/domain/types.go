package domain

import (
	"fmt"
	"strings"

	"phonecalls/internal/domain/models"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 5
)

// CallFilter restricts the displayed rows of a fetched page by direction.
type CallFilter string

const (
	FilterAll      CallFilter = "all"
	FilterInbound  CallFilter = "inbound"
	FilterOutbound CallFilter = "outbound"
)

// ParseCallFilter accepts all, inbound or outbound (case-insensitive).
func ParseCallFilter(raw string) (CallFilter, error) {
	switch f := CallFilter(strings.ToLower(strings.TrimSpace(raw))); f {
	case FilterAll, FilterInbound, FilterOutbound:
		return f, nil
	default:
		return "", ValidationError{Field: "filter", Msg: fmt.Sprintf("unknown call filter %q", raw)}
	}
}

// Matches reports whether a call with direction d passes the filter.
func (f CallFilter) Matches(d models.Direction) bool {
	return string(d) == string(f) || f == FilterAll
}

// PageRequest carries the offset/limit window sent to a call source.
type PageRequest struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// NewPageRequest derives the window for a 1-based page.
func NewPageRequest(page, pageSize int) PageRequest {
	return PageRequest{Offset: (page - 1) * pageSize, Limit: pageSize}
}
