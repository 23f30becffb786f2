package handlers

import (
	"net/http"
	"strconv"

	"phonecalls/internal/domain"

	"github.com/gin-gonic/gin"
)

// Page size and filter are per-browser state. They live in session cookies
// and are never written into the list URL.
const (
	cookiePageSize = "calls_page_size"
	cookieFilter   = "calls_filter"
)

func (h *Handler) defaultPageSize() int {
	if h.Paging.DefaultPageSize > 0 {
		return h.Paging.DefaultPageSize
	}
	return domain.DefaultPageSize
}

// parsePageSize validates a page size against the configured maximum.
func (h *Handler) parsePageSize(raw string) (int, error) {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, domain.ValidationError{Field: "page_size", Msg: "must be a positive integer", Err: err}
	}
	if h.Paging.MaxPageSize > 0 && n > h.Paging.MaxPageSize {
		return 0, domain.ValidationError{Field: "page_size", Msg: "must not exceed " + strconv.Itoa(h.Paging.MaxPageSize)}
	}
	return n, nil
}

// sessionPageSize falls back to the default on a missing or tampered cookie.
func (h *Handler) sessionPageSize(c *gin.Context) int {
	raw, err := c.Cookie(cookiePageSize)
	if err != nil {
		return h.defaultPageSize()
	}
	n, err := h.parsePageSize(raw)
	if err != nil {
		return h.defaultPageSize()
	}
	return n
}

func (h *Handler) sessionFilter(c *gin.Context) domain.CallFilter {
	raw, err := c.Cookie(cookieFilter)
	if err != nil {
		return domain.FilterAll
	}
	f, err := domain.ParseCallFilter(raw)
	if err != nil {
		return domain.FilterAll
	}
	return f
}

func (h *Handler) setSessionCookie(c *gin.Context, name, value string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, value, 0, "/", "", h.CookieSecure, true)
}
