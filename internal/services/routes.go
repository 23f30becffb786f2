package services

import (
	"fmt"
	"net/url"
	"strings"
	"unicode"

	"phonecalls/internal/domain"
)

// Navigator performs client-side navigation to an application path.
type Navigator interface {
	Navigate(path string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(path string)

func (f NavigatorFunc) Navigate(path string) { f(path) }

// RouteParams is the parsed query string of the list route.
type RouteParams struct {
	Page string
}

// RouteParamsFromQuery reads the "page" parameter.
func RouteParamsFromQuery(q url.Values) RouteParams {
	return RouteParams{Page: q.Get("page")}
}

// MaxActivePage is the largest page number read from a URL.
const MaxActivePage = 1 << 30

// ActivePage derives the 1-based page. The value is read like a leading
// integer ("3" and "3abc" are 3); absent, unparseable, non-positive values and
// values above MaxActivePage fall back to page 1.
func (p RouteParams) ActivePage() int {
	return ParseActivePage(p.Page)
}

func ParseActivePage(raw string) int {
	s := strings.TrimLeftFunc(raw, unicode.IsSpace)
	neg := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}

	n, digits := 0, 0
	for _, r := range s {
		if r < '0' || r > '9' {
			break
		}
		n = n*10 + int(r-'0')
		digits++
		if n > MaxActivePage {
			return domain.DefaultPage
		}
	}
	if digits == 0 || neg || n < 1 {
		return domain.DefaultPage
	}
	return n
}

// CallDetailPath is the detail route for one call.
func CallDetailPath(callID string) string {
	return "/calls/" + url.PathEscape(callID)
}

// CallsListPath is the list route for a page.
func CallsListPath(page int) string {
	return fmt.Sprintf("/calls/?page=%d", page)
}
