// Package pagination computes the page numbers shown below a result list.
package pagination

import (
	"strconv"
	"strings"
)

// MaxExpanded is the largest page count that is shown without ellipses.
const MaxExpanded = 7

// Token is a single entry of a pagination window, either a page number or an
// ellipsis standing for the pages left out.
type Token struct {
	Page     int
	Ellipsis bool
}

func PageToken(page int) Token {
	return Token{Page: page}
}

var EllipsisToken = Token{Ellipsis: true}

func (t Token) String() string {
	if t.Ellipsis {
		return "..."
	}
	return strconv.Itoa(t.Page)
}

// TotalPages is ceil(total / size), 0 when there is nothing to show.
func TotalPages(total, size int) int {
	if total <= 0 || size <= 0 {
		return 0
	}
	return (total + size - 1) / size
}

// Window returns the page tokens to display for the current page out of
// total pages. The first and last page are always present, the pages around
// the current one are shown, the rest collapses into ellipses.
func Window(current, total int) []Token {
	if total <= 0 {
		return nil
	}
	if total <= MaxExpanded {
		out := make([]Token, 0, total)
		for page := 1; page <= total; page++ {
			out = append(out, PageToken(page))
		}
		return out
	}

	out := []Token{PageToken(1)}
	if current > 4 {
		out = append(out, EllipsisToken)
	}

	start := max(2, current-1)
	end := min(total-1, current+1)
	if current <= 4 {
		start = 2
		end = 4
	}
	if current >= total-3 {
		start = total - 3
		end = total - 1
	}
	for page := start; page <= end; page++ {
		out = append(out, PageToken(page))
	}

	if current < total-3 {
		out = append(out, EllipsisToken)
	}
	return append(out, PageToken(total))
}

// Format renders a window as a single line, the current page is wrapped in
// brackets.
func Format(tokens []Token, current int) string {
	parts := make([]string, len(tokens))
	for i, token := range tokens {
		if !token.Ellipsis && token.Page == current {
			parts[i] = "[" + token.String() + "]"
			continue
		}
		parts[i] = token.String()
	}
	return strings.Join(parts, " ")
}
