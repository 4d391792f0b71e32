// Package params recovers the listing identifier and target page number
// from a pagination link.
//
// Pagination links emitted by the query loop block carry the listing id as
// a "query-<N>" token and the page as a "page=<M>" token. Both tokens may
// appear anywhere in the string and in either order:
//
//	/blog/?query-3-page=2
//	/blog/?page=2&query-3
//
// Extraction is all-or-nothing: a link that carries only one of the two
// tokens yields no result.
package params

import (
	"fmt"
	"regexp"
	"strconv"
)

var (
	queryPattern = regexp.MustCompile(`query-(\d+)`)
	pagePattern  = regexp.MustCompile(`page=(\d+)`)
)

// Params identifies one page of one paginated listing.
type Params struct {
	// Query is the listing identifier.
	Query int

	// Page is the page number within the listing.
	Page int
}

// String renders the params in the same token form they are parsed from.
func (p Params) String() string {
	return fmt.Sprintf("query-%d&page=%d", p.Query, p.Page)
}

// Extract locates the first "query-<digits>" and the first "page=<digits>"
// token in s. It reports false when either token is missing or when a digit
// run does not fit in an int.
func Extract(s string) (Params, bool) {
	query, ok := firstNumber(queryPattern, s)
	if !ok {
		return Params{}, false
	}

	page, ok := firstNumber(pagePattern, s)
	if !ok {
		return Params{}, false
	}

	return Params{Query: query, Page: page}, true
}

// firstNumber returns the base-10 value of the first capture group of re.
func firstNumber(re *regexp.Regexp, s string) (int, bool) {
	match := re.FindStringSubmatch(s)
	if match == nil {
		return 0, false
	}

	n, err := strconv.Atoi(match[1])
	if err != nil {
		// Only overflow is possible here; the pattern guarantees digits.
		return 0, false
	}
	return n, true
}
