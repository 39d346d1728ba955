package content

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// PageRangeError reports an unparseable page-range expression.
type PageRangeError struct {
	Input  string
	Reason string
}

func (e *PageRangeError) Error() string {
	return fmt.Sprintf("invalid page range %q: %s", e.Input, e.Reason)
}

// ParsePageRanges turns a one-based range expression like "1,3:5,8"
// into sorted, de-duplicated zero-based page indices ([0 2 3 4 7]).
// An empty expression means all pages and yields nil.
func ParsePageRanges(expr string) ([]int, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, nil
	}

	seen := make(map[int]bool)
	var pages []int
	add := func(p int) {
		if !seen[p] {
			seen[p] = true
			pages = append(pages, p)
		}
	}

	for _, part := range strings.Split(expr, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil, &PageRangeError{Input: expr, Reason: "empty segment"}
		}
		lo, hi, ok := strings.Cut(part, ":")
		if !ok {
			page, err := parsePage(lo)
			if err != nil {
				return nil, &PageRangeError{Input: expr, Reason: err.Error()}
			}
			add(page - 1)
			continue
		}
		first, err := parsePage(lo)
		if err != nil {
			return nil, &PageRangeError{Input: expr, Reason: err.Error()}
		}
		last, err := parsePage(hi)
		if err != nil {
			return nil, &PageRangeError{Input: expr, Reason: err.Error()}
		}
		if last < first {
			return nil, &PageRangeError{Input: expr, Reason: fmt.Sprintf("descending range %d:%d", first, last)}
		}
		for p := first; p <= last; p++ {
			add(p - 1)
		}
	}
	sort.Ints(pages)
	return pages, nil
}

func parsePage(s string) (int, error) {
	s = strings.TrimSpace(s)
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", s)
	}
	if n < 1 {
		return 0, fmt.Errorf("pages are one-based, got %d", n)
	}
	return n, nil
}
