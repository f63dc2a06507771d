package app

import (
	"regexp"
	"strconv"
	"strings"
)

const defaultTraceQueryMaxLen = 512

var (
	traceWhitespace = regexp.MustCompile(`\s+`)
	// Batched set and point inserts render one tuple per row.
	traceValueRows = regexp.MustCompile(`VALUES (\([^()]*\))((?:, \([^()]*\))+)`)
)

// newTraceQueryFormatter returns the otelsql formatter for db.statement.
// Extra VALUES tuples collapse into a row count so a match_points insert
// keeps its table and column list within maxLen.
func newTraceQueryFormatter(maxLen int) func(string) string {
	if maxLen <= 0 {
		maxLen = defaultTraceQueryMaxLen
	}
	return func(query string) string {
		query = strings.TrimSpace(query)
		if query == "" {
			return query
		}

		query = traceWhitespace.ReplaceAllString(query, " ")
		query = traceValueRows.ReplaceAllStringFunc(query, func(values string) string {
			parts := traceValueRows.FindStringSubmatch(values)
			extra := strings.Count(parts[2], ", (")
			return "VALUES " + parts[1] + " /* +" + strconv.Itoa(extra) + " rows */"
		})
		if len(query) <= maxLen {
			return query
		}
		return query[:maxLen] + "..."
	}
}
