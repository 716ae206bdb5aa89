// Package classify derives short labels from query text so that statements
// of the same shape can be bucketed together in reports.
package classify

import (
	"strings"

	pg_query "github.com/pganalyze/pg_query_go/v6"
)

// Kind returns the piece of query up to the first space, or the whole string
// when it contains none. "SELECT * FROM t" gives "SELECT", "COMMIT" gives
// "COMMIT". Deliberately rough: the leading keyword is enough to bucket
// statements of the same type.
func Kind(query string) string {
	if i := strings.IndexByte(query, ' '); i >= 0 {
		return query[:i]
	}
	return query
}

// Normalize replaces literal constants in query with $n placeholders so
// statements differing only in values read as one shape. Queries that do not
// parse come back unchanged; dumps truncate long query text and truncated
// SQL rarely parses.
func Normalize(query string) string {
	normalized, err := pg_query.Normalize(query)
	if err != nil || normalized == "" {
		return query
	}
	return normalized
}

// Fingerprint returns the statement fingerprint for query, or "" when the
// query does not parse.
func Fingerprint(query string) string {
	fp, err := pg_query.Fingerprint(query)
	if err != nil {
		return ""
	}
	return fp
}
