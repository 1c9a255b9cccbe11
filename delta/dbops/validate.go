package dbops

import (
	pg_query "github.com/pganalyze/pg_query_go/v6"
)

// ValidateSQL round-trip-parses sql through the backend's own grammar,
// returning a non-nil error if it is not syntactically well-formed.
// Grounded on the teacher's broader use of pg_query_go for parsing
// dumped SQL (ir/parser.go); there the teacher parses SQL it read back
// from a live catalog, here it is generalized into a defensive
// post-emission check over SQL this compiler itself generated, so a
// malformed emitter never silently hands a caller garbage DDL.
func ValidateSQL(sql string) error {
	_, err := pg_query.Parse(sql)
	return err
}
