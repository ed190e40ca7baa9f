package utils

import "strings"

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// LikePattern turns a user search term into a case-insensitive substring
// pattern for use with `LOWER(col) LIKE ? ESCAPE '\'`.
func LikePattern(term string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(strings.TrimSpace(term))) + "%"
}

// SearchClause builds an OR over LOWER(col) LIKE ? for each column and
// returns the clause with one argument per column.
func SearchClause(term string, columns ...string) (string, []interface{}) {
	pattern := LikePattern(term)
	parts := make([]string, len(columns))
	args := make([]interface{}, len(columns))
	for i, col := range columns {
		parts[i] = "LOWER(" + col + `) LIKE ? ESCAPE '\'`
		args[i] = pattern
	}
	return "(" + strings.Join(parts, " OR ") + ")", args
}
