package repository

import "strings"

// Filters collects non-empty query parameters as equality filters.
type Filters map[string]interface{}

// Set records value under column when value is not blank.
func (f Filters) Set(column, value string) Filters {
	if v := strings.TrimSpace(value); v != "" {
		f[column] = v
	}
	return f
}
