package store

import "strings"

// FilterAll is the sentinel meaning "no constraint" for a filter field,
// equivalent to leaving it empty.
const FilterAll = "all"

const defaultListLimit = 50

// Filter holds the optional criteria for listing feedback. Empty or "all"
// fields impose no constraint; everything else is an exact match.
type Filter struct {
	Sentiment string
	Theme     string
	Urgency   string
	Channel   string
	Limit     int
}

// buildWhere translates the filter into a WHERE clause with bound
// parameters. Rows are always restricted to analyzed items; filter values
// are never interpolated into the query text.
func (f Filter) buildWhere() (string, []interface{}) {
	conditions := []string{"analyzed = 1"}
	var args []interface{}

	add := func(column, value string) {
		if value == "" || value == FilterAll {
			return
		}
		conditions = append(conditions, column+" = ?")
		args = append(args, value)
	}

	add("sentiment", f.Sentiment)
	add("theme", f.Theme)
	add("urgency", f.Urgency)
	add("channel", f.Channel)

	return strings.Join(conditions, " AND "), args
}

// limit returns the effective row cap, defaulting when unset or invalid
func (f Filter) limit() int {
	if f.Limit <= 0 {
		return defaultListLimit
	}
	return f.Limit
}
