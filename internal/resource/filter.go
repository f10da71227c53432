package resource

import "strings"

// FilterState is the current search text and categorical selections of one
// panel session. Empty values are inactive.
type FilterState struct {
	Search string
	Equals map[string]string
}

// NewFilter builds a FilterState from a search term and field=value pairs.
func NewFilter(search string, equals map[string]string) FilterState {
	f := FilterState{Search: strings.TrimSpace(search)}
	for field, value := range equals {
		f.Set(field, value)
	}
	return f
}

// Set selects value for field; an empty value clears the selection.
func (f *FilterState) Set(field, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		delete(f.Equals, field)
		return
	}
	if f.Equals == nil {
		f.Equals = make(map[string]string)
	}
	f.Equals[field] = value
}

// Clear resets every selection.
func (f *FilterState) Clear() {
	f.Search = ""
	f.Equals = nil
}

// Active reports whether any predicate applies.
func (f FilterState) Active() bool {
	return f.Search != "" || len(f.Equals) > 0
}
