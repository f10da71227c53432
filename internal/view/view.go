// Package view projects cached records into what a panel shows: the
// filtered, optionally ranked rows and an explicit empty state.
package view

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"

	"rpgpanel/internal/config"
	"rpgpanel/internal/resource"
)

type State int

const (
	StateNeverLoaded State = iota
	StateEmpty
	StateRows
)

// Options parameterize Render for one panel.
type Options struct {
	SearchFields []string
	Leaderboard  string
	Loaded       bool
}

func OptionsFor(p *config.Panel, loaded bool) Options {
	return Options{
		SearchFields: p.SearchFields,
		Leaderboard:  p.Leaderboard,
		Loaded:       loaded,
	}
}

type View struct {
	State State
	Rows  []resource.Record
	// Total is the unfiltered record count.
	Total int
}

// Render filters records (search first, then equality selections, all
// AND-combined) and ranks leaderboard panels by descending score. It reads
// nothing but its arguments and never mutates them.
func Render(records []resource.Record, filter resource.FilterState, opts Options) View {
	if !opts.Loaded {
		return View{State: StateNeverLoaded}
	}

	rows := make([]resource.Record, 0, len(records))
	fold := cases.Fold()
	needle := fold.String(strings.TrimSpace(filter.Search))
	for _, record := range records {
		if needle != "" && !matchesSearch(record, opts.SearchFields, needle, fold) {
			continue
		}
		if !matchesEquals(record, filter.Equals) {
			continue
		}
		rows = append(rows, record)
	}

	if opts.Leaderboard != "" {
		rankDescending(rows, opts.Leaderboard)
	}

	v := View{State: StateRows, Rows: rows, Total: len(records)}
	if len(rows) == 0 {
		v.State = StateEmpty
	}
	return v
}

func matchesSearch(record resource.Record, fields []string, needle string, fold cases.Caser) bool {
	for _, field := range fields {
		if strings.Contains(fold.String(record.String(field)), needle) {
			return true
		}
	}
	return false
}

func matchesEquals(record resource.Record, equals map[string]string) bool {
	for field, want := range equals {
		if want == "" {
			continue
		}
		if record.String(field) != want {
			return false
		}
	}
	return true
}

// rankDescending orders rows by field, highest first. Ties and
// non-numeric values keep their server order, non-numeric values last.
func rankDescending(rows []resource.Record, field string) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, aok := rows[i].Number(field)
		b, bok := rows[j].Number(field)
		if aok != bok {
			return aok
		}
		return a > b
	})
}

// Message is the placeholder text for non-row states.
func (v View) Message() string {
	switch v.State {
	case StateNeverLoaded:
		return "Not loaded yet."
	case StateEmpty:
		if v.Total > 0 {
			return "No records match the current filters."
		}
		return "No records."
	default:
		return ""
	}
}

// IDs lists the row identifiers in display order.
func (v View) IDs(idField string) []string {
	ids := make([]string, 0, len(v.Rows))
	for _, row := range v.Rows {
		ids = append(ids, row.ID(idField))
	}
	return ids
}
