package view

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"rpgpanel/internal/config"
	"rpgpanel/internal/resource"
)

// Write renders v as an aligned text table using the panel's columns.
// Progress panels get derived remaining and percent columns.
func (v View) Write(w io.Writer, p *config.Panel) error {
	if v.State != StateRows {
		_, err := fmt.Fprintln(w, v.Message())
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	header := append([]string(nil), p.Columns...)
	if p.Progress != nil {
		header = append(header, "remaining", "progress")
	}
	fmt.Fprintln(tw, strings.Join(header, "\t"))

	for _, row := range v.Rows {
		cells := make([]string, 0, len(header))
		for _, column := range p.Columns {
			cells = append(cells, truncate(row.String(column), 40))
		}
		if p.Progress != nil {
			s := SessionOf(row, p)
			cells = append(cells,
				fmt.Sprintf("%ds", int((s.Remaining()+time.Second-1)/time.Second)),
				fmt.Sprintf("%.0f%%", s.Percent()),
			)
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("writing table: %w", err)
	}
	if v.Total != len(v.Rows) {
		_, err := fmt.Fprintf(w, "%d of %d shown\n", len(v.Rows), v.Total)
		return err
	}
	return nil
}

// SessionOf reads the active session fields of a progress panel row.
func SessionOf(row resource.Record, p *config.Panel) resource.ActiveSession {
	if p.Progress == nil {
		return resource.ActiveSession{ID: row.ID(p.IDField)}
	}
	elapsedUnit, _ := config.ParseUnit(p.Progress.ElapsedUnit)
	totalUnit, _ := config.ParseUnit(p.Progress.TotalUnit)
	return resource.SessionFromRecord(row, p.IDField,
		p.Progress.StartField,
		p.Progress.ElapsedField, elapsedUnit,
		p.Progress.TotalField, totalUnit,
		p.Progress.CompletedField,
	)
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
