package view

import (
	"math"
	"strconv"

	"rpgpanel/internal/config"
	"rpgpanel/internal/resource"
)

type Stat struct {
	Label string
	Value float64
}

func (s Stat) String() string {
	return strconv.FormatFloat(s.Value, 'f', -1, 64)
}

// Summarize computes a panel's stats-header counters over records.
func Summarize(records []resource.Record, aggregates []config.Aggregate) []Stat {
	stats := make([]Stat, 0, len(aggregates))
	for _, agg := range aggregates {
		stats = append(stats, Stat{Label: agg.Label, Value: aggregate(records, agg)})
	}
	return stats
}

func aggregate(records []resource.Record, agg config.Aggregate) float64 {
	switch agg.Kind {
	case config.AggregateCount:
		return float64(len(records))
	case config.AggregateCountIf:
		n := 0
		for _, r := range records {
			if r.String(agg.Field) == agg.Value {
				n++
			}
		}
		return float64(n)
	case config.AggregateSum:
		sum := 0.0
		for _, r := range records {
			if v, ok := r.Number(agg.Field); ok {
				sum += v
			}
		}
		return sum
	case config.AggregateAvg:
		if len(records) == 0 {
			return 0
		}
		sum := 0.0
		for _, r := range records {
			if v, ok := r.Number(agg.Field); ok {
				sum += v
			}
		}
		return math.Round(sum / float64(len(records)))
	case config.AggregateLen:
		n := 0
		for _, r := range records {
			if list, ok := r[agg.Field].([]any); ok {
				n += len(list)
			}
		}
		return float64(n)
	default:
		return 0
	}
}
