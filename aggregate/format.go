package aggregate

import (
	"fmt"

	"github.com/poiesic/namescan/core"
)

// DefaultProbability is the confidence reported for a substring match when
// nothing else is configured.
const DefaultProbability = 0.95

// ProbabilityFunc returns the confidence to report for matches in a target.
type ProbabilityFunc func(target core.SearchTarget) float64

// Constant returns a ProbabilityFunc reporting p for every target.
func Constant(p float64) ProbabilityFunc {
	return func(core.SearchTarget) float64 { return p }
}

// Format converts rows to records, one per row, in input order.
// A nil probability reports DefaultProbability.
func Format(rows []core.MatchRow, probability ProbabilityFunc) []core.AggregatedRecord {
	if probability == nil {
		probability = Constant(DefaultProbability)
	}

	records := make([]core.AggregatedRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, core.AggregatedRecord{
			Key:         row.Target.Key(),
			Name:        row.Value,
			Source:      row.Target.Source(),
			Probability: probability(row.Target),
		})
	}
	return records
}

// Validate checks that record was derived from target the way Format does.
// A violation means the formatting contract is broken and is reported as
// *core.AggregationFault.
func Validate(record core.AggregatedRecord, target core.SearchTarget) error {
	fault := func(reason string) error {
		return &core.AggregationFault{Record: record, Reason: reason}
	}

	if want := target.Key(); record.Key != want {
		return fault(fmt.Sprintf("key %q, want %q", record.Key, want))
	}
	if want := target.Source(); record.Source != want {
		return fault(fmt.Sprintf("source %q, want %q", record.Source, want))
	}
	if !core.IsValidProbability(record.Probability) {
		return fault(fmt.Sprintf("probability %v out of range", record.Probability))
	}
	return nil
}

// FormatChecked formats rows and validates every record against its row.
func FormatChecked(rows []core.MatchRow, probability ProbabilityFunc) ([]core.AggregatedRecord, error) {
	records := Format(rows, probability)
	for i, record := range records {
		if err := Validate(record, rows[i].Target); err != nil {
			return nil, err
		}
	}
	return records, nil
}
