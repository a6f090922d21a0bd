package aggregate

import "github.com/poiesic/namescan/core"

// Summarize counts per-target outcomes.
func Summarize(outcomes []core.TargetOutcome) core.Summary {
	summary := core.Summary{Targets: make([]core.TargetOutcome, 0, len(outcomes))}
	for _, o := range outcomes {
		summary.Targets = append(summary.Targets, o)
		switch o.Status {
		case core.TargetSucceeded:
			summary.Succeeded++
			summary.Matches += o.Matches
		default:
			summary.Failed++
		}
	}
	return summary
}

// Response formats rows and summarizes outcomes into one response.
func Response(rows []core.MatchRow, outcomes []core.TargetOutcome, probability ProbabilityFunc) (*core.SearchResponse, error) {
	records, err := FormatChecked(rows, probability)
	if err != nil {
		return nil, err
	}
	return &core.SearchResponse{
		Records: records,
		Summary: Summarize(outcomes),
	}, nil
}
