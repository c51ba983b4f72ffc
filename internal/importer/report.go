package importer

import "sort"

// topErrorCount is how many distinct recurring error messages the report
// surfaces.
const topErrorCount = 5

// ErrorFrequency is one recurring error message with its occurrence count.
type ErrorFrequency struct {
	Message string `json:"message"`
	Count   int    `json:"count"`
}

// ImportReport aggregates all row outcomes of one import run. Derived and
// read-only; recomputed per run.
type ImportReport struct {
	Total            int              `json:"total"`
	Valid            int              `json:"valid"`
	Invalid          int              `json:"invalid"`
	WithWarnings     int              `json:"withWarnings"`
	TopErrors        []ErrorFrequency `json:"topErrors,omitempty"`
	EstimatedRevenue float64          `json:"estimatedRevenue"`
	TotalCost        float64          `json:"totalCost"`
}

// BuildReport computes the summary over an outcome sequence. Deterministic:
// identical input yields identical counts and identical top-error ranking,
// with ties broken by first-seen order.
func BuildReport(outcomes []ValidationOutcome) ImportReport {
	report := ImportReport{Total: len(outcomes)}

	counts := make(map[string]int)
	var firstSeen []string

	for _, out := range outcomes {
		if out.Valid {
			report.Valid++
			// Validity was established upstream; absent cost counts as 0
			// here, never as an error.
			if v, ok := out.Record.Get(FieldPrice); ok {
				if p, err := parseDecimal(v); err == nil {
					report.EstimatedRevenue += p
				}
			}
			if v, ok := out.Record.Get(FieldCost); ok {
				if c, err := parseDecimal(v); err == nil {
					report.TotalCost += c
				}
			}
		} else {
			report.Invalid++
		}
		if len(out.Warnings) > 0 {
			report.WithWarnings++
		}
		for _, msg := range out.Errors {
			if counts[msg] == 0 {
				firstSeen = append(firstSeen, msg)
			}
			counts[msg]++
		}
	}

	// firstSeen is already tie-break order; a stable sort by count keeps it.
	sort.SliceStable(firstSeen, func(i, j int) bool {
		return counts[firstSeen[i]] > counts[firstSeen[j]]
	})
	for i, msg := range firstSeen {
		if i == topErrorCount {
			break
		}
		report.TopErrors = append(report.TopErrors, ErrorFrequency{Message: msg, Count: counts[msg]})
	}

	return report
}
