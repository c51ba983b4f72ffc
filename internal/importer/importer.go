// Package importer implements the bulk product import pipeline: container
// decoding, header-to-field mapping, per-row validation, duplicate
// partitioning and report aggregation. The pipeline is a pure transform
// chain; no component carries state across calls.
package importer

import (
	"runtime"
	"sync"
)

// DefaultWorkers bounds the validation fan-out when the caller does not set
// one.
var DefaultWorkers = runtime.NumCPU()

// Pipeline runs the forward transform chain for one import submission.
type Pipeline struct {
	// Workers caps the validation worker pool. Values < 1 fall back to
	// DefaultWorkers.
	Workers int
}

// firstDataRow returns the user-facing number of the first data row:
// delimited and spreadsheet files count from 2 because the header occupies
// row 1, structured arrays count elements from 1.
func firstDataRow(format Format) int {
	if format == FormatStructured {
		return 1
	}
	return 2
}

// MapRows applies the mapping to every decoded row, preserving order.
func MapRows(table *DecodedTable, mapping ColumnMapping) []RawImportRecord {
	records := make([]RawImportRecord, len(table.Rows))
	for i, row := range table.Rows {
		records[i] = ApplyMapping(row, table.Headers, mapping)
	}
	return records
}

// ValidateAll validates every mapped row. Row validation is independent and
// touches no shared state, so it fans out across a bounded worker pool;
// outcomes land in an index-addressed slice so the result keeps original row
// order, which matters for operator-facing display and for reproducible
// top-error ranking on ties.
func (p Pipeline) ValidateAll(table *DecodedTable, mapping ColumnMapping) []ValidationOutcome {
	records := MapRows(table, mapping)
	outcomes := make([]ValidationOutcome, len(records))
	base := firstDataRow(table.SourceFormat)

	// A file that maps no sku column at all gets SKUs generated at insert
	// time, so the per-row sku requirement only applies when the column
	// exists somewhere in the mapping.
	requireSKU := false
	for _, f := range mapping.Columns {
		if f == FieldSKU {
			requireSKU = true
			break
		}
	}

	workers := p.Workers
	if workers < 1 {
		workers = DefaultWorkers
	}
	if workers > len(records) {
		workers = len(records)
	}
	if workers <= 1 {
		for i, rec := range records {
			outcomes[i] = validateRecord(rec, base+i, requireSKU)
		}
		return outcomes
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				outcomes[i] = validateRecord(records[i], base+i, requireSKU)
			}
		}()
	}
	for i := range records {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return outcomes
}

// Run decodes, maps and validates one submission. Overrides take precedence
// over inferred mappings. The returned mapping is the merged view, with
// still-unmapped headers surfaced.
func (p Pipeline) Run(data []byte, format Format, overrides map[string]Field) (*DecodedTable, ColumnMapping, []ValidationOutcome, error) {
	table, err := Decode(data, format)
	if err != nil {
		return nil, ColumnMapping{}, nil, err
	}
	mapping := MergeMappings(InferMapping(table.Headers), overrides)
	outcomes := p.ValidateAll(table, mapping)
	return table, mapping, outcomes, nil
}

// ValidOutcomes filters the outcomes eligible for duplicate partitioning
// and catalog insertion.
func ValidOutcomes(outcomes []ValidationOutcome) []ValidationOutcome {
	var valid []ValidationOutcome
	for _, out := range outcomes {
		if out.Valid {
			valid = append(valid, out)
		}
	}
	return valid
}
