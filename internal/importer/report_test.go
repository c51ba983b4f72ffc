package importer

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildReportCounts(t *testing.T) {
	outcomes := []ValidationOutcome{
		{Row: 2, Valid: true, Record: RawImportRecord{FieldPrice: "10.00", FieldCost: "4.00"}},
		{Row: 3, Valid: true, Record: RawImportRecord{FieldPrice: "5.50"}, Warnings: []string{"w"}},
		{Row: 4, Valid: false, Record: RawImportRecord{FieldPrice: "999.99"}, Errors: []string{"name is required"}},
	}

	report := BuildReport(outcomes)
	assert.Equal(t, 3, report.Total)
	assert.Equal(t, 2, report.Valid)
	assert.Equal(t, 1, report.Invalid)
	assert.Equal(t, 1, report.WithWarnings)
	// invalid rows never contribute to the projections
	assert.InDelta(t, 15.50, report.EstimatedRevenue, 0.001)
	assert.InDelta(t, 4.00, report.TotalCost, 0.001)
}

func TestBuildReportTopErrors(t *testing.T) {
	var outcomes []ValidationOutcome
	addRows := func(msg string, n int) {
		for i := 0; i < n; i++ {
			outcomes = append(outcomes, ValidationOutcome{Errors: []string{msg}})
		}
	}
	addRows("erro A", 3)
	addRows("erro B", 5)
	addRows("erro C", 3)
	addRows("erro D", 1)
	addRows("erro E", 2)
	addRows("erro F", 1)

	report := BuildReport(outcomes)
	require.Len(t, report.TopErrors, 5)
	assert.Equal(t, ErrorFrequency{Message: "erro B", Count: 5}, report.TopErrors[0])
	// A and C tie on 3; A was seen first
	assert.Equal(t, "erro A", report.TopErrors[1].Message)
	assert.Equal(t, "erro C", report.TopErrors[2].Message)
	assert.Equal(t, "erro E", report.TopErrors[3].Message)
	// D and F tie on 1; D was seen first and F is cut by the top-5 cap
	assert.Equal(t, "erro D", report.TopErrors[4].Message)
}

func TestBuildReportIdempotent(t *testing.T) {
	var outcomes []ValidationOutcome
	for i := 0; i < 50; i++ {
		outcomes = append(outcomes, ValidationOutcome{
			Valid:  i%2 == 0,
			Record: RawImportRecord{FieldPrice: "10"},
			Errors: []string{fmt.Sprintf("erro %d", i%7)},
		})
	}
	first := BuildReport(outcomes)
	second := BuildReport(outcomes)
	assert.Equal(t, first, second)
}

func TestBuildReportEmpty(t *testing.T) {
	report := BuildReport(nil)
	assert.Equal(t, 0, report.Total)
	assert.Empty(t, report.TopErrors)
	assert.Zero(t, report.EstimatedRevenue)
}
