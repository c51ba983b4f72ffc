package importer

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Every generated template must survive its own pipeline: decode, map every
// header, and validate the example row cleanly.
func TestTemplatesRoundTrip(t *testing.T) {
	cases := []struct {
		name   string
		format Format
		write  func(*bytes.Buffer) error
	}{
		{"csv", FormatDelimited, func(b *bytes.Buffer) error { return WriteCSVTemplate(b) }},
		{"json", FormatStructured, func(b *bytes.Buffer) error { return WriteJSONTemplate(b) }},
		{"xlsx", FormatSpreadsheet, func(b *bytes.Buffer) error { return WriteXLSXTemplate(b) }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, tc.write(&buf))

			var p Pipeline
			_, mapping, outcomes, err := p.Run(buf.Bytes(), tc.format, nil)
			require.NoError(t, err)
			assert.Empty(t, mapping.Unmapped, "every template header must self-map")

			require.NotEmpty(t, outcomes)
			assert.True(t, outcomes[0].Valid, "example row failed validation: %v", outcomes[0].Errors)
		})
	}
}

func TestTemplateColumnsCoverEveryCanonicalField(t *testing.T) {
	cols := TemplateColumns()
	require.Len(t, cols, len(CanonicalFields))
	seen := make(map[Field]bool, len(cols))
	for _, col := range cols {
		seen[col.Field] = true
	}
	for _, f := range CanonicalFields {
		assert.True(t, seen[f], "field %s missing from template", f)
	}
}
