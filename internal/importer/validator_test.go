package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRecord() RawImportRecord {
	return RawImportRecord{
		FieldName:  "Mouse sem fio",
		FieldSKU:   "ELE-001",
		FieldPrice: "99.90",
	}
}

func TestValidateRequiredFields(t *testing.T) {
	t.Run("missing name blocks the row", func(t *testing.T) {
		rec := validRecord()
		delete(rec, FieldName)
		out := Validate(rec, 2)
		assert.False(t, out.Valid)
		assert.Contains(t, out.Errors, "name is required and must have at least 2 characters")
	})

	t.Run("single-character name blocks the row", func(t *testing.T) {
		rec := validRecord()
		rec[FieldName] = "M"
		out := Validate(rec, 2)
		assert.False(t, out.Valid)
	})

	t.Run("missing sku blocks the row", func(t *testing.T) {
		rec := validRecord()
		delete(rec, FieldSKU)
		out := Validate(rec, 2)
		assert.False(t, out.Valid)
		assert.Contains(t, out.Errors, "sku is required and must have at least 2 characters")
	})

	t.Run("missing price blocks the row", func(t *testing.T) {
		rec := validRecord()
		delete(rec, FieldPrice)
		out := Validate(rec, 2)
		assert.False(t, out.Valid)
		assert.Contains(t, out.Errors, "price is required")
	})
}

func TestValidatePrice(t *testing.T) {
	t.Run("comma and dot decimals parse identically", func(t *testing.T) {
		comma := validRecord()
		comma[FieldPrice] = "19,90"
		dot := validRecord()
		dot[FieldPrice] = "19.90"

		outComma := Validate(comma, 2)
		outDot := Validate(dot, 2)
		assert.True(t, outComma.Valid)
		assert.True(t, outDot.Valid)

		normalized, _ := outComma.Record.Get(FieldPrice)
		assert.Equal(t, "19.90", normalized)
	})

	t.Run("zero and negative prices are rejected", func(t *testing.T) {
		for _, v := range []string{"0", "-5", "abc"} {
			rec := validRecord()
			rec[FieldPrice] = v
			assert.False(t, Validate(rec, 2).Valid, "price %q", v)
		}
	})

	t.Run("absurdly high price warns but stays valid", func(t *testing.T) {
		rec := validRecord()
		rec[FieldPrice] = "1500000"
		out := Validate(rec, 2)
		assert.True(t, out.Valid)
		assert.NotEmpty(t, out.Warnings)
	})
}

func TestValidateCrossFieldRules(t *testing.T) {
	t.Run("cost above price warns", func(t *testing.T) {
		rec := validRecord()
		rec[FieldCost] = "150,00"
		out := Validate(rec, 2)
		assert.True(t, out.Valid)
		assert.Contains(t, out.Warnings, "cost is greater than price, margin will be negative")
	})

	t.Run("minStock above stock warns", func(t *testing.T) {
		rec := validRecord()
		rec[FieldStock] = "10"
		rec[FieldMinStock] = "20"
		out := Validate(rec, 2)
		assert.True(t, out.Valid)
		assert.Contains(t, out.Warnings, "minStock is greater than stock, the product will be low on stock immediately")
	})

	t.Run("negative stock is an error", func(t *testing.T) {
		rec := validRecord()
		rec[FieldStock] = "-1"
		assert.False(t, Validate(rec, 2).Valid)
	})

	t.Run("fractional stock is an error", func(t *testing.T) {
		rec := validRecord()
		rec[FieldStock] = "10.5"
		assert.False(t, Validate(rec, 2).Valid)
	})
}

func TestValidateNCM(t *testing.T) {
	t.Run("formatted code with 8 digits passes", func(t *testing.T) {
		rec := validRecord()
		rec[FieldNCM] = "8471.30.11"
		out := Validate(rec, 2)
		assert.True(t, out.Valid)
		assert.Empty(t, out.Errors)

		normalized, _ := out.Record.Get(FieldNCM)
		assert.Equal(t, "84713011", normalized)
	})

	t.Run("wrong digit count fails", func(t *testing.T) {
		for _, v := range []string{"123", "8471.30.111", "abcd"} {
			rec := validRecord()
			rec[FieldNCM] = v
			out := Validate(rec, 2)
			assert.False(t, out.Valid, "ncm %q", v)
			assert.Contains(t, out.Errors, "ncm must contain exactly 8 digits")
		}
	})
}

func TestValidateRates(t *testing.T) {
	rec := validRecord()
	rec[FieldICMSRate] = "18"
	rec[FieldPISRate] = "1,65"
	rec[FieldCOFINSRate] = "7.6"
	out := Validate(rec, 2)
	require.True(t, out.Valid)

	pis, _ := out.Record.Get(FieldPISRate)
	assert.Equal(t, "1.65", pis)

	bad := validRecord()
	bad[FieldICMSRate] = "120"
	out = Validate(bad, 2)
	assert.False(t, out.Valid)
	assert.Contains(t, out.Errors, "icmsRate must be a number between 0 and 100")
}

func TestValidateAdvisoryFields(t *testing.T) {
	t.Run("unknown unit warns only", func(t *testing.T) {
		rec := validRecord()
		rec[FieldUnit] = "fardo"
		out := Validate(rec, 2)
		assert.True(t, out.Valid)
		assert.NotEmpty(t, out.Warnings)
	})

	t.Run("recognized units pass silently", func(t *testing.T) {
		for _, u := range []string{"un", "KG", "dúzia", " caixa "} {
			rec := validRecord()
			rec[FieldUnit] = u
			out := Validate(rec, 2)
			assert.Empty(t, out.Warnings, "unit %q", u)
		}
	})

	t.Run("unrecognized active token warns only", func(t *testing.T) {
		rec := validRecord()
		rec[FieldActive] = "talvez"
		out := Validate(rec, 2)
		assert.True(t, out.Valid)
		assert.NotEmpty(t, out.Warnings)
	})
}

func TestValidateCollectsEveryIssue(t *testing.T) {
	rec := RawImportRecord{
		FieldPrice: "abc",
		FieldStock: "-2",
		FieldNCM:   "12",
	}
	out := Validate(rec, 7)
	assert.False(t, out.Valid)
	assert.Equal(t, 7, out.Row)
	// name, sku, price, stock and ncm all failed
	assert.Len(t, out.Errors, 5)
}

func TestTruthyToken(t *testing.T) {
	for _, v := range []string{"sim", "SIM", "yes", "true", "1"} {
		assert.True(t, TruthyToken(v), v)
	}
	for _, v := range []string{"não", "nao", "no", "false", "0", ""} {
		assert.False(t, TruthyToken(v), v)
	}
}
