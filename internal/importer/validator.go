package importer

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// ValidationOutcome wraps one record with everything the rules found. A
// record with Valid=false must never reach catalog insertion, but it still
// carries its full error list so the operator can fix and resubmit.
// Warnings never affect Valid.
type ValidationOutcome struct {
	Row      int             `json:"row"`
	Record   RawImportRecord `json:"record"`
	Errors   []string        `json:"errors,omitempty"`
	Warnings []string        `json:"warnings,omitempty"`
	Valid    bool            `json:"valid"`
}

// Validation thresholds. Values beyond these are suspicious enough to flag
// but not to reject.
const (
	maxReasonablePrice  = 999999.99
	maxReasonableStock  = 999999
	maxReasonableWeight = 1000
	maxCategoryLen      = 50
	maxBrandLen         = 50
	maxDescriptionLen   = 500
)

// knownUnits is the short list of recognized sale units. Anything else is
// accepted with a warning.
var knownUnits = map[string]bool{
	"un": true, "kg": true, "g": true, "l": true, "ml": true,
	"m": true, "cm": true, "mm": true,
	"caixa": true, "pacote": true, "par": true, "dúzia": true,
}

// booleanTokens are the values recognized for the active flag, in either
// language.
var booleanTokens = map[string]bool{
	"sim": true, "não": true, "nao": true, "yes": true, "no": true,
	"true": true, "false": true, "1": true, "0": true,
}

// TruthyToken reports whether v is an affirmative boolean token. Callers
// mapping the active flag should treat absence as active at the catalog
// layer, not here.
func TruthyToken(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "sim", "yes", "true", "1":
		return true
	}
	return false
}

// Validate applies every applicable rule to one mapped record. Rules run
// independently with no early return, so the caller sees every issue at
// once. The returned outcome carries the normalized record (dot-decimal
// numbers, digit-only NCM) regardless of validity.
func Validate(record RawImportRecord, rowNumber int) ValidationOutcome {
	return validateRecord(record, rowNumber, true)
}

// validateRecord is Validate with the sku requirement switchable. Files
// without any sku column get SKUs generated at insert time, so requiring
// one per row would reject every row of an otherwise clean file.
func validateRecord(record RawImportRecord, rowNumber int, requireSKU bool) ValidationOutcome {
	out := ValidationOutcome{Row: rowNumber, Record: record.normalizedCopy()}

	addError := func(msg string) { out.Errors = append(out.Errors, msg) }
	addWarning := func(msg string) { out.Warnings = append(out.Warnings, msg) }

	if v, ok := record.Get(FieldName); !ok || len([]rune(strings.TrimSpace(v))) < 2 {
		addError("name is required and must have at least 2 characters")
	}
	if v, ok := record.Get(FieldSKU); !ok {
		if requireSKU {
			addError("sku is required and must have at least 2 characters")
		}
	} else if len([]rune(strings.TrimSpace(v))) < 2 {
		addError("sku is required and must have at least 2 characters")
	}

	price, priceOK := 0.0, false
	if v, ok := record.Get(FieldPrice); !ok {
		addError("price is required")
	} else if p, err := parseDecimal(v); err != nil {
		addError("price must be a valid number")
	} else if p <= 0 {
		addError("price must be greater than zero")
	} else {
		price, priceOK = p, true
		if p > maxReasonablePrice {
			addWarning(fmt.Sprintf("price %.2f looks too high, check for a data entry mistake", p))
		}
	}

	if v, ok := record.Get(FieldCost); ok {
		if c, err := parseDecimal(v); err != nil || c < 0 {
			addError("cost must be a non-negative number")
		} else if priceOK && c > price {
			addWarning("cost is greater than price, margin will be negative")
		}
	}

	stock, stockOK := 0, false
	if v, ok := record.Get(FieldStock); ok {
		if s, err := strconv.Atoi(strings.TrimSpace(v)); err != nil || s < 0 {
			addError("stock must be a non-negative whole number")
		} else {
			stock, stockOK = s, true
			if s > maxReasonableStock {
				addWarning(fmt.Sprintf("stock %d looks too high, check for a data entry mistake", s))
			}
		}
	}

	if v, ok := record.Get(FieldMinStock); ok {
		if m, err := strconv.Atoi(strings.TrimSpace(v)); err != nil || m < 0 {
			addError("minStock must be a non-negative whole number")
		} else if stockOK && m > stock {
			addWarning("minStock is greater than stock, the product will be low on stock immediately")
		}
	}

	if v, ok := record.Get(FieldWeight); ok {
		if w, err := parseDecimal(v); err != nil || w <= 0 {
			addError("weight must be a positive number")
		} else if w > maxReasonableWeight {
			addWarning(fmt.Sprintf("weight %.2f looks too high, check the unit", w))
		}
	}

	if v, ok := record.Get(FieldUnit); ok {
		if !knownUnits[strings.ToLower(strings.TrimSpace(v))] {
			addWarning(fmt.Sprintf("unit %q is not a recognized unit", v))
		}
	}

	if v, ok := record.Get(FieldNCM); ok {
		if len(digitsOnly(v)) != 8 {
			addError("ncm must contain exactly 8 digits")
		}
	}

	validateRate(record, FieldICMSRate, addError)
	validateRate(record, FieldPISRate, addError)
	validateRate(record, FieldCOFINSRate, addError)

	if v, ok := record.Get(FieldActive); ok {
		if !booleanTokens[strings.ToLower(strings.TrimSpace(v))] {
			addWarning(fmt.Sprintf("active value %q is not recognized as yes/no", v))
		}
	}

	if v, ok := record.Get(FieldCategory); ok && len([]rune(strings.TrimSpace(v))) > maxCategoryLen {
		addWarning(fmt.Sprintf("category is longer than %d characters", maxCategoryLen))
	}
	if v, ok := record.Get(FieldBrand); ok && len([]rune(strings.TrimSpace(v))) > maxBrandLen {
		addWarning(fmt.Sprintf("brand is longer than %d characters", maxBrandLen))
	}
	if v, ok := record.Get(FieldDescription); ok && len([]rune(strings.TrimSpace(v))) > maxDescriptionLen {
		addWarning(fmt.Sprintf("description is longer than %d characters", maxDescriptionLen))
	}

	out.Valid = len(out.Errors) == 0
	return out
}

func validateRate(record RawImportRecord, field Field, addError func(string)) {
	v, ok := record.Get(field)
	if !ok {
		return
	}
	if r, err := parseDecimal(v); err != nil || r < 0 || r > 100 {
		addError(fmt.Sprintf("%s must be a number between 0 and 100", field))
	}
}

// decimalFields are the fields that accept either "." or "," as the decimal
// separator. Identifiers such as sku and ncm are deliberately excluded.
var decimalFields = map[Field]bool{
	FieldPrice: true, FieldCost: true, FieldWeight: true,
	FieldICMSRate: true, FieldPISRate: true, FieldCOFINSRate: true,
}

// normalizedCopy returns a copy of the record with decimal fields rewritten
// to dot-decimal form and the NCM reduced to its digits, so downstream
// consumers (reporting, catalog insertion) parse one canonical shape.
func (r RawImportRecord) normalizedCopy() RawImportRecord {
	out := make(RawImportRecord, len(r))
	for f, v := range r {
		switch {
		case decimalFields[f]:
			out[f] = normalizeDecimal(v)
		case f == FieldNCM:
			out[f] = digitsOnly(v)
		default:
			out[f] = v
		}
	}
	return out
}

// normalizeDecimal rewrites a comma decimal separator to a dot. The source
// data mixes US and Brazilian locale conventions.
func normalizeDecimal(v string) string {
	return strings.ReplaceAll(strings.TrimSpace(v), ",", ".")
}

func parseDecimal(v string) (float64, error) {
	return strconv.ParseFloat(normalizeDecimal(v), 64)
}

func digitsOnly(v string) string {
	var b strings.Builder
	for _, r := range v {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
