package importer

import (
	"strings"

	"github.com/google/uuid"
)

// CatalogEntry is the slice of an existing product the duplicate check
// needs: identity plus the three match keys.
type CatalogEntry struct {
	ID      uuid.UUID `json:"id"`
	SKU     string    `json:"sku"`
	Barcode string    `json:"barcode"`
	Name    string    `json:"name"`
}

// CatalogIndex is a point-in-time view of the catalog keyed for duplicate
// matching: case-insensitive SKU and name, digit-only barcode. It carries no
// live-consistency guarantee beyond the snapshot it was built from; the
// store enforces uniqueness again at write time.
type CatalogIndex struct {
	bySKU     map[string]CatalogEntry
	byBarcode map[string]CatalogEntry
	byName    map[string]CatalogEntry
}

// NewCatalogIndex builds the lookup index from a catalog snapshot.
func NewCatalogIndex(entries []CatalogEntry) *CatalogIndex {
	ix := &CatalogIndex{
		bySKU:     make(map[string]CatalogEntry, len(entries)),
		byBarcode: make(map[string]CatalogEntry, len(entries)),
		byName:    make(map[string]CatalogEntry, len(entries)),
	}
	for _, e := range entries {
		ix.add(e)
	}
	return ix
}

func (ix *CatalogIndex) add(e CatalogEntry) {
	if sku := strings.ToLower(strings.TrimSpace(e.SKU)); sku != "" {
		if _, taken := ix.bySKU[sku]; !taken {
			ix.bySKU[sku] = e
		}
	}
	if barcode := digitsOnly(e.Barcode); barcode != "" {
		if _, taken := ix.byBarcode[barcode]; !taken {
			ix.byBarcode[barcode] = e
		}
	}
	if name := strings.ToLower(strings.TrimSpace(e.Name)); name != "" {
		if _, taken := ix.byName[name]; !taken {
			ix.byName[name] = e
		}
	}
}

// match checks the fixed precedence order, stopping at the first hit. A key
// absent from the record is skipped, not treated as a mismatch.
func (ix *CatalogIndex) match(rec RawImportRecord) (Field, CatalogEntry, bool) {
	if v, ok := rec.Get(FieldSKU); ok {
		if e, hit := ix.bySKU[strings.ToLower(strings.TrimSpace(v))]; hit {
			return FieldSKU, e, true
		}
	}
	if v, ok := rec.Get(FieldBarcode); ok {
		if barcode := digitsOnly(v); barcode != "" {
			if e, hit := ix.byBarcode[barcode]; hit {
				return FieldBarcode, e, true
			}
		}
	}
	if v, ok := rec.Get(FieldName); ok {
		if e, hit := ix.byName[strings.ToLower(strings.TrimSpace(v))]; hit {
			return FieldName, e, true
		}
	}
	return "", CatalogEntry{}, false
}

// DuplicateHit flags one incoming row as a duplicate. MatchedBy names the
// key that matched so the caller can surface multi-key conflicts itself.
// Exactly one of Existing / OfRow is meaningful: Existing is set when the
// match came from the catalog snapshot, OfRow when an earlier row of the
// same batch already claimed the key.
type DuplicateHit struct {
	Row       int           `json:"row"`
	MatchedBy Field         `json:"matchedBy"`
	Existing  *CatalogEntry `json:"existing,omitempty"`
	OfRow     int           `json:"ofRow,omitempty"`
}

// DuplicatePartition splits validated records into duplicates and genuinely
// new rows. The duplicate flag is advisory; it never blocks by itself.
type DuplicatePartition struct {
	Duplicates []DuplicateHit      `json:"duplicates,omitempty"`
	Unique     []ValidationOutcome `json:"-"`
}

// PartitionDuplicates checks each record against the catalog snapshot and
// against earlier rows of the same batch, in SKU → barcode → name
// precedence. Only valid outcomes should be fed in; the caller pre-filters
// invalid rows.
func PartitionDuplicates(outcomes []ValidationOutcome, catalog *CatalogIndex) DuplicatePartition {
	var part DuplicatePartition
	batch := NewCatalogIndex(nil)
	batchRows := map[uuid.UUID]int{}

	for _, out := range outcomes {
		if field, existing, hit := catalog.match(out.Record); hit {
			e := existing
			part.Duplicates = append(part.Duplicates, DuplicateHit{
				Row:       out.Row,
				MatchedBy: field,
				Existing:  &e,
			})
			continue
		}
		if field, earlier, hit := batch.match(out.Record); hit {
			part.Duplicates = append(part.Duplicates, DuplicateHit{
				Row:       out.Row,
				MatchedBy: field,
				OfRow:     batchRows[earlier.ID],
			})
			continue
		}

		part.Unique = append(part.Unique, out)
		sku, _ := out.Record.Get(FieldSKU)
		barcode, _ := out.Record.Get(FieldBarcode)
		name, _ := out.Record.Get(FieldName)
		placeholder := CatalogEntry{ID: uuid.New(), SKU: sku, Barcode: barcode, Name: name}
		batch.add(placeholder)
		batchRows[placeholder.ID] = out.Row
	}
	return part
}
