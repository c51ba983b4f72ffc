package importer

import "strings"

// Field identifies one canonical product attribute, independent of the
// wording or language of the source file's header.
type Field string

const (
	FieldName        Field = "name"
	FieldDescription Field = "description"
	FieldSKU         Field = "sku"
	FieldBarcode     Field = "barcode"
	FieldCategory    Field = "category"
	FieldPrice       Field = "price"
	FieldCost        Field = "cost"
	FieldStock       Field = "stock"
	FieldMinStock    Field = "minStock"
	FieldUnit        Field = "unit"
	FieldWeight      Field = "weight"
	FieldDimensions  Field = "dimensions"
	FieldBrand       Field = "brand"
	FieldSupplier    Field = "supplier"
	FieldNCM         Field = "ncm"
	FieldCEST        Field = "cest"
	FieldCFOP        Field = "cfop"
	FieldICMSRate    Field = "icmsRate"
	FieldPISRate     Field = "pisRate"
	FieldCOFINSRate  Field = "cofinsRate"
	FieldActive      Field = "active"
	FieldNotes       Field = "notes"
)

// CanonicalFields lists every field the pipeline understands, in template
// column order.
var CanonicalFields = []Field{
	FieldName, FieldDescription, FieldSKU, FieldBarcode, FieldCategory,
	FieldPrice, FieldCost, FieldStock, FieldMinStock, FieldUnit,
	FieldWeight, FieldDimensions, FieldBrand, FieldSupplier,
	FieldNCM, FieldCEST, FieldCFOP,
	FieldICMSRate, FieldPISRate, FieldCOFINSRate,
	FieldActive, FieldNotes,
}

// KnownField reports whether s names a canonical field (exact match on the
// field identifier, e.g. "minStock").
func KnownField(s string) (Field, bool) {
	for _, f := range CanonicalFields {
		if string(f) == s {
			return f, true
		}
	}
	return "", false
}

// RawImportRecord is one row after mapping. Fields absent from the source
// file are simply missing from the map, never present as empty strings.
type RawImportRecord map[Field]string

// Get returns the raw value for f and whether it was present in the source.
func (r RawImportRecord) Get(f Field) (string, bool) {
	v, ok := r[f]
	return v, ok
}

// ColumnMapping maps raw header strings to canonical fields. Headers with no
// match are kept in Unmapped so callers can surface them; they are never
// silently dropped.
type ColumnMapping struct {
	Columns  map[string]Field `json:"columns"`
	Unmapped []string         `json:"unmapped,omitempty"`
}

// synonyms is the static bilingual (pt-BR / en) header dictionary. Keys are
// normalized: lowercase, trimmed, inner whitespace collapsed.
var synonyms = map[string]Field{
	"name": FieldName, "nome": FieldName, "produto": FieldName,
	"product": FieldName, "nome do produto": FieldName, "product name": FieldName,
	"item": FieldName,

	"description": FieldDescription, "descrição": FieldDescription,
	"descricao": FieldDescription, "desc": FieldDescription,
	"detalhes": FieldDescription, "details": FieldDescription,

	"sku": FieldSKU, "código": FieldSKU, "codigo": FieldSKU, "code": FieldSKU,
	"cod": FieldSKU, "referência": FieldSKU, "referencia": FieldSKU,
	"ref": FieldSKU, "código interno": FieldSKU, "codigo interno": FieldSKU,

	"barcode": FieldBarcode, "código de barras": FieldBarcode,
	"codigo de barras": FieldBarcode, "cod barras": FieldBarcode,
	"codigo_barra": FieldBarcode, "ean": FieldBarcode, "ean13": FieldBarcode,
	"gtin": FieldBarcode,

	"category": FieldCategory, "categoria": FieldCategory,

	"price": FieldPrice, "preço": FieldPrice, "preco": FieldPrice,
	"valor": FieldPrice, "preço de venda": FieldPrice,
	"preco de venda": FieldPrice, "valor de venda": FieldPrice,
	"sale price": FieldPrice,

	"cost": FieldCost, "custo": FieldCost, "preço de custo": FieldCost,
	"preco de custo": FieldCost, "cost price": FieldCost,
	"custo unitário": FieldCost, "custo unitario": FieldCost,

	"stock": FieldStock, "estoque": FieldStock, "quantidade": FieldStock,
	"quantity": FieldStock, "qty": FieldStock, "qtd": FieldStock,
	"saldo": FieldStock,

	"minstock": FieldMinStock, "min stock": FieldMinStock,
	"minimum stock": FieldMinStock, "estoque mínimo": FieldMinStock,
	"estoque minimo": FieldMinStock, "estoque min": FieldMinStock,
	"low stock threshold": FieldMinStock,

	"unit": FieldUnit, "unidade": FieldUnit, "un": FieldUnit,
	"unidade de medida": FieldUnit, "uom": FieldUnit,

	"weight": FieldWeight, "peso": FieldWeight, "peso (kg)": FieldWeight,
	"weight (kg)": FieldWeight,

	"dimensions": FieldDimensions, "dimensões": FieldDimensions,
	"dimensoes": FieldDimensions, "medidas": FieldDimensions,
	"tamanho": FieldDimensions, "size": FieldDimensions,

	"brand": FieldBrand, "marca": FieldBrand, "fabricante": FieldBrand,
	"manufacturer": FieldBrand,

	"supplier": FieldSupplier, "fornecedor": FieldSupplier,

	"ncm": FieldNCM, "código ncm": FieldNCM, "codigo ncm": FieldNCM,
	"cest": FieldCEST, "código cest": FieldCEST, "codigo cest": FieldCEST,
	"cfop": FieldCFOP,

	"icms": FieldICMSRate, "icmsrate": FieldICMSRate, "icms rate": FieldICMSRate,
	"icms %": FieldICMSRate, "alíquota icms": FieldICMSRate,
	"aliquota icms": FieldICMSRate,

	"pis": FieldPISRate, "pisrate": FieldPISRate, "pis rate": FieldPISRate,
	"alíquota pis": FieldPISRate, "aliquota pis": FieldPISRate,

	"cofins": FieldCOFINSRate, "cofinsrate": FieldCOFINSRate,
	"cofins rate": FieldCOFINSRate, "alíquota cofins": FieldCOFINSRate,
	"aliquota cofins": FieldCOFINSRate,

	"active": FieldActive, "ativo": FieldActive, "status": FieldActive,

	"notes": FieldNotes, "observações": FieldNotes, "observacoes": FieldNotes,
	"obs": FieldNotes, "notas": FieldNotes, "comments": FieldNotes,
}

// normalizeHeader lowercases, trims, collapses inner whitespace and strips
// the template's required-column marker.
func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.TrimSuffix(h, " *")
	return strings.Join(strings.Fields(h), " ")
}

// InferMapping resolves each header against the synonym dictionary.
// Case-insensitive, whitespace-trimmed. Headers with no match land in
// Unmapped; that is not an error at this stage.
func InferMapping(headers []string) ColumnMapping {
	m := ColumnMapping{Columns: make(map[string]Field, len(headers))}
	for _, h := range headers {
		if f, ok := synonyms[normalizeHeader(h)]; ok {
			m.Columns[h] = f
			continue
		}
		m.Unmapped = append(m.Unmapped, h)
	}
	return m
}

// MergeMappings overlays caller-supplied overrides on an inferred mapping.
// Overrides win on conflict. Neither input is mutated.
func MergeMappings(inferred ColumnMapping, overrides map[string]Field) ColumnMapping {
	merged := ColumnMapping{Columns: make(map[string]Field, len(inferred.Columns)+len(overrides))}
	for h, f := range inferred.Columns {
		merged.Columns[h] = f
	}
	for h, f := range overrides {
		merged.Columns[h] = f
	}
	for _, h := range inferred.Unmapped {
		if _, ok := merged.Columns[h]; !ok {
			merged.Unmapped = append(merged.Unmapped, h)
		}
	}
	return merged
}

// ApplyMapping joins one row's cells against the headers positionally. A
// cell that is empty after trimming is treated as field-absent. Duplicate
// headers resolve positionally: the first non-empty occurrence wins. A row
// with more cells than headers folds the overflow into the last cell joined
// with "," — the usual artifact of unquoted decimal commas in delimited
// files.
func ApplyMapping(cells []string, headers []string, mapping ColumnMapping) RawImportRecord {
	if len(headers) > 0 && len(cells) > len(headers) {
		folded := make([]string, len(headers))
		copy(folded, cells[:len(headers)-1])
		folded[len(headers)-1] = strings.Join(cells[len(headers)-1:], ",")
		cells = folded
	}

	rec := make(RawImportRecord)
	for i, h := range headers {
		if i >= len(cells) {
			break
		}
		f, ok := mapping.Columns[h]
		if !ok {
			continue
		}
		v := strings.TrimSpace(cells[i])
		if v == "" {
			continue
		}
		if _, exists := rec[f]; !exists {
			rec[f] = v
		}
	}
	return rec
}
