package importer

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// TemplateColumn describes one canonical column of the starter file.
type TemplateColumn struct {
	Field       Field  `json:"field"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
	Type        string `json:"type"`
	Example     string `json:"example"`
}

// TemplateColumns returns the starter-file column definitions, one per
// canonical field, in template order.
func TemplateColumns() []TemplateColumn {
	return []TemplateColumn{
		{Field: FieldName, Description: "Product name (nome)", Required: true, Type: "string", Example: "Caderno Espiral 96 folhas"},
		{Field: FieldDescription, Description: "Product description (descrição)", Type: "string", Example: "Caderno universitário capa dura"},
		{Field: FieldSKU, Description: "Unique product SKU (código)", Required: true, Type: "string", Example: "PAP-0042"},
		{Field: FieldBarcode, Description: "EAN/GTIN barcode (código de barras)", Type: "string", Example: "7891234567895"},
		{Field: FieldCategory, Description: "Category name (categoria)", Type: "string", Example: "Papelaria"},
		{Field: FieldPrice, Description: "Sale price, dot or comma decimal (preço)", Required: true, Type: "number", Example: "19.90"},
		{Field: FieldCost, Description: "Unit cost (custo)", Type: "number", Example: "11.50"},
		{Field: FieldStock, Description: "Stock on hand (estoque)", Type: "integer", Example: "120"},
		{Field: FieldMinStock, Description: "Low-stock threshold (estoque mínimo)", Type: "integer", Example: "10"},
		{Field: FieldUnit, Description: "Sale unit: un, kg, g, l, ml, m, cm, mm, caixa, pacote, par, dúzia", Type: "string", Example: "un"},
		{Field: FieldWeight, Description: "Weight in kg (peso)", Type: "number", Example: "0.35"},
		{Field: FieldDimensions, Description: "Dimensions, free text (dimensões)", Type: "string", Example: "20x28x1 cm"},
		{Field: FieldBrand, Description: "Brand (marca)", Type: "string", Example: "Tilibra"},
		{Field: FieldSupplier, Description: "Supplier name (fornecedor)", Type: "string", Example: "Distribuidora Central"},
		{Field: FieldNCM, Description: "NCM fiscal code, 8 digits", Type: "string", Example: "4820.20.00"},
		{Field: FieldCEST, Description: "CEST code", Type: "string", Example: "28.064.00"},
		{Field: FieldCFOP, Description: "CFOP code", Type: "string", Example: "5102"},
		{Field: FieldICMSRate, Description: "ICMS rate, 0-100 (alíquota ICMS)", Type: "number", Example: "18"},
		{Field: FieldPISRate, Description: "PIS rate, 0-100 (alíquota PIS)", Type: "number", Example: "1.65"},
		{Field: FieldCOFINSRate, Description: "COFINS rate, 0-100 (alíquota COFINS)", Type: "number", Example: "7.6"},
		{Field: FieldActive, Description: "Active flag: sim/não/yes/no/true/false/1/0", Type: "boolean", Example: "sim"},
		{Field: FieldNotes, Description: "Free notes (observações)", Type: "string", Example: ""},
	}
}

func templateHeaders() []string {
	cols := TemplateColumns()
	headers := make([]string, len(cols))
	for i, col := range cols {
		headers[i] = string(col.Field)
	}
	return headers
}

func templateExampleRow() []string {
	cols := TemplateColumns()
	row := make([]string, len(cols))
	for i, col := range cols {
		row[i] = col.Example
	}
	return row
}

// WriteCSVTemplate writes the canonical header row plus one example row.
func WriteCSVTemplate(w io.Writer) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(templateHeaders()); err != nil {
		return err
	}
	if err := writer.Write(templateExampleRow()); err != nil {
		return err
	}
	writer.Flush()
	return writer.Error()
}

// WriteJSONTemplate writes a one-element JSON array with the example row.
func WriteJSONTemplate(w io.Writer) error {
	example := map[string]string{}
	for _, col := range TemplateColumns() {
		example[string(col.Field)] = col.Example
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode([]map[string]string{example})
}

// WriteXLSXTemplate writes a styled workbook: header row with required
// columns highlighted, one example row, and an instructions sheet listing
// every column definition.
func WriteXLSXTemplate(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Products"
	f.SetSheetName("Sheet1", sheet)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	requiredStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"C65911"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})

	for i, col := range TemplateColumns() {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		headerText := string(col.Field)
		if col.Required {
			headerText += " *"
		}
		f.SetCellValue(sheet, cell, headerText)
		if col.Required {
			f.SetCellStyle(sheet, cell, cell, requiredStyle)
		} else {
			f.SetCellStyle(sheet, cell, cell, headerStyle)
		}

		exampleCell, _ := excelize.CoordinatesToCellName(i+1, 2)
		f.SetCellValue(sheet, exampleCell, col.Example)

		colName, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheet, colName, colName, 18)
	}

	f.NewSheet("Instructions")
	f.SetCellValue("Instructions", "A1", "Product Import Instructions")
	f.SetCellValue("Instructions", "A3", "Columns marked * are required. Headers may also be written in Portuguese (nome, preço, estoque...).")
	f.SetCellValue("Instructions", "A4", "Decimal values accept either '.' or ',' as the separator.")

	f.SetCellValue("Instructions", "A6", "Column")
	f.SetCellValue("Instructions", "B6", "Description")
	f.SetCellValue("Instructions", "C6", "Required")
	f.SetCellValue("Instructions", "D6", "Type")
	f.SetCellValue("Instructions", "E6", "Example")
	for i, col := range TemplateColumns() {
		row := i + 7
		f.SetCellValue("Instructions", fmt.Sprintf("A%d", row), string(col.Field))
		f.SetCellValue("Instructions", fmt.Sprintf("B%d", row), col.Description)
		required := "Optional"
		if col.Required {
			required = "Required"
		}
		f.SetCellValue("Instructions", fmt.Sprintf("C%d", row), required)
		f.SetCellValue("Instructions", fmt.Sprintf("D%d", row), col.Type)
		f.SetCellValue("Instructions", fmt.Sprintf("E%d", row), col.Example)
	}
	f.SetColWidth("Instructions", "A", "A", 16)
	f.SetColWidth("Instructions", "B", "B", 60)
	f.SetColWidth("Instructions", "C", "C", 12)
	f.SetColWidth("Instructions", "D", "D", 12)
	f.SetColWidth("Instructions", "E", "E", 30)

	sheetIdx, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(sheetIdx)

	return f.Write(w)
}
