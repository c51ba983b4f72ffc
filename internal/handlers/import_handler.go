package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"products-import-service/internal/events"
	"products-import-service/internal/importer"
	"products-import-service/internal/models"
	"products-import-service/internal/repository"
)

// ImportHandler serves the bulk product import endpoints.
type ImportHandler struct {
	store          repository.ProductStore
	events         *events.Publisher
	maxUploadBytes int64
	pipeline       importer.Pipeline
	logger         *logrus.Entry
}

func NewImportHandler(store repository.ProductStore, publisher *events.Publisher, maxUploadBytes int64, workers int, logger *logrus.Entry) *ImportHandler {
	return &ImportHandler{
		store:          store,
		events:         publisher,
		maxUploadBytes: maxUploadBytes,
		pipeline:       importer.Pipeline{Workers: workers},
		logger:         logger,
	}
}

// ImportProducts handles bulk product import from CSV, XLSX or JSON files
// @Summary Import products from file
// @Description Decode, map and validate a product file, then insert the accepted rows. Supports CSV, XLSX and JSON with Portuguese or English headers.
// @Tags products
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV, XLSX or JSON file"
// @Param format formData string false "Source format: csv, xlsx or json (inferred from the filename when omitted)"
// @Param validateOnly formData bool false "Run validation without inserting"
// @Param skipDuplicates formData bool false "Silently skip rows that already exist instead of reporting them"
// @Param mapping formData string false "JSON object mapping source headers to canonical fields"
// @Success 200 {object} models.ImportResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 413 {object} models.ErrorResponse
// @Router /products/import [post]
func (h *ImportHandler) ImportProducts(c *gin.Context) {
	start := time.Now()

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "FILE_REQUIRED", Message: "File is required"},
		})
		return
	}
	defer file.Close()

	if header.Size > h.maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "FILE_TOO_LARGE",
				Message: fmt.Sprintf("File exceeds the %d MB limit", h.maxUploadBytes/(1024*1024)),
			},
		})
		return
	}

	format, err := resolveFormat(c.PostForm("format"), header.Filename)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "INVALID_FORMAT", Message: err.Error()},
		})
		return
	}

	overrides, err := parseMappingOverrides(c.PostForm("mapping"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "MAPPING_INVALID", Message: err.Error()},
		})
		return
	}

	opts := models.ImportOptions{
		ValidateOnly:   c.PostForm("validateOnly") == "true",
		SkipDuplicates: c.PostForm("skipDuplicates") == "true",
	}

	data, err := io.ReadAll(io.LimitReader(file, h.maxUploadBytes+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "READ_ERROR", Message: "Failed to read uploaded file"},
		})
		return
	}
	if int64(len(data)) > h.maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "FILE_TOO_LARGE",
				Message: fmt.Sprintf("File exceeds the %d MB limit", h.maxUploadBytes/(1024*1024)),
			},
		})
		return
	}

	table, mapping, outcomes, err := h.pipeline.Run(data, format, overrides)
	if err != nil {
		code := "PARSE_ERROR"
		if errors.Is(err, importer.ErrTooFewRows) || errors.Is(err, importer.ErrEmpty) {
			code = "EMPTY_FILE"
		}
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: code, Message: err.Error()},
		})
		return
	}

	catalog, err := h.store.SnapshotCatalog(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to snapshot catalog for duplicate check")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "STORE_ERROR", Message: "Failed to load catalog for duplicate check"},
		})
		return
	}

	valid := importer.ValidOutcomes(outcomes)
	partition := importer.PartitionDuplicates(valid, importer.NewCatalogIndex(catalog))
	report := importer.BuildReport(outcomes)

	response := models.ImportResponse{
		Success:         true,
		Report:          report,
		Outcomes:        outcomes,
		Duplicates:      partition.Duplicates,
		UnmappedHeaders: mapping.Unmapped,
	}

	if !opts.ValidateOnly {
		// With skipDuplicates the rows the pipeline flagged are dropped up
		// front; without it they go to the store, which re-checks and reports
		// them per row.
		candidates := valid
		if opts.SkipDuplicates {
			candidates = partition.Unique
			response.Skipped = len(valid) - len(partition.Unique)
		}

		products := make([]*models.Product, len(candidates))
		rows := make([]int, len(candidates))
		for i, out := range candidates {
			products[i] = buildProduct(out.Record)
			rows[i] = out.Row
		}

		if len(products) > 0 {
			result, err := h.store.BulkInsert(c.Request.Context(), products, opts.SkipDuplicates)
			if err != nil && (result == nil || result.Success == 0) {
				h.logger.WithError(err).Error("Bulk insert failed")
				c.JSON(http.StatusInternalServerError, models.ErrorResponse{
					Success: false,
					Error:   models.Error{Code: "STORE_ERROR", Message: "Failed to insert products"},
				})
				return
			}
			response.Inserted = result.Success
			response.Skipped += result.Skipped
			for _, insErr := range result.Errors {
				response.InsertErrors = append(response.InsertErrors, models.InsertError{
					Row:     rows[insErr.Index],
					Code:    insErr.Code,
					Message: insErr.Message,
				})
			}
		}
	}

	response.ProcessingMs = time.Since(start).Milliseconds()

	h.events.PublishImportCompleted(events.ImportCompletedEvent{
		ImportID:     uuid.New().String(),
		Format:       string(table.SourceFormat),
		ValidateOnly: opts.ValidateOnly,
		Total:        report.Total,
		Valid:        report.Valid,
		Invalid:      report.Invalid,
		Duplicates:   len(partition.Duplicates),
		Inserted:     response.Inserted,
		Skipped:      response.Skipped,
		CompletedAt:  time.Now(),
	})

	h.logger.WithFields(logrus.Fields{
		"format":        table.SourceFormat,
		"total":         report.Total,
		"valid":         report.Valid,
		"invalid":       report.Invalid,
		"duplicates":    len(partition.Duplicates),
		"inserted":      response.Inserted,
		"validate_only": opts.ValidateOnly,
		"duration_ms":   response.ProcessingMs,
	}).Info("Import processed")

	c.JSON(http.StatusOK, response)
}

// ImportTemplate serves a starter file in the requested format
// @Summary Download an import template
// @Description Returns a starter file with the canonical headers and one example row
// @Tags products
// @Produce octet-stream
// @Param format query string false "Template format: csv, xlsx or json" default(xlsx)
// @Success 200 {file} binary
// @Failure 400 {object} models.ErrorResponse
// @Router /products/import/template [get]
func (h *ImportHandler) ImportTemplate(c *gin.Context) {
	format := strings.ToLower(c.DefaultQuery("format", "xlsx"))

	switch format {
	case "csv":
		c.Header("Content-Disposition", `attachment; filename="product_import_template.csv"`)
		c.Header("Content-Type", "text/csv")
		if err := importer.WriteCSVTemplate(c.Writer); err != nil {
			h.logger.WithError(err).Error("Failed to write CSV template")
		}
	case "json":
		c.Header("Content-Disposition", `attachment; filename="product_import_template.json"`)
		c.Header("Content-Type", "application/json")
		if err := importer.WriteJSONTemplate(c.Writer); err != nil {
			h.logger.WithError(err).Error("Failed to write JSON template")
		}
	case "xlsx":
		c.Header("Content-Disposition", `attachment; filename="product_import_template.xlsx"`)
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		if err := importer.WriteXLSXTemplate(c.Writer); err != nil {
			h.logger.WithError(err).Error("Failed to write XLSX template")
		}
	default:
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error:   models.Error{Code: "INVALID_FORMAT", Message: "Template format must be csv, xlsx or json"},
		})
	}
}

// resolveFormat maps the explicit form value, or failing that the file
// extension, to a source format.
func resolveFormat(explicit, filename string) (importer.Format, error) {
	switch strings.ToLower(strings.TrimSpace(explicit)) {
	case "csv":
		return importer.FormatDelimited, nil
	case "xlsx":
		return importer.FormatSpreadsheet, nil
	case "json":
		return importer.FormatStructured, nil
	case "":
	default:
		return "", fmt.Errorf("unsupported format %q, expected csv, xlsx or json", explicit)
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return importer.FormatDelimited, nil
	case ".xlsx":
		return importer.FormatSpreadsheet, nil
	case ".json":
		return importer.FormatStructured, nil
	}
	return "", fmt.Errorf("cannot infer format from filename %q, pass the format field", filename)
}

// parseMappingOverrides decodes the optional mapping form field, a JSON
// object from source header to canonical field name.
func parseMappingOverrides(raw string) (map[string]importer.Field, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var plain map[string]string
	if err := json.Unmarshal([]byte(raw), &plain); err != nil {
		return nil, fmt.Errorf("mapping must be a JSON object of header to field: %v", err)
	}
	overrides := make(map[string]importer.Field, len(plain))
	for headerName, fieldName := range plain {
		field, ok := importer.KnownField(fieldName)
		if !ok {
			return nil, fmt.Errorf("unknown canonical field %q for header %q", fieldName, headerName)
		}
		overrides[headerName] = field
	}
	return overrides, nil
}

// buildProduct converts a validated, normalized record into the catalog
// entity. Values already passed validation; parse failures here leave the
// optional field nil rather than failing the row again.
func buildProduct(rec importer.RawImportRecord) *models.Product {
	p := &models.Product{Active: true}

	if v, ok := rec.Get(importer.FieldName); ok {
		p.Name = strings.TrimSpace(v)
	}
	if v, ok := rec.Get(importer.FieldSKU); ok {
		p.SKU = strings.TrimSpace(v)
	}
	// Files without a sku column still need a unique SKU per product.
	if p.SKU == "" {
		p.SKU = "IMP-" + strings.ToUpper(uuid.New().String()[:8])
	}
	if v, ok := rec.Get(importer.FieldPrice); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			p.Price = f
		}
	}

	p.Description = strField(rec, importer.FieldDescription)
	p.Category = strField(rec, importer.FieldCategory)
	p.Brand = strField(rec, importer.FieldBrand)
	p.Supplier = strField(rec, importer.FieldSupplier)
	p.Unit = strField(rec, importer.FieldUnit)
	p.Dimensions = strField(rec, importer.FieldDimensions)
	p.NCM = strField(rec, importer.FieldNCM)
	p.CEST = strField(rec, importer.FieldCEST)
	p.CFOP = strField(rec, importer.FieldCFOP)
	p.Notes = strField(rec, importer.FieldNotes)

	if v, ok := rec.Get(importer.FieldBarcode); ok {
		digits := keepDigits(v)
		if digits != "" {
			p.Barcode = &digits
		}
	}

	p.Cost = floatField(rec, importer.FieldCost)
	p.Weight = floatField(rec, importer.FieldWeight)
	p.ICMSRate = floatField(rec, importer.FieldICMSRate)
	p.PISRate = floatField(rec, importer.FieldPISRate)
	p.COFINSRate = floatField(rec, importer.FieldCOFINSRate)
	p.Stock = intField(rec, importer.FieldStock)
	p.MinStock = intField(rec, importer.FieldMinStock)

	if v, ok := rec.Get(importer.FieldActive); ok {
		p.Active = importer.TruthyToken(v)
	}

	return p
}

func strField(rec importer.RawImportRecord, field importer.Field) *string {
	if v, ok := rec.Get(field); ok {
		trimmed := strings.TrimSpace(v)
		if trimmed != "" {
			return &trimmed
		}
	}
	return nil
}

func floatField(rec importer.RawImportRecord, field importer.Field) *float64 {
	if v, ok := rec.Get(field); ok {
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return &f
		}
	}
	return nil
}

func intField(rec importer.RawImportRecord, field importer.Field) *int {
	if v, ok := rec.Get(field); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return &n
		}
	}
	return nil
}

func keepDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
