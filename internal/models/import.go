package models

import "products-import-service/internal/importer"

// ImportOptions are the per-import switches a caller can set on upload.
type ImportOptions struct {
	// ValidateOnly runs the full pipeline but skips catalog insertion.
	ValidateOnly bool `json:"validateOnly"`
	// SkipDuplicates makes the store skip rows whose SKU already exists
	// instead of reporting them as insert failures.
	SkipDuplicates bool `json:"skipDuplicates"`
}

// InsertError reports one row the store rejected at insert time.
type InsertError struct {
	Row     int    `json:"row"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ImportResponse is the full result of one import submission: the report,
// every per-row outcome in original order, the duplicate partition and the
// mapping the pipeline ended up using.
type ImportResponse struct {
	Success         bool                         `json:"success"`
	Report          importer.ImportReport        `json:"report"`
	Outcomes        []importer.ValidationOutcome `json:"outcomes"`
	Duplicates      []importer.DuplicateHit      `json:"duplicates,omitempty"`
	UnmappedHeaders []string                     `json:"unmappedHeaders,omitempty"`
	Inserted        int                          `json:"inserted"`
	Skipped         int                          `json:"skipped,omitempty"`
	InsertErrors    []InsertError                `json:"insertErrors,omitempty"`
	ProcessingMs    int64                        `json:"processingMs"`
}
