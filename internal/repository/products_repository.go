package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"products-import-service/internal/importer"
	"products-import-service/internal/models"
)

// Snapshot cache settings. The snapshot feeds the advisory duplicate check
// only; a short TTL keeps it close to the live catalog without hitting the
// database on every upload.
const (
	catalogSnapshotKey = "products:catalog:snapshot"
	CatalogSnapshotTTL = 2 * time.Minute
)

// ProductStore is the catalog capability the import pipeline depends on:
// three point lookups for deduplication and a bulk insert for committing
// accepted rows. Uniqueness is enforced here at write time; the pipeline's
// duplicate partition is advisory.
type ProductStore interface {
	FindBySKU(ctx context.Context, sku string) (*models.Product, error)
	FindByBarcode(ctx context.Context, barcode string) (*models.Product, error)
	FindByName(ctx context.Context, name string) (*models.Product, error)
	SnapshotCatalog(ctx context.Context) ([]importer.CatalogEntry, error)
	BulkInsert(ctx context.Context, products []*models.Product, skipDuplicates bool) (*BulkInsertResult, error)
}

// ProductsRepository implements ProductStore on Postgres with an optional
// Redis cache for the catalog snapshot.
type ProductsRepository struct {
	db    *gorm.DB
	redis *redis.Client
}

var _ ProductStore = (*ProductsRepository)(nil)

func NewProductsRepository(db *gorm.DB, redisClient *redis.Client) *ProductsRepository {
	return &ProductsRepository{db: db, redis: redisClient}
}

// FindBySKU looks up a single product by SKU, case-insensitive. Returns
// (nil, nil) when no product matches.
func (r *ProductsRepository) FindBySKU(ctx context.Context, sku string) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Where("LOWER(sku) = LOWER(?)", strings.TrimSpace(sku)).
		First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// FindByBarcode looks up a single product by barcode, comparing digits only.
func (r *ProductsRepository) FindByBarcode(ctx context.Context, barcode string) (*models.Product, error) {
	digits := digitsOnly(barcode)
	if digits == "" {
		return nil, nil
	}
	var product models.Product
	err := r.db.WithContext(ctx).
		Where("barcode = ?", digits).
		First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// FindByName looks up a single product by exact name, case-insensitive.
func (r *ProductsRepository) FindByName(ctx context.Context, name string) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Where("LOWER(name) = LOWER(?)", strings.TrimSpace(name)).
		First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

type catalogRow struct {
	ID      uuid.UUID
	SKU     string
	Barcode *string
	Name    string
}

// SnapshotCatalog returns a point-in-time view of (id, sku, barcode, name)
// over the whole catalog for duplicate partitioning. Cached in Redis with a
// short TTL and invalidated on insert; the race window between snapshot and
// commit is accepted because BulkInsert re-checks uniqueness.
func (r *ProductsRepository) SnapshotCatalog(ctx context.Context) ([]importer.CatalogEntry, error) {
	if r.redis != nil {
		if cached, err := r.redis.Get(ctx, catalogSnapshotKey).Result(); err == nil {
			var entries []importer.CatalogEntry
			if err := json.Unmarshal([]byte(cached), &entries); err == nil {
				return entries, nil
			}
		}
	}

	var rows []catalogRow
	if err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Select("id", "sku", "barcode", "name").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to snapshot catalog: %w", err)
	}

	entries := make([]importer.CatalogEntry, len(rows))
	for i, row := range rows {
		entry := importer.CatalogEntry{ID: row.ID, SKU: row.SKU, Name: row.Name}
		if row.Barcode != nil {
			entry.Barcode = *row.Barcode
		}
		entries[i] = entry
	}

	if r.redis != nil {
		if data, err := json.Marshal(entries); err == nil {
			r.redis.Set(ctx, catalogSnapshotKey, data, CatalogSnapshotTTL)
		}
	}

	return entries, nil
}

// BulkInsertError reports one product the insert rejected.
type BulkInsertError struct {
	Index   int
	Code    string
	Message string
}

// BulkInsertResult is the partial-success outcome of a bulk insert.
type BulkInsertResult struct {
	Inserted []*models.Product
	Errors   []BulkInsertError
	Total    int
	Success  int
	Skipped  int
	Failed   int
}

// BulkInsert creates products in one transaction. Each row is checked for a
// duplicate SKU at write time; with skipDuplicates those rows are skipped
// silently, otherwise they are reported per index. The transaction rolls
// back only when every row failed.
func (r *ProductsRepository) BulkInsert(ctx context.Context, products []*models.Product, skipDuplicates bool) (*BulkInsertResult, error) {
	result := &BulkInsertResult{
		Inserted: make([]*models.Product, 0, len(products)),
		Errors:   make([]BulkInsertError, 0),
		Total:    len(products),
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, product := range products {
			if product.ID == uuid.Nil {
				product.ID = uuid.New()
			}
			product.CreatedAt = time.Now()
			product.UpdatedAt = time.Now()

			// Soft-deleted rows still hold the unique SKU index, so the
			// duplicate check includes them.
			var existing int64
			if err := tx.Unscoped().Model(&models.Product{}).
				Where("LOWER(sku) = LOWER(?)", product.SKU).
				Count(&existing).Error; err != nil {
				result.Errors = append(result.Errors, BulkInsertError{
					Index:   i,
					Code:    "DB_ERROR",
					Message: "failed to check for duplicate SKU",
				})
				continue
			}
			if existing > 0 {
				if skipDuplicates {
					result.Skipped++
					continue
				}
				result.Errors = append(result.Errors, BulkInsertError{
					Index:   i,
					Code:    "DUPLICATE_SKU",
					Message: fmt.Sprintf("product with SKU %q already exists", product.SKU),
				})
				continue
			}

			if err := tx.Create(product).Error; err != nil {
				result.Errors = append(result.Errors, BulkInsertError{
					Index:   i,
					Code:    "CREATE_FAILED",
					Message: err.Error(),
				})
				continue
			}
			result.Inserted = append(result.Inserted, product)
		}

		result.Success = len(result.Inserted)
		result.Failed = len(result.Errors)

		if result.Success == 0 && result.Skipped == 0 && result.Total > 0 {
			return fmt.Errorf("all products failed to insert")
		}
		return nil
	})

	if result.Success > 0 && r.redis != nil {
		r.redis.Del(context.Background(), catalogSnapshotKey)
	}

	if err != nil && result.Success == 0 {
		return result, err
	}
	return result, nil
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
