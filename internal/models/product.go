package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Product is the catalog entity. Columns follow the canonical import field
// set, including the Brazilian fiscal attributes.
type Product struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name        string    `json:"name" gorm:"not null;index:idx_products_name"`
	Description *string   `json:"description,omitempty"`
	SKU         string    `json:"sku" gorm:"not null;uniqueIndex:idx_products_sku"`
	// Barcode is stored digit-only so lookups never depend on the source
	// file's punctuation.
	Barcode    *string  `json:"barcode,omitempty" gorm:"index:idx_products_barcode"`
	Category   *string  `json:"category,omitempty" gorm:"index"`
	Brand      *string  `json:"brand,omitempty"`
	Supplier   *string  `json:"supplier,omitempty"`
	Price      float64  `json:"price" gorm:"not null"`
	Cost       *float64 `json:"cost,omitempty"`
	Stock      *int     `json:"stock,omitempty"`
	MinStock   *int     `json:"minStock,omitempty"`
	Unit       *string  `json:"unit,omitempty"`
	Weight     *float64 `json:"weight,omitempty"`
	Dimensions *string  `json:"dimensions,omitempty"`

	// Brazilian fiscal classification
	NCM        *string  `json:"ncm,omitempty"`
	CEST       *string  `json:"cest,omitempty"`
	CFOP       *string  `json:"cfop,omitempty"`
	ICMSRate   *float64 `json:"icmsRate,omitempty" gorm:"column:icms_rate"`
	PISRate    *float64 `json:"pisRate,omitempty" gorm:"column:pis_rate"`
	COFINSRate *float64 `json:"cofinsRate,omitempty" gorm:"column:cofins_rate"`

	Active bool    `json:"active" gorm:"default:true"`
	Notes  *string `json:"notes,omitempty"`

	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
	DeletedAt *gorm.DeletedAt `json:"deletedAt,omitempty" gorm:"index"`
}

// TableName returns the table name for the Product model
func (Product) TableName() string {
	return "products"
}

type ErrorResponse struct {
	Success bool  `json:"success"`
	Error   Error `json:"error"`
}

type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

type SuccessResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message *string     `json:"message,omitempty"`
}
