// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductType distinguishes single items from combo bundles. The two types
// carry different detail sub-schemas; see SingleDetails and ComboDetails.
type ProductType string

const (
	ProductTypeSingle ProductType = "single"
	ProductTypeCombo  ProductType = "combo"
)

// MaxImages is the maximum number of stored image references per product
// or combo pack.
const MaxImages = 5

// Spec is one ordered key/value pair in a single product's specifications.
// A slice of Spec preserves the order the admin entered them in, which a
// plain map would not.
type Spec struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Shipping holds the optional physical package dimensions of a product.
// All dimensions are nullable; volume is only defined when length, width
// and height are all present.
type Shipping struct {
	Length           *decimal.Decimal `json:"package_length,omitempty"`
	Width            *decimal.Decimal `json:"package_width,omitempty"`
	Height           *decimal.Decimal `json:"package_height,omitempty"`
	Weight           *decimal.Decimal `json:"package_weight,omitempty"`
	RequiresShipping bool             `json:"requires_shipping"`
}

// SingleDetails carries the fields that only exist on single-type products.
// A combo product never holds its own stock.
type SingleDetails struct {
	CostPrice         *decimal.Decimal `json:"cost_price,omitempty"`
	StockQuantity     int              `json:"stock_quantity"`
	MinStockThreshold int              `json:"min_stock_threshold"`
	SKU               *string          `json:"sku,omitempty"`
	Barcode           *string          `json:"barcode,omitempty"`
	Specifications    []Spec           `json:"specifications,omitempty"`
}

// ComboDetails carries the fields that only exist on combo-type products.
// The membership itself lives in the combo_products association table and
// is projected into Members on read.
type ComboDetails struct {
	DiscountPrice *decimal.Decimal `json:"discount_price,omitempty"`
	Members       []ComboMember    `json:"members,omitempty"`
}

// Product is a catalog item: either a single sellable item or a combo
// bundle of other single products. Exactly one of Single/Combo is non-nil,
// matching Type.
type Product struct {
	ID          uuid.UUID       `json:"id"`
	ProductCode string          `json:"product_code"`
	CategoryID  *uuid.UUID      `json:"category_id,omitempty"`
	Name        string          `json:"name"`
	Slug        string          `json:"slug"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Images      []string        `json:"images"`
	IsActive    bool            `json:"is_active"`
	IsFeatured  bool            `json:"is_featured"`
	Shipping    Shipping        `json:"shipping"`
	Type        ProductType     `json:"type"`

	Single *SingleDetails `json:"single,omitempty"`
	Combo  *ComboDetails  `json:"combo,omitempty"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`

	// Virtual field populated by store methods.
	Category *Category `json:"category,omitempty"`
}

// ComboMember is one entry of a combo's composition: a member product
// summary plus how many of it the bundle contains.
type ComboMember struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Image     *string         `json:"image,omitempty"`
	Quantity  int             `json:"quantity"`
}

// IsCombo reports whether the product is a combo bundle.
func (p *Product) IsCombo() bool {
	return p.Type == ProductTypeCombo
}

// IsDeleted reports whether the product carries a soft-delete tombstone.
func (p *Product) IsDeleted() bool {
	return p.DeletedAt != nil
}

// DiscountedPrice returns the effective selling price: the combo discount
// price when one is set, otherwise the list price.
func (p *Product) DiscountedPrice() decimal.Decimal {
	if p.Combo != nil && p.Combo.DiscountPrice != nil {
		return *p.Combo.DiscountPrice
	}
	return p.Price
}

// PackageVolume returns length*width*height when all three dimensions are
// present and positive, or nil otherwise. A missing dimension is a valid
// state, not an error.
func (p *Product) PackageVolume() *decimal.Decimal {
	return p.Shipping.Volume()
}

// Volume computes the package volume for any entity with shipping
// dimensions.
func (sh Shipping) Volume() *decimal.Decimal {
	if sh.Length == nil || sh.Width == nil || sh.Height == nil {
		return nil
	}
	if !sh.Length.IsPositive() || !sh.Width.IsPositive() || !sh.Height.IsPositive() {
		return nil
	}
	v := sh.Length.Mul(*sh.Width).Mul(*sh.Height)
	return &v
}

// PrimaryImage returns the first stored image reference, or nil when the
// product has no images.
func (p *Product) PrimaryImage() *string {
	if len(p.Images) == 0 {
		return nil
	}
	return &p.Images[0]
}
