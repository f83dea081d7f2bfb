// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package catalog

import (
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"ecomcat/internal/models"
	"ecomcat/internal/slug"
	"ecomcat/internal/store"
)

// ProductInput is the write payload for creating or updating a product.
// Single-only and combo-only fields may both be present on the wire; the
// type discriminator decides which sub-schema is kept and the rest is
// normalized away.
type ProductInput struct {
	ProductCode string             `json:"product_code"`
	CategoryID  *uuid.UUID         `json:"category_id"`
	Name        string             `json:"name"`
	Slug        string             `json:"slug"`
	Description string             `json:"description"`
	Price       decimal.Decimal    `json:"price"`
	Images      []string           `json:"images"`
	IsActive    *bool              `json:"is_active"`
	IsFeatured  bool               `json:"is_featured"`
	Type        models.ProductType `json:"type"`

	PackageLength    *decimal.Decimal `json:"package_length"`
	PackageWidth     *decimal.Decimal `json:"package_width"`
	PackageHeight    *decimal.Decimal `json:"package_height"`
	PackageWeight    *decimal.Decimal `json:"package_weight"`
	RequiresShipping *bool            `json:"requires_shipping"`

	// Single-only fields.
	CostPrice         *decimal.Decimal `json:"cost_price"`
	StockQuantity     int              `json:"stock_quantity"`
	MinStockThreshold *int             `json:"min_stock_threshold"`
	SKU               *string          `json:"sku"`
	Barcode           *string          `json:"barcode"`
	Specifications    []models.Spec    `json:"specifications"`

	// Combo-only fields.
	DiscountPrice *decimal.Decimal `json:"discount_price"`
	Members       []MemberEntry    `json:"members"`
}

// ComboPackInput is the write payload for creating or updating a combo
// pack.
type ComboPackInput struct {
	ComboCode     string           `json:"combo_code"`
	CategoryID    *uuid.UUID       `json:"category_id"`
	Name          string           `json:"name"`
	Slug          string           `json:"slug"`
	Description   string           `json:"description"`
	Price         decimal.Decimal  `json:"price"`
	DiscountPrice *decimal.Decimal `json:"discount_price"`
	Images        []string         `json:"images"`
	IsActive      *bool            `json:"is_active"`
	Members       []MemberEntry    `json:"members"`
}

const defaultMinStockThreshold = 5

// normalizeProduct applies defaults and the type-conditional field reset:
// a combo product carries no stock, sku, barcode or specifications, so
// any such values in the payload are dropped with a warning rather than
// rejected. Returns the entity ready for validation and persistence.
func normalizeProduct(in *ProductInput) *models.Product {
	if in.Type == "" {
		in.Type = models.ProductTypeSingle
	}
	if in.Slug == "" {
		in.Slug = slug.Generate(in.Name)
	}

	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}
	requiresShipping := true
	if in.RequiresShipping != nil {
		requiresShipping = *in.RequiresShipping
	}

	p := &models.Product{
		ProductCode: in.ProductCode,
		CategoryID:  in.CategoryID,
		Name:        in.Name,
		Slug:        in.Slug,
		Description: in.Description,
		Price:       in.Price,
		Images:      in.Images,
		IsActive:    active,
		IsFeatured:  in.IsFeatured,
		Type:        in.Type,
		Shipping: models.Shipping{
			Length:           in.PackageLength,
			Width:            in.PackageWidth,
			Height:           in.PackageHeight,
			Weight:           in.PackageWeight,
			RequiresShipping: requiresShipping,
		},
	}

	switch in.Type {
	case models.ProductTypeCombo:
		if in.StockQuantity != 0 || in.SKU != nil || in.Barcode != nil || in.CostPrice != nil {
			slog.Warn("combo product payload carried single-only fields, resetting",
				"product_code", in.ProductCode,
			)
		}
		p.Combo = &models.ComboDetails{DiscountPrice: in.DiscountPrice}
	default:
		threshold := defaultMinStockThreshold
		if in.MinStockThreshold != nil {
			threshold = *in.MinStockThreshold
		}
		if in.DiscountPrice != nil {
			slog.Warn("single product payload carried a discount price, resetting",
				"product_code", in.ProductCode,
			)
		}
		p.Single = &models.SingleDetails{
			CostPrice:         in.CostPrice,
			StockQuantity:     in.StockQuantity,
			MinStockThreshold: threshold,
			SKU:               in.SKU,
			Barcode:           in.Barcode,
			Specifications:    in.Specifications,
		}
	}
	return p
}

// validator runs field-level and cross-entity checks for write payloads.
// The uniqueness pre-checks exist for friendly, field-specific messages;
// the storage layer's partial unique indexes remain the real guarantee
// against concurrent writers.
type validator struct {
	products   *store.ProductStore
	packs      *store.ComboPackStore
	categories *store.CategoryStore
}

// checkProduct collects every violation in the normalized product. The
// returned error is infrastructural (a failed lookup), never a
// validation result.
func (v *validator) checkProduct(p *models.Product, excludeID uuid.UUID, vs *violations) error {
	if p.ProductCode == "" {
		vs.add(KindRequiredField, "product_code", "product code is required")
	}
	if p.Name == "" {
		vs.add(KindRequiredField, "name", "name is required")
	}
	if p.Slug == "" {
		vs.add(KindRequiredField, "slug", "slug is required")
	}
	if !p.Price.IsPositive() {
		vs.add(KindConstraintViolation, "price", "price must be positive")
	}
	if len(p.Images) > models.MaxImages {
		vs.add(KindConstraintViolation, "images",
			"at most %d images are allowed, got %d", models.MaxImages, len(p.Images))
	}
	if p.Type != models.ProductTypeSingle && p.Type != models.ProductTypeCombo {
		vs.add(KindConstraintViolation, "type", "type must be single or combo")
	}

	checkDimension(vs, "package_length", p.Shipping.Length)
	checkDimension(vs, "package_width", p.Shipping.Width)
	checkDimension(vs, "package_height", p.Shipping.Height)
	checkDimension(vs, "package_weight", p.Shipping.Weight)

	if p.Single != nil {
		if p.Single.StockQuantity < 0 {
			vs.add(KindConstraintViolation, "stock_quantity", "stock quantity cannot be negative")
		}
		if p.Single.MinStockThreshold < 0 {
			vs.add(KindConstraintViolation, "min_stock_threshold", "minimum stock threshold cannot be negative")
		}
		if p.Single.CostPrice != nil && p.Single.CostPrice.IsNegative() {
			vs.add(KindConstraintViolation, "cost_price", "cost price cannot be negative")
		}
	}
	if p.Combo != nil && p.Combo.DiscountPrice != nil {
		if p.Combo.DiscountPrice.IsNegative() {
			vs.add(KindConstraintViolation, "discount_price", "discount price cannot be negative")
		} else if p.Combo.DiscountPrice.GreaterThan(p.Price) {
			vs.add(KindConstraintViolation, "discount_price",
				"discount price %s exceeds price %s", p.Combo.DiscountPrice, p.Price)
		}
	}

	if err := v.checkCategory(p.CategoryID, vs); err != nil {
		return err
	}

	// Scoped uniqueness among live rows, ignoring this record itself.
	uniques := []struct {
		column string
		value  *string
	}{
		{"product_code", &p.ProductCode},
		{"slug", &p.Slug},
	}
	if p.Single != nil && p.Single.SKU != nil && *p.Single.SKU != "" {
		uniques = append(uniques, struct {
			column string
			value  *string
		}{"sku", p.Single.SKU})
	}
	for _, u := range uniques {
		if *u.value == "" {
			continue
		}
		taken, err := v.products.FieldTaken(u.column, *u.value, excludeID)
		if err != nil {
			return err
		}
		if taken {
			vs.add(KindDuplicateField, u.column, "%s %q is already in use", u.column, *u.value)
		}
	}
	return nil
}

// checkComboPack collects every violation in a combo pack payload.
func (v *validator) checkComboPack(cp *models.ComboPack, excludeID uuid.UUID, vs *violations) error {
	if cp.ComboCode == "" {
		vs.add(KindRequiredField, "combo_code", "combo code is required")
	}
	if cp.Name == "" {
		vs.add(KindRequiredField, "name", "name is required")
	}
	if cp.Slug == "" {
		vs.add(KindRequiredField, "slug", "slug is required")
	}
	if cp.Price.IsNegative() {
		vs.add(KindConstraintViolation, "price", "price cannot be negative")
	}
	if len(cp.Images) > models.MaxImages {
		vs.add(KindConstraintViolation, "images",
			"at most %d images are allowed, got %d", models.MaxImages, len(cp.Images))
	}
	if cp.DiscountPrice != nil {
		if cp.DiscountPrice.IsNegative() {
			vs.add(KindConstraintViolation, "discount_price", "discount price cannot be negative")
		} else if cp.DiscountPrice.GreaterThan(cp.Price) {
			vs.add(KindConstraintViolation, "discount_price",
				"discount price %s exceeds price %s", cp.DiscountPrice, cp.Price)
		}
	}

	if err := v.checkCategory(cp.CategoryID, vs); err != nil {
		return err
	}

	if cp.ComboCode != "" {
		taken, err := v.packs.FieldTaken("combo_code", cp.ComboCode, excludeID)
		if err != nil {
			return err
		}
		if taken {
			vs.add(KindDuplicateField, "combo_code", "combo_code %q is already in use", cp.ComboCode)
		}
	}
	if cp.Slug != "" {
		taken, err := v.packs.FieldTaken("slug", cp.Slug, excludeID)
		if err != nil {
			return err
		}
		if taken {
			vs.add(KindDuplicateField, "slug", "slug %q is already in use", cp.Slug)
		}
	}
	return nil
}

// checkCategory verifies that a declared category id resolves.
func (v *validator) checkCategory(id *uuid.UUID, vs *violations) error {
	if id == nil {
		return nil
	}
	c, err := v.categories.FindByID(*id)
	if err != nil {
		return err
	}
	if c == nil {
		vs.add(KindConstraintViolation, "category_id", "category %s does not exist", *id)
	}
	return nil
}

func checkDimension(vs *violations, field string, d *decimal.Decimal) {
	if d != nil && d.IsNegative() {
		vs.add(KindConstraintViolation, field, "%s cannot be negative", field)
	}
}
