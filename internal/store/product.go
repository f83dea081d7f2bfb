// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"ecomcat/internal/models"
)

// TrashMode selects how soft-deleted rows participate in a query.
type TrashMode int

const (
	// TrashExclude is the default: tombstoned rows are invisible.
	TrashExclude TrashMode = iota
	// TrashInclude returns live and tombstoned rows alike.
	TrashInclude
	// TrashOnly returns tombstoned rows exclusively.
	TrashOnly
)

// where returns the SQL fragment enforcing the trash mode, or empty for
// TrashInclude.
func (m TrashMode) where() string {
	switch m {
	case TrashOnly:
		return "deleted_at IS NOT NULL"
	case TrashInclude:
		return ""
	default:
		return "deleted_at IS NULL"
	}
}

// ProductFilter narrows List results. Zero values mean "no constraint".
type ProductFilter struct {
	CategoryID *uuid.UUID
	Type       *models.ProductType
	Search     string
	ActiveOnly bool
	Featured   bool
	Trash      TrashMode
	Limit      int
}

// ProductStore manages products in the database. Products are
// soft-deleted: Delete stamps a tombstone and Purge removes the row.
type ProductStore struct {
	db *sql.DB
}

// NewProductStore returns a new ProductStore.
func NewProductStore(db *sql.DB) *ProductStore {
	return &ProductStore{db: db}
}

const productColumns = `id, product_code, category_id, name, slug, description, price,
	images, is_active, is_featured,
	package_length, package_width, package_height, package_weight, requires_shipping,
	type, cost_price, stock_quantity, min_stock_threshold, sku, barcode, specifications,
	discount_price, created_at, updated_at, deleted_at`

// scanProduct scans a flat product row into the sum-typed model: exactly
// one of Single/Combo is populated according to the type column.
func scanProduct(scanner interface{ Scan(...any) error }) (*models.Product, error) {
	var (
		p      models.Product
		images []byte
		specs  []byte
		single models.SingleDetails
		combo  models.ComboDetails
	)
	err := scanner.Scan(
		&p.ID, &p.ProductCode, &p.CategoryID, &p.Name, &p.Slug, &p.Description, &p.Price,
		&images, &p.IsActive, &p.IsFeatured,
		&p.Shipping.Length, &p.Shipping.Width, &p.Shipping.Height, &p.Shipping.Weight,
		&p.Shipping.RequiresShipping,
		&p.Type, &single.CostPrice, &single.StockQuantity, &single.MinStockThreshold,
		&single.SKU, &single.Barcode, &specs,
		&combo.DiscountPrice, &p.CreatedAt, &p.UpdatedAt, &p.DeletedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := jsonbScan(images, &p.Images); err != nil {
		return nil, err
	}
	if p.Images == nil {
		p.Images = []string{}
	}

	switch p.Type {
	case models.ProductTypeCombo:
		p.Combo = &combo
	default:
		if err := jsonbScan(specs, &single.Specifications); err != nil {
			return nil, err
		}
		p.Single = &single
	}
	return &p, nil
}

// productArgs flattens a sum-typed product into column values in the
// order expected by Create and Update statements. Single-only columns are
// written as defaults for combos, so a type transition to combo resets
// stock, thresholds, sku and barcode.
func productArgs(p *models.Product) ([]any, error) {
	images, err := jsonbValue(p.Images)
	if err != nil {
		return nil, err
	}

	single := p.Single
	if single == nil {
		single = &models.SingleDetails{MinStockThreshold: 5}
	}
	specs, err := jsonbValue(single.Specifications)
	if err != nil {
		return nil, err
	}

	var discount any
	if p.Combo != nil {
		discount = p.Combo.DiscountPrice
	}

	return []any{
		p.ProductCode, p.CategoryID, p.Name, p.Slug, p.Description, p.Price,
		images, p.IsActive, p.IsFeatured,
		p.Shipping.Length, p.Shipping.Width, p.Shipping.Height, p.Shipping.Weight,
		p.Shipping.RequiresShipping,
		p.Type, single.CostPrice, single.StockQuantity, single.MinStockThreshold,
		single.SKU, single.Barcode, specs,
		discount,
	}, nil
}

// List returns products matching the filter, newest first.
func (s *ProductStore) List(f ProductFilter) ([]models.Product, error) {
	var (
		conds []string
		args  []any
	)
	if w := f.Trash.where(); w != "" {
		conds = append(conds, w)
	}
	if f.CategoryID != nil {
		args = append(args, *f.CategoryID)
		conds = append(conds, fmt.Sprintf("category_id = $%d", len(args)))
	}
	if f.Type != nil {
		args = append(args, *f.Type)
		conds = append(conds, fmt.Sprintf("type = $%d", len(args)))
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		conds = append(conds, fmt.Sprintf("(name ILIKE $%d OR product_code ILIKE $%d)", len(args), len(args)))
	}
	if f.ActiveOnly {
		conds = append(conds, "is_active = TRUE")
	}
	if f.Featured {
		conds = append(conds, "is_featured = TRUE")
	}

	query := `SELECT ` + productColumns + ` FROM products`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY created_at DESC`
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var items []models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		items = append(items, *p)
	}
	return items, rows.Err()
}

// FindByID retrieves a product by ID under the given trash mode. Returns
// nil if not found (or hidden by the mode).
func (s *ProductStore) FindByID(id uuid.UUID, mode TrashMode) (*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	if w := mode.where(); w != "" {
		query += ` AND ` + w
	}
	p, err := scanProduct(s.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find product by id: %w", err)
	}
	return p, nil
}

// FindLiveByIDs returns the live (non-tombstoned) products among ids,
// keyed by ID. Missing or tombstoned ids are simply absent from the map.
func (s *ProductStore) FindLiveByIDs(ids []uuid.UUID) (map[uuid.UUID]*models.Product, error) {
	result := make(map[uuid.UUID]*models.Product, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}

	rows, err := s.db.Query(
		`SELECT `+productColumns+` FROM products WHERE id IN (`+
			strings.Join(placeholders, ", ")+`) AND deleted_at IS NULL`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("find products by ids: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		result[p.ID] = p
	}
	return result, rows.Err()
}

// Create inserts a new product and returns it. Runs on tx so the caller
// can commit it together with a membership sync.
func (s *ProductStore) Create(tx dbtx, p *models.Product) (*models.Product, error) {
	args, err := productArgs(p)
	if err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	row := tx.QueryRow(`
		INSERT INTO products (product_code, category_id, name, slug, description, price,
			images, is_active, is_featured,
			package_length, package_width, package_height, package_weight, requires_shipping,
			type, cost_price, stock_quantity, min_stock_threshold, sku, barcode, specifications,
			discount_price)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21, $22)
		RETURNING `+productColumns, args...)
	result, err := scanProduct(row)
	if err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return result, nil
}

// Update rewrites all mutable columns of an existing product and returns
// the stored row.
func (s *ProductStore) Update(tx dbtx, p *models.Product) (*models.Product, error) {
	args, err := productArgs(p)
	if err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	args = append(args, p.ID)
	row := tx.QueryRow(`
		UPDATE products SET
			product_code = $1, category_id = $2, name = $3, slug = $4, description = $5,
			price = $6, images = $7, is_active = $8, is_featured = $9,
			package_length = $10, package_width = $11, package_height = $12,
			package_weight = $13, requires_shipping = $14,
			type = $15, cost_price = $16, stock_quantity = $17, min_stock_threshold = $18,
			sku = $19, barcode = $20, specifications = $21, discount_price = $22,
			updated_at = NOW()
		WHERE id = $23 AND deleted_at IS NULL
		RETURNING `+productColumns, args...)
	result, err := scanProduct(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	return result, nil
}

// SoftDelete stamps the tombstone on a live product. Reports whether a
// row was affected.
func (s *ProductStore) SoftDelete(tx dbtx, id uuid.UUID) (bool, error) {
	res, err := tx.Exec(`
		UPDATE products SET deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`, id)
	if err != nil {
		return false, fmt.Errorf("soft delete product: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("soft delete product: %w", err)
	}
	return n > 0, nil
}

// Restore clears the tombstone of a soft-deleted product. Reports whether
// a row was affected.
func (s *ProductStore) Restore(tx dbtx, id uuid.UUID) (bool, error) {
	res, err := tx.Exec(`
		UPDATE products SET deleted_at = NULL, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NOT NULL
	`, id)
	if err != nil {
		return false, fmt.Errorf("restore product: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("restore product: %w", err)
	}
	return n > 0, nil
}

// Purge permanently removes a product row. Membership rows referencing it
// go with it via FK cascade. Reports whether a row was affected.
func (s *ProductStore) Purge(tx dbtx, id uuid.UUID) (bool, error) {
	res, err := tx.Exec(`DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("purge product: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("purge product: %w", err)
	}
	return n > 0, nil
}

// FieldTaken reports whether value is already used in column by another
// live product. The checked column must be one of the uniquely indexed
// fields; anything else is a programming error.
func (s *ProductStore) FieldTaken(column, value string, excludeID uuid.UUID) (bool, error) {
	switch column {
	case "product_code", "slug", "sku":
	default:
		return false, fmt.Errorf("field %q has no uniqueness rule", column)
	}
	var exists bool
	err := s.db.QueryRow(`
		SELECT EXISTS (
			SELECT 1 FROM products
			WHERE `+column+` = $1 AND id != $2 AND deleted_at IS NULL
		)
	`, value, excludeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check product %s: %w", column, err)
	}
	return exists, nil
}
