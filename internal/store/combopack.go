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

// ComboPackFilter narrows ListComboPacks results.
type ComboPackFilter struct {
	CategoryID *uuid.UUID
	Search     string
	ActiveOnly bool
	Limit      int
}

// ComboPackStore manages standalone combo packs. Packs are hard-deleted;
// their membership rows go via FK cascade.
type ComboPackStore struct {
	db *sql.DB
}

// NewComboPackStore returns a new ComboPackStore.
func NewComboPackStore(db *sql.DB) *ComboPackStore {
	return &ComboPackStore{db: db}
}

const comboPackColumns = `id, combo_code, category_id, name, slug, description, price,
	discount_price, images, is_active, created_at, updated_at`

// scanComboPack scans a row into a ComboPack struct.
func scanComboPack(scanner interface{ Scan(...any) error }) (*models.ComboPack, error) {
	var (
		cp     models.ComboPack
		images []byte
	)
	err := scanner.Scan(
		&cp.ID, &cp.ComboCode, &cp.CategoryID, &cp.Name, &cp.Slug, &cp.Description,
		&cp.Price, &cp.DiscountPrice, &images, &cp.IsActive, &cp.CreatedAt, &cp.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := jsonbScan(images, &cp.Images); err != nil {
		return nil, err
	}
	if cp.Images == nil {
		cp.Images = []string{}
	}
	return &cp, nil
}

// List returns combo packs matching the filter, newest first.
func (s *ComboPackStore) List(f ComboPackFilter) ([]models.ComboPack, error) {
	var (
		conds []string
		args  []any
	)
	if f.CategoryID != nil {
		args = append(args, *f.CategoryID)
		conds = append(conds, fmt.Sprintf("category_id = $%d", len(args)))
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		conds = append(conds, fmt.Sprintf("(name ILIKE $%d OR combo_code ILIKE $%d)", len(args), len(args)))
	}
	if f.ActiveOnly {
		conds = append(conds, "is_active = TRUE")
	}

	query := `SELECT ` + comboPackColumns + ` FROM combo_packs`
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
		return nil, fmt.Errorf("list combo packs: %w", err)
	}
	defer rows.Close()

	var items []models.ComboPack
	for rows.Next() {
		cp, err := scanComboPack(rows)
		if err != nil {
			return nil, fmt.Errorf("scan combo pack: %w", err)
		}
		items = append(items, *cp)
	}
	return items, rows.Err()
}

// FindByID retrieves a combo pack by ID. Returns nil if not found.
func (s *ComboPackStore) FindByID(id uuid.UUID) (*models.ComboPack, error) {
	cp, err := scanComboPack(s.db.QueryRow(
		`SELECT `+comboPackColumns+` FROM combo_packs WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find combo pack by id: %w", err)
	}
	return cp, nil
}

// Create inserts a new combo pack and returns it. Runs on tx so the
// caller can commit it together with the membership sync.
func (s *ComboPackStore) Create(tx dbtx, cp *models.ComboPack) (*models.ComboPack, error) {
	images, err := jsonbValue(cp.Images)
	if err != nil {
		return nil, fmt.Errorf("create combo pack: %w", err)
	}
	row := tx.QueryRow(`
		INSERT INTO combo_packs (combo_code, category_id, name, slug, description,
			price, discount_price, images, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+comboPackColumns,
		cp.ComboCode, cp.CategoryID, cp.Name, cp.Slug, cp.Description,
		cp.Price, cp.DiscountPrice, images, cp.IsActive,
	)
	result, err := scanComboPack(row)
	if err != nil {
		return nil, fmt.Errorf("create combo pack: %w", err)
	}
	return result, nil
}

// Update rewrites all mutable columns of a combo pack and returns the
// stored row. Returns nil when the pack does not exist.
func (s *ComboPackStore) Update(tx dbtx, cp *models.ComboPack) (*models.ComboPack, error) {
	images, err := jsonbValue(cp.Images)
	if err != nil {
		return nil, fmt.Errorf("update combo pack: %w", err)
	}
	row := tx.QueryRow(`
		UPDATE combo_packs SET
			combo_code = $1, category_id = $2, name = $3, slug = $4, description = $5,
			price = $6, discount_price = $7, images = $8, is_active = $9, updated_at = NOW()
		WHERE id = $10
		RETURNING `+comboPackColumns,
		cp.ComboCode, cp.CategoryID, cp.Name, cp.Slug, cp.Description,
		cp.Price, cp.DiscountPrice, images, cp.IsActive, cp.ID,
	)
	result, err := scanComboPack(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update combo pack: %w", err)
	}
	return result, nil
}

// Delete removes a combo pack; membership rows cascade. Reports whether
// a row was affected.
func (s *ComboPackStore) Delete(tx dbtx, id uuid.UUID) (bool, error) {
	res, err := tx.Exec(`DELETE FROM combo_packs WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete combo pack: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete combo pack: %w", err)
	}
	return n > 0, nil
}

// FieldTaken reports whether value is already used in column by another
// combo pack.
func (s *ComboPackStore) FieldTaken(column, value string, excludeID uuid.UUID) (bool, error) {
	switch column {
	case "combo_code", "slug":
	default:
		return false, fmt.Errorf("field %q has no uniqueness rule", column)
	}
	var exists bool
	err := s.db.QueryRow(`
		SELECT EXISTS (
			SELECT 1 FROM combo_packs WHERE `+column+` = $1 AND id != $2
		)
	`, value, excludeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check combo pack %s: %w", column, err)
	}
	return exists, nil
}
