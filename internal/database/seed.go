package database

import (
	"database/sql"
	"fmt"
	"log/slog"
)

// Seed populates the database with initial development data: a couple of
// categories and a handful of single products to compose combos from.
// It is a no-op when any category already exists.
func Seed(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM categories").Scan(&count); err != nil {
		return fmt.Errorf("seed check categories: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed begin: %w", err)
	}
	defer tx.Rollback()

	var teaID, snackID string
	err = tx.QueryRow(`
		INSERT INTO categories (name, slug, description, sort_order)
		VALUES ('Tea', 'tea', 'Loose leaf and bagged teas', 0)
		RETURNING id
	`).Scan(&teaID)
	if err != nil {
		return fmt.Errorf("seed category tea: %w", err)
	}
	err = tx.QueryRow(`
		INSERT INTO categories (name, slug, description, sort_order)
		VALUES ('Snacks', 'snacks', 'Biscuits and savories', 1)
		RETURNING id
	`).Scan(&snackID)
	if err != nil {
		return fmt.Errorf("seed category snacks: %w", err)
	}

	products := []struct {
		code, name, slug, category string
		price                      string
		stock                      int
		sku                        string
	}{
		{"TEA-001", "Assam Black Tea 250g", "assam-black-tea-250g", teaID, "6.50", 120, "SKU-TEA-001"},
		{"TEA-002", "Darjeeling Green Tea 100g", "darjeeling-green-tea-100g", teaID, "8.90", 80, "SKU-TEA-002"},
		{"TEA-003", "Masala Chai Blend 200g", "masala-chai-blend-200g", teaID, "7.25", 60, "SKU-TEA-003"},
		{"SNK-001", "Butter Biscuits 400g", "butter-biscuits-400g", snackID, "3.10", 200, "SKU-SNK-001"},
	}

	for _, p := range products {
		_, err := tx.Exec(`
			INSERT INTO products (product_code, category_id, name, slug, price,
			                      type, stock_quantity, sku)
			VALUES ($1, $2, $3, $4, $5, 'single', $6, $7)
		`, p.code, p.category, p.name, p.slug, p.price, p.stock, p.sku)
		if err != nil {
			return fmt.Errorf("seed product %s: %w", p.code, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed commit: %w", err)
	}

	slog.Info("database seeded with development catalog",
		"categories", 2,
		"products", len(products),
	)
	return nil
}
