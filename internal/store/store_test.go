// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Store tests are integration tests: they require a running PostgreSQL
// instance and skip when none is reachable. Fixtures use random suffixes
// so suites can run concurrently against a shared database.
package store

import (
	"database/sql"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"ecomcat/internal/database"
	"ecomcat/internal/models"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func testDSN() string {
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "ecomcat")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "ecomcat")
	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
}

// testDB connects and migrates, skipping the test when no database is
// available.
func testDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Connect(testDSN())
	if err != nil {
		t.Skipf("skipping: DB not available: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return db
}

// suffix returns a short random tag for unique fixture fields.
func suffix() string {
	return uuid.NewString()[:8]
}

func createCategory(t *testing.T, db *sql.DB, name string) *models.Category {
	t.Helper()
	s := NewCategoryStore(db)
	tag := suffix()
	c, err := s.Create(&models.Category{
		Name:     name + " " + tag,
		Slug:     "cat-" + tag,
		IsActive: true,
	})
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	t.Cleanup(func() { db.Exec("DELETE FROM categories WHERE id = $1", c.ID) })
	return c
}

func createSingle(t *testing.T, db *sql.DB, categoryID *uuid.UUID, price int64) *models.Product {
	t.Helper()
	s := NewProductStore(db)
	tag := suffix()
	sku := "SKU-" + tag
	created, err := s.Create(db, &models.Product{
		ProductCode: "P-" + tag,
		CategoryID:  categoryID,
		Name:        "Single " + tag,
		Slug:        "single-" + tag,
		Price:       decimal.NewFromInt(price),
		Images:      []string{},
		IsActive:    true,
		Type:        models.ProductTypeSingle,
		Shipping:    models.Shipping{RequiresShipping: true},
		Single: &models.SingleDetails{
			StockQuantity:     10,
			MinStockThreshold: 5,
			SKU:               &sku,
		},
	})
	if err != nil {
		t.Fatalf("create single product: %v", err)
	}
	t.Cleanup(func() { db.Exec("DELETE FROM products WHERE id = $1", created.ID) })
	return created
}

func createCombo(t *testing.T, db *sql.DB, categoryID *uuid.UUID, price int64) *models.Product {
	t.Helper()
	s := NewProductStore(db)
	tag := suffix()
	created, err := s.Create(db, &models.Product{
		ProductCode: "C-" + tag,
		CategoryID:  categoryID,
		Name:        "Combo " + tag,
		Slug:        "combo-" + tag,
		Price:       decimal.NewFromInt(price),
		Images:      []string{},
		IsActive:    true,
		Type:        models.ProductTypeCombo,
		Shipping:    models.Shipping{RequiresShipping: true},
		Combo:       &models.ComboDetails{},
	})
	if err != nil {
		t.Fatalf("create combo product: %v", err)
	}
	t.Cleanup(func() { db.Exec("DELETE FROM products WHERE id = $1", created.ID) })
	return created
}

func createPack(t *testing.T, db *sql.DB, categoryID *uuid.UUID, price int64) *models.ComboPack {
	t.Helper()
	s := NewComboPackStore(db)
	tag := suffix()
	created, err := s.Create(db, &models.ComboPack{
		ComboCode:  "CP-" + tag,
		CategoryID: categoryID,
		Name:       "Pack " + tag,
		Slug:       "pack-" + tag,
		Price:      decimal.NewFromInt(price),
		Images:     []string{},
		IsActive:   true,
	})
	if err != nil {
		t.Fatalf("create combo pack: %v", err)
	}
	t.Cleanup(func() { db.Exec("DELETE FROM combo_packs WHERE id = $1", created.ID) })
	return created
}
