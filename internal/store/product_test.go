// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"ecomcat/internal/models"
)

func TestProductCreateAndFind(t *testing.T) {
	db := testDB(t)
	s := NewProductStore(db)

	created := createSingle(t, db, nil, 10)
	if created.ID == uuid.Nil {
		t.Fatal("created product has no id")
	}
	if created.Single == nil {
		t.Fatal("single details missing on returned row")
	}

	found, err := s.FindByID(created.ID, TrashExclude)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if found == nil {
		t.Fatal("created product not found")
	}
	if found.ProductCode != created.ProductCode {
		t.Errorf("product_code = %q, want %q", found.ProductCode, created.ProductCode)
	}
	if !found.Price.Equal(decimal.NewFromInt(10)) {
		t.Errorf("price = %s, want 10", found.Price)
	}
	if found.Combo != nil {
		t.Error("single product should not carry combo details")
	}
}

func TestProductComboRowShape(t *testing.T) {
	db := testDB(t)
	s := NewProductStore(db)

	discount := decimal.NewFromInt(18)
	combo := createCombo(t, db, nil, 20)
	combo.Combo.DiscountPrice = &discount
	updated, err := s.Update(db, combo)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Combo == nil {
		t.Fatal("combo details missing on returned row")
	}
	if updated.Combo.DiscountPrice == nil || !updated.Combo.DiscountPrice.Equal(discount) {
		t.Errorf("discount_price = %v, want %s", updated.Combo.DiscountPrice, discount)
	}
	if updated.Single != nil {
		t.Error("combo product should not carry single details")
	}
}

func TestProductUpdateTypeTransitionResetsSingleColumns(t *testing.T) {
	db := testDB(t)
	s := NewProductStore(db)

	p := createSingle(t, db, nil, 10)
	p.Type = models.ProductTypeCombo
	p.Single = nil
	p.Combo = &models.ComboDetails{}

	updated, err := s.Update(db, p)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Type != models.ProductTypeCombo {
		t.Fatalf("type = %q, want combo", updated.Type)
	}

	// The stored single-only columns must be back at their defaults.
	var stock int
	var sku *string
	err = db.QueryRow("SELECT stock_quantity, sku FROM products WHERE id = $1", p.ID).Scan(&stock, &sku)
	if err != nil {
		t.Fatalf("inspect row: %v", err)
	}
	if stock != 0 {
		t.Errorf("stock_quantity = %d, want 0 after transition", stock)
	}
	if sku != nil {
		t.Errorf("sku = %q, want NULL after transition", *sku)
	}
}

func TestProductSoftDeleteLifecycle(t *testing.T) {
	db := testDB(t)
	s := NewProductStore(db)

	p := createSingle(t, db, nil, 10)

	ok, err := s.SoftDelete(db, p.ID)
	if err != nil || !ok {
		t.Fatalf("SoftDelete: ok=%t err=%v", ok, err)
	}

	// Hidden by default, visible with trash.
	if found, _ := s.FindByID(p.ID, TrashExclude); found != nil {
		t.Error("soft-deleted product visible under TrashExclude")
	}
	found, err := s.FindByID(p.ID, TrashInclude)
	if err != nil {
		t.Fatalf("FindByID TrashInclude: %v", err)
	}
	if found == nil || found.DeletedAt == nil {
		t.Fatal("soft-deleted product should be visible with tombstone under TrashInclude")
	}
	if only, _ := s.FindByID(p.ID, TrashOnly); only == nil {
		t.Error("soft-deleted product missing under TrashOnly")
	}

	// Updates must not touch tombstoned rows.
	found.Name = "renamed"
	updated, err := s.Update(db, found)
	if err != nil {
		t.Fatalf("Update tombstoned: %v", err)
	}
	if updated != nil {
		t.Error("Update should return nil for a tombstoned row")
	}

	// Soft delete is idempotent-ish: second call affects nothing.
	ok, err = s.SoftDelete(db, p.ID)
	if err != nil {
		t.Fatalf("second SoftDelete: %v", err)
	}
	if ok {
		t.Error("second SoftDelete should affect no rows")
	}

	// Restore brings it back.
	ok, err = s.Restore(db, p.ID)
	if err != nil || !ok {
		t.Fatalf("Restore: ok=%t err=%v", ok, err)
	}
	restored, err := s.FindByID(p.ID, TrashExclude)
	if err != nil {
		t.Fatalf("FindByID after restore: %v", err)
	}
	if restored == nil || restored.DeletedAt != nil {
		t.Fatal("restored product should be live again")
	}
}

func TestProductPurge(t *testing.T) {
	db := testDB(t)
	s := NewProductStore(db)

	p := createSingle(t, db, nil, 10)
	ok, err := s.Purge(db, p.ID)
	if err != nil || !ok {
		t.Fatalf("Purge: ok=%t err=%v", ok, err)
	}
	if found, _ := s.FindByID(p.ID, TrashInclude); found != nil {
		t.Error("purged product should be gone entirely")
	}
}

func TestProductScopedUniqueness(t *testing.T) {
	db := testDB(t)
	s := NewProductStore(db)

	p := createSingle(t, db, nil, 10)

	// A live duplicate of product_code must be rejected by the partial
	// unique index.
	dup := *p
	dup.Slug = "dup-" + suffix()
	if p.Single != nil {
		dup.Single = &models.SingleDetails{StockQuantity: 1, MinStockThreshold: 5}
	}
	_, err := s.Create(db, &dup)
	if err == nil {
		t.Fatal("expected unique violation for live duplicate product_code")
	}
	if field, ok := UniqueViolation(err); !ok || field != "product_code" {
		t.Errorf("UniqueViolation = (%q, %t), want (product_code, true)", field, ok)
	}

	// After soft-deleting the original, the same product_code is free.
	if ok, err := s.SoftDelete(db, p.ID); err != nil || !ok {
		t.Fatalf("SoftDelete: ok=%t err=%v", ok, err)
	}
	recreated, err := s.Create(db, &dup)
	if err != nil {
		t.Fatalf("recreate after tombstone: %v", err)
	}
	t.Cleanup(func() { db.Exec("DELETE FROM products WHERE id = $1", recreated.ID) })
}

func TestProductFieldTaken(t *testing.T) {
	db := testDB(t)
	s := NewProductStore(db)

	p := createSingle(t, db, nil, 10)

	taken, err := s.FieldTaken("product_code", p.ProductCode, uuid.Nil)
	if err != nil {
		t.Fatalf("FieldTaken: %v", err)
	}
	if !taken {
		t.Error("existing product_code should be reported taken")
	}

	// Excluding the row itself frees the value, so updates don't trip on
	// their own record.
	taken, err = s.FieldTaken("product_code", p.ProductCode, p.ID)
	if err != nil {
		t.Fatalf("FieldTaken excluding self: %v", err)
	}
	if taken {
		t.Error("value should not be taken when the only holder is excluded")
	}

	// Tombstoned rows do not hold values.
	if ok, err := s.SoftDelete(db, p.ID); err != nil || !ok {
		t.Fatalf("SoftDelete: ok=%t err=%v", ok, err)
	}
	taken, err = s.FieldTaken("product_code", p.ProductCode, uuid.Nil)
	if err != nil {
		t.Fatalf("FieldTaken after tombstone: %v", err)
	}
	if taken {
		t.Error("tombstoned row should not hold uniqueness")
	}

	if _, err := s.FieldTaken("name", "x", uuid.Nil); err == nil {
		t.Error("non-unique column should be rejected")
	}
}

func TestProductListFilters(t *testing.T) {
	db := testDB(t)
	s := NewProductStore(db)

	cat := createCategory(t, db, "Filter")
	inCat := createSingle(t, db, &cat.ID, 10)
	createSingle(t, db, nil, 10)
	combo := createCombo(t, db, &cat.ID, 30)

	byCat, err := s.List(ProductFilter{CategoryID: &cat.ID})
	if err != nil {
		t.Fatalf("List by category: %v", err)
	}
	ids := map[uuid.UUID]bool{}
	for _, p := range byCat {
		ids[p.ID] = true
		if p.CategoryID == nil || *p.CategoryID != cat.ID {
			t.Errorf("product %s outside requested category", p.ID)
		}
	}
	if !ids[inCat.ID] || !ids[combo.ID] {
		t.Error("category filter missed expected products")
	}

	comboType := models.ProductTypeCombo
	byType, err := s.List(ProductFilter{CategoryID: &cat.ID, Type: &comboType})
	if err != nil {
		t.Fatalf("List by type: %v", err)
	}
	for _, p := range byType {
		if p.Type != models.ProductTypeCombo {
			t.Errorf("type filter returned %q", p.Type)
		}
	}

	bySearch, err := s.List(ProductFilter{Search: inCat.ProductCode})
	if err != nil {
		t.Fatalf("List by search: %v", err)
	}
	if len(bySearch) != 1 || bySearch[0].ID != inCat.ID {
		t.Errorf("search by product_code: got %d rows", len(bySearch))
	}
}

func TestProductFindLiveByIDs(t *testing.T) {
	db := testDB(t)
	s := NewProductStore(db)

	live := createSingle(t, db, nil, 10)
	dead := createSingle(t, db, nil, 10)
	if ok, err := s.SoftDelete(db, dead.ID); err != nil || !ok {
		t.Fatalf("SoftDelete: ok=%t err=%v", ok, err)
	}

	found, err := s.FindLiveByIDs([]uuid.UUID{live.ID, dead.ID, uuid.New()})
	if err != nil {
		t.Fatalf("FindLiveByIDs: %v", err)
	}
	if len(found) != 1 {
		t.Fatalf("got %d live products, want 1", len(found))
	}
	if _, ok := found[live.ID]; !ok {
		t.Error("live product missing from result")
	}

	empty, err := s.FindLiveByIDs(nil)
	if err != nil {
		t.Fatalf("FindLiveByIDs(nil): %v", err)
	}
	if len(empty) != 0 {
		t.Error("empty input should return empty map")
	}
}
