// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"testing"

	"github.com/google/uuid"
)

func TestCategoryCRUD(t *testing.T) {
	db := testDB(t)
	s := NewCategoryStore(db)

	c := createCategory(t, db, "Drinks")
	if c.ID == uuid.Nil {
		t.Fatal("created category has no id")
	}

	found, err := s.FindByID(c.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if found == nil || found.Slug != c.Slug {
		t.Fatalf("FindByID returned %+v", found)
	}

	bySlug, err := s.FindBySlug(c.Slug)
	if err != nil {
		t.Fatalf("FindBySlug: %v", err)
	}
	if bySlug == nil || bySlug.ID != c.ID {
		t.Fatal("FindBySlug did not resolve the category")
	}

	c.Name = "Hot Drinks"
	c.SortOrder = 3
	if err := s.Update(c); err != nil {
		t.Fatalf("Update: %v", err)
	}
	found, err = s.FindByID(c.ID)
	if err != nil {
		t.Fatalf("FindByID after update: %v", err)
	}
	if found.Name != "Hot Drinks" || found.SortOrder != 3 {
		t.Errorf("update not persisted: %+v", found)
	}

	if err := s.Delete(c.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	found, err = s.FindByID(c.ID)
	if err != nil {
		t.Fatalf("FindByID after delete: %v", err)
	}
	if found != nil {
		t.Error("deleted category still resolvable")
	}
}

func TestCategoryDeleteDetachesProducts(t *testing.T) {
	db := testDB(t)
	cs := NewCategoryStore(db)
	ps := NewProductStore(db)

	c := createCategory(t, db, "Doomed")
	p := createSingle(t, db, &c.ID, 10)

	if err := cs.Delete(c.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	// The product survives with its category reference cleared.
	found, err := ps.FindByID(p.ID, TrashExclude)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if found == nil {
		t.Fatal("product should survive its category")
	}
	if found.CategoryID != nil {
		t.Errorf("category_id = %v, want NULL after category delete", found.CategoryID)
	}
}

func TestCategoryListCountsLiveProducts(t *testing.T) {
	db := testDB(t)
	cs := NewCategoryStore(db)
	ps := NewProductStore(db)

	c := createCategory(t, db, "Counted")
	createSingle(t, db, &c.ID, 10)
	dead := createSingle(t, db, &c.ID, 10)
	if ok, err := ps.SoftDelete(db, dead.ID); err != nil || !ok {
		t.Fatalf("SoftDelete: ok=%t err=%v", ok, err)
	}

	cats, err := cs.List(false)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	for _, got := range cats {
		if got.ID != c.ID {
			continue
		}
		if got.ProductCount != 1 {
			t.Errorf("product_count = %d, want 1 (tombstoned rows excluded)", got.ProductCount)
		}
		return
	}
	t.Fatal("created category missing from listing")
}

func TestCategorySlugTaken(t *testing.T) {
	db := testDB(t)
	s := NewCategoryStore(db)

	c := createCategory(t, db, "Slugged")

	taken, err := s.SlugTaken(c.Slug, uuid.Nil)
	if err != nil {
		t.Fatalf("SlugTaken: %v", err)
	}
	if !taken {
		t.Error("existing slug should be reported taken")
	}

	taken, err = s.SlugTaken(c.Slug, c.ID)
	if err != nil {
		t.Fatalf("SlugTaken excluding self: %v", err)
	}
	if taken {
		t.Error("slug should be free when its holder is excluded")
	}
}
