// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"testing"

	"github.com/google/uuid"
)

// syncTx runs one Sync inside a committed transaction, the way services
// drive the store.
func syncTx(t *testing.T, db *sql.DB, s *MembershipStore, ownerID uuid.UUID, entries []MemberRow) {
	t.Helper()
	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := s.Sync(tx, ownerID, entries); err != nil {
		tx.Rollback()
		t.Fatalf("Sync: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
}

func TestMembershipSyncDiff(t *testing.T) {
	db := testDB(t)
	s := NewComboProductStore(db, 50)

	combo := createCombo(t, db, nil, 30)
	a := createSingle(t, db, nil, 10)
	b := createSingle(t, db, nil, 12)
	c := createSingle(t, db, nil, 14)

	syncTx(t, db, s, combo.ID, []MemberRow{
		{ProductID: a.ID, Quantity: 1},
		{ProductID: b.ID, Quantity: 2},
	})

	stored, err := s.List(combo.ID)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(stored) != 2 {
		t.Fatalf("stored %d rows, want 2", len(stored))
	}

	// Re-sync with b's quantity changed, a removed, c added.
	syncTx(t, db, s, combo.ID, []MemberRow{
		{ProductID: b.ID, Quantity: 5},
		{ProductID: c.ID, Quantity: 1},
	})

	stored, err = s.List(combo.ID)
	if err != nil {
		t.Fatalf("List after resync: %v", err)
	}
	got := map[uuid.UUID]int{}
	for _, m := range stored {
		got[m.ProductID] = m.Quantity
	}
	if len(got) != 2 || got[b.ID] != 5 || got[c.ID] != 1 {
		t.Errorf("stored membership = %v", got)
	}
	if _, still := got[a.ID]; still {
		t.Error("removed member still stored")
	}
}

func TestMembershipSyncIdempotent(t *testing.T) {
	db := testDB(t)
	s := NewComboProductStore(db, 50)

	combo := createCombo(t, db, nil, 30)
	a := createSingle(t, db, nil, 10)
	entries := []MemberRow{{ProductID: a.ID, Quantity: 3}}

	syncTx(t, db, s, combo.ID, entries)
	first, err := s.List(combo.ID)
	if err != nil {
		t.Fatalf("List: %v", err)
	}

	syncTx(t, db, s, combo.ID, entries)
	second, err := s.List(combo.ID)
	if err != nil {
		t.Fatalf("List after second sync: %v", err)
	}

	if len(first) != 1 || len(second) != 1 {
		t.Fatalf("row counts: %d then %d, want 1 and 1", len(first), len(second))
	}
	if first[0] != second[0] {
		t.Errorf("second sync changed the row: %+v -> %+v", first[0], second[0])
	}
}

func TestMembershipSyncChunked(t *testing.T) {
	db := testDB(t)
	// chunkSize 2 forces multiple INSERT statements for 5 members.
	s := NewComboProductStore(db, 2)

	combo := createCombo(t, db, nil, 50)
	var entries []MemberRow
	for i := 0; i < 5; i++ {
		p := createSingle(t, db, nil, 10)
		entries = append(entries, MemberRow{ProductID: p.ID, Quantity: i + 1})
	}

	syncTx(t, db, s, combo.ID, entries)

	stored, err := s.List(combo.ID)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(stored) != 5 {
		t.Errorf("stored %d rows, want 5", len(stored))
	}
}

func TestMembershipProject(t *testing.T) {
	db := testDB(t)
	s := NewComboProductStore(db, 50)
	ps := NewProductStore(db)

	combo := createCombo(t, db, nil, 30)
	a := createSingle(t, db, nil, 10)
	a.Images = []string{"products/a-front.webp", "products/a-back.webp"}
	if _, err := ps.Update(db, a); err != nil {
		t.Fatalf("set images: %v", err)
	}
	b := createSingle(t, db, nil, 12)

	syncTx(t, db, s, combo.ID, []MemberRow{
		{ProductID: a.ID, Quantity: 2},
		{ProductID: b.ID, Quantity: 1},
	})

	members, err := s.Project(combo.ID)
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	if len(members) != 2 {
		t.Fatalf("projected %d members, want 2", len(members))
	}

	byID := map[uuid.UUID]int{}
	for i, m := range members {
		byID[m.ProductID] = i
	}
	ma := members[byID[a.ID]]
	if ma.Name != a.Name {
		t.Errorf("member name = %q, want %q", ma.Name, a.Name)
	}
	if !ma.Price.Equal(a.Price) {
		t.Errorf("member price = %s, want %s", ma.Price, a.Price)
	}
	if ma.Image == nil || *ma.Image != "products/a-front.webp" {
		t.Errorf("member image = %v, want first image", ma.Image)
	}
	if ma.Quantity != 2 {
		t.Errorf("member quantity = %d, want 2", ma.Quantity)
	}

	mb := members[byID[b.ID]]
	if mb.Image != nil {
		t.Errorf("member without images should project nil, got %q", *mb.Image)
	}

	// The projection is stable across repeated reads.
	again, err := s.Project(combo.ID)
	if err != nil {
		t.Fatalf("second Project: %v", err)
	}
	for i := range members {
		if members[i].ProductID != again[i].ProductID {
			t.Fatal("projection order changed between reads")
		}
	}
}

func TestMembershipCascadeOnMemberPurge(t *testing.T) {
	db := testDB(t)
	s := NewComboProductStore(db, 50)
	ps := NewProductStore(db)

	combo := createCombo(t, db, nil, 30)
	a := createSingle(t, db, nil, 10)
	syncTx(t, db, s, combo.ID, []MemberRow{{ProductID: a.ID, Quantity: 1}})

	if ok, err := ps.Purge(db, a.ID); err != nil || !ok {
		t.Fatalf("Purge: ok=%t err=%v", ok, err)
	}

	stored, err := s.List(combo.ID)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(stored) != 0 {
		t.Errorf("membership rows survived member purge: %d", len(stored))
	}
}

func TestMembershipCombosReferencing(t *testing.T) {
	db := testDB(t)
	s := NewComboProductStore(db, 50)

	member := createSingle(t, db, nil, 10)
	c1 := createCombo(t, db, nil, 30)
	c2 := createCombo(t, db, nil, 40)
	syncTx(t, db, s, c1.ID, []MemberRow{{ProductID: member.ID, Quantity: 1}})
	syncTx(t, db, s, c2.ID, []MemberRow{{ProductID: member.ID, Quantity: 2}})

	owners, err := s.CombosReferencing(member.ID)
	if err != nil {
		t.Fatalf("CombosReferencing: %v", err)
	}
	got := map[uuid.UUID]bool{}
	for _, id := range owners {
		got[id] = true
	}
	if len(got) != 2 || !got[c1.ID] || !got[c2.ID] {
		t.Errorf("owners = %v, want both combos", owners)
	}
}

func TestMembershipPackStoreIndependent(t *testing.T) {
	db := testDB(t)
	packMembers := NewComboPackMemberStore(db, 50)
	comboMembers := NewComboProductStore(db, 50)

	pack := createPack(t, db, nil, 25)
	member := createSingle(t, db, nil, 10)
	syncTx(t, db, packMembers, pack.ID, []MemberRow{{ProductID: member.ID, Quantity: 1}})

	stored, err := packMembers.List(pack.ID)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(stored) != 1 {
		t.Fatalf("stored %d pack member rows, want 1", len(stored))
	}

	// The two association tables never bleed into each other.
	cross, err := comboMembers.List(pack.ID)
	if err != nil {
		t.Fatalf("cross List: %v", err)
	}
	if len(cross) != 0 {
		t.Error("pack membership visible through the combo product store")
	}
}
