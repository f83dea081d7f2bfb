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

// MemberRow is one stored membership entry: which product and how many.
type MemberRow struct {
	ProductID uuid.UUID
	Quantity  int
}

// MembershipStore manages one owner-to-product association table. The
// same code serves both owner kinds — combo-typed products via
// combo_products and standalone combo packs via combo_pack_products —
// parameterized by table and owner column.
type MembershipStore struct {
	db        *sql.DB
	table     string
	ownerCol  string
	chunkSize int
}

// NewComboProductStore returns the membership store for combo-typed
// products. chunkSize bounds how many rows a single INSERT carries.
func NewComboProductStore(db *sql.DB, chunkSize int) *MembershipStore {
	return &MembershipStore{db: db, table: "combo_products", ownerCol: "combo_id", chunkSize: chunkSize}
}

// NewComboPackMemberStore returns the membership store for standalone
// combo packs.
func NewComboPackMemberStore(db *sql.DB, chunkSize int) *MembershipStore {
	return &MembershipStore{db: db, table: "combo_pack_products", ownerCol: "combo_pack_id", chunkSize: chunkSize}
}

// List returns the stored membership of an owner in stable order
// (insertion time, then product id).
func (s *MembershipStore) List(ownerID uuid.UUID) ([]MemberRow, error) {
	return s.list(s.db, ownerID)
}

func (s *MembershipStore) list(q dbtx, ownerID uuid.UUID) ([]MemberRow, error) {
	rows, err := q.Query(fmt.Sprintf(`
		SELECT product_id, quantity FROM %s
		WHERE %s = $1
		ORDER BY created_at, product_id
	`, s.table, s.ownerCol), ownerID)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.table, err)
	}
	defer rows.Close()

	var items []MemberRow
	for rows.Next() {
		var m MemberRow
		if err := rows.Scan(&m.ProductID, &m.Quantity); err != nil {
			return nil, fmt.Errorf("scan %s: %w", s.table, err)
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

// Sync reconciles the stored membership of an owner with the desired
// entries: missing rows are inserted, changed quantities updated, and
// rows absent from entries deleted. It must run inside the owner's
// transaction so a partial sync can never become visible. Calling it
// twice with the same entries is a no-op the second time.
func (s *MembershipStore) Sync(tx dbtx, ownerID uuid.UUID, entries []MemberRow) error {
	current, err := s.list(tx, ownerID)
	if err != nil {
		return err
	}

	stored := make(map[uuid.UUID]int, len(current))
	for _, m := range current {
		stored[m.ProductID] = m.Quantity
	}

	desired := make(map[uuid.UUID]bool, len(entries))
	var inserts []MemberRow
	for _, e := range entries {
		desired[e.ProductID] = true
		qty, ok := stored[e.ProductID]
		switch {
		case !ok:
			inserts = append(inserts, e)
		case qty != e.Quantity:
			_, err := tx.Exec(fmt.Sprintf(`
				UPDATE %s SET quantity = $1, updated_at = NOW()
				WHERE %s = $2 AND product_id = $3
			`, s.table, s.ownerCol), e.Quantity, ownerID, e.ProductID)
			if err != nil {
				return fmt.Errorf("update %s quantity: %w", s.table, err)
			}
		}
	}

	// Deletions go first so a removed slot is free before any insert.
	var removed []uuid.UUID
	for id := range stored {
		if !desired[id] {
			removed = append(removed, id)
		}
	}
	for _, id := range removed {
		_, err := tx.Exec(fmt.Sprintf(`
			DELETE FROM %s WHERE %s = $1 AND product_id = $2
		`, s.table, s.ownerCol), ownerID, id)
		if err != nil {
			return fmt.Errorf("delete %s row: %w", s.table, err)
		}
	}

	for start := 0; start < len(inserts); start += s.chunkSize {
		end := start + s.chunkSize
		if end > len(inserts) {
			end = len(inserts)
		}
		if err := s.insertChunk(tx, ownerID, inserts[start:end]); err != nil {
			return err
		}
	}
	return nil
}

// insertChunk inserts a batch of membership rows in one statement.
func (s *MembershipStore) insertChunk(tx dbtx, ownerID uuid.UUID, chunk []MemberRow) error {
	values := make([]string, len(chunk))
	args := make([]any, 0, len(chunk)*2+1)
	args = append(args, ownerID)
	for i, m := range chunk {
		values[i] = fmt.Sprintf("($1, $%d, $%d)", len(args)+1, len(args)+2)
		args = append(args, m.ProductID, m.Quantity)
	}

	_, err := tx.Exec(fmt.Sprintf(`
		INSERT INTO %s (%s, product_id, quantity)
		VALUES %s
	`, s.table, s.ownerCol, strings.Join(values, ", ")), args...)
	if err != nil {
		return fmt.Errorf("insert %s rows: %w", s.table, err)
	}
	return nil
}

// Project joins the membership rows of an owner to member product
// summaries: id, name, price, first image, and the pivot quantity. The
// order is stable across repeated reads.
func (s *MembershipStore) Project(ownerID uuid.UUID) ([]models.ComboMember, error) {
	rows, err := s.db.Query(fmt.Sprintf(`
		SELECT m.product_id, p.name, p.price, p.images ->> 0, m.quantity
		FROM %s m
		JOIN products p ON p.id = m.product_id
		WHERE m.%s = $1
		ORDER BY m.created_at, m.product_id
	`, s.table, s.ownerCol), ownerID)
	if err != nil {
		return nil, fmt.Errorf("project %s: %w", s.table, err)
	}
	defer rows.Close()

	var members []models.ComboMember
	for rows.Next() {
		var m models.ComboMember
		if err := rows.Scan(&m.ProductID, &m.Name, &m.Price, &m.Image, &m.Quantity); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// DeleteAll removes every membership row of an owner. Used when an owner
// is purged outside the FK cascade path.
func (s *MembershipStore) DeleteAll(tx dbtx, ownerID uuid.UUID) error {
	_, err := tx.Exec(fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, s.table, s.ownerCol), ownerID)
	if err != nil {
		return fmt.Errorf("clear %s: %w", s.table, err)
	}
	return nil
}

// CombosReferencing returns the owner ids that include the given product
// as a member. Used for cache invalidation when a member product changes.
func (s *MembershipStore) CombosReferencing(productID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := s.db.Query(fmt.Sprintf(`
		SELECT %s FROM %s WHERE product_id = $1
	`, s.ownerCol, s.table), productID)
	if err != nil {
		return nil, fmt.Errorf("owners referencing product: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan owner id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
