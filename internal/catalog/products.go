// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"ecomcat/internal/cache"
	"ecomcat/internal/models"
	"ecomcat/internal/storage"
	"ecomcat/internal/store"
)

// ProductService implements the product read and write surface. Every
// write that touches a combo's membership runs as one transaction with
// the owner-row mutation: both commit or neither does.
type ProductService struct {
	db          *sql.DB
	products    *store.ProductStore
	memberships *store.MembershipStore
	packMembers *store.MembershipStore
	engine      *ComboEngine
	validate    *validator
	cache       *cache.Catalog
	storage     *storage.Client
}

// NewProductService wires the product surface. cache and storage may be
// nil: reads stay correct without a cache and image cleanup is skipped
// without storage.
func NewProductService(
	db *sql.DB,
	products *store.ProductStore,
	categories *store.CategoryStore,
	memberships *store.MembershipStore,
	packMembers *store.MembershipStore,
	catalogCache *cache.Catalog,
	storageClient *storage.Client,
) *ProductService {
	return &ProductService{
		db:          db,
		products:    products,
		memberships: memberships,
		packMembers: packMembers,
		engine:      NewComboEngine(products),
		validate:    &validator{products: products, categories: categories},
		cache:       catalogCache,
		storage:     storageClient,
	}
}

// List returns products matching the filter. Live listings are served
// read-through from the cache; trash views stay uncached since they are
// admin-only.
func (s *ProductService) List(ctx context.Context, f store.ProductFilter) ([]models.Product, error) {
	cacheable := s.cache != nil && f.Trash == store.TrashExclude
	key := productListingKey(f)
	if cacheable {
		if payload, ok := s.cache.Get(ctx, key); ok {
			var cached []models.Product
			if err := json.Unmarshal(payload, &cached); err == nil {
				return cached, nil
			}
			slog.Warn("discarding malformed cached listing", "key", key)
		}
	}

	items, err := s.products.List(f)
	if err != nil {
		return nil, err
	}

	if cacheable {
		if payload, err := json.Marshal(items); err == nil {
			s.cache.SetProductListing(ctx, key, payload)
		}
	}
	return items, nil
}

// Featured returns the newest active featured products, at most limit.
func (s *ProductService) Featured(ctx context.Context, limit int) ([]models.Product, error) {
	return s.List(ctx, store.ProductFilter{
		ActiveOnly: true,
		Featured:   true,
		Limit:      limit,
	})
}

// Get returns one live product with its combo membership attached when
// it is a combo. The assembled detail is cached under the product key.
func (s *ProductService) Get(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if s.cache != nil {
		if payload, ok := s.cache.Get(ctx, cache.ProductKey(id)); ok {
			var cached models.Product
			if err := json.Unmarshal(payload, &cached); err == nil {
				return &cached, nil
			}
			slog.Warn("discarding malformed cached product", "id", id)
		}
	}

	p, err := s.products.FindByID(id, store.TrashExclude)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, &NotFoundError{Entity: "product", ID: id}
	}
	if err := s.attachMembers(p); err != nil {
		return nil, err
	}

	if s.cache != nil {
		if payload, err := json.Marshal(p); err == nil {
			s.cache.Set(ctx, cache.ProductKey(id), payload)
		}
	}
	return p, nil
}

// ComboDetails returns a combo product with its membership projection.
// A live product of the wrong type yields WrongTypeError, not NotFound.
func (s *ProductService) ComboDetails(id uuid.UUID) (*models.Product, error) {
	p, err := s.products.FindByID(id, store.TrashExclude)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, &NotFoundError{Entity: "product", ID: id}
	}
	if !p.IsCombo() {
		return nil, &WrongTypeError{ID: id, Want: string(models.ProductTypeCombo), Got: string(p.Type)}
	}
	if err := s.attachMembers(p); err != nil {
		return nil, err
	}
	return p, nil
}

// Create validates and persists a new product. For combos, the member
// list and the product row commit in one transaction.
func (s *ProductService) Create(ctx context.Context, in *ProductInput) (*models.Product, error) {
	p := normalizeProduct(in)

	var vs violations
	if err := s.validate.checkProduct(p, uuid.Nil, &vs); err != nil {
		return nil, err
	}
	members, err := s.validateMembers(p, uuid.Nil, in.Members, &vs)
	if err != nil {
		return nil, err
	}
	if err := vs.err(); err != nil {
		return nil, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, &TransactionError{Op: "create product", Cause: err}
	}
	defer tx.Rollback()

	created, err := s.products.Create(tx, p)
	if err != nil {
		return nil, writeError("create product", err)
	}
	if created.IsCombo() {
		if err := s.memberships.Sync(tx, created.ID, toMemberRows(members)); err != nil {
			return nil, writeError("sync combo members", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, writeError("create product", err)
	}

	s.invalidate(ctx, created.ID)
	if err := s.attachMembers(created); err != nil {
		return nil, err
	}
	return created, nil
}

// Update validates and persists changes to a live product. A membership
// list in the payload fully replaces the stored membership; a type
// transition to single drops it.
func (s *ProductService) Update(ctx context.Context, id uuid.UUID, in *ProductInput) (*models.Product, error) {
	existing, err := s.products.FindByID(id, store.TrashExclude)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, &NotFoundError{Entity: "product", ID: id}
	}

	p := normalizeProduct(in)
	p.ID = id

	var vs violations
	if err := s.validate.checkProduct(p, id, &vs); err != nil {
		return nil, err
	}
	members, err := s.validateMembers(p, id, in.Members, &vs)
	if err != nil {
		return nil, err
	}
	if err := vs.err(); err != nil {
		return nil, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, &TransactionError{Op: "update product", Cause: err}
	}
	defer tx.Rollback()

	updated, err := s.products.Update(tx, p)
	if err != nil {
		return nil, writeError("update product", err)
	}
	if updated == nil {
		return nil, &NotFoundError{Entity: "product", ID: id}
	}
	if updated.IsCombo() {
		if err := s.memberships.Sync(tx, id, toMemberRows(members)); err != nil {
			return nil, writeError("sync combo members", err)
		}
	} else if existing.IsCombo() {
		// Transition combo -> single: the membership goes with the type.
		if err := s.memberships.DeleteAll(tx, id); err != nil {
			return nil, writeError("clear combo members", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, writeError("update product", err)
	}

	s.invalidate(ctx, id)
	if err := s.attachMembers(updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes a product. Soft deletion stamps the tombstone and keeps
// membership rows so a restore recovers the full state; hard deletion
// purges the row, cascades the membership, and asks storage to drop the
// image files (best effort, logged on failure).
func (s *ProductService) Delete(ctx context.Context, id uuid.UUID, hard bool) error {
	if !hard {
		ok, err := s.products.SoftDelete(s.db, id)
		if err != nil {
			return writeError("delete product", err)
		}
		if !ok {
			return &NotFoundError{Entity: "product", ID: id}
		}
		s.invalidate(ctx, id)
		return nil
	}

	p, err := s.products.FindByID(id, store.TrashInclude)
	if err != nil {
		return err
	}
	if p == nil {
		return &NotFoundError{Entity: "product", ID: id}
	}

	tx, err := s.db.Begin()
	if err != nil {
		return &TransactionError{Op: "purge product", Cause: err}
	}
	defer tx.Rollback()

	if _, err := s.products.Purge(tx, id); err != nil {
		return writeError("purge product", err)
	}
	if err := tx.Commit(); err != nil {
		return writeError("purge product", err)
	}

	s.removeImages(ctx, p.Images)
	s.invalidate(ctx, id)
	return nil
}

// Restore clears the tombstone of a soft-deleted product.
func (s *ProductService) Restore(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	ok, err := s.products.Restore(s.db, id)
	if err != nil {
		return nil, writeError("restore product", err)
	}
	if !ok {
		return nil, &NotFoundError{Entity: "product", ID: id}
	}
	s.invalidate(ctx, id)
	return s.Get(ctx, id)
}

// validateMembers runs the composition engine for combo payloads and
// folds its violations into vs. Single products must not carry members.
func (s *ProductService) validateMembers(p *models.Product, id uuid.UUID, entries []MemberEntry, vs *violations) ([]MemberEntry, error) {
	if !p.IsCombo() {
		if len(entries) > 0 {
			vs.add(KindConstraintViolation, "members", "a single product cannot have combo members")
		}
		return nil, nil
	}
	members, err := s.engine.ValidateMembership(Owner{ID: id, IsProduct: true, CategoryID: p.CategoryID}, entries)
	if err != nil {
		if ve, ok := IsValidation(err); ok {
			vs.list = append(vs.list, ve.Violations...)
			return nil, nil
		}
		return nil, err
	}
	return members, nil
}

// attachMembers populates the membership projection of a combo product.
func (s *ProductService) attachMembers(p *models.Product) error {
	if !p.IsCombo() {
		return nil
	}
	members, err := s.memberships.Project(p.ID)
	if err != nil {
		return err
	}
	p.Combo.Members = members
	return nil
}

// invalidate drops the cached views a product write can stale: the
// product itself, the product listings, and any combo pack that embeds
// this product in its projection.
func (s *ProductService) invalidate(ctx context.Context, id uuid.UUID) {
	if s.cache == nil {
		return
	}
	s.cache.InvalidateProduct(ctx, id)
	s.cache.InvalidateProductListings(ctx)

	packs, err := s.packMembers.CombosReferencing(id)
	if err != nil {
		slog.Warn("listing combo packs for invalidation failed", "product_id", id, "error", err)
		return
	}
	for _, packID := range packs {
		s.cache.InvalidateComboPack(ctx, packID)
	}
	if len(packs) > 0 {
		s.cache.InvalidateComboPackListings(ctx)
	}
}

// removeImages asks storage to drop stored image objects. Failures are
// logged and never block the owning mutation.
func (s *ProductService) removeImages(ctx context.Context, keys []string) {
	if s.storage == nil || len(keys) == 0 {
		return
	}
	for _, key := range keys {
		if err := s.storage.Delete(ctx, key); err != nil {
			slog.Warn("image cleanup failed", "key", key, "error", err)
		}
	}
}

// toMemberRows converts validated entries to storage rows.
func toMemberRows(entries []MemberEntry) []store.MemberRow {
	rows := make([]store.MemberRow, len(entries))
	for i, e := range entries {
		rows[i] = store.MemberRow{ProductID: e.ProductID, Quantity: e.Quantity}
	}
	return rows
}

// productListingKey builds the deterministic cache key for a live
// product listing. Trash listings are never cached, so the trash mode
// does not participate.
func productListingKey(f store.ProductFilter) string {
	category := "none"
	if f.CategoryID != nil {
		category = f.CategoryID.String()
	}
	productType := "any"
	if f.Type != nil {
		productType = string(*f.Type)
	}
	return cache.ListingKey("products",
		"cat="+category,
		"type="+productType,
		"q="+f.Search,
		fmt.Sprintf("active=%t", f.ActiveOnly),
		fmt.Sprintf("featured=%t", f.Featured),
		fmt.Sprintf("limit=%d", f.Limit),
	)
}

// writeError translates storage failures at commit time: a unique
// violation becomes a field-specific validation error (the pre-check
// lost a race), anything else a TransactionError with the cause kept.
func writeError(op string, err error) error {
	if field, ok := store.UniqueViolation(err); ok {
		return singleViolation(KindDuplicateField, field, "%s is already in use", field)
	}
	return &TransactionError{Op: op, Cause: err}
}
