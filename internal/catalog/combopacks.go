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
	"ecomcat/internal/slug"
	"ecomcat/internal/storage"
	"ecomcat/internal/store"
)

// ComboPackService implements the standalone combo pack surface. It uses
// the same composition engine as combo-typed products and adds a
// read-through response cache: list and detail reads serve from Valkey
// when possible, and every committed write invalidates exactly the keys
// it can stale.
type ComboPackService struct {
	db         *sql.DB
	packs      *store.ComboPackStore
	members    *store.MembershipStore
	categories *store.CategoryStore
	engine     *ComboEngine
	validate   *validator
	cache      *cache.Catalog
	storage    *storage.Client
}

// NewComboPackService wires the combo pack surface. cache and storage
// may be nil.
func NewComboPackService(
	db *sql.DB,
	packs *store.ComboPackStore,
	products *store.ProductStore,
	categories *store.CategoryStore,
	members *store.MembershipStore,
	catalogCache *cache.Catalog,
	storageClient *storage.Client,
) *ComboPackService {
	return &ComboPackService{
		db:         db,
		packs:      packs,
		members:    members,
		categories: categories,
		engine:     NewComboEngine(products),
		validate:   &validator{products: products, packs: packs, categories: categories},
		cache:      catalogCache,
		storage:    storageClient,
	}
}

// List returns combo packs matching the filter, each with its membership
// projection and category attached. The filtered response is cached
// under a deterministic key.
func (s *ComboPackService) List(ctx context.Context, f store.ComboPackFilter) ([]models.ComboPack, error) {
	key := listingKey(f)
	if s.cache != nil {
		if payload, ok := s.cache.Get(ctx, key); ok {
			var cached []models.ComboPack
			if err := json.Unmarshal(payload, &cached); err == nil {
				return cached, nil
			}
			slog.Warn("discarding malformed cached listing", "key", key)
		}
	}

	packs, err := s.packs.List(f)
	if err != nil {
		return nil, err
	}
	categoryByID := make(map[uuid.UUID]*models.Category)
	for i := range packs {
		if err := s.attach(&packs[i], categoryByID); err != nil {
			return nil, err
		}
	}

	if s.cache != nil {
		if payload, err := json.Marshal(packs); err == nil {
			s.cache.SetComboPackListing(ctx, key, payload)
		}
	}
	return packs, nil
}

// Get returns one combo pack with members and category attached.
func (s *ComboPackService) Get(ctx context.Context, id uuid.UUID) (*models.ComboPack, error) {
	if s.cache != nil {
		if payload, ok := s.cache.Get(ctx, cache.ComboPackKey(id)); ok {
			var cached models.ComboPack
			if err := json.Unmarshal(payload, &cached); err == nil {
				return &cached, nil
			}
			slog.Warn("discarding malformed cached combo pack", "id", id)
		}
	}

	cp, err := s.packs.FindByID(id)
	if err != nil {
		return nil, err
	}
	if cp == nil {
		return nil, &NotFoundError{Entity: "combo pack", ID: id}
	}
	if err := s.attach(cp, nil); err != nil {
		return nil, err
	}

	if s.cache != nil {
		if payload, err := json.Marshal(cp); err == nil {
			s.cache.Set(ctx, cache.ComboPackKey(id), payload)
		}
	}
	return cp, nil
}

// Create validates and persists a new combo pack together with its
// membership in one transaction.
func (s *ComboPackService) Create(ctx context.Context, in *ComboPackInput) (*models.ComboPack, error) {
	cp := normalizeComboPack(in)

	var vs violations
	if err := s.validate.checkComboPack(cp, uuid.Nil, &vs); err != nil {
		return nil, err
	}
	members, err := s.validateMembers(cp, &vs, in.Members)
	if err != nil {
		return nil, err
	}
	if err := vs.err(); err != nil {
		return nil, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, &TransactionError{Op: "create combo pack", Cause: err}
	}
	defer tx.Rollback()

	created, err := s.packs.Create(tx, cp)
	if err != nil {
		return nil, writeError("create combo pack", err)
	}
	if err := s.members.Sync(tx, created.ID, toMemberRows(members)); err != nil {
		return nil, writeError("sync combo pack members", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, writeError("create combo pack", err)
	}

	s.invalidate(ctx, created.ID)
	if err := s.attach(created, nil); err != nil {
		return nil, err
	}
	return created, nil
}

// Update validates and persists changes to a combo pack. A membership
// list in the payload fully replaces the stored membership.
func (s *ComboPackService) Update(ctx context.Context, id uuid.UUID, in *ComboPackInput) (*models.ComboPack, error) {
	existing, err := s.packs.FindByID(id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, &NotFoundError{Entity: "combo pack", ID: id}
	}

	cp := normalizeComboPack(in)
	cp.ID = id

	var vs violations
	if err := s.validate.checkComboPack(cp, id, &vs); err != nil {
		return nil, err
	}
	members, err := s.validateMembers(cp, &vs, in.Members)
	if err != nil {
		return nil, err
	}
	if err := vs.err(); err != nil {
		return nil, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, &TransactionError{Op: "update combo pack", Cause: err}
	}
	defer tx.Rollback()

	updated, err := s.packs.Update(tx, cp)
	if err != nil {
		return nil, writeError("update combo pack", err)
	}
	if updated == nil {
		return nil, &NotFoundError{Entity: "combo pack", ID: id}
	}
	if err := s.members.Sync(tx, id, toMemberRows(members)); err != nil {
		return nil, writeError("sync combo pack members", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, writeError("update combo pack", err)
	}

	s.invalidate(ctx, id)
	if err := s.attach(updated, nil); err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes a combo pack; membership rows cascade with the row and
// stored images are dropped best effort.
func (s *ComboPackService) Delete(ctx context.Context, id uuid.UUID) error {
	cp, err := s.packs.FindByID(id)
	if err != nil {
		return err
	}
	if cp == nil {
		return &NotFoundError{Entity: "combo pack", ID: id}
	}

	tx, err := s.db.Begin()
	if err != nil {
		return &TransactionError{Op: "delete combo pack", Cause: err}
	}
	defer tx.Rollback()

	if _, err := s.packs.Delete(tx, id); err != nil {
		return writeError("delete combo pack", err)
	}
	if err := tx.Commit(); err != nil {
		return writeError("delete combo pack", err)
	}

	s.removeImages(ctx, cp.Images)
	s.invalidate(ctx, id)
	return nil
}

// validateMembers runs the composition engine and folds its violations
// into vs. Packs always require at least one member.
func (s *ComboPackService) validateMembers(cp *models.ComboPack, vs *violations, entries []MemberEntry) ([]MemberEntry, error) {
	members, err := s.engine.ValidateMembership(Owner{ID: cp.ID, IsProduct: false, CategoryID: cp.CategoryID}, entries)
	if err != nil {
		if ve, ok := IsValidation(err); ok {
			vs.list = append(vs.list, ve.Violations...)
			return nil, nil
		}
		return nil, err
	}
	return members, nil
}

// attach populates the membership projection and category of a pack.
// categoryByID memoizes category lookups across a listing.
func (s *ComboPackService) attach(cp *models.ComboPack, categoryByID map[uuid.UUID]*models.Category) error {
	members, err := s.members.Project(cp.ID)
	if err != nil {
		return err
	}
	cp.Members = members

	if cp.CategoryID == nil {
		return nil
	}
	if categoryByID != nil {
		if c, ok := categoryByID[*cp.CategoryID]; ok {
			cp.Category = c
			return nil
		}
	}
	c, err := s.categories.FindByID(*cp.CategoryID)
	if err != nil {
		return err
	}
	cp.Category = c
	if categoryByID != nil {
		categoryByID[*cp.CategoryID] = c
	}
	return nil
}

// invalidate drops the cached detail and every registered listing.
func (s *ComboPackService) invalidate(ctx context.Context, id uuid.UUID) {
	if s.cache == nil {
		return
	}
	s.cache.InvalidateComboPack(ctx, id)
	s.cache.InvalidateComboPackListings(ctx)
}

// removeImages asks storage to drop stored image objects, logging
// failures instead of propagating them.
func (s *ComboPackService) removeImages(ctx context.Context, keys []string) {
	if s.storage == nil || len(keys) == 0 {
		return
	}
	for _, key := range keys {
		if err := s.storage.Delete(ctx, key); err != nil {
			slog.Warn("image cleanup failed", "key", key, "error", err)
		}
	}
}

// normalizeComboPack applies payload defaults.
func normalizeComboPack(in *ComboPackInput) *models.ComboPack {
	if in.Slug == "" {
		in.Slug = slug.Generate(in.Name)
	}
	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}
	return &models.ComboPack{
		ComboCode:     in.ComboCode,
		CategoryID:    in.CategoryID,
		Name:          in.Name,
		Slug:          in.Slug,
		Description:   in.Description,
		Price:         in.Price,
		DiscountPrice: in.DiscountPrice,
		Images:        in.Images,
		IsActive:      active,
	}
}

// listingKey derives the deterministic cache key of a filtered listing.
func listingKey(f store.ComboPackFilter) string {
	category := "none"
	if f.CategoryID != nil {
		category = f.CategoryID.String()
	}
	return cache.ListingKey("combo_packs",
		"cat="+category,
		"q="+f.Search,
		fmt.Sprintf("active=%t", f.ActiveOnly),
		fmt.Sprintf("limit=%d", f.Limit),
	)
}
