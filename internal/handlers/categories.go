// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"ecomcat/internal/catalog"
	"ecomcat/internal/models"
	"ecomcat/internal/slug"
	"ecomcat/internal/store"
)

// Categories groups the category handlers. Categories are simple enough
// that handlers drive the store directly; the product service is only
// consulted when a caller asks for a category's products inline.
type Categories struct {
	store    *store.CategoryStore
	products *catalog.ProductService
}

// NewCategories creates the category handler group.
func NewCategories(s *store.CategoryStore, products *catalog.ProductService) *Categories {
	return &Categories{store: s, products: products}
}

type categoryInput struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	IsActive    *bool  `json:"is_active"`
	SortOrder   int    `json:"sort_order"`
}

// List returns all categories with live product counts. ?active=true
// narrows to active ones.
func (h *Categories) List(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"
	cats, err := h.store.List(activeOnly)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cats)
}

// Get returns one category by id. ?include=products embeds the
// category's active products in the response.
func (h *Categories) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	include := r.URL.Query().Get("include")
	if include != "" && include != "products" {
		badRequest(w, "invalid include parameter")
		return
	}

	c, err := h.store.FindByID(id)
	if err != nil {
		writeError(w, err)
		return
	}
	if c == nil {
		writeError(w, &catalog.NotFoundError{Entity: "category", ID: id})
		return
	}

	if include == "products" {
		items, err := h.products.List(r.Context(), store.ProductFilter{
			CategoryID: &id,
			ActiveOnly: true,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		if items == nil {
			items = []models.Product{}
		}
		c.Products = items
	}
	writeJSON(w, http.StatusOK, c)
}

// Create adds a new category.
func (h *Categories) Create(w http.ResponseWriter, r *http.Request) {
	var in categoryInput
	if err := decode(r, &in); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	c, err := h.normalize(&in, uuid.Nil)
	if err != nil {
		writeError(w, err)
		return
	}
	created, err := h.store.Create(c)
	if err != nil {
		writeError(w, storeError(err))
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// Update rewrites an existing category.
func (h *Categories) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	existing, err := h.store.FindByID(id)
	if err != nil {
		writeError(w, err)
		return
	}
	if existing == nil {
		writeError(w, &catalog.NotFoundError{Entity: "category", ID: id})
		return
	}

	var in categoryInput
	if err := decode(r, &in); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	c, err := h.normalize(&in, id)
	if err != nil {
		writeError(w, err)
		return
	}
	c.ID = id
	if err := h.store.Update(c); err != nil {
		writeError(w, storeError(err))
		return
	}
	updated, err := h.store.FindByID(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// Delete removes a category. Products keep existing with their category
// reference cleared.
func (h *Categories) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	existing, err := h.store.FindByID(id)
	if err != nil {
		writeError(w, err)
		return
	}
	if existing == nil {
		writeError(w, &catalog.NotFoundError{Entity: "category", ID: id})
		return
	}
	if err := h.store.Delete(id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// normalize validates the payload and applies defaults. excludeID skips
// the record itself in the slug uniqueness check.
func (h *Categories) normalize(in *categoryInput, excludeID uuid.UUID) (*models.Category, error) {
	if in.Name == "" {
		return nil, &catalog.ValidationError{Violations: []catalog.Violation{{
			Kind: catalog.KindRequiredField, Field: "name", Message: "name is required",
		}}}
	}
	if in.Slug == "" {
		in.Slug = slug.Generate(in.Name)
	}
	taken, err := h.store.SlugTaken(in.Slug, excludeID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, &catalog.ValidationError{Violations: []catalog.Violation{{
			Kind: catalog.KindDuplicateField, Field: "slug",
			Message: "slug " + `"` + in.Slug + `"` + " is already in use",
		}}}
	}

	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}
	return &models.Category{
		Name:        in.Name,
		Slug:        in.Slug,
		Description: in.Description,
		IsActive:    active,
		SortOrder:   in.SortOrder,
	}, nil
}
