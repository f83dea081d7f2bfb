// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"ecomcat/internal/catalog"
	"ecomcat/internal/models"
	"ecomcat/internal/store"
)

const defaultFeaturedLimit = 8

// Products groups the product handlers around the product service.
type Products struct {
	service *catalog.ProductService
}

// NewProducts creates the product handler group.
func NewProducts(service *catalog.ProductService) *Products {
	return &Products{service: service}
}

// List returns products matching the query filters: ?category_id,
// ?type, ?q, ?active=true, ?featured=true, ?trash=with|only, ?limit.
func (h *Products) List(w http.ResponseWriter, r *http.Request) {
	f, err := productFilter(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	items, err := h.service.List(r.Context(), f)
	if err != nil {
		writeError(w, err)
		return
	}
	if items == nil {
		items = []models.Product{}
	}
	writeJSON(w, http.StatusOK, items)
}

// Featured returns the newest active featured products.
func (h *Products) Featured(w http.ResponseWriter, r *http.Request) {
	limit := defaultFeaturedLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			badRequest(w, "invalid limit")
			return
		}
		limit = n
	}
	items, err := h.service.Featured(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if items == nil {
		items = []models.Product{}
	}
	writeJSON(w, http.StatusOK, items)
}

// ByCategory returns the active products of one category.
func (h *Products) ByCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	items, err := h.service.List(r.Context(), store.ProductFilter{
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
	writeJSON(w, http.StatusOK, items)
}

// Get returns one live product.
func (h *Products) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	p, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// ComboDetails returns a combo product with its membership projection.
// Requesting a single product here is a conflict, not a miss.
func (h *Products) ComboDetails(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	p, err := h.service.ComboDetails(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Create adds a new product. Combo payloads carry their member list and
// commit atomically with it.
func (h *Products) Create(w http.ResponseWriter, r *http.Request) {
	var in catalog.ProductInput
	if err := decode(r, &in); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	created, err := h.service.Create(r.Context(), &in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// Update rewrites a live product.
func (h *Products) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in catalog.ProductInput
	if err := decode(r, &in); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	updated, err := h.service.Update(r.Context(), id, &in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// Delete soft-deletes a product; ?hard=true purges the row and its
// images permanently.
func (h *Products) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	hard := r.URL.Query().Get("hard") == "true"
	if err := h.service.Delete(r.Context(), id, hard); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// Restore clears the tombstone of a soft-deleted product.
func (h *Products) Restore(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	restored, err := h.service.Restore(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, restored)
}

// productFilter builds the store filter from query parameters.
func productFilter(r *http.Request) (store.ProductFilter, error) {
	q := r.URL.Query()
	var f store.ProductFilter

	if raw := q.Get("category_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return f, errInvalidParam("category_id")
		}
		f.CategoryID = &id
	}
	if raw := q.Get("type"); raw != "" {
		t := models.ProductType(raw)
		if t != models.ProductTypeSingle && t != models.ProductTypeCombo {
			return f, errInvalidParam("type")
		}
		f.Type = &t
	}
	f.Search = q.Get("q")
	f.ActiveOnly = q.Get("active") == "true"
	f.Featured = q.Get("featured") == "true"

	switch q.Get("trash") {
	case "":
		f.Trash = store.TrashExclude
	case "with":
		f.Trash = store.TrashInclude
	case "only":
		f.Trash = store.TrashOnly
	default:
		return f, errInvalidParam("trash")
	}

	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return f, errInvalidParam("limit")
		}
		f.Limit = n
	}
	return f, nil
}

type errInvalidParam string

func (e errInvalidParam) Error() string { return "invalid " + string(e) + " parameter" }
