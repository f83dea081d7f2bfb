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

// ComboPacks groups the combo pack handlers around the pack service.
type ComboPacks struct {
	service *catalog.ComboPackService
}

// NewComboPacks creates the combo pack handler group.
func NewComboPacks(service *catalog.ComboPackService) *ComboPacks {
	return &ComboPacks{service: service}
}

// List returns combo packs matching the query filters: ?category_id,
// ?q, ?active=true, ?limit. Responses are served from the listing cache
// when warm.
func (h *ComboPacks) List(w http.ResponseWriter, r *http.Request) {
	f, err := packFilter(r)
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
		items = []models.ComboPack{}
	}
	writeJSON(w, http.StatusOK, items)
}

// Get returns one combo pack with members and category attached.
func (h *ComboPacks) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	cp, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cp)
}

// Create adds a new combo pack with its membership in one transaction.
func (h *ComboPacks) Create(w http.ResponseWriter, r *http.Request) {
	var in catalog.ComboPackInput
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

// Update rewrites a combo pack; the payload's member list replaces the
// stored membership.
func (h *ComboPacks) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in catalog.ComboPackInput
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

// Delete removes a combo pack permanently.
func (h *ComboPacks) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

// packFilter builds the store filter from query parameters.
func packFilter(r *http.Request) (store.ComboPackFilter, error) {
	q := r.URL.Query()
	var f store.ComboPackFilter

	if raw := q.Get("category_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return f, errInvalidParam("category_id")
		}
		f.CategoryID = &id
	}
	f.Search = q.Get("q")
	f.ActiveOnly = q.Get("active") == "true"

	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return f, errInvalidParam("limit")
		}
		f.Limit = n
	}
	return f, nil
}
