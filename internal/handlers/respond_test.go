// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"ecomcat/internal/catalog"
)

func TestWriteErrorValidation(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, &catalog.ValidationError{Violations: []catalog.Violation{
		{Kind: catalog.KindRequiredField, Field: "name", Message: "name is required"},
		{Kind: catalog.KindInvalidQuantity, Field: "members[0].quantity", Message: "quantity must be at least 1, got 0"},
	}})

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	var body errorBody
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(body.Violations) != 2 {
		t.Fatalf("violations = %d, want 2", len(body.Violations))
	}
	if body.Violations[0].Kind != catalog.KindRequiredField {
		t.Errorf("first violation kind = %q", body.Violations[0].Kind)
	}
}

func TestWriteErrorNotFound(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, &catalog.NotFoundError{Entity: "product", ID: uuid.New()})
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestWriteErrorWrongType(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, &catalog.WrongTypeError{ID: uuid.New(), Want: "combo", Got: "single"})
	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rec.Code)
	}
}

func TestWriteErrorInternal(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, errors.New("pq: connection refused"))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	// Internals must not leak to the client.
	if strings.Contains(rec.Body.String(), "connection refused") {
		t.Errorf("response leaked internals: %s", rec.Body.String())
	}
}

func TestWriteErrorWrappedValidation(t *testing.T) {
	rec := httptest.NewRecorder()
	inner := &catalog.ValidationError{Violations: []catalog.Violation{
		{Kind: catalog.KindDuplicateField, Field: "slug"},
	}}
	writeError(rec, &catalog.TransactionError{Op: "create product", Cause: inner})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422 for wrapped validation error", rec.Code)
	}
}

func TestDecodeRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"bogus": 1}`))
	var in catalog.ProductInput
	if err := decode(req, &in); err == nil {
		t.Error("unknown fields should be rejected")
	}
}

func TestPathID(t *testing.T) {
	call := func(raw string) (uuid.UUID, bool, int) {
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("id", raw)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
		rec := httptest.NewRecorder()
		id, ok := pathID(rec, req)
		return id, ok, rec.Code
	}

	want := uuid.New()
	id, ok, _ := call(want.String())
	if !ok || id != want {
		t.Errorf("valid id: ok=%t id=%s", ok, id)
	}

	_, ok, code := call("not-a-uuid")
	if ok {
		t.Error("invalid id should not parse")
	}
	if code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", code)
	}
}

func TestStoreErrorPassthrough(t *testing.T) {
	plain := errors.New("boom")
	if got := storeError(plain); got != plain {
		t.Errorf("non-unique errors must pass through unchanged, got %v", got)
	}
}
