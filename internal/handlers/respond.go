// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the HTTP handlers for the catalog API.
// Handlers are grouped by entity and receive their dependencies through
// the handler struct. All responses are JSON.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"ecomcat/internal/catalog"
	"ecomcat/internal/store"
)

// errorBody is the JSON shape of every non-2xx response.
type errorBody struct {
	Error      string              `json:"error"`
	Violations []catalog.Violation `json:"violations,omitempty"`
}

// writeJSON writes v with the given status. Encoding failures are logged;
// the status line is already on the wire by then.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response failed", "error", err)
	}
}

// writeError maps domain errors to HTTP statuses: validation failures are
// 422 with the violation list, missing entities 404, type mismatches 409,
// everything else a logged 500 with no internals leaked.
func writeError(w http.ResponseWriter, err error) {
	var ve *catalog.ValidationError
	if errors.As(err, &ve) {
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{
			Error:      "validation failed",
			Violations: ve.Violations,
		})
		return
	}
	var nf *catalog.NotFoundError
	if errors.As(err, &nf) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: nf.Error()})
		return
	}
	var wt *catalog.WrongTypeError
	if errors.As(err, &wt) {
		writeJSON(w, http.StatusConflict, errorBody{Error: wt.Error()})
		return
	}

	slog.Error("request failed", "error", err)
	writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal server error"})
}

// decode parses the request body into dst, limited to 1 MiB.
func decode(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, 1<<20)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// storeError translates raw storage failures from direct store calls: a
// unique violation becomes a field-specific validation error, matching
// what the catalog services produce.
func storeError(err error) error {
	if field, ok := store.UniqueViolation(err); ok {
		return &catalog.ValidationError{Violations: []catalog.Violation{{
			Kind: catalog.KindDuplicateField, Field: field,
			Message: field + " is already in use",
		}}}
	}
	return err
}

// badRequest writes a 400 with the given message.
func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorBody{Error: msg})
}

// pathID parses the {id} route parameter. Reports false after writing a
// 400 when it is not a UUID.
func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}
