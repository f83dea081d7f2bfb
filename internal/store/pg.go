// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package store contains all database access for the catalog: categories,
// products, combo packs, and the membership association tables.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// dbtx is satisfied by both *sql.DB and *sql.Tx, letting write methods run
// standalone or inside a caller-owned transaction.
type dbtx interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// uniqueConstraintFields maps unique index names to the API field they
// guard. Used to translate storage-level conflicts (a race lost after the
// application pre-check passed) into field-specific validation errors.
var uniqueConstraintFields = map[string]string{
	"products_product_code_live": "product_code",
	"products_slug_live":         "slug",
	"products_sku_live":          "sku",
	"categories_slug_key":        "slug",
	"combo_packs_combo_code_key": "combo_code",
	"combo_packs_slug_key":       "slug",
}

// UniqueViolation reports whether err is a PostgreSQL unique-constraint
// violation, returning the API field name of the violated constraint.
func UniqueViolation(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return "", false
	}
	if field, ok := uniqueConstraintFields[pgErr.ConstraintName]; ok {
		return field, true
	}
	return pgErr.ConstraintName, true
}

// jsonbValue marshals v for insertion into a jsonb column. A nil slice is
// stored as an empty JSON array, never SQL NULL.
func jsonbValue(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal jsonb: %w", err)
	}
	if string(b) == "null" {
		return []byte("[]"), nil
	}
	return b, nil
}

// jsonbScan unmarshals a jsonb column into dst, accepting NULL as empty.
func jsonbScan(raw []byte, dst any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("unmarshal jsonb: %w", err)
	}
	return nil
}
