// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package catalog implements the product-catalog core: entity services,
// the combo composition engine, and the validation rules applied before
// any write commits.
package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ViolationKind is a stable tag identifying one class of validation
// failure. Kinds are part of the API contract and never change meaning.
type ViolationKind string

const (
	KindDuplicateField      ViolationKind = "duplicate_field"
	KindConstraintViolation ViolationKind = "constraint_violation"
	KindEmptyMembership     ViolationKind = "empty_membership"
	KindDuplicateMember     ViolationKind = "duplicate_member"
	KindInvalidQuantity     ViolationKind = "invalid_quantity"
	KindUnknownProduct      ViolationKind = "unknown_product"
	KindMemberNotSingle     ViolationKind = "member_not_single"
	KindCategoryMismatch    ViolationKind = "category_mismatch"
	KindSelfReference       ViolationKind = "self_reference"
	KindRequiredField       ViolationKind = "required_field"
)

// Violation is one validation failure with enough structure for the
// caller to highlight the offending field.
type Violation struct {
	Kind    ViolationKind `json:"kind"`
	Field   string        `json:"field"`
	Message string        `json:"message"`
}

// ValidationError aggregates every violation found in one validation
// pass. Validation runs to completion rather than failing fast, so the
// caller can fix all issues in a single round trip.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	if len(e.Violations) == 0 {
		return "validation failed"
	}
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = fmt.Sprintf("%s (%s): %s", v.Field, v.Kind, v.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Is allows errors.Is matching against a bare *ValidationError.
func (e *ValidationError) Is(target error) bool {
	_, ok := target.(*ValidationError)
	return ok
}

// Has reports whether the error contains a violation of the given kind.
func (e *ValidationError) Has(kind ViolationKind) bool {
	for _, v := range e.Violations {
		if v.Kind == kind {
			return true
		}
	}
	return false
}

// violations is a collecting builder used by the validation passes.
type violations struct {
	list []Violation
}

func (vs *violations) add(kind ViolationKind, field, format string, args ...any) {
	vs.list = append(vs.list, Violation{
		Kind:    kind,
		Field:   field,
		Message: fmt.Sprintf(format, args...),
	})
}

func (vs *violations) empty() bool { return len(vs.list) == 0 }

// err returns a *ValidationError when any violation was collected, or nil.
func (vs *violations) err() error {
	if len(vs.list) == 0 {
		return nil
	}
	return &ValidationError{Violations: vs.list}
}

// NotFoundError is returned when a requested id does not resolve, or
// resolves only among tombstoned rows without explicit inclusion.
type NotFoundError struct {
	Entity string
	ID     uuid.UUID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: id=%s", e.Entity, e.ID)
}

// Is allows errors.Is matching against a bare *NotFoundError.
func (e *NotFoundError) Is(target error) bool {
	_, ok := target.(*NotFoundError)
	return ok
}

// WrongTypeError is returned when an operation requires one product type
// but the target has another, e.g. requesting combo details of a single
// product.
type WrongTypeError struct {
	ID   uuid.UUID
	Want string
	Got  string
}

func (e *WrongTypeError) Error() string {
	return fmt.Sprintf("product %s is %s, operation requires %s", e.ID, e.Got, e.Want)
}

// Is allows errors.Is matching against a bare *WrongTypeError.
func (e *WrongTypeError) Is(target error) bool {
	_, ok := target.(*WrongTypeError)
	return ok
}

// TransactionError wraps a failure of the atomic commit itself: a storage
// fault or a constraint race lost after pre-checks passed. State is
// guaranteed unchanged when this is returned.
type TransactionError struct {
	Op    string
	Cause error
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("%s: transaction failed: %v", e.Op, e.Cause)
}

func (e *TransactionError) Unwrap() error { return e.Cause }

// IsValidation reports whether err is (or wraps) a ValidationError, and
// returns it when so.
func IsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// singleViolation builds a ValidationError holding exactly one violation.
func singleViolation(kind ViolationKind, field, format string, args ...any) error {
	return &ValidationError{Violations: []Violation{{
		Kind:    kind,
		Field:   field,
		Message: fmt.Sprintf(format, args...),
	}}}
}
