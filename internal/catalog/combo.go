// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package catalog

import (
	"fmt"

	"github.com/google/uuid"

	"ecomcat/internal/models"
)

// MemberEntry is one requested membership entry: a member product id and
// how many of it the bundle contains.
type MemberEntry struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

// Owner identifies the entity whose membership is being validated. The
// same engine serves combo-typed products and standalone combo packs;
// only products can self-reference, so the distinction matters to exactly
// one rule.
type Owner struct {
	ID         uuid.UUID
	IsProduct  bool
	CategoryID *uuid.UUID
}

// memberResolver resolves candidate member ids to live products. The
// product store satisfies it; tests substitute a fixture map.
type memberResolver interface {
	FindLiveByIDs(ids []uuid.UUID) (map[uuid.UUID]*models.Product, error)
}

// ComboEngine validates combo composition. Persistence of the validated
// list is the membership store's job; the engine only decides whether a
// requested composition is legal.
type ComboEngine struct {
	products memberResolver
}

// NewComboEngine returns an engine resolving members through products.
func NewComboEngine(products memberResolver) *ComboEngine {
	return &ComboEngine{products: products}
}

// ValidateMembership checks a requested member list against every
// composition rule and returns the normalized, order-preserving list
// ready to persist. All violations are collected before returning; the
// only short-circuit is an empty list, which has nothing further to
// check.
//
// Rules: at least one member; no duplicate member; quantity >= 1; every
// member resolves to a live product; members are single-type; all member
// categories equal each other and the owner's category when the owner
// has one; a product combo cannot contain itself.
func (e *ComboEngine) ValidateMembership(owner Owner, entries []MemberEntry) ([]MemberEntry, error) {
	if len(entries) == 0 {
		return nil, singleViolation(KindEmptyMembership, "members",
			"a combo must contain at least one member product")
	}

	var vs violations

	seen := make(map[uuid.UUID]bool, len(entries))
	skip := make(map[int]bool)
	var lookup []uuid.UUID
	for i, entry := range entries {
		field := fmt.Sprintf("members[%d]", i)

		if entry.ProductID == uuid.Nil {
			vs.add(KindUnknownProduct, field+".product_id", "product id is required")
			skip[i] = true
			continue
		}
		if seen[entry.ProductID] {
			vs.add(KindDuplicateMember, field+".product_id",
				"product %s appears more than once", entry.ProductID)
			skip[i] = true
			continue
		}
		seen[entry.ProductID] = true
		lookup = append(lookup, entry.ProductID)

		if entry.Quantity < 1 {
			vs.add(KindInvalidQuantity, field+".quantity",
				"quantity must be at least 1, got %d", entry.Quantity)
		}
		if owner.IsProduct && entry.ProductID == owner.ID {
			vs.add(KindSelfReference, field+".product_id",
				"a combo cannot include itself")
		}
	}

	resolved, err := e.products.FindLiveByIDs(lookup)
	if err != nil {
		return nil, fmt.Errorf("resolve members: %w", err)
	}

	// Category consistency: every resolved member must share one category,
	// and it must match the owner's when the owner declares one.
	var memberCategory *uuid.UUID
	categoriesAgree := true

	for i, entry := range entries {
		if skip[i] {
			continue
		}
		field := fmt.Sprintf("members[%d]", i)
		p, ok := resolved[entry.ProductID]
		if !ok {
			vs.add(KindUnknownProduct, field+".product_id",
				"product %s does not exist", entry.ProductID)
			continue
		}
		if p.Type != models.ProductTypeSingle {
			vs.add(KindMemberNotSingle, field+".product_id",
				"product %s is a %s product; only single products can be combo members",
				entry.ProductID, p.Type)
		}
		if p.CategoryID != nil {
			if memberCategory == nil {
				memberCategory = p.CategoryID
			} else if *memberCategory != *p.CategoryID {
				categoriesAgree = false
			}
		}
	}

	if !categoriesAgree {
		vs.add(KindCategoryMismatch, "members",
			"all member products must belong to the same category")
	} else if owner.CategoryID != nil && memberCategory != nil && *owner.CategoryID != *memberCategory {
		vs.add(KindCategoryMismatch, "category_id",
			"member products belong to a different category than the combo")
	}

	if err := vs.err(); err != nil {
		return nil, err
	}

	// Already deduplicated by the checks above; keep request order.
	return append([]MemberEntry(nil), entries...), nil
}
