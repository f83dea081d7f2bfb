// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ComboPack is a standalone bundle entity, distinct from combo-typed
// products. It shares the membership model: single products joined through
// an association table with a quantity pivot.
type ComboPack struct {
	ID            uuid.UUID        `json:"id"`
	ComboCode     string           `json:"combo_code"`
	CategoryID    *uuid.UUID       `json:"category_id,omitempty"`
	Name          string           `json:"name"`
	Slug          string           `json:"slug"`
	Description   string           `json:"description"`
	Price         decimal.Decimal  `json:"price"`
	DiscountPrice *decimal.Decimal `json:"discount_price,omitempty"`
	Images        []string         `json:"images"`
	IsActive      bool             `json:"is_active"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`

	// Virtual fields populated by store methods.
	Members  []ComboMember `json:"members,omitempty"`
	Category *Category     `json:"category,omitempty"`
}

// DiscountedPrice returns the effective selling price of the pack.
func (cp *ComboPack) DiscountedPrice() decimal.Decimal {
	if cp.DiscountPrice != nil {
		return *cp.DiscountPrice
	}
	return cp.Price
}
