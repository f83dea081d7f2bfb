// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// catalog.go provides a Valkey-backed response cache for catalog reads.
// Listing keys are tracked in a registry set per entity kind, so a write
// invalidates exactly the listings that exist. A wildcard DEL has no
// pattern semantics in Valkey, which is why the registry exists.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	productKeyPrefix   = "product:"
	comboPackKeyPrefix = "combo_pack:"

	productListingSet   = "listings:products"
	comboPackListingSet = "listings:combo_packs"

	// DefaultTTL bounds how long a cached response stays valid when the
	// caller does not configure one.
	DefaultTTL = 30 * time.Minute
)

// Catalog caches serialized catalog responses in Valkey. Reads never
// depend on it for correctness; a miss simply falls through to the
// database.
type Catalog struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCatalog creates a catalog cache backed by the given Valkey client.
func NewCatalog(client *redis.Client, ttl time.Duration) *Catalog {
	if ttl == 0 {
		ttl = DefaultTTL
	}
	return &Catalog{client: client, ttl: ttl}
}

// ProductKey returns the detail cache key for a product.
func ProductKey(id uuid.UUID) string {
	return productKeyPrefix + id.String()
}

// ComboPackKey returns the detail cache key for a combo pack.
func ComboPackKey(id uuid.UUID) string {
	return comboPackKeyPrefix + id.String()
}

// ListingKey builds a deterministic cache key for a filtered listing.
// Identical filters always produce the same key.
func ListingKey(kind string, parts ...string) string {
	return fmt.Sprintf("listings:%s:%s", kind, strings.Join(parts, ":"))
}

// Get retrieves a cached payload. Returns false on miss or error.
func (c *Catalog) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("cache get error", "key", key, "error", err)
		return nil, false
	}
	return val, true
}

// Set stores a payload under key with the configured TTL.
func (c *Catalog) Set(ctx context.Context, key string, payload []byte) {
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		slog.Warn("cache set error", "key", key, "error", err)
	}
}

// SetListing stores a listing payload and records its key in the
// registry for the entity kind, so invalidation can find it later.
func (c *Catalog) SetListing(ctx context.Context, registry, key string, payload []byte) {
	c.Set(ctx, key, payload)
	if err := c.client.SAdd(ctx, registry, key).Err(); err != nil {
		slog.Warn("cache registry add error", "registry", registry, "key", key, "error", err)
	}
}

// SetProductListing stores a product listing payload.
func (c *Catalog) SetProductListing(ctx context.Context, key string, payload []byte) {
	c.SetListing(ctx, productListingSet, key, payload)
}

// SetComboPackListing stores a combo pack listing payload.
func (c *Catalog) SetComboPackListing(ctx context.Context, key string, payload []byte) {
	c.SetListing(ctx, comboPackListingSet, key, payload)
}

// InvalidateProduct drops the cached detail of one product.
func (c *Catalog) InvalidateProduct(ctx context.Context, id uuid.UUID) {
	c.del(ctx, ProductKey(id))
}

// InvalidateComboPack drops the cached detail of one combo pack.
func (c *Catalog) InvalidateComboPack(ctx context.Context, id uuid.UUID) {
	c.del(ctx, ComboPackKey(id))
}

// InvalidateProductListings drops every registered product listing.
func (c *Catalog) InvalidateProductListings(ctx context.Context) {
	c.invalidateRegistry(ctx, productListingSet)
}

// InvalidateComboPackListings drops every registered combo pack listing.
func (c *Catalog) InvalidateComboPackListings(ctx context.Context) {
	c.invalidateRegistry(ctx, comboPackListingSet)
}

// invalidateRegistry deletes all keys recorded in a registry set, then
// the registry itself.
func (c *Catalog) invalidateRegistry(ctx context.Context, registry string) {
	keys, err := c.client.SMembers(ctx, registry).Result()
	if err != nil {
		slog.Warn("cache registry read error", "registry", registry, "error", err)
		return
	}
	if len(keys) > 0 {
		if err := c.client.Del(ctx, keys...).Err(); err != nil {
			slog.Warn("cache bulk delete error", "registry", registry, "error", err)
		}
	}
	if err := c.client.Del(ctx, registry).Err(); err != nil {
		slog.Warn("cache registry delete error", "registry", registry, "error", err)
	}
	slog.Debug("cache listings invalidated", "registry", registry, "keys", len(keys))
}

func (c *Catalog) del(ctx context.Context, key string) {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		slog.Warn("cache invalidate error", "key", key, "error", err)
	}
	slog.Debug("cache invalidated", "key", key)
}
