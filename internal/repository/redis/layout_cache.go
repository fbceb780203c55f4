package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Rrens/deskmap/internal/domain"
	"github.com/google/uuid"
)

const (
	layoutCachePrefix = "layout:"
	layoutCacheTTL    = 10 * time.Minute
)

// LayoutCache keeps the rendered layout payload hot for viewer fetches.
// Saves and syncs invalidate it; a miss just falls back to the database.
type LayoutCache struct {
	client *Client
}

// NewLayoutCache creates a new layout cache
func NewLayoutCache(client *Client) *LayoutCache {
	return &LayoutCache{client: client}
}

// Get retrieves the cached layout for a map. A miss returns (nil, nil).
func (c *LayoutCache) Get(ctx context.Context, mapID uuid.UUID) (*domain.Layout, error) {
	key := layoutCachePrefix + mapID.String()

	data, err := c.client.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return nil, nil // Cache miss
	}

	var layout domain.Layout
	if err := json.Unmarshal(data, &layout); err != nil {
		return nil, fmt.Errorf("failed to unmarshal layout: %w", err)
	}

	return &layout, nil
}

// Set caches the layout for a map
func (c *LayoutCache) Set(ctx context.Context, mapID uuid.UUID, layout *domain.Layout) error {
	key := layoutCachePrefix + mapID.String()

	data, err := json.Marshal(layout)
	if err != nil {
		return fmt.Errorf("failed to marshal layout: %w", err)
	}

	return c.client.rdb.Set(ctx, key, data, layoutCacheTTL).Err()
}

// Invalidate removes the cached layout for a map
func (c *LayoutCache) Invalidate(ctx context.Context, mapID uuid.UUID) error {
	return c.client.rdb.Del(ctx, layoutCachePrefix+mapID.String()).Err()
}
