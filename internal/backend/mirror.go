package backend

import (
	"context"
	"fmt"

	"wavy/pkg/models"
)

// Collection names understood by Mirror
const (
	CollectionFavorites        = "favorites"
	CollectionLibrary          = "library"
	CollectionContinueWatching = "continue-watching"
)

// CollectionMirror replays local collection mutations against the backend
type CollectionMirror struct {
	client *Client
	kind   string
}

// Mirror returns the remote adapter for a collection, or nil when the client
// is disabled or the collection has no remote counterpart.
func (c *Client) Mirror(kind string) *CollectionMirror {
	if c == nil {
		return nil
	}
	switch kind {
	case CollectionFavorites, CollectionLibrary, CollectionContinueWatching:
		return &CollectionMirror{client: c, kind: kind}
	default:
		return nil
	}
}

// Add mirrors an add or, for continue-watching, an upsert
func (m *CollectionMirror) Add(ctx context.Context, token, ownerID string, entry models.CollectionEntry) error {
	switch m.kind {
	case CollectionFavorites:
		return m.client.AddFavorite(ctx, token, ownerID, entry)
	case CollectionLibrary:
		return m.client.AddToLibrary(ctx, token, entry)
	case CollectionContinueWatching:
		return m.client.UpdateProgress(ctx, token, ownerID, entry)
	}
	return fmt.Errorf("unknown collection %q", m.kind)
}

// Remove mirrors a removal. Continue-watching rows are never deleted remotely.
func (m *CollectionMirror) Remove(ctx context.Context, token, ownerID string, itemID int64) error {
	switch m.kind {
	case CollectionFavorites:
		return m.client.RemoveFavorite(ctx, token, ownerID, itemID)
	case CollectionLibrary:
		return m.client.RemoveFromLibrary(ctx, token, itemID)
	case CollectionContinueWatching:
		return nil
	}
	return fmt.Errorf("unknown collection %q", m.kind)
}

// List fetches the remote copy of the collection. Continue-watching rows
// cannot be deleted remotely, so that copy is never read back.
func (m *CollectionMirror) List(ctx context.Context, token, ownerID string) ([]models.CollectionEntry, error) {
	switch m.kind {
	case CollectionFavorites:
		return m.client.Favorites(ctx, token, ownerID)
	case CollectionLibrary:
		return m.client.Library(ctx, token, ownerID)
	}
	return nil, fmt.Errorf("collection %q has no remote listing", m.kind)
}
