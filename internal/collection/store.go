// Package collection implements the per-user collections (favorites, library
// and continue-watching). Local persisted state is the source of truth; the
// backend copy is a best-effort mirror.
package collection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"wavy/internal/auth"
	"wavy/internal/events"
	"wavy/internal/metrics"
	"wavy/internal/storage"
	"wavy/pkg/models"
)

var (
	// ErrAlreadyExists is returned when adding an item that is already present
	ErrAlreadyExists = errors.New("item already in collection")
	// ErrNotFound is returned when removing an item that is not present
	ErrNotFound = errors.New("item not in collection")
	// ErrNotAuthenticated is returned for mutations without an owner
	ErrNotAuthenticated = auth.ErrNotAuthenticated
)

// Kind names a collection
type Kind string

const (
	Favorites        Kind = "favorites"
	Library          Kind = "library"
	ContinueWatching Kind = "continue-watching"
)

// Kinds lists every collection kind
func Kinds() []Kind {
	return []Kind{Favorites, Library, ContinueWatching}
}

// ParseKind validates a collection name
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds() {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown collection %q", s)
}

// Upserts reports whether add overwrites an existing entry
func (k Kind) Upserts() bool {
	return k == ContinueWatching
}

// Mirror replays mutations against a remote copy
type Mirror interface {
	Add(ctx context.Context, token, ownerID string, entry models.CollectionEntry) error
	Remove(ctx context.Context, token, ownerID string, itemID int64) error
}

// Lister reads the remote copy of a collection
type Lister interface {
	List(ctx context.Context, token, ownerID string) ([]models.CollectionEntry, error)
}

// Store holds one collection kind for every user
type Store struct {
	kind      Kind
	kv        storage.KV
	ns        storage.Namespace
	mirror    Mirror
	publisher events.Publisher
	logger    *zap.Logger
	now       func() time.Time

	mu sync.Mutex
}

// Option configures a Store
type Option func(*Store)

// WithMirror enables best-effort remote mirroring
func WithMirror(m Mirror) Option {
	return func(s *Store) {
		s.mirror = m
	}
}

// WithPublisher sets where change events go
func WithPublisher(p events.Publisher) Option {
	return func(s *Store) {
		s.publisher = p
	}
}

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore creates a collection store for kind
func NewStore(kind Kind, kv storage.KV, ns storage.Namespace, logger *zap.Logger, opts ...Option) *Store {
	s := &Store{
		kind:   kind,
		kv:     kv,
		ns:     ns,
		logger: logger.With(zap.String("collection", string(kind))),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Kind returns the collection kind
func (s *Store) Kind() Kind {
	return s.kind
}

func (s *Store) key(ownerID string) string {
	return s.ns.UserKey(string(s.kind), ownerID)
}

// List returns the owner's entries in insertion order. With a session and a
// mirror that can list, the remote copy is read first and the local copy is
// the fallback.
func (s *Store) List(ctx context.Context, ownerID string) ([]models.CollectionEntry, error) {
	if ownerID == "" {
		return []models.CollectionEntry{}, nil
	}
	if entries, ok := s.remoteList(ctx, ownerID); ok {
		return entries, nil
	}
	return s.load(ctx, ownerID)
}

// Contains reports whether itemID is in the owner's collection
func (s *Store) Contains(ctx context.Context, ownerID string, itemID int64) (bool, error) {
	_, ok, err := s.Get(ctx, ownerID, itemID)
	return ok, err
}

// Get returns the entry for itemID from the local copy
func (s *Store) Get(ctx context.Context, ownerID string, itemID int64) (*models.CollectionEntry, bool, error) {
	if ownerID == "" {
		return nil, false, nil
	}
	entries, err := s.load(ctx, ownerID)
	if err != nil {
		return nil, false, err
	}
	if i := indexOf(entries, itemID); i >= 0 {
		return &entries[i], true, nil
	}
	return nil, false, nil
}

// Add stores entry for ownerID. Continue-watching overwrites an existing
// entry; the other kinds return ErrAlreadyExists.
func (s *Store) Add(ctx context.Context, ownerID string, entry models.CollectionEntry) (*models.CollectionEntry, error) {
	if ownerID == "" {
		return nil, ErrNotAuthenticated
	}
	if entry.ItemID == 0 {
		return nil, errors.New("item id is required")
	}

	s.mu.Lock()
	entries, err := s.load(ctx, ownerID)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}

	now := s.now().UTC()
	entry.OwnerID = ownerID
	entry.UpdatedAt = now
	action := events.ActionAdd

	if i := indexOf(entries, entry.ItemID); i >= 0 {
		if !s.kind.Upserts() {
			s.mu.Unlock()
			return nil, ErrAlreadyExists
		}
		entry.AddedAt = entries[i].AddedAt
		entries[i] = entry
		action = events.ActionUpdate
	} else {
		entry.AddedAt = now
		entries = append(entries, entry)
	}

	err = s.save(ctx, ownerID, entries)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	s.mirrorAdd(ctx, ownerID, entry)
	s.publish(action, ownerID, entry.ItemID, 1)
	return &entry, nil
}

// Remove deletes itemID from the owner's collection
func (s *Store) Remove(ctx context.Context, ownerID string, itemID int64) error {
	if ownerID == "" {
		return ErrNotAuthenticated
	}

	s.mu.Lock()
	entries, err := s.load(ctx, ownerID)
	if err != nil {
		s.mu.Unlock()
		return err
	}

	i := indexOf(entries, itemID)
	if i < 0 {
		s.mu.Unlock()
		return ErrNotFound
	}
	entries = append(entries[:i], entries[i+1:]...)

	err = s.save(ctx, ownerID, entries)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.mirrorRemove(ctx, ownerID, itemID)
	s.publish(events.ActionRemove, ownerID, itemID, 1)
	return nil
}

// Clear empties the owner's collection and returns how many entries were
// removed. Each removed entry is then mirrored as a removal.
func (s *Store) Clear(ctx context.Context, ownerID string) (int, error) {
	if ownerID == "" {
		return 0, ErrNotAuthenticated
	}

	s.mu.Lock()
	entries, err := s.load(ctx, ownerID)
	if err == nil && len(entries) > 0 {
		err = s.kv.Delete(ctx, s.key(ownerID))
		if err != nil {
			err = fmt.Errorf("failed to clear %s: %w", s.kind, err)
		}
	}
	s.mu.Unlock()
	if err != nil {
		return 0, err
	}

	for _, e := range entries {
		s.mirrorRemove(ctx, ownerID, e.ItemID)
	}
	if len(entries) > 0 {
		s.publish(events.ActionClear, ownerID, 0, len(entries))
	}
	return len(entries), nil
}

func (s *Store) load(ctx context.Context, ownerID string) ([]models.CollectionEntry, error) {
	data, ok, err := s.kv.Get(ctx, s.key(ownerID))
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", s.kind, err)
	}
	entries := []models.CollectionEntry{}
	if !ok {
		return entries, nil
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		// unreadable state is treated as empty, like a fresh install
		s.logger.Warn("discarding corrupt collection",
			zap.String("owner_id", ownerID),
			zap.Error(err))
		return []models.CollectionEntry{}, nil
	}
	return entries, nil
}

func (s *Store) save(ctx context.Context, ownerID string, entries []models.CollectionEntry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", s.kind, err)
	}
	if err := s.kv.Set(ctx, s.key(ownerID), data); err != nil {
		return fmt.Errorf("failed to save %s: %w", s.kind, err)
	}
	return nil
}

func (s *Store) mirrorAdd(ctx context.Context, ownerID string, entry models.CollectionEntry) {
	token := auth.Token(ctx)
	if s.mirror == nil || token == "" {
		return
	}
	if err := s.mirror.Add(ctx, token, ownerID, entry); err != nil {
		s.syncFailed("add", ownerID, entry.ItemID, err)
	}
}

func (s *Store) mirrorRemove(ctx context.Context, ownerID string, itemID int64) {
	token := auth.Token(ctx)
	if s.mirror == nil || token == "" {
		return
	}
	if err := s.mirror.Remove(ctx, token, ownerID, itemID); err != nil {
		s.syncFailed("remove", ownerID, itemID, err)
	}
}

// remoteList reads the mirror's copy. Kinds that upsert are never read back
// because their remote rows outlive local removals.
func (s *Store) remoteList(ctx context.Context, ownerID string) ([]models.CollectionEntry, bool) {
	lister, ok := s.mirror.(Lister)
	token := auth.Token(ctx)
	if !ok || token == "" || s.kind.Upserts() {
		return nil, false
	}
	entries, err := lister.List(ctx, token, ownerID)
	if err != nil {
		s.syncFailed("list", ownerID, 0, err)
		return nil, false
	}
	if entries == nil {
		entries = []models.CollectionEntry{}
	}
	return entries, true
}

func (s *Store) syncFailed(op, ownerID string, itemID int64, err error) {
	metrics.RemoteSyncFailures.WithLabelValues(string(s.kind)).Inc()
	s.logger.Warn("remote sync failed, keeping local state",
		zap.String("op", op),
		zap.String("owner_id", ownerID),
		zap.Int64("item_id", itemID),
		zap.Error(err))
}

func (s *Store) publish(action events.Action, ownerID string, itemID int64, count int) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(events.Event{
		Collection: string(s.kind),
		Action:     action,
		OwnerID:    ownerID,
		ItemID:     itemID,
		Count:      count,
		At:         s.now(),
	})
}

func indexOf(entries []models.CollectionEntry, itemID int64) int {
	for i := range entries {
		if entries[i].ItemID == itemID {
			return i
		}
	}
	return -1
}
