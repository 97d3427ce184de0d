package collection

import (
	"go.uber.org/zap"

	"wavy/internal/events"
	"wavy/internal/storage"
)

// MirrorFunc returns the remote mirror for a kind, or nil
type MirrorFunc func(kind Kind) Mirror

// Set holds one store per collection kind
type Set struct {
	stores map[Kind]*Store
}

// NewSet creates a store for every kind sharing kv, namespace and publisher
func NewSet(kv storage.KV, ns storage.Namespace, publisher events.Publisher, mirrors MirrorFunc, logger *zap.Logger) *Set {
	set := &Set{stores: make(map[Kind]*Store, len(Kinds()))}
	for _, kind := range Kinds() {
		opts := []Option{WithPublisher(publisher)}
		if mirrors != nil {
			if m := mirrors(kind); m != nil {
				opts = append(opts, WithMirror(m))
			}
		}
		set.stores[kind] = NewStore(kind, kv, ns, logger, opts...)
	}
	return set
}

// Store returns the store for kind
func (s *Set) Store(kind Kind) (*Store, bool) {
	store, ok := s.stores[kind]
	return store, ok
}
