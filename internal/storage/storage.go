// Package storage holds the locally persisted key-value state of the service:
// per-user collections, sessions and preferences.
package storage

import (
	"context"
	"strings"
)

// KV defines the persisted key-value operations used by the service
type KV interface {
	// Get returns the stored bytes and whether the key exists
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// DefaultPrefix is the application namespace for persisted keys
const DefaultPrefix = "wavy"

// Namespace builds application-prefixed keys
type Namespace struct {
	prefix string
}

// NewNamespace creates a namespace, falling back to DefaultPrefix
func NewNamespace(prefix string) Namespace {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return Namespace{prefix: prefix}
}

// Key returns <prefix>_<name>
func (n Namespace) Key(name string) string {
	return n.prefix + "_" + name
}

// UserKey returns <prefix>_<name>_<userID>
func (n Namespace) UserKey(name, userID string) string {
	return n.Key(name) + "_" + userID
}

// Prefix returns the namespace prefix
func (n Namespace) Prefix() string {
	return n.prefix
}
