// Package storage provides key/value blob stores for the ledger.
//
// Three backends share the BlobStore interface: SQLite (default), a
// directory of JSON files, and process memory. Bind turns a store and a
// key into the persistence port the ledger store expects.
package storage

import (
	"context"
	"fmt"
	"strings"
	"unicode"
)

// BlobStore keeps opaque values under string keys.
// Get returns core.ErrBlobNotFound for unknown keys.
type BlobStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Binding is a BlobStore fixed to one key.
type Binding struct {
	store BlobStore
	key   string
}

// Bind returns the persistence port for key in store.
func Bind(store BlobStore, key string) Binding {
	return Binding{store: store, key: key}
}

func (b Binding) Load(ctx context.Context) ([]byte, error) {
	return b.store.Get(ctx, b.key)
}

func (b Binding) Save(ctx context.Context, data []byte) error {
	return b.store.Put(ctx, b.key, data)
}

// Key returns the bound key.
func (b Binding) Key() string { return b.key }

// ValidKey reports whether key can be used by every backend, including
// the file store where it becomes a file name.
func ValidKey(key string) bool {
	if key == "" || len(key) > 128 || strings.Trim(key, ".") == "" {
		return false
	}
	for _, r := range key {
		if r > unicode.MaxASCII {
			return false
		}
		if !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-' || r == '.') {
			return false
		}
	}
	return true
}

func checkKey(key string) error {
	if !ValidKey(key) {
		return &KeyError{Key: key}
	}
	return nil
}

// KeyError reports an unusable blob key.
type KeyError struct {
	Key string
}

func (e *KeyError) Error() string {
	return fmt.Sprintf("invalid blob key %q", e.Key)
}
