package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Logical keys under which the application mirrors its collections.
const (
	KeyProfile       = "profile"
	KeyArticles      = "articles"
	KeyPresets       = "presets"
	KeyTemplates     = "templates"
	KeyActiveSession = "session.active"
	KeySessions      = "sessions"
)

// Store is a durable key-value store addressed by string keys holding JSON documents.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)
}

// GetJSON decodes the value stored under key into dst. It reports false without
// error when the key is absent.
func GetJSON(ctx context.Context, store Store, key string, dst any) (bool, error) {
	if store == nil {
		return false, nil
	}
	raw, err := store.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return true, fmt.Errorf("persistence: decode %s: %w", key, err)
	}
	return true, nil
}

// PutJSON encodes value and writes it under key.
func PutJSON(ctx context.Context, store Store, key string, value any) error {
	if store == nil {
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("persistence: encode %s: %w", key, err)
	}
	return store.Put(ctx, key, raw)
}
