// Package store persists browser session entries.
package store

import (
	"context"
	"time"
)

// Session entry keys. A stored session is exactly these four entries.
const (
	KeyToken  = "token"
	KeyRole   = "role"
	KeyUserID = "user_id"
	KeyName   = "name"
)

// EntryKeys lists the keys of a stored session.
var EntryKeys = []string{KeyToken, KeyRole, KeyUserID, KeyName}

// Store defines the durable key-value storage behind browser sessions.
type Store interface {
	// ReplaceEntries atomically replaces every entry of a browser.
	ReplaceEntries(ctx context.Context, browserID string, entries map[string]string) error
	// DeleteEntries atomically removes every entry of a browser.
	DeleteEntries(ctx context.Context, browserID string) error
	// GetEntries returns the entries of a browser; empty when none.
	GetEntries(ctx context.Context, browserID string) (map[string]string, error)
	// DeleteExpired removes entries last written before the cutoff.
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)

	// Lifecycle
	Close() error
}
