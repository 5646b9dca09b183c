// Package session holds the authenticated identity of each browser.
//
// Only the login and logout operations write through Set and Clear; every
// other component reads with Get.
package session

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/xiaot623/potholefix/internal/domain"
	"github.com/xiaot623/potholefix/internal/repository"
)

// Store projects domain sessions onto durable key-value entries.
type Store struct {
	backend store.Store
}

// NewStore creates a session store over a backend.
func NewStore(backend store.Store) *Store {
	return &Store{backend: backend}
}

// Set replaces the whole session of a browser.
func (s *Store) Set(ctx context.Context, browserID string, sess domain.Session) error {
	if sess.IsEmpty() {
		return s.Clear(ctx, browserID)
	}
	return s.backend.ReplaceEntries(ctx, browserID, map[string]string{
		store.KeyToken:  sess.Token,
		store.KeyRole:   sess.Role.String(),
		store.KeyUserID: sess.UserID,
		store.KeyName:   sess.DisplayName,
	})
}

// Clear removes every session field of a browser.
func (s *Store) Clear(ctx context.Context, browserID string) error {
	return s.backend.DeleteEntries(ctx, browserID)
}

// Get returns the session of a browser, or the empty session. Read
// failures are logged and reported as the empty session.
func (s *Store) Get(ctx context.Context, browserID string) domain.Session {
	sess, err := s.Lookup(ctx, browserID)
	if err != nil {
		log.Printf("WARN: failed to read session %s: %v", browserID, err)
		return domain.Session{}
	}
	return sess
}

// Lookup returns the session of a browser. A record missing any of its
// entries is treated as empty; only backend failures return an error.
func (s *Store) Lookup(ctx context.Context, browserID string) (domain.Session, error) {
	if browserID == "" {
		return domain.Session{}, nil
	}

	entries, err := s.backend.GetEntries(ctx, browserID)
	if err != nil {
		return domain.Session{}, fmt.Errorf("failed to read session entries: %w", err)
	}

	for _, key := range store.EntryKeys {
		if _, ok := entries[key]; !ok {
			return domain.Session{}, nil
		}
	}
	if entries[store.KeyToken] == "" {
		return domain.Session{}, nil
	}

	role, _ := domain.ParseRole(entries[store.KeyRole])
	return domain.Session{
		Token:       entries[store.KeyToken],
		Role:        role,
		UserID:      entries[store.KeyUserID],
		DisplayName: entries[store.KeyName],
	}, nil
}

// SweepExpired drops sessions written before the cutoff. A session is
// written once at login, so this bounds its lifetime from login.
func (s *Store) SweepExpired(ctx context.Context, before time.Time) (int64, error) {
	return s.backend.DeleteExpired(ctx, before)
}
