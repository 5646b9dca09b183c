// Package service implements the portal's use cases on top of the session
// store, the access guard, the backend client and the notification poller.
package service

import (
	"context"

	"github.com/xiaot623/potholefix/internal/adapter/backend"
	"github.com/xiaot623/potholefix/internal/config"
	"github.com/xiaot623/potholefix/internal/domain"
	"github.com/xiaot623/potholefix/internal/guard"
	"github.com/xiaot623/potholefix/internal/notify"
	"github.com/xiaot623/potholefix/internal/session"
)

type Service struct {
	sessions *session.Store
	guard    *guard.Guard
	backend  *backend.Client
	poller   *notify.Poller
	config   *config.Config
}

func New(sessions *session.Store, guard *guard.Guard, backend *backend.Client, poller *notify.Poller, cfg *config.Config) *Service {
	return &Service{
		sessions: sessions,
		guard:    guard,
		backend:  backend,
		poller:   poller,
		config:   cfg,
	}
}

// Session returns the browser's current session, or the empty session.
func (s *Service) Session(ctx context.Context, browserID string) domain.Session {
	return s.sessions.Get(ctx, browserID)
}

// Authorize reads the browser's session and checks it against a required
// capability.
func (s *Service) Authorize(ctx context.Context, browserID string, requires domain.Capability) (domain.Session, guard.Decision) {
	sess := s.sessions.Get(ctx, browserID)
	return sess, s.guard.Check(ctx, sess, requires)
}

// Badge returns the browser's resolved-report count. ok is false until the
// first successful poll.
func (s *Service) Badge(browserID string) (count int, ok bool) {
	return s.poller.Count(browserID)
}

// EnsurePolling starts the notification task for a citizen session if it is
// not running yet.
func (s *Service) EnsurePolling(browserID string, sess domain.Session) {
	s.poller.Start(browserID, sess)
}

// Shutdown stops every notification task.
func (s *Service) Shutdown() {
	s.poller.StopAll()
}
