package service

import (
	"context"
	"log"
	"time"
)

const sessionSweepInterval = time.Hour

// RunSessionSweeper removes sessions older than the configured TTL until
// ctx is done.
func (s *Service) RunSessionSweeper(ctx context.Context) {
	ticker := time.NewTicker(sessionSweepInterval)
	defer ticker.Stop()

	s.sweepExpiredSessions(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweepExpiredSessions(ctx)
		}
	}
}

func (s *Service) sweepExpiredSessions(ctx context.Context) {
	if s.config == nil || s.config.SessionTTL <= 0 {
		return
	}

	sweepCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	removed, err := s.sessions.SweepExpired(sweepCtx, time.Now().Add(-s.config.SessionTTL))
	if err != nil {
		log.Printf("WARN: session sweep failed: %v", err)
		return
	}
	if removed > 0 {
		log.Printf("Expired %d session entries", removed)
	}
}
