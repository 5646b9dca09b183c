// Package notify polls the report service for a citizen's resolved reports
// and keeps the navigation badge count per browser.
package notify

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/xiaot623/potholefix/internal/domain"
)

// DefaultInterval is the time between two polls.
const DefaultInterval = 60 * time.Second

// ReportLister reads the report summaries of a citizen.
type ReportLister interface {
	ListReportSummaries(ctx context.Context, token, userID string) ([]domain.ReportSummary, error)
}

// SessionReader reads the current session of a browser. An error means
// the session could not be read, not that it is absent.
type SessionReader interface {
	Lookup(ctx context.Context, browserID string) (domain.Session, error)
}

// Publisher pushes badge updates to a browser.
type Publisher interface {
	PublishJSON(browserID string, v interface{}) error
}

// Badge is the message pushed to a browser when its count changes.
type Badge struct {
	Type          string `json:"type"`
	ResolvedCount int    `json:"resolved_count"`
}

// Poller runs at most one polling task per browser.
type Poller struct {
	reports   ReportLister
	sessions  SessionReader
	publisher Publisher
	clock     clock.Clock
	interval  time.Duration

	mu     sync.Mutex
	tasks  map[string]*Task
	counts map[string]int
}

// Option configures a Poller.
type Option func(*Poller)

// WithClock replaces the wall clock.
func WithClock(c clock.Clock) Option {
	return func(p *Poller) { p.clock = c }
}

// WithInterval sets the polling interval.
func WithInterval(d time.Duration) Option {
	return func(p *Poller) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithPublisher pushes count changes through pub.
func WithPublisher(pub Publisher) Option {
	return func(p *Poller) { p.publisher = pub }
}

// NewPoller creates a poller.
func NewPoller(reports ReportLister, sessions SessionReader, opts ...Option) *Poller {
	p := &Poller{
		reports:  reports,
		sessions: sessions,
		clock:    clock.New(),
		interval: DefaultInterval,
		tasks:    make(map[string]*Task),
		counts:   make(map[string]int),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Task is the handle of one browser's polling loop.
type Task struct {
	poller    *Poller
	browserID string
	identity  domain.Identity
	cancel    context.CancelFunc
	done      chan struct{}
}

// Stop cancels the task and waits for its goroutine to exit. After Stop
// returns no further request is issued and the browser's count is gone.
func (t *Task) Stop() {
	if t == nil {
		return
	}
	t.poller.retire(t)
	t.cancel()
	<-t.done
}

// Done is closed when the task's goroutine has exited.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Start begins polling for the browser's session. It returns nil when the
// session does not qualify (not a citizen, or no user id). A task already
// running for the same identity is returned as is; one running for another
// identity is stopped first.
func (p *Poller) Start(browserID string, sess domain.Session) *Task {
	if !sess.CanPoll() {
		p.Stop(browserID)
		return nil
	}

	for {
		p.mu.Lock()
		existing, ok := p.tasks[browserID]
		if !ok {
			break
		}
		if existing.identity == sess.Identity() {
			p.mu.Unlock()
			return existing
		}
		p.mu.Unlock()
		existing.Stop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	t := &Task{
		poller:    p,
		browserID: browserID,
		identity:  sess.Identity(),
		cancel:    cancel,
		done:      make(chan struct{}),
	}
	p.tasks[browserID] = t
	p.mu.Unlock()

	go p.run(ctx, t)
	return t
}

// Stop stops the browser's task, if any, and drops its count.
func (p *Poller) Stop(browserID string) {
	p.mu.Lock()
	t := p.tasks[browserID]
	p.mu.Unlock()

	if t != nil {
		t.Stop()
		return
	}
	p.retireCount(browserID)
}

// StopAll stops every task.
func (p *Poller) StopAll() {
	p.mu.Lock()
	tasks := make([]*Task, 0, len(p.tasks))
	for _, t := range p.tasks {
		tasks = append(tasks, t)
	}
	p.mu.Unlock()

	for _, t := range tasks {
		t.Stop()
	}
}

// Count returns the latest resolved count of a browser. ok is false when
// no poll has succeeded since the task started.
func (p *Poller) Count(browserID string) (count int, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	count, ok = p.counts[browserID]
	return count, ok
}

// Running reports whether the browser has a live task.
func (p *Poller) Running(browserID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.tasks[browserID]
	return ok
}

func (p *Poller) run(ctx context.Context, t *Task) {
	defer close(t.done)

	ticker := p.clock.Ticker(p.interval)
	defer ticker.Stop()

	if !p.poll(ctx, t) {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !p.poll(ctx, t) {
				return
			}
		}
	}
}

// poll performs one fetch. It returns false when the task must end.
func (p *Poller) poll(ctx context.Context, t *Task) bool {
	current, err := p.current(ctx, t)
	if err != nil {
		log.Printf("WARN: notification poll for browser %s skipped: %v", t.browserID, err)
		return ctx.Err() == nil
	}
	if !current {
		p.retire(t)
		return false
	}

	summaries, err := p.reports.ListReportSummaries(ctx, t.identity.Token, t.identity.UserID)
	if ctx.Err() != nil {
		return false
	}
	if err != nil {
		log.Printf("WARN: notification poll for browser %s failed: %v", t.browserID, err)
		return true
	}

	current, err = p.current(ctx, t)
	if err != nil {
		log.Printf("WARN: discarding poll result for browser %s: %v", t.browserID, err)
		return ctx.Err() == nil
	}
	if !current {
		log.Printf("WARN: discarding poll result for browser %s: session changed", t.browserID)
		p.retire(t)
		return false
	}

	p.record(t, domain.CountResolved(summaries))
	return true
}

// current reports whether the browser's session still has the identity the
// task was started for. A failed read is returned as an error and says
// nothing about the identity.
func (p *Poller) current(ctx context.Context, t *Task) (bool, error) {
	sess, err := p.sessions.Lookup(ctx, t.browserID)
	if err != nil {
		return false, err
	}
	return sess.Identity() == t.identity, nil
}

func (p *Poller) record(t *Task, count int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.tasks[t.browserID] != t {
		return
	}
	prev, had := p.counts[t.browserID]
	p.counts[t.browserID] = count
	if !had || prev != count {
		p.publish(t.browserID, count)
	}
}

// retire unregisters t if it is still the browser's task.
func (p *Poller) retire(t *Task) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.tasks[t.browserID] != t {
		return
	}
	delete(p.tasks, t.browserID)
	if _, had := p.counts[t.browserID]; had {
		delete(p.counts, t.browserID)
		p.publish(t.browserID, 0)
	}
}

func (p *Poller) retireCount(browserID string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, had := p.counts[browserID]; had {
		delete(p.counts, browserID)
		p.publish(browserID, 0)
	}
}

// publish must be called with p.mu held.
func (p *Poller) publish(browserID string, count int) {
	if p.publisher == nil {
		return
	}
	if err := p.publisher.PublishJSON(browserID, Badge{Type: "badge", ResolvedCount: count}); err != nil {
		log.Printf("WARN: failed to publish badge for browser %s: %v", browserID, err)
	}
}
