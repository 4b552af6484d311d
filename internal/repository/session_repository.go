package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/locvowork/supplier_fte_dashboard/internal/domain"
	"github.com/locvowork/supplier_fte_dashboard/internal/logger"
)

// SessionRepository keeps sessions in process memory. Sessions idle for
// longer than idleTimeout are evicted by Sweep.
type SessionRepository struct {
	mu          sync.Mutex
	sessions    map[string]domain.Session
	idleTimeout time.Duration
	now         func() time.Time
}

// NewSessionRepository creates an empty store. A zero idleTimeout keeps
// sessions until they are deleted.
func NewSessionRepository(idleTimeout time.Duration) *SessionRepository {
	return &SessionRepository{
		sessions:    make(map[string]domain.Session),
		idleTimeout: idleTimeout,
		now:         time.Now,
	}
}

var _ domain.SessionRepository = (*SessionRepository)(nil)

func (r *SessionRepository) Create(ctx context.Context) (domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	sess := domain.Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		LastSeen:  now,
	}
	r.sessions[sess.ID] = sess
	return sess, nil
}

func (r *SessionRepository) Get(ctx context.Context, id string) (domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.lookup(id)
	if !ok {
		return domain.Session{}, fmt.Errorf("%w: %s", domain.ErrNoSession, id)
	}
	sess.LastSeen = r.now()
	r.sessions[id] = sess
	return sess, nil
}

func (r *SessionRepository) Update(ctx context.Context, id string, fn func(*domain.Session) error) (domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.lookup(id)
	if !ok {
		return domain.Session{}, fmt.Errorf("%w: %s", domain.ErrNoSession, id)
	}
	if err := fn(&sess); err != nil {
		return domain.Session{}, err
	}
	sess.ID = id
	sess.LastSeen = r.now()
	r.sessions[id] = sess
	return sess, nil
}

func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[id]; !ok {
		return fmt.Errorf("%w: %s", domain.ErrNoSession, id)
	}
	delete(r.sessions, id)
	return nil
}

// Len returns the number of live sessions.
func (r *SessionRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// lookup treats an expired session as absent. Callers hold mu.
func (r *SessionRepository) lookup(id string) (domain.Session, bool) {
	sess, ok := r.sessions[id]
	if !ok {
		return domain.Session{}, false
	}
	if r.expired(sess) {
		delete(r.sessions, id)
		return domain.Session{}, false
	}
	return sess, true
}

func (r *SessionRepository) expired(sess domain.Session) bool {
	return r.idleTimeout > 0 && r.now().Sub(sess.LastSeen) > r.idleTimeout
}

// Sweep evicts every idle session and returns how many were removed.
func (r *SessionRepository) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, sess := range r.sessions {
		if r.expired(sess) {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed
}

// RunSweeper calls Sweep every interval until ctx is done.
func (r *SessionRepository) RunSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				logger.DebugLog(ctx, "Evicted %d idle sessions", n)
			}
		}
	}
}
