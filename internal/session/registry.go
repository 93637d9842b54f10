package session

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ObjCodingDevMart/storefront/internal/address"
	"github.com/ObjCodingDevMart/storefront/internal/review"
	"github.com/ObjCodingDevMart/storefront/pkg/logger"
)

const DefaultIdleTimeout = 30 * time.Minute

// BackendFactory returns the backend bound to one user token.
type BackendFactory func(token string) Backend

type Config struct {
	IdleTimeout time.Duration
	Finder      address.Finder
	Invalidator review.Invalidator
}

type Registry struct {
	newBackend BackendFactory
	cfg        Config
	log        *zap.Logger
	now        func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewRegistry(factory BackendFactory, cfg Config, log *zap.Logger) *Registry {
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = DefaultIdleTimeout
	}
	return &Registry{
		newBackend: factory,
		cfg:        cfg,
		log:        logger.OrNop(log).Named("session"),
		now:        time.Now,
		sessions:   make(map[string]*Session),
	}
}

// Get returns the session of token, creating it on first use.
func (r *Registry) Get(token string) *Session {
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[token]; ok {
		s.touch(now)
		return s
	}
	s := newSession(r.newBackend(token), r.cfg.Finder, r.cfg.Invalidator, r.log)
	s.lastSeen = now
	r.sessions[token] = s
	r.log.Debug("session opened", zap.Int("active", len(r.sessions)))
	return s
}

// Drop closes and forgets the session of token.
func (r *Registry) Drop(token string) bool {
	r.mu.Lock()
	s, ok := r.sessions[token]
	delete(r.sessions, token)
	r.mu.Unlock()

	if ok {
		s.Close()
	}
	return ok
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep closes sessions idle for longer than the configured timeout.
func (r *Registry) Sweep() int {
	now := r.now()
	var expired []*Session

	r.mu.Lock()
	for token, s := range r.sessions {
		if s.idleSince(now) > r.cfg.IdleTimeout {
			expired = append(expired, s)
			delete(r.sessions, token)
		}
	}
	r.mu.Unlock()

	for _, s := range expired {
		s.Close()
	}
	if len(expired) > 0 {
		r.log.Info("idle sessions closed", zap.Int("count", len(expired)))
	}
	return len(expired)
}

// Run sweeps every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}

// Close ends every session.
func (r *Registry) Close() {
	r.mu.Lock()
	all := r.sessions
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()

	for _, s := range all {
		s.Close()
	}
}
