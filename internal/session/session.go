// Package session keeps one set of state managers per signed-in user and
// closes them when the user leaves or goes idle.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ObjCodingDevMart/storefront/internal/address"
	"github.com/ObjCodingDevMart/storefront/internal/cart"
	"github.com/ObjCodingDevMart/storefront/internal/checkout"
	"github.com/ObjCodingDevMart/storefront/internal/domain"
	"github.com/ObjCodingDevMart/storefront/internal/orders"
	"github.com/ObjCodingDevMart/storefront/internal/review"
)

var ErrNoCheckout = errors.New("no checkout in progress")

// Backend is everything a session calls on behalf of one user.
type Backend interface {
	cart.API
	checkout.API
	review.API
	orders.Lister
}

type Session struct {
	Cart    *cart.Manager
	History *orders.History

	backend     Backend
	finder      address.Finder
	invalidator review.Invalidator
	log         *zap.Logger

	mu       sync.Mutex
	checkout *checkout.Flow
	review   *review.Flow
	lastSeen time.Time
	closed   bool
}

func newSession(b Backend, finder address.Finder, inv review.Invalidator, log *zap.Logger) *Session {
	return &Session{
		Cart:        cart.NewManager(b, log),
		History:     orders.NewHistory(b, log),
		backend:     b,
		finder:      finder,
		invalidator: inv,
		log:         log,
		review:      review.NewFlow(b, inv, log),
		lastSeen:    time.Now(),
	}
}

// StartCheckout replaces any running checkout with a new one over the
// current cart contents and loads its address and mileage. A cart this
// session has not seen yet is fetched first; an empty cart cannot check out.
func (s *Session) StartCheckout(ctx context.Context) (*checkout.Flow, error) {
	if !s.Cart.Loaded() {
		if err := s.Cart.Load(ctx); err != nil {
			return nil, err
		}
	}
	products := s.Cart.Snapshot()
	if len(products) == 0 {
		return nil, domain.NewValidationError(domain.FieldProducts, domain.MsgNothingToOrder)
	}
	flow := checkout.NewFlow(products, s.backend, s.finder, s.log)

	s.mu.Lock()
	prev := s.checkout
	s.checkout = flow
	s.mu.Unlock()
	if prev != nil {
		prev.Close()
	}

	if err := flow.Enter(ctx); err != nil {
		return nil, err
	}
	return flow, nil
}

func (s *Session) Checkout() (*checkout.Flow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.checkout == nil {
		return nil, ErrNoCheckout
	}
	return s.checkout, nil
}

func (s *Session) EndCheckout() {
	s.mu.Lock()
	prev := s.checkout
	s.checkout = nil
	s.mu.Unlock()
	if prev != nil {
		prev.Close()
	}
}

func (s *Session) Review() *review.Flow {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.review
}

// NewReview discards the current review draft and starts an empty one.
func (s *Session) NewReview() *review.Flow {
	flow := review.NewFlow(s.backend, s.invalidator, s.log)

	s.mu.Lock()
	prev := s.review
	s.review = flow
	s.mu.Unlock()
	prev.Close()
	return flow
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastSeen)
}

// Close tears down every manager; late results are dropped.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	co, rv := s.checkout, s.review
	s.checkout = nil
	s.mu.Unlock()

	s.Cart.Close()
	if co != nil {
		co.Close()
	}
	rv.Close()
}
