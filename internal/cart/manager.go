package cart

import (
	"context"
	"errors"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/ObjCodingDevMart/storefront/internal/api"
	"github.com/ObjCodingDevMart/storefront/internal/domain"
	"github.com/ObjCodingDevMart/storefront/internal/lifecycle"
	"github.com/ObjCodingDevMart/storefront/internal/observable"
	"github.com/ObjCodingDevMart/storefront/pkg/logger"
)

var ErrItemNotInCart = errors.New("item is not in the cart")

// API is the slice of the backend the cart needs.
type API interface {
	GetCart(ctx context.Context) ([]domain.CartItem, error)
	AddCartItem(ctx context.Context, itemID int64, quantity int) error
	UpdateCartItem(ctx context.Context, cartItemID int64, quantity int) error
	RemoveCartItem(ctx context.Context, cartItemID int64) error
	ClearCart(ctx context.Context) error
}

// State is what the cart screen renders. Degraded is set when the last load
// failed and Items is empty because the real contents are unknown.
type State struct {
	Items    []domain.CartItem  `json:"items"`
	Summary  domain.CartSummary `json:"summary"`
	Loading  bool               `json:"loading"`
	Degraded bool               `json:"degraded"`
	Message  string             `json:"message,omitempty"`
}

func newState(items []domain.CartItem) State {
	items = domain.CloneItems(items)
	return State{Items: items, Summary: domain.Summarize(items)}
}

// Manager owns the client view of one user's cart. Every mutation goes to
// the server first; local state only follows a successful answer.
type Manager struct {
	api   API
	log   *zap.Logger
	state *observable.Value[State]
	scope *lifecycle.Scope

	// set once the server contents have been seen
	loaded atomic.Bool
}

func NewManager(api API, log *zap.Logger) *Manager {
	return &Manager{
		api:   api,
		log:   logger.OrNop(log).Named("cart"),
		state: observable.NewValue(newState(nil)),
		scope: lifecycle.NewScope(),
	}
}

func (m *Manager) State() State {
	return m.state.Get()
}

func (m *Manager) Watch(ctx context.Context) <-chan State {
	return m.state.Watch(ctx)
}

// Loaded reports whether the items reflect a successful answer from the
// server. A degraded load does not count.
func (m *Manager) Loaded() bool {
	return m.loaded.Load()
}

// Snapshot copies the current lines for a checkout draft.
func (m *Manager) Snapshot() []domain.CartItem {
	return domain.CloneItems(m.state.Get().Items)
}

// Close drops every result that arrives after it returns.
func (m *Manager) Close() {
	m.scope.Close()
}

// Load fetches the cart. A failed load is not returned to the caller: the
// cart becomes empty and Degraded, with a message to show.
func (m *Manager) Load(ctx context.Context) error {
	ctx, done, err := m.scope.Begin(ctx)
	if err != nil {
		return err
	}
	defer done()
	return m.load(ctx)
}

func (m *Manager) load(ctx context.Context) error {
	m.scope.Apply(func() {
		m.state.Update(func(s State) State {
			s.Loading = true
			return s
		})
	})

	items, err := m.api.GetCart(ctx)
	applied := m.scope.Apply(func() {
		if err != nil {
			logger.FromContext(ctx, m.log).Warn("cart load failed, showing empty cart", zap.Error(err))
			s := newState(nil)
			s.Degraded = true
			s.Message = api.UserMessage(err)
			m.state.Set(s)
			m.loaded.Store(false)
			return
		}
		m.state.Set(newState(items))
		m.loaded.Store(true)
	})
	if !applied {
		m.log.Debug("dropped cart load result after close")
		return lifecycle.ErrClosed
	}
	return nil
}

// Add puts quantity units of itemID into the cart and reloads.
func (m *Manager) Add(ctx context.Context, itemID int64, quantity int) error {
	if quantity < 1 {
		return domain.NewValidationError(domain.FieldItem, domain.MsgQuantityPositive)
	}
	ctx, done, err := m.scope.Begin(ctx)
	if err != nil {
		return err
	}
	defer done()

	if err := m.api.AddCartItem(ctx, itemID, quantity); err != nil {
		return m.fail(ctx, "add item failed", err, zap.Int64("item_id", itemID))
	}
	return m.load(ctx)
}

func (m *Manager) Increment(ctx context.Context, itemID int64) error {
	return m.changeQuantity(ctx, itemID, 1)
}

// Decrement never removes a line: at quantity 1 it does nothing.
func (m *Manager) Decrement(ctx context.Context, itemID int64) error {
	return m.changeQuantity(ctx, itemID, -1)
}

func (m *Manager) changeQuantity(ctx context.Context, itemID int64, delta int) error {
	ctx, done, err := m.scope.Begin(ctx)
	if err != nil {
		return err
	}
	defer done()

	item, ok := m.find(itemID)
	if !ok {
		m.setMessage(domain.MsgItemNotInCart)
		return ErrItemNotInCart
	}
	next := item.Quantity + delta
	if next < 1 {
		return nil
	}

	if err := m.api.UpdateCartItem(ctx, item.CartItemID, next); err != nil {
		return m.fail(ctx, "update quantity failed", err, zap.Int64("cart_item_id", item.CartItemID))
	}

	applied := m.scope.Apply(func() {
		m.state.Update(func(s State) State {
			items := domain.CloneItems(s.Items)
			for i := range items {
				if items[i].CartItemID == item.CartItemID {
					items[i] = items[i].WithQuantity(next)
				}
			}
			return newState(items)
		})
	})
	if !applied {
		return lifecycle.ErrClosed
	}
	return nil
}

// Remove deletes the line and reloads the whole cart.
func (m *Manager) Remove(ctx context.Context, itemID int64) error {
	ctx, done, err := m.scope.Begin(ctx)
	if err != nil {
		return err
	}
	defer done()

	item, ok := m.find(itemID)
	if !ok {
		m.setMessage(domain.MsgItemNotInCart)
		return ErrItemNotInCart
	}
	if err := m.api.RemoveCartItem(ctx, item.CartItemID); err != nil {
		return m.fail(ctx, "remove item failed", err, zap.Int64("cart_item_id", item.CartItemID))
	}
	return m.load(ctx)
}

func (m *Manager) Clear(ctx context.Context) error {
	ctx, done, err := m.scope.Begin(ctx)
	if err != nil {
		return err
	}
	defer done()

	if err := m.api.ClearCart(ctx); err != nil {
		return m.fail(ctx, "clear cart failed", err)
	}
	if !m.scope.Apply(func() {
		m.state.Set(newState(nil))
		m.loaded.Store(true)
	}) {
		return lifecycle.ErrClosed
	}
	return nil
}

// DismissMessage clears the transient message.
func (m *Manager) DismissMessage() {
	m.scope.Apply(func() {
		m.state.Update(func(s State) State {
			s.Message = ""
			return s
		})
	})
}

func (m *Manager) find(itemID int64) (domain.CartItem, bool) {
	for _, it := range m.state.Get().Items {
		if it.ItemID == itemID {
			return it, true
		}
	}
	return domain.CartItem{}, false
}

func (m *Manager) setMessage(msg string) {
	m.scope.Apply(func() {
		m.state.Update(func(s State) State {
			s.Message = msg
			return s
		})
	})
}

// fail records a remote failure without touching the items.
func (m *Manager) fail(ctx context.Context, what string, err error, fields ...zap.Field) error {
	logger.FromContext(ctx, m.log).Warn(what, append(fields, zap.Error(err))...)
	if !m.scope.Apply(func() {
		m.state.Update(func(s State) State {
			s.Loading = false
			s.Message = api.UserMessage(err)
			return s
		})
	}) {
		return lifecycle.ErrClosed
	}
	return err
}
