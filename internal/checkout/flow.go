package checkout

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ObjCodingDevMart/storefront/internal/address"
	"github.com/ObjCodingDevMart/storefront/internal/api"
	"github.com/ObjCodingDevMart/storefront/internal/domain"
	"github.com/ObjCodingDevMart/storefront/internal/lifecycle"
	"github.com/ObjCodingDevMart/storefront/internal/observable"
	"github.com/ObjCodingDevMart/storefront/pkg/logger"
)

type API interface {
	GetAddress(ctx context.Context) (domain.Address, error)
	UpdateAddress(ctx context.Context, addr domain.Address) error
	GetProfile(ctx context.Context) (domain.Profile, error)
	CreateOrder(ctx context.Context, line domain.OrderLine, idempotencyKey string) (domain.OrderReceipt, error)
}

type State struct {
	Draft        domain.CheckoutDraft `json:"draft"`
	Totals       domain.Totals        `json:"totals"`
	Payment      domain.PaymentState  `json:"payment"`
	AddressError string               `json:"address_error,omitempty"`
	MileageError string               `json:"mileage_error,omitempty"`
	Message      string               `json:"message,omitempty"`
	OrderIDs     []int64              `json:"order_ids,omitempty"`
}

func withTotals(s State) State {
	s.Totals = s.Draft.Totals()
	return s
}

// Flow drives one checkout session from entry to a paid order.
type Flow struct {
	api    API
	finder address.Finder
	log    *zap.Logger
	state  *observable.Value[State]
	scope  *lifecycle.Scope

	// the attempt Retry repeats; only touched while the scope slot is held
	attemptMileage int64
	attemptKey     string
}

// NewFlow starts a checkout over a snapshot of products. The snapshot is
// copied; later cart changes do not reach the draft.
func NewFlow(products []domain.CartItem, api API, finder address.Finder, log *zap.Logger) *Flow {
	draft := domain.NewCheckoutDraft(products)
	return &Flow{
		api:    api,
		finder: finder,
		log:    logger.OrNop(log).Named("checkout"),
		state:  observable.NewValue(withTotals(State{Draft: draft, Payment: domain.Idle()})),
		scope:  lifecycle.NewScope(),
	}
}

func (f *Flow) State() State {
	return f.state.Get()
}

func (f *Flow) Watch(ctx context.Context) <-chan State {
	return f.state.Watch(ctx)
}

func (f *Flow) Close() {
	f.scope.Close()
}

// Enter loads the stored address and the mileage balance side by side.
// Either failing leaves its part blank and sets a message.
func (f *Flow) Enter(ctx context.Context) error {
	ctx, done, err := f.scope.Begin(ctx)
	if err != nil {
		return err
	}
	defer done()

	var (
		addr    domain.Address
		profile domain.Profile
	)
	g := new(errgroup.Group)
	g.Go(func() error {
		a, err := f.api.GetAddress(ctx)
		if err != nil {
			return fmt.Errorf("load address: %w", err)
		}
		addr = a
		return nil
	})
	g.Go(func() error {
		p, err := f.api.GetProfile(ctx)
		if err != nil {
			return fmt.Errorf("load mileage: %w", err)
		}
		profile = p
		return nil
	})
	loadErr := g.Wait()
	if loadErr != nil {
		logger.FromContext(ctx, f.log).Warn("checkout entry partially failed", zap.Error(loadErr))
	}

	if !f.scope.Apply(func() {
		f.state.Update(func(s State) State {
			s.Draft.Address = addr
			s.Draft.AvailableMileage = profile.Mileage
			if loadErr != nil {
				s.Message = MsgCheckoutLoadFail
			}
			return withTotals(s)
		})
	}) {
		return lifecycle.ErrClosed
	}
	return nil
}

func (f *Flow) SetAddress(addr domain.Address) {
	f.update(func(s State) State {
		s.Draft.Address = addr
		s.AddressError = ""
		return s
	})
}

func (f *Flow) SelectCandidate(c address.Candidate, detail string) {
	f.SetAddress(c.ToAddress(detail))
}

// SearchAddress asks the external lookup for candidates. Results go to the
// caller only; nothing is stored.
func (f *Flow) SearchAddress(ctx context.Context, keyword string) ([]address.Candidate, error) {
	found, err := address.Search(ctx, f.finder, keyword)
	if err != nil {
		logger.FromContext(ctx, f.log).Warn("address search failed", zap.Error(err))
		return nil, err
	}
	return found, nil
}

// SaveAddress stores the draft address as the user's default.
func (f *Flow) SaveAddress(ctx context.Context) error {
	addr := f.state.Get().Draft.Address
	if err := addr.Validate(); err != nil {
		f.update(func(s State) State {
			s.AddressError = domain.MsgAddressRequired
			return s
		})
		return err
	}

	ctx, done, err := f.scope.Begin(ctx)
	if err != nil {
		return err
	}
	defer done()

	err = f.api.UpdateAddress(ctx, addr)
	if err != nil {
		logger.FromContext(ctx, f.log).Warn("save address failed", zap.Error(err))
	}
	if !f.scope.Apply(func() {
		f.state.Update(func(s State) State {
			s.Message = api.UserMessage(err)
			return s
		})
	}) {
		return lifecycle.ErrClosed
	}
	return err
}

// SetMileageInput records the raw field text; totals follow immediately.
func (f *Flow) SetMileageInput(input string) {
	f.update(func(s State) State {
		s.Draft.MileageInput = input
		s.MileageError = ""
		return s
	})
}

func (f *Flow) UseAllMileage() {
	f.update(func(s State) State {
		s.Draft.MileageInput = strconv.FormatInt(s.Draft.AvailableMileage, 10)
		s.MileageError = ""
		return s
	})
}

// Submit validates the draft and places the order. Validation failures stay
// in Idle and never reach the network. From Error it behaves as Retry.
func (f *Flow) Submit(ctx context.Context) error {
	ctx, done, err := f.scope.Begin(ctx)
	if err != nil {
		return err
	}
	defer done()

	s := f.state.Get()
	switch {
	case s.Payment.Status.IsTerminal():
		return ErrTerminal
	case s.Payment.Status == domain.StatusError:
		return f.place(ctx, true)
	case !domain.CanTransitionTo(s.Payment.Status, domain.StatusLoading):
		return ErrIllegalTransition
	}

	mileage, err := f.validate(s.Draft)
	if err != nil {
		return err
	}

	f.attemptMileage = mileage
	f.attemptKey = uuid.NewString()
	return f.place(ctx, false)
}

// Retry repeats the failed attempt with the same mileage and idempotency
// keys, so lines the backend already accepted are not ordered twice. The
// mileage field is put back to the amount actually sent.
func (f *Flow) Retry(ctx context.Context) error {
	ctx, done, err := f.scope.Begin(ctx)
	if err != nil {
		return err
	}
	defer done()

	if f.state.Get().Payment.Status != domain.StatusError {
		return ErrIllegalTransition
	}
	return f.place(ctx, true)
}

// Dismiss returns from Error to Idle.
func (f *Flow) Dismiss() error {
	var err error
	f.update(func(s State) State {
		if !domain.CanTransitionTo(s.Payment.Status, domain.StatusIdle) {
			err = ErrIllegalTransition
			return s
		}
		s.Payment = domain.Idle()
		return s
	})
	if f.scope.Closed() {
		return lifecycle.ErrClosed
	}
	return err
}

func (f *Flow) validate(d domain.CheckoutDraft) (int64, error) {
	addrErr := d.Address.Validate()
	mileage, mileageErr := d.MileageToUse()

	if addrErr != nil || mileageErr != nil {
		f.update(func(s State) State {
			s.AddressError, s.MileageError = "", ""
			if addrErr != nil {
				s.AddressError = domain.MsgAddressRequired
			}
			if mileageErr != nil {
				s.MileageError = domain.MsgMileageExceeded
			}
			return s
		})
		if addrErr != nil {
			return 0, addrErr
		}
		return 0, mileageErr
	}
	if len(d.Products) == 0 {
		return 0, domain.NewValidationError(domain.FieldProducts, domain.MsgNothingToOrder)
	}
	return mileage, nil
}

// place sends one POST /orders per product. Mileage rides on the first line.
// repeat restores the mileage field to the amount of the attempt being sent.
func (f *Flow) place(ctx context.Context, repeat bool) error {
	log := logger.FromContext(ctx, f.log)

	var products []domain.CartItem
	if !f.scope.Apply(func() {
		s := f.state.Update(func(s State) State {
			s.Payment = domain.Loading()
			s.AddressError, s.MileageError, s.Message = "", "", ""
			if repeat {
				s.Draft.MileageInput = strconv.FormatInt(f.attemptMileage, 10)
			}
			return withTotals(s)
		})
		products = s.Draft.Products
	}) {
		return lifecycle.ErrClosed
	}

	var (
		orderIDs []int64
		message  string
		err      error
	)
	for i, p := range products {
		line := domain.OrderLine{ItemID: p.ItemID, Quantity: p.Quantity}
		if i == 0 {
			line.MileageToUse = f.attemptMileage
		}
		var receipt domain.OrderReceipt
		receipt, err = f.api.CreateOrder(ctx, line, fmt.Sprintf("%s-%d", f.attemptKey, i))
		if err != nil {
			log.Warn("order placement failed",
				zap.Int64("item_id", p.ItemID),
				zap.Int("line", i),
				zap.Error(err))
			break
		}
		orderIDs = append(orderIDs, receipt.OrderID)
		message = receipt.Message
	}

	if !f.scope.Apply(func() {
		f.state.Update(func(s State) State {
			if err != nil {
				s.Payment = domain.Failed(api.UserMessage(err))
				return s
			}
			if message == "" {
				message = MsgOrderCompleted
			}
			s.Payment = domain.Success(message)
			s.OrderIDs = orderIDs
			return s
		})
	}) {
		log.Debug("dropped order result after close")
		return lifecycle.ErrClosed
	}
	if err == nil {
		log.Info("order placed",
			zap.Int("lines", len(orderIDs)),
			zap.Int64("mileage", f.attemptMileage))
	}
	return err
}

func (f *Flow) update(fn func(State) State) {
	f.scope.Apply(func() {
		f.state.Update(func(s State) State {
			return withTotals(fn(s))
		})
	})
}
