// Package review holds the review submission flow and the cached review
// listing it invalidates.
package review

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/ObjCodingDevMart/storefront/internal/api"
	"github.com/ObjCodingDevMart/storefront/internal/domain"
	"github.com/ObjCodingDevMart/storefront/internal/lifecycle"
	"github.com/ObjCodingDevMart/storefront/internal/observable"
	"github.com/ObjCodingDevMart/storefront/pkg/logger"
)

var (
	ErrTerminal          = errors.New("review already submitted")
	ErrIllegalTransition = errors.New("illegal transition of review state")
)

const MsgReviewSubmitted = "리뷰가 등록되었습니다."

type API interface {
	CreateReview(ctx context.Context, draft domain.ReviewDraft) (string, error)
}

// Invalidator is told which item gained a review.
type Invalidator interface {
	Invalidate(ctx context.Context, itemID int64)
}

type State struct {
	Draft      domain.ReviewDraft `json:"draft"`
	Submit     domain.ReviewState `json:"submit"`
	FieldError string             `json:"field_error,omitempty"`
}

type Flow struct {
	api         API
	invalidator Invalidator
	log         *zap.Logger
	state       *observable.Value[State]
	scope       *lifecycle.Scope
}

func NewFlow(api API, inv Invalidator, log *zap.Logger) *Flow {
	return &Flow{
		api:         api,
		invalidator: inv,
		log:         logger.OrNop(log).Named("review"),
		state:       observable.NewValue(State{Draft: domain.NewReviewDraft(), Submit: domain.Idle()}),
		scope:       lifecycle.NewScope(),
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

func (f *Flow) SetTarget(t domain.ReviewTarget) {
	f.update(func(s State) State {
		s.Draft.Target = &t
		s.FieldError = ""
		return s
	})
}

func (f *Flow) SetRating(rating int) error {
	if err := domain.ValidateRating(rating); err != nil {
		return err
	}
	f.update(func(s State) State {
		s.Draft.Rating = rating
		return s
	})
	return nil
}

func (f *Flow) SetContent(content string) {
	f.update(func(s State) State {
		s.Draft.Content = content
		s.FieldError = ""
		return s
	})
}

// SetImage attaches an uploaded photo; empty values detach it.
func (f *Flow) SetImage(url, key string) {
	f.update(func(s State) State {
		s.Draft.ImageURL, s.Draft.ImageKey = url, key
		return s
	})
}

// Submit posts the review. A missing target or blank content is reported in
// FieldError and leaves the state untouched.
func (f *Flow) Submit(ctx context.Context) error {
	ctx, done, err := f.scope.Begin(ctx)
	if err != nil {
		return err
	}
	defer done()

	s := f.state.Get()
	switch {
	case s.Submit.Status.IsTerminal():
		return ErrTerminal
	case !domain.CanTransitionTo(s.Submit.Status, domain.StatusLoading):
		return ErrIllegalTransition
	}

	if err := s.Draft.Validate(); err != nil {
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			f.update(func(s State) State {
				s.FieldError = ve.Message
				return s
			})
		}
		return err
	}

	draft := s.Draft
	if !f.scope.Apply(func() {
		f.state.Update(func(s State) State {
			s.Submit = domain.Loading()
			s.FieldError = ""
			return s
		})
	}) {
		return lifecycle.ErrClosed
	}

	log := logger.FromContext(ctx, f.log).With(zap.Int64("item_id", draft.Target.ItemID))
	msg, err := f.api.CreateReview(ctx, draft)
	if err != nil {
		log.Warn("review submit failed", zap.Error(err))
	}

	if !f.scope.Apply(func() {
		f.state.Update(func(s State) State {
			if err != nil {
				s.Submit = domain.Failed(api.UserMessage(err))
				return s
			}
			if msg == "" {
				msg = MsgReviewSubmitted
			}
			s.Submit = domain.Success(msg)
			return s
		})
	}) {
		log.Debug("dropped review result after close")
		return lifecycle.ErrClosed
	}
	if err != nil {
		return err
	}

	if f.invalidator != nil {
		f.invalidator.Invalidate(ctx, draft.Target.ItemID)
	}
	log.Info("review submitted", zap.Int("rating", draft.Rating))
	return nil
}

// Dismiss returns from Error to Idle so the draft can be edited again.
func (f *Flow) Dismiss() error {
	var err error
	f.update(func(s State) State {
		if !domain.CanTransitionTo(s.Submit.Status, domain.StatusIdle) {
			err = ErrIllegalTransition
			return s
		}
		s.Submit = domain.Idle()
		return s
	})
	if f.scope.Closed() {
		return lifecycle.ErrClosed
	}
	return err
}

func (f *Flow) update(fn func(State) State) {
	f.scope.Apply(func() {
		f.state.Update(fn)
	})
}
