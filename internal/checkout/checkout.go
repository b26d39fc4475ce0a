package checkout

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/eliotaldersonfsociety/tienlatoree/internal/cart"
	"github.com/eliotaldersonfsociety/tienlatoree/internal/domain"
	"github.com/eliotaldersonfsociety/tienlatoree/internal/order"
	"github.com/eliotaldersonfsociety/tienlatoree/pkg/common"
)

// State of one checkout attempt.
type State string

const (
	StateCollecting State = "collecting-info"
	StateValidating State = "validating"
	StateSubmitting State = "submitting"
	StateSuccess    State = "success"
	StateFailed     State = "failed"
)

// Payment methods accepted by the storefront.
const (
	PaymentTransfer       = "transfer"
	PaymentCashOnDelivery = "cash_on_delivery"
)

const defaultTimeout = 30 * time.Second

// Request carries the shipping and payment data collected from the
// customer.
type Request struct {
	Email          string
	Name           string
	Address        string
	City           string
	Department     string
	Phone          string
	Country        string
	AdditionalInfo string
	PaymentMethod  string
	Proof          *order.ProofUpload

	// Authenticated customer, zero values for guests. A logged-in
	// customer's token email wins over the form field.
	UserId    int64
	UserEmail string
}

// Result of a successful submission.
type Result struct {
	OrderID        int64
	IdempotencyKey string
	Total          float64
	// AutoRegistered is the account created for a first-time guest, nil
	// otherwise; the web layer sets the auth cookie from it.
	AutoRegistered *domain.User
}

// Creator is the order creation collaborator.
type Creator interface {
	Create(ctx context.Context, req order.CreateRequest) (*domain.Order, *domain.User, error)
}

// Service drives one checkout attempt through
// collecting-info -> validating -> submitting -> success | failed.
// Validation failures and submission failures leave the cart untouched so
// the customer can retry; only a confirmed order clears it. Every attempt
// carries a fresh idempotency key so a retry after a lost response cannot
// double-order.
type Service struct {
	creator Creator
	timeout time.Duration
}

func NewService(creator Creator) *Service {
	return &Service{creator: creator, timeout: defaultTimeout}
}

// WithTimeout overrides the submission deadline.
func (s *Service) WithTimeout(d time.Duration) *Service {
	s.timeout = d
	return s
}

// Validate runs the client-side gate without submitting.
func (s *Service) Validate(items []cart.LineItem, req Request) error {
	if len(items) == 0 {
		return ErrEmptyCart
	}
	if req.PaymentMethod == PaymentTransfer && req.Proof == nil {
		return ErrMissingProof
	}
	if req.UserId == 0 && !common.ValidEmail(req.Email) {
		return ErrInvalidEmail
	}
	return nil
}

// Submit validates and submits the cart as one order, then clears the
// cart. The returned state is StateSuccess or StateFailed.
func (s *Service) Submit(ctx context.Context, c *cart.Cart, req Request) (*Result, State, error) {
	items := c.Items()

	if err := s.Validate(items, req); err != nil {
		return nil, StateFailed, err
	}

	email := req.Email
	if req.UserId != 0 && req.UserEmail != "" {
		email = req.UserEmail
	}

	total := cart.CartTotal(items)
	key := common.UUID()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	ord, newUser, err := s.creator.Create(ctx, order.CreateRequest{
		IdempotencyKey: key,
		UserId:         req.UserId,
		Email:          email,
		Name:           req.Name,
		Phone:          req.Phone,
		Address:        req.Address,
		City:           req.City,
		Department:     req.Department,
		Country:        req.Country,
		AdditionalInfo: req.AdditionalInfo,
		PaymentMethod:  req.PaymentMethod,
		Proof:          req.Proof,
		Total:          total,
		Items:          items,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			zap.L().Warn("checkout submission timed out", zap.String("idempotency_key", key))
			return nil, StateFailed, errors.Wrap(ErrTimedOut, err.Error())
		}
		zap.L().Error("checkout submission failed", zap.Error(err))
		return nil, StateFailed, errors.Wrap(ErrSubmissionFailed, err.Error())
	}

	// order committed, safe to drop the cart now
	c.Clear()

	return &Result{
		OrderID:        ord.ID,
		IdempotencyKey: key,
		Total:          total,
		AutoRegistered: newUser,
	}, StateSuccess, nil
}
