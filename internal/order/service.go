package order

import (
	"context"
	"strings"

	"github.com/asaskevich/EventBus"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/eliotaldersonfsociety/tienlatoree/internal/auth"
	"github.com/eliotaldersonfsociety/tienlatoree/internal/cart"
	"github.com/eliotaldersonfsociety/tienlatoree/internal/domain"
	"github.com/eliotaldersonfsociety/tienlatoree/pkg/common"
	"github.com/eliotaldersonfsociety/tienlatoree/pkg/metrics"
)

// TopicCreated is published on the event bus once per newly committed
// order; duplicate submits deduplicated by idempotency key do not fire it
// again.
const TopicCreated = "order:created"

// CreateRequest is the payload assembled by the checkout flow.
type CreateRequest struct {
	IdempotencyKey string
	UserId         int64 // zero for guests
	Email          string
	Name           string
	Phone          string
	Address        string
	City           string
	Department     string
	Country        string
	AdditionalInfo string
	PaymentMethod  string
	Proof          *ProofUpload
	Total          float64
	Items          []cart.LineItem
}

// Service is the order creation collaborator. It stores the payment
// proof, auto-registers guest customers the way the storefront does, and
// commits the order with its item snapshots.
type Service struct {
	db       *gorm.DB
	repo     Repository
	uploader Uploader
	bus      EventBus.Bus
}

func NewService(db *gorm.DB, repo Repository, uploader Uploader, bus EventBus.Bus) *Service {
	return &Service{db: db, repo: repo, uploader: uploader, bus: bus}
}

// Create commits an order. The returned user is non-nil only when a guest
// account was auto-registered; the caller is responsible for setting the
// auth cookie in that case.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*domain.Order, *domain.User, error) {
	var newUser *domain.User
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if req.UserId == 0 {
		u, err := s.autoRegisterGuest(email, req)
		if err != nil {
			return nil, nil, err
		}
		newUser = u
	}

	var proofRef string
	if req.PaymentMethod == "transfer" && req.Proof != nil {
		ref, err := s.uploader.Upload(ctx, req.Proof)
		if err != nil {
			return nil, nil, err
		}
		proofRef = ref
	}

	o := &domain.Order{
		ID:             common.UUIDint64(),
		UserId:         req.UserId,
		IdempotencyKey: req.IdempotencyKey,
		CustomerEmail:  email,
		CustomerName:   req.Name,
		CustomerPhone:  req.Phone,
		Address:        req.Address,
		City:           req.City,
		Department:     req.Department,
		Country:        req.Country,
		Total:          req.Total,
		Status:         domain.OrderStatusPending,
		PaymentMethod:  req.PaymentMethod,
		PaymentProof:   proofRef,
		AdditionalInfo: req.AdditionalInfo,
		Items:          snapshotItems(req.Items),
	}

	created, err := s.repo.Create(ctx, o)
	if err != nil {
		return nil, nil, err
	}
	if !created {
		zap.L().Info("duplicate checkout submission deduplicated",
			zap.String("idempotency_key", req.IdempotencyKey),
			zap.Int64("order_id", o.ID))
		return o, newUser, nil
	}

	metrics.IncrCounter("shop_orders_created", 1)
	if s.bus != nil {
		s.bus.Publish(TopicCreated, o)
	}
	return o, newUser, nil
}

// autoRegisterGuest mirrors the storefront: an unknown guest email gets an
// account with a temporary password so the order history stays reachable.
// A known email leaves the order a guest order.
func (s *Service) autoRegisterGuest(email string, req CreateRequest) (*domain.User, error) {
	if email == "" {
		return nil, nil
	}
	var count int64
	if err := s.db.Model(&domain.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, errors.Wrap(err, "query guest email")
	}
	if count > 0 {
		return nil, nil
	}

	tempPassword := common.RandomHex(8)
	hash, err := auth.HashPassword(tempPassword)
	if err != nil {
		return nil, err
	}
	u := &domain.User{
		ID:             common.UUIDint64(),
		Email:          email,
		Password:       hash,
		TempPassword:   tempPassword,
		Name:           req.Name,
		Address:        req.Address,
		City:           req.City,
		WhatsappNumber: req.Phone,
		Role:           "user",
		Status:         common.ENABLED,
	}
	if err := s.db.Create(u).Error; err != nil {
		return nil, errors.Wrap(err, "auto register guest")
	}
	zap.L().Info("auto registered guest customer", zap.Int64("user_id", u.ID))
	return u, nil
}

func snapshotItems(items []cart.LineItem) []domain.OrderItem {
	out := make([]domain.OrderItem, 0, len(items))
	for _, it := range items {
		out = append(out, domain.OrderItem{
			ID:        common.UUIDint64(),
			ProductId: it.ProductID,
			Name:      it.Name,
			Price:     it.Price,
			Quantity:  it.Quantity,
			Color:     it.Color,
			Size:      it.Size,
			Brand:     it.Brand,
			Image:     it.Image,
		})
	}
	return out
}
