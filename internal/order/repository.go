package order

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/eliotaldersonfsociety/tienlatoree/internal/domain"
)

// ListFilter narrows admin order listings.
type ListFilter struct {
	Status string
	Email  string
	From   time.Time
	To     time.Time
}

// Repository handles database operations for orders.
type Repository interface {
	// Create inserts the order with its item snapshots in one
	// transaction. When an order with the same idempotency key already
	// exists, the existing order is returned and created is false.
	Create(ctx context.Context, o *domain.Order) (created bool, err error)

	// GetByID retrieves an order with its items.
	GetByID(ctx context.Context, id int64) (*domain.Order, error)

	// ListByUser retrieves a customer's orders, newest first, with items.
	ListByUser(ctx context.Context, userID int64) ([]domain.Order, error)

	// List retrieves orders for the admin view with pagination.
	List(ctx context.Context, filter ListFilter, page, pageSize int) ([]domain.Order, int64, error)

	// UpdateStatus applies a validated status transition.
	UpdateStatus(ctx context.Context, id int64, status string) error
}

// GormRepository is the GORM implementation of Repository.
type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) Create(ctx context.Context, o *domain.Order) (bool, error) {
	created := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if o.IdempotencyKey != "" {
			var existing domain.Order
			err := tx.Where("idempotency_key = ?", o.IdempotencyKey).First(&existing).Error
			if err == nil {
				// duplicate submit, hand back the committed order
				*o = existing
				return tx.Where("order_id = ?", existing.ID).Find(&o.Items).Error
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
		}

		items := o.Items
		o.Items = nil
		if err := tx.Create(o).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].OrderId = o.ID
		}
		if len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				return err
			}
		}
		o.Items = items
		created = true
		return nil
	})
	if err != nil {
		return false, errors.Wrap(err, "create order")
	}
	return created, nil
}

func (r *GormRepository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	var o domain.Order
	err := r.db.WithContext(ctx).Preload("Items").First(&o, id).Error
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *GormRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Order, error) {
	var out []domain.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}

func (r *GormRepository) List(ctx context.Context, filter ListFilter, page, pageSize int) ([]domain.Order, int64, error) {
	query := r.db.WithContext(ctx).Model(&domain.Order{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Email != "" {
		query = query.Where("customer_email = ?", filter.Email)
	}
	if !filter.From.IsZero() {
		query = query.Where("created_at >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		query = query.Where("created_at <= ?", filter.To)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var out []domain.Order
	err := query.
		Preload("Items").
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&out).Error
	return out, total, err
}

func (r *GormRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	var o domain.Order
	if err := r.db.WithContext(ctx).First(&o, id).Error; err != nil {
		return err
	}
	if !CanTransition(o.Status, status) {
		return errors.Wrapf(ErrInvalidTransition, "%s -> %s", o.Status, status)
	}
	return r.db.WithContext(ctx).
		Model(&domain.Order{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		}).Error
}
