package order

import (
	"context"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/eliotaldersonfsociety/tienlatoree/internal/domain"
	"github.com/eliotaldersonfsociety/tienlatoree/pkg/common"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&domain.User{}, &domain.Order{}, &domain.OrderItem{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func sampleOrder(key string) *domain.Order {
	return &domain.Order{
		ID:             common.UUIDint64(),
		IdempotencyKey: key,
		CustomerEmail:  "a@b.com",
		Total:          129200,
		Status:         domain.OrderStatusPending,
		PaymentMethod:  "cash_on_delivery",
		Items: []domain.OrderItem{
			{ID: common.UUIDint64(), ProductId: "1", Name: "Camiseta", Price: 68000, Quantity: 2},
		},
	}
}

func TestCreatePersistsOrderWithItems(t *testing.T) {
	repo := NewGormRepository(newTestDB(t))

	o := sampleOrder("key-1")
	created, err := repo.Create(context.Background(), o)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !created {
		t.Fatal("expected created = true for a fresh key")
	}

	got, err := repo.GetByID(context.Background(), o.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Items) != 1 || got.Items[0].Name != "Camiseta" || got.Items[0].Quantity != 2 {
		t.Fatalf("items not persisted with the order: %+v", got.Items)
	}
}

func TestCreateDeduplicatesByIdempotencyKey(t *testing.T) {
	repo := NewGormRepository(newTestDB(t))

	first := sampleOrder("key-dup")
	if _, err := repo.Create(context.Background(), first); err != nil {
		t.Fatalf("first create: %v", err)
	}

	second := sampleOrder("key-dup")
	created, err := repo.Create(context.Background(), second)
	if err != nil {
		t.Fatalf("second create: %v", err)
	}
	if created {
		t.Fatal("duplicate key must not create a second order")
	}
	if second.ID != first.ID {
		t.Fatalf("duplicate submit must return the committed order, got %d want %d", second.ID, first.ID)
	}

	var count int64
	repo.db.Model(&domain.Order{}).Count(&count)
	if count != 1 {
		t.Fatalf("expected exactly one order, got %d", count)
	}
}

func TestListByUser(t *testing.T) {
	repo := NewGormRepository(newTestDB(t))

	mine := sampleOrder("k1")
	mine.UserId = 7
	other := sampleOrder("k2")
	other.UserId = 8
	for _, o := range []*domain.Order{mine, other} {
		if _, err := repo.Create(context.Background(), o); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	got, err := repo.ListByUser(context.Background(), 7)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0].ID != mine.ID {
		t.Fatalf("unexpected user orders: %+v", got)
	}
	if len(got[0].Items) != 1 {
		t.Fatal("items must be preloaded")
	}
}

func TestListFiltersByStatus(t *testing.T) {
	repo := NewGormRepository(newTestDB(t))

	a := sampleOrder("k1")
	b := sampleOrder("k2")
	if _, err := repo.Create(context.Background(), a); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.Create(context.Background(), b); err != nil {
		t.Fatal(err)
	}
	if err := repo.UpdateStatus(context.Background(), b.ID, domain.OrderStatusConfirmed); err != nil {
		t.Fatalf("update status: %v", err)
	}

	rows, total, err := repo.List(context.Background(), ListFilter{Status: domain.OrderStatusConfirmed}, 1, 20)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 1 || len(rows) != 1 || rows[0].ID != b.ID {
		t.Fatalf("status filter broken: total=%d rows=%+v", total, rows)
	}
}

func TestUpdateStatusRejectsInvalidTransition(t *testing.T) {
	repo := NewGormRepository(newTestDB(t))

	o := sampleOrder("k1")
	if _, err := repo.Create(context.Background(), o); err != nil {
		t.Fatal(err)
	}

	err := repo.UpdateStatus(context.Background(), o.ID, domain.OrderStatusShipped)
	if err == nil {
		t.Fatal("pending -> shipped must be rejected")
	}

	if err := repo.UpdateStatus(context.Background(), o.ID, domain.OrderStatusConfirmed); err != nil {
		t.Fatalf("pending -> confirmed: %v", err)
	}
	if err := repo.UpdateStatus(context.Background(), o.ID, domain.OrderStatusShipped); err != nil {
		t.Fatalf("confirmed -> shipped: %v", err)
	}

	got, _ := repo.GetByID(context.Background(), o.ID)
	if got.Status != domain.OrderStatusShipped {
		t.Fatalf("expected shipped, got %s", got.Status)
	}
}
