package catalog

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/eliotaldersonfsociety/tienlatoree/internal/domain"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&domain.Product{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seed(t *testing.T, db *gorm.DB, products ...domain.Product) {
	t.Helper()
	for i := range products {
		if err := db.Create(&products[i]).Error; err != nil {
			t.Fatalf("seed product %s: %v", products[i].ID, err)
		}
	}
}

func TestGetProduct(t *testing.T) {
	db := newTestDB(t)
	seed(t, db,
		domain.Product{ID: "1", Name: "Camiseta", Price: 68000, Active: true},
		domain.Product{ID: "2", Name: "Short", Price: 20000, Active: true},
	)

	svc := NewService(db)
	p, ok := svc.GetProduct("1")
	if !ok || p.Price != 68000 {
		t.Fatalf("GetProduct(1) = %+v, %v", p, ok)
	}
	if _, ok := svc.GetProduct("missing"); ok {
		t.Fatal("unknown id must report not-found")
	}
}

func TestInactiveProductsHidden(t *testing.T) {
	db := newTestDB(t)
	seed(t, db, domain.Product{ID: "9", Name: "Retirado", Price: 1000, Active: false})

	svc := NewService(db)
	if _, ok := svc.GetProduct("9"); ok {
		t.Fatal("inactive product must report not-found")
	}
	if got := len(svc.List()); got != 0 {
		t.Fatalf("inactive product leaked into listing: %d", got)
	}
}

func TestInactiveFlagPersistedOnCreate(t *testing.T) {
	db := newTestDB(t)
	seed(t, db, domain.Product{ID: "9", Name: "Retirado", Price: 1000, Active: false})

	var stored domain.Product
	if err := db.Where("id = ?", "9").First(&stored).Error; err != nil {
		t.Fatalf("read back: %v", err)
	}
	if stored.Active {
		t.Fatal("product created inactive was stored with active=true")
	}
}

func TestListSortedByID(t *testing.T) {
	db := newTestDB(t)
	seed(t, db,
		domain.Product{ID: "3", Name: "c", Price: 1, Active: true},
		domain.Product{ID: "1", Name: "a", Price: 1, Active: true},
		domain.Product{ID: "2", Name: "b", Price: 1, Active: true},
	)

	svc := NewService(db)
	list := svc.List()
	if len(list) != 3 {
		t.Fatalf("expected 3 products, got %d", len(list))
	}
	for i, want := range []string{"1", "2", "3"} {
		if list[i].ID != want {
			t.Fatalf("listing not sorted: %+v", list)
		}
	}
}

func TestInvalidateForcesReload(t *testing.T) {
	db := newTestDB(t)
	seed(t, db, domain.Product{ID: "1", Name: "Camiseta", Price: 68000, Active: true})

	svc := NewService(db)
	if _, ok := svc.GetProduct("1"); !ok {
		t.Fatal("expected product before update")
	}

	if err := db.Model(&domain.Product{}).Where("id = ?", "1").Update("price", 70000).Error; err != nil {
		t.Fatalf("update: %v", err)
	}
	svc.Invalidate()

	p, ok := svc.GetProduct("1")
	if !ok || p.Price != 70000 {
		t.Fatalf("expected refreshed price 70000, got %+v", p)
	}
}
