package catalog

import (
	"sync"
	"time"

	"github.com/google/btree"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"

	"github.com/eliotaldersonfsociety/tienlatoree/internal/domain"
)

// Service is the read-only product catalog consumed by the storefront and
// by cart reconciliation. Active products are cached in memory behind a
// btree index so listing stays sorted without hitting the database per
// request; admin writes call Invalidate to force a reload.
type Service struct {
	db *gorm.DB
	sf singleflight.Group

	mu     sync.RWMutex
	byID   map[string]domain.Product
	index  *btree.BTreeG[domain.Product]
	loaded time.Time
}

const cacheTTL = 5 * time.Minute

func less(a, b domain.Product) bool {
	return a.ID < b.ID
}

func NewService(db *gorm.DB) *Service {
	return &Service{
		db:    db,
		byID:  map[string]domain.Product{},
		index: btree.NewG(8, less),
	}
}

// GetProduct looks up one product by id. Inactive and unknown products
// report not-found.
func (s *Service) GetProduct(id string) (domain.Product, bool) {
	s.ensureFresh()
	s.mu.RLock()
	p, ok := s.byID[id]
	s.mu.RUnlock()
	return p, ok
}

// List returns all active products ordered by id.
func (s *Service) List() []domain.Product {
	s.ensureFresh()
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Product, 0, s.index.Len())
	s.index.Ascend(func(p domain.Product) bool {
		out = append(out, p)
		return true
	})
	return out
}

// Invalidate drops the cache so the next read reloads from the database.
func (s *Service) Invalidate() {
	s.mu.Lock()
	s.loaded = time.Time{}
	s.mu.Unlock()
}

// Refresh reloads the cache from the database immediately.
func (s *Service) Refresh() error {
	_, err, _ := s.sf.Do("refresh", func() (interface{}, error) {
		var products []domain.Product
		if err := s.db.Where("active = ?", true).Find(&products).Error; err != nil {
			return nil, errors.Wrap(err, "load catalog")
		}

		byID := make(map[string]domain.Product, len(products))
		index := btree.NewG(8, less)
		for _, p := range products {
			byID[p.ID] = p
			index.ReplaceOrInsert(p)
		}

		s.mu.Lock()
		s.byID = byID
		s.index = index
		s.loaded = time.Now()
		s.mu.Unlock()
		return nil, nil
	})
	return err
}

func (s *Service) ensureFresh() {
	s.mu.RLock()
	fresh := time.Since(s.loaded) < cacheTTL
	s.mu.RUnlock()
	if fresh {
		return
	}
	if err := s.Refresh(); err != nil {
		zap.L().Error("catalog refresh failed", zap.Error(err))
	}
}
