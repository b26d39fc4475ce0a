package cart

import (
	"github.com/eliotaldersonfsociety/tienlatoree/internal/domain"
	"go.uber.org/zap"
)

// Catalog is the read-only lookup consumed by reconciliation.
type Catalog interface {
	GetProduct(id string) (domain.Product, bool)
}

// Reconcile refreshes a persisted cart against the live catalog. Only the
// price field is refreshed; quantity, variant attributes and the name
// snapshot stay untouched. Lines whose product no longer exists are kept
// as-is rather than dropped, so a reload never silently empties the cart;
// the miss is logged for support visibility. The store is written back
// only when at least one price actually changed.
func Reconcile(store Store, catalog Catalog) []LineItem {
	items := store.Get()
	changed := false
	for i := range items {
		p, ok := catalog.GetProduct(items[i].ProductID)
		if !ok {
			zap.L().Warn("cart line references product missing from catalog",
				zap.String("product_id", items[i].ProductID),
				zap.String("name", items[i].Name))
			continue
		}
		if items[i].Price != p.Price {
			items[i].Price = p.Price
			changed = true
		}
	}
	if changed {
		store.Set(items)
	}
	return items
}
