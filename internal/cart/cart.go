package cart

import (
	"strings"

	"github.com/eliotaldersonfsociety/tienlatoree/internal/domain"
)

// VariantKey is the composite identity of a cart line. Two additions with
// the same product id but a different color, size or brand are distinct
// lines; identical keys merge by summing quantity. The same key is used by
// every mutation, so removing or editing one variant never touches the
// others.
type VariantKey struct {
	ProductID string
	Color     string
	Size      string
	Brand     string
}

// LineItem is a product snapshot taken at add time plus the selected
// quantity and variant attributes. Price is the base unit price; the
// displayed price is always recomputed through the pricing evaluator and
// never stored pre-discounted.
type LineItem struct {
	ProductID   string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	Image       string  `json:"image,omitempty"`
	Category    string  `json:"category,omitempty"`
	Quantity    int     `json:"quantity"`
	Color       string  `json:"color,omitempty"`
	Size        string  `json:"size,omitempty"`
	Brand       string  `json:"brand,omitempty"`
}

// Key returns the line's composite identity.
func (it LineItem) Key() VariantKey {
	return VariantKey{ProductID: it.ProductID, Color: it.Color, Size: it.Size, Brand: it.Brand}
}

// Cart enforces line identity and merge semantics on top of a Store. Each
// mutation is a full read-transform-persist cycle with exactly one write;
// none of the operations fail, invalid input degrades silently.
type Cart struct {
	store Store
}

func New(store Store) *Cart {
	return &Cart{store: store}
}

// Items returns the current ordered line list.
func (c *Cart) Items() []LineItem {
	return c.store.Get()
}

// Add merges quantity into an existing line with the same composite key or
// appends a new snapshot of the product. A quantity below 1 is treated
// as 1.
func (c *Cart) Add(p domain.Product, quantity int, color, size, brand string) []LineItem {
	if strings.TrimSpace(p.ID) == "" {
		return c.store.Get()
	}
	if quantity < 1 {
		quantity = 1
	}

	items := c.store.Get()
	key := VariantKey{ProductID: p.ID, Color: color, Size: size, Brand: brand}
	if i := findLine(items, key); i >= 0 {
		items[i].Quantity += quantity
	} else {
		items = append(items, LineItem{
			ProductID:   p.ID,
			Name:        p.Name,
			Description: p.Description,
			Price:       p.Price,
			Image:       p.Image,
			Category:    p.Category,
			Quantity:    quantity,
			Color:       color,
			Size:        size,
			Brand:       brand,
		})
	}
	c.store.Set(items)
	return items
}

// Remove deletes the line matching key, if any.
func (c *Cart) Remove(key VariantKey) []LineItem {
	items := c.store.Get()
	if i := findLine(items, key); i >= 0 {
		items = append(items[:i], items[i+1:]...)
	}
	c.store.Set(items)
	return items
}

// RemoveProduct deletes every variant of a product. This backs the
// storefront's per-product remove button.
func (c *Cart) RemoveProduct(productID string) []LineItem {
	items := c.store.Get()
	kept := items[:0]
	for _, it := range items {
		if it.ProductID != productID {
			kept = append(kept, it)
		}
	}
	c.store.Set(kept)
	return kept
}

// UpdateQuantity sets the quantity on the line matching key. A quantity of
// zero or below removes the line instead; quantity never persists below 1.
func (c *Cart) UpdateQuantity(key VariantKey, quantity int) []LineItem {
	if quantity <= 0 {
		return c.Remove(key)
	}
	items := c.store.Get()
	if i := findLine(items, key); i >= 0 {
		items[i].Quantity = quantity
	}
	c.store.Set(items)
	return items
}

// UpdateAttributes changes the color/size/brand of the line matching key.
// An empty string leaves that attribute unchanged. The line is re-keyed;
// when the new key collides with an existing line the quantities merge, so
// the no-duplicate-key invariant holds across edits as well as inserts.
func (c *Cart) UpdateAttributes(key VariantKey, color, size, brand string) []LineItem {
	items := c.store.Get()
	i := findLine(items, key)
	if i < 0 {
		return items
	}

	line := items[i]
	if color != "" {
		line.Color = color
	}
	if size != "" {
		line.Size = size
	}
	if brand != "" {
		line.Brand = brand
	}

	items = append(items[:i], items[i+1:]...)
	if j := findLine(items, line.Key()); j >= 0 {
		items[j].Quantity += line.Quantity
	} else {
		// keep the edited line at its original position
		items = append(items, LineItem{})
		copy(items[i+1:], items[i:])
		items[i] = line
	}
	c.store.Set(items)
	return items
}

// Clear empties the cart and returns the empty list.
func (c *Cart) Clear() []LineItem {
	c.store.Clear()
	return nil
}

func findLine(items []LineItem, key VariantKey) int {
	for i, it := range items {
		if it.Key() == key {
			return i
		}
	}
	return -1
}
