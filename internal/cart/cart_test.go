package cart

import (
	"testing"

	"github.com/eliotaldersonfsociety/tienlatoree/internal/domain"
)

func newTestCart() *Cart {
	return New(NewStore(NewMemoryKV()))
}

var shirt = domain.Product{
	ID:       "1",
	Name:     "Camiseta deportiva",
	Price:    68000,
	Image:    "/n1.webp",
	Category: "Deportivos",
}

func TestAddMergesIdenticalVariantKeys(t *testing.T) {
	c := newTestCart()
	c.Add(shirt, 1, "Negro", "M", "")
	c.Add(shirt, 2, "Negro", "M", "")
	c.Add(shirt, 1, "Negro", "M", "")

	items := c.Items()
	if len(items) != 1 {
		t.Fatalf("expected one merged line, got %d", len(items))
	}
	if items[0].Quantity != 4 {
		t.Fatalf("expected merged quantity 4, got %d", items[0].Quantity)
	}
}

func TestAddDistinctVariantsStayDistinct(t *testing.T) {
	c := newTestCart()
	c.Add(shirt, 1, "Negro", "M", "")
	c.Add(shirt, 1, "Blanco", "M", "")
	c.Add(shirt, 1, "Negro", "L", "")

	if got := len(c.Items()); got != 3 {
		t.Fatalf("expected 3 distinct lines, got %d", got)
	}
}

func TestAddSnapshotsProductAtCallTime(t *testing.T) {
	c := newTestCart()
	c.Add(shirt, 1, "", "", "")

	items := c.Items()
	if items[0].Name != shirt.Name || items[0].Price != shirt.Price || items[0].Image != shirt.Image {
		t.Fatalf("line is not a faithful product snapshot: %+v", items[0])
	}
}

func TestAddNormalizesInvalidInput(t *testing.T) {
	c := newTestCart()
	c.Add(shirt, 0, "", "", "")
	if items := c.Items(); len(items) != 1 || items[0].Quantity != 1 {
		t.Fatalf("quantity 0 should degrade to 1, got %+v", items)
	}

	before := len(c.Items())
	c.Add(domain.Product{ID: "  "}, 1, "", "", "")
	if got := len(c.Items()); got != before {
		t.Fatalf("empty product id should be a no-op, cart grew to %d lines", got)
	}
}

func TestUpdateQuantityRemovesAtZeroOrBelow(t *testing.T) {
	for _, q := range []int{0, -1, -100} {
		c := newTestCart()
		c.Add(shirt, 2, "Negro", "", "")
		c.UpdateQuantity(VariantKey{ProductID: "1", Color: "Negro"}, q)
		if got := len(c.Items()); got != 0 {
			t.Fatalf("quantity %d should remove the line, %d lines remain", q, got)
		}
	}
}

func TestUpdateQuantitySetsExactValue(t *testing.T) {
	c := newTestCart()
	c.Add(shirt, 1, "", "", "")
	c.UpdateQuantity(VariantKey{ProductID: "1"}, 3)
	if items := c.Items(); items[0].Quantity != 3 {
		t.Fatalf("expected quantity 3, got %d", items[0].Quantity)
	}
}

func TestRemoveByVariantKeyKeepsOtherVariants(t *testing.T) {
	c := newTestCart()
	c.Add(shirt, 1, "Negro", "", "")
	c.Add(shirt, 1, "Blanco", "", "")

	c.Remove(VariantKey{ProductID: "1", Color: "Negro"})
	items := c.Items()
	if len(items) != 1 || items[0].Color != "Blanco" {
		t.Fatalf("removing one variant must not touch the others: %+v", items)
	}
}

func TestRemoveProductRemovesAllVariants(t *testing.T) {
	c := newTestCart()
	c.Add(shirt, 1, "Negro", "", "")
	c.Add(shirt, 1, "Blanco", "", "")
	c.Add(domain.Product{ID: "2", Name: "Short", Price: 20000}, 1, "", "", "")

	c.RemoveProduct("1")
	items := c.Items()
	if len(items) != 1 || items[0].ProductID != "2" {
		t.Fatalf("RemoveProduct must drop every variant of the product: %+v", items)
	}
}

func TestUpdateAttributesReKeysLine(t *testing.T) {
	c := newTestCart()
	c.Add(shirt, 2, "Negro", "M", "")

	c.UpdateAttributes(VariantKey{ProductID: "1", Color: "Negro", Size: "M"}, "Blanco", "", "")
	items := c.Items()
	if len(items) != 1 {
		t.Fatalf("expected one line, got %d", len(items))
	}
	if items[0].Color != "Blanco" || items[0].Size != "M" || items[0].Quantity != 2 {
		t.Fatalf("attribute edit lost state: %+v", items[0])
	}
	// the edited line must be addressable by its new key
	c.UpdateQuantity(VariantKey{ProductID: "1", Color: "Blanco", Size: "M"}, 5)
	if c.Items()[0].Quantity != 5 {
		t.Fatal("line not reachable under its new composite key")
	}
}

func TestUpdateAttributesMergesOnKeyCollision(t *testing.T) {
	c := newTestCart()
	c.Add(shirt, 2, "Negro", "", "")
	c.Add(shirt, 3, "Blanco", "", "")

	c.UpdateAttributes(VariantKey{ProductID: "1", Color: "Negro"}, "Blanco", "", "")
	items := c.Items()
	if len(items) != 1 {
		t.Fatalf("colliding keys must merge into one line, got %d", len(items))
	}
	if items[0].Quantity != 5 {
		t.Fatalf("expected merged quantity 5, got %d", items[0].Quantity)
	}
}

func TestUpdateAttributesMissingLineIsNoop(t *testing.T) {
	c := newTestCart()
	c.Add(shirt, 1, "Negro", "", "")
	before := c.Items()
	after := c.UpdateAttributes(VariantKey{ProductID: "no-such"}, "Rojo", "", "")
	if len(after) != len(before) {
		t.Fatalf("editing an absent line must not change the cart")
	}
}

func TestClearEmptiesStore(t *testing.T) {
	c := newTestCart()
	c.Add(shirt, 2, "", "", "")
	c.Clear()
	if got := len(c.Items()); got != 0 {
		t.Fatalf("expected empty cart after Clear, got %d lines", got)
	}
}

func TestCartPreservesInsertionOrder(t *testing.T) {
	c := newTestCart()
	for _, id := range []string{"3", "1", "2"} {
		c.Add(domain.Product{ID: id, Name: id, Price: 1000}, 1, "", "", "")
	}
	items := c.Items()
	for i, want := range []string{"3", "1", "2"} {
		if items[i].ProductID != want {
			t.Fatalf("order not preserved: %+v", items)
		}
	}
}
