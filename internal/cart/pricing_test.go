package cart

import (
	"math"
	"testing"
)

func TestEffectivePriceTiers(t *testing.T) {
	const base = 68000.0
	cases := []struct {
		quantity int
		want     float64
	}{
		{0, base},
		{1, base},
		{2, base * 0.95},
		{3, base * 0.92},
		{4, base * 0.90},
		{5, base}, // no discount above four
		{10, base},
		{-1, base},
	}
	for _, tc := range cases {
		got := EffectivePrice(base, tc.quantity)
		if got != tc.want {
			t.Errorf("EffectivePrice(%v, %d) = %v, want %v", base, tc.quantity, got, tc.want)
		}
	}
}

func TestLineTotal(t *testing.T) {
	got := LineTotal(68000, 2)
	want := 68000 * 0.95 * 2
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("LineTotal(68000, 2) = %v, want %v", got, want)
	}
}

func TestCartTotalAndItemCount(t *testing.T) {
	items := []LineItem{
		{ProductID: "1", Price: 68000, Quantity: 2},
		{ProductID: "2", Price: 15000, Quantity: 1},
		{ProductID: "3", Price: 20000, Quantity: 5},
	}
	want := 68000*0.95*2 + 15000 + 20000*5
	if got := CartTotal(items); math.Abs(got-want) > 1e-9 {
		t.Fatalf("CartTotal = %v, want %v", got, want)
	}
	if got := ItemCount(items); got != 8 {
		t.Fatalf("ItemCount = %d, want 8", got)
	}
}

func TestCartTotalEmpty(t *testing.T) {
	if got := CartTotal(nil); got != 0 {
		t.Fatalf("CartTotal(nil) = %v, want 0", got)
	}
}
