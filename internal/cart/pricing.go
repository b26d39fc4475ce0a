package cart

// Quantity discount tiers. Quantities outside the table, including five
// and above, pay the base price; that boundary matches the storefront's
// current behavior and is left for the product team to change.
const (
	tierTwoMultiplier   = 0.95
	tierThreeMultiplier = 0.92
	tierFourMultiplier  = 0.90
)

// EffectivePrice returns the discounted unit price for a line at the given
// quantity. Pure function, no I/O.
func EffectivePrice(basePrice float64, quantity int) float64 {
	switch quantity {
	case 2:
		return basePrice * tierTwoMultiplier
	case 3:
		return basePrice * tierThreeMultiplier
	case 4:
		return basePrice * tierFourMultiplier
	}
	return basePrice
}

// LineTotal returns the effective unit price times quantity.
func LineTotal(basePrice float64, quantity int) float64 {
	return EffectivePrice(basePrice, quantity) * float64(quantity)
}

// CartTotal sums the line totals of all items.
func CartTotal(items []LineItem) float64 {
	var sum float64
	for _, it := range items {
		sum += LineTotal(it.Price, it.Quantity)
	}
	return sum
}

// ItemCount sums the quantities of all items.
func ItemCount(items []LineItem) int {
	var n int
	for _, it := range items {
		n += it.Quantity
	}
	return n
}
