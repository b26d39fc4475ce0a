package order

import (
	"github.com/pkg/errors"

	"github.com/eliotaldersonfsociety/tienlatoree/internal/domain"
)

var ErrInvalidTransition = errors.New("invalid order status transition")

// Admin driven lifecycle. Shipped and cancelled are terminal.
var transitions = map[string][]string{
	domain.OrderStatusPending:   {domain.OrderStatusConfirmed, domain.OrderStatusCancelled},
	domain.OrderStatusConfirmed: {domain.OrderStatusShipped, domain.OrderStatusCancelled},
	domain.OrderStatusShipped:   {},
	domain.OrderStatusCancelled: {},
}

// CanTransition reports whether an order may move from one status to
// another.
func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are possible.
func IsTerminal(status string) bool {
	return len(transitions[status]) == 0
}

// ValidStatus reports whether s is a known order status.
func ValidStatus(s string) bool {
	_, ok := transitions[s]
	return ok
}
