package notify

import (
	"context"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/guonaihong/gout"
	"go.uber.org/zap"

	"github.com/eliotaldersonfsociety/tienlatoree/internal/domain"
	"github.com/eliotaldersonfsociety/tienlatoree/internal/order"
)

// Notifier fans order events out to the customer mailbox and an optional
// fulfillment webhook. It runs entirely off the checkout path; a failed
// notification never fails an order.
type Notifier struct {
	mailer     *Mailer
	webhookURL string
}

func NewNotifier(mailer *Mailer, webhookURL string) *Notifier {
	return &Notifier{mailer: mailer, webhookURL: webhookURL}
}

// Attach subscribes the notifier to order events on the bus.
func (n *Notifier) Attach(bus EventBus.Bus) error {
	return bus.SubscribeAsync(order.TopicCreated, n.onOrderCreated, false)
}

func (n *Notifier) onOrderCreated(o *domain.Order) {
	defer func() {
		if r := recover(); r != nil {
			zap.S().Errorf("order notification panic: %v", r)
		}
	}()
	if n.mailer != nil {
		n.mailer.SendOrderConfirmation(o)
	}
	n.postWebhook(o)
}

func (n *Notifier) postWebhook(o *domain.Order) {
	if n.webhookURL == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var code int
	err := gout.POST(n.webhookURL).
		WithContext(ctx).
		SetJSON(gout.H{
			"event":          "order.created",
			"order_id":       o.ID,
			"email":          o.CustomerEmail,
			"total":          o.Total,
			"payment_method": o.PaymentMethod,
			"status":         o.Status,
		}).
		Code(&code).
		Do()
	if err != nil || code >= 300 {
		zap.L().Error("order webhook failed",
			zap.Int64("order_id", o.ID), zap.Int("code", code), zap.Error(err))
		return
	}
	zap.L().Info("order webhook delivered", zap.Int64("order_id", o.ID))
}
