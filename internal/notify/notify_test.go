package notify

import (
	"strings"
	"testing"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/eliotaldersonfsociety/tienlatoree/config"
	"github.com/eliotaldersonfsociety/tienlatoree/internal/domain"
)

func TestFormatCOP(t *testing.T) {
	cases := map[float64]string{
		68000:  "68.000",
		129200: "129.200",
		15000:  "15.000",
		0:      "0",
	}
	for amount, grouped := range cases {
		got := FormatCOP(amount)
		if !strings.Contains(got, grouped) {
			t.Errorf("FormatCOP(%v) = %q, want grouping %q", amount, got, grouped)
		}
		if !strings.HasPrefix(got, "$") || !strings.HasSuffix(got, "COP") {
			t.Errorf("FormatCOP(%v) = %q, want $... COP", amount, got)
		}
	}
}

func newTestMailer(t *testing.T) (*Mailer, chan *gomail.Message) {
	t.Helper()
	m, err := NewMailer(config.MailConfig{
		Host:  "smtp.test",
		Port:  587,
		From:  "tienda@latoree.co",
		Inbox: "ventas@latoree.co",
	})
	if err != nil {
		t.Fatalf("new mailer: %v", err)
	}
	t.Cleanup(m.Close)

	sent := make(chan *gomail.Message, 4)
	m.dial = func(msg *gomail.Message) error {
		sent <- msg
		return nil
	}
	return m, sent
}

func waitMail(t *testing.T, sent chan *gomail.Message) *gomail.Message {
	t.Helper()
	select {
	case msg := <-sent:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("mail was not dispatched")
		return nil
	}
}

func TestOrderConfirmationMail(t *testing.T) {
	m, sent := newTestMailer(t)

	m.SendOrderConfirmation(&domain.Order{
		ID:            42,
		CustomerEmail: "a@b.com",
		CustomerName:  "Ana",
		Total:         129200,
		Status:        domain.OrderStatusPending,
		Address:       "Calle 1",
		City:          "Bogotá",
		Items: []domain.OrderItem{
			{Name: "Camiseta", Price: 64600, Quantity: 2, Color: "negro", Size: "M"},
		},
	})

	msg := waitMail(t, sent)
	if got := msg.GetHeader("To"); len(got) != 1 || got[0] != "a@b.com" {
		t.Fatalf("wrong recipient: %v", got)
	}
	if got := msg.GetHeader("Subject"); len(got) != 1 || !strings.Contains(got[0], "#42") {
		t.Fatalf("subject must carry the order number: %v", got)
	}
}

func TestContactMessageGoesToInbox(t *testing.T) {
	m, sent := newTestMailer(t)
	m.ForwardContactMessage("Ana", "a@b.com", "hola")
	msg := waitMail(t, sent)
	if got := msg.GetHeader("To"); len(got) != 1 || got[0] != "ventas@latoree.co" {
		t.Fatalf("contact mail must go to the shop inbox: %v", got)
	}
}

func TestMailSkippedWithoutRecipientOrHost(t *testing.T) {
	m, sent := newTestMailer(t)
	m.SendPasswordReset("", "https://x/reset")

	unconfigured, err := NewMailer(config.MailConfig{})
	if err != nil {
		t.Fatalf("new mailer: %v", err)
	}
	t.Cleanup(unconfigured.Close)
	unconfigured.dial = m.dial
	unconfigured.SendPasswordReset("a@b.com", "https://x/reset")

	select {
	case <-sent:
		t.Fatal("no mail should be dispatched")
	case <-time.After(100 * time.Millisecond):
	}
}
