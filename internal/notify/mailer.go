package notify

import (
	"fmt"
	"strings"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
	"gopkg.in/gomail.v2"

	"github.com/eliotaldersonfsociety/tienlatoree/config"
	"github.com/eliotaldersonfsociety/tienlatoree/internal/domain"
)

var copPrinter = message.NewPrinter(language.MustParse("es-CO"))

// FormatCOP renders an amount the way the storefront shows prices,
// thousands-grouped Colombian pesos without cents.
func FormatCOP(amount float64) string {
	return copPrinter.Sprintf("$%v COP", number.Decimal(amount, number.MaxFractionDigits(0)))
}

// Mailer sends transactional mail off the request path through a small
// worker pool. Send failures are logged, never surfaced to the customer.
type Mailer struct {
	cfg  config.MailConfig
	pool *ants.Pool
	// dial is swappable for tests
	dial func(m *gomail.Message) error
}

func NewMailer(cfg config.MailConfig) (*Mailer, error) {
	pool, err := ants.NewPool(4)
	if err != nil {
		return nil, err
	}
	m := &Mailer{cfg: cfg, pool: pool}
	m.dial = func(msg *gomail.Message) error {
		d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
		return d.DialAndSend(msg)
	}
	return m, nil
}

func (m *Mailer) Close() {
	if m.pool != nil {
		m.pool.Release()
	}
}

func (m *Mailer) submit(to, subject, body string) {
	if m.cfg.Host == "" || to == "" {
		return
	}
	task := func() {
		defer func() {
			if r := recover(); r != nil {
				zap.S().Errorf("mail task panic: %v", r)
			}
		}()
		msg := gomail.NewMessage()
		msg.SetHeader("From", m.cfg.From)
		msg.SetHeader("To", to)
		msg.SetHeader("Subject", subject)
		msg.SetBody("text/html", body)
		if err := m.dial(msg); err != nil {
			zap.L().Error("send mail failed", zap.String("to", to), zap.Error(err))
			return
		}
		zap.L().Info("mail sent", zap.String("to", to), zap.String("subject", subject))
	}
	if err := m.pool.Submit(task); err != nil {
		zap.L().Error("mail pool rejected task", zap.Error(err))
	}
}

// SendOrderConfirmation mails the customer their order summary.
func (m *Mailer) SendOrderConfirmation(o *domain.Order) {
	var lines strings.Builder
	for _, it := range o.Items {
		variant := ""
		if it.Color != "" || it.Size != "" {
			variant = fmt.Sprintf(" (%s %s)", it.Color, it.Size)
		}
		fmt.Fprintf(&lines, "<li>%d x %s%s &mdash; %s</li>", it.Quantity, it.Name, variant, FormatCOP(it.Price*float64(it.Quantity)))
	}
	body := fmt.Sprintf(`<h2>Gracias por tu compra, %s</h2>
<p>Tu pedido #%d fue recibido y está en estado <b>%s</b>.</p>
<ul>%s</ul>
<p>Total: <b>%s</b></p>
<p>Envío a %s, %s.</p>`,
		o.CustomerName, o.ID, o.Status, lines.String(), FormatCOP(o.Total), o.Address, o.City)
	m.submit(o.CustomerEmail, fmt.Sprintf("Confirmación de pedido #%d", o.ID), body)
}

// SendTempPassword mails the credentials generated for an auto-registered
// guest.
func (m *Mailer) SendTempPassword(email, password string) {
	body := fmt.Sprintf(`<p>Creamos una cuenta para ti con tu compra.</p>
<p>Usuario: <b>%s</b><br/>Contraseña temporal: <b>%s</b></p>
<p>Cámbiala después de iniciar sesión.</p>`, email, password)
	m.submit(email, "Tu cuenta en La Toree", body)
}

// SendPasswordReset mails a reset link built from the single-use token.
func (m *Mailer) SendPasswordReset(email, resetURL string) {
	body := fmt.Sprintf(`<p>Recibimos una solicitud para restablecer tu contraseña.</p>
<p><a href="%s">Restablecer contraseña</a></p>
<p>El enlace vence en una hora. Si no fuiste tú, ignora este correo.</p>`, resetURL)
	m.submit(email, "Restablece tu contraseña", body)
}

// ForwardContactMessage relays a storefront contact-form submission to the
// shop inbox.
func (m *Mailer) ForwardContactMessage(name, email, msg string) {
	body := fmt.Sprintf(`<p><b>%s</b> (%s) escribió:</p><blockquote>%s</blockquote>`, name, email, msg)
	m.submit(m.cfg.Inbox, "Nuevo mensaje de contacto", body)
}
