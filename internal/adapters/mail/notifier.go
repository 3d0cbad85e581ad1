// Package mail sends booking confirmation emails over SMTP.
package mail

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"mime"
	"mime/multipart"
	"net"
	"net/smtp"
	"net/textproto"
	"strconv"
	"strings"
	"time"

	"github.com/DanielPopoola/tourvista-payments/internal/config"
	"github.com/DanielPopoola/tourvista-payments/internal/core/domain"
	"github.com/DanielPopoola/tourvista-payments/internal/core/ports"
)

// SendFunc matches smtp.SendMail.
type SendFunc func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error

type Notifier struct {
	cfg    config.MailConfig
	send   SendFunc
	logger *slog.Logger
	now    func() time.Time
}

func NewNotifier(cfg config.MailConfig, logger *slog.Logger) *Notifier {
	return &Notifier{
		cfg:    cfg,
		send:   smtp.SendMail,
		logger: logger,
		now:    time.Now,
	}
}

// WithSender replaces the SMTP transport.
func (n *Notifier) WithSender(send SendFunc) *Notifier {
	n.send = send
	return n
}

func (n *Notifier) NotifyBookingConfirmed(ctx context.Context, notice ports.ConfirmationNotice) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !n.cfg.Enabled {
		n.logger.Debug("mail disabled, skipping confirmation email", "booking_id", notice.Event.BookingID)
		return nil
	}
	if notice.Customer == nil || notice.Customer.Email == "" {
		return domain.NewMissingRequiredFieldError("customer email")
	}

	msg, err := n.buildMessage(notice)
	if err != nil {
		return fmt.Errorf("build confirmation email: %w", err)
	}

	addr := net.JoinHostPort(n.cfg.Host, strconv.Itoa(n.cfg.Port))
	var auth smtp.Auth
	if n.cfg.Username != "" {
		auth = smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.Host)
	}

	if err := n.send(addr, auth, n.cfg.From, []string{notice.Customer.Email}, msg); err != nil {
		return fmt.Errorf("send confirmation email: %w", err)
	}

	n.logger.Info("confirmation email sent",
		"booking_id", notice.Event.BookingID,
		"to", notice.Customer.Email)
	return nil
}

func (n *Notifier) buildMessage(notice ports.ConfirmationNotice) ([]byte, error) {
	ev := notice.Event
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	header := []struct{ k, v string }{
		{"From", n.cfg.From},
		{"To", notice.Customer.Email},
		{"Subject", mime.QEncoding.Encode("utf-8", fmt.Sprintf("%s booking #%d confirmed", n.cfg.CompanyName, ev.BookingID))},
		{"Date", n.now().Format(time.RFC1123Z)},
		{"MIME-Version", "1.0"},
		{"Content-Type", "multipart/mixed; boundary=" + w.Boundary()},
	}
	for _, h := range header {
		fmt.Fprintf(&buf, "%s: %s\r\n", h.k, h.v)
	}
	buf.WriteString("\r\n")

	body, err := w.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {"text/plain; charset=utf-8"},
		"Content-Transfer-Encoding": {"8bit"},
	})
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(body, "Dear %s,\r\n\r\n", notice.Customer.FullName())
	fmt.Fprintf(body, "Your booking #%d is confirmed.\r\n", ev.BookingID)
	fmt.Fprintf(body, "Amount paid: %s %s\r\n", domain.FromMinorUnits(ev.MinorAmount).StringFixed(2), ev.Currency)
	fmt.Fprintf(body, "Payment reference: %s\r\n\r\n", ev.TransactionRef)
	fmt.Fprintf(body, "Your invoice is attached.\r\n\r\n%s\r\n", n.cfg.CompanyName)

	if len(notice.Invoice) > 0 {
		filename := fmt.Sprintf("invoice-%s.pdf", ev.PaymentID)
		att, err := w.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {"application/pdf"},
			"Content-Transfer-Encoding": {"base64"},
			"Content-Disposition":       {mime.FormatMediaType("attachment", map[string]string{"filename": filename})},
		})
		if err != nil {
			return nil, err
		}
		if _, err := att.Write([]byte(wrapBase64(notice.Invoice))); err != nil {
			return nil, err
		}
	}

	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// wrapBase64 encodes data in 76 character lines.
func wrapBase64(data []byte) string {
	enc := base64.StdEncoding.EncodeToString(data)
	var sb strings.Builder
	for len(enc) > 76 {
		sb.WriteString(enc[:76])
		sb.WriteString("\r\n")
		enc = enc[76:]
	}
	sb.WriteString(enc)
	sb.WriteString("\r\n")
	return sb.String()
}
