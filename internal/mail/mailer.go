package mail

import (
	"context"
	"fmt"
	"log"
	"net/smtp"
	"strings"
)

// Mailer is the outbound email collaborator. Sends are best-effort:
// callers commit their state transition before dispatching and never
// roll back on delivery failure.
type Mailer interface {
	SendVerification(ctx context.Context, to, verifyURL string) error
	SendPasswordReset(ctx context.Context, to, resetURL string) error
	SendPurchaseConfirmation(ctx context.Context, to, title, role string) error
}

// SMTPMailer sends mail through a plain SMTP relay.
type SMTPMailer struct {
	addr string
	auth smtp.Auth
	from string
}

// NewSMTPMailer creates a mailer for the given relay. Auth is omitted
// when user is empty (e.g. a local test relay).
func NewSMTPMailer(host, port, user, password, from string) *SMTPMailer {
	var auth smtp.Auth
	if user != "" {
		auth = smtp.PlainAuth("", user, password, host)
	}
	return &SMTPMailer{
		addr: host + ":" + port,
		auth: auth,
		from: from,
	}
}

func (m *SMTPMailer) send(to, subject, body string) error {
	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", m.from)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n")
	msg.WriteString(body)

	if err := smtp.SendMail(m.addr, m.auth, m.from, []string{to}, []byte(msg.String())); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}

// SendVerification emails an account verification link.
func (m *SMTPMailer) SendVerification(ctx context.Context, to, verifyURL string) error {
	body := fmt.Sprintf(`<h2>Welcome!</h2>
<p>Click below to verify your account:</p>
<a href="%s">%s</a>
<p>This link will expire in 30 minutes.</p>`, verifyURL, verifyURL)
	return m.send(to, "Verify your Papyrus account", body)
}

// SendPasswordReset emails a password reset link.
func (m *SMTPMailer) SendPasswordReset(ctx context.Context, to, resetURL string) error {
	body := fmt.Sprintf(`<p>We received a request to reset your password.</p>
<a href="%s">%s</a>
<p>This link will expire in 30 minutes. If you did not request a reset, ignore this email.</p>`, resetURL, resetURL)
	return m.send(to, "Reset your Papyrus password", body)
}

// SendPurchaseConfirmation emails a purchase notification to a buyer or seller.
func (m *SMTPMailer) SendPurchaseConfirmation(ctx context.Context, to, title, role string) error {
	var body string
	if role == "seller" {
		body = fmt.Sprintf("<p>Your listing %q has been sold. The sale amount was credited to your balance.</p>", title)
	} else {
		body = fmt.Sprintf("<p>You purchased %q. The amount was debited from your balance.</p>", title)
	}
	return m.send(to, "Papyrus purchase confirmation", body)
}

// LogMailer logs outbound mail instead of sending it. Used when no SMTP
// relay is configured, so local runs still show the embedded links.
type LogMailer struct{}

// SendVerification logs the verification link.
func (LogMailer) SendVerification(ctx context.Context, to, verifyURL string) error {
	log.Printf("mail (verification) to=%s url=%s", to, verifyURL)
	return nil
}

// SendPasswordReset logs the reset link.
func (LogMailer) SendPasswordReset(ctx context.Context, to, resetURL string) error {
	log.Printf("mail (password reset) to=%s url=%s", to, resetURL)
	return nil
}

// SendPurchaseConfirmation logs the purchase notification.
func (LogMailer) SendPurchaseConfirmation(ctx context.Context, to, title, role string) error {
	log.Printf("mail (purchase %s) to=%s title=%q", role, to, title)
	return nil
}
