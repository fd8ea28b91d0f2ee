// Package notify delivers failure notifications over SMTP. Delivery
// errors are the caller's to log; they must never affect job state.
package notify

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"
)

// Notifier is the outbound notification contract. The core only decides
// recipients and message; delivery mechanics live behind this interface.
type Notifier interface {
	Send(ctx context.Context, recipients []string, subject, body string) error
}

// SMTPNotifier sends plain-text mail through a single SMTP account.
type SMTPNotifier struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPNotifier(host string, port int, user, pass string) *SMTPNotifier {
	return &SMTPNotifier{
		dialer: gomail.NewDialer(host, port, user, pass),
		from:   user,
	}
}

var _ Notifier = (*SMTPNotifier)(nil)

func (n *SMTPNotifier) Send(ctx context.Context, recipients []string, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(recipients) == 0 {
		return fmt.Errorf("no recipients")
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", recipients...)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := n.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}
