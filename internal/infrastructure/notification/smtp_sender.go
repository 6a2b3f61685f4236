package notification

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"clinic-booking-api/config"

	"github.com/sony/gobreaker/v2"
)

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPSender mails confirmations. A circuit breaker stops hammering a dead
// server: after consecutiveFailures errors sends fail fast until openTimeout.
type SMTPSender struct {
	addr     string
	from     string
	auth     smtp.Auth
	breaker  *gobreaker.CircuitBreaker[struct{}]
	sendMail sendMailFunc
}

const (
	consecutiveFailures = 5
	openTimeout         = 30 * time.Second
)

func NewSMTPSender(cfg config.SMTPConfig) *SMTPSender {
	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}

	return &SMTPSender{
		addr: net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		from: cfg.From,
		auth: auth,
		breaker: gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
			Name:        "smtp",
			MaxRequests: 1,
			Timeout:     openTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= consecutiveFailures
			},
		}),
		sendMail: smtp.SendMail,
	}
}

func (s *SMTPSender) Send(ctx context.Context, c Confirmation) error {
	if c.Email == "" {
		return errors.New("confirmation has no recipient")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	_, err := s.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, s.sendMail(s.addr, s.auth, s.from, []string{c.Email}, s.message(c))
	})
	if err != nil {
		return fmt.Errorf("smtp send to %s: %w", c.Email, err)
	}
	return nil
}

func (s *SMTPSender) message(c Confirmation) []byte {
	var b strings.Builder
	b.WriteString("From: " + s.from + "\r\n")
	b.WriteString("To: " + c.Email + "\r\n")
	b.WriteString("Subject: " + c.Subject() + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(c.Body())
	return []byte(b.String())
}

func (s *SMTPSender) Close() error {
	return nil
}
