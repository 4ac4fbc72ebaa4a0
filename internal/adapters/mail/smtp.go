package mail

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	netmail "net/mail"
	"net/smtp"
	"strings"
	"time"

	"github.com/jordan-wright/email"

	"petlink/internal/domain/reminders"
)

const DefaultSMTPTimeout = 30 * time.Second

type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	// Timeout acota una entrega completa (dial + diálogo SMTP).
	// <= 0 usa DefaultSMTPTimeout.
	Timeout time.Duration
}

// SMTPSender entrega recordatorios vía SMTP (PLAIN auth si hay usuario).
type SMTPSender struct {
	host    string
	addr    string
	auth    smtp.Auth
	timeout time.Duration
}

func NewSMTPSender(cfg SMTPConfig) (*SMTPSender, error) {
	host := strings.TrimSpace(cfg.Host)
	if host == "" {
		return nil, fmt.Errorf("mail: smtp host is required")
	}
	port := strings.TrimSpace(cfg.Port)
	if port == "" {
		port = "587"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultSMTPTimeout
	}

	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, host)
	}

	return &SMTPSender{
		host:    host,
		addr:    net.JoinHostPort(host, port),
		auth:    auth,
		timeout: cfg.Timeout,
	}, nil
}

func (s *SMTPSender) Send(ctx context.Context, msg reminders.Message) error {
	if err := checkHeaders(msg); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	e := email.NewEmail()
	e.From = msg.From
	e.To = append([]string(nil), msg.To...)
	e.Subject = msg.Subject
	e.Text = []byte(msg.Body)

	raw, err := e.Bytes()
	if err != nil {
		return fmt.Errorf("mail: build message: %w", err)
	}
	from, err := envelopeAddr(msg.From)
	if err != nil {
		return err
	}
	to := make([]string, 0, len(msg.To))
	for _, addr := range msg.To {
		rcpt, err := envelopeAddr(addr)
		if err != nil {
			return err
		}
		to = append(to, rcpt)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.deliver(ctx, from, to, raw); err != nil {
		return fmt.Errorf("mail: smtp send to %s: %w", s.addr, err)
	}
	return nil
}

// deliver corre el diálogo SMTP sobre una conexión atada a ctx: el
// deadline del contexto vale para cada lectura/escritura y la cancelación
// corta la conexión.
func (s *SMTPSender) deliver(ctx context.Context, from string, to []string, raw []byte) error {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", s.addr)
	if err != nil {
		return err
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}
	stop := context.AfterFunc(ctx, func() { _ = conn.SetDeadline(time.Now()) })
	defer stop()

	c, err := smtp.NewClient(conn, s.host)
	if err != nil {
		_ = conn.Close()
		return err
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: s.host}); err != nil {
			return err
		}
	}
	if s.auth != nil {
		if ok, _ := c.Extension("AUTH"); !ok {
			return errors.New("server does not support AUTH")
		}
		if err := c.Auth(s.auth); err != nil {
			return err
		}
	}

	if err := c.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := c.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(raw); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return c.Quit()
}

// envelopeAddr extrae la dirección desnuda de "Nombre <addr>".
func envelopeAddr(s string) (string, error) {
	a, err := netmail.ParseAddress(s)
	if err != nil {
		return "", fmt.Errorf("mail: address %q: %w", s, reminders.ErrBadHeader)
	}
	return a.Address, nil
}

// checkHeaders rechaza CR/LF en los campos que terminan como headers.
func checkHeaders(msg reminders.Message) error {
	if len(msg.To) == 0 {
		return fmt.Errorf("mail: no recipients: %w", reminders.ErrBadHeader)
	}
	fields := append([]string{msg.From, msg.Subject}, msg.To...)
	for _, f := range fields {
		if strings.ContainsAny(f, "\r\n") {
			return fmt.Errorf("mail: header %q: %w", f, reminders.ErrBadHeader)
		}
	}
	return nil
}
