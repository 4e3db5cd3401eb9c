// Package email delivers booking confirmations.
package email

import (
	"context"
	"fmt"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/Domenick1991/flightbooking/config"
	"github.com/Domenick1991/flightbooking/internal/logger"
)

const ConfirmationSubject = "Ticket Booking Confirmation"

type Message struct {
	From    string
	To      string
	Subject string
	Body    string
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPSender sends plain-text mail through an SMTP relay.
type SMTPSender struct {
	addr     string
	auth     smtp.Auth
	sendMail sendMailFunc
}

func NewSMTPSender(cfg config.EmailConfig) *SMTPSender {
	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.SMTPHost)
	}
	return &SMTPSender{
		addr:     cfg.SMTPHost + ":" + strconv.Itoa(cfg.SMTPPort),
		auth:     auth,
		sendMail: smtp.SendMail,
	}
}

func (s *SMTPSender) Send(_ context.Context, msg Message) error {
	if err := s.sendMail(s.addr, s.auth, msg.From, []string{msg.To}, render(msg)); err != nil {
		return fmt.Errorf("send mail to %s: %w", msg.To, err)
	}
	return nil
}

func render(msg Message) []byte {
	var b strings.Builder
	b.WriteString("From: " + msg.From + "\r\n")
	b.WriteString("To: " + msg.To + "\r\n")
	b.WriteString("Subject: " + msg.Subject + "\r\n")
	b.WriteString("MIME-version: 1.0;\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\";\r\n\r\n")
	b.WriteString(msg.Body)
	return []byte(b.String())
}

// LogSender only logs the message; used when no SMTP host is configured.
type LogSender struct {
	log *logger.Logger
}

func NewLogSender(log *logger.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Send(_ context.Context, msg Message) error {
	s.log.Infof("email", "to=%s subject=%q\n%s", msg.To, msg.Subject, msg.Body)
	return nil
}
