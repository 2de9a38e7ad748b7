package mailer

import (
	"errors"
	"fmt"
	"log"
	"net/smtp"
	"strings"
)

// ErrBadHeader is returned when the recipient or subject would inject a
// header into the message, so the caller can report it as a client error
// rather than a transport failure.
var ErrBadHeader = errors.New("invalid header field")

type Mailer interface {
	Send(to, subject, body string) error
}

type SMTPMailer struct {
	addr string
	from string
}

func NewSMTPMailer(host, port, from string) *SMTPMailer {
	return &SMTPMailer{
		addr: fmt.Sprintf("%s:%s", host, port),
		from: from,
	}
}

func (m *SMTPMailer) Send(to, subject, body string) error {
	if containsHeaderBreak(to) || containsHeaderBreak(subject) {
		return ErrBadHeader
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		m.from, to, subject, body)

	if err := smtp.SendMail(m.addr, nil, m.from, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}
	return nil
}

func containsHeaderBreak(s string) bool {
	return strings.ContainsAny(s, "\r\n")
}

// LogMailer writes messages to the process log. It stands in for SMTP in
// development when no mail host is configured.
type LogMailer struct{}

func (LogMailer) Send(to, subject, body string) error {
	if containsHeaderBreak(to) || containsHeaderBreak(subject) {
		return ErrBadHeader
	}
	log.Printf("mail to=%s subject=%q body=%q", to, subject, body)
	return nil
}
