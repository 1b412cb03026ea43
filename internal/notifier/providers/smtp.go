package providers

import (
	"fmt"
	"net/smtp"
	"strings"
)

const mimeBoundary = "tollgate-digest-part"

// SMTPSender delivers digest emails over plain-auth SMTP.
type SMTPSender struct {
	host     string
	port     int
	username string
	password string
	from     string
}

// NewSMTPSender creates an SMTP sender.
func NewSMTPSender(host string, port int, username, password, from string) *SMTPSender {
	return &SMTPSender{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
	}
}

// Send delivers a multipart/alternative message with plain and HTML parts.
func (s *SMTPSender) Send(to, subject, htmlBody, plainBody string) error {
	msg := buildMessage(s.from, to, subject, htmlBody, plainBody)

	addr := fmt.Sprintf("%s:%d", s.host, s.port)
	auth := smtp.PlainAuth("", s.username, s.password, s.host)
	if err := smtp.SendMail(addr, auth, s.from, []string{to}, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func buildMessage(from, to, subject, htmlBody, plainBody string) []byte {
	lines := []string{
		"From: " + from,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		`Content-Type: multipart/alternative; boundary="` + mimeBoundary + `"`,
		"",
		"--" + mimeBoundary,
		`Content-Type: text/plain; charset="utf-8"`,
		"",
		plainBody,
		"--" + mimeBoundary,
		`Content-Type: text/html; charset="utf-8"`,
		"",
		htmlBody,
		"--" + mimeBoundary + "--",
		"",
	}
	return []byte(strings.Join(lines, "\r\n"))
}
