package mailer

import (
	"fmt"
	"html"
	"strings"
	"time"

	"gopkg.in/gomail.v2"
)

// ExhaustedAlert describes a document that stopped being retried.
type ExhaustedAlert struct {
	DocumentId   string
	DocumentType string
	RetryCount   int
	Error        string
	OccurredAt   time.Time
}

type IEmailService interface {
	SendExhaustedAlert(alert ExhaustedAlert) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
	recipients  []string
}

func NewEmailService(host string, port int, username, password, senderEmail string, recipients []string) IEmailService {
	return &emailService{
		dialer:      gomail.NewDialer(host, port, username, password),
		senderEmail: senderEmail,
		recipients:  recipients,
	}
}

func (s *emailService) SendExhaustedAlert(alert ExhaustedAlert) error {
	if len(s.recipients) == 0 {
		return nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.senderEmail)
	m.SetHeader("To", s.recipients...)
	m.SetHeader("Subject", fmt.Sprintf("[jobmatch] Indexing gave up on %s %s", alert.DocumentType, alert.DocumentId))
	m.SetBody("text/html", renderExhaustedAlert(alert))

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send exhausted alert: %w", err)
	}
	return nil
}

func renderExhaustedAlert(alert ExhaustedAlert) string {
	var b strings.Builder
	b.WriteString(`<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">`)
	b.WriteString(`<h2>Semantic indexing stopped retrying a document</h2>`)
	fmt.Fprintf(&b, `<p><b>Document:</b> %s %s</p>`, html.EscapeString(alert.DocumentType), html.EscapeString(alert.DocumentId))
	fmt.Fprintf(&b, `<p><b>Attempts:</b> %d</p>`, alert.RetryCount)
	fmt.Fprintf(&b, `<p><b>Last error:</b> %s</p>`, html.EscapeString(alert.Error))
	fmt.Fprintf(&b, `<p><b>At:</b> %s</p>`, alert.OccurredAt.UTC().Format(time.RFC3339))
	b.WriteString(`<p>It will be picked up again after a new indexing request or a reset of exhausted records.</p>`)
	b.WriteString(`</div>`)
	return b.String()
}
