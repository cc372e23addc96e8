// Package mailer sends the ticket issuance email over SMTP.
package mailer

import (
	"context"
	"fmt"
	"log"
	"mime"
	"net/smtp"
	"os"
	"strings"
	"time"
)

// Mailer delivers ticket emails.  Send returns an opaque transport receipt
// that the caller records for operational traceability.
type Mailer interface {
	Send(ctx context.Context, to, name, ticketURL string) (string, error)
}

// SMTPMailer talks to a plain SMTP endpoint with optional AUTH.  When the
// host is unconfigured it logs the would-be delivery instead of sending, so
// local development works without mail credentials.
type SMTPMailer struct {
	Host string
	Port string
	User string
	Pass string
	From string
}

// NewFromEnv builds an SMTPMailer from SMTP_* environment variables.
func NewFromEnv() *SMTPMailer {
	return &SMTPMailer{
		Host: os.Getenv("SMTP_HOST"),
		Port: os.Getenv("SMTP_PORT"),
		User: os.Getenv("SMTP_USER"),
		Pass: os.Getenv("SMTP_PASS"),
		From: os.Getenv("SMTP_FROM"),
	}
}

// Send delivers the ticket email for a paid reservation.
func (m *SMTPMailer) Send(ctx context.Context, to, name, ticketURL string) (string, error) {
	subject := fmt.Sprintf("[Atempo] %s님 예약이 완료되었습니다", name)
	body := buildBody(m.fromAddr(), to, subject, name, ticketURL)

	if m.Host == "" {
		log.Printf("[MOCK EMAIL] to=%s subject=%q url=%s", to, subject, ticketURL)
		return "mock:" + time.Now().UTC().Format(time.RFC3339), nil
	}

	port := m.Port
	if port == "" {
		port = "587"
	}
	addr := m.Host + ":" + port

	var auth smtp.Auth
	if m.User != "" {
		auth = smtp.PlainAuth("", m.User, m.Pass, m.Host)
	}

	done := make(chan error, 1)
	go func() {
		done <- smtp.SendMail(addr, auth, m.fromAddr(), []string{to}, body)
	}()
	select {
	case err := <-done:
		if err != nil {
			return "", err
		}
	case <-ctx.Done():
		return "", ctx.Err()
	}
	return "smtp:" + addr + ":" + time.Now().UTC().Format(time.RFC3339), nil
}

func (m *SMTPMailer) fromAddr() string {
	if m.From != "" {
		return m.From
	}
	if m.User != "" {
		return m.User
	}
	return "no-reply@atempo.local"
}

// buildBody assembles an RFC 5322 message with a UTF-8 subject and an HTML
// body.  The ticket link is the only actionable content; everything else is
// boilerplate the venue staff wanted on every mail.
func buildBody(from, to, subject, name, ticketURL string) []byte {
	html := fmt.Sprintf(`<div style="font-family:sans-serif;max-width:480px;margin:0 auto">
  <h2>A tempo 공연 예약 완료</h2>
  <p>%s님, 입금이 확인되어 예약이 확정되었습니다.</p>
  <p>공연 당일 아래 링크의 QR 코드를 입구에서 보여주세요.</p>
  <p><a href="%s" style="display:inline-block;padding:12px 24px;background:#4a67d8;color:#fff;text-decoration:none;border-radius:6px">내 티켓 보기</a></p>
  <p style="color:#888;font-size:12px">링크가 열리지 않으면 주소를 복사해 브라우저에 붙여넣어 주세요:<br>%s</p>
</div>`, name, ticketURL, ticketURL)

	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", subject) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(html)
	return []byte(b.String())
}
