package mailer

import (
	"log"
	"os"
	"strconv"

	"github.com/wneessen/go-mail"
)

// Mail is a single outbound message. Bodies are HTML throughout; the
// transactional templates live in templates.go.
type Mail struct {
	To      string
	Subject string
	Body    string
}

// Mailer is the notification sink handed to the handlers at startup. Send
// failures are non-fatal to the primary operation; callers surface them as
// partial-success responses.
type Mailer interface {
	Send(m *Mail) error
}

type SMTPMailer struct {
	client   *mail.Client
	from     string
	fromName string
}

// NewSMTP builds the sink from SMTP_* environment variables. Called once at
// startup; the client is owned by the process, not by package state.
func NewSMTP() (*SMTPMailer, error) {
	host := os.Getenv("SMTP_HOST")
	port, err := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if err != nil {
		port = 587
	}
	user := os.Getenv("SMTP_USERNAME")
	pass := os.Getenv("SMTP_PASSWORD")
	c, err := mail.NewClient(
		host,
		mail.WithPort(port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(user),
		mail.WithPassword(pass),
	)
	if err != nil {
		log.Printf("Could not initialize smtp client: %s\n", err.Error())
		return nil, err
	}
	return &SMTPMailer{
		client:   c,
		from:     os.Getenv("FROM_EMAIL"),
		fromName: os.Getenv("FROM_NAME"),
	}, nil
}

func (s *SMTPMailer) Send(m *Mail) error {
	msg := mail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.from); err != nil {
		log.Printf("Failed to set From address: %s\n", err.Error())
		return err
	}
	if err := msg.To(m.To); err != nil {
		log.Printf("Failed to set To address: %s\n", err.Error())
		return err
	}
	msg.Subject(m.Subject)
	msg.SetBodyString(mail.TypeTextHTML, m.Body)
	if err := s.client.DialAndSend(msg); err != nil {
		return err
	}
	log.Printf("Email sent to %s\n", m.To)
	return nil
}
