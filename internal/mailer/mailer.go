// Package mailer sends transactional mail, used for password resets.
package mailer

import (
	"log"
	"net/http"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

type Mailer interface {
	Send(to, subject, body string) error
}

type SendgridMailer struct {
	key  string
	from *sgmail.Email
}

func NewSendgridMailer(key, fromEmail string) *SendgridMailer {
	return &SendgridMailer{
		key:  key,
		from: sgmail.NewEmail("Studium", fromEmail),
	}
}

func (m *SendgridMailer) Send(to, subject, body string) error {
	msg := sgmail.NewSingleEmail(m.from, subject, sgmail.NewEmail("", to), body, "")

	res, err := sendgrid.NewSendClient(m.key).Send(msg)
	if err != nil {
		return err
	}
	if res.StatusCode >= http.StatusBadRequest {
		return &SendError{StatusCode: res.StatusCode, Body: res.Body}
	}

	return nil
}

type SendError struct {
	StatusCode int
	Body       string
}

func (e *SendError) Error() string {
	return "sendgrid: unexpected status " + http.StatusText(e.StatusCode)
}

// DummyMailer logs instead of sending, used in development and tests.
type DummyMailer struct {
	log *log.Logger

	Sent []DummyMessage
}

type DummyMessage struct {
	To      string
	Subject string
	Body    string
}

func NewDummyMailer(logger *log.Logger) *DummyMailer {
	return &DummyMailer{log: logger}
}

func (m *DummyMailer) Send(to, subject, body string) error {
	m.Sent = append(m.Sent, DummyMessage{To: to, Subject: subject, Body: body})
	m.log.Printf("mail to %s: %s\n%s", to, subject, body)
	return nil
}
