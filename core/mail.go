package core

import "net/mail"

type EmailMessage struct {
	To      []mail.Address
	Subject string
	Body    string // text/plain
}

func (msg *EmailMessage) HasRecipients() bool {
	return len(msg.To) > 0
}

// EmailService is any service that can send emails.
type EmailService interface {
	// SendMessages sends messages concurrently.
	SendMessages(messages ...*EmailMessage)
}
