package mailer

import (
	"fmt"

	"github.com/Abdurahmanit/GroupProject/rental-listing-service/internal/platform/logger"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPMailer notifies hosts by email.
type SMTPMailer struct {
	from   string
	dialer dialer
	logger *logger.Logger
}

func NewSMTPMailer(host string, port int, from, password string, log *logger.Logger) *SMTPMailer {
	return &SMTPMailer{
		from:   from,
		dialer: gomail.NewDialer(host, port, from, password),
		logger: log.Named("SMTPMailer"),
	}
}

func (m *SMTPMailer) SendListingCreatedEmail(toEmail, listingTitle string) error {
	msg := newListingCreatedMessage(m.from, toEmail, listingTitle)

	if err := m.dialer.DialAndSend(msg); err != nil {
		m.logger.Error("Failed to send listing created email", zap.String("to", toEmail), zap.Error(err))
		return fmt.Errorf("failed to send listing created email: %w", err)
	}
	m.logger.Info("Listing created email sent", zap.String("to", toEmail))
	return nil
}

func newListingCreatedMessage(from, to, listingTitle string) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetHeader("From", from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "New Listing Created")
	msg.SetBody("text/plain", "Your listing '"+listingTitle+"' has been created successfully.")
	return msg
}
