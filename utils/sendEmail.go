package utils

import (
	"fmt"

	"bursary-portal-backend/config"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// EmailSender delivers a single HTML email.
type EmailSender interface {
	Send(to, subject, htmlBody string) error
}

// SMTPMailer sends mail through the configured SMTP relay.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

// Initialize the SMTP mailer once and store it in a global variable
var mailer *SMTPMailer

// InitializeMailer sets up the mailer from settings
func InitializeMailer(settings config.Settings) {
	port := settings.SMTPPort
	if port <= 0 {
		config.Logger.Error("Invalid SMTP_PORT value, defaulting to port 25", zap.Int("provided_port", port))
		port = 25
	}

	mailer = &SMTPMailer{
		dialer: gomail.NewDialer(settings.SMTPHost, port, settings.SMTPUser, settings.SMTPPassword),
		from:   settings.SMTPFrom,
	}
	config.Logger.Info("Mailer initialized successfully", zap.String("host", settings.SMTPHost))
}

// GetMailer returns the initialized mailer
func GetMailer() *SMTPMailer {
	return mailer
}

func (m *SMTPMailer) Send(to, subject, htmlBody string) error {
	if m == nil || m.dialer == nil {
		err := fmt.Errorf("mailer is not initialized")
		config.Logger.Error("Email send failed: mailer is not initialized",
			zap.String("to_email", to),
			zap.String("subject", subject),
			zap.Error(err),
		)
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	if err := m.dialer.DialAndSend(msg); err != nil {
		config.Logger.Error("Failed to send email via SMTP",
			zap.String("to_email", to),
			zap.String("subject", subject),
			zap.Error(err),
		)
		return fmt.Errorf("failed to send email: %w", err)
	}

	config.Logger.Info("Email sent successfully",
		zap.String("to_email", to),
		zap.String("subject", subject),
	)
	return nil
}
