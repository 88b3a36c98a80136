package utils

import (
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/LogicSense29/addedvalue-store-sub000/config"
	"github.com/LogicSense29/addedvalue-store-sub000/models"
)

// EmailService sends transactional mail through SendGrid. Callers invoke it
// fire-and-forget from consumers; a send failure never rolls anything back.
type EmailService struct {
	client *sendgrid.Client
	sender string
}

func NewEmailService(cfg *config.Config) *EmailService {
	return &EmailService{
		client: sendgrid.NewSendClient(cfg.SendGridAPIKey),
		sender: cfg.EmailSender,
	}
}

func (es *EmailService) SendEmail(toEmail, subject, content string) error {
	from := mail.NewEmail("", es.sender)
	to := mail.NewEmail("", toEmail)
	message := mail.NewSingleEmail(from, subject, to, content, content)

	resp, err := es.client.Send(message)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("failed to send email: status %d", resp.StatusCode)
	}
	return nil
}

// SendOtpEmail delivers a one-time code for the given purpose.
func (es *EmailService) SendOtpEmail(toEmail string, purpose models.OtpPurpose, code string) error {
	var subject string
	switch purpose {
	case models.OtpSignup:
		subject = "Confirm your signup"
	case models.OtpLogin:
		subject = "Your login code"
	case models.OtpResetPassword:
		subject = "Reset your password"
	default:
		subject = "Your verification code"
	}
	content := fmt.Sprintf("Your verification code is %s. It expires in 10 minutes.", code)
	return es.SendEmail(toEmail, subject, content)
}
