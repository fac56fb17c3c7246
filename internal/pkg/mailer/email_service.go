package mailer

import (
	"fmt"

	"ai-voicedesk-be/internal/entity"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendWelcome(toEmail, name string) error
	SendInvoicePaid(toEmail, name string, tx *entity.Transaction) error
	SendPaymentFailed(toEmail, name string, tx *entity.Transaction) error
	SendSubscriptionCancelled(toEmail, name string, endsAt string) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
	senderName  string
	clientURL   string
}

func NewEmailService(host string, port int, username, password, senderEmail, senderName, clientURL string) IEmailService {
	d := gomail.NewDialer(host, port, username, password)

	return &emailService{
		dialer:      d,
		senderEmail: senderEmail,
		senderName:  senderName,
		clientURL:   clientURL,
	}
}

func (s *emailService) send(toEmail, subject, body string) error {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.senderEmail, s.senderName)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		fmt.Printf("[MAILER ERROR] Failed to send %q to %s: %v\n", subject, toEmail, err)
		return err
	}
	return nil
}

func (s *emailService) SendWelcome(toEmail, name string) error {
	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Welcome to VoiceDesk, %s!</h2>
			<p>Your account is ready. Head over to your dashboard to create your first voice assistant:</p>
			<a href="%s/dashboard" style="background-color: #007BFF; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px; display: inline-block;">Open Dashboard</a>
		</div>
	`, name, s.clientURL)
	return s.send(toEmail, "Welcome to VoiceDesk", body)
}

func (s *emailService) SendInvoicePaid(toEmail, name string, tx *entity.Transaction) error {
	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Payment received</h2>
			<p>Hi %s, we received your payment of <strong>%.2f %s</strong>.</p>
			<p>%s</p>
			<p>You can view your invoices anytime in your <a href="%s/billing">billing settings</a>.</p>
		</div>
	`, name, tx.Amount, tx.Currency, tx.Description, s.clientURL)
	return s.send(toEmail, "Your VoiceDesk invoice", body)
}

func (s *emailService) SendPaymentFailed(toEmail, name string, tx *entity.Transaction) error {
	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Payment failed</h2>
			<p>Hi %s, your payment of <strong>%.2f %s</strong> could not be processed.</p>
			<p>We will retry automatically. To avoid interruption, please check your payment method:</p>
			<a href="%s/billing" style="background-color: #DC3545; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px; display: inline-block;">Update Payment Method</a>
		</div>
	`, name, tx.Amount, tx.Currency, s.clientURL)
	return s.send(toEmail, "Payment failed", body)
}

func (s *emailService) SendSubscriptionCancelled(toEmail, name string, endsAt string) error {
	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Subscription cancelled</h2>
			<p>Hi %s, your subscription has been cancelled.</p>
			<p>Your assistants keep working until <strong>%s</strong>.</p>
			<p>Changed your mind? You can resubscribe anytime from your <a href="%s/billing">billing settings</a>.</p>
		</div>
	`, name, endsAt, s.clientURL)
	return s.send(toEmail, "Your subscription was cancelled", body)
}
