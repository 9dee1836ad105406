package mailer

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendSanctionLetter(toEmail, customerName, referenceNo, downloadURL string) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
}

func NewEmailService(host string, port int, username, password, senderEmail string) IEmailService {
	d := gomail.NewDialer(host, port, username, password)

	return &emailService{
		dialer:      d,
		senderEmail: senderEmail,
	}
}

// SendSanctionLetter mails the download link for an issued sanction letter.
// Failures are the caller's to log; the loan decision is already committed
// by the time this runs.
func (s *emailService) SendSanctionLetter(toEmail, customerName, referenceNo, downloadURL string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.senderEmail)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", "Your Personal Loan Sanction Letter")

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Congratulations, %s!</h2>
			<p>Your personal loan has been approved.</p>
			<p>Reference No: <b>%s</b></p>
			<p>You can download your sanction letter here:</p>
			<a href="%s" style="background-color: #007BFF; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px; display: inline-block;">Download Sanction Letter</a>
			<p>Or copy this link:</p>
			<p>%s</p>
			<p>Thank you for choosing Capital Finance Ltd.</p>
		</div>
	`, customerName, referenceNo, downloadURL, downloadURL)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return err
	}

	return nil
}
