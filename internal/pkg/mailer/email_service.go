package mailer

import (
	"fmt"
	"html"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendSitePublished(toEmail, projectName, siteURL string) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
	senderName  string
}

func NewEmailService(host string, port int, username, password, senderName string) IEmailService {
	d := gomail.NewDialer(host, port, username, password)

	return &emailService{
		dialer:      d,
		senderEmail: username,
		senderName:  senderName,
	}
}

// Enabled reports whether an SMTP host was configured.
func Enabled(host string) bool {
	return host != ""
}

func (s *emailService) SendSitePublished(toEmail, projectName, siteURL string) error {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.senderEmail, s.senderName)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", fmt.Sprintf("%s is live", projectName))

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Your website is live!</h2>
			<p><strong>%s</strong> has been published.</p>
			<a href="%s" style="background-color: #007BFF; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px; display: inline-block;">Visit your site</a>
			<p>Or copy this link:</p>
			<p>%s</p>
			<p>GitHub Pages can take a minute or two before the first deploy is visible.</p>
		</div>
	`, html.EscapeString(projectName), siteURL, siteURL)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send site published mail to %s: %w", toEmail, err)
	}
	return nil
}
