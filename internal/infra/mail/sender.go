package mail

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"gopkg.in/gomail.v2"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

func NewEmailSender(host string, port int, user, password, from string) *EmailSender {
	return &EmailSender{
		Host:     host,
		Port:     port,
		User:     user,
		Password: password,
		From:     from,
		dialer:   gomail.NewDialer(host, port, user, password),
	}
}

func (s *EmailSender) SendAssignment(to string, data AssignmentEmailData) error {
	var body bytes.Buffer
	if err := templates.ExecuteTemplate(&body, "assignment.html", data); err != nil {
		return fmt.Errorf("render assignment email: %w", err)
	}

	subject := fmt.Sprintf("New lead assigned: %s", data.LeadName)
	if data.Bulk {
		subject = fmt.Sprintf("Leads assigned to you, including %s", data.LeadName)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body.String())

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send SMTP email: %w", err)
	}
	return nil
}
