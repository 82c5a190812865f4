package mail

import "gopkg.in/gomail.v2"

type AssignmentEmailData struct {
	AgentName string
	LeadName  string
	LeadURL   string
	Bulk      bool
}

// dialer is satisfied by *gomail.Dialer.
type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type EmailSender struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string

	dialer dialer
}
