package services

import (
	"fmt"
	"log"
	"net/smtp"
	"os"
	"strings"
)

type MailService struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	Enabled  bool
}

func NewMailService() *MailService {
	host := os.Getenv("SMTP_HOST")
	port := os.Getenv("SMTP_PORT")
	user := os.Getenv("SMTP_USER")
	pass := os.Getenv("SMTP_PASS")
	from := os.Getenv("SMTP_FROM")

	enabled := host != "" && port != "" && user != "" && pass != "" && from != ""
	if !enabled {
		log.Println("MailService disabled: missing SMTP environment variables")
	}

	return &MailService{
		Host:     host,
		Port:     port,
		Username: user,
		Password: pass,
		From:     from,
		Enabled:  enabled,
	}
}

func (s *MailService) sendAsync(to []string, subject string, body string) {
	if !s.Enabled {
		return
	}

	go func() {
		auth := smtp.PlainAuth("", s.Username, s.Password, s.Host)
		addr := fmt.Sprintf("%s:%s", s.Host, s.Port)

		msg := []byte(fmt.Sprintf("To: %s\r\n"+
			"From: NeoForum Support <%s>\r\n"+
			"Subject: %s\r\n"+
			"Content-Type: text/plain; charset=\"UTF-8\"\r\n\r\n%s",
			strings.Join(to, ","), s.From, subject, body))

		if err := smtp.SendMail(addr, auth, s.From, to, msg); err != nil {
			log.Printf("Failed to send email to %v: %v", to, err)
		}
	}()
}

// SendSupportAck acknowledges a freshly filed support ticket.
func (s *MailService) SendSupportAck(email, name, subject string, ticketID uint) {
	body := fmt.Sprintf("Hi %s,\n\nWe received your message (ticket #%d): %s\n\nSomeone from the team will get back to you.\n\n— NeoForum Support",
		name, ticketID, subject)
	s.sendAsync([]string{email}, fmt.Sprintf("[NeoForum] We got your message (#%d)", ticketID), body)
}

// SendSupportResolved tells the requester their ticket was resolved.
func (s *MailService) SendSupportResolved(email, name, subject string, ticketID uint) {
	body := fmt.Sprintf("Hi %s,\n\nYour support ticket #%d (%s) has been marked resolved. Reply to this email if the problem persists.\n\n— NeoForum Support",
		name, ticketID, subject)
	s.sendAsync([]string{email}, fmt.Sprintf("[NeoForum] Ticket #%d resolved", ticketID), body)
}
