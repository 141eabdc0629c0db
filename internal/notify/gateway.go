package notify

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/smtp"
	"net/url"
	"os"
	"strings"
	"time"
)

// SMSSender delivers one text message to one phone number.
type SMSSender interface {
	SendSMS(ctx context.Context, phoneNumber, message string) error
}

// EmailSender delivers one email to one address.
type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, body string, isHTML bool) error
}

// AfricasTalkingSMS sends SMS through the Africa's Talking messaging API.
type AfricasTalkingSMS struct {
	Username string
	APIKey   string
	BaseURL  string
	Client   *http.Client
}

func NewAfricasTalkingSMS() *AfricasTalkingSMS {
	return &AfricasTalkingSMS{
		Username: os.Getenv("AT_USERNAME"),
		APIKey:   os.Getenv("AT_API_KEY"),
		BaseURL:  "https://api.africastalking.com/version1/messaging",
		Client:   &http.Client{Timeout: 15 * time.Second},
	}
}

func (s *AfricasTalkingSMS) SendSMS(ctx context.Context, phoneNumber, message string) error {
	if s.Username == "" {
		return fmt.Errorf("africa's talking username not set")
	}
	if s.APIKey == "" {
		return fmt.Errorf("africa's talking API key not set")
	}

	recipient, err := NormalizePhone(phoneNumber)
	if err != nil {
		return err
	}

	data := url.Values{}
	data.Set("username", s.Username)
	data.Set("to", recipient)
	data.Set("message", message)

	req, err := http.NewRequestWithContext(ctx, "POST", s.BaseURL, strings.NewReader(data.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("apiKey", s.APIKey)
	req.Header.Set("Accept", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to send SMS: status code %d", resp.StatusCode)
	}

	log.Printf("Successfully sent SMS to %s", recipient)
	return nil
}

// SMTPEmail sends email over plain SMTP with the agency's branded wrapper.
type SMTPEmail struct {
	From     string
	Password string
	Host     string
	Port     string
}

func NewSMTPEmail() *SMTPEmail {
	return &SMTPEmail{
		From:     os.Getenv("EMAIL_FROM"),
		Password: os.Getenv("EMAIL_PASSWORD"),
		Host:     os.Getenv("SMTP_HOST"),
		Port:     os.Getenv("SMTP_PORT"),
	}
}

func (s *SMTPEmail) SendEmail(ctx context.Context, to, subject, body string, isHTML bool) error {
	if s.From == "" || s.Password == "" || s.Host == "" || s.Port == "" {
		return fmt.Errorf("email configuration not set")
	}

	contentType := "text/plain; charset=UTF-8"
	if isHTML {
		contentType = "text/html; charset=UTF-8"
	}

	headers := make(map[string]string)
	headers["From"] = fmt.Sprintf("%s <%s>", companyName, s.From)
	headers["To"] = to
	headers["Subject"] = subject
	headers["MIME-Version"] = "1.0"
	headers["Content-Type"] = contentType
	headers["X-Mailer"] = "AdomTravels-Mailer"

	message := ""
	for key, value := range headers {
		message += fmt.Sprintf("%s: %s\r\n", key, value)
	}
	message += "\r\n" + body

	auth := smtp.PlainAuth("", s.From, s.Password, s.Host)
	if err := smtp.SendMail(s.Host+":"+s.Port, auth, s.From, []string{to}, []byte(message)); err != nil {
		log.Printf("Failed to send email to %s: %v", to, err)
		return err
	}

	log.Printf("Successfully sent email to %s", to)
	return nil
}
