package utils

import (
	"fmt"
	"net/smtp"
	"os"
)

type EmailConfig struct {
	Host        string
	Port        string
	Username    string
	Password    string
	From        string
	CompanyName string
}

func GetEmailConfig() *EmailConfig {
	return &EmailConfig{
		Host:        os.Getenv("SMTP_HOST"),
		Port:        os.Getenv("SMTP_PORT"),
		Username:    os.Getenv("SMTP_USERNAME"),
		Password:    os.Getenv("SMTP_PASSWORD"),
		From:        os.Getenv("SMTP_FROM"),
		CompanyName: os.Getenv("COMPANY_NAME"),
	}
}

// SendEmail sends an HTML email over SMTP. The From header carries the
// company name when configured, e.g. `"Un Mercato" <orders@example.com>`.
func SendEmail(to, subject, htmlBody string) error {
	config := GetEmailConfig()
	if config.Host == "" || config.Port == "" || config.From == "" {
		return fmt.Errorf("SMTP not configured")
	}

	from := config.From
	if config.CompanyName != "" {
		from = fmt.Sprintf("%q <%s>", config.CompanyName, config.From)
	}

	headers := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n",
		from, to, subject)
	msg := []byte(headers + htmlBody)

	var auth smtp.Auth
	if config.Username != "" && config.Password != "" {
		auth = smtp.PlainAuth("", config.Username, config.Password, config.Host)
	}

	addr := config.Host + ":" + config.Port
	return smtp.SendMail(addr, auth, config.From, []string{to}, msg)
}
