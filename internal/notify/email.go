package notify

import (
	"bytes"
	"fmt"
	"log"
	"text/template"
	"time"

	gomail "gopkg.in/mail.v2"

	"github.com/agulab/form4sent/internal/classify"
)

// EmailConfig holds SMTP configuration for sending the run digest.
type EmailConfig struct {
	SMTPServer string
	SMTPPort   int
	SMTPUser   string
	SMTPPass   string
	FromEmail  string
	ToEmail    string
	Enabled    bool
}

const digestTemplate = `Form 4 sentiment digest for {{.Date}}

{{len .Outcomes}} filing(s) classified this run:

{{range .Outcomes}}{{printf "%-8s %-24s %s" .Ticker .Accession .Sentiment}}
{{end}}`

// EmailDigest sends one summary email for the run. A delivery failure is
// logged and returned, but callers treat it as non-fatal.
func EmailDigest(outcomes []classify.Outcome, cfg EmailConfig) error {
	if !cfg.Enabled || len(outcomes) == 0 {
		return nil
	}

	tmpl, err := template.New("digest").Parse(digestTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse digest template: %w", err)
	}

	var body bytes.Buffer
	data := struct {
		Date     string
		Outcomes []classify.Outcome
	}{
		Date:     time.Now().Format("2006-01-02"),
		Outcomes: outcomes,
	}
	if err := tmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("failed to render digest: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", cfg.FromEmail)
	m.SetHeader("To", cfg.ToEmail)
	m.SetHeader("Subject", fmt.Sprintf("Form 4 sentiment digest (%d filings)", len(outcomes)))
	m.SetBody("text/plain", body.String())

	dialer := gomail.NewDialer(cfg.SMTPServer, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass)
	dialer.Timeout = 10 * time.Second

	if err := dialer.DialAndSend(m); err != nil {
		log.Printf("Email error: failed to send digest to %s: %v", cfg.ToEmail, err)
		return err
	}
	return nil
}
