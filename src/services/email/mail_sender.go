package email

import (
	"strings"

	"Backend-Feedback-Portal/src/config"

	"github.com/pkg/errors"
	gomail "gopkg.in/gomail.v2"
)

type MailSender interface {
	Send(to, subject, html string) error
}

// SMTPSender ส่งเมลผ่าน gomail; dialer ถูกสร้างครั้งเดียวตอนเริ่ม
type SMTPSender struct {
	from   string
	dialer *gomail.Dialer
}

// NewSMTPSender returns an error naming every missing SMTP setting.
func NewSMTPSender(cfg *config.Config) (*SMTPSender, error) {
	if missing := missingSMTP(cfg); len(missing) > 0 {
		return nil, errors.Errorf("missing SMTP env: %s", strings.Join(missing, ", "))
	}
	return &SMTPSender{
		from:   cfg.SMTPFrom,
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass),
	}, nil
}

func missingSMTP(cfg *config.Config) []string {
	missing := []string{}
	for _, kv := range []struct {
		key string
		set bool
	}{
		{"SMTP_HOST", cfg.SMTPHost != ""},
		{"SMTP_PORT", cfg.SMTPPort != 0},
		{"SMTP_USER", cfg.SMTPUser != ""},
		{"SMTP_PASS", cfg.SMTPPass != ""},
		{"SMTP_FROM", cfg.SMTPFrom != ""},
	} {
		if !kv.set {
			missing = append(missing, kv.key)
		}
	}
	return missing
}

func (s *SMTPSender) Send(to, subject, html string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", html)

	if err := s.dialer.DialAndSend(m); err != nil {
		return errors.Wrapf(err, "send mail to %s", to)
	}
	return nil
}
