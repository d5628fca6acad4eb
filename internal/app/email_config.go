package app

import (
	"strings"

	"github.com/charlesng35/memberhub/pkg/mail"
)

const implicitTLSPort = 465

// SMTPSettings maps the email section onto mail.SMTPSettings. Decision
// notifications need a sender, so an empty from address falls back to
// no-reply at the SMTP host's domain.
func (c EmailConfig) SMTPSettings() mail.SMTPSettings {
	host := strings.TrimSpace(c.SMTP.Host)
	from := strings.TrimSpace(c.SMTP.From)
	if from == "" && host != "" {
		from = "no-reply@" + strings.TrimPrefix(host, "smtp.")
	}

	return mail.SMTPSettings{
		Enabled:  c.SMTP.Enabled,
		Host:     host,
		Port:     c.SMTP.Port,
		Username: strings.TrimSpace(c.SMTP.Username),
		Password: c.SMTP.Password,
		From:     from,
		UseTLS:   c.SMTP.UseTLS || c.SMTP.Port == implicitTLSPort,
		Timeout:  c.SMTP.Timeout,
	}
}
