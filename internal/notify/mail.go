package notify

import (
	"context"
	"fmt"
	"html/template"

	"github.com/wneessen/go-mail"
)

// MailConfig points at an SMTP relay.
type MailConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	AdminTo  string
}

// MailSender delivers composed messages. *mail.Client implements it.
type MailSender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// Mailer renders HTML templates and hands them to an SMTP relay.
type Mailer struct {
	cfg    MailConfig
	sender MailSender
}

// NewMailer creates a Mailer. A nil sender dials cfg.Host with STARTTLS when
// the relay offers it and plain auth when a user is set.
func NewMailer(cfg MailConfig, sender MailSender) (*Mailer, error) {
	if sender == nil {
		opts := []mail.Option{
			mail.WithPort(cfg.Port),
			mail.WithTLSPolicy(mail.TLSOpportunistic),
		}
		if cfg.User != "" {
			opts = append(opts,
				mail.WithSMTPAuth(mail.SMTPAuthPlain),
				mail.WithUsername(cfg.User),
				mail.WithPassword(cfg.Password),
			)
		}
		client, err := mail.NewClient(cfg.Host, opts...)
		if err != nil {
			return nil, fmt.Errorf("smtp client for %s: %w", cfg.Host, err)
		}
		sender = client
	}
	return &Mailer{cfg: cfg, sender: sender}, nil
}

// Send renders tmpl with data and mails it to the recipient.
func (m *Mailer) Send(ctx context.Context, to, subject string, tmpl *template.Template, data any) error {
	msg := mail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return fmt.Errorf("sender %q: %w", m.cfg.From, err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("recipient %q: %w", to, err)
	}
	msg.Subject(subject)
	if err := msg.SetBodyHTMLTemplate(tmpl, data); err != nil {
		return fmt.Errorf("render %s: %w", tmpl.Name(), err)
	}
	if err := m.sender.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}

var analysisConfirmationTmpl = template.Must(template.New("analysis-confirmation").Parse(`
<div style="font-family: Arial, sans-serif; max-width: 600px;">
  <h2 style="color: #3b82f6;">Website Analysis Confirmation</h2>
  <p>Thank you for submitting your website <strong>{{.WebsiteURL}}</strong> for analysis!</p>
  <p>We've received your request and will review your site. Within 48 hours you'll receive a report including:</p>
  <ul>
    <li>Design and user experience assessment</li>
    <li>Performance optimization recommendations</li>
    <li>Mobile responsiveness evaluation</li>
    <li>Functionality improvement suggestions</li>
    <li>Cost estimates for recommended changes</li>
  </ul>
  <p>If you have any questions in the meantime, please reply to this email.</p>
  <p style="color: #666;">The DevCraft Studio Team</p>
</div>`))

var adminAnalysisTmpl = template.Must(template.New("admin-analysis").Parse(`
<div style="font-family: Arial, sans-serif; max-width: 600px;">
  <h2 style="color: #3b82f6;">New Website Analysis Request</h2>
  <table style="width: 100%; border-collapse: collapse;">
    <tr><td><b>Website URL:</b></td><td><a href="{{.WebsiteURL}}">{{.WebsiteURL}}</a></td></tr>
    <tr><td><b>Client Email:</b></td><td>{{.Email}}</td></tr>
    <tr><td><b>Budget:</b></td><td>{{.Budget}}</td></tr>
    <tr><td><b>Improvement Areas:</b></td><td>{{if .ImprovementAreas}}{{range $i, $a := .ImprovementAreas}}{{if $i}}, {{end}}{{$a}}{{end}}{{else}}None specified{{end}}</td></tr>
    <tr><td><b>Pain Points:</b></td><td>{{or .PainPoints "None specified"}}</td></tr>
  </table>
  <p>Log in to the admin dashboard to view more details.</p>
</div>`))
