package utils

import (
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
)

// Mailer delivers one HTML message.
type Mailer interface {
	Send(to, subject, htmlBody string) error
}

// SendGridMailer sends through the SendGrid v3 API.
type SendGridMailer struct {
	client      *sendgrid.Client
	fromName    string
	fromAddress string
}

func NewSendGridMailer(apiKey, fromAddress, fromName string) *SendGridMailer {
	return &SendGridMailer{
		client:      sendgrid.NewSendClient(apiKey),
		fromName:    fromName,
		fromAddress: fromAddress,
	}
}

func (m *SendGridMailer) Send(to, subject, htmlBody string) error {
	from := mail.NewEmail(m.fromName, m.fromAddress)
	message := mail.NewSingleEmail(from, subject, mail.NewEmail("", to), subject, htmlBody)
	resp, err := m.client.Send(message)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid responded %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

// LogMailer only logs; used when no SendGrid key is configured.
type LogMailer struct {
	Log *zap.Logger
}

func (m LogMailer) Send(to, subject, _ string) error {
	m.Log.Info("email suppressed, no mail provider configured",
		zap.String("to", to), zap.String("subject", subject))
	return nil
}

// Notifier renders and dispatches transactional messages without blocking the caller.
type Notifier struct {
	Mailer Mailer
	Log    *zap.Logger
}

func (n *Notifier) dispatch(to, subject, title, body string) {
	if n == nil || n.Mailer == nil || to == "" {
		return
	}
	html := getEmailTemplate(title, body)
	go func() {
		if err := n.Mailer.Send(to, subject, html); err != nil {
			n.Log.Warn("failed to send email", zap.String("to", to), zap.String("subject", subject), zap.Error(err))
		}
	}()
}

func getEmailTemplate(title string, bodyContent string) string {
	return fmt.Sprintf(`
	<!DOCTYPE html>
	<html>
	<head>
		<style>
			body { font-family: Arial, sans-serif; background-color: #F4F6F8; margin: 0; padding: 0; }
			.container { max-width: 600px; margin: 40px auto; background: #FFFFFF; border-radius: 8px; overflow: hidden; }
			.header { background-color: #0B3D2E; padding: 24px; text-align: center; }
			.header h1 { color: #FFFFFF; margin: 0; font-size: 22px; }
			.content { padding: 32px 28px; color: #1F2933; line-height: 1.6; }
			.info-box { background: #E6F4EA; padding: 14px; border-radius: 4px; border-left: 4px solid #F5A623; margin: 18px 0; }
			.footer { padding: 16px; text-align: center; font-size: 12px; color: #666666; }
		</style>
	</head>
	<body>
		<div class="container">
			<div class="header"><h1>ATHLETICAMP</h1></div>
			<div class="content">
				<h2>%s</h2>
				%s
			</div>
			<div class="footer">See you on the field this season.</div>
		</div>
	</body>
	</html>
	`, title, bodyContent)
}

// SendEnrollmentReceipt confirms a paid enrollment to the student.
func (n *Notifier) SendEnrollmentReceipt(email, className string, amount float64) {
	body := fmt.Sprintf(`
		<p>You are enrolled in <strong>%s</strong>.</p>
		<div class="info-box">Amount charged: <strong>$%.2f</strong></div>
		<p>The class now appears under your enrolled classes.</p>
	`, className, amount)
	n.dispatch(email, "Enrollment confirmed: "+className, "Enrollment Confirmed", body)
}

// SendClassApprovedEmail tells the instructor their class is live.
func (n *Notifier) SendClassApprovedEmail(email, className string) {
	body := fmt.Sprintf(`
		<p>Your class <strong>%s</strong> has been approved and is now listed in the catalog.</p>
	`, className)
	n.dispatch(email, "Class approved: "+className, "Class Approved", body)
}

// SendClassRejectedEmail tells the instructor why a class was turned down.
func (n *Notifier) SendClassRejectedEmail(email, className, feedback string) {
	if feedback == "" {
		feedback = "No feedback was provided."
	}
	body := fmt.Sprintf(`
		<p>Unfortunately, your class <strong>%s</strong> was rejected.</p>
		<div class="info-box">Feedback: %s</div>
		<p>Please update it and submit again.</p>
	`, className, feedback)
	n.dispatch(email, "Class rejected: "+className, "Class Rejected", body)
}
