package sendgridmail

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/noah-isme/course-mgmt-api/pkg/mailer"
)

// Mailer sends plain-text email through the SendGrid v3 API.
type Mailer struct {
	client *sendgrid.Client
	from   *sgmail.Email
}

var _ mailer.Mailer = (*Mailer)(nil)

// New returns a SendGrid-backed mailer.
func New(apiKey, fromName, fromAddress string) *Mailer {
	return &Mailer{
		client: sendgrid.NewSendClient(apiKey),
		from:   sgmail.NewEmail(fromName, fromAddress),
	}
}

// Send delivers a single message.
func (m *Mailer) Send(ctx context.Context, msg mailer.Message) error {
	email := sgmail.NewSingleEmail(m.from, msg.Subject, sgmail.NewEmail("", msg.To), msg.Text, "")

	resp, err := m.client.SendWithContext(ctx, email)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sendgrid send: status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}
