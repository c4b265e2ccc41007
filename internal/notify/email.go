package notify

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"rentacar-escrow-backend/internal/logger"
)

// alertTopics are the events worth waking an operator for: money leaving
// custody and conservation violations.
var alertTopics = map[string]bool{
	TopicAdminWithdraw:  true,
	TopicAuditViolation: true,
}

// EmailAlerter sends an email to the marketplace operator for alert-worthy
// events. Send failures are logged and dropped; alerting must never abort
// the operation that raised the event.
type EmailAlerter struct {
	apiKey    string
	fromEmail string
	toEmail   string
}

func NewEmailAlerter(apiKey, fromEmail, toEmail string) *EmailAlerter {
	return &EmailAlerter{
		apiKey:    apiKey,
		fromEmail: fromEmail,
		toEmail:   toEmail,
	}
}

func (a *EmailAlerter) Emit(_ context.Context, event Event) {
	if !alertTopics[event.Topic] {
		return
	}

	subject := fmt.Sprintf("[escrow] %s", event.Topic)
	body := a.formatBody(event)

	from := mail.NewEmail("Escrow Engine", a.fromEmail)
	recipient := mail.NewEmail("Operator", a.toEmail)
	message := mail.NewSingleEmail(from, subject, recipient, body, "")

	client := sendgrid.NewSendClient(a.apiKey)
	logger.ExternalServiceCall("sendgrid", "Send", "topic", event.Topic)
	response, err := client.Send(message)
	if err == nil && response.StatusCode >= 400 {
		err = fmt.Errorf("sendgrid error: status %d", response.StatusCode)
	}
	logger.ExternalServiceResult("sendgrid", "Send", err, "event_id", event.ID)
}

func (a *EmailAlerter) formatBody(event Event) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Event: %s\nID: %s\n", event.Topic, event.ID)
	keys := make([]string, 0, len(event.Attributes))
	for key := range event.Attributes {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Fprintf(&sb, "%s: %s\n", key, event.Attributes[key])
	}
	return sb.String()
}
