// Package notify pushes escalation alerts to operator channels.
package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/slack-go/slack"

	"github.com/topher/seiri-portal-sub002/internal/escalation"
)

// SlackNotifier posts escalation alerts to one Slack channel.
type SlackNotifier struct {
	api     *slack.Client
	channel string
}

// NewSlackNotifier creates a notifier for a bot token and channel ID.
// Extra options (custom HTTP client, API URL) pass through to the client.
func NewSlackNotifier(token, channel string, opts ...slack.Option) *SlackNotifier {
	return &SlackNotifier{
		api:     slack.New(token, opts...),
		channel: channel,
	}
}

// EscalationRaised posts a formatted alert for the record.
func (n *SlackNotifier) EscalationRaised(ctx context.Context, rec escalation.Record) error {
	_, _, err := n.api.PostMessageContext(ctx, n.channel,
		slack.MsgOptionText(FormatEscalation(rec), false))
	if err != nil {
		return fmt.Errorf("notify: post escalation %s: %w", rec.ID, err)
	}
	return nil
}

// FormatEscalation renders a record as a channel message.
func FormatEscalation(rec escalation.Record) string {
	var b strings.Builder
	fmt.Fprintf(&b, ":rotating_light: Escalation %s (%s)\n", rec.Trigger, rec.ID)
	fmt.Fprintf(&b, "Assigned to: %s\n", rec.AssignedRole)
	fmt.Fprintf(&b, "Resolve by: %s\n", rec.ExpectedResolution.UTC().Format(time.RFC3339))
	if rec.Details != "" {
		fmt.Fprintf(&b, "Details: %s\n", rec.Details)
	}
	b.WriteString("Actions:\n")
	for _, action := range rec.Actions {
		fmt.Fprintf(&b, "  - %s\n", action)
	}
	return b.String()
}
