// Package notify delivers human-facing notifications for workflow events
// that people outside the request need to hear about: sign-offs and
// administrative locks.
package notify

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	slacklib "github.com/slack-go/slack"

	"github.com/gosuda/attest/internal/domain"
	"github.com/gosuda/attest/internal/records"
)

// Compile-time interface checks.
var (
	_ records.Notifier = (*SlackNotifier)(nil) //nolint:gochecknoglobals // compile-time check
	_ records.Notifier = LogNotifier{}         //nolint:gochecknoglobals // compile-time check
)

// SlackAPI abstracts the subset of the Slack client used by SlackNotifier.
// This allows testing without real HTTP calls.
type SlackAPI interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slacklib.MsgOption) (string, string, error)
}

// SlackNotifier posts workflow notifications to a single Slack channel.
type SlackNotifier struct {
	api     SlackAPI
	channel string
}

// NewSlackNotifier creates a SlackNotifier posting to the given channel.
func NewSlackNotifier(api SlackAPI, channel string) *SlackNotifier {
	return &SlackNotifier{api: api, channel: channel}
}

// RecordSignedOff announces a completed sign-off.
func (n *SlackNotifier) RecordSignedOff(ctx context.Context, audit *domain.Audit, rec *domain.Record, actor *domain.User) {
	text := fmt.Sprintf(":white_check_mark: %s *%s* in audit *%s* signed off by %s", rec.RecordType, rec.Title, audit.Title, actor.Name)
	n.post(ctx, text)
}

// RecordLocked announces an administrative lock.
func (n *SlackNotifier) RecordLocked(ctx context.Context, audit *domain.Audit, rec *domain.Record, actor *domain.User, reason string) {
	text := fmt.Sprintf(":lock: %s *%s* in audit *%s* locked by %s: %s", rec.RecordType, rec.Title, audit.Title, actor.Name, reason)
	n.post(ctx, text)
}

// post is best effort. A Slack outage must never fail a workflow transition;
// the audit trail is the system of record, not the channel.
func (n *SlackNotifier) post(ctx context.Context, text string) {
	_, _, err := n.api.PostMessageContext(ctx, n.channel, slacklib.MsgOptionText(text, false))
	if err != nil {
		log.Error().Err(err).Str("channel", n.channel).Msg("slack notification failed")
	}
}

// LogNotifier is the fallback when Slack is not configured. It writes the
// same announcements to the application log.
type LogNotifier struct{}

func (LogNotifier) RecordSignedOff(_ context.Context, audit *domain.Audit, rec *domain.Record, actor *domain.User) {
	log.Info().
		Str("audit", audit.Title).
		Str("record", rec.Title).
		Str("type", string(rec.RecordType)).
		Str("by", actor.Name).
		Msg("record signed off")
}

func (LogNotifier) RecordLocked(_ context.Context, audit *domain.Audit, rec *domain.Record, actor *domain.User, reason string) {
	log.Info().
		Str("audit", audit.Title).
		Str("record", rec.Title).
		Str("type", string(rec.RecordType)).
		Str("by", actor.Name).
		Str("reason", reason).
		Msg("record locked")
}
