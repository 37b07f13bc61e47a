package notify_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	slacklib "github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/attest/internal/domain"
	"github.com/gosuda/attest/internal/notify"
)

type mockSlackAPI struct {
	posted  []string
	texts   []string
	postErr error
}

func (m *mockSlackAPI) PostMessageContext(_ context.Context, channelID string, opts ...slacklib.MsgOption) (string, string, error) {
	if m.postErr != nil {
		return "", "", m.postErr
	}
	m.posted = append(m.posted, channelID)
	if _, values, err := slacklib.UnsafeApplyMsgOptions("", channelID, "", opts...); err == nil {
		m.texts = append(m.texts, values.Get("text"))
	}
	return channelID, "1700000000.000100", nil
}

func TestSlackNotifier(t *testing.T) {
	t.Parallel()

	audit := &domain.Audit{ID: uuid.New(), Title: "Q3 access review"}
	rec := &domain.Record{ID: uuid.New(), RecordType: domain.RecordTypeRisk, Title: "Stale admin accounts"}
	actor := &domain.User{ID: uuid.New(), Name: "Dana Reviewer"}

	t.Run("sign_off_posts_to_channel", func(t *testing.T) {
		t.Parallel()

		api := &mockSlackAPI{}
		n := notify.NewSlackNotifier(api, "#audit-workflow")

		n.RecordSignedOff(context.Background(), audit, rec, actor)

		require.Len(t, api.posted, 1)
		assert.Equal(t, "#audit-workflow", api.posted[0])
		require.Len(t, api.texts, 1)
		assert.Contains(t, api.texts[0], string(domain.RecordTypeRisk))
		assert.Contains(t, api.texts[0], "Stale admin accounts")
	})

	t.Run("lock_posts_to_channel", func(t *testing.T) {
		t.Parallel()

		api := &mockSlackAPI{}
		n := notify.NewSlackNotifier(api, "#audit-workflow")

		n.RecordLocked(context.Background(), audit, rec, actor, "legal hold")

		require.Len(t, api.posted, 1)
		require.Len(t, api.texts, 1)
		assert.Contains(t, api.texts[0], string(domain.RecordTypeRisk))
		assert.Contains(t, api.texts[0], "legal hold")
	})

	t.Run("slack_failure_is_swallowed", func(t *testing.T) {
		t.Parallel()

		api := &mockSlackAPI{postErr: errors.New("rate limited")}
		n := notify.NewSlackNotifier(api, "#audit-workflow")

		// Must not panic or block the caller.
		n.RecordSignedOff(context.Background(), audit, rec, actor)
		assert.Empty(t, api.posted)
	})
}
