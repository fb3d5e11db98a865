package notify

import (
	"context"
	"fmt"

	"github.com/slack-go/slack"
)

// Slack delivers notices to a fixed operations channel.
type Slack struct {
	api     *slack.Client
	channel string
}

// NewSlack creates a Slack notifier. channel may be a channel ID or name.
func NewSlack(token, channel string) *Slack {
	return &Slack{api: slack.New(token), channel: channel}
}

func (s *Slack) Notify(ctx context.Context, text string) error {
	_, _, err := s.api.PostMessageContext(ctx, s.channel, slack.MsgOptionText(text, false))
	if err != nil {
		return fmt.Errorf("slack: post message: %w", err)
	}
	return nil
}
