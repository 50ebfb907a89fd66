// Package progressrelay forwards progress events to listeners outside the orchestrator process.
package progressrelay

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/web-summarizer/internal/domain/progress"
)

// DefaultChannel is the pub/sub channel events are published on.
const DefaultChannel = "summarizer:progress"

// ValkeyPublisher PUBLISHes every event as JSON. Delivery is best effort: failures are logged
// and never reach the session.
type ValkeyPublisher struct {
	client  valkey.Client
	channel string
	logger  *slog.Logger
}

// NewValkeyPublisher constructs a publisher on channel.
func NewValkeyPublisher(client valkey.Client, channel string, logger *slog.Logger) *ValkeyPublisher {
	if channel == "" {
		channel = DefaultChannel
	}
	return &ValkeyPublisher{
		client:  client,
		channel: channel,
		logger:  logger.With("component", "progressrelay.valkey"),
	}
}

// Publish implements progress.Publisher.
func (p *ValkeyPublisher) Publish(ctx context.Context, evt progress.Event) {
	encoded, err := encode(evt)
	if err != nil {
		p.logger.Warn("progress event encode failed", "type", evt.Type, "error", err)
		return
	}
	cmd := p.client.B().Publish().Channel(p.channel).Message(encoded).Build()
	if err := p.client.Do(ctx, cmd).Error(); err != nil {
		p.logger.Warn("progress event relay failed", "type", evt.Type, "session_id", evt.SessionID, "error", err)
	}
}

func encode(evt progress.Event) (string, error) {
	payload, err := json.Marshal(evt)
	if err != nil {
		return "", err
	}
	return string(payload), nil
}

var _ progress.Publisher = (*ValkeyPublisher)(nil)
