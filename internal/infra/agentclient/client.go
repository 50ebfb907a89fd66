// Package agentclient talks to the cooperative agent embedded in a registered document.
package agentclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/yanqian/web-summarizer/internal/domain/extraction"
	"github.com/yanqian/web-summarizer/internal/domain/target"
)

const (
	messagesPath  = "/messages"
	maxReplyBytes = 16 << 20
)

// ErrNoReceiver mirrors the failure of messaging a document that has no agent listening.
var ErrNoReceiver = errors.New("could not establish connection: receiving end does not exist")

// Client implements extraction.Messenger over HTTP.
type Client struct {
	httpClient *http.Client
}

// NewClient wraps httpClient, or http.DefaultClient when nil. Deadlines come from the caller's
// context.
func NewClient(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{httpClient: httpClient}
}

// Send posts msg to the target's agent and decodes its reply.
func (c *Client) Send(ctx context.Context, t target.Target, msg extraction.AgentMessage) (extraction.AgentReply, error) {
	base := strings.TrimRight(strings.TrimSpace(t.AgentURL), "/")
	if base == "" {
		return extraction.AgentReply{}, ErrNoReceiver
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return extraction.AgentReply{}, fmt.Errorf("encode agent message: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+messagesPath, bytes.NewReader(body))
	if err != nil {
		return extraction.AgentReply{}, fmt.Errorf("build agent request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return extraction.AgentReply{}, ctxErr
		}
		return extraction.AgentReply{}, fmt.Errorf("%w: %v", ErrNoReceiver, err)
	}
	defer resp.Body.Close()

	var reply extraction.AgentReply
	decodeErr := json.NewDecoder(io.LimitReader(resp.Body, maxReplyBytes)).Decode(&reply)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if decodeErr == nil && reply.Error != "" {
			return extraction.AgentReply{}, fmt.Errorf("agent returned %d: %s", resp.StatusCode, reply.Error)
		}
		return extraction.AgentReply{}, fmt.Errorf("agent returned %d", resp.StatusCode)
	}
	if decodeErr != nil {
		return extraction.AgentReply{}, fmt.Errorf("decode agent reply: %w", decodeErr)
	}
	return reply, nil
}

var _ extraction.Messenger = (*Client)(nil)
