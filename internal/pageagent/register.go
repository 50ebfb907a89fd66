package pageagent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/yanqian/web-summarizer/internal/domain/target"
)

const targetsPath = "/api/v1/targets"

// Register announces the agent's document to the orchestrator at baseURL.
func Register(ctx context.Context, client *http.Client, baseURL string, req target.RegisterRequest) (target.Target, error) {
	if client == nil {
		client = http.DefaultClient
	}
	body, err := json.Marshal(req)
	if err != nil {
		return target.Target{}, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(baseURL, "/")+targetsPath, bytes.NewReader(body))
	if err != nil {
		return target.Target{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(httpReq)
	if err != nil {
		return target.Target{}, fmt.Errorf("register target: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return target.Target{}, fmt.Errorf("register target: status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	var registered target.Target
	if err := json.NewDecoder(resp.Body).Decode(&registered); err != nil {
		return target.Target{}, fmt.Errorf("decode registered target: %w", err)
	}
	return registered, nil
}
