// Package extraction obtains visible text from a target document by trying the cooperative
// agent first and an isolated read second.
package extraction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/yanqian/web-summarizer/internal/domain/target"
)

// DefaultAgentTimeout bounds the wait for the cooperative agent's reply.
const DefaultAgentTimeout = 2000 * time.Millisecond

// Extractor tries its strategies in order until one yields OK.
type Extractor struct {
	strategies []Strategy
	logger     *slog.Logger
}

// NewExtractor keeps the strategies in the order given.
func NewExtractor(logger *slog.Logger, strategies ...Strategy) *Extractor {
	return &Extractor{strategies: strategies, logger: logger.With("component", "extraction.extractor")}
}

// NewDefaultExtractor wires the agent strategy ahead of the isolated read.
func NewDefaultExtractor(messenger Messenger, injector Injector, agentTimeout time.Duration, logger *slog.Logger) *Extractor {
	return NewExtractor(logger, NewAgentStrategy(messenger, agentTimeout), NewFallbackStrategy(injector))
}

// Extract returns the first OK result, or the last non-OK one once every strategy ran.
func (e *Extractor) Extract(ctx context.Context, t target.Target) Result {
	last := Failed("no extraction strategy configured")
	for _, strategy := range e.strategies {
		res := strategy.Extract(ctx, t)
		if res.Outcome == OutcomeOK {
			e.logger.Debug("page text extracted", "strategy", strategy.Name(), "target_id", t.ID, "bytes", len(res.Text))
			return res
		}
		e.logger.Warn("extraction strategy yielded no text", "strategy", strategy.Name(), "target_id", t.ID, "outcome", res.Outcome.String(), "reason", res.Reason)
		last = res
	}
	return last
}

// AgentStrategy asks the cooperative agent for the page text.
type AgentStrategy struct {
	messenger Messenger
	timeout   time.Duration
}

// NewAgentStrategy uses DefaultAgentTimeout when timeout is not positive.
func NewAgentStrategy(messenger Messenger, timeout time.Duration) *AgentStrategy {
	if timeout <= 0 {
		timeout = DefaultAgentTimeout
	}
	return &AgentStrategy{messenger: messenger, timeout: timeout}
}

func (s *AgentStrategy) Name() string { return "agent" }

type agentOutcome struct {
	reply AgentReply
	err   error
}

// Extract waits at most the configured timeout, even when the messenger ignores ctx.
func (s *AgentStrategy) Extract(ctx context.Context, t target.Target) Result {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	done := make(chan agentOutcome, 1)
	go func() {
		reply, err := s.messenger.Send(ctx, t, AgentMessage{Type: MessageGetPageText})
		done <- agentOutcome{reply: reply, err: err}
	}()

	var out agentOutcome
	select {
	case <-ctx.Done():
		out.err = ctx.Err()
	case out = <-done:
	}

	switch {
	case errors.Is(out.err, context.DeadlineExceeded):
		return Failed(fmt.Sprintf("timeout waiting for page agent after %s", s.timeout))
	case out.err != nil:
		return Failed(out.err.Error())
	case out.reply.Error != "":
		return Failed(out.reply.Error)
	case out.reply.Text == nil:
		return Empty()
	}
	return OK(*out.reply.Text)
}

// FallbackStrategy reads the rendered body text directly, bypassing the agent.
type FallbackStrategy struct {
	injector Injector
}

func NewFallbackStrategy(injector Injector) *FallbackStrategy {
	return &FallbackStrategy{injector: injector}
}

func (s *FallbackStrategy) Name() string { return "isolated_read" }

func (s *FallbackStrategy) Extract(ctx context.Context, t target.Target) Result {
	text, err := s.injector.ReadRenderedText(ctx, t)
	if err != nil {
		return Failed(err.Error())
	}
	switch text {
	case MarkerScriptError:
		return Failed("Could not access page content (script error).")
	case MarkerEmpty:
		return Empty()
	}
	return OK(text)
}
