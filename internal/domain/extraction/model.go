package extraction

import (
	"context"
	"strings"

	"github.com/yanqian/web-summarizer/internal/domain/target"
)

// Outcome tags an extraction Result.
type Outcome int

const (
	OutcomeOK Outcome = iota
	OutcomeEmpty
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeEmpty:
		return "empty"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result is the tagged outcome of one extraction attempt. Empty means the mechanism worked
// but found nothing; Failed means the mechanism itself broke.
type Result struct {
	Outcome Outcome
	Text    string
	Reason  string
}

// OK wraps extracted text, classifying blank text as Empty.
func OK(text string) Result {
	if strings.TrimSpace(text) == "" {
		return Empty()
	}
	return Result{Outcome: OutcomeOK, Text: text}
}

// Empty reports a successful extraction that found no content.
func Empty() Result {
	return Result{Outcome: OutcomeEmpty}
}

// Failed reports an extraction mechanism error.
func Failed(reason string) Result {
	return Result{Outcome: OutcomeFailed, Reason: reason}
}

// Strategy is one way of obtaining a target's text.
type Strategy interface {
	Name() string
	Extract(ctx context.Context, t target.Target) Result
}

// Protocol spoken with the cooperative agent embedded in a document.
const MessageGetPageText = "GET_PAGE_TEXT"

// AgentMessage is sent to the cooperative agent.
type AgentMessage struct {
	Type string `json:"type"`
}

// AgentReply is the agent's answer. Text is null when the document had no text nodes.
type AgentReply struct {
	Text  *string `json:"text"`
	Error string  `json:"error,omitempty"`
}

// Messenger delivers a message to the agent of a target and waits for its reply.
type Messenger interface {
	Send(ctx context.Context, t target.Target, msg AgentMessage) (AgentReply, error)
}

// Sentinels returned by the isolated read.
const (
	MarkerEmpty       = "EMPTY"
	MarkerScriptError = "SCRIPT_ERROR"
)

// Injector runs the isolated read of a document's rendered text, bypassing its agent.
type Injector interface {
	ReadRenderedText(ctx context.Context, t target.Target) (string, error)
}
