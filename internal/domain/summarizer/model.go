package summarizer

import "github.com/yanqian/web-summarizer/internal/domain/endpoint"

// DefaultMaxPayloadBytes caps the UTF-8 encoded content sent to the service.
const DefaultMaxPayloadBytes = 500_000

// Terminal messages surfaced to the presentation layer.
const (
	MessageNoText   = "No page text found."
	ErrorPrefix     = "Error during summarization: "
	ReasonEmptyText = "EMPTY_TEXT"
)

// Length is the requested summary length. Unknown values are forwarded untouched.
type Length string

const (
	LengthAuto   Length = "auto"
	LengthShort  Length = "short"
	LengthMedium Length = "medium"
	LengthLong   Length = "long"
)

// Config configures the orchestrator.
type Config struct {
	MaxPayloadBytes int
	DefaultLength   Length
	// Endpoint holds the default host, port and path; the stored host preference overrides
	// Host for each session.
	Endpoint endpoint.Config
}

// Command is the summarize request issued by a presentation surface. TargetID is optional;
// without it the active target is used.
type Command struct {
	TargetID int64  `json:"targetId,omitempty"`
	Length   Length `json:"length,omitempty"`
}

// Response completes the invoking command once the session's terminal event is out.
type Response struct {
	OK        bool   `json:"ok"`
	SessionID string `json:"sessionId"`
	Reason    string `json:"reason,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Payload is what gets posted to the summarization service.
type Payload struct {
	Content string `json:"content"`
	Length  Length `json:"length"`
}

// State is a step of the orchestration state machine.
type State string

const (
	StateIdle            State = "IDLE"
	StateResolvingTarget State = "RESOLVING_TARGET"
	StateExtracting      State = "EXTRACTING"
	StateStreaming       State = "STREAMING"
	StateDone            State = "DONE"
	StateError           State = "ERROR"
)
