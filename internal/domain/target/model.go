// Package target describes the documents whose text can be summarized.
package target

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a target id is unknown.
var ErrNotFound = errors.New("target not found")

// Target is one displayed document. AgentURL points at the cooperative agent embedded in it,
// if any.
type Target struct {
	ID           int64     `json:"id"`
	URL          string    `json:"url"`
	AgentURL     string    `json:"agentUrl,omitempty"`
	Active       bool      `json:"active"`
	RegisteredAt time.Time `json:"registeredAt"`
}

// RegisterRequest is the payload used to announce a document.
type RegisterRequest struct {
	URL      string `json:"url"`
	AgentURL string `json:"agentUrl,omitempty"`
	Active   bool   `json:"active,omitempty"`
}

// Repository keeps the registered documents. At most one target is active at a time.
type Repository interface {
	Register(ctx context.Context, req RegisterRequest) (Target, error)
	Get(ctx context.Context, id int64) (Target, error)
	Active(ctx context.Context) (Target, bool, error)
	Activate(ctx context.Context, id int64) error
	List(ctx context.Context) ([]Target, error)
}
