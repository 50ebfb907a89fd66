// Package settings holds persisted user preferences read by the orchestrator.
package settings

import "context"

// Store persists the summarization host preference. An empty host means "use the default".
type Store interface {
	Host(ctx context.Context) (string, error)
	SetHost(ctx context.Context, host string) error
}
