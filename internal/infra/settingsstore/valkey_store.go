package settingsstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/web-summarizer/internal/domain/settings"
)

const hostField = "database_host"

// ValkeyStore persists preferences in a Valkey-compatible database so they survive restarts and
// are shared between orchestrator replicas.
type ValkeyStore struct {
	client valkey.Client
	prefix string
}

// NewValkeyStore constructs a new store backed by Valkey.
func NewValkeyStore(client valkey.Client, prefix string) *ValkeyStore {
	if prefix == "" {
		prefix = "summarizer"
	}
	return &ValkeyStore{client: client, prefix: prefix}
}

func (s *ValkeyStore) Host(ctx context.Context) (string, error) {
	cmd := s.client.B().Get().Key(s.key(hostField)).Build()
	host, err := s.client.Do(ctx, cmd).ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return "", nil
		}
		return "", err
	}
	return host, nil
}

func (s *ValkeyStore) SetHost(ctx context.Context, host string) error {
	host = strings.TrimSpace(host)
	if host == "" {
		return s.client.Do(ctx, s.client.B().Del().Key(s.key(hostField)).Build()).Error()
	}
	return s.client.Do(ctx, s.client.B().Set().Key(s.key(hostField)).Value(host).Build()).Error()
}

func (s *ValkeyStore) key(field string) string {
	return fmt.Sprintf("%s:%s", s.prefix, field)
}

var _ settings.Store = (*ValkeyStore)(nil)
