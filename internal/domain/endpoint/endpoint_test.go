package endpoint

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{
			name: "defaults",
			cfg:  Default(),
			want: "http://127.0.0.1:7864/summarize_stream_status",
		},
		{
			name: "host with explicit port and no scheme",
			cfg:  Default().WithHost("example.com:9000"),
			want: "http://example.com:9000/summarize_stream_status",
		},
		{
			name: "bare host",
			cfg:  Default().WithHost("10.0.0.5"),
			want: "http://10.0.0.5:7864/summarize_stream_status",
		},
		{
			name: "ipv6 literal is bracketed",
			cfg:  Default().WithHost("::1"),
			want: "http://[::1]:7864/summarize_stream_status",
		},
		{
			name: "custom port applies to bare host",
			cfg:  Config{Host: "summarizer", Port: 8080, Path: DefaultPath},
			want: "http://summarizer:8080/summarize_stream_status",
		},
		{
			name: "https host ignores port",
			cfg:  Default().WithHost("https://api.example.com"),
			want: "https://api.example.com/summarize_stream_status",
		},
		{
			name: "scheme test is case insensitive",
			cfg:  Config{Host: "HTTP://Box.local:8000", Port: 1, Path: "/p"},
			want: "HTTP://Box.local:8000/p",
		},
		{
			name: "whitespace host is trimmed",
			cfg:  Default().WithHost("  localhost  "),
			want: "http://localhost:7864/summarize_stream_status",
		},
		{
			name: "blank host falls back",
			cfg:  Default().WithHost("   "),
			want: "http://127.0.0.1:7864/summarize_stream_status",
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, Resolve(tt.cfg))
		})
	}
}

func TestResolveIsIdempotent(t *testing.T) {
	cfg := Default().WithHost("https://api.example.com")
	require.Equal(t, Resolve(cfg), Resolve(cfg))
}

func TestHasScheme(t *testing.T) {
	require.True(t, HasScheme("https://x"))
	require.True(t, HasScheme("Http://x"))
	require.False(t, HasScheme("ftp://x"))
	require.False(t, HasScheme("example.com"))
}
