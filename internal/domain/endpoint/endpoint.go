// Package endpoint turns a stored host preference into the summarization service URL.
package endpoint

import (
	"net"
	"strconv"
	"strings"
)

const (
	DefaultScheme = "http"
	DefaultHost   = "127.0.0.1"
	DefaultPort   = 7864
	DefaultPath   = "/summarize_stream_status"
)

// Config is the endpoint composition read fresh for every summarization.
type Config struct {
	Host string
	Port int
	Path string
}

// Default returns the composition used when nothing is stored.
func Default() Config {
	return Config{Host: DefaultHost, Port: DefaultPort, Path: DefaultPath}
}

// WithHost returns a copy of c using host, keeping the default host when host is blank.
func (c Config) WithHost(host string) Config {
	if strings.TrimSpace(host) != "" {
		c.Host = host
	}
	return c
}

// Resolve builds the service URL. A host that already carries an http(s) scheme is used as
// the base verbatim and only the path is appended; the port is ignored in that case. A host
// that names its own port keeps it.
func Resolve(cfg Config) string {
	host := strings.TrimSpace(cfg.Host)
	if host == "" {
		host = DefaultHost
	}
	path := cfg.Path
	if path == "" {
		path = DefaultPath
	}
	if HasScheme(host) {
		return host + path
	}
	return DefaultScheme + "://" + authority(host, cfg.Port) + path
}

func authority(host string, port int) string {
	if _, _, err := net.SplitHostPort(host); err == nil {
		return host
	}
	if port <= 0 {
		port = DefaultPort
	}
	host = strings.TrimSuffix(strings.TrimPrefix(host, "["), "]")
	return net.JoinHostPort(host, strconv.Itoa(port))
}

// HasScheme reports whether host starts with http:// or https://, ignoring case.
func HasScheme(host string) bool {
	lower := strings.ToLower(host)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
