// Package stream posts a summarization payload and consumes the service's raw UTF-8 response
// as a sequence of incremental chunks.
package stream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	readBufferSize = 32 << 10
	errorBodyLimit = 4 << 10
)

// ErrNoStream is returned when a successful response carries no readable body.
var ErrNoStream = errors.New("No response body (stream) from server.")

// Request is the JSON body sent to the summarization service.
type Request struct {
	Content string `json:"content"`
	Length  string `json:"length"`
}

// StatusError reports a non-2xx response. Body is best effort and may be empty.
type StatusError struct {
	Code   int
	Status string
	Body   string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("HTTP %d %s", e.Code, e.Status)
	if e.Body != "" {
		msg += " - " + e.Body
	}
	return msg
}

// Stream yields decoded chunks until io.EOF. It is finite and not restartable.
type Stream interface {
	Recv() (string, error)
	Text() string
	Close() error
}

// Client performs streaming POSTs to the summarization service.
type Client struct {
	httpClient *http.Client
}

// NewClient wraps httpClient, or a client with the given overall timeout when nil. A zero
// timeout leaves the stream unbounded.
func NewClient(httpClient *http.Client, timeout time.Duration) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{httpClient: httpClient}
}

// Open issues the request and returns the response stream once the status is known.
func (c *Client) Open(ctx context.Context, url string, req Request) (Stream, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode summarization request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build summarization request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request summarization stream: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		return nil, &StatusError{
			Code:   resp.StatusCode,
			Status: statusText(resp),
			Body:   readErrorBody(resp.Body),
		}
	}
	if resp.Body == nil || resp.Body == http.NoBody {
		if resp.Body != nil {
			resp.Body.Close()
		}
		return nil, ErrNoStream
	}

	return &ChunkStream{
		body:    resp.Body,
		buf:     make([]byte, readBufferSize),
		decoder: newTextDecoder(),
	}, nil
}

func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, fmt.Sprintf("%d", resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}

func readErrorBody(body io.Reader) string {
	if body == nil {
		return ""
	}
	payload, err := io.ReadAll(io.LimitReader(body, errorBodyLimit))
	if err != nil {
		return ""
	}
	return string(payload)
}

// ChunkStream reads a response body incrementally.
type ChunkStream struct {
	body    io.ReadCloser
	buf     []byte
	decoder *textDecoder
	total   strings.Builder
	sawEOF  bool
	done    bool
}

// Recv returns the next non-empty decoded fragment or io.EOF once the body is exhausted.
func (s *ChunkStream) Recv() (string, error) {
	for !s.done {
		if s.sawEOF {
			s.done = true
			s.body.Close()
			tail, err := s.decoder.decode(nil, true)
			if err != nil {
				return "", fmt.Errorf("decode stream: %w", err)
			}
			if tail != "" {
				s.total.WriteString(tail)
				return tail, nil
			}
			break
		}

		n, readErr := s.body.Read(s.buf)
		if errors.Is(readErr, io.EOF) {
			s.sawEOF = true
		} else if readErr != nil {
			s.done = true
			s.body.Close()
			return "", fmt.Errorf("read stream: %w", readErr)
		}
		if n == 0 {
			continue
		}
		chunk, err := s.decoder.decode(s.buf[:n], false)
		if err != nil {
			s.done = true
			s.body.Close()
			return "", fmt.Errorf("decode stream: %w", err)
		}
		if chunk != "" {
			s.total.WriteString(chunk)
			return chunk, nil
		}
	}
	return "", io.EOF
}

// Text is the concatenation of every chunk returned so far.
func (s *ChunkStream) Text() string {
	return s.total.String()
}

// Close releases the response body.
func (s *ChunkStream) Close() error {
	if s.done {
		return nil
	}
	s.done = true
	return s.body.Close()
}

var _ Stream = (*ChunkStream)(nil)
