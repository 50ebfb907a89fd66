// Package pageagent is the cooperative agent that lives next to one document and answers text
// requests from the orchestrator.
package pageagent

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/yanqian/web-summarizer/internal/domain/extraction"
)

// ErrExtract is reported to the orchestrator when the walk itself fails.
var ErrExtract = errors.New("Failed to extract text.")

// Source loads the current state of the agent's document.
type Source interface {
	Load(ctx context.Context) (*goquery.Document, error)
}

// URLSource fetches the document from its URL on every load.
type URLSource struct {
	client *http.Client
	url    string
}

func NewURLSource(client *http.Client, url string) *URLSource {
	if client == nil {
		client = http.DefaultClient
	}
	return &URLSource{client: client, url: url}
}

func (s *URLSource) Load(ctx context.Context) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch document: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch document: status code %d", resp.StatusCode)
	}
	return goquery.NewDocumentFromReader(resp.Body)
}

// StaticSource serves a fixed document.
type StaticSource struct {
	html string
}

func NewStaticSource(html string) *StaticSource {
	return &StaticSource{html: html}
}

func (s *StaticSource) Load(context.Context) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(s.html))
}

// ReaderSource parses whatever r yields, once.
func ReaderSource(r io.Reader) (*StaticSource, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return NewStaticSource(string(raw)), nil
}

// Agent answers GET_PAGE_TEXT for its document.
type Agent struct {
	source Source
	logger *slog.Logger
}

func NewAgent(source Source, logger *slog.Logger) *Agent {
	return &Agent{source: source, logger: logger.With("component", "pageagent.agent")}
}

// PageText returns the visible body text of the document, or nil when it has none. Any
// failure, panics included, is reported as ErrExtract.
func (a *Agent) PageText(ctx context.Context) (text *string, err error) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("text walk panicked", "panic", r)
			text, err = nil, ErrExtract
		}
	}()

	doc, err := a.source.Load(ctx)
	if err != nil {
		a.logger.Error("document load failed", "error", err)
		return nil, ErrExtract
	}
	body := doc.Find("body")
	if body.Length() == 0 {
		return nil, nil
	}
	return VisibleText(body.Get(0)), nil
}

// Reply builds the protocol reply to msg. The bool is false for unsupported message types.
func (a *Agent) Reply(ctx context.Context, msg extraction.AgentMessage) (extraction.AgentReply, bool) {
	if msg.Type != extraction.MessageGetPageText {
		return extraction.AgentReply{}, false
	}
	text, err := a.PageText(ctx)
	if err != nil {
		return extraction.AgentReply{Error: err.Error()}, true
	}
	return extraction.AgentReply{Text: text}, true
}
