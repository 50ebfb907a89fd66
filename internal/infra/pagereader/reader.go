// Package pagereader reads the rendered text of a document directly, without its agent.
package pagereader

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"

	"github.com/yanqian/web-summarizer/internal/domain/extraction"
	"github.com/yanqian/web-summarizer/internal/domain/target"
)

// Mode selects how the document body is turned into text.
type Mode string

const (
	// ModeText reads every visible text node of the body.
	ModeText Mode = "text"
	// ModeReadability keeps only the main article content.
	ModeReadability Mode = "readability"
)

const maxDocumentBytes = 32 << 20

const hiddenSelectors = "script,style,noscript,template"

// Reader implements extraction.Injector by fetching the document and reading its body text.
// Mechanism failures after the fetch surface as the SCRIPT_ERROR marker, no text as EMPTY.
type Reader struct {
	httpClient *http.Client
	mode       Mode
	logger     *slog.Logger
}

// NewReader constructs a reader. Unknown modes fall back to ModeText.
func NewReader(httpClient *http.Client, mode Mode, logger *slog.Logger) *Reader {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if mode != ModeReadability {
		mode = ModeText
	}
	return &Reader{
		httpClient: httpClient,
		mode:       mode,
		logger:     logger.With("component", "pagereader.reader"),
	}
}

// ReadRenderedText implements extraction.Injector.
func (r *Reader) ReadRenderedText(ctx context.Context, t target.Target) (string, error) {
	pageURL, err := url.Parse(strings.TrimSpace(t.URL))
	if err != nil || pageURL.Host == "" {
		return "", fmt.Errorf("invalid target url %q", t.URL)
	}
	html, err := r.fetch(ctx, pageURL)
	if err != nil {
		return "", err
	}
	if html == nil {
		return extraction.MarkerScriptError, nil
	}

	var text string
	if r.mode == ModeReadability {
		text, err = readableText(html, pageURL)
	} else {
		text, err = bodyText(bytes.NewReader(html))
	}
	if err != nil {
		r.logger.Warn("document read failed", "url", pageURL.String(), "mode", r.mode, "error", err)
		return extraction.MarkerScriptError, nil
	}
	if text == "" {
		return extraction.MarkerEmpty, nil
	}
	return text, nil
}

// fetch returns nil html without error when the document answered but cannot be read.
func (r *Reader) fetch(ctx context.Context, pageURL *url.URL) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build document request: %w", err)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		r.logger.Warn("document fetch rejected", "url", pageURL.String(), "status", resp.StatusCode)
		return nil, nil
	}
	html, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentBytes))
	if err != nil {
		r.logger.Warn("document body unreadable", "url", pageURL.String(), "error", err)
		return nil, nil
	}
	return html, nil
}

func readableText(html []byte, pageURL *url.URL) (string, error) {
	parser := readability.NewParser()
	article, err := parser.Parse(bytes.NewReader(html), pageURL)
	if err != nil {
		return "", fmt.Errorf("readability: %w", err)
	}
	return bodyText(strings.NewReader(article.Content))
}

func bodyText(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}
	body := doc.Find("body")
	body.Find(hiddenSelectors).Remove()
	return normalizeLines(body.Text()), nil
}

// normalizeLines trims every line, collapses inner whitespace and drops blank lines.
func normalizeLines(raw string) string {
	lines := strings.Split(raw, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

var _ extraction.Injector = (*Reader)(nil)
