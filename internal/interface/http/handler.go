package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/web-summarizer/internal/domain/progress"
	"github.com/yanqian/web-summarizer/internal/domain/settings"
	"github.com/yanqian/web-summarizer/internal/domain/summarizer"
	"github.com/yanqian/web-summarizer/internal/domain/target"
	apperrors "github.com/yanqian/web-summarizer/pkg/errors"
)

// EventSource hands out progress subscriptions. The returned func ends the subscription.
type EventSource interface {
	Subscribe() (<-chan progress.Event, func())
}

// Handler wires the HTTP transport to domain services.
type Handler struct {
	summarizerSvc summarizer.Service
	events        EventSource
	targets       target.Repository
	prefs         settings.Store
	logger        *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(summarySvc summarizer.Service, events EventSource, targets target.Repository, prefs settings.Store, logger *slog.Logger) *Handler {
	return &Handler{
		summarizerSvc: summarySvc,
		events:        events,
		targets:       targets,
		prefs:         prefs,
		logger:        logger.With("component", "http.handler"),
	}
}

// SummarizePage runs one summarization session and answers once its terminal event is out.
// An empty body summarizes the active target.
func (h *Handler) SummarizePage(c *gin.Context) {
	var cmd summarizer.Command
	if err := c.ShouldBindJSON(&cmd); err != nil && !errors.Is(err, io.EOF) {
		abortWithError(c, asHTTPError(invalidInput(errMessage(err), err)))
		return
	}

	resp := h.summarizerSvc.Summarize(c.Request.Context(), cmd)
	c.JSON(http.StatusOK, resp)
}

// Events streams every progress event using Server-Sent Events. The optional sessionId query
// parameter narrows the stream to one session.
func (h *Handler) Events(c *gin.Context) {
	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, "stream_unsupported", "streaming not supported", nil))
		return
	}

	events, cancel := h.events.Subscribe()
	defer cancel()
	sessionID := c.Query("sessionId")

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Status(http.StatusOK)
	c.Writer.Write([]byte(": connected\n\n"))
	flusher.Flush()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case evt, open := <-events:
			if !open {
				return
			}
			if sessionID != "" && evt.SessionID != sessionID {
				continue
			}
			payload, err := json.Marshal(evt)
			if err != nil {
				h.logger.Error("marshal event failed", "error", err)
				continue
			}
			c.Writer.Write([]byte("data: "))
			c.Writer.Write(payload)
			c.Writer.Write([]byte("\n\n"))
			flusher.Flush()
		}
	}
}

// RegisterTarget announces a document that can be summarized.
func (h *Handler) RegisterTarget(c *gin.Context) {
	var req target.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, asHTTPError(invalidInput(errMessage(err), err)))
		return
	}
	if err := validateURL(req.URL, true); err != nil {
		abortWithError(c, asHTTPError(invalidInput("url: "+err.Error(), err)))
		return
	}
	if err := validateURL(req.AgentURL, false); err != nil {
		abortWithError(c, asHTTPError(invalidInput("agentUrl: "+err.Error(), err)))
		return
	}

	registered, err := h.targets.Register(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, "target_register_failed", errMessage(err), err))
		return
	}
	h.logger.Info("target registered", "target_id", registered.ID, "url", registered.URL, "active", registered.Active)
	c.JSON(http.StatusCreated, registered)
}

// ListTargets returns every registered document.
func (h *Handler) ListTargets(c *gin.Context) {
	items, err := h.targets.List(c.Request.Context())
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, "target_list_failed", errMessage(err), err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"targets": items})
}

// ActivateTarget makes a registered document the default for summarize commands.
func (h *Handler) ActivateTarget(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		abortWithError(c, asHTTPError(invalidInput("target id must be a positive integer", err)))
		return
	}
	ctx := c.Request.Context()
	if err := h.targets.Activate(ctx, id); err != nil {
		if errors.Is(err, target.ErrNotFound) {
			abortWithError(c, asHTTPError(apperrors.Wrap(apperrors.CodeNoTarget, fmt.Sprintf("No target with id %d.", id), err)))
			return
		}
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, "target_activate_failed", errMessage(err), err))
		return
	}
	activated, err := h.targets.Get(ctx, id)
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, "target_activate_failed", errMessage(err), err))
		return
	}
	c.JSON(http.StatusOK, activated)
}

type hostPreference struct {
	Host string `json:"host"`
}

// GetHost returns the stored summarization host, empty when the default applies.
func (h *Handler) GetHost(c *gin.Context) {
	host, err := h.prefs.Host(c.Request.Context())
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, "settings_failed", errMessage(err), err))
		return
	}
	c.JSON(http.StatusOK, hostPreference{Host: host})
}

// PutHost stores the summarization host. An empty host restores the default.
func (h *Handler) PutHost(c *gin.Context) {
	var req hostPreference
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, asHTTPError(invalidInput(errMessage(err), err)))
		return
	}
	host := strings.TrimSpace(req.Host)
	if strings.ContainsAny(host, " \t\r\n") {
		abortWithError(c, asHTTPError(invalidInput("host cannot contain whitespace", nil)))
		return
	}
	if err := h.prefs.SetHost(c.Request.Context(), host); err != nil {
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, "settings_failed", errMessage(err), err))
		return
	}
	c.JSON(http.StatusOK, hostPreference{Host: host})
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func validateURL(raw string, required bool) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		if required {
			return errors.New("cannot be empty")
		}
		return nil
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return errors.New("scheme must be http or https")
	}
	if parsed.Host == "" {
		return errors.New("host cannot be empty")
	}
	return nil
}

func invalidInput(message string, err error) error {
	return apperrors.Wrap(apperrors.CodeInvalidInput, message, err)
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
