// Package summarizer orchestrates one summarization session: resolve the target document,
// extract its text, stream it through the summarization service and relay progress.
package summarizer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/yanqian/web-summarizer/internal/domain/endpoint"
	"github.com/yanqian/web-summarizer/internal/domain/extraction"
	"github.com/yanqian/web-summarizer/internal/domain/progress"
	"github.com/yanqian/web-summarizer/internal/domain/settings"
	"github.com/yanqian/web-summarizer/internal/domain/target"
	"github.com/yanqian/web-summarizer/internal/infra/stream"
	apperrors "github.com/yanqian/web-summarizer/pkg/errors"
	"github.com/yanqian/web-summarizer/pkg/metrics"
	"github.com/yanqian/web-summarizer/pkg/util"
)

// Service runs summarize commands. Summarize always returns after exactly one terminal
// progress event has been published for the session.
type Service interface {
	Summarize(ctx context.Context, cmd Command) Response
}

// TargetResolver finds the document a command refers to.
type TargetResolver interface {
	Get(ctx context.Context, id int64) (target.Target, error)
	Active(ctx context.Context) (target.Target, bool, error)
}

type TextExtractor interface {
	Extract(ctx context.Context, t target.Target) extraction.Result
}

type StreamClient interface {
	Open(ctx context.Context, url string, req stream.Request) (stream.Stream, error)
}

type service struct {
	cfg       Config
	targets   TargetResolver
	extractor TextExtractor
	prefs     settings.Store
	streams   StreamClient
	publisher progress.Publisher
	logger    *slog.Logger
	newID     func() string
}

// NewService is a wire provider for the orchestrator.
func NewService(cfg Config, targets target.Repository, extractor TextExtractor, prefs settings.Store, streams StreamClient, publisher progress.Publisher, logger *slog.Logger) Service {
	if cfg.MaxPayloadBytes <= 0 {
		cfg.MaxPayloadBytes = DefaultMaxPayloadBytes
	}
	if cfg.DefaultLength == "" {
		cfg.DefaultLength = LengthAuto
	}
	if cfg.Endpoint == (endpoint.Config{}) {
		cfg.Endpoint = endpoint.Default()
	}
	return &service{
		cfg:       cfg,
		targets:   targets,
		extractor: extractor,
		prefs:     prefs,
		streams:   streams,
		publisher: publisher,
		logger:    logger.With("component", "summarizer.service"),
		newID:     uuid.NewString,
	}
}

// Summarize runs one session to completion. The session is detached from ctx cancellation so
// a surface that goes away does not abort an in-flight stream.
func (s *service) Summarize(ctx context.Context, cmd Command) (resp Response) {
	ctx = context.WithoutCancel(ctx)
	sess := &session{
		svc:     s,
		id:      s.newID(),
		cmd:     cmd,
		state:   StateIdle,
		started: time.Now(),
	}
	sess.logger = s.logger.With("session_id", sess.id)

	defer func() {
		if r := recover(); r != nil {
			resp = sess.fail(ctx, apperrors.Wrap(apperrors.CodeInternal, fmt.Sprint(r), nil))
		}
	}()

	if err := sess.run(ctx); err != nil {
		return sess.fail(ctx, err)
	}
	return Response{OK: true, SessionID: sess.id}
}

func (s *service) resolveTarget(ctx context.Context, id int64) (target.Target, error) {
	if id != 0 {
		t, err := s.targets.Get(ctx, id)
		if errors.Is(err, target.ErrNotFound) {
			return target.Target{}, apperrors.Wrap(apperrors.CodeNoTarget, fmt.Sprintf("No target with id %d.", id), err)
		}
		if err != nil {
			return target.Target{}, apperrors.Wrap(apperrors.CodeInternal, "target lookup failed", err)
		}
		return t, nil
	}
	t, ok, err := s.targets.Active(ctx)
	if err != nil {
		return target.Target{}, apperrors.Wrap(apperrors.CodeInternal, "target lookup failed", err)
	}
	if !ok {
		return target.Target{}, apperrors.Wrap(apperrors.CodeNoTarget, "No active tab found.", nil)
	}
	return t, nil
}

// endpointSnapshot reads the host preference once per session.
func (s *service) endpointSnapshot(ctx context.Context) (endpoint.Config, error) {
	host, err := s.prefs.Host(ctx)
	if err != nil {
		return endpoint.Config{}, apperrors.Wrap(apperrors.CodeInternal, "read host preference failed", err)
	}
	return s.cfg.Endpoint.WithHost(host), nil
}

type session struct {
	svc        *service
	id         string
	cmd        Command
	state      State
	terminated bool
	started    time.Time
	stats      metrics.StreamStats
	logger     *slog.Logger
}

func (s *session) run(ctx context.Context) error {
	s.transition(StateResolvingTarget)
	tgt, err := s.svc.resolveTarget(ctx, s.cmd.TargetID)
	if err != nil {
		return err
	}

	s.transition(StateExtracting)
	res := s.svc.extractor.Extract(ctx, tgt)
	switch res.Outcome {
	case extraction.OutcomeEmpty:
		return apperrors.Wrap(apperrors.CodeEmptyContent, MessageNoText, nil)
	case extraction.OutcomeFailed:
		return apperrors.Wrap(apperrors.CodeExtractionFailed, res.Reason, nil)
	}

	payload, truncated := s.svc.buildPayload(res.Text, s.cmd.Length)
	s.stats.PayloadBytes = len(payload.Content)
	s.stats.Truncated = truncated
	if truncated {
		s.logger.Info("page text truncated", "original_bytes", len(res.Text), "payload_bytes", len(payload.Content))
	}

	endpointCfg, err := s.svc.endpointSnapshot(ctx)
	if err != nil {
		return err
	}
	url := endpoint.Resolve(endpointCfg)

	s.transition(StateStreaming)
	s.publish(ctx, progress.Start(s.id, url, util.NowUTC()))
	summary, err := s.stream(ctx, url, payload)
	if err != nil {
		return err
	}

	s.transition(StateDone)
	s.stats.Duration = time.Since(s.started)
	s.terminate(ctx, progress.Done(s.id, summary, util.NowUTC()))
	if s.stats.IsZero() {
		s.logger.Warn("summary stream closed without content", "target_id", tgt.ID, "url", url)
	}
	s.logger.Info("summarization completed", "target_id", tgt.ID, "url", url, "chunks", s.stats.Chunks, "bytes", s.stats.Bytes, "payload_bytes", s.stats.PayloadBytes, "duration_ms", s.stats.Duration.Milliseconds())
	return nil
}

func (s *session) stream(ctx context.Context, url string, payload Payload) (string, error) {
	st, err := s.svc.streams.Open(ctx, url, stream.Request{Content: payload.Content, Length: string(payload.Length)})
	if err != nil {
		return "", classifyStreamError(err)
	}
	defer st.Close()

	for {
		chunk, err := st.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", apperrors.Wrap(apperrors.CodeTransportFailure, err.Error(), err)
		}
		s.stats.Observe(chunk)
		s.publish(ctx, progress.Chunk(s.id, chunk, util.NowUTC()))
	}
	return st.Text(), nil
}

func classifyStreamError(err error) error {
	var statusErr *stream.StatusError
	switch {
	case errors.As(err, &statusErr):
		return apperrors.Wrap(apperrors.CodeTransportFailure, statusErr.Error(), err)
	case errors.Is(err, stream.ErrNoStream):
		return apperrors.Wrap(apperrors.CodeStreamUnavailable, stream.ErrNoStream.Error(), err)
	default:
		return apperrors.Wrap(apperrors.CodeTransportFailure, err.Error(), err)
	}
}

// fail converts err into the session's terminal result event.
func (s *session) fail(ctx context.Context, err error) Response {
	failedIn := s.state
	s.transition(StateError)

	if apperrors.IsCode(err, apperrors.CodeEmptyContent) {
		s.logger.Info("no page text found", "state", failedIn)
		s.terminate(ctx, progress.Result(s.id, MessageNoText, util.NowUTC()))
		return Response{SessionID: s.id, Reason: ReasonEmptyText}
	}

	msg := apperrors.Message(err)
	s.logger.Error("summarization failed", "state", failedIn, "code", errorCode(err), "error", err)
	s.terminate(ctx, progress.Result(s.id, ErrorPrefix+msg, util.NowUTC()))
	return Response{SessionID: s.id, Error: msg}
}

func (s *session) transition(to State) {
	s.logger.Debug("session state changed", "from", s.state, "to", to)
	s.state = to
}

func (s *session) publish(ctx context.Context, evt progress.Event) {
	if s.terminated {
		return
	}
	s.svc.publisher.Publish(ctx, evt)
}

func (s *session) terminate(ctx context.Context, evt progress.Event) {
	s.publish(ctx, evt)
	s.terminated = true
}

func errorCode(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return apperrors.CodeInternal
}
