package main

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/web-summarizer/internal/domain/endpoint"
	"github.com/yanqian/web-summarizer/internal/domain/extraction"
	"github.com/yanqian/web-summarizer/internal/domain/progress"
	"github.com/yanqian/web-summarizer/internal/domain/settings"
	"github.com/yanqian/web-summarizer/internal/domain/summarizer"
	"github.com/yanqian/web-summarizer/internal/domain/target"
	"github.com/yanqian/web-summarizer/internal/infra/agentclient"
	"github.com/yanqian/web-summarizer/internal/infra/config"
	"github.com/yanqian/web-summarizer/internal/infra/pagereader"
	"github.com/yanqian/web-summarizer/internal/infra/progressrelay"
	"github.com/yanqian/web-summarizer/internal/infra/settingsstore"
	"github.com/yanqian/web-summarizer/internal/infra/stream"
	"github.com/yanqian/web-summarizer/internal/infra/targetrepo"
)

func provideSummaryConfig(cfg *config.Config) summarizer.Config {
	return summarizer.Config{
		MaxPayloadBytes: cfg.Summary.MaxPayloadBytes,
		DefaultLength:   summarizer.Length(cfg.Summary.DefaultLength),
		Endpoint: endpoint.Config{
			Host: cfg.Summary.Host,
			Port: cfg.Summary.Port,
			Path: cfg.Summary.Path,
		},
	}
}

func provideStreamClient(cfg *config.Config) *stream.Client {
	return stream.NewClient(nil, cfg.Summary.RequestTimeout)
}

func provideTargetRepository() target.Repository {
	return targetrepo.NewMemoryRepository()
}

func provideExtractor(cfg *config.Config, logger *slog.Logger) *extraction.Extractor {
	messenger := agentclient.NewClient(&http.Client{})
	reader := pagereader.NewReader(&http.Client{Timeout: cfg.Extraction.FetchTimeout}, pagereader.Mode(cfg.Extraction.FallbackMode), logger)
	return extraction.NewDefaultExtractor(messenger, reader, cfg.Extraction.AgentTimeout, logger)
}

func provideProgressBus(cfg *config.Config, logger *slog.Logger) *progress.Bus {
	return progress.NewBus(cfg.Progress.SubscriberBuffer, logger)
}

func provideProgressPublisher(cfg *config.Config, bus *progress.Bus, logger *slog.Logger) progress.Publisher {
	fanout := progress.Fanout{bus}
	if !cfg.Progress.Valkey.Enabled {
		return fanout
	}
	client, err := connectValkey(cfg.Progress.Valkey.Addr)
	if err != nil {
		logger.Error("progress relay unavailable, using in-process bus only", "error", err)
		return fanout
	}
	logger.Info("progress valkey relay enabled", "addr", cfg.Progress.Valkey.Addr, "channel", cfg.Progress.Channel)
	return append(fanout, progressrelay.NewValkeyPublisher(client, cfg.Progress.Channel, logger))
}

func provideSettingsStore(cfg *config.Config, logger *slog.Logger) settings.Store {
	if cfg.Settings.Valkey.Enabled {
		client, err := connectValkey(cfg.Settings.Valkey.Addr)
		if err != nil {
			logger.Error("valkey settings store unavailable, falling back to memory store", "error", err)
		} else {
			logger.Info("settings valkey store enabled", "addr", cfg.Settings.Valkey.Addr)
			return settingsstore.NewValkeyStore(client, cfg.Settings.Prefix)
		}
	}
	return settingsstore.NewMemoryStore("")
}

func connectValkey(addr string) (valkey.Client, error) {
	opt, err := buildValkeyOptions(addr)
	if err != nil {
		return nil, err
	}
	client, err := valkey.NewClient(opt)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}

func buildValkeyOptions(addr string) (valkey.ClientOption, error) {
	if strings.Contains(addr, "://") {
		return valkey.ParseURL(addr)
	}
	return valkey.ClientOption{InitAddress: []string{addr}}, nil
}
