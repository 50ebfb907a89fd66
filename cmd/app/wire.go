//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/yanqian/web-summarizer/internal/bootstrap"
	"github.com/yanqian/web-summarizer/internal/domain/extraction"
	"github.com/yanqian/web-summarizer/internal/domain/progress"
	"github.com/yanqian/web-summarizer/internal/domain/summarizer"
	"github.com/yanqian/web-summarizer/internal/infra/config"
	"github.com/yanqian/web-summarizer/internal/infra/stream"
	httpiface "github.com/yanqian/web-summarizer/internal/interface/http"
	"github.com/yanqian/web-summarizer/pkg/logger"
)

func initializeApp() (*bootstrap.App, error) {
	wire.Build(
		config.Load,
		logger.New,
		provideSummaryConfig,
		provideStreamClient,
		provideTargetRepository,
		provideExtractor,
		provideProgressBus,
		provideProgressPublisher,
		provideSettingsStore,
		summarizer.NewService,
		wire.Bind(new(summarizer.TextExtractor), new(*extraction.Extractor)),
		wire.Bind(new(summarizer.StreamClient), new(*stream.Client)),
		wire.Bind(new(httpiface.EventSource), new(*progress.Bus)),
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil
}
