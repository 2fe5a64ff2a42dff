//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/yanqian/semantic-faq/internal/bootstrap"
	"github.com/yanqian/semantic-faq/internal/domain/auth"
	"github.com/yanqian/semantic-faq/internal/domain/faq"
	"github.com/yanqian/semantic-faq/internal/infra/config"
	"github.com/yanqian/semantic-faq/internal/infra/embedding"
	httpiface "github.com/yanqian/semantic-faq/internal/interface/http"
	"github.com/yanqian/semantic-faq/pkg/logger"
)

func initializeApp() (*bootstrap.App, func(), error) {
	wire.Build(
		config.Load,
		logger.New,
		provideFAQConfig,
		provideCorpusConfig,
		provideEmbeddingConfig,
		provideAuthConfig,
		provideCorpusSource,
		provideCorpusWatcher,
		provideTrendingStore,
		provideVectorCache,
		provideQueryStats,
		provideUserRepository,
		embedding.New,
		faq.NewCorpusStore,
		faq.NewEngine,
		faq.NewService,
		auth.NewService,
		httpiface.NewHandler,
		httpiface.NewAuthHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil, nil
}
