package di

import (
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/inbox-triage/internal/api"
	"github.com/mikey/inbox-triage/internal/config"
	"github.com/mikey/inbox-triage/internal/core"
	"github.com/mikey/inbox-triage/internal/factory"
	"github.com/mikey/inbox-triage/internal/feedback"
	"github.com/mikey/inbox-triage/internal/logging"
	"github.com/mikey/inbox-triage/internal/utils"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	// Register text processor
	if err := container.Provide(utils.NewTextProcessor); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewLLMFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewStoreFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewMailFactory); err != nil {
		return nil, err
	}

	// Register LLM client
	if err := container.Provide(func(f *factory.LLMFactory) (core.LLMClient, error) {
		return f.CreateLLMClient()
	}); err != nil {
		return nil, err
	}

	// Register key-value store
	if err := container.Provide(func(f *factory.StoreFactory) (core.KVStore, error) {
		return f.CreateKVStore()
	}); err != nil {
		return nil, err
	}

	// Register mail client
	if err := container.Provide(func(f *factory.MailFactory) (core.MailClient, error) {
		return f.CreateMailClient()
	}); err != nil {
		return nil, err
	}

	// Register feedback store
	if err := container.Provide(func(kv core.KVStore, logger *zap.Logger, cfg *config.Config) core.FeedbackRepository {
		return feedback.NewStore(kv, logger, cfg.GetFeedback().MaxEntries)
	}); err != nil {
		return nil, err
	}

	// Register classification engine
	if err := container.Provide(func(
		llm core.LLMClient,
		repo core.FeedbackRepository,
		logger *zap.Logger,
		tp *utils.TextProcessor,
		cfg *config.Config,
	) *core.Engine {
		return core.NewEngine(llm, repo, logger, tp,
			cfg.GetFeedback().RetrievalLimit,
			cfg.GetLLM().MaxSnippetSize)
	}); err != nil {
		return nil, err
	}

	// Register triage service
	if err := container.Provide(core.NewTriageService); err != nil {
		return nil, err
	}

	// Register HTTP server
	if err := container.Provide(func(svc *core.TriageService, logger *zap.Logger, cfg *config.Config) *api.Server {
		return api.NewServer(svc, logger,
			cfg.GetServer().ListenAddress,
			cfg.GetMail().FetchLimit)
	}); err != nil {
		return nil, err
	}

	return container, nil
}
