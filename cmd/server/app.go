// File: cmd/server/app.go
package main

import (
	"context"
	"net/http"

	"gorm.io/gorm"

	"github.com/iyunix/go-taskmate/internal/config"
	"github.com/iyunix/go-taskmate/internal/database"
	"github.com/iyunix/go-taskmate/internal/handlers"
	"github.com/iyunix/go-taskmate/internal/ratelimit"
	"github.com/iyunix/go-taskmate/internal/repository/conversation"
	"github.com/iyunix/go-taskmate/internal/repository/message"
	"github.com/iyunix/go-taskmate/internal/repository/task"
	"github.com/iyunix/go-taskmate/internal/repository/toolcall"
	"github.com/iyunix/go-taskmate/internal/services"
	"github.com/iyunix/go-taskmate/internal/services/ai"
	"github.com/iyunix/go-taskmate/internal/services/chat"
	"github.com/iyunix/go-taskmate/internal/services/intent"
	"github.com/iyunix/go-taskmate/internal/services/resolver"
	"github.com/iyunix/go-taskmate/internal/services/tools"
)

// Application aggregates all services and handlers
type Application struct {
	Config       *config.Config
	Logger       services.Logger
	DB           *gorm.DB
	Orchestrator *chat.Orchestrator
	Toolset      *tools.Toolset
	Limiter      *ratelimit.KeyedLimiter
	ChatHandler  *handlers.ChatHandler
	TaskHandler  *handlers.TaskHandler
}

func openDatabase(cfg *config.Config) (*gorm.DB, error) {
	return database.Open(database.Options{
		Driver: database.Driver(cfg.DBDriver),
		DSN:    cfg.DBDSN,
	})
}

// ProvideAIConfig maps the LLM settings onto the provider config.
func ProvideAIConfig(cfg *config.Config) *ai.Config {
	aiConfig := ai.DefaultConfig()
	aiConfig.APIKey = cfg.LLMAPIKey
	aiConfig.BaseURL = cfg.LLMBaseURL
	if cfg.LLMModel != "" {
		aiConfig.Model = cfg.LLMModel
	}
	if cfg.LLMTimeout > 0 {
		aiConfig.Timeout = cfg.LLMTimeout
	}
	return aiConfig
}

// ProvideParser builds the intent parser, adding the LLM fallback only when
// a key is configured.
func ProvideParser(cfg *config.Config, logger services.Logger) (*intent.Parser, error) {
	opts := []intent.Option{intent.WithLogger(logger)}

	aiConfig := ProvideAIConfig(cfg)
	if aiConfig.Enabled() {
		provider, err := ai.NewOpenAIProvider(aiConfig)
		if err != nil {
			return nil, err
		}
		classifier, err := ai.NewIntentClassifier(provider)
		if err != nil {
			return nil, err
		}
		opts = append(opts, intent.WithFallback(classifier))
		logger.Info("LLM fallback enabled", "model", aiConfig.Model)
	}
	return intent.NewParser(opts...), nil
}

func ProvideChatConfig(cfg *config.Config) *chat.Config {
	chatConfig := chat.DefaultConfig()
	chatConfig.HistoryWindow = cfg.HistoryWindow
	chatConfig.ToolTimeout = cfg.ToolTimeout
	chatConfig.ConfirmDestructive = cfg.ConfirmDestructive
	return chatConfig
}

// InitializeApplication wires the repositories, services and handlers on db.
func InitializeApplication(cfg *config.Config, logger services.Logger, db *gorm.DB) (*Application, error) {
	toolset, err := tools.NewToolset(task.NewTaskRepository(db), logger)
	if err != nil {
		return nil, err
	}

	parser, err := ProvideParser(cfg, logger)
	if err != nil {
		return nil, err
	}

	orchestrator, err := chat.NewOrchestrator(
		ProvideChatConfig(cfg),
		conversation.NewConversationRepository(db),
		message.NewMessageRepository(db),
		toolcall.NewToolCallRepository(db),
		toolset,
		parser,
		resolver.New(resolver.WithThreshold(cfg.SimilarityThreshold)),
		logger,
	)
	if err != nil {
		return nil, err
	}

	limiter := ratelimit.NewKeyedLimiter(&ratelimit.Config{
		RatePerSecond: cfg.ChatRatePerSecond,
		Burst:         cfg.ChatRateBurst,
		IdleTTL:       ratelimit.DefaultChatConfig().IdleTTL,
		CleanupPeriod: ratelimit.DefaultChatConfig().CleanupPeriod,
	})

	return &Application{
		Config:       cfg,
		Logger:       logger,
		DB:           db,
		Orchestrator: orchestrator,
		Toolset:      toolset,
		Limiter:      limiter,
		ChatHandler:  handlers.NewChatHandler(orchestrator, logger, cfg.RequestTimeout),
		TaskHandler:  handlers.NewTaskHandler(toolset, logger),
	}, nil
}

// Router returns the HTTP handler for the application.
func (a *Application) Router() http.Handler {
	return handlers.NewRouter(handlers.RouterConfig{
		Chat:       a.ChatHandler,
		Tasks:      a.TaskHandler,
		JWTSecret:  []byte(a.Config.JWTSecretKey),
		Limiter:    a.Limiter,
		CORSOrigin: a.Config.CORSAllowedOrigin,
		Logger:     a.Logger,
	})
}

// Close releases the limiter and the database.
func (a *Application) Close() error {
	a.Limiter.Close()
	sqlDB, err := a.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func migrate(ctx context.Context, db *gorm.DB, cfg *config.Config) (int, error) {
	return database.Migrate(ctx, db, database.Driver(cfg.DBDriver))
}
