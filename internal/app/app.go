package app

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"underwriter/internal/config"
	"underwriter/internal/logger"
	"underwriter/internal/notifier"
	"underwriter/internal/policy"
	"underwriter/internal/reasoner"
	"underwriter/internal/retrieval"
	"underwriter/internal/service"
	"underwriter/internal/store/audit"
	"underwriter/internal/store/decisionlog"
	httpapi "underwriter/internal/transport/http"
	"underwriter/internal/underwriting"
)

// App owns application-level assembly: config to dependencies to a running
// HTTP surface. Construction never touches the network; dependencies that
// fail at runtime degrade per the workflow contracts.
type App struct {
	cfg       *config.Config
	svc       *service.DecisionService
	server    *httpapi.Server
	rules     *policy.Registry
	logs      *decisionlog.Store
	exchanges *audit.Store
}

// NewApp builds the application object without starting it.
func NewApp(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	logger.SetLevel(cfg.App.LogLevel)

	rules, err := policy.NewRegistry(cfg.Policy.TemplatesPath)
	if err != nil {
		return nil, fmt.Errorf("load policy rulebook: %w", err)
	}

	var retriever underwriting.FragmentRetriever
	if cfg.Retriever.BaseURL != "" {
		searcher, err := retrieval.NewHTTPSearcher(cfg.Retriever.BaseURL, cfg.Retriever.APIKey, seconds(cfg.Retriever.TimeoutSeconds, 10))
		if err != nil {
			return nil, fmt.Errorf("retriever endpoint: %w", err)
		}
		retriever = retrieval.NewDocumentRetriever(searcher, seconds(cfg.Retriever.TimeoutSeconds, 10))
	} else {
		logger.Warnf("retriever base_url empty; decisions run without policy context")
	}

	var guarded *reasoner.Guarded
	var infer underwriting.Reasoner
	var exchanges *audit.Store
	if cfg.Reasoner.Model != "" {
		client := reasoner.NewChatClient(cfg.Reasoner.BaseURL, cfg.Reasoner.APIKey, cfg.Reasoner.Model, seconds(cfg.Reasoner.TimeoutSeconds, 30))
		client.Temperature = cfg.Reasoner.Temperature
		client.MaxRetries = cfg.Reasoner.MaxRetries
		var inner underwriting.Reasoner = client
		if cfg.Store.AuditPath != "" {
			exchanges, err = audit.Open(cfg.Store.AuditPath)
			if err != nil {
				return nil, fmt.Errorf("open audit log: %w", err)
			}
			inner = reasoner.NewAudited(inner, exchanges, cfg.Reasoner.Model)
		}
		guarded = reasoner.NewGuarded(inner, cfg.Reasoner.BreakerThreshold, seconds(cfg.Reasoner.BreakerCooldownSeconds, 30))
		infer = guarded
	} else {
		logger.Warnf("reasoner model empty; assisted assessment disabled")
	}

	workflow, err := underwriting.NewWorkflow(underwriting.Options{
		Retriever:       retriever,
		Reasoner:        infer,
		Rules:           rules,
		TopK:            cfg.Retriever.TopK,
		ReasonerTimeout: seconds(cfg.Reasoner.TimeoutSeconds, 30),
	})
	if err != nil {
		return nil, err
	}

	var logs *decisionlog.Store
	if cfg.Store.Path != "" {
		logs, err = decisionlog.Open(cfg.Store.Path)
		if err != nil {
			return nil, fmt.Errorf("open decision log: %w", err)
		}
	}

	var notify notifier.TextNotifier
	if cfg.Notify.Telegram.Enabled {
		notify = notifier.NewTelegram(cfg.Notify.Telegram.BotToken, cfg.Notify.Telegram.ChatID)
	}

	svc := service.NewDecisionService(workflow, logs, notify, cfg.Notify.HighRiskThreshold)
	if guarded != nil {
		svc.SetReasonerHealth(guarded.Healthy)
	}

	server, err := httpapi.NewServer(cfg.App.HTTPAddr, svc)
	if err != nil {
		return nil, err
	}

	return &App{cfg: cfg, svc: svc, server: server, rules: rules, logs: logs, exchanges: exchanges}, nil
}

// Run serves HTTP until ctx is cancelled, then releases the store.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.cfg == nil {
		return fmt.Errorf("app not initialized")
	}
	logger.Infof("underwriter starting env=%s addr=%s ruleset_version=%d",
		a.cfg.App.Env, a.cfg.App.HTTPAddr, a.rules.Version())

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		if err := a.server.Start(ctx); err != nil {
			return fmt.Errorf("http server error: %w", err)
		}
		return nil
	})

	err := group.Wait()
	if a.logs != nil {
		if cerr := a.logs.Close(); cerr != nil {
			logger.Warnf("decision log close: %v", cerr)
		}
	}
	if a.exchanges != nil {
		if cerr := a.exchanges.Close(); cerr != nil {
			logger.Warnf("audit log close: %v", cerr)
		}
	}
	return err
}

// Service exposes the decision service for test harnesses.
func (a *App) Service() *service.DecisionService {
	if a == nil {
		return nil
	}
	return a.svc
}

func seconds(n, fallback int) time.Duration {
	if n <= 0 {
		n = fallback
	}
	return time.Duration(n) * time.Second
}
