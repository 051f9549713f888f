package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/neilberkman/hireplan/internal/core/agent"
	"github.com/neilberkman/hireplan/internal/core/analytics"
	"github.com/neilberkman/hireplan/internal/core/artifacts"
	"github.com/neilberkman/hireplan/internal/core/config"
	"github.com/neilberkman/hireplan/internal/core/docstore"
	"github.com/neilberkman/hireplan/internal/core/errs"
	"github.com/neilberkman/hireplan/internal/core/extract"
	"github.com/neilberkman/hireplan/internal/core/llm"
	"github.com/neilberkman/hireplan/internal/core/logging"
	"github.com/neilberkman/hireplan/internal/core/metrics"
	"github.com/neilberkman/hireplan/internal/core/models"
	"github.com/neilberkman/hireplan/internal/core/session"
)

// app bundles the stores every command works against.
type app struct {
	cfg       *config.Config
	docs      docstore.Store
	sessions  *session.Store
	analytics *analytics.Store
	logger    *slog.Logger
}

// openApp loads the configuration and opens the document backend. Logs go
// to w as text.
func openApp(w io.Writer) (*app, error) {
	level, err := logging.ParseLevel(logLevel)
	if err != nil {
		return nil, err
	}
	return openAppWithLogger(logging.Setup(w, logging.FormatText, level))
}

func openAppWithLogger(logger *slog.Logger) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if dataDir != "" {
		cfg.SetDataDir(dataDir)
	}

	docs, err := cfg.OpenStore()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.Storage.Driver, err)
	}
	logger.Debug("opened store", "driver", docs.Name(), "data_dir", cfg.DataDir)

	return &app{
		cfg:       cfg,
		docs:      docs,
		sessions:  session.NewStore(docs),
		analytics: analytics.NewStore(docs),
		logger:    logger,
	}, nil
}

func (a *app) Close() error {
	return a.docs.Close()
}

// newAgent builds the completion provider and the orchestrator.
func (a *app) newAgent(ctx context.Context, recorder metrics.Recorder) (*agent.Agent, error) {
	provider, err := llm.New(ctx, a.cfg.LLM)
	if err != nil {
		return nil, err
	}
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	return agent.New(a.sessions, a.analytics, provider,
		agent.WithExtractor(extract.New(a.cfg.Extractor)),
		agent.WithGenerator(a.generator()),
		agent.WithSystemPrompt(a.cfg.SystemPrompt),
		agent.WithDefaultTimeline(a.cfg.Extractor.TimelineWeeks),
		agent.WithMetrics(recorder),
		agent.WithLogger(a.logger),
	), nil
}

func (a *app) generator() *artifacts.Generator {
	return artifacts.NewGenerator(a.cfg.Templates, a.logger)
}

// loadSession returns an existing session; unlike session.Store.Open it
// never creates one.
func (a *app) loadSession(ctx context.Context, id string) (*models.Session, error) {
	ok, err := a.sessions.Exists(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &errs.NotFoundError{Kind: "session", ID: id}
	}
	return a.sessions.Open(ctx, id)
}

// warnAbsorbed prints storage failures that a turn absorbed.
func warnAbsorbed(w io.Writer, err error) {
	if err == nil {
		return
	}
	var se *errs.StorageError
	if errors.As(err, &se) {
		fmt.Fprintf(w, "warning: could not save everything (%v)\n", err)
		return
	}
	fmt.Fprintf(w, "warning: %v\n", err)
}
