package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/anthropics/anthropic-sdk-go"
	openaisdk "github.com/openai/openai-go"
	openaioption "github.com/openai/openai-go/option"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/honeymesh/config"
	"github.com/hupe1980/honeymesh/core"
	"github.com/hupe1980/honeymesh/engine"
	"github.com/hupe1980/honeymesh/logging"
	"github.com/hupe1980/honeymesh/model"
	anthropicmodel "github.com/hupe1980/honeymesh/model/anthropic"
	geminimodel "github.com/hupe1980/honeymesh/model/gemini"
	openaimodel "github.com/hupe1980/honeymesh/model/openai"
	"github.com/hupe1980/honeymesh/report"
	"github.com/hupe1980/honeymesh/server"
	"github.com/hupe1980/honeymesh/session"
	firestoresession "github.com/hupe1980/honeymesh/session/firestore"
	sqlitesession "github.com/hupe1980/honeymesh/session/sqlite"
	"github.com/hupe1980/honeymesh/transcript"
)

func newServeCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP analyze service",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to YAML config file")
	return cmd
}

func serve(ctx context.Context, cfg config.Config) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := logging.NewSlogLogger(logging.ParseLogLevel(cfg.Logging.Level), cfg.Logging.Format, false)

	store, err := buildSessionStore(ctx, cfg.Session)
	if err != nil {
		return err
	}
	if closer, ok := store.(io.Closer); ok {
		defer closer.Close() //nolint:errcheck
	}

	m, err := buildModel(ctx, cfg.Model)
	if err != nil {
		return err
	}

	ts, err := buildTranscript(cfg.Transcript)
	if err != nil {
		return err
	}

	engineOpts := []func(o *engine.Options){
		engine.WithLogger(logger),
		engine.WithDeadline(cfg.Engine.Deadline),
		func(o *engine.Options) {
			o.ReportPolicy.MinTurns = cfg.Engine.ReportMinTurns
			o.ReportPolicy.MinConfidence = cfg.Engine.ReportMinConfidence
			o.ReportTimeout = cfg.Report.Timeout
			o.MaxTokens = cfg.Model.MaxTokens
			o.ScoreConfig = buildScoreConfig(cfg.Engine.Scorer)
		},
	}
	if cfg.Report.WebhookURL != "" {
		sink := report.NewWebhookSink(cfg.Report.WebhookURL, func(o *report.WebhookOptions) {
			o.Timeout = cfg.Report.Timeout
			o.APIKey = cfg.Report.APIKey
			o.Logger = logger
		})
		engineOpts = append(engineOpts, engine.WithReportSink(sink))
	}
	if ts != nil {
		engineOpts = append(engineOpts, engine.WithTranscript(ts))
	}

	eng, err := engine.New(store, m, engineOpts...)
	if err != nil {
		return err
	}

	srv := server.New(eng, func(o *server.Options) {
		o.Addr = cfg.Server.Addr
		o.APIKey = cfg.Server.APIKey
		o.MaxConcurrent = cfg.Server.MaxConcurrent
		o.Logger = logger
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.ListenAndServe)
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Engine.Deadline)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// buildScoreConfig layers configured overrides onto the production weights.
func buildScoreConfig(cfg config.ScorerConfig) engine.ScoreConfig {
	sc := engine.DefaultScoreConfig()
	for name, weight := range cfg.CategoryWeights {
		sc.CategoryWeights[core.Category(name)] = weight
	}
	if cfg.MissingBonus != 0 {
		sc.MissingBonus = cfg.MissingBonus
	}
	if cfg.DangerPenalty != 0 {
		sc.DangerPenalty = cfg.DangerPenalty
	}
	if len(cfg.DangerWords) > 0 {
		sc.DangerWords = cfg.DangerWords
	}
	return sc
}

func buildSessionStore(ctx context.Context, cfg config.SessionConfig) (core.SessionStore, error) {
	switch cfg.Backend {
	case "memory":
		return session.NewInMemoryStore(), nil
	case "sqlite":
		return sqlitesession.New(cfg.Path)
	case "firestore":
		return firestoresession.New(ctx, cfg.Project, func(o *firestoresession.Options) {
			if cfg.Collection != "" {
				o.Collection = cfg.Collection
			}
		})
	default:
		return nil, fmt.Errorf("unknown session backend %q", cfg.Backend)
	}
}

func buildModel(ctx context.Context, cfg config.ModelConfig) (model.Model, error) {
	switch cfg.Provider {
	case "anthropic":
		return anthropicmodel.NewModel(func(o *anthropicmodel.Options) {
			if cfg.Name != "" {
				o.Model = anthropic.Model(cfg.Name)
			}
			o.APIKey = cfg.APIKey
			if cfg.MaxTokens > 0 {
				o.MaxTokens = cfg.MaxTokens
			}
			if cfg.Temperature > 0 {
				o.Temperature = cfg.Temperature
			}
		}), nil
	case "openai":
		var clientOpts []openaioption.RequestOption
		if cfg.APIKey != "" {
			clientOpts = append(clientOpts, openaioption.WithAPIKey(cfg.APIKey))
		}
		client := openaisdk.NewClient(clientOpts...)
		return openaimodel.NewModelFromClient(&client, func(o *openaimodel.Options) {
			if cfg.Name != "" {
				o.Model = cfg.Name
			}
			if cfg.MaxTokens > 0 {
				o.MaxCompletionTokens = cfg.MaxTokens
			}
			if cfg.Temperature > 0 {
				o.Temperature = cfg.Temperature
			}
		}), nil
	case "gemini":
		return geminimodel.NewModel(ctx, func(o *geminimodel.Options) {
			if cfg.Name != "" {
				o.Model = cfg.Name
			}
			o.APIKey = cfg.APIKey
			o.Project = cfg.Project
			o.Location = cfg.Location
			if cfg.MaxTokens > 0 {
				o.MaxOutputTokens = int32(cfg.MaxTokens)
			}
			if cfg.Temperature > 0 {
				o.Temperature = cfg.Temperature
			}
		})
	case "mock":
		// No canned responses registered: every turn degrades to the offline
		// synthesizer, which keeps the daemon runnable without credentials.
		return model.NewMockModel("mock"), nil
	default:
		return nil, fmt.Errorf("unknown model provider %q", cfg.Provider)
	}
}

func buildTranscript(cfg config.TranscriptConfig) (transcript.Store, error) {
	switch cfg.Backend {
	case "none":
		return nil, nil
	case "memory":
		return transcript.NewInMemoryStore(), nil
	case "file":
		return transcript.NewFileStore(cfg.Dir)
	default:
		return nil, fmt.Errorf("unknown transcript backend %q", cfg.Backend)
	}
}
