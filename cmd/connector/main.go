// Command connector runs the webhook ingestion service: it loads its
// configuration, starts the pipeline executor, and serves the configured
// source adapters' HTTP routes until told to shut down.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/relaywire/connector/internal/config"
	"github.com/relaywire/connector/internal/pipeline"
	"github.com/relaywire/connector/internal/server"
	"github.com/relaywire/connector/internal/sink"
	"github.com/relaywire/connector/internal/source/jira"
	"github.com/relaywire/connector/internal/webhook"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.FromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	channel := pipeline.NewChannel(pipeline.DefaultCapacity)

	routes, instances, err := buildIntegrations(ctx, cfg, channel, log)
	if err != nil {
		return fmt.Errorf("build integrations: %w", err)
	}

	executor := pipeline.NewExecutor(channel, instances, log)
	go executor.Run(ctx)

	handler := server.New(routes, log)
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.PortOrDefault()),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("connector listening", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
			return
		}
		serveErr <- nil
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	channel.Close()
	return nil
}

// buildIntegrations constructs one HTTP route per configured integration
// and one pipeline instance per pipeline that integration declares.
func buildIntegrations(ctx context.Context, cfg *config.AppConfig, channel *pipeline.Channel, log *zap.Logger) ([]server.Route, []pipeline.Instance, error) {
	var routes []server.Route
	var instances []pipeline.Instance

	for _, integration := range cfg.Integrations {
		switch integration.Source.Type {
		case "jira":
			route, err := buildJiraSource(integration.Source.Jira, channel, log)
			if err != nil {
				return nil, nil, err
			}
			routes = append(routes, route)
		default:
			return nil, nil, fmt.Errorf("unsupported source type %q", integration.Source.Type)
		}

		for _, pipelineCfg := range integration.Pipelines {
			instance, err := buildPipelineInstance(ctx, pipelineCfg)
			if err != nil {
				return nil, nil, err
			}
			instances = append(instances, instance)
		}
	}

	return routes, instances, nil
}

func buildJiraSource(jiraCfg config.JiraSourceConfig, channel *pipeline.Channel, log *zap.Logger) (server.Route, error) {
	secret, err := jiraCfg.Authentication.Secret.Resolve()
	if err != nil {
		return server.Route{}, fmt.Errorf("jira authentication secret: %w", err)
	}

	validator := webhook.NewHMACValidator(secret, jiraCfg.Authentication.HeaderNameOrDefault(), log)
	handler := jira.NewHandler(validator, channel, log)

	return server.Route{Path: jiraCfg.WebhookPathOrDefault(), Handler: handler}, nil
}

func buildPipelineInstance(ctx context.Context, pipelineCfg config.Pipeline) (pipeline.Instance, error) {
	var instance pipeline.Instance

	for _, procCfg := range pipelineCfg.Processors {
		switch procCfg.Type {
		case "filter":
			proc, err := pipeline.NewFilterProcessor(procCfg.CELExpression)
			if err != nil {
				return pipeline.Instance{}, err
			}
			instance.Processors = append(instance.Processors, proc)
		case "mapper":
			instance.Processors = append(instance.Processors, pipeline.NewMapperProcessor(procCfg.OutputEvent))
		default:
			return pipeline.Instance{}, fmt.Errorf("unsupported processor type %q", procCfg.Type)
		}
	}

	for _, sinkCfg := range pipelineCfg.Sinks {
		switch sinkCfg.Type {
		case "mongo":
			s, err := buildMongoSink(ctx, sinkCfg.Mongo)
			if err != nil {
				return pipeline.Instance{}, err
			}
			instance.Sinks = append(instance.Sinks, s)
		default:
			return pipeline.Instance{}, fmt.Errorf("unsupported sink type %q", sinkCfg.Type)
		}
	}

	return instance, nil
}

func buildMongoSink(ctx context.Context, mongoCfg config.MongoSinkConfig) (*sink.MongoSink, error) {
	rawURL, err := mongoCfg.URL.Resolve()
	if err != nil {
		return nil, fmt.Errorf("mongo sink url: %w", err)
	}

	baseURL, database, urlCollection, err := sink.ParseMongoURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("mongo sink url: %w", err)
	}

	collection := mongoCfg.Collection
	if collection == "" {
		collection = urlCollection
	}
	if collection == "" {
		return nil, fmt.Errorf("mongo sink: no collection configured and none embedded in url")
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(baseURL))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	return sink.NewMongoSink(client, database, collection, mongoCfg.InsertOnly), nil
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var zcfg zap.Config
	if cfg.FormatOrDefault() == "json" {
		zcfg = zap.NewProductionConfig()
	} else {
		zcfg = zap.NewDevelopmentConfig()
	}

	level, err := zapcore.ParseLevel(cfg.LevelOrDefault())
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.LevelOrDefault(), err)
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)

	return zcfg.Build()
}
