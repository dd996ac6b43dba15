package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/sakarghimire/thumbnail-service/internal/api"
	"github.com/sakarghimire/thumbnail-service/internal/config"
	"github.com/sakarghimire/thumbnail-service/internal/logger"
	"github.com/sakarghimire/thumbnail-service/internal/metadata"
	"github.com/sakarghimire/thumbnail-service/internal/metrics"
	"github.com/sakarghimire/thumbnail-service/internal/server"
	"github.com/sakarghimire/thumbnail-service/internal/storage"
	"github.com/sakarghimire/thumbnail-service/internal/trigger"
)

func main() {
	_ = godotenv.Load()

	logg, err := logger.Init()
	if err != nil {
		panic("init logger: " + err.Error())
	}
	defer logg.Sync()

	cfg, err := config.Load()
	if err != nil {
		logg.Fatal("load config", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sess, err := storage.NewSession(cfg.AWS)
	if err != nil {
		logg.Fatal("create aws session", zap.Error(err))
	}

	objects, err := storage.New(ctx, cfg, sess)
	if err != nil {
		logg.Fatal("create object store", zap.Error(err))
	}

	dynamo := storage.NewDynamoDBClient(sess, cfg.AWS)
	records := metadata.NewStore(dynamo, cfg.AWS.Table)

	reg := prometheus.NewRegistry()
	recorder := metrics.New(reg)

	router := server.NewRouter(server.Dependencies{
		Queries:     api.NewHandlers(records, logg),
		Trigger:     trigger.NewHandler(objects, records, cfg.Thumbnail.Size, logg, recorder),
		Metrics:     recorder,
		Gatherer:    reg,
		MetricsPath: cfg.Metrics.PrometheusPath,
		Ready: func(ctx context.Context) error {
			_, err := dynamo.DescribeTableWithContext(ctx, &dynamodb.DescribeTableInput{
				TableName: aws.String(cfg.AWS.Table),
			})
			return err
		},
		Log: logg,
	})

	httpServer := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logg.Info("local thumbnail API listening", zap.String("address", cfg.Server.Address()))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logg.Fatal("http server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logg.Info("shutting down gracefully")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logg.Error("shutdown error", zap.Error(err))
	}
}
