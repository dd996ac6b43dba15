package main

import (
	"context"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/sakarghimire/thumbnail-service/internal/config"
	"github.com/sakarghimire/thumbnail-service/internal/logger"
	"github.com/sakarghimire/thumbnail-service/internal/metadata"
	"github.com/sakarghimire/thumbnail-service/internal/metrics"
	"github.com/sakarghimire/thumbnail-service/internal/storage"
	"github.com/sakarghimire/thumbnail-service/internal/trigger"
)

func main() {
	logg, err := logger.Init()
	if err != nil {
		panic("init logger: " + err.Error())
	}
	defer logg.Sync()

	cfg, err := config.Load()
	if err != nil {
		logg.Fatal("load config", zap.Error(err))
	}

	sess, err := storage.NewSession(cfg.AWS)
	if err != nil {
		logg.Fatal("create aws session", zap.Error(err))
	}

	objects, err := storage.New(context.Background(), cfg, sess)
	if err != nil {
		logg.Fatal("create object store", zap.Error(err))
	}
	records := metadata.NewStore(storage.NewDynamoDBClient(sess, cfg.AWS), cfg.AWS.Table)

	// Counters are exported only by cmd/localapi; here they are never scraped.
	handler := trigger.NewHandler(objects, records, cfg.Thumbnail.Size, logg, metrics.New(prometheus.DefaultRegisterer))

	logg.Info("thumbnail generator ready",
		zap.Int("thumbnail_size", cfg.Thumbnail.Size),
		zap.String("table", cfg.AWS.Table),
		zap.String("storage_backend", cfg.Storage.Backend),
	)
	lambda.Start(handler.Handle)
}
