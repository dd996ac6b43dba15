package main

import (
	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"github.com/sakarghimire/thumbnail-service/internal/api"
	"github.com/sakarghimire/thumbnail-service/internal/config"
	"github.com/sakarghimire/thumbnail-service/internal/logger"
	"github.com/sakarghimire/thumbnail-service/internal/metadata"
	"github.com/sakarghimire/thumbnail-service/internal/storage"
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

	records := metadata.NewStore(storage.NewDynamoDBClient(sess, cfg.AWS), cfg.AWS.Table)
	handlers := api.NewHandlers(records, logg)

	lambda.Start(handlers.Get)
}
