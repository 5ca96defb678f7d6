package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	apperrors "github.com/kraken-commerce/backend/common/errors"
	"github.com/kraken-commerce/backend/common/logger"
	"github.com/kraken-commerce/backend/config"
	"github.com/kraken-commerce/backend/controllers"
	"github.com/kraken-commerce/backend/database"
	"github.com/kraken-commerce/backend/eventbus"
	aws_pkg "github.com/kraken-commerce/backend/pkg/aws"
	ddb "github.com/kraken-commerce/backend/pkg/dynamodb"
	"github.com/kraken-commerce/backend/queue"
	"github.com/kraken-commerce/backend/repository"
	"github.com/kraken-commerce/backend/routes"
	"github.com/kraken-commerce/backend/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger.Initialize(cfg.Env)
	defer logger.Log.Sync()
	log := logger.Log

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	awsCfg, err := aws_pkg.LoadAWSConfig(ctx)
	if err != nil {
		log.Fatal("failed to load AWS config", zap.Error(err))
	}
	ddbClient := ddb.NewClientFromConfig(awsCfg)

	orderStore := repository.NewDynamoOrderStore(ddbClient, cfg.OrderTable)
	ledger := repository.NewDynamoLedger(ddbClient, cfg.LedgerTable)
	catalogRepo := repository.NewDynamoCatalogRepo(ddbClient, cfg.ProductTable)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	cartRepo := database.NewCartRepository(redisClient, cfg.CartTTL)

	consumer := services.NewOrderConsumer(orderStore, ledger, log)

	// Checkout rule: direct invoke or durable buffer, selected at composition
	// time. Extra fan-out targets (Kafka, SNS) attach when configured.
	var targets []eventbus.Target
	switch cfg.PipelineMode {
	case config.ModeDirect:
		targets = append(targets, eventbus.TargetFunc{
			TargetName: "order-consumer",
			Handler:    consumer.HandleEnvelope,
		})
	case config.ModeBuffered:
		var buffer queue.Buffer
		if cfg.BufferBackend == config.BufferSQS {
			buffer = queue.NewSQS(awsCfg, cfg.QueueURL, cfg.DeadLetterURL, int32(cfg.VisibilityTimeout.Seconds()))
		} else {
			buffer = queue.NewMemory(cfg.VisibilityTimeout, cfg.MaxReceiveCount)
		}
		targets = append(targets, eventbus.BufferTarget{
			TargetName: "checkout-queue",
			Buffer:     buffer,
		})

		worker := services.NewBufferWorker(buffer, consumer, log)
		go func() {
			if err := worker.Run(ctx); err != nil && err != context.Canceled {
				log.Error("buffer worker exited", zap.Error(err))
			}
		}()
	}

	if cfg.KafkaBrokers != "" {
		kt := eventbus.NewKafkaTarget([]string{cfg.KafkaBrokers}, cfg.KafkaTopic)
		defer kt.Close()
		targets = append(targets, kt)
	}
	if cfg.SNSTopicArn != "" {
		targets = append(targets, eventbus.TopicTarget{
			TopicArn:  cfg.SNSTopicArn,
			Publisher: aws_pkg.NewSNSClient(awsCfg),
		})
	}

	router := eventbus.NewRouter(log, eventbus.Rule{
		Name: "CheckoutCartRule",
		Pattern: eventbus.Pattern{
			Sources:     []string{eventbus.SourceCart},
			DetailTypes: []string{eventbus.DetailTypeCheckoutCart},
		},
		Targets: targets,
	})

	// When a bus name is configured the publisher targets the remote
	// EventBridge bus instead of the in-process router.
	var bus services.EventPublisher = router
	if cfg.BusName != "" {
		bus = aws_pkg.NewBusBridge(awsCfg, cfg.BusName)
	}

	publisher := services.NewCheckoutPublisher(cartRepo, bus, cfg.ClearCartOnCheckout, log)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.RequestLogger())
	r.Use(apperrors.ErrorMiddleware())

	routes.Register(r,
		controllers.NewCatalogController(catalogRepo),
		controllers.NewCartController(cartRepo, publisher),
		controllers.NewOrderController(services.NewOrderService(orderStore), consumer),
	)

	log.Info("server starting", zap.String("port", cfg.Port), zap.String("pipeline_mode", cfg.PipelineMode))
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("server failed", zap.Error(err))
	}
}
