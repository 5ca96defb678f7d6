package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Pipeline modes select how the checkout rule dispatches events.
const (
	ModeDirect   = "direct"   // router invokes the order consumer in-process
	ModeBuffered = "buffered" // router enqueues on the durable buffer
)

// Buffer backends for the buffered mode.
const (
	BufferMemory = "memory"
	BufferSQS    = "sqs"
)

type Config struct {
	Port string
	Env  string

	PipelineMode  string
	BufferBackend string

	ClearCartOnCheckout bool

	VisibilityTimeout time.Duration
	MaxReceiveCount   int

	QueueURL      string
	DeadLetterURL string

	OrderTable   string
	LedgerTable  string
	ProductTable string
	BusName      string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CartTTL       time.Duration

	KafkaBrokers string
	KafkaTopic   string
	SNSTopicArn  string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("APP_ENV", "development"),
		PipelineMode:  getEnv("PIPELINE_MODE", ModeBuffered),
		BufferBackend: getEnv("BUFFER_BACKEND", BufferMemory),

		ClearCartOnCheckout: getEnvBool("CLEAR_CART_ON_CHECKOUT", true),

		VisibilityTimeout: getEnvDuration("BUFFER_VISIBILITY_TIMEOUT", 30*time.Second),
		MaxReceiveCount:   getEnvInt("BUFFER_MAX_RECEIVE_COUNT", 3),

		QueueURL:      os.Getenv("CHECKOUT_QUEUE_URL"),
		DeadLetterURL: os.Getenv("CHECKOUT_DLQ_URL"),

		OrderTable:   getEnv("ORDER_TABLE", "order"),
		LedgerTable:  getEnv("IDEMPOTENCY_TABLE", "checkout-ledger"),
		ProductTable: getEnv("PRODUCT_TABLE", "product"),
		BusName:      getEnv("EVENT_BUS_NAME", ""),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		CartTTL:       getEnvDuration("CART_TTL", 72*time.Hour),

		KafkaBrokers: os.Getenv("KAFKA_BROKERS"),
		KafkaTopic:   getEnv("CHECKOUT_TOPIC", "checkout.requested"),
		SNSTopicArn:  os.Getenv("CHECKOUT_SNS_TOPIC_ARN"),
	}

	if cfg.PipelineMode != ModeDirect && cfg.PipelineMode != ModeBuffered {
		return nil, fmt.Errorf("invalid PIPELINE_MODE %q", cfg.PipelineMode)
	}
	if cfg.BufferBackend != BufferMemory && cfg.BufferBackend != BufferSQS {
		return nil, fmt.Errorf("invalid BUFFER_BACKEND %q", cfg.BufferBackend)
	}
	if cfg.PipelineMode == ModeBuffered && cfg.BufferBackend == BufferSQS && cfg.QueueURL == "" {
		return nil, fmt.Errorf("CHECKOUT_QUEUE_URL is required for the sqs buffer")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}
