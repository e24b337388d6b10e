package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the order-service.
type Config struct {
	Port              string // Service port (default: 8085)
	MongoURI          string // MongoDB connection string
	MongoDB           string // Database name (default: ecommerce)
	RazorpayKeyID     string // Razorpay API key id
	RazorpayKeySecret string // Razorpay API key secret, also used for signature verification
	Currency          string // Gateway currency (default: INR)
	S3Bucket          string // Bucket for return evidence images (optional)
	AWSRegion         string // Region for the S3 bucket
	KafkaBrokers      []string // Broker list for order events (optional)
	KafkaOrderTopic   string // Topic for order lifecycle events
	RedisAddr         string // Redis address for order detail caching (optional)
}

// LoadConfig loads environment variables into Config struct.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:              os.Getenv("PORT"),
		MongoURI:          os.Getenv("MONGO_URI"),
		MongoDB:           os.Getenv("MONGO_DB"),
		RazorpayKeyID:     os.Getenv("RAZORPAY_KEY_ID"),
		RazorpayKeySecret: os.Getenv("RAZORPAY_KEY_SECRET"),
		Currency:          os.Getenv("CURRENCY"),
		S3Bucket:          os.Getenv("S3_BUCKET"),
		AWSRegion:         os.Getenv("AWS_REGION"),
		KafkaOrderTopic:   os.Getenv("KAFKA_ORDER_TOPIC"),
		RedisAddr:         os.Getenv("REDIS_ADDR"),
	}

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}

	if cfg.Port == "" {
		cfg.Port = "8085"
	}
	if cfg.MongoDB == "" {
		cfg.MongoDB = "ecommerce"
	}
	if cfg.Currency == "" {
		cfg.Currency = "INR"
	}
	if cfg.AWSRegion == "" {
		cfg.AWSRegion = "us-east-1"
	}
	if cfg.KafkaOrderTopic == "" {
		cfg.KafkaOrderTopic = "order-events"
	}

	if cfg.MongoURI == "" {
		return nil, fmt.Errorf("MONGO_URI is required")
	}
	if cfg.RazorpayKeyID == "" || cfg.RazorpayKeySecret == "" {
		return nil, fmt.Errorf("RAZORPAY_KEY_ID and RAZORPAY_KEY_SECRET are required")
	}

	return cfg, nil
}
