package config

import (
	"log"
	"time"

	"github.com/segmentio/kafka-go"
)

// NewKafkaWriter returns a writer for the complaint event topic, or nil when
// KAFKA_BROKERS is empty.
func NewKafkaWriter(cfg *AppConfig) *kafka.Writer {
	if len(cfg.KafkaBrokers) == 0 {
		log.Println("Kafka disabled (KAFKA_BROKERS empty)")
		return nil
	}

	log.Printf("Kafka producer ready (brokers=%v topic=%s)", cfg.KafkaBrokers, cfg.KafkaTopic)
	return &kafka.Writer{
		Addr:                   kafka.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaTopic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		BatchTimeout:           50 * time.Millisecond,
		WriteTimeout:           5 * time.Second,
		AllowAutoTopicCreation: true,
	}
}
