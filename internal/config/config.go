// Package config provides configuration parsing and validation for the notification service.
package config

import (
	"fmt"
)

// Config holds all configuration parameters for the notification service.
type Config struct {
	HTTPPort        string
	KafkaBrokers    string
	ConsumerGroupID string
	PostgresDSN     string
	RedisAddr       string
	TrackerCapacity int
}

// Validate checks that all required configuration fields are set and have valid values.
// RedisAddr is optional: when empty, metrics reporting is disabled.
func (c *Config) Validate() error {
	if c.HTTPPort == "" {
		return fmt.Errorf("http-port cannot be empty")
	}
	if c.KafkaBrokers == "" {
		return fmt.Errorf("kafka-brokers cannot be empty")
	}
	if c.ConsumerGroupID == "" {
		return fmt.Errorf("consumer-group-id cannot be empty")
	}
	if c.PostgresDSN == "" {
		return fmt.Errorf("postgres-dsn cannot be empty")
	}
	if c.TrackerCapacity < 0 {
		return fmt.Errorf("tracker-capacity cannot be negative")
	}
	return nil
}
