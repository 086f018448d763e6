package metrics

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// MetricsKeyPrefix is the Redis key prefix for service metrics.
	MetricsKeyPrefix = "metrics:"
	// MetricsTTL is how long metrics stay in Redis if not refreshed.
	MetricsTTL = 2 * time.Minute
	// DefaultReportInterval is the default interval for writing metrics to Redis.
	DefaultReportInterval = 30 * time.Second
)

// ServiceMetrics is the snapshot written to Redis on each report.
type ServiceMetrics struct {
	ServiceName string    `json:"service_name"`
	StartedAt   time.Time `json:"started_at"`
	LastUpdated time.Time `json:"last_updated"`

	MessagesReceived       uint64  `json:"messages_received"`
	MessagesProcessed      uint64  `json:"messages_processed"`
	MessagesPublished      uint64  `json:"messages_published"`
	ProcessingErrors       uint64  `json:"processing_errors"`
	NotificationsSent      uint64  `json:"notifications_sent"`
	NotificationsFailed    uint64  `json:"notifications_failed"`
	NotificationsSkipped   uint64  `json:"notifications_skipped"`
	AvgProcessingLatencyNs float64 `json:"avg_processing_latency_ns"`
}

// Collector collects service counters and periodically reports them to Redis.
type Collector struct {
	serviceName    string
	redis          *redis.Client
	startedAt      time.Time
	reportInterval time.Duration

	messagesReceived     atomic.Uint64
	messagesProcessed    atomic.Uint64
	messagesPublished    atomic.Uint64
	processingErrors     atomic.Uint64
	notificationsSent    atomic.Uint64
	notificationsFailed  atomic.Uint64
	notificationsSkipped atomic.Uint64

	totalLatencyNs atomic.Uint64
	latencyCount   atomic.Uint64

	stopOnce sync.Once
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// NewCollector creates a new metrics collector for a service.
func NewCollector(serviceName string, redisClient *redis.Client) *Collector {
	return &Collector{
		serviceName:    serviceName,
		redis:          redisClient,
		startedAt:      time.Now().UTC(),
		reportInterval: DefaultReportInterval,
		stopCh:         make(chan struct{}),
	}
}

// SetReportInterval sets the interval for writing metrics to Redis.
func (c *Collector) SetReportInterval(interval time.Duration) {
	c.reportInterval = interval
}

// Start begins the periodic metrics reporting to Redis.
func (c *Collector) Start(ctx context.Context) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ticker := time.NewTicker(c.reportInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				c.writeMetrics(context.Background()) // Final write
				return
			case <-c.stopCh:
				c.writeMetrics(context.Background()) // Final write
				return
			case <-ticker.C:
				c.writeMetrics(ctx)
			}
		}
	}()
}

// Stop stops the metrics reporting.
func (c *Collector) Stop() {
	c.stopOnce.Do(func() { close(c.stopCh) })
	c.wg.Wait()
}

func (c *Collector) RecordReceived() {
	c.messagesReceived.Add(1)
}

func (c *Collector) RecordProcessed(latency time.Duration) {
	c.messagesProcessed.Add(1)
	c.totalLatencyNs.Add(uint64(latency.Nanoseconds()))
	c.latencyCount.Add(1)
}

func (c *Collector) RecordPublished() {
	c.messagesPublished.Add(1)
}

func (c *Collector) RecordError() {
	c.processingErrors.Add(1)
}

func (c *Collector) RecordSkipped() {
	c.notificationsSkipped.Add(1)
}

func (c *Collector) RecordFailed() {
	c.notificationsFailed.Add(1)
}

func (c *Collector) RecordSent() {
	c.notificationsSent.Add(1)
}

// Snapshot returns the current counter values.
func (c *Collector) Snapshot() ServiceMetrics {
	m := ServiceMetrics{
		ServiceName:          c.serviceName,
		StartedAt:            c.startedAt,
		LastUpdated:          time.Now().UTC(),
		MessagesReceived:     c.messagesReceived.Load(),
		MessagesProcessed:    c.messagesProcessed.Load(),
		MessagesPublished:    c.messagesPublished.Load(),
		ProcessingErrors:     c.processingErrors.Load(),
		NotificationsSent:    c.notificationsSent.Load(),
		NotificationsFailed:  c.notificationsFailed.Load(),
		NotificationsSkipped: c.notificationsSkipped.Load(),
	}
	if count := c.latencyCount.Load(); count > 0 {
		m.AvgProcessingLatencyNs = float64(c.totalLatencyNs.Load()) / float64(count)
	}
	return m
}

// writeMetrics serializes the current snapshot and writes it to Redis.
func (c *Collector) writeMetrics(ctx context.Context) {
	if c.redis == nil {
		return
	}

	snapshot := c.Snapshot()
	data, err := json.Marshal(snapshot)
	if err != nil {
		slog.Error("Failed to marshal service metrics", "error", err)
		return
	}

	key := fmt.Sprintf("%s%s", MetricsKeyPrefix, c.serviceName)
	if err := c.redis.Set(ctx, key, data, MetricsTTL).Err(); err != nil {
		slog.Warn("Failed to write service metrics to Redis", "error", err)
	}
}

// Ensure Collector implements Recorder
var _ Recorder = (*Collector)(nil)
