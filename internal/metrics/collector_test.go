package metrics

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestCollector_Snapshot(t *testing.T) {
	c := NewCollector("notification-service", nil)

	c.RecordReceived()
	c.RecordReceived()
	c.RecordProcessed(10 * time.Millisecond)
	c.RecordProcessed(20 * time.Millisecond)
	c.RecordPublished()
	c.RecordError()
	c.RecordSkipped()
	c.RecordSent()
	c.RecordFailed()

	m := c.Snapshot()

	if m.ServiceName != "notification-service" {
		t.Errorf("ServiceName = %q, want notification-service", m.ServiceName)
	}
	if m.MessagesReceived != 2 {
		t.Errorf("MessagesReceived = %d, want 2", m.MessagesReceived)
	}
	if m.MessagesProcessed != 2 {
		t.Errorf("MessagesProcessed = %d, want 2", m.MessagesProcessed)
	}
	if m.MessagesPublished != 1 {
		t.Errorf("MessagesPublished = %d, want 1", m.MessagesPublished)
	}
	if m.ProcessingErrors != 1 {
		t.Errorf("ProcessingErrors = %d, want 1", m.ProcessingErrors)
	}
	if m.NotificationsSkipped != 1 {
		t.Errorf("NotificationsSkipped = %d, want 1", m.NotificationsSkipped)
	}
	if m.NotificationsSent != 1 {
		t.Errorf("NotificationsSent = %d, want 1", m.NotificationsSent)
	}
	if m.NotificationsFailed != 1 {
		t.Errorf("NotificationsFailed = %d, want 1", m.NotificationsFailed)
	}

	wantAvg := float64((10*time.Millisecond + 20*time.Millisecond).Nanoseconds()) / 2
	if m.AvgProcessingLatencyNs != wantAvg {
		t.Errorf("AvgProcessingLatencyNs = %v, want %v", m.AvgProcessingLatencyNs, wantAvg)
	}
}

func TestCollector_SnapshotEmpty(t *testing.T) {
	c := NewCollector("notification-service", nil)
	m := c.Snapshot()

	if m.MessagesReceived != 0 || m.MessagesProcessed != 0 || m.ProcessingErrors != 0 {
		t.Errorf("empty snapshot has non-zero counters: %+v", m)
	}
	if m.AvgProcessingLatencyNs != 0 {
		t.Errorf("AvgProcessingLatencyNs = %v with no samples, want 0", m.AvgProcessingLatencyNs)
	}
}

func TestCollector_ConcurrentRecording(t *testing.T) {
	c := NewCollector("notification-service", nil)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.RecordReceived()
				c.RecordProcessed(time.Millisecond)
			}
		}()
	}
	wg.Wait()

	m := c.Snapshot()
	if m.MessagesReceived != 1000 {
		t.Errorf("MessagesReceived = %d, want 1000", m.MessagesReceived)
	}
	if m.MessagesProcessed != 1000 {
		t.Errorf("MessagesProcessed = %d, want 1000", m.MessagesProcessed)
	}
}

func TestCollector_StartStop(t *testing.T) {
	c := NewCollector("notification-service", nil)
	c.SetReportInterval(10 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c.Start(ctx)
	time.Sleep(30 * time.Millisecond)
	c.Stop()

	// Stop is idempotent.
	c.Stop()
}

func TestNoOp_ImplementsRecorder(t *testing.T) {
	var r Recorder = NewNoOp()

	// None of these should panic.
	r.RecordReceived()
	r.RecordProcessed(time.Millisecond)
	r.RecordPublished()
	r.RecordError()
	r.RecordSkipped()
	r.RecordFailed()
	r.RecordSent()
}
