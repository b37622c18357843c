package metrics

import (
	"sync"
	"testing"
	"time"
)

func TestCollectorCounts(t *testing.T) {
	c := New()
	c.Record(200, 10*time.Millisecond)
	c.Record(500, 30*time.Millisecond)
	c.Record(429, 0)
	c.RecordRun(5, 1)

	snapshot := c.Snapshot()
	if snapshot["requestsTotal"].(uint64) != 3 {
		t.Fatalf("expected 3 requests, got %v", snapshot["requestsTotal"])
	}
	if snapshot["errorsTotal"].(uint64) != 1 {
		t.Fatalf("expected 1 error, got %v", snapshot["errorsTotal"])
	}
	if snapshot["rateLimitedTotal"].(uint64) != 1 {
		t.Fatalf("expected 1 rate limited, got %v", snapshot["rateLimitedTotal"])
	}
	if snapshot["payrollRunsTotal"].(uint64) != 1 {
		t.Fatalf("expected 1 run, got %v", snapshot["payrollRunsTotal"])
	}
	if snapshot["employeesProcessed"].(uint64) != 5 {
		t.Fatalf("expected 5 processed, got %v", snapshot["employeesProcessed"])
	}
}

func TestCollectorConcurrentRecords(t *testing.T) {
	c := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Record(200, time.Millisecond)
			c.RecordRun(1, 0)
		}()
	}
	wg.Wait()

	snapshot := c.Snapshot()
	if snapshot["requestsTotal"].(uint64) != 50 {
		t.Fatalf("expected 50 requests, got %v", snapshot["requestsTotal"])
	}
	if snapshot["employeesProcessed"].(uint64) != 50 {
		t.Fatalf("expected 50 processed, got %v", snapshot["employeesProcessed"])
	}
}
