package transport

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestNewCronSourceRejectsBadExpression(t *testing.T) {
	if _, err := NewCronSource("not a cron expr", nil, func(interface{}) error { return nil }); err == nil {
		t.Fatal("expected an error for a malformed cron expression")
	}
}

func TestCronSourceEmitsAndStops(t *testing.T) {
	var count int32
	cs, err := NewCronSource("* * * * * * *", "tick", func(interface{}) error {
		atomic.AddInt32(&count, 1)
		return nil
	})
	if err != nil {
		t.Fatalf("NewCronSource: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2500*time.Millisecond)
	defer cancel()

	err = cs.Run(ctx)
	if err != context.DeadlineExceeded {
		t.Fatalf("Run returned %v, want context.DeadlineExceeded", err)
	}
	if atomic.LoadInt32(&count) < 2 {
		t.Fatalf("expected at least 2 ticks in 2.5s of a 1s schedule, got %d", count)
	}
}
