package transport

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gorhill/cronexpr"
)

// CronSource emits Value on Emit every time Expr next fires, the
// join-calculus analogue of the cronNext() helper the goja
// interpreter exposes to scripted guards and bodies (see
// interpreters/goja, which uses the same cronexpr package to compute
// a single next firing time rather than drive a loop).
type CronSource struct {
	Expr  string
	Value interface{}
	Emit  EmitFunc

	schedule *cronexpr.Expression
}

// NewCronSource parses expr once so Run can fail fast on a malformed
// schedule instead of discovering it only at the first tick.
func NewCronSource(expr string, value interface{}, emit EmitFunc) (*CronSource, error) {
	schedule, err := cronexpr.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("chym/transport: bad cron expression %q: %w", expr, err)
	}
	return &CronSource{Expr: expr, Value: value, Emit: emit, schedule: schedule}, nil
}

// Run blocks, emitting Value at every scheduled firing, until ctx is
// done.
func (c *CronSource) Run(ctx context.Context) error {
	for {
		next := c.schedule.Next(time.Now())
		if next.IsZero() {
			return fmt.Errorf("chym/transport: cron expression %q has no further firings", c.Expr)
		}

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
			if err := c.Emit(c.Value); err != nil {
				log.Printf("chym/transport: cron emit failed: %v", err)
			}
		}
	}
}
