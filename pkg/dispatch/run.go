package dispatch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/ftcan-dash/ftcan-go/pkg/telemetry"
	"github.com/ftcan-dash/ftcan-go/pkg/transport"
)

// sweepInterval bounds how long idle assemblies linger on a busy bus,
// where receive timeouts never occur.
const sweepInterval = time.Second

// Run receives frames from src until ctx is cancelled or src is exhausted,
// dispatching each one and handing non-empty updates to the sinks in order.
//
// Receive timeouts are retried. Run returns nil on cancellation and when src
// reports io.EOF; any other source error is returned. Sink errors are logged
// and do not stop the loop. In-flight assemblies are abandoned on return.
func Run(ctx context.Context, src transport.Source, d *Dispatcher, sinks ...telemetry.Sink) error {
	stamper, _ := src.(transport.Stamper)
	var lastSweep time.Time

	for {
		if ctx.Err() != nil {
			return nil
		}

		f, err := src.Receive(d.receiveTimeout)
		if err != nil {
			switch {
			case errors.Is(err, transport.ErrTimeout):
				lastSweep = time.Now()
				d.Sweep(lastSweep)
				continue
			case errors.Is(err, io.EOF):
				return nil
			case errors.Is(err, transport.ErrClosed) && ctx.Err() != nil:
				return nil
			}
			return fmt.Errorf("dispatch: receive: %w", err)
		}

		at := time.Now()
		if stamper != nil {
			if ts := stamper.LastTimestamp(); !ts.IsZero() {
				at = ts
			}
		}

		res := d.Dispatch(f, at)
		if at.Sub(lastSweep) >= sweepInterval {
			d.Sweep(at)
			lastSweep = at
		}
		if res.Update.Empty() {
			continue
		}
		for _, sink := range sinks {
			if err := sink.Consume(res.Update); err != nil && d.logger != nil {
				d.logger.Warn("sink failed", "error", err)
			}
		}
	}
}
