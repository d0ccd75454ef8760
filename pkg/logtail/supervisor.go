package logtail

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/DeBrosOfficial/proxyconsole/pkg/logging"
)

// Supervisor restarts long-running tasks when they exit.
type Supervisor struct {
	MinBackoff time.Duration
	MaxBackoff time.Duration
	// Healthy is how long a run must last for the backoff to reset.
	Healthy time.Duration
	Logger  *logging.ColoredLogger
}

// NewSupervisor creates a supervisor with the given backoff bounds.
func NewSupervisor(min, max time.Duration, logger *logging.ColoredLogger) *Supervisor {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if min <= 0 {
		min = time.Second
	}
	if max < min {
		max = min
	}
	return &Supervisor{MinBackoff: min, MaxBackoff: max, Healthy: time.Minute, Logger: logger}
}

// Supervise runs run until ctx is cancelled, restarting it after every exit.
// Exit errors are logged with the task name.
func (s *Supervisor) Supervise(ctx context.Context, name string, run func(context.Context) error) {
	backoff := s.MinBackoff
	for {
		started := time.Now()
		err := run(ctx)
		if ctx.Err() != nil {
			return
		}

		if time.Since(started) > s.Healthy {
			backoff = s.MinBackoff
		}
		if err != nil {
			s.Logger.ComponentError(logging.ComponentTail, "Task exited with error",
				zap.String("task", name),
				zap.Error(err),
				zap.Duration("restart_in", backoff))
		} else {
			s.Logger.ComponentWarn(logging.ComponentTail, "Task exited",
				zap.String("task", name),
				zap.Duration("restart_in", backoff))
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
		backoff = nextBackoff(backoff, s.MaxBackoff)
	}
}

func nextBackoff(current, max time.Duration) time.Duration {
	next := current * 2
	if next > max {
		next = max
	}
	return next
}
