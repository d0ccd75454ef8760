// Package metrics samples host load and the proxy's process counts.
package metrics

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/mackerelio/go-osstat/cpu"
	"github.com/mackerelio/go-osstat/memory"
	"github.com/mackerelio/go-osstat/network"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/DeBrosOfficial/proxyconsole/pkg/logging"
)

const (
	DefaultSchedule  = "@every 5s"
	DefaultCPUWindow = 250 * time.Millisecond
)

// Snapshot is one sample.
type Snapshot struct {
	CPUPercent  float64   `json:"cpu_usage"`
	MemoryTotal uint64    `json:"total_memory"`
	MemoryUsed  uint64    `json:"used_memory"`
	Tasks       int       `json:"tasks"`
	Workers     int       `json:"workers"`
	RxBytes     uint64    `json:"rx_bytes"`
	TxBytes     uint64    `json:"tx_bytes"`
	SampledAt   time.Time `json:"sampled_at"`
}

// Options configures a Sampler.
type Options struct {
	ProcessName string
	CPUWindow   time.Duration
	Logger      *logging.ColoredLogger
}

// Sampler takes snapshots on demand or on a cron schedule.
type Sampler struct {
	processName string
	cpuWindow   time.Duration
	logger      *logging.ColoredLogger

	readCPU       func() (busy, total uint64, err error)
	readMemory    func() (total, used uint64, err error)
	readNetwork   func() (rx, tx uint64, err error)
	listProcesses func(context.Context) ([]procInfo, error)

	mu     sync.RWMutex
	latest *Snapshot
	cron   *cron.Cron
}

// NewSampler creates a Sampler.
func NewSampler(opts Options) *Sampler {
	if opts.CPUWindow <= 0 {
		opts.CPUWindow = DefaultCPUWindow
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNopLogger()
	}
	return &Sampler{
		processName:   opts.ProcessName,
		cpuWindow:     opts.CPUWindow,
		logger:        opts.Logger,
		readCPU:       readHostCPU,
		readMemory:    readHostMemory,
		readNetwork:   readHostNetwork,
		listProcesses: listHostProcesses,
	}
}

func readHostCPU() (uint64, uint64, error) {
	s, err := cpu.Get()
	if err != nil {
		return 0, 0, err
	}
	return s.Total - s.Idle, s.Total, nil
}

func readHostMemory() (uint64, uint64, error) {
	m, err := memory.Get()
	if err != nil {
		return 0, 0, err
	}
	return m.Total, m.Used, nil
}

// readHostNetwork sums the byte counters of every non-loopback interface.
func readHostNetwork() (uint64, uint64, error) {
	stats, err := network.Get()
	if err != nil {
		return 0, 0, err
	}
	var rx, tx uint64
	for _, st := range stats {
		if st.Name == "lo" || st.Name == "lo0" {
			continue
		}
		rx += st.RxBytes
		tx += st.TxBytes
	}
	return rx, tx, nil
}

// Sample takes a fresh snapshot and stores it as the latest. Readings that
// fail leave their fields zero and are reported in the joined error; the
// snapshot is still usable.
func (s *Sampler) Sample(ctx context.Context) (Snapshot, error) {
	var errs []error
	snap := Snapshot{}

	if pct, err := s.cpuPercent(ctx); err != nil {
		if ctx.Err() != nil {
			return Snapshot{}, ctx.Err()
		}
		errs = append(errs, err)
	} else {
		snap.CPUPercent = pct
	}

	if total, used, err := s.readMemory(); err != nil {
		errs = append(errs, err)
	} else {
		snap.MemoryTotal, snap.MemoryUsed = total, used
	}

	if rx, tx, err := s.readNetwork(); err != nil {
		errs = append(errs, err)
	} else {
		snap.RxBytes, snap.TxBytes = rx, tx
	}

	if s.processName != "" {
		pc, err := countProcesses(ctx, s.listProcesses, s.processName)
		if err != nil {
			errs = append(errs, err)
		}
		snap.Tasks, snap.Workers = pc.Tasks, pc.Workers
	}

	snap.SampledAt = time.Now().UTC()
	s.mu.Lock()
	s.latest = &snap
	s.mu.Unlock()

	return snap, errors.Join(errs...)
}

// cpuPercent compares two readings taken cpuWindow apart.
func (s *Sampler) cpuPercent(ctx context.Context) (float64, error) {
	busy0, total0, err := s.readCPU()
	if err != nil {
		return 0, err
	}

	timer := time.NewTimer(s.cpuWindow)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case <-timer.C:
	}

	busy1, total1, err := s.readCPU()
	if err != nil {
		return 0, err
	}
	if total1 <= total0 {
		return 0, errors.New("cpu counters did not advance")
	}
	return float64(busy1-busy0) / float64(total1-total0) * 100, nil
}

// Latest returns the most recent snapshot, if any.
func (s *Sampler) Latest() (Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.latest == nil {
		return Snapshot{}, false
	}
	return *s.latest, true
}

// Start samples on schedule until Stop. schedule uses the standard cron
// syntax plus descriptors such as "@every 5s".
func (s *Sampler) Start(schedule string) error {
	if schedule == "" {
		schedule = DefaultSchedule
	}

	c := cron.New(cron.WithLogger(cronLogger{s.logger}))
	if _, err := c.AddFunc(schedule, s.refresh); err != nil {
		return err
	}

	s.mu.Lock()
	if s.cron != nil {
		s.mu.Unlock()
		return errors.New("sampler already started")
	}
	s.cron = c
	s.mu.Unlock()

	c.Start()
	s.logger.ComponentInfo(logging.ComponentMetrics, "Metrics sampler started",
		zap.String("schedule", schedule))
	return nil
}

// Stop halts the schedule and waits for a running sample to finish.
func (s *Sampler) Stop() {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.mu.Unlock()

	if c != nil {
		<-c.Stop().Done()
	}
}

func (s *Sampler) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := s.Sample(ctx); err != nil {
		s.logger.ComponentDebug(logging.ComponentMetrics, "Partial metrics sample", zap.Error(err))
	}
}

// cronLogger routes cron's own messages through the console logger.
type cronLogger struct {
	l *logging.ColoredLogger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Sugar().Debugw("[METRICS] cron: "+msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Sugar().Errorw("[METRICS] cron: "+msg, append(keysAndValues, "error", err)...)
}
