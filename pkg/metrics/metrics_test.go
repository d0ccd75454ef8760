package metrics

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeTable(procs ...procInfo) func(context.Context) ([]procInfo, error) {
	return func(context.Context) ([]procInfo, error) { return procs, nil }
}

func TestCountProcesses(t *testing.T) {
	list := fakeTable(
		procInfo{Name: "systemd", Cmdline: "/sbin/init"},
		procInfo{Name: "nginx", Cmdline: "nginx: master process /usr/sbin/nginx -g daemon on;"},
		procInfo{Name: "nginx", Cmdline: "nginx: worker process"},
		procInfo{Name: "nginx", Cmdline: "nginx: worker process"},
		procInfo{Name: "nginx", Cmdline: "/usr/sbin/nginx -t"},
		procInfo{Name: "vim", Cmdline: "/usr/bin/vim nginx.conf"},
		procInfo{Name: "nginx-exporter", Cmdline: "/usr/local/bin/nginx-exporter"},
	)

	pc, err := countProcesses(context.Background(), list, "nginx")
	require.NoError(t, err)
	assert.Equal(t, ProcessCount{Tasks: 4, Workers: 2}, pc)
}

// Darwin reports the short name even when the command line is unreadable.
func TestCountProcessesByNameOnly(t *testing.T) {
	list := fakeTable(
		procInfo{Name: "nginx"},
		procInfo{Name: "nginx", Cmdline: "nginx: worker process"},
		procInfo{Name: "launchd"},
	)

	pc, err := countProcesses(context.Background(), list, "nginx")
	require.NoError(t, err)
	assert.Equal(t, ProcessCount{Tasks: 2, Workers: 1}, pc)
}

func TestCountProcessesListError(t *testing.T) {
	list := func(context.Context) ([]procInfo, error) { return nil, errors.New("permission denied") }

	_, err := countProcesses(context.Background(), list, "nginx")
	assert.ErrorContains(t, err, "permission denied")
}

func TestListHostProcessesSeesSelf(t *testing.T) {
	procs, err := listHostProcesses(context.Background())
	if err != nil {
		t.Skipf("process table unavailable: %v", err)
	}
	assert.NotEmpty(t, procs)
}

func stubbed(t *testing.T) *Sampler {
	t.Helper()
	s := NewSampler(Options{
		ProcessName: "nginx",
		CPUWindow:   time.Millisecond,
	})
	s.listProcesses = fakeTable(procInfo{Name: "nginx", Cmdline: "nginx: worker process"})
	calls := 0
	s.readCPU = func() (uint64, uint64, error) {
		calls++
		if calls%2 == 1 {
			return 100, 1000, nil
		}
		return 150, 1100, nil
	}
	s.readMemory = func() (uint64, uint64, error) { return 8 << 30, 2 << 30, nil }
	s.readNetwork = func() (uint64, uint64, error) { return 4096, 1024, nil }
	return s
}

func TestSample(t *testing.T) {
	s := stubbed(t)

	_, ok := s.Latest()
	assert.False(t, ok)

	snap, err := s.Sample(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 50.0, snap.CPUPercent, 0.001)
	assert.Equal(t, uint64(8<<30), snap.MemoryTotal)
	assert.Equal(t, uint64(2<<30), snap.MemoryUsed)
	assert.Equal(t, 1, snap.Tasks)
	assert.Equal(t, 1, snap.Workers)
	assert.Equal(t, uint64(4096), snap.RxBytes)
	assert.Equal(t, uint64(1024), snap.TxBytes)

	latest, ok := s.Latest()
	require.True(t, ok)
	assert.Equal(t, snap, latest)
}

func TestSamplePartialFailure(t *testing.T) {
	s := stubbed(t)
	s.readMemory = func() (uint64, uint64, error) { return 0, 0, errors.New("no meminfo") }

	snap, err := s.Sample(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no meminfo")
	assert.InDelta(t, 50.0, snap.CPUPercent, 0.001)
	assert.Zero(t, snap.MemoryTotal)
}

func TestSampleNetworkFailureKeepsOtherFields(t *testing.T) {
	s := stubbed(t)
	s.readNetwork = func() (uint64, uint64, error) { return 0, 0, errors.New("no netstat") }

	snap, err := s.Sample(context.Background())
	assert.ErrorContains(t, err, "no netstat")
	assert.Zero(t, snap.RxBytes)
	assert.Zero(t, snap.TxBytes)
	assert.Equal(t, uint64(8<<30), snap.MemoryTotal)
	assert.Equal(t, 1, snap.Tasks)
}

func TestSnapshotJSONCarriesBandwidth(t *testing.T) {
	raw, err := json.Marshal(Snapshot{RxBytes: 10, TxBytes: 20})
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"rx_bytes":10`)
	assert.Contains(t, string(raw), `"tx_bytes":20`)
}

func TestSampleCancelled(t *testing.T) {
	s := stubbed(t)
	s.cpuWindow = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Sample(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStartRejectsBadSchedule(t *testing.T) {
	s := stubbed(t)
	assert.Error(t, s.Start("every now and then"))
}

func TestScheduledSampling(t *testing.T) {
	s := stubbed(t)
	require.NoError(t, s.Start("@every 1s"))
	defer s.Stop()

	assert.Error(t, s.Start("@every 1s"))
	require.Eventually(t, func() bool {
		_, ok := s.Latest()
		return ok
	}, 3*time.Second, 20*time.Millisecond)
}
