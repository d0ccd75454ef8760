package metrics

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/shirou/gopsutil/v4/process"
)

// ProcessCount is the number of proxy processes and how many are workers.
type ProcessCount struct {
	Tasks   int
	Workers int
}

// procInfo is the part of a process table entry the counter looks at.
type procInfo struct {
	Name    string
	Cmdline string
}

// listHostProcesses reads the process table through gopsutil, which covers
// procfs on linux and sysctl on darwin and the BSDs.
func listHostProcesses(ctx context.Context) ([]procInfo, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]procInfo, 0, len(procs))
	for _, p := range procs {
		// Processes can exit mid-scan.
		name, err := p.NameWithContext(ctx)
		if err != nil {
			continue
		}
		cmdline, _ := p.CmdlineWithContext(ctx)
		out = append(out, procInfo{Name: name, Cmdline: cmdline})
	}
	return out, nil
}

// countProcesses counts the processes named name in the listed table.
func countProcesses(ctx context.Context, list func(context.Context) ([]procInfo, error), name string) (ProcessCount, error) {
	procs, err := list(ctx)
	if err != nil {
		return ProcessCount{}, err
	}

	var pc ProcessCount
	for _, p := range procs {
		cmdline := strings.TrimSpace(p.Cmdline)
		if p.Name != name && !matchesProcess(cmdline, name) {
			continue
		}
		pc.Tasks++
		if strings.Contains(cmdline, "worker process") {
			pc.Workers++
		}
	}
	return pc, nil
}

// matchesProcess accepts both a plain argv ("/usr/sbin/nginx -g ...") and
// the retitled form the proxy gives its own processes ("nginx: worker
// process").
func matchesProcess(cmdline, name string) bool {
	if strings.HasPrefix(cmdline, name+":") {
		return true
	}
	fields := strings.Fields(cmdline)
	return len(fields) > 0 && filepath.Base(fields[0]) == name
}
