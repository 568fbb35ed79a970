package cli

import (
	"os"
	"time"

	"github.com/shirou/gopsutil/v3/process"
	"go.uber.org/zap"
)

// resourceUsage is one sample of the process's resources
type resourceUsage struct {
	RSS     uint64
	CPUTime time.Duration
}

// resourceMonitor samples the current process so that each operation can
// report the memory it ended with and the CPU time it consumed
type resourceMonitor struct {
	proc *process.Process
}

func newResourceMonitor() *resourceMonitor {
	proc, err := process.NewProcess(int32(os.Getpid())) //nolint:gosec // pids fit in int32
	if err != nil {
		return &resourceMonitor{}
	}
	return &resourceMonitor{proc: proc}
}

// sample returns false when the platform does not expose the counters
func (m *resourceMonitor) sample() (resourceUsage, bool) {
	if m == nil || m.proc == nil {
		return resourceUsage{}, false
	}
	mem, err := m.proc.MemoryInfo()
	if err != nil {
		return resourceUsage{}, false
	}
	times, err := m.proc.Times()
	if err != nil {
		return resourceUsage{}, false
	}
	cpu := times.User + times.System
	return resourceUsage{
		RSS:     mem.RSS,
		CPUTime: time.Duration(cpu * float64(time.Second)),
	}, true
}

// fields reports the usage at the end of an operation relative to before
func (m *resourceMonitor) fields(before resourceUsage, ok bool) []zap.Field {
	if !ok {
		return nil
	}
	after, ok := m.sample()
	if !ok {
		return nil
	}
	return []zap.Field{
		zap.Uint64("rss_bytes", after.RSS),
		zap.Duration("cpu_time", after.CPUTime-before.CPUTime),
	}
}
