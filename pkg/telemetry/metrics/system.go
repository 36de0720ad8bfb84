package metrics

import (
	"fmt"
	"math"
	"runtime"

	"github.com/prometheus/procfs"
)

// SystemSampler reports host CPU and memory usage as percentages.
type SystemSampler interface {
	SampleSystem() (cpuPercent, memPercent float64, err error)
}

// ProcSampler reads /proc. CPU usage is the one-minute load average over
// the number of CPUs; memory usage is (total-free)/total.
type ProcSampler struct {
	root string
	cpus int
}

// NewProcSampler returns a sampler reading the default /proc mount.
func NewProcSampler() *ProcSampler {
	return &ProcSampler{root: procfs.DefaultMountPoint, cpus: runtime.NumCPU()}
}

// NewProcSamplerAt returns a sampler reading a proc filesystem mounted at root.
func NewProcSamplerAt(root string, cpus int) *ProcSampler {
	if cpus <= 0 {
		cpus = 1
	}
	return &ProcSampler{root: root, cpus: cpus}
}

// SampleSystem implements SystemSampler.
func (p *ProcSampler) SampleSystem() (float64, float64, error) {
	fs, err := procfs.NewFS(p.root)
	if err != nil {
		return 0, 0, fmt.Errorf("open procfs: %w", err)
	}
	load, err := fs.LoadAvg()
	if err != nil {
		return 0, 0, fmt.Errorf("read load average: %w", err)
	}
	mem, err := fs.Meminfo()
	if err != nil {
		return 0, 0, fmt.Errorf("read meminfo: %w", err)
	}

	cpu := load.Load1 / float64(p.cpus) * 100

	var memPct float64
	if mem.MemTotal != nil && *mem.MemTotal > 0 && mem.MemFree != nil {
		total := float64(*mem.MemTotal)
		memPct = (total - float64(*mem.MemFree)) / total * 100
	}
	return cpu, math.Round(memPct*100) / 100, nil
}

// SampleSystem refreshes the CPU and Memory gauges. A sampler failure is
// logged and leaves the previous values in place.
func (s *Store) SampleSystem() {
	defer s.recoverPanic("sample system")
	cpu, mem, err := s.system.SampleSystem()
	if err != nil {
		s.logger.Warn("system sample failed", "error", err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setGaugeLocked(CPU, cpu)
	s.setGaugeLocked(Memory, mem)
}

// SetPoolStats records database connection pool occupancy.
func (s *Store) SetPoolStats(size, used, queue int) {
	defer s.recoverPanic("set pool stats")
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setGaugeLocked(DBPoolSize, float64(size))
	s.setGaugeLocked(DBPoolUsed, float64(used))
	s.setGaugeLocked(DBPoolQueue, float64(queue))
	s.st.poolReported = true
}
