// Package monitor performs one-shot resource checks against configured
// thresholds: filesystem usage, memory usage, and load average.
package monitor

import (
	"fmt"
	"runtime"

	"provctl/internal/config"
)

// Check is the outcome of a single resource check.
type Check struct {
	Name      string
	Value     string
	Threshold string
	Breached  bool
	Err       error
}

// Probes supplies raw resource readings. Zero-value fields fall back to
// the platform implementations; tests inject fakes.
type Probes struct {
	DiskUsedPercent   func(path string) (float64, error)
	MemoryUsedPercent func() (float64, error)
	LoadAverage       func() (float64, error)
	NumCPU            func() int
}

func (p *Probes) setDefaults() {
	if p.DiskUsedPercent == nil {
		p.DiskUsedPercent = diskUsedPercent
	}
	if p.MemoryUsedPercent == nil {
		p.MemoryUsedPercent = memoryUsedPercent
	}
	if p.LoadAverage == nil {
		p.LoadAverage = loadAverage
	}
	if p.NumCPU == nil {
		p.NumCPU = runtime.NumCPU
	}
}

// Report runs every configured check and returns the results in a
// stable order: disk checks per path, then memory, then load.
func Report(cfg config.Monitor, probes Probes) []Check {
	probes.setDefaults()

	checks := make([]Check, 0, len(cfg.Paths)+2)
	for _, path := range cfg.Paths {
		checks = append(checks, diskCheck(path, cfg.DiskPercent, probes))
	}
	checks = append(checks, memoryCheck(cfg.MemoryPercent, probes))
	checks = append(checks, loadCheck(cfg.LoadPerCPU, probes))
	return checks
}

// Breached reports whether any check crossed its threshold or failed
// to produce a reading.
func Breached(checks []Check) bool {
	for _, c := range checks {
		if c.Breached || c.Err != nil {
			return true
		}
	}
	return false
}

func diskCheck(path string, threshold int, probes Probes) Check {
	c := Check{
		Name:      "disk " + path,
		Threshold: fmt.Sprintf("%d%%", threshold),
	}
	used, err := probes.DiskUsedPercent(path)
	if err != nil {
		c.Err = fmt.Errorf("stat %s: %w", path, err)
		return c
	}
	c.Value = fmt.Sprintf("%.1f%%", used)
	c.Breached = used >= float64(threshold)
	return c
}

func memoryCheck(threshold int, probes Probes) Check {
	c := Check{
		Name:      "memory",
		Threshold: fmt.Sprintf("%d%%", threshold),
	}
	used, err := probes.MemoryUsedPercent()
	if err != nil {
		c.Err = fmt.Errorf("read memory stats: %w", err)
		return c
	}
	c.Value = fmt.Sprintf("%.1f%%", used)
	c.Breached = used >= float64(threshold)
	return c
}

func loadCheck(perCPU float64, probes Probes) Check {
	cpus := probes.NumCPU()
	limit := perCPU * float64(cpus)
	c := Check{
		Name:      "load average",
		Threshold: fmt.Sprintf("%.1f (%.1f per cpu)", limit, perCPU),
	}
	load, err := probes.LoadAverage()
	if err != nil {
		c.Err = fmt.Errorf("read load average: %w", err)
		return c
	}
	c.Value = fmt.Sprintf("%.2f", load)
	c.Breached = load >= limit
	return c
}
