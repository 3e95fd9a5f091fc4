package monitor

import (
	"errors"
	"testing"

	"provctl/internal/config"
)

func testProbes(disk, mem, load float64) Probes {
	return Probes{
		DiskUsedPercent:   func(string) (float64, error) { return disk, nil },
		MemoryUsedPercent: func() (float64, error) { return mem, nil },
		LoadAverage:       func() (float64, error) { return load, nil },
		NumCPU:            func() int { return 4 },
	}
}

func TestReport_AllHealthy(t *testing.T) {
	cfg := config.Monitor{
		DiskPercent:   90,
		MemoryPercent: 90,
		LoadPerCPU:    2.0,
		Paths:         []string{"/", "/var"},
	}

	checks := Report(cfg, testProbes(50, 40, 1.5))

	if len(checks) != 4 {
		t.Fatalf("got %d checks, want 4 (2 disk + memory + load)", len(checks))
	}
	if Breached(checks) {
		t.Fatalf("no check should breach: %+v", checks)
	}
	if checks[0].Name != "disk /" || checks[1].Name != "disk /var" {
		t.Errorf("disk check names = %q, %q", checks[0].Name, checks[1].Name)
	}
}

func TestReport_DiskBreach(t *testing.T) {
	cfg := config.Monitor{DiskPercent: 90, MemoryPercent: 90, LoadPerCPU: 2.0, Paths: []string{"/"}}

	checks := Report(cfg, testProbes(95.5, 10, 0.1))

	if !checks[0].Breached {
		t.Fatalf("disk check should breach at 95.5%% >= 90%%: %+v", checks[0])
	}
	if !Breached(checks) {
		t.Fatal("Breached should be true")
	}
}

func TestReport_ThresholdIsInclusive(t *testing.T) {
	cfg := config.Monitor{DiskPercent: 90, MemoryPercent: 90, LoadPerCPU: 2.0, Paths: []string{"/"}}
	checks := Report(cfg, testProbes(90.0, 0, 0))
	if !checks[0].Breached {
		t.Fatal("exactly-at-threshold should count as breached")
	}
}

func TestReport_LoadScalesWithCPUs(t *testing.T) {
	cfg := config.Monitor{DiskPercent: 90, MemoryPercent: 90, LoadPerCPU: 2.0, Paths: nil}

	// 4 CPUs at 2.0 per cpu: limit 8.0. Load 7.9 is fine, 8.0 breaches.
	checks := Report(cfg, testProbes(0, 0, 7.9))
	if checks[1].Breached {
		t.Fatalf("load 7.9 should not breach limit 8.0: %+v", checks[1])
	}

	checks = Report(cfg, testProbes(0, 0, 8.0))
	if !checks[1].Breached {
		t.Fatalf("load 8.0 should breach limit 8.0: %+v", checks[1])
	}
}

func TestReport_ProbeErrorCountsAsBreach(t *testing.T) {
	cfg := config.Monitor{DiskPercent: 90, MemoryPercent: 90, LoadPerCPU: 2.0, Paths: []string{"/"}}
	probes := testProbes(0, 0, 0)
	probes.DiskUsedPercent = func(string) (float64, error) { return 0, errors.New("boom") }

	checks := Report(cfg, probes)
	if checks[0].Err == nil {
		t.Fatal("disk check should carry the probe error")
	}
	if !Breached(checks) {
		t.Fatal("a failed probe should count as a breach")
	}
}
