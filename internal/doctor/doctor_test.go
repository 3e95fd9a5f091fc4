package doctor

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func healthyCheckup() Checkup {
	return Checkup{
		Binaries:    []string{"curl"},
		LookPath:    func(name string) (string, error) { return "/usr/bin/" + name, nil },
		PingDocker:  func(context.Context) error { return nil },
		FreeDisk:    func(string) (uint64, error) { return 10 << 30, nil },
		ClockOffset: func(string) (time.Duration, error) { return 10 * time.Millisecond, nil },
	}
}

func TestRun_AllHealthy(t *testing.T) {
	results := healthyCheckup().Run(context.Background())
	if len(results) != 4 {
		t.Fatalf("got %d results, want 4", len(results))
	}
	if !Healthy(results) {
		t.Fatalf("all checks should pass: %+v", results)
	}
}

func TestRun_MissingBinary(t *testing.T) {
	c := healthyCheckup()
	c.LookPath = func(string) (string, error) { return "", errors.New("not found") }

	results := c.Run(context.Background())
	if results[0].OK {
		t.Fatal("missing binary should fail its check")
	}
	if !strings.Contains(results[0].Fix, "install curl") {
		t.Errorf("Fix = %q, want install hint", results[0].Fix)
	}
	if Healthy(results) {
		t.Fatal("Healthy should be false")
	}
}

func TestRun_DockerUnreachable(t *testing.T) {
	c := healthyCheckup()
	c.PingDocker = func(context.Context) error { return errors.New("connection refused") }

	results := c.Run(context.Background())
	var docker Result
	for _, r := range results {
		if r.Name == "docker daemon" {
			docker = r
		}
	}
	if docker.OK {
		t.Fatal("docker check should fail")
	}
	if docker.Fix == "" {
		t.Error("docker failure should suggest a fix")
	}
}

func TestRun_LowDisk(t *testing.T) {
	c := healthyCheckup()
	c.FreeDisk = func(string) (uint64, error) { return 100 << 20, nil } // 100 MiB

	results := c.Run(context.Background())
	var disk Result
	for _, r := range results {
		if r.Name == "free disk" {
			disk = r
		}
	}
	if disk.OK {
		t.Fatal("disk check should fail below the 1 GiB default")
	}
}

func TestRun_ClockSkew(t *testing.T) {
	c := healthyCheckup()
	c.ClockOffset = func(string) (time.Duration, error) { return -2 * time.Second, nil }

	results := c.Run(context.Background())
	var clock Result
	for _, r := range results {
		if r.Name == "system clock" {
			clock = r
		}
	}
	if clock.OK {
		t.Fatal("clock check should fail at 2s offset")
	}
	if !strings.Contains(clock.Fix, "NTP") {
		t.Errorf("Fix = %q, want NTP hint", clock.Fix)
	}
}
