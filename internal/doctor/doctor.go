// Package doctor diagnoses whether the host is ready for provisioning:
// required programs on PATH, a reachable docker daemon, enough free
// disk, and a sane system clock.
package doctor

import (
	"context"
	"fmt"
	"os/exec"
	"time"

	"github.com/beevik/ntp"
)

const (
	defaultNTPPool        = "pool.ntp.org"
	defaultMaxClockOffset = 500 * time.Millisecond
	defaultMinFreeDisk    = 1 << 30 // 1 GiB
)

// DefaultBinaries are the programs the provisioning pipelines invoke.
var DefaultBinaries = []string{"apt-get", "curl", "dpkg", "tar", "useradd", "userdel"}

// Result is the outcome of one diagnostic check.
type Result struct {
	Name   string
	OK     bool
	Detail string
	Fix    string
}

// Checkup runs host diagnostics. Zero-value probe fields fall back to
// the real implementations; tests inject fakes.
type Checkup struct {
	Binaries       []string
	MinFreeDisk    uint64
	NTPPool        string
	MaxClockOffset time.Duration

	LookPath    func(name string) (string, error)
	PingDocker  func(ctx context.Context) error
	FreeDisk    func(path string) (uint64, error)
	ClockOffset func(pool string) (time.Duration, error)
}

func (c *Checkup) setDefaults() {
	if c.Binaries == nil {
		c.Binaries = DefaultBinaries
	}
	if c.MinFreeDisk == 0 {
		c.MinFreeDisk = defaultMinFreeDisk
	}
	if c.NTPPool == "" {
		c.NTPPool = defaultNTPPool
	}
	if c.MaxClockOffset == 0 {
		c.MaxClockOffset = defaultMaxClockOffset
	}
	if c.LookPath == nil {
		c.LookPath = exec.LookPath
	}
	if c.PingDocker == nil {
		c.PingDocker = pingDocker
	}
	if c.FreeDisk == nil {
		c.FreeDisk = freeDisk
	}
	if c.ClockOffset == nil {
		c.ClockOffset = clockOffset
	}
}

// Run executes every check and returns the results in a stable order.
func (c Checkup) Run(ctx context.Context) []Result {
	c.setDefaults()

	results := make([]Result, 0, len(c.Binaries)+3)
	for _, bin := range c.Binaries {
		results = append(results, c.binaryCheck(bin))
	}
	results = append(results, c.dockerCheck(ctx), c.diskCheck(), c.clockCheck())
	return results
}

// Healthy reports whether every check passed.
func Healthy(results []Result) bool {
	for _, r := range results {
		if !r.OK {
			return false
		}
	}
	return true
}

func (c Checkup) binaryCheck(bin string) Result {
	r := Result{Name: "binary " + bin}
	path, err := c.LookPath(bin)
	if err != nil {
		r.Detail = "not found on PATH"
		r.Fix = "install " + bin + " with the system package manager"
		return r
	}
	r.OK = true
	r.Detail = path
	return r
}

func (c Checkup) dockerCheck(ctx context.Context) Result {
	r := Result{Name: "docker daemon"}
	if err := c.PingDocker(ctx); err != nil {
		r.Detail = err.Error()
		r.Fix = "start the docker daemon or set DOCKER_HOST"
		return r
	}
	r.OK = true
	r.Detail = "reachable"
	return r
}

func (c Checkup) diskCheck() Result {
	r := Result{Name: "free disk"}
	free, err := c.FreeDisk("/")
	if err != nil {
		r.Detail = err.Error()
		return r
	}
	r.Detail = fmt.Sprintf("%.1f GiB available", float64(free)/(1<<30))
	if free < c.MinFreeDisk {
		r.Fix = "free up disk space before provisioning"
		return r
	}
	r.OK = true
	return r
}

func (c Checkup) clockCheck() Result {
	r := Result{Name: "system clock"}
	offset, err := c.ClockOffset(c.NTPPool)
	if err != nil {
		r.Detail = "ntp query failed: " + err.Error()
		r.Fix = "check network connectivity to " + c.NTPPool
		return r
	}
	r.Detail = fmt.Sprintf("offset %s from %s", offset.Round(time.Millisecond), c.NTPPool)
	if offset.Abs() >= c.MaxClockOffset {
		r.Fix = "enable NTP synchronization (timedatectl set-ntp true)"
		return r
	}
	r.OK = true
	return r
}

func clockOffset(pool string) (time.Duration, error) {
	resp, err := ntp.Query(pool)
	if err != nil {
		return 0, err
	}
	return resp.ClockOffset, nil
}
