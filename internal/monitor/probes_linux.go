//go:build linux

package monitor

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

func diskUsedPercent(path string) (float64, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return 0, err
	}
	if st.Blocks == 0 {
		return 0, fmt.Errorf("filesystem at %s reports zero blocks", path)
	}
	used := st.Blocks - st.Bfree
	// Usable capacity excludes the root-reserved blocks, matching df(1).
	capacity := used + st.Bavail
	if capacity == 0 {
		return 0, fmt.Errorf("filesystem at %s reports zero capacity", path)
	}
	return float64(used) / float64(capacity) * 100, nil
}

func memoryUsedPercent() (float64, error) {
	data, err := os.ReadFile("/proc/meminfo")
	if err != nil {
		return 0, err
	}
	return parseMeminfo(string(data))
}

func parseMeminfo(data string) (float64, error) {
	var total, available float64
	for _, line := range strings.Split(data, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		v, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			continue
		}
		switch fields[0] {
		case "MemTotal:":
			total = v
		case "MemAvailable:":
			available = v
		}
	}
	if total == 0 {
		return 0, fmt.Errorf("meminfo has no MemTotal")
	}
	return (total - available) / total * 100, nil
}

func loadAverage() (float64, error) {
	data, err := os.ReadFile("/proc/loadavg")
	if err != nil {
		return 0, err
	}
	fields := strings.Fields(string(data))
	if len(fields) == 0 {
		return 0, fmt.Errorf("loadavg is empty")
	}
	return strconv.ParseFloat(fields[0], 64)
}
