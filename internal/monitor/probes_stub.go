//go:build !linux

package monitor

import "fmt"

func diskUsedPercent(string) (float64, error) {
	return 0, fmt.Errorf("disk checks are only supported on linux")
}

func memoryUsedPercent() (float64, error) {
	return 0, fmt.Errorf("memory checks are only supported on linux")
}

func loadAverage() (float64, error) {
	return 0, fmt.Errorf("load checks are only supported on linux")
}
