//go:build !linux

package doctor

import "fmt"

func freeDisk(string) (uint64, error) {
	return 0, fmt.Errorf("disk checks are only supported on linux")
}
