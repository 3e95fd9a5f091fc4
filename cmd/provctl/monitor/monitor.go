// Package monitor implements `provctl monitor`.
package monitor

import (
	"fmt"

	"provctl/cmd/provctl/ui"
	"provctl/internal/config"
	"provctl/internal/monitor"

	"github.com/spf13/cobra"
)

// Cmd returns the monitor command.
func Cmd(configPath *string) *cobra.Command {
	var (
		diskPercent   int
		memoryPercent int
		loadPerCPU    float64
		paths         []string
	)

	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Check disk, memory, and load against thresholds",
		Long: `Monitor takes one reading of disk usage, memory usage, and load
average and compares them against the configured thresholds. It exits
non-zero when any threshold is breached, making it suitable for cron.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}

			mc := cfg.Monitor
			if diskPercent > 0 {
				mc.DiskPercent = diskPercent
			}
			if memoryPercent > 0 {
				mc.MemoryPercent = memoryPercent
			}
			if loadPerCPU > 0 {
				mc.LoadPerCPU = loadPerCPU
			}
			if len(paths) > 0 {
				mc.Paths = paths
			}

			checks := monitor.Report(mc, monitor.Probes{})

			rows := make([][]string, 0, len(checks))
			for _, c := range checks {
				state := ui.Success("ok")
				value := c.Value
				switch {
				case c.Err != nil:
					state = ui.ErrorStyle.Render("error")
					value = c.Err.Error()
				case c.Breached:
					state = ui.ErrorStyle.Render("breach")
				}
				rows = append(rows, []string{c.Name, value, c.Threshold, state})
			}
			fmt.Println(ui.Table([]string{"check", "value", "threshold", "state"}, rows))

			if monitor.Breached(checks) {
				return fmt.Errorf("one or more resource thresholds breached")
			}
			fmt.Println(ui.SuccessMsg("all resources within thresholds"))
			return nil
		},
	}

	cmd.Flags().IntVar(&diskPercent, "disk-percent", 0, "Disk usage threshold (defaults to monitor.disk-percent)")
	cmd.Flags().IntVar(&memoryPercent, "memory-percent", 0, "Memory usage threshold (defaults to monitor.memory-percent)")
	cmd.Flags().Float64Var(&loadPerCPU, "load-per-cpu", 0, "Load average threshold per CPU (defaults to monitor.load-per-cpu)")
	cmd.Flags().StringArrayVar(&paths, "path", nil, "Filesystem to check (repeatable; defaults to monitor.paths)")
	return cmd
}
