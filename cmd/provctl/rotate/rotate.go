// Package rotate implements `provctl rotate`.
package rotate

import (
	"fmt"

	"provctl/cmd/provctl/ui"
	"provctl/internal/config"
	"provctl/internal/rotate"

	"github.com/spf13/cobra"
)

// Cmd returns the rotate command.
func Cmd(configPath *string) *cobra.Command {
	var (
		targets   []string
		maxSizeMB int64
		keep      int
		dryRun    bool
	)

	cmd := &cobra.Command{
		Use:   "rotate",
		Short: "Rotate log files over the size threshold",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}

			if len(targets) == 0 {
				targets = cfg.Rotate.Targets
			}
			if maxSizeMB == 0 {
				maxSizeMB = cfg.Rotate.MaxSizeMB
			}
			if keep == 0 {
				keep = cfg.Rotate.Keep
			}
			if len(targets) == 0 {
				return fmt.Errorf("no rotation targets configured; set rotate.targets in the config")
			}

			results, err := rotate.Run(rotate.Options{
				Targets: targets,
				MaxSize: maxSizeMB << 20,
				Keep:    keep,
				DryRun:  dryRun,
			})
			if err != nil {
				return err
			}

			rotated := 0
			for _, r := range results {
				if r.Rotated {
					rotated++
					fmt.Println(ui.SuccessMsg("rotated %s (%d bytes)", r.Path, r.Size))
				}
			}
			if rotated == 0 {
				fmt.Println(ui.InfoMsg("nothing to rotate; %d target(s) under %d MB", len(results), maxSizeMB))
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&targets, "target", nil, "Log file to rotate (repeatable; defaults to rotate.targets)")
	cmd.Flags().Int64Var(&maxSizeMB, "max-size-mb", 0, "Rotate files at or above this size (defaults to rotate.max-size-mb)")
	cmd.Flags().IntVar(&keep, "keep", 0, "Compressed generations to retain (defaults to rotate.keep)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report what would rotate without touching files")
	return cmd
}
