// Package backup implements `provctl backup`.
package backup

import (
	"fmt"

	"provctl/cmd/provctl/ui"
	"provctl/internal/backup"
	"provctl/internal/config"

	"github.com/spf13/cobra"
)

// Cmd returns the backup command.
func Cmd(configPath *string) *cobra.Command {
	var (
		sources []string
		dir     string
		keep    int
		dryRun  bool
	)

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Archive configured directories and prune old snapshots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}

			if len(sources) == 0 {
				sources = cfg.Backup.Sources
			}
			if dir == "" {
				dir = cfg.Backup.Dir
			}
			if keep == 0 {
				keep = cfg.Backup.Keep
			}

			res, err := backup.Take(cmd.Context(), backup.Options{
				Sources: sources,
				Dir:     dir,
				Keep:    keep,
				DryRun:  dryRun,
			})
			if err != nil {
				return err
			}

			if dryRun {
				fmt.Println(ui.InfoMsg("dry run; would create %s", res.Archive))
				return nil
			}
			fmt.Println(ui.SuccessMsg("backup complete"))
			fmt.Print(ui.KeyValues("  ",
				ui.KV("archive", res.Archive),
				ui.KV("pruned", fmt.Sprintf("%d", len(res.Pruned))),
			))
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&sources, "source", nil, "Directory to back up (repeatable; defaults to backup.sources)")
	cmd.Flags().StringVar(&dir, "dir", "", "Backup destination directory (defaults to backup.dir)")
	cmd.Flags().IntVar(&keep, "keep", 0, "Snapshots to retain (defaults to backup.keep)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the archive command without executing it")
	return cmd
}
