// Package history implements `provctl history`: listing, inspecting,
// and pruning recorded pipeline runs.
package history

import (
	"fmt"
	"strconv"
	"time"

	"provctl/cmd/provctl/cmdutil"
	"provctl/cmd/provctl/ui"

	"github.com/spf13/cobra"
)

// Cmd returns the history command group.
func Cmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect recorded pipeline runs",
	}
	cmd.AddCommand(listCmd())
	cmd.AddCommand(showCmd())
	cmd.AddCommand(pruneCmd())
	return cmd
}

func listCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := cmdutil.OpenJournal()
			if err != nil {
				return err
			}
			defer j.Close()

			runs, err := j.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Println(ui.InfoMsg("no recorded runs"))
				return nil
			}

			rows := make([][]string, 0, len(runs))
			for _, r := range runs {
				state := ui.Success("ok")
				if r.ExitCode != 0 {
					state = ui.ErrorStyle.Render(fmt.Sprintf("exit %d", r.ExitCode))
				}
				rows = append(rows, []string{
					strconv.FormatInt(r.ID, 10),
					r.Command,
					r.StartedAt.Local().Format(time.DateTime),
					r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond).String(),
					state,
				})
			}
			fmt.Println(ui.Table([]string{"id", "command", "started", "duration", "state"}, rows))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Runs to show (0 for all)")
	return cmd
}

func showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show one run with its step outcomes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid run id %q", args[0])
			}

			j, err := cmdutil.OpenJournal()
			if err != nil {
				return err
			}
			defer j.Close()

			run, err := j.Get(cmd.Context(), id)
			if err != nil {
				return err
			}

			fmt.Println(ui.InfoMsg("run %d: %s", run.ID, ui.Accent(run.Command)))
			fmt.Print(ui.KeyValues("  ",
				ui.KV("started", run.StartedAt.Local().Format(time.DateTime)),
				ui.KV("duration", run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond).String()),
				ui.KV("exit code", strconv.Itoa(run.ExitCode)),
			))

			for _, step := range run.Steps {
				if step.Code == 0 {
					fmt.Println("  " + ui.SuccessMsg("%s", step.Description))
					continue
				}
				fmt.Println("  " + ui.ErrorMsg("%s: %s (exit code %d)", step.Description, step.Diagnostic, step.Code))
			}
			return nil
		},
	}
}

func pruneCmd() *cobra.Command {
	var keep int

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete all but the newest runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := cmdutil.OpenJournal()
			if err != nil {
				return err
			}
			defer j.Close()

			removed, err := j.Prune(cmd.Context(), keep)
			if err != nil {
				return err
			}
			fmt.Println(ui.SuccessMsg("pruned %d run(s), kept %d", removed, keep))
			return nil
		},
	}

	cmd.Flags().IntVar(&keep, "keep", 50, "Runs to retain")
	return cmd
}
