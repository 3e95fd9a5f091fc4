// Package users implements `provctl users add` and `provctl users remove`.
package users

import (
	"fmt"
	"os"

	"provctl/cmd/provctl/cmdutil"
	"provctl/cmd/provctl/ui"
	"provctl/internal/config"
	"provctl/internal/users"

	"github.com/spf13/cobra"
)

// Cmd returns the users command group.
func Cmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Batch-manage local user accounts",
	}
	cmd.AddCommand(addCmd(configPath))
	cmd.AddCommand(removeCmd())
	return cmd
}

func addCmd(configPath *string) *cobra.Command {
	var (
		fromFile string
		shell    string
		dryRun   bool
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create accounts listed in a file",
		Long: `Add reads account specs, one per line, in the form "name" or
"name:group1,group2", and creates each account through the guarded
pipeline. The first failing useradd stops the batch with a diagnosed
exit code; accounts already created stay.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if shell == "" {
				shell = cfg.Users.Shell
			}

			f, err := os.Open(fromFile)
			if err != nil {
				return fmt.Errorf("open user list: %w", err)
			}
			defer f.Close()

			specs, err := users.ParseFile(f)
			if err != nil {
				return err
			}

			steps := users.AddPlan(specs, users.Options{Shell: shell, DryRun: dryRun})
			if err := cmdutil.RunPipeline(cmd.Context(), "users add", users.AddDiagnostics, steps, dryRun); err != nil {
				return err
			}

			fmt.Println(ui.SuccessMsg("provisioned %d account(s)", len(specs)))
			return nil
		},
	}

	cmd.Flags().StringVar(&fromFile, "from-file", "", "File listing accounts to create (required)")
	cmd.Flags().StringVar(&shell, "shell", "", "Login shell for new accounts (defaults to users.shell)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the commands without executing them")
	_ = cmd.MarkFlagRequired("from-file")
	return cmd
}

func removeCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "remove NAME...",
		Short: "Delete accounts and their home directories",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			steps, err := users.RemovePlan(args, users.Options{DryRun: dryRun})
			if err != nil {
				return err
			}
			if err := cmdutil.RunPipeline(cmd.Context(), "users remove", users.RemoveDiagnostics, steps, dryRun); err != nil {
				return err
			}

			fmt.Println(ui.SuccessMsg("removed %d account(s)", len(args)))
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the commands without executing them")
	return cmd
}
