// Command provctl provisions and maintains a dev environment host:
// guarded install pipelines, backups, resource monitoring, log
// rotation, batch user management, and host diagnostics.
package main

import (
	"errors"
	"fmt"
	"os"

	backupcmd "provctl/cmd/provctl/backup"
	doctorcmd "provctl/cmd/provctl/doctor"
	historycmd "provctl/cmd/provctl/history"
	monitorcmd "provctl/cmd/provctl/monitor"
	provisioncmd "provctl/cmd/provctl/provision"
	rotatecmd "provctl/cmd/provctl/rotate"
	userscmd "provctl/cmd/provctl/users"
	"provctl/cmd/provctl/ui"
	"provctl/internal/logging"
	"provctl/internal/pipeline"
	"provctl/internal/support/buildinfo"

	"github.com/spf13/cobra"
)

func main() {
	var (
		debug      bool
		noColor    bool
		configPath string
	)
	if err := logging.Configure(logging.LevelWarn); err != nil {
		_, _ = os.Stderr.WriteString("configure logger: " + err.Error() + "\n")
		os.Exit(1)
	}

	root := &cobra.Command{
		Use:           "provctl",
		Short:         "Guarded provisioning for dev environment hosts",
		Version:       buildinfo.Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := logging.LevelWarn
			if debug {
				level = logging.LevelDebug
			}
			if err := logging.Configure(level); err != nil {
				return err
			}
			ui.ConfigureColors(noColor)
			return nil
		},
	}
	root.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	root.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	root.PersistentFlags().StringVar(&configPath, "config", "", "Config file path (defaults to the XDG location)")

	root.AddCommand(provisioncmd.Cmd(&configPath))
	root.AddCommand(backupcmd.Cmd(&configPath))
	root.AddCommand(monitorcmd.Cmd(&configPath))
	root.AddCommand(rotatecmd.Cmd(&configPath))
	root.AddCommand(userscmd.Cmd(&configPath))
	root.AddCommand(doctorcmd.Cmd())
	root.AddCommand(historycmd.Cmd())

	if err := root.Execute(); err != nil {
		// A failed pipeline step carries the external program's exit
		// code; the process must exit with that same code.
		var stepErr *pipeline.StepError
		if errors.As(err, &stepErr) {
			fmt.Fprintln(os.Stderr, ui.ErrorMsg("%s", stepErr.Error()))
			os.Exit(stepErr.Code)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
