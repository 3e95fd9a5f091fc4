// Package doctor implements `provctl doctor`.
package doctor

import (
	"context"
	"fmt"
	"time"

	"provctl/cmd/provctl/ui"
	"provctl/internal/doctor"

	"github.com/spf13/cobra"
)

// Cmd returns the doctor command.
func Cmd() *cobra.Command {
	var (
		timeout time.Duration
		noNTP   bool
	)

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose whether this host is ready for provisioning",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			checkup := doctor.Checkup{}
			if noNTP {
				checkup.ClockOffset = func(string) (time.Duration, error) { return 0, nil }
			}
			results := checkup.Run(ctx)

			pairs := make([]ui.Pair, 0, len(results))
			for _, r := range results {
				state := ui.Success("ok")
				if !r.OK {
					state = ui.ErrorStyle.Render("fail")
				}
				pairs = append(pairs, ui.KV(r.Name, state+" "+ui.Muted(r.Detail)))
			}
			fmt.Println(ui.InfoMsg("host diagnostic"))
			fmt.Print(ui.KeyValues("  ", pairs...))

			if doctor.Healthy(results) {
				fmt.Println(ui.SuccessMsg("no issues detected"))
				return nil
			}

			fmt.Println(ui.WarnMsg("detected issues:"))
			i := 0
			for _, r := range results {
				if r.OK {
					continue
				}
				i++
				fmt.Printf("  %d) %s: %s\n", i, r.Name, r.Detail)
				if r.Fix != "" {
					fmt.Println(ui.Muted("     fix: " + r.Fix))
				}
			}
			return nil
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 15*time.Second, "Overall diagnostic timeout")
	cmd.Flags().BoolVar(&noNTP, "no-ntp", false, "Skip the NTP clock-offset check")
	return cmd
}
