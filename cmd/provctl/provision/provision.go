// Package provision implements `provctl provision`, the guarded
// install pipeline.
package provision

import (
	"context"
	"fmt"
	"os"
	"time"

	"provctl/cmd/provctl/cmdutil"
	"provctl/cmd/provctl/ui"
	"provctl/internal/config"
	"provctl/internal/provision"

	"github.com/spf13/cobra"
)

// Cmd returns the provision command. configPath points at the root
// --config flag value.
func Cmd(configPath *string) *cobra.Command {
	var (
		version    string
		url        string
		destDir    string
		installDir string
		dryRun     bool
		timeout    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "provision",
		Short: "Run the guarded install pipeline",
		Long: `Provision runs the fixed install sequence: update the package index,
ensure curl is present, download the artifact, and install it. The first
failing step aborts the run; its exit code becomes provctl's exit code,
annotated with a human-readable diagnosis for known codes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}

			if version == "" {
				version = cfg.Artifact.Version
			}
			if url == "" {
				url = cfg.Artifact.ResolveURL(version)
			}
			if destDir == "" {
				destDir = os.TempDir()
			}

			opts := provision.Options{
				Version:    version,
				URL:        url,
				DestDir:    destDir,
				InstallDir: installDir,
				DryRun:     dryRun,
			}
			if err := opts.Validate(); err != nil {
				return err
			}

			ctx := cmd.Context()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			steps := provision.Plan(opts)
			if err := cmdutil.RunPipeline(ctx, "provision", provision.Diagnostics, steps, dryRun); err != nil {
				return err
			}

			fmt.Println(ui.SuccessMsg("Installation completed successfully"))
			if !dryRun {
				fmt.Print(ui.KeyValues("  ",
					ui.KV("artifact", opts.ArtifactPath()),
					ui.KV("source", url),
				))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&version, "version", "", "Artifact version (defaults to artifact.version from the config)")
	cmd.Flags().StringVar(&url, "url", "", "Artifact URL (defaults to artifact.url with {version} resolved)")
	cmd.Flags().StringVar(&destDir, "dest-dir", "", "Directory receiving the downloaded artifact")
	cmd.Flags().StringVar(&installDir, "install-dir", "", "Directory tarball artifacts are extracted into")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the commands without executing them")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Minute, "Abort the pipeline after this duration (0 disables)")
	return cmd
}
