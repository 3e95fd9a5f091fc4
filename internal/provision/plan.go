// Package provision builds the guarded install pipeline: refresh the
// package index, ensure curl is present, download the artifact, install
// it. The pipeline is fixed and strictly ordered; a failing step aborts
// the run with that step's exit code.
package provision

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"provctl/internal/execx"
	"provctl/internal/pipeline"
)

// Diagnostics covers the exit-code contracts of the programs the
// pipeline invokes: curl transfer failures plus apt's catch-all.
var Diagnostics = pipeline.Diagnostics{
	6:   "could not resolve host; check the URL and network connectivity",
	7:   "failed to connect to the server",
	22:  "server returned an HTTP error; the requested file may not exist",
	28:  "download timed out",
	100: "package manager reported an error; check apt sources and dpkg lock state",
}

// Options parameterizes a provisioning plan.
type Options struct {
	// Version selects the artifact release; substituted into URL.
	Version string
	// URL is the fully resolved artifact location.
	URL string
	// DestDir receives the downloaded artifact. Defaults to the system
	// temp directory.
	DestDir string
	// InstallDir is where tarball artifacts are extracted.
	// Defaults to /usr/local. Ignored for .deb artifacts.
	InstallDir string
	// DryRun prints each command instead of executing it.
	DryRun bool
	// TraceWriter receives dry-run command traces. Defaults to stderr.
	TraceWriter io.Writer
}

func (o *Options) setDefaults() {
	if o.DestDir == "" {
		o.DestDir = os.TempDir()
	}
	if o.InstallDir == "" {
		o.InstallDir = "/usr/local"
	}
	if o.TraceWriter == nil {
		o.TraceWriter = os.Stderr
	}
}

// Validate checks that the options describe a runnable plan.
func (o Options) Validate() error {
	if strings.TrimSpace(o.URL) == "" {
		return fmt.Errorf("artifact URL is required; set --url or artifact.url in the config")
	}
	if _, err := url.ParseRequestURI(o.URL); err != nil {
		return fmt.Errorf("invalid artifact URL %q: %w", o.URL, err)
	}
	return nil
}

// ArtifactPath returns where the downloaded artifact lands on disk.
func (o Options) ArtifactPath() string {
	name := path.Base(o.URL)
	if name == "." || name == "/" || name == "" {
		name = "artifact"
	}
	return filepath.Join(o.DestDir, name)
}

// Plan returns the ordered install steps for the given options.
func Plan(opts Options) []pipeline.Step {
	opts.setDefaults()
	dest := opts.ArtifactPath()

	steps := []pipeline.Step{
		{
			Description: "update package index",
			Action:      opts.command("apt-get", "update", "-qq"),
		},
		{
			Description: "install curl",
			Action:      opts.command("apt-get", "install", "-y", "-qq", "curl"),
		},
		{
			Description: describeDownload(opts),
			// -f turns HTTP errors into exit code 22 instead of saving
			// the error page as the artifact.
			Action: opts.command("curl", "-fsSL", "--retry", "0", "-o", dest, opts.URL),
		},
		{
			Description: "install artifact",
			Action:      opts.installAction(dest),
		},
	}
	return steps
}

func describeDownload(opts Options) string {
	if opts.Version != "" {
		return "download artifact " + opts.Version
	}
	return "download artifact"
}

// command wraps one external invocation as a step action, honoring
// dry-run mode.
func (o Options) command(name string, args ...string) func(ctx context.Context) int {
	return func(ctx context.Context) int {
		if o.DryRun {
			execx.Echo(o.TraceWriter, name, args...)
			return 0
		}
		return execx.Run(ctx, name, args...).Code
	}
}

func (o Options) installAction(artifact string) func(ctx context.Context) int {
	switch {
	case strings.HasSuffix(artifact, ".deb"):
		return o.command("dpkg", "-i", artifact)
	case strings.HasSuffix(artifact, ".tar.gz"), strings.HasSuffix(artifact, ".tgz"):
		return o.command("tar", "-xzf", artifact, "-C", o.InstallDir)
	default:
		// Unknown artifact type: install as a bare executable.
		return o.command("install", "-m", "0755", artifact, filepath.Join(o.InstallDir, "bin", strings.TrimSuffix(path.Base(artifact), path.Ext(artifact))))
	}
}
