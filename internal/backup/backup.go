// Package backup takes timestamped tar.gz snapshots of configured
// directories and prunes old archives down to a retention count.
package backup

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"provctl/internal/execx"
)

const archivePrefix = "backup-"

// Diagnostics covers tar's documented exit statuses.
var Diagnostics = map[int]string{
	1: "some files changed while being archived",
	2: "tar reported a fatal error; the archive may be incomplete",
}

// RunFunc invokes an external program; execx.Run in production,
// a fake in tests.
type RunFunc func(ctx context.Context, name string, args ...string) execx.Result

// Options parameterizes one backup run.
type Options struct {
	Sources []string
	Dir     string
	Keep    int

	DryRun      bool
	TraceWriter io.Writer

	Run RunFunc          // defaults to execx.Run
	Now func() time.Time // defaults to time.Now
}

// Result describes what a backup run did.
type Result struct {
	Archive string
	Pruned  []string
}

func (o *Options) setDefaults() {
	if o.Run == nil {
		o.Run = execx.Run
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.TraceWriter == nil {
		o.TraceWriter = os.Stderr
	}
}

// Take creates a new archive and prunes old ones. The archive is named
// backup-YYYYMMDD-HHMMSS.tar.gz under opts.Dir.
func Take(ctx context.Context, opts Options) (*Result, error) {
	opts.setDefaults()

	if len(opts.Sources) == 0 {
		return nil, fmt.Errorf("no backup sources configured; set backup.sources in the config")
	}
	if strings.TrimSpace(opts.Dir) == "" {
		return nil, fmt.Errorf("no backup directory configured; set backup.dir in the config")
	}
	for _, src := range opts.Sources {
		if _, err := os.Stat(src); err != nil {
			return nil, fmt.Errorf("backup source %s: %w", src, err)
		}
	}

	archive := filepath.Join(opts.Dir, archivePrefix+opts.Now().Format("20060102-150405")+".tar.gz")
	args := append([]string{"-czf", archive}, opts.Sources...)

	if opts.DryRun {
		execx.Echo(opts.TraceWriter, "tar", args...)
		return &Result{Archive: archive}, nil
	}

	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create backup dir: %w", err)
	}

	if res := opts.Run(ctx, "tar", args...); !res.Ok() {
		if msg, ok := Diagnostics[res.Code]; ok {
			return nil, fmt.Errorf("create archive: %s (exit code %d)", msg, res.Code)
		}
		return nil, fmt.Errorf("create archive: tar exited with code %d: %w", res.Code, res.Err)
	}

	pruned, err := prune(opts.Dir, opts.Keep)
	if err != nil {
		return nil, fmt.Errorf("prune old backups: %w", err)
	}
	return &Result{Archive: archive, Pruned: pruned}, nil
}

// prune removes the oldest archives so at most keep remain.
// keep <= 0 disables pruning.
func prune(dir string, keep int) ([]string, error) {
	if keep <= 0 {
		return nil, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var archives []string
	for _, e := range entries {
		name := e.Name()
		if !e.IsDir() && strings.HasPrefix(name, archivePrefix) && strings.HasSuffix(name, ".tar.gz") {
			archives = append(archives, name)
		}
	}
	// Timestamped names sort chronologically.
	sort.Strings(archives)

	if len(archives) <= keep {
		return nil, nil
	}

	var pruned []string
	for _, name := range archives[:len(archives)-keep] {
		p := filepath.Join(dir, name)
		if err := os.Remove(p); err != nil {
			return pruned, err
		}
		pruned = append(pruned, p)
	}
	return pruned, nil
}
