// Package cmdutil holds helpers shared by provctl's subcommands:
// configuration loading and guarded pipeline execution with checklist
// rendering and journal recording.
package cmdutil

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"provctl/cmd/provctl/ui"
	"provctl/internal/journal"
	"provctl/internal/pipeline"
)

// JournalPath is overridable for tests; empty means journal.DefaultPath().
var JournalPath string

// RunPipeline executes steps through a guarded runner with a checklist
// renderer, then records the run in the journal. Journal failures are
// logged and swallowed: they must never change the pipeline's outcome.
// Dry runs are not recorded.
func RunPipeline(ctx context.Context, command string, diags pipeline.Diagnostics, steps []pipeline.Step, dryRun bool) error {
	rec := pipeline.NewRecorder(diags)
	checklist := ui.NewChecklist(steps)

	started := time.Now()
	err := pipeline.NewRunner(diags, rec, checklist).Run(ctx, steps)
	finished := time.Now()
	checklist.Close()

	if !dryRun {
		record(ctx, journal.Run{
			Command:    command,
			StartedAt:  started,
			FinishedAt: finished,
			ExitCode:   exitCode(err),
			Steps:      rec.Results(),
		})
	}
	return err
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var stepErr *pipeline.StepError
	if errors.As(err, &stepErr) {
		return stepErr.Code
	}
	return 1
}

func record(ctx context.Context, run journal.Run) {
	path := JournalPath
	if path == "" {
		path = journal.DefaultPath()
	}

	j, err := journal.Open(path)
	if err != nil {
		slog.Warn("open run journal", "path", path, "err", err)
		return
	}
	defer j.Close()

	if _, err := j.Record(ctx, run); err != nil {
		slog.Warn("record run", "command", run.Command, "err", err)
	}
}

// OpenJournal opens the run journal at its configured location.
func OpenJournal() (*journal.Journal, error) {
	path := JournalPath
	if path == "" {
		path = journal.DefaultPath()
	}
	return journal.Open(path)
}
