package journal

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"provctl/internal/pipeline"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("Open = %v", err)
	}
	t.Cleanup(func() { _ = j.Close() })
	return j
}

func sampleRun(command string, exitCode int) Run {
	started := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	return Run{
		Command:    command,
		StartedAt:  started,
		FinishedAt: started.Add(3 * time.Second),
		ExitCode:   exitCode,
		Steps: []pipeline.StepResult{
			{Index: 0, Description: "update package index", Code: 0},
			{Index: 1, Description: "download artifact", Code: exitCode, Diagnostic: "download timed out"},
		},
	}
}

func TestRecordAndGet(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	id, err := j.Record(ctx, sampleRun("provision", 28))
	if err != nil {
		t.Fatalf("Record = %v", err)
	}

	run, err := j.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get = %v", err)
	}
	if run.Command != "provision" {
		t.Errorf("Command = %q, want provision", run.Command)
	}
	if run.ExitCode != 28 {
		t.Errorf("ExitCode = %d, want 28", run.ExitCode)
	}
	if len(run.Steps) != 2 {
		t.Fatalf("Steps = %d, want 2", len(run.Steps))
	}
	if run.Steps[1].Diagnostic != "download timed out" {
		t.Errorf("step diagnostic = %q", run.Steps[1].Diagnostic)
	}
	if !run.StartedAt.Equal(time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)) {
		t.Errorf("StartedAt = %v", run.StartedAt)
	}
}

func TestGet_NotFound(t *testing.T) {
	j := openTestJournal(t)
	if _, err := j.Get(context.Background(), 12345); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get = %v, want ErrNotFound", err)
	}
}

func TestList_NewestFirst(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	for _, cmd := range []string{"provision", "users add", "provision"} {
		if _, err := j.Record(ctx, sampleRun(cmd, 0)); err != nil {
			t.Fatalf("Record = %v", err)
		}
	}

	runs, err := j.List(ctx, 2)
	if err != nil {
		t.Fatalf("List = %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("List returned %d runs, want 2", len(runs))
	}
	if runs[0].ID <= runs[1].ID {
		t.Errorf("runs not newest-first: ids %d, %d", runs[0].ID, runs[1].ID)
	}
	if runs[0].Command != "provision" || runs[1].Command != "users add" {
		t.Errorf("commands = %q, %q", runs[0].Command, runs[1].Command)
	}
}

func TestPrune(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := j.Record(ctx, sampleRun("provision", 0)); err != nil {
			t.Fatalf("Record = %v", err)
		}
	}

	removed, err := j.Prune(ctx, 2)
	if err != nil {
		t.Fatalf("Prune = %v", err)
	}
	if removed != 3 {
		t.Errorf("Prune removed %d, want 3", removed)
	}

	runs, err := j.List(ctx, 0)
	if err != nil {
		t.Fatalf("List = %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("List returned %d runs after prune, want 2", len(runs))
	}
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	ctx := context.Background()

	j, err := Open(path)
	if err != nil {
		t.Fatalf("Open = %v", err)
	}
	if _, err := j.Record(ctx, sampleRun("provision", 0)); err != nil {
		t.Fatalf("Record = %v", err)
	}
	if err := j.Close(); err != nil {
		t.Fatalf("Close = %v", err)
	}

	j2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen = %v", err)
	}
	defer j2.Close()

	runs, err := j2.List(ctx, 0)
	if err != nil {
		t.Fatalf("List = %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("List after reopen = %d runs, want 1", len(runs))
	}
}
