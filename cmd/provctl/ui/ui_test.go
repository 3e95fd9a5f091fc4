package ui

import (
	"strings"
	"testing"
)

func TestKeyValues_Alignment(t *testing.T) {
	out := KeyValues("  ",
		KV("socket", "/run/provctl.sock"),
		KV("data root", "/var/lib/provctl"),
	)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	// Values start at the same column regardless of key length.
	shortIdx := strings.Index(lines[0], "/run")
	longIdx := strings.Index(lines[1], "/var")
	if shortIdx != longIdx {
		t.Errorf("value columns differ: %d vs %d\n%s", shortIdx, longIdx, out)
	}
}

func TestMessages(t *testing.T) {
	if !strings.Contains(SuccessMsg("done %d", 3), "done 3") {
		t.Error("SuccessMsg dropped formatted text")
	}
	if !strings.Contains(ErrorMsg("failed"), "failed") {
		t.Error("ErrorMsg dropped text")
	}
}
