package execx

import (
	"bytes"
	"context"
	"testing"
	"time"
)

func TestRunQuiet_ExitCodePropagates(t *testing.T) {
	res := RunQuiet(context.Background(), "sh", "-c", "exit 7")
	if res.Code != 7 {
		t.Fatalf("Code = %d, want 7", res.Code)
	}
	if res.Err == nil {
		t.Fatal("Err should be set for non-zero exit")
	}
	if res.Ok() {
		t.Fatal("Ok() should be false for non-zero exit")
	}
}

func TestRunQuiet_Success(t *testing.T) {
	res := RunQuiet(context.Background(), "true")
	if !res.Ok() {
		t.Fatalf("Code = %d, want 0 (err: %v)", res.Code, res.Err)
	}
}

func TestRunQuiet_DeadlineReportsTimeoutCode(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	res := RunQuiet(ctx, "sleep", "10")
	if res.Code != CodeTimeout {
		t.Fatalf("Code = %d, want %d", res.Code, CodeTimeout)
	}
}

func TestRunQuiet_MissingProgram(t *testing.T) {
	res := RunQuiet(context.Background(), "definitely-not-a-real-binary-xyz")
	if res.Code != CodeNotStarted {
		t.Fatalf("Code = %d, want %d", res.Code, CodeNotStarted)
	}
}

func TestCapture(t *testing.T) {
	out, res := Capture(context.Background(), "sh", "-c", "echo hello")
	if !res.Ok() {
		t.Fatalf("Code = %d, want 0", res.Code)
	}
	if out != "hello\n" {
		t.Fatalf("out = %q, want %q", out, "hello\n")
	}
}

func TestEcho(t *testing.T) {
	var buf bytes.Buffer
	Echo(&buf, "curl", "-fL", "http://example.com")
	if got, want := buf.String(), "+ curl -fL http://example.com\n"; got != want {
		t.Fatalf("Echo = %q, want %q", got, want)
	}
}
