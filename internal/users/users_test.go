package users

import (
	"context"
	"errors"
	"strings"
	"testing"

	"provctl/internal/execx"
	"provctl/internal/pipeline"
)

func TestParseFile(t *testing.T) {
	input := `
# dev team
alice
bob:docker,sudo

carol:docker
`
	specs, err := ParseFile(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseFile = %v, want nil", err)
	}
	if len(specs) != 3 {
		t.Fatalf("parsed %d specs, want 3", len(specs))
	}
	if specs[0].Name != "alice" || len(specs[0].Groups) != 0 {
		t.Errorf("specs[0] = %+v", specs[0])
	}
	if specs[1].Name != "bob" || strings.Join(specs[1].Groups, ",") != "docker,sudo" {
		t.Errorf("specs[1] = %+v", specs[1])
	}
}

func TestParseFile_InvalidName(t *testing.T) {
	if _, err := ParseFile(strings.NewReader("Bad Name\n")); err == nil {
		t.Fatal("ParseFile should reject names with spaces")
	}
	if _, err := ParseFile(strings.NewReader("alice:bad group\n")); err == nil {
		t.Fatal("ParseFile should reject invalid groups")
	}
}

func TestParseFile_Empty(t *testing.T) {
	if _, err := ParseFile(strings.NewReader("\n# nothing\n")); err == nil {
		t.Fatal("ParseFile should reject an empty list")
	}
}

func fakeRun(calls *[][]string, failOn string, code int) RunFunc {
	return func(_ context.Context, name string, args ...string) execx.Result {
		cmd := append([]string{name}, args...)
		*calls = append(*calls, cmd)
		for _, a := range args {
			if a == failOn {
				return execx.Result{Code: code}
			}
		}
		return execx.Result{}
	}
}

func TestAddPlan_BatchStopsAtFirstFailure(t *testing.T) {
	specs := []Spec{
		{Name: "alice"},
		{Name: "bob", Groups: []string{"docker"}},
		{Name: "carol"},
	}
	var calls [][]string
	steps := AddPlan(specs, Options{Run: fakeRun(&calls, "bob", 9)})

	if len(steps) != 4 {
		t.Fatalf("plan has %d steps, want 4 (3 useradd + 1 usermod)", len(steps))
	}

	err := pipeline.NewRunner(AddDiagnostics).Run(context.Background(), steps)

	var stepErr *pipeline.StepError
	if !errors.As(err, &stepErr) {
		t.Fatalf("Run = %v, want *StepError", err)
	}
	if stepErr.Code != 9 {
		t.Errorf("Code = %d, want 9", stepErr.Code)
	}
	if stepErr.Diagnostic != "the username is already in use" {
		t.Errorf("Diagnostic = %q", stepErr.Diagnostic)
	}
	// carol is never attempted.
	for _, c := range calls {
		if c[len(c)-1] == "carol" {
			t.Fatal("carol was attempted after bob failed")
		}
	}
}

func TestAddPlan_CommandShape(t *testing.T) {
	var calls [][]string
	steps := AddPlan([]Spec{{Name: "alice", Groups: []string{"docker", "sudo"}}},
		Options{Shell: "/bin/zsh", Run: fakeRun(&calls, "", 0)})

	for _, s := range steps {
		if code := s.Action(context.Background()); code != 0 {
			t.Fatalf("step %q = %d, want 0", s.Description, code)
		}
	}

	if len(calls) != 2 {
		t.Fatalf("ran %d commands, want 2", len(calls))
	}
	if got := strings.Join(calls[0], " "); got != "useradd -m -s /bin/zsh alice" {
		t.Errorf("useradd = %q", got)
	}
	if got := strings.Join(calls[1], " "); got != "usermod -aG docker,sudo alice" {
		t.Errorf("usermod = %q", got)
	}
}

func TestRemovePlan(t *testing.T) {
	var calls [][]string
	steps, err := RemovePlan([]string{"alice", "bob"}, Options{Run: fakeRun(&calls, "", 0)})
	if err != nil {
		t.Fatalf("RemovePlan = %v", err)
	}
	if len(steps) != 2 {
		t.Fatalf("plan has %d steps, want 2", len(steps))
	}
	if err := pipeline.NewRunner(RemoveDiagnostics).Run(context.Background(), steps); err != nil {
		t.Fatalf("Run = %v, want nil", err)
	}
	if got := strings.Join(calls[0], " "); got != "userdel -r alice" {
		t.Errorf("userdel = %q", got)
	}
}

func TestRemovePlan_InvalidName(t *testing.T) {
	if _, err := RemovePlan([]string{"../etc"}, Options{}); err == nil {
		t.Fatal("RemovePlan should reject invalid names")
	}
}
