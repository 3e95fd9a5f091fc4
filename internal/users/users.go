// Package users batch-provisions local accounts from a simple line
// format. Each account is created through the guarded pipeline so a
// failing useradd stops the batch with a diagnosed exit code.
package users

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"provctl/internal/execx"
	"provctl/internal/pipeline"
)

// AddDiagnostics covers useradd(8)'s documented exit codes.
var AddDiagnostics = pipeline.Diagnostics{
	1:  "could not update the password file",
	4:  "the UID is already in use",
	6:  "a specified group does not exist",
	9:  "the username is already in use",
	10: "could not update the group file",
	12: "could not create the home directory",
}

// RemoveDiagnostics covers userdel(8)'s documented exit codes.
var RemoveDiagnostics = pipeline.Diagnostics{
	1:  "could not update the password file",
	6:  "the specified user does not exist",
	8:  "the user is currently logged in",
	10: "could not update the group file",
	12: "could not remove the home directory",
}

var validName = regexp.MustCompile(`^[a-z_][a-z0-9_-]*\$?$`)

// Spec describes one account to provision.
type Spec struct {
	Name   string
	Groups []string
}

// ParseFile reads account specs, one per line, in the form
// "name" or "name:group1,group2". Blank lines and #-comments are
// ignored.
func ParseFile(r io.Reader) ([]Spec, error) {
	var specs []Spec
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		name, groupList, _ := strings.Cut(line, ":")
		name = strings.TrimSpace(name)
		if !validName.MatchString(name) {
			return nil, fmt.Errorf("line %d: invalid username %q", lineNo, name)
		}

		spec := Spec{Name: name}
		for _, g := range strings.Split(groupList, ",") {
			g = strings.TrimSpace(g)
			if g == "" {
				continue
			}
			if !validName.MatchString(g) {
				return nil, fmt.Errorf("line %d: invalid group %q", lineNo, g)
			}
			spec.Groups = append(spec.Groups, g)
		}
		specs = append(specs, spec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read user list: %w", err)
	}
	if len(specs) == 0 {
		return nil, fmt.Errorf("user list is empty")
	}
	return specs, nil
}

// RunFunc invokes an external program; execx.Run in production,
// a fake in tests.
type RunFunc func(ctx context.Context, name string, args ...string) execx.Result

// Options parameterizes user pipelines.
type Options struct {
	Shell string

	DryRun      bool
	TraceWriter io.Writer

	Run RunFunc // defaults to execx.Run
}

func (o *Options) setDefaults() {
	if o.Shell == "" {
		o.Shell = "/bin/bash"
	}
	if o.TraceWriter == nil {
		o.TraceWriter = os.Stderr
	}
	if o.Run == nil {
		o.Run = execx.Run
	}
}

// AddPlan returns guarded steps creating every account in order.
// Accounts with supplementary groups get a second usermod step.
func AddPlan(specs []Spec, opts Options) []pipeline.Step {
	opts.setDefaults()

	var steps []pipeline.Step
	for _, spec := range specs {
		steps = append(steps, pipeline.Step{
			Description: "create user " + spec.Name,
			Action:      opts.command("useradd", "-m", "-s", opts.Shell, spec.Name),
		})
		if len(spec.Groups) > 0 {
			steps = append(steps, pipeline.Step{
				Description: fmt.Sprintf("add %s to groups %s", spec.Name, strings.Join(spec.Groups, ",")),
				Action:      opts.command("usermod", "-aG", strings.Join(spec.Groups, ","), spec.Name),
			})
		}
	}
	return steps
}

// RemovePlan returns guarded steps deleting the named accounts and
// their home directories.
func RemovePlan(names []string, opts Options) ([]pipeline.Step, error) {
	opts.setDefaults()

	var steps []pipeline.Step
	for _, name := range names {
		if !validName.MatchString(name) {
			return nil, fmt.Errorf("invalid username %q", name)
		}
		steps = append(steps, pipeline.Step{
			Description: "remove user " + name,
			Action:      opts.command("userdel", "-r", name),
		})
	}
	return steps, nil
}

func (o Options) command(name string, args ...string) func(ctx context.Context) int {
	return func(ctx context.Context) int {
		if o.DryRun {
			execx.Echo(o.TraceWriter, name, args...)
			return 0
		}
		return o.Run(ctx, name, args...).Code
	}
}
