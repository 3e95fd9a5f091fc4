package ui

import (
	"fmt"
	"os"
	"sync"
	"time"

	"provctl/internal/pipeline"
)

var spinFrames = [...]string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

type checkStatus uint8

const (
	checkPending checkStatus = iota
	checkRunning
	checkDone
	checkFailed
)

type checkStep struct {
	title  string
	status checkStatus
	code   int
}

// Checklist renders pipeline progress as a terminal checklist: pending
// steps muted, the running step with a braille spinner, finished steps
// with a checkmark or a red x. It implements pipeline.Observer.
//
// In non-interactive mode it degrades to one plain line per finished
// step.
type Checklist struct {
	mu            sync.Mutex
	steps         []checkStep
	renderedLines int
	frame         int
	stop          chan struct{}
	once          sync.Once
	plain         bool
	started       bool
}

// NewChecklist creates a checklist for the given step descriptions.
func NewChecklist(steps []pipeline.Step) *Checklist {
	c := &Checklist{
		steps: make([]checkStep, len(steps)),
		stop:  make(chan struct{}),
		plain: !Interactive(),
	}
	for i, s := range steps {
		c.steps[i] = checkStep{title: s.Description}
	}
	return c
}

// StepStarted marks a step as running.
func (c *Checklist) StepStarted(index int, step pipeline.Step) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if index < 0 || index >= len(c.steps) {
		return
	}
	c.steps[index].status = checkRunning

	if c.plain {
		fmt.Fprintln(os.Stderr, InfoMsg("%s", step.Description))
		return
	}
	if !c.started {
		c.started = true
		for _, s := range c.steps {
			icon, label := c.stepStyle(s)
			fmt.Fprintf(os.Stderr, "  %s %s\n", icon, label)
		}
		c.renderedLines = len(c.steps)
		go c.spin()
		return
	}
	c.redraw()
}

// StepFinished marks a step done or failed.
func (c *Checklist) StepFinished(index int, step pipeline.Step, code int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if index < 0 || index >= len(c.steps) {
		return
	}
	if code == 0 {
		c.steps[index].status = checkDone
	} else {
		c.steps[index].status = checkFailed
		c.steps[index].code = code
	}

	if c.plain {
		if code == 0 {
			fmt.Fprintln(os.Stderr, SuccessMsg("%s", step.Description))
		} else {
			fmt.Fprintln(os.Stderr, ErrorMsg("%s (exit code %d)", step.Description, code))
		}
		return
	}
	c.redraw()
}

// Close stops the spinner and leaves the final state on screen.
func (c *Checklist) Close() {
	c.once.Do(func() {
		close(c.stop)
	})
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.plain && c.started {
		c.redraw()
	}
}

func (c *Checklist) spin() {
	ticker := time.NewTicker(80 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.mu.Lock()
			c.frame = (c.frame + 1) % len(spinFrames)
			c.redraw()
			c.mu.Unlock()
		}
	}
}

// redraw reprints all step lines in place. Caller must hold c.mu.
func (c *Checklist) redraw() {
	if c.renderedLines > 0 {
		fmt.Fprintf(os.Stderr, "\033[%dA", c.renderedLines)
	}
	for _, s := range c.steps {
		icon, label := c.stepStyle(s)
		fmt.Fprintf(os.Stderr, "\r  %s %s\033[K\n", icon, label)
	}
	c.renderedLines = len(c.steps)
}

func (c *Checklist) stepStyle(s checkStep) (icon, label string) {
	switch s.status {
	case checkRunning:
		return Accent(spinFrames[c.frame]), s.title
	case checkDone:
		return Success("✓"), s.title
	case checkFailed:
		return ErrorStyle.Render("✗"), ErrorStyle.Render(fmt.Sprintf("%s (exit code %d)", s.title, s.code))
	default:
		return Muted("●"), Muted(s.title)
	}
}
