// Package console is the line-oriented presenter the session notifies. It
// prints colored status lines and reads still-working answers from stdin.
// It is deliberately minimal: the core treats presentation as an external
// collaborator, and this is the smallest collaborator that makes the loop
// runnable.
package console

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"

	"tracktray/internal/prefs"
	"tracktray/internal/track"
)

var (
	infoPrefix   = color.New(color.FgHiBlue).Sprint("i")
	workPrefix   = color.New(color.FgHiGreen).Sprint("▶")
	warnPrefix   = color.New(color.FgHiYellow).Sprint("⚠")
	stopPrefix   = color.New(color.FgHiRed).Sprint("■")
	promptPrefix = color.New(color.FgHiCyan).Sprint("?")
)

// Answerer receives the user's reply to a still-working prompt.
type Answerer interface {
	AnswerStillWorking(yes bool) error
}

// Console renders session notifications and forwards prompt answers.
type Console struct {
	mu    sync.Mutex
	out   io.Writer
	in    *bufio.Reader
	prefs prefs.Prefs

	answerer Answerer
}

// New builds a Console over stdout/stdin.
func New(p prefs.Prefs) *Console {
	return &Console{
		out:   os.Stdout,
		in:    bufio.NewReader(os.Stdin),
		prefs: p,
	}
}

// Bind attaches the command target answers are forwarded to. Must be called
// before the session starts prompting.
func (c *Console) Bind(a Answerer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.answerer = a
}

// StateChanged prints a one-line summary of the new state.
func (c *Console) StateChanged(state track.CurrentState) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := state.RunningEntry(); ok {
		line := fmt.Sprintf("%0.02f on %s for %s", state.AccumulatedHours, entry.TaskName, entry.ProjectName)
		fmt.Fprintf(c.out, "\r%s working %s", workPrefix, line)
		if c.prefs.ShowSummary {
			fmt.Fprintf(c.out, "  (%s)", state.SummaryText())
		}
		return
	}
	fmt.Fprintf(c.out, "\r%s idle", infoPrefix)
	if c.prefs.ShowSummary && len(state.Entries) > 0 {
		fmt.Fprintf(c.out, "  (%s)", state.SummaryText())
	}
}

// PromptStillWorking asks on the terminal and forwards the y/n answer. Runs
// the read on its own goroutine so the session's timer dispatch is never
// blocked on a keyboard.
func (c *Console) PromptStillWorking(text string) {
	if !c.prefs.ShowNotification {
		return
	}
	go func() {
		c.mu.Lock()
		fmt.Fprintf(c.out, "\n%s still working on %s? [Y/n] ", promptPrefix, text)
		answerer := c.answerer
		c.mu.Unlock()

		line, err := c.in.ReadString('\n')
		if err != nil {
			return
		}
		if answerer == nil {
			return
		}
		answer := strings.TrimSpace(strings.ToLower(line))
		yes := answer == "" || answer == "y" || answer == "yes"
		_ = answerer.AnswerStillWorking(yes)
	}()
}

// PromptAutoStopped announces the inactivity stop.
func (c *Console) PromptAutoStopped() {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, "\n%s stopped due to inactivity\n", stopPrefix)
}

// Banner surfaces a non-fatal condition.
func (c *Console) Banner(message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, "\n%s %s\n", warnPrefix, message)
}
