package ui

import (
	"fmt"
	"io"
	"time"

	"github.com/briandowns/spinner"
)

// StepSpinner reports the startup steps of `beem serve`, one line per step.
// Without a terminal it prints plain text instead of animating.
type StepSpinner struct {
	w      io.Writer
	s      *spinner.Spinner
	plain  bool
	msg    string
	active bool
}

// NewStepSpinner writes to w. plain disables the animation.
func NewStepSpinner(w io.Writer, plain bool) *StepSpinner {
	return &StepSpinner{w: w, plain: plain}
}

// Run shows msg while fn runs, then marks the line with a check or a cross
// depending on fn's error, which it returns unchanged.
func (ss *StepSpinner) Run(msg string, fn func() error) error {
	ss.Start(msg)
	if err := fn(); err != nil {
		ss.Fail()
		return err
	}
	ss.Done()
	return nil
}

// Start begins a step.
func (ss *StepSpinner) Start(msg string) {
	ss.msg = msg
	if ss.plain {
		fmt.Fprintf(ss.w, "  %s", msg)
		return
	}
	ss.s = spinner.New(spinner.CharSets[14], 80*time.Millisecond, spinner.WithWriter(ss.w))
	ss.s.Prefix = "  "
	ss.s.Suffix = " " + msg
	ss.s.Start()
	ss.active = true
}

// Done ends the current step successfully.
func (ss *StepSpinner) Done() { ss.finish(StyleSuccess.Render(SymbolCheck)) }

// Fail ends the current step as failed.
func (ss *StepSpinner) Fail() { ss.finish(StyleError.Render(SymbolCross)) }

func (ss *StepSpinner) finish(mark string) {
	if ss.plain {
		fmt.Fprintf(ss.w, " %s\n", mark)
		return
	}
	ss.Stop()
	fmt.Fprintf(ss.w, "\r  %s %s\n", ss.msg, mark)
}

// Stop halts the animation without printing a result, e.g. on a signal.
func (ss *StepSpinner) Stop() {
	if ss.s != nil && ss.active {
		ss.s.Stop()
		ss.active = false
	}
}
