package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/golang/glog"
	"golang.org/x/term"
	"golang.org/x/time/rate"

	"whitted/progressz"
)

// progressReporter shows render progress on stderr when it is a terminal,
// and in the log, at most every few seconds, when it is not.
type progressReporter struct {
	tracker *progressz.Tracker

	out      io.Writer
	terminal bool
	limiter  *rate.Limiter
}

func newProgressReporter(tracker *progressz.Tracker) *progressReporter {
	return &progressReporter{
		tracker:  tracker,
		out:      os.Stderr,
		terminal: term.IsTerminal(int(os.Stderr.Fd())),
		limiter:  rate.NewLimiter(rate.Every(5*time.Second), 1),
	}
}

func (p *progressReporter) update(cur, tot int) {
	p.tracker.Update(cur, tot)

	if p.terminal {
		fmt.Fprintf(p.out, "\r%d/%d %d%%", cur, tot, 100*cur/tot)
		return
	}
	if cur == tot || p.limiter.Allow() {
		glog.Infof("Rendered %d/%d rows", cur, tot)
	}
}

func (p *progressReporter) finish() {
	if p.terminal {
		fmt.Fprintf(p.out, "\n")
	}
}
