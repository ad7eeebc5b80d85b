package sdk

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/term"
)

// ProgressReporter receives byte counts while an artifact streams in
type ProgressReporter interface {
	// Start is called once with the declared content length (<= 0 if unknown)
	Start(total int64)
	Add(n int)
	Finish()
}

// NoopProgress discards all progress events
type NoopProgress struct{}

func (NoopProgress) Start(int64) {}
func (NoopProgress) Add(int)     {}
func (NoopProgress) Finish()     {}

// TerminalProgress renders a single progress line. On a terminal the line is
// redrawn in place; otherwise a line is printed for every 10% step.
type TerminalProgress struct {
	out         io.Writer
	label       string
	interactive bool
	interval    time.Duration

	total      int64
	current    int64
	lastRender time.Time
	lastStep   int64
}

// NewTerminalProgress creates a reporter writing to out
func NewTerminalProgress(out io.Writer, label string) *TerminalProgress {
	return &TerminalProgress{
		out:         out,
		label:       label,
		interactive: isTerminal(out),
		interval:    100 * time.Millisecond,
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func (p *TerminalProgress) Start(total int64) {
	p.total = total
	p.current = 0
	p.lastStep = -1
	if total > 0 {
		fmt.Fprintf(p.out, "  📦 %s (%s)\n", p.label, humanize.IBytes(uint64(total)))
	} else {
		fmt.Fprintf(p.out, "  📦 %s (size unknown)\n", p.label)
	}
}

func (p *TerminalProgress) Add(n int) {
	p.current += int64(n)

	if p.interactive {
		if time.Since(p.lastRender) < p.interval {
			return
		}
		p.lastRender = time.Now()
		fmt.Fprintf(p.out, "\r  %s", p.line())
		return
	}

	if p.total <= 0 {
		return
	}
	step := p.current * 10 / p.total
	if step > p.lastStep {
		p.lastStep = step
		fmt.Fprintf(p.out, "  %s\n", p.line())
	}
}

func (p *TerminalProgress) Finish() {
	if p.interactive {
		fmt.Fprintf(p.out, "\r  %s\n", p.line())
		return
	}
	if p.total <= 0 {
		fmt.Fprintf(p.out, "  %s\n", p.line())
	}
}

func (p *TerminalProgress) line() string {
	if p.total <= 0 {
		return fmt.Sprintf("%s downloaded", humanize.IBytes(uint64(p.current)))
	}
	percent := float64(p.current) * 100 / float64(p.total)
	return fmt.Sprintf("%5.1f%% %s / %s", percent,
		humanize.IBytes(uint64(p.current)), humanize.IBytes(uint64(p.total)))
}

// progressWriter forwards written byte counts to a reporter
type progressWriter struct {
	w        io.Writer
	reporter ProgressReporter
}

func (pw *progressWriter) Write(b []byte) (int, error) {
	n, err := pw.w.Write(b)
	pw.reporter.Add(n)
	return n, err
}
