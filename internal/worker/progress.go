package worker

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

const progressBarWidth = 30

// Progress reports batch completion on stderr with rate and ETA.
type Progress struct {
	mu        sync.Mutex
	out       io.Writer
	start     time.Time
	total     int
	completed int
	failed    int
	enabled   bool
}

// NewProgress creates a progress tracker for total tasks. When enabled is
// false the tracker still accumulates counts for Summary but prints nothing.
func NewProgress(total int, enabled bool) *Progress {
	return &Progress{
		out:     os.Stderr,
		start:   time.Now(),
		total:   total,
		enabled: enabled,
	}
}

// Update records the completion of one task and redraws the bar.
func (p *Progress) Update(completed, total, failed int) {
	p.mu.Lock()
	p.completed = completed
	p.total = total
	p.failed = failed
	line := p.line()
	enabled := p.enabled
	p.mu.Unlock()

	if enabled {
		fmt.Fprint(p.out, "\r"+line)
	}
}

// Callback adapts the tracker to Pool's OnProgress hook.
func (p *Progress) Callback() ProgressFunc {
	return p.Update
}

// Done finishes the bar with a newline.
func (p *Progress) Done() {
	p.mu.Lock()
	line := p.line()
	enabled := p.enabled
	p.mu.Unlock()

	if enabled {
		fmt.Fprint(p.out, "\r"+line+"\n")
	}
}

// Summary describes the completed batch in one line.
func (p *Progress) Summary() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	elapsed := time.Since(p.start)
	return fmt.Sprintf("Generated %d/%d maps (%d failed) in %s",
		p.completed-p.failed, p.total, p.failed, shortDuration(elapsed))
}

// line renders the current bar. Callers hold p.mu.
func (p *Progress) line() string {
	filled := 0
	if p.total > 0 {
		filled = progressBarWidth * p.completed / p.total
	}
	bar := strings.Repeat("=", filled) + strings.Repeat("-", progressBarWidth-filled)

	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %d/%d maps", bar, p.completed, p.total)
	if p.failed > 0 {
		fmt.Fprintf(&b, " (%d failed)", p.failed)
	}

	elapsed := time.Since(p.start)
	if p.completed > 0 && elapsed > 0 {
		rate := float64(p.completed) / elapsed.Seconds()
		fmt.Fprintf(&b, " %.1f maps/s", rate)
		if p.completed < p.total && rate > 0 {
			eta := time.Duration(float64(p.total-p.completed)/rate) * time.Second
			fmt.Fprintf(&b, " ETA %s", shortDuration(eta))
		}
	}

	// Trailing spaces clear leftovers from a longer previous line.
	b.WriteString("    ")
	return b.String()
}

func shortDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.0fs", d.Seconds())
	}
	return fmt.Sprintf("%dm%02ds", int(d.Minutes()), int(d.Seconds())%60)
}
