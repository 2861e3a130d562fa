package ui

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"
)

// ProgressDisplay prints one line per finished item plus a progress bar
type ProgressDisplay struct {
	mu      sync.Mutex
	bar     progress.Model
	total   int
	done    int
	saved   int
	skipped int
	failed  int
	bytes   int64
	current string
	start   time.Time
	verbose bool
}

// NewProgressDisplay creates a display for total items
func NewProgressDisplay(total int, verbose bool) *ProgressDisplay {
	bar := progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())
	bar.Width = 30

	return &ProgressDisplay{
		bar:     bar,
		total:   total,
		start:   time.Now(),
		verbose: verbose,
	}
}

// StartItem marks the item currently being processed
func (p *ProgressDisplay) StartItem(category, term string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.current = category + "/" + term
}

// CompleteItem records a saved image
func (p *ProgressDisplay) CompleteItem(path string, size int64, width, height int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.done++
	p.saved++
	p.bytes += size
	p.printItem(Green("✓"), fmt.Sprintf("%s %s", path, Dim(fmt.Sprintf("%dx%d • %s", width, height, formatBytes(size)))))
}

// SkipItem records a term with no usable image
func (p *ProgressDisplay) SkipItem(reason string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.done++
	p.skipped++
	p.printItem(Yellow("–"), fmt.Sprintf("%s %s", p.current, Dim("no image: "+reason)))
}

// FailItem records a term whose image could not be saved
func (p *ProgressDisplay) FailItem(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.done++
	p.failed++
	p.printItem(Red("✗"), fmt.Sprintf("%s %s", p.current, Dim(err.Error())))
}

// Line renders the progress bar line
func (p *ProgressDisplay) Line() string {
	percent := 0.0
	if p.total > 0 {
		percent = float64(p.done) / float64(p.total)
	}

	line := fmt.Sprintf("%s %d/%d • %s", p.bar.ViewAs(percent), p.done, p.total, formatDuration(time.Since(p.start)))
	if p.failed+p.skipped > 0 {
		line += " • " + Red(fmt.Sprintf("%d not saved", p.failed+p.skipped))
	}
	return line
}

func (p *ProgressDisplay) printItem(mark, text string) {
	if Quiet {
		return
	}
	if p.verbose {
		fmt.Fprintf(Output, "%s %s\n", mark, text)
		return
	}
	fmt.Fprintf(Output, "\r%s\r%s %s\n%s", strings.Repeat(" ", 100), mark, text, p.Line())
}

// Complete prints the end-of-run summary
func (p *ProgressDisplay) Complete() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if Quiet {
		return
	}

	elapsed := time.Since(p.start)
	fmt.Fprintf(Output, "\n\n%s Saved %d of %d images\n", Green("✓"), p.saved, p.total)
	fmt.Fprintf(Output, "  %s %s in %s\n", Dim("•"), formatBytes(p.bytes), formatDuration(elapsed))
	if p.skipped > 0 {
		fmt.Fprintf(Output, "  %s %d terms had no image\n", Dim("•"), p.skipped)
	}
	if p.failed > 0 {
		fmt.Fprintf(Output, "  %s %d images failed\n", Dim("•"), p.failed)
	}
}

// formatDuration formats a duration in a human-readable way
func formatDuration(d time.Duration) string {
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	default:
		return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
	}
}

// formatBytes formats bytes in a human-readable way
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}

	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}

	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
