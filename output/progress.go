package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

// ProgressBar draws a single-line bar. It only renders when attached to a
// terminal; otherwise every call is a no-op.
type ProgressBar struct {
	total      int
	current    int
	width      int
	startTime  time.Time
	mu         sync.Mutex
	writer     io.Writer
	isActive   bool
	isTerminal bool
	prefix     string
	suffix     string
}

func NewProgressBar(total int, width int) *ProgressBar {
	return NewProgressBarWithWriter(os.Stderr, total, width,
		isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()))
}

func NewProgressBarWithWriter(w io.Writer, total, width int, terminal bool) *ProgressBar {
	return &ProgressBar{
		total:      total,
		width:      width,
		startTime:  time.Now(),
		writer:     w,
		isTerminal: terminal,
	}
}

func (pb *ProgressBar) Start() {
	pb.mu.Lock()
	defer pb.mu.Unlock()
	pb.startTime = time.Now()
	pb.isActive = true
	pb.renderLocked()
}

func (pb *ProgressBar) Stop() {
	pb.mu.Lock()
	defer pb.mu.Unlock()
	if !pb.isActive {
		return
	}
	pb.isActive = false
	if pb.isTerminal {
		fmt.Fprint(pb.writer, "\033[2K\r")
	}
}

func (pb *ProgressBar) Increment() {
	pb.mu.Lock()
	defer pb.mu.Unlock()
	if pb.current < pb.total {
		pb.current++
	}
	pb.renderLocked()
}

func (pb *ProgressBar) SetPrefix(prefix string) {
	pb.mu.Lock()
	pb.prefix = prefix
	pb.mu.Unlock()
}

func (pb *ProgressBar) SetSuffix(suffix string) {
	pb.mu.Lock()
	pb.suffix = suffix
	pb.mu.Unlock()
}

func (pb *ProgressBar) clear() {
	pb.mu.Lock()
	defer pb.mu.Unlock()
	if pb.isActive && pb.isTerminal {
		fmt.Fprint(pb.writer, "\033[2K\r")
	}
}

func (pb *ProgressBar) render() {
	pb.mu.Lock()
	defer pb.mu.Unlock()
	pb.renderLocked()
}

func (pb *ProgressBar) renderLocked() {
	if !pb.isActive || !pb.isTerminal {
		return
	}
	fmt.Fprint(pb.writer, "\033[2K\r"+pb.statusLocked())
}

func (pb *ProgressBar) statusLocked() string {
	percent := 0.0
	completed := 0
	if pb.total > 0 {
		percent = float64(pb.current) / float64(pb.total) * 100
		completed = min(pb.width, pb.width*pb.current/pb.total)
	}

	bar := strings.Repeat("█", completed) + strings.Repeat("░", pb.width-completed)

	return fmt.Sprintf("%s[%s] %d/%d (%0.1f%%) | %s %s",
		pb.prefix, bar, pb.current, pb.total, percent,
		formatDuration(time.Since(pb.startTime)), pb.suffix)
}

// formatDuration formats a duration to a human-readable string
func formatDuration(d time.Duration) string {
	if d.Minutes() < 1 {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}

	if d.Hours() < 1 {
		minutes := int(d.Minutes())
		seconds := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm%02ds", minutes, seconds)
	}

	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh%02dm%02ds", hours, minutes, seconds)
}
