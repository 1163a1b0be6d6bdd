package ui

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// Progress reports chapter fetching progress for one title
type Progress interface {
	Start(total int)
	Increment()
	Finish()
}

// NewProgress returns a progress bar when w is a terminal and plain
// "Progress: n/total" lines otherwise
func NewProgress(w io.Writer, label string) Progress {
	if IsTerminal(w) {
		return NewBarProgress(w, label)
	}
	return NewLineProgress(w)
}

// BarProgress renders an mpb progress bar
type BarProgress struct {
	out   io.Writer
	label string
	p     *mpb.Progress
	bar   *mpb.Bar
}

// NewBarProgress creates a bar progress writing to w
func NewBarProgress(w io.Writer, label string) *BarProgress {
	return &BarProgress{out: w, label: label}
}

// Start creates the bar for total chapters
func (b *BarProgress) Start(total int) {
	b.p = mpb.New(
		mpb.WithWidth(52),
		mpb.WithOutput(b.out),
		mpb.WithRefreshRate(120*time.Millisecond),
	)
	b.bar = b.p.New(
		0,
		mpb.BarStyle().Rbound("]"),
		mpb.PrependDecorators(
			decor.Name(b.label+"  "),
		),
		mpb.AppendDecorators(
			decor.Percentage(decor.WCSyncWidth),
			decor.CountersNoUnit(" | %d/%d chapters", decor.WCSyncWidth),
		),
	)
	// total is set after creation so the bar only completes in Finish
	b.bar.SetTotal(int64(total), false)
}

// Increment advances the bar by one chapter
func (b *BarProgress) Increment() {
	if b.bar != nil {
		b.bar.Increment()
	}
}

// Finish completes the bar at its current count and waits for rendering.
// A bar stopped short of its total is completed at the count reached.
func (b *BarProgress) Finish() {
	if b.p == nil {
		return
	}
	b.bar.SetTotal(-1, true)
	b.p.Wait()
	b.p, b.bar = nil, nil
}

// LineProgress prints one "Progress: n/total" line per chapter
type LineProgress struct {
	mu      sync.Mutex
	out     io.Writer
	total   int
	current int
}

// NewLineProgress creates a line progress writing to w
func NewLineProgress(w io.Writer) *LineProgress {
	return &LineProgress{out: w}
}

// Start resets the counter for total chapters
func (l *LineProgress) Start(total int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.total = total
	l.current = 0
}

// Increment records one fetched chapter
func (l *LineProgress) Increment() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.current++
	fmt.Fprintf(l.out, "Progress: %d/%d\n", l.current, l.total)
}

// Finish ends the progress output
func (l *LineProgress) Finish() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.current > 0 {
		fmt.Fprintln(l.out)
	}
}
