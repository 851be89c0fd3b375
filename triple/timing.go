//
// Copyright (c) 2020-2026 Markku Rossi
//
// All rights reserved.
//

package triple

import (
	"fmt"
	"io"
	"time"

	"github.com/markkurossi/tabulate"

	"github.com/markkurossi/mascot/p2p"
)

// FileSize is a byte count rendered with a unit suffix.
type FileSize uint64

func (s FileSize) String() string {
	for _, unit := range sizeUnits {
		if uint64(s) > unit.size {
			return fmt.Sprintf("%d%s", uint64(s)/unit.size, unit.suffix)
		}
	}
	return fmt.Sprintf("%dB", uint64(s))
}

var sizeUnits = []struct {
	size   uint64
	suffix string
}{
	{1000 * 1000 * 1000 * 1000, "TB"},
	{1000 * 1000 * 1000, "GB"},
	{1000 * 1000, "MB"},
	{1000, "kB"},
}

// Timing records per-state timing samples over all generation rounds
// and renders a profiling report.
type Timing struct {
	Start   time.Time
	Samples []*Sample
	byState map[State]*Sample
}

// Sample contains the accumulated duration and transfer of one
// generator state.
type Sample struct {
	State    State
	Duration time.Duration
	Xfer     uint64
	Count    int
}

// NewTiming creates a new Timing instance.
func NewTiming() *Timing {
	return &Timing{
		Start:   time.Now(),
		byState: make(map[State]*Sample),
	}
}

// Add adds a sample for the state.
func (t *Timing) Add(state State, d time.Duration, xfer uint64) {
	sample, ok := t.byState[state]
	if !ok {
		sample = &Sample{
			State: state,
		}
		t.byState[state] = sample
		t.Samples = append(t.Samples, sample)
	}
	sample.Duration += d
	sample.Xfer += xfer
	sample.Count++
}

// Total returns the sum of all sample durations.
func (t *Timing) Total() time.Duration {
	var total time.Duration
	for _, sample := range t.Samples {
		total += sample.Duration
	}
	return total
}

// Print prints the profiling report to out.
func (t *Timing) Print(out io.Writer, stats p2p.IOStats) {
	if len(t.Samples) == 0 {
		return
	}

	sent, received, flushed := stats.Sent, stats.Recvd, stats.Flushed

	tab := tabulate.New(tabulate.UnicodeLight)
	tab.Header("Op").SetAlign(tabulate.ML)
	tab.Header("Rounds").SetAlign(tabulate.MR)
	tab.Header("Time").SetAlign(tabulate.MR)
	tab.Header("%").SetAlign(tabulate.MR)
	tab.Header("Xfer").SetAlign(tabulate.MR)

	total := t.Total()
	for _, sample := range t.Samples {
		row := tab.Row()
		row.Column(sample.State.String())
		row.Column(fmt.Sprintf("%d", sample.Count))
		row.Column(sample.Duration.String())
		row.Column(percent(uint64(sample.Duration), uint64(total)))
		row.Column(FileSize(sample.Xfer).String())
	}

	row := tab.Row()
	row.Column("Total").SetFormat(tabulate.FmtBold)
	row.Column("").SetFormat(tabulate.FmtBold)
	row.Column(total.String()).SetFormat(tabulate.FmtBold)
	row.Column("").SetFormat(tabulate.FmtBold)
	row.Column(FileSize(sent + received).String()).SetFormat(tabulate.FmtBold)

	xfer := sent + received
	detail(tab, "├╴Sent", percent(sent, xfer), FileSize(sent).String())
	detail(tab, "├╴Rcvd", percent(received, xfer),
		FileSize(received).String())
	detail(tab, "╰╴Flcd", "", fmt.Sprintf("%v", flushed))

	tab.Print(out)
}

func detail(tab *tabulate.Tabulate, label, pct, value string) {
	row := tab.Row()
	row.Column(label).SetFormat(tabulate.FmtItalic)
	row.Column("")
	row.Column("")
	row.Column(pct).SetFormat(tabulate.FmtItalic)
	row.Column(value).SetFormat(tabulate.FmtItalic)
}

func percent(v, total uint64) string {
	if total == 0 {
		return "0.00%"
	}
	return fmt.Sprintf("%.2f%%", float64(v)/float64(total)*100)
}
