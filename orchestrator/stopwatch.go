package orchestrator

import (
	"fmt"
	"io"
	"time"
)

// stopWatch times a sequence of named phases (manifest fetch,
// transfer) so Install/Update can print a timing summary on
// completion.
type stopWatch struct {
	entries []stopWatchEntry
	started time.Time
	w       io.Writer
}

type stopWatchEntry struct {
	name string
	d    time.Duration
}

func (sw *stopWatch) Start(name string) {
	sw.entries = append(sw.entries, stopWatchEntry{name: name})
	sw.started = time.Now()
}

func (sw *stopWatch) Stop() {
	if len(sw.entries) == 0 {
		return
	}
	sw.entries[len(sw.entries)-1].d = time.Since(sw.started)
}

func (sw *stopWatch) WriteSummary(w io.Writer) {
	if len(sw.entries) == 0 {
		return
	}
	max := 0
	for _, e := range sw.entries {
		if len(e.name) > max {
			max = len(e.name)
		}
	}
	var sum time.Duration
	fmt.Fprintf(w, "TIMINGS\n")
	for _, e := range sw.entries {
		fmt.Fprintf(w, "  %-*s %s\n", max, e.name, e.d.Truncate(time.Millisecond))
		sum += e.d
	}
	fmt.Fprintf(w, "TOTAL: %s\n", sum.Truncate(time.Millisecond))
}
