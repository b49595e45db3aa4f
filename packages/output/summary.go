package output

import (
	"fmt"
	"io"

	"github.com/abdul-hamid-achik/pagexpect/packages/metrics"
	"github.com/fatih/color"
)

// WriteSummary prints one line per matcher with call counts and latency
// percentiles.
func (f *Formatter) WriteSummary(w io.Writer, stats []metrics.MatcherStats) {
	if len(stats) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s\n", f.paint("Matchers:", color.Bold))
	for _, s := range stats {
		symbol := f.paint("✓", color.FgGreen)
		if s.Failures > 0 {
			symbol = f.paint("✗", color.FgRed)
		}
		fmt.Fprintf(w, "  %s %s %d calls", symbol, s.Name, s.Calls)
		if s.Failures > 0 {
			fmt.Fprintf(w, ", %s", f.paint(fmt.Sprintf("%d failed", s.Failures), color.FgRed))
		}
		fmt.Fprintf(w, " %s\n", f.paint(fmt.Sprintf("(p50 %dms, p95 %dms, p99 %dms, max %d attempts)",
			s.P50.Milliseconds(), s.P95.Milliseconds(), s.P99.Milliseconds(), s.MaxAttempts), color.FgCyan))
	}
	fmt.Fprintf(w, "\n")
}
