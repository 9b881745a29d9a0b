package compare

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"
)

var separator = strings.Repeat("-", 80)

// Printer renders entries as they arrive. Entries are grouped by position:
// every modelsPerPrompt consecutive entries form one prompt section, so a
// prompt repeated in a plan gets a section per iteration.
type Printer struct {
	w               io.Writer
	modelsPerPrompt int
	n               int
}

func NewPrinter(w io.Writer, modelsPerPrompt int) *Printer {
	if modelsPerPrompt < 1 {
		modelsPerPrompt = 1
	}
	return &Printer{w: w, modelsPerPrompt: modelsPerPrompt}
}

func (p *Printer) Entry(e Entry) {
	if p.n%p.modelsPerPrompt == 0 {
		fmt.Fprintf(p.w, "Prompt: %s\n\n", e.Prompt)
	}

	fmt.Fprintf(p.w, "Model: %s\n", e.ModelID)
	if e.Err != nil {
		fmt.Fprintf(p.w, "Error: %v\n\n", e.Err)
	} else {
		fmt.Fprintf(p.w, "Response: %s\n", e.Result.Text)
		fmt.Fprintf(p.w, "Latency: %.4f seconds\n\n", e.Result.LatencySeconds())
	}

	p.n++
	if p.n%p.modelsPerPrompt == 0 {
		fmt.Fprintln(p.w, separator)
	}
}

// Close ends a prompt section cut short by a stopped run.
func (p *Printer) Close() {
	if p.n%p.modelsPerPrompt != 0 {
		fmt.Fprintln(p.w, separator)
		p.n = 0
	}
}

// WriteReport renders every entry by prompt section, then the per-model
// latency summary.
func WriteReport(w io.Writer, r *Results) error {
	p := NewPrinter(w, len(r.models))
	for _, e := range r.entries {
		p.Entry(e)
	}
	p.Close()
	return WriteSummary(w, r)
}

func WriteSummary(w io.Writer, r *Results) error {
	fmt.Fprintf(w, "Run %s started %s\n", r.RunID, r.Started.Format(time.RFC3339))
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "MODEL\tCALLS\tFAILED\tMEAN (s)\tMIN (s)\tMAX (s)")
	for _, s := range r.Summary() {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%.4f\t%.4f\t%.4f\n",
			s.ModelID, s.Calls, s.Failures, s.Mean.Seconds(), s.Min.Seconds(), s.Max.Seconds())
	}
	return tw.Flush()
}
