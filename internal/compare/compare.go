// Package compare runs every prompt of a plan against every model, one call
// at a time, and reports text and latency per pair.
package compare

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/vnmchuo/bedrock-compare/internal/provider"
)

type Invoker interface {
	Invoke(ctx context.Context, req provider.Request) (*provider.Result, error)
}

// Entry is the outcome of one (prompt, model) pair. Exactly one of Result
// and Err is set.
type Entry struct {
	Prompt  string
	ModelID string
	Result  *provider.Result
	Err     error
}

type Options struct {
	// StopOnError halts the run at the first failed pair.
	StopOnError bool
	// OnEntry is called after each pair, in request order.
	OnEntry func(Entry)
}

type Results struct {
	RunID   string
	Started time.Time
	entries []Entry
	models  []string
}

// Run iterates prompts in the outer loop and models in the inner loop. A
// failed pair is recorded and the run moves on unless opts.StopOnError is
// set, in which case the partial results are returned with the error.
func Run(ctx context.Context, inv Invoker, plan Plan, opts Options) (*Results, error) {
	if err := plan.Validate(); err != nil {
		return nil, err
	}

	res := &Results{
		RunID:   uuid.New().String(),
		Started: time.Now(),
		models:  plan.Models,
	}

	for _, prompt := range plan.Prompts {
		for _, modelID := range plan.Models {
			if err := ctx.Err(); err != nil {
				return res, err
			}

			r, err := inv.Invoke(ctx, provider.Request{
				ModelID: modelID,
				Prompt:  prompt,
				Params:  plan.Params,
			})
			e := Entry{Prompt: prompt, ModelID: modelID, Result: r, Err: err}
			if err != nil {
				e.Result = nil
			}
			res.entries = append(res.entries, e)
			if opts.OnEntry != nil {
				opts.OnEntry(e)
			}
			if err != nil && opts.StopOnError {
				return res, err
			}
		}
	}
	return res, nil
}

func (r *Results) Entries() []Entry {
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Lookup returns the entry for a (model, prompt) pair. When a plan repeats
// a prompt, the latest call wins.
func (r *Results) Lookup(modelID, prompt string) (Entry, bool) {
	for i := len(r.entries) - 1; i >= 0; i-- {
		e := r.entries[i]
		if e.ModelID == modelID && e.Prompt == prompt {
			return e, true
		}
	}
	return Entry{}, false
}

func (r *Results) Failures() []Entry {
	var out []Entry
	for _, e := range r.entries {
		if e.Err != nil {
			out = append(out, e)
		}
	}
	return out
}

type ModelSummary struct {
	ModelID  string
	Calls    int
	Failures int
	Mean     time.Duration
	Min      time.Duration
	Max      time.Duration
}

// Summary aggregates latency per model over successful calls, in plan order.
func (r *Results) Summary() []ModelSummary {
	byModel := make(map[string]*ModelSummary, len(r.models))
	out := make([]ModelSummary, 0, len(r.models))
	for _, m := range r.models {
		if _, ok := byModel[m]; ok {
			continue
		}
		byModel[m] = &ModelSummary{ModelID: m}
		out = append(out, ModelSummary{ModelID: m})
	}

	totals := make(map[string]time.Duration)
	for _, e := range r.entries {
		s := byModel[e.ModelID]
		s.Calls++
		if e.Err != nil {
			s.Failures++
			continue
		}
		lat := e.Result.Latency
		ok := s.Calls - s.Failures
		if ok == 1 || lat < s.Min {
			s.Min = lat
		}
		if lat > s.Max {
			s.Max = lat
		}
		totals[e.ModelID] += lat
	}

	for i := range out {
		s := byModel[out[i].ModelID]
		if ok := s.Calls - s.Failures; ok > 0 {
			s.Mean = totals[s.ModelID] / time.Duration(ok)
		}
		out[i] = *s
	}
	return out
}
