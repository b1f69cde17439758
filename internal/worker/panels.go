package worker

import (
	"context"
	"fmt"
)

// PanelJob loads the data behind one dashboard panel
type PanelJob struct {
	Name string
	Load func(ctx context.Context) (any, error)
}

// Execute runs Load; a panic is reported as the panel's error
func (j *PanelJob) Execute(ctx context.Context) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = &PanelResult{Name: j.Name, Err: fmt.Errorf("panel %s: panic: %v", j.Name, r)}
		}
	}()

	v, err := j.Load(ctx)
	return &PanelResult{Name: j.Name, Value: v, Err: err}
}

// PanelResult is the outcome of one PanelJob
type PanelResult struct {
	Name  string
	Value any
	Err   error
}

// GetError returns the load error
func (r *PanelResult) GetError() error {
	return r.Err
}

// PanelLoader fans panel loads out over a bounded pool
type PanelLoader struct {
	workers int
}

// NewPanelLoader creates a loader running at most workers loads at once
func NewPanelLoader(workers int) *PanelLoader {
	return &PanelLoader{workers: workers}
}

// Load runs every job and returns results keyed by panel name.
// A failing panel never blocks the others.
func (l *PanelLoader) Load(ctx context.Context, jobs ...*PanelJob) map[string]*PanelResult {
	out := make(map[string]*PanelResult, len(jobs))
	if len(jobs) == 0 {
		return out
	}

	pool := NewPool(ctx, min(l.workers, len(jobs)))
	pool.Start()

	go func() {
		defer pool.Close()
		for _, job := range jobs {
			if !pool.Submit(job) {
				return
			}
		}
	}()

	for r := range pool.Results() {
		pr := r.(*PanelResult)
		out[pr.Name] = pr
	}

	for _, job := range jobs {
		if _, ok := out[job.Name]; !ok {
			err := ctx.Err()
			if err == nil {
				err = context.Canceled
			}
			out[job.Name] = &PanelResult{Name: job.Name, Err: fmt.Errorf("panel %s: %w", job.Name, err)}
		}
	}
	return out
}

// Value extracts a typed panel value, reporting false when the panel
// failed or holds another type
func Value[T any](results map[string]*PanelResult, name string) (T, bool) {
	var zero T
	r, ok := results[name]
	if !ok || r.Err != nil {
		return zero, false
	}
	v, ok := r.Value.(T)
	if !ok {
		return zero, false
	}
	return v, true
}
