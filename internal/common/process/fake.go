package process

import (
	"context"
	"strings"
	"sync"
)

// Recorder is an in-memory Runner and Table for tests.
type Recorder struct {
	mu       sync.Mutex
	Calls    [][]string
	Procs    map[string]int
	StartErr error
}

func (r *Recorder) Start(_ context.Context, name string, args ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Calls = append(r.Calls, append([]string{name}, args...))
	return r.StartErr
}

func (r *Recorder) Count(_ context.Context, name string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Procs[strings.ToLower(name)], nil
}

func (r *Recorder) Terminate(_ context.Context, name string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := r.Procs[strings.ToLower(name)]
	delete(r.Procs, strings.ToLower(name))
	return n, nil
}

// Started returns a copy of the recorded commands.
func (r *Recorder) Started() [][]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([][]string, len(r.Calls))
	copy(out, r.Calls)
	return out
}
