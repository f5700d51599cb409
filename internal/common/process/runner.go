// Package process spawns and terminates OS processes on behalf of the
// handlers.
package process

import (
	"context"
	"os/exec"
	"strings"

	ps "github.com/shirou/gopsutil/v3/process"

	"desk-assistant/internal/common/logger"
)

// Runner launches a command without waiting for it to finish.
type Runner interface {
	Start(ctx context.Context, name string, args ...string) error
}

// Table finds and terminates running processes by executable name.
type Table interface {
	Count(ctx context.Context, name string) (int, error)
	Terminate(ctx context.Context, name string) (int, error)
}

// ExecRunner starts detached children with os/exec and reaps them in the
// background.
type ExecRunner struct {
	logger logger.Logger
}

func NewExecRunner(l logger.Logger) *ExecRunner {
	return &ExecRunner{logger: logger.Component(l, "process")}
}

func (r *ExecRunner) Start(_ context.Context, name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	r.logger.Debug("process started", map[string]interface{}{
		"command": strings.Join(append([]string{name}, args...), " "),
		"pid":     cmd.Process.Pid,
	})
	go func() { _ = cmd.Wait() }()
	return nil
}

// SystemTable walks the live process list.
type SystemTable struct {
	logger logger.Logger
}

func NewSystemTable(l logger.Logger) *SystemTable {
	return &SystemTable{logger: logger.Component(l, "process")}
}

func (t *SystemTable) matching(ctx context.Context, name string) ([]*ps.Process, error) {
	procs, err := ps.ProcessesWithContext(ctx)
	if err != nil {
		return nil, err
	}
	var out []*ps.Process
	for _, p := range procs {
		n, err := p.NameWithContext(ctx)
		if err != nil {
			continue
		}
		if strings.EqualFold(n, name) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (t *SystemTable) Count(ctx context.Context, name string) (int, error) {
	procs, err := t.matching(ctx, name)
	return len(procs), err
}

// Terminate signals every process named name and returns how many accepted
// the signal.
func (t *SystemTable) Terminate(ctx context.Context, name string) (int, error) {
	procs, err := t.matching(ctx, name)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, p := range procs {
		if err := p.TerminateWithContext(ctx); err != nil {
			t.logger.Warn("terminate failed", map[string]interface{}{"pid": p.Pid, "error": err.Error()})
			continue
		}
		count++
	}
	return count, nil
}
