package scaffold

import (
	"context"
	"os/exec"
	"sync"

	"github.com/pkg/errors"
)

// Runner abstracts external command execution so project generation can be
// tested without git or xcodegen installed.
type Runner interface {
	Run(ctx context.Context, dir, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// Run executes a command in the given directory and returns its combined
// output.
func (ExecRunner) Run(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir

	out, err := cmd.CombinedOutput()
	if err != nil {
		return out, errors.Wrapf(err, "%s failed: %s", name, string(out))
	}
	return out, nil
}

// RecordedCommand is one invocation captured by MockRunner.
type RecordedCommand struct {
	Dir  string
	Name string
	Args []string
}

// MockRunner records commands instead of executing them.
type MockRunner struct {
	mu sync.Mutex

	RunFunc func(ctx context.Context, dir, name string, args ...string) ([]byte, error)
	Calls   []RecordedCommand
}

// Run implements Runner.
func (m *MockRunner) Run(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, RecordedCommand{Dir: dir, Name: name, Args: args})
	fn := m.RunFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, dir, name, args...)
	}
	return nil, nil
}

var _ Runner = (*MockRunner)(nil)
