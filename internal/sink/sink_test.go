package sink

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShellSink_Dispatch(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}

	s := NewShellSink("")
	assert.Equal(t, "sh", s.Shell)

	assert.NoError(t, s.Dispatch("exit 0"))
	assert.Error(t, s.Dispatch("exit 1"))
}

func TestRegistry_BuildShell(t *testing.T) {
	r := NewRegistry()

	got, err := r.Build("shell", map[string]string{"shell": "bash"})
	require.NoError(t, err)

	shellSink, ok := got.(*ShellSink)
	require.True(t, ok)
	assert.Equal(t, "bash", shellSink.Shell)
}

func TestRegistry_BuildUnknown(t *testing.T) {
	r := NewRegistry()

	_, err := r.Build("carrier-pigeon", nil)
	assert.Error(t, err)
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()
	r.Register("noop", func(settings map[string]string) (CommandSink, error) {
		return &recordingSink{}, nil
	})

	got, err := r.Build("noop", nil)
	require.NoError(t, err)
	assert.NoError(t, got.Dispatch("anything"))
}

type recordingSink struct {
	commands []string
}

func (s *recordingSink) Dispatch(cmd string) error {
	s.commands = append(s.commands, cmd)
	return nil
}
