package python

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cw-installer/internal/platform"
	"cw-installer/internal/proc"
)

func TestProbeFallsBackFromPyToPython(t *testing.T) {
	script := &proc.Script{Handler: func(cmd proc.Command) (proc.Result, error) {
		switch cmd.Name {
		case "py":
			return proc.Result{ExitCode: 7}, nil
		case "python":
			return proc.Result{Output: "pip 24.0"}, nil
		}
		return proc.Result{}, errors.New("not found")
	}}

	h, err := Probe(context.Background(), script, Candidates(platform.Platform{OS: "windows"}))
	require.NoError(t, err)
	assert.Equal(t, "python", h.Candidate().Name)
	assert.Equal(t, []string{"py -3 -m pip --version", "python -m pip --version"}, script.Lines())
}

func TestProbeNoRuntime(t *testing.T) {
	script := &proc.Script{}
	_, err := Probe(context.Background(), script, Candidates(platform.Platform{OS: "linux"}))
	require.ErrorIs(t, err, ErrNoRuntime)
	assert.Len(t, script.Calls, 2)
}

func TestHelperRunPrependsLauncherArgs(t *testing.T) {
	script := &proc.Script{Handler: func(cmd proc.Command) (proc.Result, error) {
		return proc.Result{Output: "ok\n"}, nil
	}}
	h, err := Probe(context.Background(), script, []Candidate{{Name: "py", Args: []string{"-3"}}})
	require.NoError(t, err)

	out, code, err := h.Run(context.Background(), "-c", "print(1)")
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, "ok\n", out)
	assert.Equal(t, "py -3 -c print(1)", script.Calls[1].Line())
	assert.Nil(t, script.Calls[1].Command.Env)
}

func TestInVirtualEnv(t *testing.T) {
	answer := "False\n"
	script := &proc.Script{Handler: func(cmd proc.Command) (proc.Result, error) {
		return proc.Result{Output: answer}, nil
	}}
	h, err := Probe(context.Background(), script, []Candidate{{Name: "python3"}})
	require.NoError(t, err)

	assert.False(t, h.InVirtualEnv(context.Background()))
	answer = "True\n"
	assert.True(t, h.InVirtualEnv(context.Background()))
}

func TestLastLine(t *testing.T) {
	assert.Equal(t, "", LastLine(""))
	assert.Equal(t, "/b", LastLine("warning\r\n/b\r\n\r\n"))
}
