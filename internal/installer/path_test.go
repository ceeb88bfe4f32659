package installer

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cw-installer/internal/config"
	"cw-installer/internal/pathheal"
	"cw-installer/internal/platform"
	"cw-installer/internal/state"
)

func TestPathCommandsWithoutReceipt(t *testing.T) {
	h := newHost(t)

	_, err := EnsurePath(h.deps(), "")
	require.ErrorIs(t, err, ErrNoDirectory)
	_, _, err = PathStatus(h.deps(), "")
	require.ErrorIs(t, err, ErrNoDirectory)

	rep, err := EnsurePath(h.deps(), "/opt/tools/bin")
	require.NoError(t, err)
	assert.Equal(t, []string{bashrc}, rep.Changed())
	assert.Contains(t, read(t, h.fs, bashrc), `"/opt/tools/bin"`)
}

func TestPathCommandsUseReceipt(t *testing.T) {
	h := newHost(t)
	_, err := Install(context.Background(), h.deps(), config.Default())
	require.NoError(t, err)

	dir, st, err := PathStatus(h.deps(), "")
	require.NoError(t, err)
	assert.Equal(t, scriptsDir, dir)
	assert.True(t, st.InSession)
	assert.Equal(t, []string{bashrc}, st.Locations)

	rep, err := RemovePath(h.deps(), "")
	require.NoError(t, err)
	assert.Equal(t, []string{bashrc}, rep.Changed())
	assert.NotContains(t, read(t, h.fs, bashrc), pathheal.PosixStart)

	rep, err = EnsurePath(h.deps(), "")
	require.NoError(t, err)
	assert.Equal(t, []string{bashrc}, rep.Changed())
}

type memStore struct{ value string }

func (m *memStore) GetPath() (string, error) { return m.value, nil }
func (m *memStore) SetPath(v string) error   { m.value = v; return nil }

func windowsDeps(store *memStore) Deps {
	return Deps{
		Fs: afero.NewMemMapFs(),
		Platform: platform.Platform{OS: "windows", Home: `C:\Users\u`, Getenv: func(k string) string {
			if k == "APPDATA" {
				return `C:\Users\u\AppData\Roaming`
			}
			return ""
		}},
		EnvStore: store,
		WorkDir:  `C:\work`,
	}
}

func TestWindowsRemovePathOnlyUndoesOwnEntry(t *testing.T) {
	const preexisting = `C:\Python312\Scripts`
	store := &memStore{value: preexisting + `;C:\Windows`}
	d := windowsDeps(store)

	rep, err := EnsurePath(d, preexisting)
	require.NoError(t, err)
	assert.Empty(t, rep.Changed())

	rep, err = RemovePath(d, preexisting)
	require.NoError(t, err)
	assert.Empty(t, rep.Changed())
	assert.Equal(t, preexisting+`;C:\Windows`, store.value)

	rep, err = EnsurePath(d, `tools\bin`)
	require.NoError(t, err)
	assert.Equal(t, []string{`HKCU\Environment\Path`}, rep.Changed())
	assert.Equal(t, `C:\work\tools\bin;`+preexisting+`;C:\Windows`, store.value)

	r, err := state.Load(d.Fs, `C:\Users\u\AppData\Roaming\commands-wrapper\`+state.FileName)
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.True(t, r.UserEnvPath)
	assert.Equal(t, `C:\work\tools\bin`, r.ScriptsDir)

	rep, err = RemovePath(d, "")
	require.NoError(t, err)
	assert.Equal(t, []string{`HKCU\Environment\Path`}, rep.Changed())
	assert.Equal(t, preexisting+`;C:\Windows`, store.value)
}

func TestUserEnvTouchedOnlyWhenAdded(t *testing.T) {
	unchanged := pathheal.Report{Results: []pathheal.Result{{Kind: pathheal.KindUserEnv, Outcome: pathheal.Unchanged}}}
	changed := pathheal.Report{Results: []pathheal.Result{{Kind: pathheal.KindUserEnv, Outcome: pathheal.Changed}}}
	assert.False(t, userEnvTouched(unchanged))
	assert.True(t, userEnvTouched(changed))
}

func TestEnsurePathCanonicalizesDirectory(t *testing.T) {
	h := newHost(t)

	_, err := EnsurePath(h.deps(), "~/tools/bin/")
	require.NoError(t, err)
	text := read(t, h.fs, bashrc)
	assert.Contains(t, text, `"/home/u/tools/bin"`)

	rep, err := EnsurePath(h.deps(), "/home/u/tools/bin")
	require.NoError(t, err)
	assert.Empty(t, rep.Changed())

	_, err = EnsurePath(h.deps(), "bin")
	require.NoError(t, err)
	assert.Contains(t, read(t, h.fs, bashrc), `"/work/bin"`)
}
