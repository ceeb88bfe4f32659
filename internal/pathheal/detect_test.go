package pathheal

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cw-installer/internal/platform"
)

func posix(os, shell string) platform.Platform {
	return platform.Platform{OS: os, Home: "/home/u", Getenv: func(k string) string {
		if k == "SHELL" {
			return shell
		}
		return ""
	}}
}

func TestRCFilesByShell(t *testing.T) {
	cases := []struct {
		name  string
		p     platform.Platform
		files []string
		fish  bool
	}{
		{"zsh", posix("linux", "/bin/zsh"), []string{"/home/u/.zshrc"}, false},
		{"bash linux", posix("linux", "/usr/bin/bash"), []string{"/home/u/.bashrc"}, false},
		{"bash darwin", posix("darwin", "/bin/bash"), []string{"/home/u/.bash_profile"}, false},
		{"fish", posix("linux", "/usr/bin/fish"), []string{"/home/u/.profile"}, true},
		{"unknown falls back to profile", posix("linux", ""), []string{"/home/u/.profile"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := Detector{Fs: afero.NewMemMapFs(), Platform: tc.p}
			files, fish := d.RCFiles()
			assert.Equal(t, tc.files, files)
			assert.Equal(t, tc.fish, fish)
		})
	}
}

func TestRCFilesFirstExisting(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/home/u/.zshrc", nil, 0o644))
	require.NoError(t, afero.WriteFile(fsys, "/home/u/.profile", nil, 0o644))
	require.NoError(t, fsys.MkdirAll("/home/u/.config/fish", 0o755))

	files, fish := Detector{Fs: fsys, Platform: posix("linux", "/bin/ksh")}.RCFiles()
	assert.Equal(t, []string{"/home/u/.zshrc"}, files)
	assert.True(t, fish, "an existing fish config dir adds the fish writer")
}

func TestRemovalWritersCoverEveryLocation(t *testing.T) {
	d := Detector{Fs: afero.NewMemMapFs(), Platform: posix("linux", "/bin/zsh")}
	writers := d.RemovalWriters("/x", []string{"/home/u/.zshrc", "/home/u/.kshrc"}, false)

	var locations []string
	for _, w := range writers {
		locations = append(locations, w.Location())
	}
	assert.Equal(t, []string{
		"/home/u/.bashrc",
		"/home/u/.zshrc",
		"/home/u/.bash_profile",
		"/home/u/.profile",
		"/home/u/.config/fish/config.fish",
		"/home/u/.kshrc",
	}, locations)
	assert.Equal(t, KindFish, writers[4].Kind())
}

func TestWindowsWritersUseStore(t *testing.T) {
	store := &fakeStore{}
	d := Detector{Fs: afero.NewMemMapFs(), Platform: windows, Store: store}
	w := d.EnsureWriters(`C:\s`)
	require.Len(t, w, 1)
	assert.Equal(t, KindUserEnv, w[0].Kind())

	assert.Empty(t, d.RemovalWriters("", nil, true))
	assert.Empty(t, d.RemovalWriters(`C:\s`, nil, false), "an entry the installer did not add is left alone")
	require.Len(t, d.RemovalWriters(`C:\s`, nil, true), 1)
}
