package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecideTable(t *testing.T) {
	cases := []struct {
		installed, target string
		want              Decision
	}{
		{"", "", Reinstall},
		{"", "1.2.0", Reinstall},
		{"1.2.0", "", Reinstall},
		{"1.2.0", "1.2.0", SkipEqual},
		{"1.3.0", "1.2.0", SkipNewerInstalled},
		{"1.1.0", "1.2.0", Reinstall},
		{"abc", "1.2.0", Reinstall},
		{"abc", "abc", SkipEqual},
		{"v1.2", "1.2.0", SkipEqual},
		{"1.2.0-rc.1", "1.2.0", Reinstall},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Decide(tc.installed, tc.target), "installed=%q target=%q", tc.installed, tc.target)
	}
}

func TestCompare(t *testing.T) {
	assert.Equal(t, Equal, Compare("1.0.0", "1.0.0"))
	assert.Equal(t, Greater, Compare("2.0.0", "1.9.9"))
	assert.Equal(t, Less, Compare("1.9.9", "2.0.0"))
	assert.Equal(t, Unknown, Compare("abc", "1.2.0"))
	assert.Equal(t, Unknown, Compare("", ""))
	assert.Equal(t, "unknown", Unknown.String())
	assert.Equal(t, "skip-newer-installed", SkipNewerInstalled.String())
}
