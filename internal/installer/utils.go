package installer

import (
	"strings"

	"cw-installer/internal/pathheal"
)

// persistedFiles lists the startup files that hold the managed block after a persist.
func persistedFiles(rep pathheal.Report) []string {
	var files []string
	for _, res := range rep.Results {
		if res.Kind == pathheal.KindUserEnv || res.Outcome == pathheal.Failed {
			continue
		}
		files = append(files, res.Location)
	}
	return files
}

// userEnvTouched reports whether this run added the directory to the Windows user PATH.
// An entry that was already present belongs to someone else and is never recorded.
func userEnvTouched(rep pathheal.Report) bool {
	for _, res := range rep.Results {
		if res.Kind == pathheal.KindUserEnv && res.Outcome == pathheal.Changed {
			return true
		}
	}
	return false
}

func joinList(items []string) string {
	return strings.Join(items, ", ")
}

func joinLines(items []string) string {
	return strings.Join(items, "\n")
}
