// Package pathheal makes a directory discoverable on PATH, for the running session and
// persistently, without duplicating entries or disturbing user-owned file content.
//
// Persistent changes to shell startup files live in a managed block: a region delimited
// by a fixed marker pair that the installer fully owns. Everything outside the markers is
// preserved byte for byte.
package pathheal

import (
	"errors"
	"regexp"
	"strings"
)

// ErrMalformedBlock is returned when a start marker has no matching end marker.
var ErrMalformedBlock = errors.New("managed block start marker without end marker")

// Block is a marker-delimited region of a text file.
type Block struct {
	Start string
	End   string
	Body  string
}

// Render returns the block text without a trailing newline.
func (b Block) Render() string {
	return b.Start + "\n" + strings.TrimRight(b.Body, "\n") + "\n" + b.End
}

// locate returns the byte span [start, end) of the region including both markers,
// or ok=false when the start marker is absent.
func (b Block) locate(text string) (start, end int, ok bool, err error) {
	start = strings.Index(text, b.Start)
	if start < 0 {
		return 0, 0, false, nil
	}
	rel := strings.Index(text[start+len(b.Start):], b.End)
	if rel < 0 {
		return 0, 0, false, ErrMalformedBlock
	}
	end = start + len(b.Start) + rel + len(b.End)
	return start, end, true, nil
}

// ApplyBlock returns existing with the block inserted or refreshed.
// An existing region is replaced in place; otherwise the block is appended, separated by
// a blank line from non-empty content. Applying the same block twice is a no-op.
func ApplyBlock(existing string, b Block) (string, error) {
	rendered := b.Render()
	start, end, ok, err := b.locate(existing)
	if err != nil {
		return existing, err
	}
	if ok {
		return existing[:start] + rendered + existing[end:], nil
	}
	if existing == "" {
		return rendered + "\n", nil
	}
	sep := "\n"
	if !strings.HasSuffix(existing, "\n") {
		sep = "\n\n"
	}
	return existing + sep + rendered + "\n", nil
}

var blankRuns = regexp.MustCompile(`\n{3,}`)

// RemoveBlock deletes the region including its markers, collapses runs of blank lines
// into one and trims leading blank lines. When the region ended the file, the trailing
// newlines are cut back to one so an appended block leaves no residue.
// The boolean reports whether a block was found.
func RemoveBlock(existing string, b Block) (string, bool, error) {
	start, end, ok, err := b.locate(existing)
	if err != nil {
		return existing, false, err
	}
	if !ok {
		return existing, false, nil
	}
	tail := existing[end:]
	out := existing[:start] + tail
	out = blankRuns.ReplaceAllString(out, "\n\n")
	out = strings.TrimLeft(out, "\n")
	if strings.TrimSpace(tail) == "" {
		out = strings.TrimRight(out, "\n")
		if out != "" {
			out += "\n"
		}
	}
	return out, true, nil
}

// HasBlock reports whether a complete region is present.
func HasBlock(existing string, b Block) bool {
	_, _, ok, err := b.locate(existing)
	return ok && err == nil
}
