// Package prompt asks yes/no questions on the terminal.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"cw-installer/internal/logger"
)

// Prompter reads answers from In and writes questions to Out.
type Prompter struct {
	In          io.Reader
	Out         io.Writer
	Interactive bool // false when stdin/stdout are not terminals or a CI marker is set

	reader *bufio.Reader
}

// Confirm asks question and reports whether the user accepted.
// force accepts without asking; a non-interactive session declines without asking.
// Only "y" and "yes" (any case) accept; an empty answer or end of input declines.
func (p *Prompter) Confirm(question string, force bool) (bool, error) {
	if force {
		logger.Debug("[DEBUG] %s: accepted by force flag\n", question)
		return true, nil
	}
	if !p.Interactive {
		logger.Info("[INFO] %s: no terminal to ask on, assuming no\n", question)
		return false, nil
	}

	if _, err := fmt.Fprintf(p.Out, "%s [y/N]: ", question); err != nil {
		return false, err
	}
	if p.reader == nil {
		p.reader = bufio.NewReader(p.In)
	}
	line, err := p.reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}
