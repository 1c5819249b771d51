package utils

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Confirm writes prompt to w and reads one line from r. It returns true for
// "y" or "yes" in any case; anything else, including EOF, is a no.
func Confirm(r io.Reader, w io.Writer, prompt string) (bool, error) {
	fmt.Fprint(w, prompt+" [y/N]: ")

	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("failed to read answer: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}
