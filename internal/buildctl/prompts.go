package buildctl

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// ReadPrompts returns one prompt per non-blank line. Lines starting with #
// are comments.
func ReadPrompts(r io.Reader) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read prompts: %w", err)
	}
	return out, nil
}

// LoadPrompts combines inline prompts with those in path ("-" is stdin).
func LoadPrompts(inline []string, path string) ([]string, error) {
	prompts := make([]string, 0, len(inline))
	for _, p := range inline {
		if p = strings.TrimSpace(p); p != "" {
			prompts = append(prompts, p)
		}
	}
	if path == "" {
		return prompts, nil
	}

	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open prompts: %w", err)
		}
		defer f.Close()
		r = f
	}
	fromFile, err := ReadPrompts(r)
	if err != nil {
		return nil, err
	}
	return append(prompts, fromFile...), nil
}
