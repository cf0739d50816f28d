// Package stacktrace trims runtime stack dumps down to project frames.
package stacktrace

import (
	"bufio"
	"bytes"
	"strings"
)

const marker = "/internal/"

// InternalPaths returns the "internal/<pkg>/<file>.go:<line>" locations found
// in a debug.Stack dump, innermost first.
func InternalPaths(stack []byte) []string {
	var paths []string

	sc := bufio.NewScanner(bytes.NewReader(stack))
	for sc.Scan() {
		line := sc.Text()
		// file locations are the tab-indented half of each frame
		if !strings.HasPrefix(line, "\t") {
			continue
		}

		loc, _, _ := strings.Cut(strings.TrimSpace(line), " +0x")
		idx := strings.Index(loc, marker)
		if idx == -1 || !strings.Contains(loc, ".go:") {
			continue
		}
		paths = append(paths, loc[idx+1:])
	}

	return paths
}
