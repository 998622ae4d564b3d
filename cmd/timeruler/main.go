package main

import (
	"os"
	"strconv"
	"strings"

	"timeruler/internal/cli"
)

// isTaskID reports whether s looks like "<path>::<line>".
func isTaskID(s string) bool {
	s = strings.TrimSpace(s)
	i := strings.LastIndex(s, "::")
	if i <= 0 {
		return false
	}
	n, err := strconv.Atoi(s[i+2:])
	return err == nil && n >= 0
}

func rewriteDirectTaskLookupArgs(argv []string) []string {
	// Convenience: `timeruler <task-id>` works like `timeruler tasks show <task-id>`.
	//
	// Cobra treats the first non-flag token as a subcommand, so we rewrite argv before parsing.
	// Persistent flags may come first (e.g. `timeruler --vault ~/notes plan::3`), so we look
	// for the first positional token, not just argv[1].
	if len(argv) < 2 {
		return argv
	}

	valueFlags := map[string]bool{
		"--vault":  true,
		"--config": true,
		"--format": true,
	}
	boolFlags := map[string]bool{
		"--pretty": true,
		"--yes":    true,
		"-y":       true,
	}

	for i := 1; i < len(argv); i++ {
		a := strings.TrimSpace(argv[i])
		if a == "" {
			continue
		}
		if a == "--" {
			if i+1 < len(argv) && isTaskID(argv[i+1]) {
				out := make([]string, 0, len(argv)+2)
				out = append(out, argv[:i+1]...)
				out = append(out, "tasks", "show")
				out = append(out, argv[i+1:]...)
				return out
			}
			return argv
		}

		if strings.HasPrefix(a, "-") {
			if strings.Contains(a, "=") || boolFlags[a] {
				continue
			}
			if valueFlags[a] {
				i++
			}
			continue
		}

		if isTaskID(a) {
			out := make([]string, 0, len(argv)+2)
			out = append(out, argv[:i]...)
			out = append(out, "tasks", "show")
			out = append(out, argv[i:]...)
			return out
		}
		return argv
	}

	return argv
}

func main() {
	os.Args = rewriteDirectTaskLookupArgs(os.Args)

	cmd := cli.NewRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
