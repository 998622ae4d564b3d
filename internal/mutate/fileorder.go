package mutate

import (
	"sort"
	"strings"
)

// MoveBefore returns order with file moved directly in front of before.
// Both keys must already be present.
func MoveBefore(order []string, file, before string) ([]string, error) {
	file = strings.TrimSpace(file)
	before = strings.TrimSpace(before)
	if indexOf(order, file) < 0 {
		return nil, PreconditionError{Op: "reorder", Reason: "file not in order: " + file}
	}
	if indexOf(order, before) < 0 {
		return nil, PreconditionError{Op: "reorder", Reason: "target not in order: " + before}
	}
	out := make([]string, 0, len(order))
	if file == before {
		return append(out, order...), nil
	}
	for _, k := range order {
		if k == file {
			continue
		}
		if k == before {
			out = append(out, file)
		}
		out = append(out, k)
	}
	return out, nil
}

// MergeFileOrder inserts every path not yet in order at its sorted position
// relative to the existing entries. Known paths keep their place. changed
// reports whether anything was added.
func MergeFileOrder(order, paths []string) (out []string, changed bool) {
	out = append([]string(nil), order...)
	seen := make(map[string]bool, len(order))
	for _, k := range order {
		seen[k] = true
	}
	fresh := append([]string(nil), paths...)
	sort.Strings(fresh)
	for _, p := range fresh {
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		i := len(out)
		for j, k := range out {
			if k > p {
				i = j
				break
			}
		}
		out = append(out, "")
		copy(out[i+1:], out[i:])
		out[i] = p
		changed = true
	}
	return out, changed
}

func indexOf(xs []string, x string) int {
	for i, v := range xs {
		if v == x {
			return i
		}
	}
	return -1
}
