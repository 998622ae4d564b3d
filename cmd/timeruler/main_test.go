package main

import (
	"reflect"
	"testing"
)

func TestRewriteDirectTaskLookupArgs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{
			name: "no args",
			in:   []string{"timeruler"},
			want: []string{"timeruler"},
		},
		{
			name: "direct task id first token",
			in:   []string{"timeruler", "Projects/plan::12"},
			want: []string{"timeruler", "tasks", "show", "Projects/plan::12"},
		},
		{
			name: "direct task id after value flag",
			in:   []string{"timeruler", "--vault", "./notes", "plan::3"},
			want: []string{"timeruler", "--vault", "./notes", "tasks", "show", "plan::3"},
		},
		{
			name: "direct task id after equals flag",
			in:   []string{"timeruler", "--vault=./notes", "plan::3"},
			want: []string{"timeruler", "--vault=./notes", "tasks", "show", "plan::3"},
		},
		{
			name: "direct task id after bool flag",
			in:   []string{"timeruler", "--pretty", "plan::3"},
			want: []string{"timeruler", "--pretty", "tasks", "show", "plan::3"},
		},
		{
			name: "direct task id after double dash",
			in:   []string{"timeruler", "--", "plan::0"},
			want: []string{"timeruler", "--", "tasks", "show", "plan::0"},
		},
		{
			name: "normal subcommand not rewritten",
			in:   []string{"timeruler", "tasks", "show", "plan::3"},
			want: []string{"timeruler", "tasks", "show", "plan::3"},
		},
		{
			name: "line must be numeric",
			in:   []string{"timeruler", "plan::x"},
			want: []string{"timeruler", "plan::x"},
		},
		{
			name: "unknown command not rewritten",
			in:   []string{"timeruler", "wat"},
			want: []string{"timeruler", "wat"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := rewriteDirectTaskLookupArgs(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("rewriteDirectTaskLookupArgs:\n got: %#v\nwant: %#v", got, tt.want)
			}
		})
	}
}
