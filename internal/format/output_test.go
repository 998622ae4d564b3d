package format

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

type rowsFixture [][]string

func (r rowsFixture) TableHeader() []string { return []string{"ID", "TITLE"} }
func (r rowsFixture) TableRows() [][]string { return r }

func TestWriteJSONEnvelope(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, map[string]any{"data": []string{"a"}}, "", false); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if got := buf.String(); got != "{\"data\":[\"a\"]}\n" {
		t.Fatalf("got %q", got)
	}
	var env map[string]any
	buf.Reset()
	if err := Write(&buf, map[string]any{"data": 1}, "json", true); err != nil {
		t.Fatalf("Write pretty: %v", err)
	}
	if err := json.Unmarshal(buf.Bytes(), &env); err != nil || !strings.Contains(buf.String(), "\n  ") {
		t.Fatalf("pretty output = %q (%v)", buf.String(), err)
	}
}

func TestWriteUnknownFormat(t *testing.T) {
	if err := Write(&bytes.Buffer{}, nil, "edn", false); err == nil {
		t.Fatalf("expected error")
	}
}

func TestWriteTextTable(t *testing.T) {
	old := lipgloss.ColorProfile()
	lipgloss.SetColorProfile(termenv.Ascii)
	t.Cleanup(func() { lipgloss.SetColorProfile(old) })

	var buf bytes.Buffer
	rows := rowsFixture{{"a::1", "Write\nreport"}, {"b::2", strings.Repeat("x", 80)}}
	if err := Write(&buf, map[string]any{"data": rows}, "text", false); err != nil {
		t.Fatalf("Write: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"ID", "TITLE", "a::1", "Write report", "…"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
	if strings.Contains(out, strings.Repeat("x", 80)) {
		t.Fatalf("long cell not clipped:\n%s", out)
	}

	buf.Reset()
	if err := WriteText(&buf, rowsFixture{}); err != nil || strings.TrimSpace(buf.String()) != "(none)" {
		t.Fatalf("empty table = %q, %v", buf.String(), err)
	}
}

func TestWriteTextFallsBackToJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteText(&buf, map[string]any{"data": map[string]int{"n": 1}}); err != nil {
		t.Fatalf("WriteText: %v", err)
	}
	if !strings.Contains(buf.String(), "\"n\": 1") {
		t.Fatalf("got %q", buf.String())
	}
}

func TestClip(t *testing.T) {
	if got := Clip("  a \n b ", 10); got != "a b" {
		t.Fatalf("Clip = %q", got)
	}
	if got := Clip("abcdef", 4); got != "abc…" {
		t.Fatalf("Clip = %q", got)
	}
}
