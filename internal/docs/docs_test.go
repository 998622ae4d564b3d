package docs

import (
	"reflect"
	"strings"
	"testing"
)

func TestTopics(t *testing.T) {
	want := []string{"config", "dialects", "gestures", "layout"}
	if got := Topics(); !reflect.DeepEqual(got, want) {
		t.Fatalf("topics = %v, want %v", got, want)
	}
}

func TestGet(t *testing.T) {
	for _, topic := range Topics() {
		body, ok := Get(topic)
		if !ok || !strings.HasPrefix(body, "# ") {
			t.Fatalf("%s: ok=%v body=%q", topic, ok, body)
		}
	}
	if _, ok := Get(" Dialects "); !ok {
		t.Fatalf("lookup should ignore case and spaces")
	}
	for _, bad := range []string{"", "nope", "../docs", "content/config"} {
		if _, ok := Get(bad); ok {
			t.Fatalf("Get(%q) should fail", bad)
		}
	}
}
