package codec

import (
	"regexp"
	"strings"

	"timeruler/internal/model"
)

// The title pipeline runs these stages in order. Each stage takes the
// remaining text and returns it with its own syntax removed.

var (
	reCheckbox = regexp.MustCompile(`^\s*(?:[-*+]|\d+[.)])\s+\[(.)\]\s*`)
	reWikiLink = regexp.MustCompile(`\[\[([^\]|]*?)(?:\|([^\]]*?))?\]\]`)
	reMdLink   = regexp.MustCompile(`\[([^\[\]]*)\]\([^)]*\)`)
	reFieldKey = regexp.MustCompile(`^[\[(]\s*([A-Za-z][\w\- ]*?)\s*::`)
	reTag      = regexp.MustCompile(`(^|\s)(#[\p{L}\p{N}_\-/]+)`)
	reSpaces   = regexp.MustCompile(`\s+`)

	isoDate = `(\d{4}-\d{2}-\d{2}(?:T\d{2}:\d{2})?)`
)

var reDateMarker = func() map[string]*regexp.Regexp {
	out := make(map[string]*regexp.Regexp, len(dateEmoji))
	for key, emoji := range dateEmoji {
		out[key] = regexp.MustCompile(regexp.QuoteMeta(emoji) + `\x{FE0F}?\s*` + isoDate + "?")
	}
	return out
}()

// Field is one `key:: value` annotation in the order it was encountered.
type Field struct {
	Key   string
	Value string
}

// Markers holds what StripMarkers found: emoji dates by field key and the
// priority emoji that were present.
type Markers struct {
	Dates      map[string]string
	Priorities []model.Priority
}

// SplitNotes separates the first line from any continuation text.
func SplitNotes(text string) (line, notes string) {
	line, notes, _ = strings.Cut(text, "\n")
	return line, strings.TrimSpace(notes)
}

// StripCheckbox removes a leading list checkbox ("- [ ] ", "* [x] ").
func StripCheckbox(line string) (rest string, checked, found bool) {
	m := reCheckbox.FindStringSubmatchIndex(line)
	if m == nil {
		return line, false, false
	}
	mark := line[m[2]:m[3]]
	return line[m[1]:], mark != " ", true
}

// UnwrapLinks replaces wiki links with their alias (or target) and markdown
// links with their label.
func UnwrapLinks(s string) string {
	s = reWikiLink.ReplaceAllStringFunc(s, func(match string) string {
		sub := reWikiLink.FindStringSubmatch(match)
		if sub[2] != "" {
			return sub[2]
		}
		return sub[1]
	})
	return reMdLink.ReplaceAllString(s, "$1")
}

// ExtractFields removes bracketed `[key:: value]` and `(key:: value)` fields.
// Values may hold balanced brackets and parentheses, so `[ref:: [[Page]]]`
// keeps its link.
func ExtractFields(s string) (string, []Field) {
	var fields []Field
	var b strings.Builder
	for i := 0; i < len(s); {
		if s[i] == '[' || s[i] == '(' {
			if f, n, ok := scanField(s[i:]); ok {
				fields = append(fields, f)
				b.WriteByte(' ')
				i += n
				continue
			}
		}
		b.WriteByte(s[i])
		i++
	}
	return b.String(), fields
}

// scanField reads the field opening s and returns it with its byte length.
func scanField(s string) (Field, int, bool) {
	m := reFieldKey.FindStringSubmatchIndex(s)
	if m == nil {
		return Field{}, 0, false
	}
	want := []byte{closerOf(s[0])}
	for i := m[1]; i < len(s); i++ {
		switch c := s[i]; c {
		case '[', '(':
			want = append(want, closerOf(c))
		case ']', ')':
			if c != want[len(want)-1] {
				return Field{}, 0, false
			}
			want = want[:len(want)-1]
			if len(want) == 0 {
				return Field{
					Key:   strings.TrimSpace(s[m[2]:m[3]]),
					Value: strings.TrimSpace(s[m[1]:i]),
				}, i + 1, true
			}
		}
	}
	return Field{}, 0, false
}

func closerOf(open byte) byte {
	if open == '(' {
		return ')'
	}
	return ']'
}

// ExtractTags removes `#tag` tokens. Tags keep their leading '#', are
// de-duplicated, and keep first-seen order.
func ExtractTags(s string) (string, []string) {
	var tags []string
	seen := map[string]bool{}
	for _, m := range reTag.FindAllStringSubmatch(s, -1) {
		if !seen[m[2]] {
			seen[m[2]] = true
			tags = append(tags, m[2])
		}
	}
	return reTag.ReplaceAllString(s, "$1"), tags
}

// StripMarkers removes the date and priority emoji markers. A date marker
// swallows the ISO date that follows it.
func StripMarkers(s string) (string, Markers) {
	mk := Markers{Dates: map[string]string{}}
	for key, re := range reDateMarker {
		s = re.ReplaceAllStringFunc(s, func(match string) string {
			if sub := re.FindStringSubmatch(match); sub[1] != "" {
				if _, dup := mk.Dates[key]; !dup {
					mk.Dates[key] = sub[1]
				}
			}
			return " "
		})
	}
	for _, pe := range priorityEmoji {
		if strings.Contains(s, pe.emoji) {
			mk.Priorities = append(mk.Priorities, pe.priority)
			s = strings.ReplaceAll(s, pe.emoji+"\uFE0F", " ")
			s = strings.ReplaceAll(s, pe.emoji, " ")
		}
	}
	return s, mk
}

// CleanTitle collapses whitespace left behind by the other stages.
func CleanTitle(s string) string {
	return strings.TrimSpace(reSpaces.ReplaceAllString(s, " "))
}
