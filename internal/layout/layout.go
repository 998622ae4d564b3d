package layout

import (
	"sort"
	"time"
)

type Kind string

const (
	KindBlock  Kind = "block"
	KindFiller Kind = "filler"
)

// Block is one scheduled item on the timeline. End equal to Start means a
// zero-duration marker.
type Block struct {
	ID    string    `json:"id"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	// Tasks are the task ids that share this slot.
	Tasks []string `json:"tasks,omitempty"`
}

func (b Block) zeroLength() bool { return !b.End.After(b.Start) }

// Span is a node in the arranged timeline. Block spans may carry the blocks
// they absorbed as Nested spans. Filler spans are empty time.
type Span struct {
	Kind  Kind      `json:"kind"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Block *Block    `json:"block,omitempty"`

	Nested []Span `json:"nested,omitempty"`

	// Extended is set when a zero-duration block was stretched to the next
	// block or the window end.
	Extended bool `json:"extended,omitempty"`

	// ChopStart and ChopEnd mark square edges (no rounded cap) on fillers.
	ChopStart bool `json:"chopStart,omitempty"`
	ChopEnd   bool `json:"chopEnd,omitempty"`
}

func (s Span) Duration() time.Duration { return s.End.Sub(s.Start) }

type Options struct {
	// Extend stretches zero-duration blocks to the next block's start.
	Extend bool
}

// Arrange tiles [windowStart, windowEnd) with block and filler spans.
//
// Blocks are sorted by start and clamped to the window. Each top-level block
// absorbs every following block that starts before its end, and the group end
// grows to cover what it absorbed. Absorbed blocks are arranged recursively
// inside the parent's span.
func Arrange(blocks []Block, windowStart, windowEnd time.Time, opts Options) []Span {
	return arrange(blocks, windowStart, windowEnd, opts, false)
}

func arrange(blocks []Block, ws, we time.Time, opts Options, nested bool) []Span {
	if !we.After(ws) {
		return nil
	}
	bs := clamp(blocks, ws, we)

	var tops []Span
	for i := 0; i < len(bs); {
		b := bs[i]
		end := b.End
		j := i + 1
		var absorbed []Block
		for j < len(bs) && bs[j].Start.Before(end) {
			absorbed = append(absorbed, bs[j])
			if bs[j].End.After(end) {
				end = bs[j].End
			}
			j++
		}

		span := Span{Kind: KindBlock, Start: b.Start, End: end, Block: &bs[i]}
		if opts.Extend && b.zeroLength() && len(absorbed) == 0 {
			next := we
			if j < len(bs) {
				next = bs[j].Start
			}
			if next.After(span.End) {
				span.End = next
				span.Extended = true
			}
		}
		if len(absorbed) > 0 {
			span.Nested = arrange(absorbed, span.Start, span.End, opts, true)
		}
		tops = append(tops, span)
		i = j
	}
	return fill(tops, ws, we, nested)
}

// clamp copies, sorts and clips blocks to [ws, we], dropping any that fall
// entirely outside.
func clamp(blocks []Block, ws, we time.Time) []Block {
	out := make([]Block, 0, len(blocks))
	for _, b := range blocks {
		if b.End.Before(b.Start) {
			b.End = b.Start
		}
		if !b.Start.Before(we) {
			continue
		}
		if b.Start.Before(ws) {
			if !b.End.After(ws) {
				continue
			}
			b.Start = ws
		}
		if b.End.After(we) {
			b.End = we
		}
		out = append(out, b)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out
}

// fill inserts filler spans in the gaps between tops. Fillers are chopped on
// every side that touches a block. Sides touching the window edge are chopped
// only inside a nested arrangement.
func fill(tops []Span, ws, we time.Time, nested bool) []Span {
	out := make([]Span, 0, 2*len(tops)+1)
	cursor := ws
	for _, s := range tops {
		if s.Start.After(cursor) {
			out = append(out, Span{
				Kind:      KindFiller,
				Start:     cursor,
				End:       s.Start,
				ChopStart: nested || cursor.After(ws),
				ChopEnd:   true,
			})
		}
		out = append(out, s)
		if s.End.After(cursor) {
			cursor = s.End
		}
	}
	if we.After(cursor) {
		out = append(out, Span{
			Kind:      KindFiller,
			Start:     cursor,
			End:       we,
			ChopStart: nested || (len(tops) > 0 && cursor.After(ws)),
			ChopEnd:   nested,
		})
	}
	return out
}
