package entity

import (
	"sort"
	"unicode/utf16"
)

// edit records one span replacement in original coordinates of the moment
// it was made.
type edit struct {
	at     int // offset of the replaced span
	oldLen int
	newLen int
}

func (e edit) delta() int {
	return e.newLen - e.oldLen
}

// Buffer owns a message text as UTF-16 code units and the live entity list.
// It is not safe for concurrent use; one Buffer belongs to one message pass.
type Buffer struct {
	units    []uint16
	entities []Entity
	// synced[i] is how many edits entity i has already absorbed
	synced []int
	edits  []edit
	shift  int
}

// NewBuffer copies text and entities into a new buffer. Entities are ordered
// by offset; ties keep their original order.
func NewBuffer(text string, entities []Entity) *Buffer {
	ents := make([]Entity, len(entities))
	copy(ents, entities)
	sort.SliceStable(ents, func(i, j int) bool {
		return ents[i].Offset < ents[j].Offset
	})

	return &Buffer{
		units:    utf16.Encode([]rune(text)),
		entities: ents,
		synced:   make([]int, len(ents)),
	}
}

// Len returns the text length in UTF-16 code units.
func (b *Buffer) Len() int {
	return len(b.units)
}

// Count returns the number of entities.
func (b *Buffer) Count() int {
	return len(b.entities)
}

// Shift returns the cumulative length change of all replacements so far.
func (b *Buffer) Shift() int {
	return b.shift
}

// Text returns the current text.
func (b *Buffer) Text() string {
	return string(utf16.Decode(b.units))
}

// Slice returns the text in [offset, offset+length), clamped to the buffer.
func (b *Buffer) Slice(offset, length int) string {
	start, end := b.clamp(offset, length)
	return string(utf16.Decode(b.units[start:end]))
}

// Entity returns entity i as currently stored. Call ApplyPendingShift first
// when its offset must reflect earlier replacements.
func (b *Buffer) Entity(i int) Entity {
	return b.entities[i]
}

// SliceEntity applies pending shifts to entity i and returns its text.
func (b *Buffer) SliceEntity(i int) string {
	b.ApplyPendingShift(i)
	e := b.entities[i]
	return b.Slice(e.Offset, e.Length)
}

// SetKind changes the kind of entity i and drops payload the new kind does
// not carry.
func (b *Buffer) SetKind(i int, kind Kind) {
	e := &b.entities[i]
	e.Kind = kind
	if kind != KindTextLink {
		e.URL = ""
	}
	if kind != KindTextMention {
		e.User = nil
	}
	if kind != KindPre {
		e.Language = ""
	}
	if kind != KindBlockquote {
		e.Collapsed = false
	}
	if kind != KindCustomEmoji {
		e.DocumentID = 0
	}
}

// ApplyPendingShift brings entity i up to date with every replacement made
// since it was last synced. Each replacement is applied to an entity once.
// An entity that lay wholly inside a replaced span collapses to zero length
// at the edit point; one that crossed an edge is clipped to that edge.
func (b *Buffer) ApplyPendingShift(i int) {
	e := &b.entities[i]
	for _, ed := range b.edits[b.synced[i]:] {
		editEnd := ed.at + ed.oldLen
		switch {
		case e.Offset >= editEnd:
			// entirely after the replaced span
			e.Offset += ed.delta()
		case e.End() <= ed.at:
			// entirely before
		case e.Offset <= ed.at && e.End() >= editEnd:
			// encloses the replaced span
			e.Length += ed.delta()
		case e.Offset >= ed.at && e.End() <= editEnd:
			// swallowed by the replacement
			e.Offset = ed.at
			e.Length = 0
		case e.Offset < ed.at:
			// tail overlaps the span start
			e.Length = ed.at - e.Offset
		default:
			// head overlaps the span end
			e.Length = e.End() - editEnd
			e.Offset = ed.at + ed.newLen
		}
	}
	b.synced[i] = len(b.edits)
}

// Dropped reports whether entity i lost all of its text to replacements.
func (b *Buffer) Dropped(i int) bool {
	b.ApplyPendingShift(i)
	return b.entities[i].Length <= 0
}

// ReplaceSpan cuts the span of entity i out of the text and splices newText
// in its place. The entity keeps its offset and takes the new length; the
// difference is added to the running shift and recorded for the entities
// that have not been synced yet.
func (b *Buffer) ReplaceSpan(i int, newText string) {
	b.ApplyPendingShift(i)
	e := &b.entities[i]

	start, end := b.clamp(e.Offset, e.Length)
	repl := utf16.Encode([]rune(newText))

	units := make([]uint16, 0, len(b.units)-(end-start)+len(repl))
	units = append(units, b.units[:start]...)
	units = append(units, repl...)
	units = append(units, b.units[end:]...)
	b.units = units

	ed := edit{at: start, oldLen: end - start, newLen: len(repl)}
	e.Offset = start
	e.Length = len(repl)

	b.edits = append(b.edits, ed)
	b.shift += ed.delta()
	// the target already reflects its own edit
	b.synced[i] = len(b.edits)
}

// Entities syncs every entity and returns a copy of the list without the
// zero length ones.
func (b *Buffer) Entities() []Entity {
	out := make([]Entity, 0, len(b.entities))
	for i := range b.entities {
		if b.Dropped(i) {
			continue
		}
		out = append(out, b.entities[i])
	}
	return out
}

func (b *Buffer) clamp(offset, length int) (int, int) {
	n := len(b.units)
	start := offset
	if start < 0 {
		start = 0
	}
	if start > n {
		start = n
	}
	end := offset + length
	if length < 0 || end < start {
		end = start
	}
	if end > n {
		end = n
	}
	return start, end
}
