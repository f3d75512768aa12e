package entity

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUTF16Len(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want int
	}{
		{"ascii", "hello", 5},
		{"empty", "", 0},
		{"cyrillic", "привет", 6},
		{"emoji is a surrogate pair", "😀", 2},
		{"mixed", "a😀b", 4},
		{"flag is two pairs", "🇺🇦", 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UTF16Len(tt.in))
		})
	}
}

func TestKind_StringRoundTrip(t *testing.T) {
	for k := range kindNames {
		assert.Equal(t, k, ParseKind(k.String()))
	}
	assert.Equal(t, KindUnknown, ParseKind("no_such_kind"))
	assert.Equal(t, "unknown", Kind(999).String())
}

func TestMessage_Author(t *testing.T) {
	sender := &User{ID: 1, Username: "alice"}
	orig := &User{ID: 2, Username: "adbot", IsBot: true}

	m := &Message{Sender: sender}
	assert.Same(t, sender, m.Author())

	m.ForwardFrom = orig
	assert.Same(t, orig, m.Author())

	assert.Nil(t, (&Message{}).Author())
}

func TestNewBuffer_SortsAndCopies(t *testing.T) {
	in := []Entity{
		{Kind: KindBold, Offset: 6, Length: 3},
		{Kind: KindItalic, Offset: 0, Length: 4},
		{Kind: KindURL, Offset: 6, Length: 2},
	}
	b := NewBuffer("some text here", in)

	got := b.Entities()
	require.Len(t, got, 3)
	assert.Equal(t, KindItalic, got[0].Kind)
	// ties keep input order
	assert.Equal(t, KindBold, got[1].Kind)
	assert.Equal(t, KindURL, got[2].Kind)

	got[0].Offset = 100
	assert.Equal(t, 0, b.Entity(0).Offset)
	assert.Equal(t, 6, in[0].Offset)
}

func TestBuffer_Slice(t *testing.T) {
	b := NewBuffer("hi 😀 там", nil)

	assert.Equal(t, 9, b.Len())
	assert.Equal(t, "😀", b.Slice(3, 2))
	assert.Equal(t, "там", b.Slice(6, 3))
	assert.Equal(t, "там", b.Slice(6, 50))
	assert.Equal(t, "", b.Slice(50, 2))
	assert.Equal(t, "hi", b.Slice(-1, 3))
	assert.Equal(t, "", b.Slice(2, -1))
}

func TestBuffer_ReplaceSpan_ShiftsLaterEntity(t *testing.T) {
	// 20 unit span replaced by a 6 unit placeholder
	text := "aaaaaaaaaaaaaaaaaaaa tail @user"
	b := NewBuffer(text, []Entity{
		{Kind: KindURL, Offset: 0, Length: 20},
		{Kind: KindMention, Offset: 26, Length: 5},
	})

	b.ReplaceSpan(0, "[gone]")
	assert.Equal(t, -14, b.Shift())
	// the second entity is stale until synced
	assert.Equal(t, 26, b.Entity(1).Offset)

	b.ApplyPendingShift(1)
	assert.Equal(t, 12, b.Entity(1).Offset)
	assert.Equal(t, "@user", b.SliceEntity(1))
	assert.Equal(t, "[gone] tail @user", b.Text())
}

func TestBuffer_ApplyPendingShift_Idempotent(t *testing.T) {
	b := NewBuffer("0123456789 x", []Entity{
		{Kind: KindURL, Offset: 0, Length: 10},
		{Kind: KindBold, Offset: 11, Length: 1},
	})
	b.ReplaceSpan(0, "ab")

	b.ApplyPendingShift(1)
	b.ApplyPendingShift(1)
	b.ApplyPendingShift(1)
	assert.Equal(t, 3, b.Entity(1).Offset)
	assert.Equal(t, "x", b.SliceEntity(1))
}

func TestBuffer_ReplaceSpan_MultiByte(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		target   Entity
		after    Entity
		want     string
		wantText string
	}{
		{
			name:     "emoji before target",
			text:     "😀 t.me/adbot and @friend",
			target:   Entity{Kind: KindURL, Offset: 3, Length: 10},
			after:    Entity{Kind: KindMention, Offset: 18, Length: 7},
			want:     "@friend",
			wantText: "😀 [removed] and @friend",
		},
		{
			name:     "cyrillic around target",
			text:     "смотри t.me/adbot тут @друг",
			target:   Entity{Kind: KindURL, Offset: 7, Length: 10},
			after:    Entity{Kind: KindMention, Offset: 22, Length: 5},
			want:     "@друг",
			wantText: "смотри [removed] тут @друг",
		},
		{
			name:     "emoji inside target",
			text:     "go 😀😀😀 ok",
			target:   Entity{Kind: KindTextLink, Offset: 3, Length: 6},
			after:    Entity{Kind: KindBold, Offset: 10, Length: 2},
			want:     "ok",
			wantText: "go [removed] ok",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuffer(tt.text, []Entity{tt.target, tt.after})
			b.ReplaceSpan(0, "[removed]")

			assert.Equal(t, tt.wantText, b.Text())
			assert.Equal(t, "[removed]", b.SliceEntity(0))
			assert.Equal(t, tt.want, b.SliceEntity(1))
			assert.Equal(t, UTF16Len(tt.wantText), b.Len())
		})
	}
}

func TestBuffer_ReplaceSpan_EnclosingEntityResizes(t *testing.T) {
	// bold covers the whole text, url sits inside it
	b := NewBuffer("see t.me/some_bot!", []Entity{
		{Kind: KindBold, Offset: 0, Length: 18},
		{Kind: KindURL, Offset: 4, Length: 13},
	})

	b.ReplaceSpan(1, "[x]")

	ents := b.Entities()
	assert.Equal(t, "see [x]!", b.Text())
	assert.Equal(t, 0, ents[0].Offset)
	assert.Equal(t, 8, ents[0].Length)
	assert.Equal(t, 4, ents[1].Offset)
	assert.Equal(t, 3, ents[1].Length)
}

func TestBuffer_ReplaceSpan_OverlappingEntities(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		ents     []Entity
		target   int
		wantText string
		want     []Entity
	}{
		{
			name: "nested entity is dropped",
			text: "go https://ads.example/promo now",
			ents: []Entity{
				{Kind: KindURL, Offset: 3, Length: 25},
				{Kind: KindBold, Offset: 23, Length: 5},
			},
			target:   0,
			wantText: "go [removed] now",
			want:     []Entity{{Kind: KindURL, Offset: 3, Length: 9}},
		},
		{
			name: "nested entity at span end",
			text: "https://ads.example/promo",
			ents: []Entity{
				{Kind: KindURL, Offset: 0, Length: 25},
				{Kind: KindBold, Offset: 20, Length: 5},
			},
			target:   0,
			wantText: "[removed]",
			want:     []Entity{{Kind: KindURL, Offset: 0, Length: 9}},
		},
		{
			name: "head overlapping span end is clipped",
			text: "https://ads.example/promo more",
			ents: []Entity{
				{Kind: KindURL, Offset: 0, Length: 25},
				{Kind: KindBold, Offset: 20, Length: 10},
			},
			target:   0,
			wantText: "[removed] more",
			want: []Entity{
				{Kind: KindURL, Offset: 0, Length: 9},
				{Kind: KindBold, Offset: 9, Length: 5},
			},
		},
		{
			name: "tail overlapping span start is clipped",
			text: "say https://ads.example",
			ents: []Entity{
				{Kind: KindBold, Offset: 0, Length: 8},
				{Kind: KindURL, Offset: 4, Length: 19},
			},
			target:   1,
			wantText: "say [removed]",
			want: []Entity{
				{Kind: KindBold, Offset: 0, Length: 4},
				{Kind: KindURL, Offset: 4, Length: 9},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuffer(tt.text, tt.ents)
			b.ReplaceSpan(tt.target, "[removed]")

			assert.Equal(t, tt.wantText, b.Text())
			got := b.Entities()
			assert.Equal(t, tt.want, got)
			for _, e := range got {
				assert.LessOrEqual(t, e.End(), b.Len())
				assert.Positive(t, e.Length)
			}
		})
	}
}

func TestBuffer_Dropped(t *testing.T) {
	b := NewBuffer("https://ads.example", []Entity{
		{Kind: KindURL, Offset: 0, Length: 19},
		{Kind: KindItalic, Offset: 8, Length: 3},
		{Kind: KindBold, Offset: 0, Length: 0},
	})
	b.ReplaceSpan(0, "[x]")

	assert.False(t, b.Dropped(0))
	assert.True(t, b.Dropped(2))
	assert.True(t, b.Dropped(1))
	assert.Equal(t, 0, b.Entity(2).Length)
	assert.Len(t, b.Entities(), 1)
}

func TestBuffer_ReplaceSpan_ClampsOutOfRange(t *testing.T) {
	b := NewBuffer("short", []Entity{{Kind: KindURL, Offset: 3, Length: 40}})
	b.ReplaceSpan(0, "XY")

	assert.Equal(t, "shoXY", b.Text())
	e := b.Entity(0)
	assert.Equal(t, 3, e.Offset)
	assert.Equal(t, 2, e.Length)
	assert.Equal(t, 0, b.Shift())
}

func TestBuffer_SetKind_DropsPayload(t *testing.T) {
	b := NewBuffer("link", []Entity{{
		Kind: KindTextLink, Offset: 0, Length: 4, URL: "https://ads.example",
	}})
	b.SetKind(0, KindItalic)

	e := b.Entity(0)
	assert.Equal(t, KindItalic, e.Kind)
	assert.Empty(t, e.URL)
	assert.Nil(t, e.User)

	b = NewBuffer("quote", []Entity{{Kind: KindBlockquote, Offset: 0, Length: 5, Collapsed: true}})
	b.SetKind(0, KindItalic)
	assert.False(t, b.Entity(0).Collapsed)
}

// TestBuffer_ReplaceAll_Property replaces random subsets of non-overlapping
// spans and checks every untouched entity still covers its original text.
func TestBuffer_ReplaceAll_Property(t *testing.T) {
	words := []string{"alpha", "бета", "😀😀", "gamma", "δέλτα", "e", "🇺🇦x"}
	rng := rand.New(rand.NewPCG(7, 11))

	for iter := 0; iter < 200; iter++ {
		var (
			text     string
			ents     []Entity
			original []string
		)
		n := 1 + rng.IntN(6)
		for i := 0; i < n; i++ {
			w := words[rng.IntN(len(words))]
			if i > 0 {
				text += " "
			}
			ents = append(ents, Entity{Kind: KindURL, Offset: UTF16Len(text), Length: UTF16Len(w)})
			original = append(original, w)
			text += w
		}

		b := NewBuffer(text, ents)
		replaced := make([]bool, n)
		for i := 0; i < n; i++ {
			b.ApplyPendingShift(i)
			if rng.IntN(2) == 0 {
				b.ReplaceSpan(i, "[removed]")
				replaced[i] = true
			}
		}

		got := b.Entities()
		end := 0
		for i, e := range got {
			want := original[i]
			if replaced[i] {
				want = "[removed]"
			}
			require.Equal(t, want, b.Slice(e.Offset, e.Length), "iter %d entity %d", iter, i)
			require.GreaterOrEqual(t, e.Offset, end, "entities overlap")
			require.LessOrEqual(t, e.End(), b.Len())
			end = e.End()
		}
	}
}
