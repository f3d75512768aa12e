package scan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blockedby/safebot/internal/entity"
	"github.com/blockedby/safebot/internal/link"
	"github.com/blockedby/safebot/internal/redact"
)

func testFilter() *redact.Filter {
	return redact.NewFilter(link.NewClassifier(link.DefaultRegistry(), false), "")
}

var (
	adBot = &entity.User{ID: 1, Username: "AdBot", IsBot: true}
	human = &entity.User{ID: 2, Username: "alice"}
)

func TestReader_ShouldScan(t *testing.T) {
	tests := []struct {
		name string
		msg  *entity.Message
		want bool
	}{
		{"bot sender", &entity.Message{Sender: adBot}, true},
		{"human sender", &entity.Message{Sender: human}, false},
		{"no sender", &entity.Message{}, false},
		{"human forwards bot", &entity.Message{Sender: human, ForwardFrom: adBot}, true},
		{"bot forwards human", &entity.Message{Sender: adBot, ForwardFrom: human}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewReader(tt.msg, testFilter()).ShouldScan())
		})
	}
}

func TestReader_QuickScan(t *testing.T) {
	msg := &entity.Message{
		Text:   "hi @friend, try t.me/spambot",
		Sender: adBot,
		Entities: []entity.Entity{
			{Kind: entity.KindMention, Offset: 3, Length: 7},
			{Kind: entity.KindURL, Offset: 16, Length: 12},
		},
	}
	r := NewReader(msg, testFilter())
	assert.Equal(t, StateUnscanned, r.State())

	assert.True(t, r.QuickScan())
	assert.Equal(t, StateRedacted, r.State())
	assert.Equal(t, "hi @friend, try [removed]", r.FinalText())

	ents := r.FinalEntities()
	require.Len(t, ents, 2)
	assert.Equal(t, entity.KindMention, ents[0].Kind)
	assert.Equal(t, entity.KindItalic, ents[1].Kind)
	assert.Equal(t, 16, ents[1].Offset)

	// original message untouched
	assert.Equal(t, "hi @friend, try t.me/spambot", msg.Text)
	assert.Equal(t, entity.KindURL, msg.Entities[1].Kind)
}

func TestReader_QuickScanRunsOnce(t *testing.T) {
	msg := &entity.Message{
		Text:     "t.me/spambot",
		Sender:   adBot,
		Entities: []entity.Entity{{Kind: entity.KindURL, Offset: 0, Length: 12}},
	}
	r := NewReader(msg, testFilter())

	require.True(t, r.QuickScan())
	text := r.FinalText()
	assert.True(t, r.QuickScan())
	assert.Equal(t, text, r.FinalText())
}

func TestReader_QuickScanClean(t *testing.T) {
	msg := &entity.Message{
		Text:     "news at t.me/durov",
		Sender:   adBot,
		Entities: []entity.Entity{{Kind: entity.KindURL, Offset: 8, Length: 10}},
	}
	r := NewReader(msg, testFilter())

	assert.False(t, r.QuickScan())
	assert.Equal(t, StateClean, r.State())
	assert.Equal(t, msg.Text, r.FinalText())
}

func TestReader_UnsafeButton(t *testing.T) {
	msg := &entity.Message{
		Text:       "press the button",
		Sender:     adBot,
		ButtonURLs: []string{"https://t.me/durov", "https://casino.example/win"},
	}
	r := NewReader(msg, testFilter())

	assert.True(t, r.QuickScan())
	assert.Equal(t, StateRedacted, r.State())
	// buttons are not part of the text
	assert.Equal(t, msg.Text, r.FinalText())
}

func TestReader_SelfButtonIsSafe(t *testing.T) {
	msg := &entity.Message{
		Text:       "start me",
		Sender:     adBot,
		ButtonURLs: []string{"https://t.me/AdBot?start=go"},
	}
	assert.False(t, NewReader(msg, testFilter()).QuickScan())
}

func TestReader_CanEcho(t *testing.T) {
	tests := []struct {
		name string
		msg  *entity.Message
		want bool
	}{
		{
			name: "reply",
			msg:  &entity.Message{Text: "x", Sender: adBot, IsReply: true},
			want: true,
		},
		{
			name: "mentions a user",
			msg: &entity.Message{
				Text:     "hi @friend",
				Sender:   adBot,
				Entities: []entity.Entity{{Kind: entity.KindMention, Offset: 3, Length: 7}},
			},
			want: true,
		},
		{
			name: "only mention was redacted",
			msg: &entity.Message{
				Text:     "hi @spambot",
				Sender:   adBot,
				Entities: []entity.Entity{{Kind: entity.KindMention, Offset: 3, Length: 8}},
			},
			want: false,
		},
		{
			name: "nobody addressed",
			msg:  &entity.Message{Text: "plain", Sender: adBot},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReader(tt.msg, testFilter())
			r.QuickScan()
			assert.Equal(t, tt.want, r.CanEcho())
		})
	}
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "unscanned", StateUnscanned.String())
	assert.Equal(t, "clean", StateClean.String())
	assert.Equal(t, "redacted", StateRedacted.String())
}

func TestURLs(t *testing.T) {
	msg := &entity.Message{
		Text: "join 😀 t.me/+AbCdEfGh12345678 or here",
		Entities: []entity.Entity{
			{Kind: entity.KindTextLink, Offset: 34, Length: 4, URL: "https://t.me/durov"},
			{Kind: entity.KindBold, Offset: 0, Length: 4},
			{Kind: entity.KindURL, Offset: 8, Length: 22},
		},
	}

	assert.Equal(t, []string{"https://t.me/+AbCdEfGh12345678", "https://t.me/durov"}, URLs(msg))
	assert.Equal(t, "https://t.me/+AbCdEfGh12345678", FirstURL(msg))
	assert.Empty(t, FirstURL(&entity.Message{Text: "nothing"}))
}
