// Package entity models message text together with its rich-text entities.
// Offsets and lengths are measured in UTF-16 code units, the same way
// Telegram measures them on the wire.
package entity

import "unicode/utf16"

// Kind is the tag of an entity span.
type Kind int

// Kind constants. The first four kinds are the ones that can carry
// advertisement; the rest are formatting and are never classified.
const (
	KindUnknown Kind = iota
	KindURL
	KindTextLink
	KindMention
	KindTextMention
	KindBold
	KindItalic
	KindUnderline
	KindStrike
	KindSpoiler
	KindCode
	KindPre
	KindBlockquote
	KindHashtag
	KindCashtag
	KindBotCommand
	KindEmail
	KindPhone
	KindBankCard
	KindCustomEmoji
)

var kindNames = map[Kind]string{
	KindUnknown:     "unknown",
	KindURL:         "url",
	KindTextLink:    "text_link",
	KindMention:     "mention",
	KindTextMention: "text_mention",
	KindBold:        "bold",
	KindItalic:      "italic",
	KindUnderline:   "underline",
	KindStrike:      "strikethrough",
	KindSpoiler:     "spoiler",
	KindCode:        "code",
	KindPre:         "pre",
	KindBlockquote:  "blockquote",
	KindHashtag:     "hashtag",
	KindCashtag:     "cashtag",
	KindBotCommand:  "bot_command",
	KindEmail:       "email",
	KindPhone:       "phone_number",
	KindBankCard:    "bank_card",
	KindCustomEmoji: "custom_emoji",
}

// String returns the Bot API style name of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// ParseKind is the inverse of Kind.String. Unrecognized names map to KindUnknown.
func ParseKind(name string) Kind {
	for k, n := range kindNames {
		if n == name {
			return k
		}
	}
	return KindUnknown
}

// User is the identity of a message author or of a text mention target.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username,omitempty"`
	IsBot    bool   `json:"is_bot"`
}

// Entity is a tagged span over message text.
type Entity struct {
	Kind   Kind `json:"-"`
	Offset int  `json:"offset"`
	Length int  `json:"length"`

	// kind specific payload
	URL        string `json:"url,omitempty"`         // KindTextLink
	User       *User  `json:"user,omitempty"`        // KindTextMention
	Language   string `json:"language,omitempty"`    // KindPre
	Collapsed  bool   `json:"collapsed,omitempty"`   // KindBlockquote
	DocumentID int64  `json:"document_id,omitempty"` // KindCustomEmoji
}

// End returns the offset right after the span.
func (e Entity) End() int {
	return e.Offset + e.Length
}

// Message is the part of an incoming chat message the engine works on.
type Message struct {
	Text        string
	Entities    []Entity
	Sender      *User
	ForwardFrom *User
	IsReply     bool
	// ButtonURLs holds the URLs of inline keyboard buttons
	ButtonURLs []string
}

// Author returns the identity the message is attributed to: the original
// author for forwards, the sender otherwise. May be nil.
func (m *Message) Author() *User {
	if m.ForwardFrom != nil {
		return m.ForwardFrom
	}
	return m.Sender
}

// UTF16Len returns the length of s in UTF-16 code units.
func UTF16Len(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}
