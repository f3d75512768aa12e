package telegram

import (
	"errors"
	"fmt"
	"time"

	"github.com/gotd/td/tg"

	"github.com/blockedby/safebot/internal/entity"
)

// Errors returned by JoinChat.
var (
	ErrAlreadyParticipant = errors.New("already a participant of the chat")
	ErrInviteExpired      = errors.New("invite link expired")
	ErrInviteInvalid      = errors.New("invite link invalid")
	ErrNotAuthorized      = errors.New("telegram client not authorized")
)

// FloodWaitError is returned when telegram asks the caller to back off.
type FloodWaitError struct {
	Wait time.Duration
}

func (e *FloodWaitError) Error() string {
	return fmt.Sprintf("flood wait %s", e.Wait)
}

// ChatType is the kind of chat a message arrived in
type ChatType string

// ChatType constants use Bot API names.
const (
	ChatPrivate    ChatType = "private"
	ChatGroup      ChatType = "group"
	ChatSupergroup ChatType = "supergroup"
	ChatChannel    ChatType = "channel"
)

// Peer addresses a chat for outgoing calls.
type Peer struct {
	Type       ChatType
	ID         int64 // user, chat or channel id
	AccessHash int64 // zero for basic groups
}

// Input returns the input peer used by send requests.
func (p Peer) Input() tg.InputPeerClass {
	switch p.Type {
	case ChatPrivate:
		return &tg.InputPeerUser{UserID: p.ID, AccessHash: p.AccessHash}
	case ChatGroup:
		return &tg.InputPeerChat{ChatID: p.ID}
	default:
		return &tg.InputPeerChannel{ChannelID: p.ID, AccessHash: p.AccessHash}
	}
}

// IsChannelLike reports peers whose messages are deleted through the
// channels API.
func (p Peer) IsChannelLike() bool {
	return p.Type == ChatSupergroup || p.Type == ChatChannel
}

// Incoming is one received message converted to the engine model plus the
// routing data needed to act on it.
type Incoming struct {
	Message   entity.Message
	MessageID int
	Chat      Peer
	// SenderName is the display name used when the sender is mentioned back
	SenderName string
	// Out is set for messages sent by this account
	Out bool

	// user id -> access hash, needed for outgoing text mentions
	accessHashes map[int64]int64
}

// AccessHashes returns the user access hashes seen with the message.
func (in *Incoming) AccessHashes() map[int64]int64 {
	return in.accessHashes
}

// Outgoing is a message to send.
type Outgoing struct {
	Text     string
	Entities []entity.Entity
	// ReplyTo is the message id to reply to, zero for none
	ReplyTo   int
	NoWebpage bool
	// AccessHashes resolves text mention targets
	AccessHashes map[int64]int64
}
