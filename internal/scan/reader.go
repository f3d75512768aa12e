// Package scan makes the per-message decision: whether to look at a message
// at all, whether it carries advertisement, and what its sanitized body is.
package scan

import (
	"github.com/blockedby/safebot/internal/entity"
	"github.com/blockedby/safebot/internal/logger"
	"github.com/blockedby/safebot/internal/redact"
)

// State is the scan state of a Reader.
type State int

// State constants. A reader moves from StateUnscanned to one of the other
// two states once and stays there.
const (
	StateUnscanned State = iota
	StateClean
	StateRedacted
)

func (s State) String() string {
	switch s {
	case StateClean:
		return "clean"
	case StateRedacted:
		return "redacted"
	default:
		return "unscanned"
	}
}

// Reader holds one incoming message for the duration of its processing.
// It must not be shared between goroutines or reused for another message.
type Reader struct {
	msg    *entity.Message
	filter *redact.Filter
	buf    *entity.Buffer
	log    *logger.Logger

	state State
	found bool
}

// NewReader creates a reader over msg. The message text and entities are
// copied; msg itself is never modified.
func NewReader(msg *entity.Message, filter *redact.Filter) *Reader {
	return &Reader{
		msg:    msg,
		filter: filter,
		buf:    entity.NewBuffer(msg.Text, msg.Entities),
		log:    logger.Get(),
	}
}

// ShouldScan reports whether the message is attributed to a bot. Forwards
// are attributed to their original author.
func (r *Reader) ShouldScan() bool {
	author := r.msg.Author()
	return author != nil && author.IsBot
}

// QuickScan rewrites every unsafe entity and checks inline buttons. It
// returns true if anything unsafe was found. The scan runs once; later calls
// return the first verdict.
func (r *Reader) QuickScan() bool {
	if r.state != StateUnscanned {
		return r.found
	}

	author := r.msg.Author()
	found, err := r.filter.ScanAndRedact(r.buf, author, redact.ModeCutUnsafe)
	if err != nil {
		r.log.Error().Err(err).Msg("scan: entity left untouched")
	}
	if r.containsUnsafeButton() {
		found = true
	}

	r.found = found
	if found {
		r.state = StateRedacted
	} else {
		r.state = StateClean
	}
	return found
}

// State returns the scan state.
func (r *Reader) State() State {
	return r.state
}

// CanEcho reports whether the message addresses someone, which makes a
// sanitized copy worth sending: it is a reply or still mentions a user.
func (r *Reader) CanEcho() bool {
	if r.msg.IsReply {
		return true
	}
	return r.containsMention()
}

// FinalText returns the text after QuickScan.
func (r *Reader) FinalText() string {
	return r.buf.Text()
}

// FinalEntities returns the entities after QuickScan.
func (r *Reader) FinalEntities() []entity.Entity {
	return r.buf.Entities()
}

func (r *Reader) containsMention() bool {
	for _, e := range r.buf.Entities() {
		if e.Kind == entity.KindMention || e.Kind == entity.KindTextMention {
			return true
		}
	}
	return false
}

func (r *Reader) containsUnsafeButton() bool {
	author := r.msg.Author()
	for _, u := range r.msg.ButtonURLs {
		if r.filter.UnsafeURL(u, author) {
			return true
		}
	}
	return false
}
