package guard

import (
	"context"
	"time"

	"github.com/blockedby/safebot/internal/entity"
	"github.com/blockedby/safebot/internal/locale"
	"github.com/blockedby/safebot/internal/logger"
	"github.com/blockedby/safebot/internal/metrics"
	"github.com/blockedby/safebot/internal/publisher"
	"github.com/blockedby/safebot/internal/redact"
	"github.com/blockedby/safebot/internal/scan"
	"github.com/blockedby/safebot/internal/telegram"
)

// Public handles messages in groups and supergroups.
type Public struct {
	tg       Transport
	settings Settings
	texts    *locale.Bundle
	filter   *redact.Filter
	events   Publisher
	dedup    Deduper
	log      *logger.Logger
}

// PublicOption configures a Public handler.
type PublicOption func(*Public)

// WithPublisher sets the moderation event sink.
func WithPublisher(p Publisher) PublicOption {
	return func(h *Public) {
		if p != nil {
			h.events = p
		}
	}
}

// WithDedup sets the duplicate update guard.
func WithDedup(d Deduper) PublicOption {
	return func(h *Public) {
		if d != nil {
			h.dedup = d
		}
	}
}

// NewPublic creates the group handler.
func NewPublic(tg Transport, settings Settings, texts *locale.Bundle, filter *redact.Filter, opts ...PublicOption) *Public {
	h := &Public{
		tg:       tg,
		settings: settings,
		texts:    texts,
		filter:   filter,
		events:   noPublisher{},
		dedup:    noDedup{},
		log:      logger.With("guard.public"),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Process scans a message from a bot and removes it when it carries
// advertisement. If the chat has echo mode on and the message addresses
// someone, a sanitized copy is posted instead of a notice. Otherwise a notice
// is sent unless the chat is silent. Transport and store errors are logged.
func (h *Public) Process(ctx context.Context, in *telegram.Incoming) error {
	start := time.Now()
	defer func() { metrics.ProcessingSeconds.Observe(time.Since(start).Seconds()) }()

	r := scan.NewReader(&in.Message, h.filter)
	if !r.ShouldScan() {
		return nil
	}
	if !h.dedup.Claim(ctx, in.Chat.ID, in.MessageID) {
		metrics.DuplicatesTotal.Inc()
		return nil
	}
	metrics.MessagesTotal.WithLabelValues(metrics.ActionScanned).Inc()

	if !r.QuickScan() {
		metrics.MessagesTotal.WithLabelValues(metrics.ActionClean).Inc()
		return nil
	}

	log := h.log.With().Int64("chat_id", in.Chat.ID).Int("msg_id", in.MessageID).Logger()
	log.Debug().Msg("guard: advertisement found")

	deleted := true
	if err := h.tg.DeleteMessage(ctx, in.Chat, in.MessageID); err != nil {
		log.Warn().Err(err).Msg("guard: cannot delete message")
		deleted = false
	}

	if deleted && r.CanEcho() && h.echoMode(ctx, in.Chat.ID) {
		h.echo(ctx, in, r)
		return nil
	}

	action := publisher.ActionDeleted
	if deleted {
		metrics.MessagesTotal.WithLabelValues(metrics.ActionDeleted).Inc()
	} else {
		action = publisher.ActionNoRights
		metrics.MessagesTotal.WithLabelValues(metrics.ActionNoRights).Inc()
	}
	h.publish(ctx, in, action, "")

	if h.silentMode(ctx, in.Chat.ID) {
		return nil
	}
	if err := h.tg.SendMessage(ctx, in.Chat, h.notice(in, deleted)); err != nil {
		log.Warn().Err(err).Msg("guard: cannot send notice")
	}
	return nil
}

func (h *Public) echo(ctx context.Context, in *telegram.Incoming, r *scan.Reader) {
	out := telegram.Outgoing{
		Text:         r.FinalText(),
		Entities:     r.FinalEntities(),
		NoWebpage:    true,
		AccessHashes: in.AccessHashes(),
	}
	if err := h.tg.SendMessage(ctx, in.Chat, out); err != nil {
		h.log.Warn().Err(err).Int64("chat_id", in.Chat.ID).Msg("guard: cannot echo message")
	}
	metrics.MessagesTotal.WithLabelValues(metrics.ActionEchoed).Inc()
	h.publish(ctx, in, publisher.ActionEchoed, out.Text)
}

// notice builds the deletion notice with a mention of the sender, or the
// missing rights reply.
func (h *Public) notice(in *telegram.Incoming, deleted bool) telegram.Outgoing {
	if !deleted {
		return telegram.Outgoing{
			Text:    h.texts.Text(locale.KeyNotEnoughRights, nil),
			ReplyTo: in.MessageID,
		}
	}

	sender := in.Message.Sender
	name := senderName(in)
	text, offset, length := h.texts.TextWithSpan(locale.KeyMessageDeleted, "mention", name, nil)
	out := telegram.Outgoing{Text: text, AccessHashes: in.AccessHashes()}
	if offset >= 0 && length > 0 && sender != nil {
		out.Entities = []entity.Entity{{
			Kind:   entity.KindTextMention,
			Offset: offset,
			Length: length,
			User:   sender,
		}}
	}
	return out
}

func senderName(in *telegram.Incoming) string {
	if in.SenderName != "" {
		return in.SenderName
	}
	if s := in.Message.Sender; s != nil && s.Username != "" {
		return "@" + s.Username
	}
	return "bot"
}

func (h *Public) echoMode(ctx context.Context, chatID int64) bool {
	on, err := h.settings.IsEchoMode(ctx, chatID)
	if err != nil {
		h.log.Warn().Err(err).Int64("chat_id", chatID).Msg("guard: cannot read echo mode")
		return false
	}
	return on
}

func (h *Public) silentMode(ctx context.Context, chatID int64) bool {
	on, err := h.settings.IsSilentMode(ctx, chatID)
	if err != nil {
		h.log.Warn().Err(err).Int64("chat_id", chatID).Msg("guard: cannot read silent mode")
		return false
	}
	return on
}

func (h *Public) publish(ctx context.Context, in *telegram.Incoming, action, text string) {
	ev := publisher.ModerationEvent{
		ChatID:    in.Chat.ID,
		MessageID: in.MessageID,
		Action:    action,
		Text:      text,
	}
	if s := in.Message.Sender; s != nil {
		ev.SenderID = s.ID
	}
	if err := h.events.PublishModeration(ctx, ev); err != nil {
		h.log.Warn().Err(err).Msg("guard: cannot publish moderation event")
	}
}
