package guard

import (
	"context"
	"errors"
	"math"
	"strconv"

	"github.com/blockedby/safebot/internal/link"
	"github.com/blockedby/safebot/internal/locale"
	"github.com/blockedby/safebot/internal/logger"
	"github.com/blockedby/safebot/internal/metrics"
	"github.com/blockedby/safebot/internal/scan"
	"github.com/blockedby/safebot/internal/telegram"
)

// Private handles messages sent to the account directly. An invite link in
// the message makes the account join that chat.
type Private struct {
	tg         Transport
	settings   Settings
	texts      *locale.Bundle
	classifier *link.Classifier
	log        *logger.Logger
}

// NewPrivate creates the private chat handler.
func NewPrivate(tg Transport, settings Settings, texts *locale.Bundle, classifier *link.Classifier) *Private {
	return &Private{
		tg:         tg,
		settings:   settings,
		texts:      texts,
		classifier: classifier,
		log:        logger.With("guard.private"),
	}
}

// Process joins the chat behind the first link of the message when it is an
// invite. Known join failures are answered with a localized reply; other
// errors are returned.
func (h *Private) Process(ctx context.Context, in *telegram.Incoming) error {
	raw := scan.FirstURL(&in.Message)
	if raw == "" {
		return nil
	}
	l := h.classifier.Link(raw)
	if !l.IsInvite() {
		return nil
	}

	chatID, err := h.tg.JoinChat(ctx, link.InviteHash(l))
	if err != nil {
		key, args, ok := joinErrorText(err)
		if !ok {
			metrics.InvitesTotal.WithLabelValues("error").Inc()
			return err
		}
		metrics.InvitesTotal.WithLabelValues(key).Inc()
		h.reply(ctx, in, key, args)
		return nil
	}

	metrics.InvitesTotal.WithLabelValues("joined").Inc()
	h.log.Info().Int64("chat_id", chatID).Int64("from", in.Chat.ID).Msg("guard: joined chat")

	if err := h.settings.CreateOrSkip(ctx, chatID); err != nil {
		h.log.Warn().Err(err).Int64("chat_id", chatID).Msg("guard: cannot register chat")
	}
	return nil
}

func (h *Private) reply(ctx context.Context, in *telegram.Incoming, key string, args map[string]string) {
	out := telegram.Outgoing{Text: h.texts.Text(key, args), ReplyTo: in.MessageID}
	if err := h.tg.SendMessage(ctx, in.Chat, out); err != nil {
		h.log.Warn().Err(err).Int64("chat_id", in.Chat.ID).Msg("guard: cannot reply")
	}
}

// joinErrorText maps a JoinChat error to a locale key.
func joinErrorText(err error) (string, map[string]string, bool) {
	var flood *telegram.FloodWaitError
	switch {
	case errors.Is(err, telegram.ErrAlreadyParticipant):
		return locale.KeyAlreadyInChat, nil, true
	case errors.Is(err, telegram.ErrInviteExpired), errors.Is(err, telegram.ErrInviteInvalid):
		return locale.KeyInviteLinkExpired, nil, true
	case errors.As(err, &flood):
		return locale.KeyErrorFlood, map[string]string{"minutes": strconv.Itoa(floodMinutes(flood))}, true
	}
	return "", nil, false
}

// floodMinutes rounds a flood wait up to whole minutes, at least one.
func floodMinutes(e *telegram.FloodWaitError) int {
	m := int(math.Ceil(e.Wait.Minutes()))
	if m < 1 {
		m = 1
	}
	return m
}
