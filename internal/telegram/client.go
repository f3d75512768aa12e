// Package telegram provides Telegram MTProto client wrapper.
package telegram

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/gotd/td/tg"
	"github.com/gotd/td/tgerr"

	"github.com/blockedby/safebot/internal/logger"
)

// API is the subset of the raw tg.Client the transport calls.
type API interface {
	MessagesDeleteMessages(ctx context.Context, request *tg.MessagesDeleteMessagesRequest) (*tg.MessagesAffectedMessages, error)
	ChannelsDeleteMessages(ctx context.Context, request *tg.ChannelsDeleteMessagesRequest) (*tg.MessagesAffectedMessages, error)
	MessagesSendMessage(ctx context.Context, request *tg.MessagesSendMessageRequest) (tg.UpdatesClass, error)
	MessagesImportChatInvite(ctx context.Context, hash string) (tg.UpdatesClass, error)
}

// Client wraps the protocol client and provides the moderation operations.
// It uses the Manager to access the underlying protocol client.
type Client struct {
	api         func() (API, error)
	rateLimiter *RateLimiter
	log         *logger.Logger
}

// NewClient creates a new telegram client wrapper using the Manager.
func NewClient(manager *Manager) *Client {
	return &Client{
		api: func() (API, error) {
			proto := manager.GetClient()
			if proto == nil {
				return nil, ErrNotAuthorized
			}
			return proto.API(), nil
		},
		rateLimiter: DefaultRateLimiter(),
		log:         logger.Get(),
	}
}

// NewClientWithAPI creates a client over a fixed API, used by tests and tools.
func NewClientWithAPI(api API, limiter *RateLimiter) *Client {
	if limiter == nil {
		limiter = DefaultRateLimiter()
	}
	return &Client{
		api:         func() (API, error) { return api, nil },
		rateLimiter: limiter,
		log:         logger.Get(),
	}
}

// DeleteMessage deletes one message for everyone.
func (c *Client) DeleteMessage(ctx context.Context, chat Peer, msgID int) error {
	api, err := c.prepare(ctx)
	if err != nil {
		return err
	}

	if chat.IsChannelLike() {
		_, err = api.ChannelsDeleteMessages(ctx, &tg.ChannelsDeleteMessagesRequest{
			Channel: &tg.InputChannel{ChannelID: chat.ID, AccessHash: chat.AccessHash},
			ID:      []int{msgID},
		})
	} else {
		_, err = api.MessagesDeleteMessages(ctx, &tg.MessagesDeleteMessagesRequest{
			Revoke: true,
			ID:     []int{msgID},
		})
	}
	if err != nil {
		err = c.handleError(err)
		c.log.Warn().Err(err).Int64("chat_id", chat.ID).Int("msg_id", msgID).Msg("telegram: delete message failed")
		return fmt.Errorf("delete message %d: %w", msgID, err)
	}

	c.log.Debug().Int64("chat_id", chat.ID).Int("msg_id", msgID).Msg("telegram: message deleted")
	return nil
}

// SendMessage sends text with entities to chat.
func (c *Client) SendMessage(ctx context.Context, chat Peer, out Outgoing) error {
	api, err := c.prepare(ctx)
	if err != nil {
		return err
	}

	req := &tg.MessagesSendMessageRequest{
		NoWebpage: out.NoWebpage,
		Peer:      chat.Input(),
		Message:   out.Text,
		RandomID:  rand.Int64(),
		Entities:  ToTGEntities(out.Entities, out.AccessHashes),
	}
	if out.ReplyTo != 0 {
		req.ReplyTo = &tg.InputReplyToMessage{ReplyToMsgID: out.ReplyTo}
	}

	if _, err := api.MessagesSendMessage(ctx, req); err != nil {
		err = c.handleError(err)
		c.log.Warn().Err(err).Int64("chat_id", chat.ID).Msg("telegram: send message failed")
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

// JoinChat joins the chat behind an invite hash and returns its id.
// Known failures map to ErrAlreadyParticipant, ErrInviteExpired,
// ErrInviteInvalid and *FloodWaitError.
func (c *Client) JoinChat(ctx context.Context, hash string) (int64, error) {
	api, err := c.prepare(ctx)
	if err != nil {
		return 0, err
	}

	c.log.Info().Str("hash", hash).Msg("telegram: importing chat invite")
	updates, err := api.MessagesImportChatInvite(ctx, hash)
	if err != nil {
		switch {
		case tgerr.Is(err, "USER_ALREADY_PARTICIPANT"):
			return 0, ErrAlreadyParticipant
		case tgerr.Is(err, "INVITE_HASH_EXPIRED"):
			return 0, ErrInviteExpired
		case tgerr.Is(err, "INVITE_HASH_INVALID", "INVITE_HASH_EMPTY"):
			return 0, ErrInviteInvalid
		}
		return 0, fmt.Errorf("join chat: %w", c.handleError(err))
	}

	id, ok := joinedChatID(updates)
	if !ok {
		return 0, fmt.Errorf("join chat: no chat in response")
	}
	return id, nil
}

func (c *Client) prepare(ctx context.Context) (API, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		c.log.Error().Err(err).Msg("telegram: rate limiter wait failed")
		return nil, err
	}
	return c.api()
}

// handleError feeds FLOOD_WAIT into the rate limiter and converts it.
func (c *Client) handleError(err error) error {
	wait, ok := tgerr.AsFloodWait(err)
	if !ok {
		return err
	}
	c.log.Warn().Dur("wait", wait).Msg("telegram: FLOOD_WAIT detected, updating rate limiter")
	c.rateLimiter.SetFloodWait(wait)
	return &FloodWaitError{Wait: wait}
}

func joinedChatID(u tg.UpdatesClass) (int64, bool) {
	var chats []tg.ChatClass
	switch u := u.(type) {
	case *tg.Updates:
		chats = u.Chats
	case *tg.UpdatesCombined:
		chats = u.Chats
	}
	for _, ch := range chats {
		switch ch := ch.(type) {
		case *tg.Chat:
			return ch.ID, true
		case *tg.Channel:
			return ch.ID, true
		}
	}
	return 0, false
}
