package guard

import (
	"context"

	"github.com/blockedby/safebot/internal/logger"
	"github.com/blockedby/safebot/internal/telegram"
)

// Router dispatches a message to the handler of its chat type.
type Router struct {
	public  *Public
	private *Private
	log     *logger.Logger
}

// NewRouter creates a router. Either handler may be nil to ignore its chats.
func NewRouter(public *Public, private *Private) *Router {
	return &Router{public: public, private: private, log: logger.With("guard")}
}

// Handle routes in. It matches telegram.MessageHandler.
func (r *Router) Handle(ctx context.Context, in *telegram.Incoming) error {
	switch in.Chat.Type {
	case telegram.ChatGroup, telegram.ChatSupergroup:
		if r.public != nil {
			return r.public.Process(ctx, in)
		}
	case telegram.ChatPrivate:
		if r.private != nil {
			return r.private.Process(ctx, in)
		}
	default:
		r.log.Debug().Str("chat_type", string(in.Chat.Type)).Int64("chat_id", in.Chat.ID).Msg("guard: chat type ignored")
	}
	return nil
}
