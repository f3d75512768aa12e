package telegram

import (
	"strings"

	"github.com/gotd/td/tg"

	"github.com/blockedby/safebot/internal/entity"
)

// FromTG converts a raw MTProto message and the entities delivered with its
// update into an Incoming.
func FromTG(m *tg.Message, ents tg.Entities) *Incoming {
	in := &Incoming{
		MessageID:    m.ID,
		Out:          m.Out,
		Chat:         chatPeer(m.PeerID, ents),
		accessHashes: make(map[int64]int64, len(ents.Users)),
	}
	for id, u := range ents.Users {
		in.accessHashes[id] = u.AccessHash
	}

	msg := entity.Message{Text: m.Message}

	if from, ok := m.GetFromID(); ok {
		if pu, ok := from.(*tg.PeerUser); ok {
			msg.Sender = lookupUser(pu.UserID, ents)
			in.SenderName = displayName(ents.Users[pu.UserID])
		}
	} else if pu, ok := m.PeerID.(*tg.PeerUser); ok && !m.Out {
		// private chats omit from_id for the other side
		msg.Sender = lookupUser(pu.UserID, ents)
		in.SenderName = displayName(ents.Users[pu.UserID])
	}

	if fwd, ok := m.GetFwdFrom(); ok {
		if from, ok := fwd.GetFromID(); ok {
			if pu, ok := from.(*tg.PeerUser); ok {
				msg.ForwardFrom = lookupUser(pu.UserID, ents)
			}
		}
	}

	_, msg.IsReply = m.GetReplyTo()

	for _, e := range m.Entities {
		if conv, ok := fromTGEntity(e, ents); ok {
			msg.Entities = append(msg.Entities, conv)
		}
	}

	if markup, ok := m.GetReplyMarkup(); ok {
		msg.ButtonURLs = buttonURLs(markup)
	}

	in.Message = msg
	return in
}

func chatPeer(p tg.PeerClass, ents tg.Entities) Peer {
	switch p := p.(type) {
	case *tg.PeerUser:
		peer := Peer{Type: ChatPrivate, ID: p.UserID}
		if u, ok := ents.Users[p.UserID]; ok {
			peer.AccessHash = u.AccessHash
		}
		return peer
	case *tg.PeerChat:
		return Peer{Type: ChatGroup, ID: p.ChatID}
	case *tg.PeerChannel:
		peer := Peer{Type: ChatSupergroup, ID: p.ChannelID}
		if ch, ok := ents.Channels[p.ChannelID]; ok {
			peer.AccessHash = ch.AccessHash
			if ch.Broadcast {
				peer.Type = ChatChannel
			}
		}
		return peer
	}
	return Peer{}
}

func lookupUser(id int64, ents tg.Entities) *entity.User {
	u, ok := ents.Users[id]
	if !ok {
		return &entity.User{ID: id}
	}
	return &entity.User{ID: u.ID, Username: u.Username, IsBot: u.Bot}
}

func displayName(u *tg.User) string {
	if u == nil {
		return ""
	}
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}

func buttonURLs(markup tg.ReplyMarkupClass) []string {
	inline, ok := markup.(*tg.ReplyInlineMarkup)
	if !ok {
		return nil
	}
	var urls []string
	for _, row := range inline.Rows {
		for _, b := range row.Buttons {
			if u, ok := b.(*tg.KeyboardButtonURL); ok {
				urls = append(urls, u.URL)
			}
		}
	}
	return urls
}

func fromTGEntity(e tg.MessageEntityClass, ents tg.Entities) (entity.Entity, bool) {
	out := entity.Entity{Offset: e.GetOffset(), Length: e.GetLength()}

	switch e := e.(type) {
	case *tg.MessageEntityURL:
		out.Kind = entity.KindURL
	case *tg.MessageEntityTextURL:
		out.Kind = entity.KindTextLink
		out.URL = e.URL
	case *tg.MessageEntityMention:
		out.Kind = entity.KindMention
	case *tg.MessageEntityMentionName:
		out.Kind = entity.KindTextMention
		out.User = lookupUser(e.UserID, ents)
	case *tg.MessageEntityBold:
		out.Kind = entity.KindBold
	case *tg.MessageEntityItalic:
		out.Kind = entity.KindItalic
	case *tg.MessageEntityUnderline:
		out.Kind = entity.KindUnderline
	case *tg.MessageEntityStrike:
		out.Kind = entity.KindStrike
	case *tg.MessageEntitySpoiler:
		out.Kind = entity.KindSpoiler
	case *tg.MessageEntityCode:
		out.Kind = entity.KindCode
	case *tg.MessageEntityPre:
		out.Kind = entity.KindPre
		out.Language = e.Language
	case *tg.MessageEntityBlockquote:
		out.Kind = entity.KindBlockquote
		out.Collapsed = e.Collapsed
	case *tg.MessageEntityHashtag:
		out.Kind = entity.KindHashtag
	case *tg.MessageEntityCashtag:
		out.Kind = entity.KindCashtag
	case *tg.MessageEntityBotCommand:
		out.Kind = entity.KindBotCommand
	case *tg.MessageEntityEmail:
		out.Kind = entity.KindEmail
	case *tg.MessageEntityPhone:
		out.Kind = entity.KindPhone
	case *tg.MessageEntityBankCard:
		out.Kind = entity.KindBankCard
	case *tg.MessageEntityCustomEmoji:
		out.Kind = entity.KindCustomEmoji
		out.DocumentID = e.DocumentID
	default:
		return out, false
	}
	return out, true
}

// ToTGEntities converts entities back for sending. Text mentions need the
// target access hash; hashes may be nil.
func ToTGEntities(ents []entity.Entity, hashes map[int64]int64) []tg.MessageEntityClass {
	out := make([]tg.MessageEntityClass, 0, len(ents))
	for _, e := range ents {
		if conv := toTGEntity(e, hashes); conv != nil {
			out = append(out, conv)
		}
	}
	return out
}

func toTGEntity(e entity.Entity, hashes map[int64]int64) tg.MessageEntityClass {
	o, l := e.Offset, e.Length

	switch e.Kind {
	case entity.KindURL:
		return &tg.MessageEntityURL{Offset: o, Length: l}
	case entity.KindTextLink:
		return &tg.MessageEntityTextURL{Offset: o, Length: l, URL: e.URL}
	case entity.KindMention:
		return &tg.MessageEntityMention{Offset: o, Length: l}
	case entity.KindTextMention:
		if e.User == nil {
			return nil
		}
		return &tg.InputMessageEntityMentionName{
			Offset: o,
			Length: l,
			UserID: &tg.InputUser{UserID: e.User.ID, AccessHash: hashes[e.User.ID]},
		}
	case entity.KindBold:
		return &tg.MessageEntityBold{Offset: o, Length: l}
	case entity.KindItalic:
		return &tg.MessageEntityItalic{Offset: o, Length: l}
	case entity.KindUnderline:
		return &tg.MessageEntityUnderline{Offset: o, Length: l}
	case entity.KindStrike:
		return &tg.MessageEntityStrike{Offset: o, Length: l}
	case entity.KindSpoiler:
		return &tg.MessageEntitySpoiler{Offset: o, Length: l}
	case entity.KindCode:
		return &tg.MessageEntityCode{Offset: o, Length: l}
	case entity.KindPre:
		return &tg.MessageEntityPre{Offset: o, Length: l, Language: e.Language}
	case entity.KindBlockquote:
		return &tg.MessageEntityBlockquote{Offset: o, Length: l, Collapsed: e.Collapsed}
	case entity.KindHashtag:
		return &tg.MessageEntityHashtag{Offset: o, Length: l}
	case entity.KindCashtag:
		return &tg.MessageEntityCashtag{Offset: o, Length: l}
	case entity.KindBotCommand:
		return &tg.MessageEntityBotCommand{Offset: o, Length: l}
	case entity.KindEmail:
		return &tg.MessageEntityEmail{Offset: o, Length: l}
	case entity.KindPhone:
		return &tg.MessageEntityPhone{Offset: o, Length: l}
	case entity.KindBankCard:
		return &tg.MessageEntityBankCard{Offset: o, Length: l}
	case entity.KindCustomEmoji:
		return &tg.MessageEntityCustomEmoji{Offset: o, Length: l, DocumentID: e.DocumentID}
	}
	return nil
}
