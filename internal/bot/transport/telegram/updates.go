package telegram

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/dmitrijs2005/tokenbot/internal/chat"
)

// ToEvent maps an update onto a chat event. Updates the bot does not react to
// (edits, channel posts, service messages) report false.
func ToEvent(u tgbotapi.Update) (chat.Event, bool) {
	switch {
	case u.CallbackQuery != nil:
		q := u.CallbackQuery
		if q.From == nil {
			return chat.Event{}, false
		}
		ev := chat.Event{Kind: chat.KindButton, Payload: q.Data, ChatID: q.From.ID}
		if q.Message != nil {
			ev.MessageID = q.Message.MessageID
			if q.Message.Chat != nil {
				ev.ChatID = q.Message.Chat.ID
			}
		}
		withUser(&ev, q.From)
		return ev, true

	case u.Message != nil:
		m := u.Message
		if m.From == nil || m.Chat == nil {
			return chat.Event{}, false
		}
		ev := chat.Event{ChatID: m.Chat.ID, MessageID: m.MessageID}
		withUser(&ev, m.From)
		switch {
		case len(m.Photo) > 0:
			ev.Kind = chat.KindPhoto
			ev.FileID = largest(m.Photo).FileID
			ev.Payload = m.Caption
		case hasAttachment(m):
			ev.Kind = chat.KindAttachment
			ev.Payload = m.Caption
		case m.IsCommand():
			ev.Kind = chat.KindCommand
			ev.Payload = strings.ToLower(m.Command())
		case m.Text != "":
			ev.Kind = chat.KindText
			ev.Payload = m.Text
		default:
			return chat.Event{}, false
		}
		return ev, true
	}
	return chat.Event{}, false
}

// hasAttachment reports files other than photos. Images sent as documents
// count here too.
func hasAttachment(m *tgbotapi.Message) bool {
	return m.Document != nil || m.Video != nil || m.Animation != nil ||
		m.Audio != nil || m.Voice != nil || m.VideoNote != nil || m.Sticker != nil
}

func withUser(ev *chat.Event, u *tgbotapi.User) {
	ev.UserID = u.ID
	ev.Username = u.UserName
	ev.FirstName = u.FirstName
	ev.LastName = u.LastName
}

// largest picks the rendition with the most pixels.
func largest(sizes []tgbotapi.PhotoSize) tgbotapi.PhotoSize {
	best := sizes[0]
	for _, s := range sizes[1:] {
		if s.Width*s.Height > best.Width*best.Height {
			best = s
		}
	}
	return best
}
