package infrastructure

import (
	"relaybot/internal/entities"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// ParseUpdate converts a Bot API update into an Event.
// It returns false for update kinds the relay does not handle
// (edited messages, channel posts, inline queries...).
func ParseUpdate(update tgbotapi.Update) (entities.Event, bool) {
	switch {
	case update.Message != nil:
		msg, ok := parseMessage(update.Message)
		if !ok {
			return entities.Event{}, false
		}
		return entities.Event{UpdateID: update.UpdateID, Message: &msg}, true

	case update.CallbackQuery != nil:
		cb := update.CallbackQuery
		if cb.From == nil {
			return entities.Event{}, false
		}
		query := entities.CallbackQuery{
			ID:   cb.ID,
			From: parseSender(cb.From),
			Data: cb.Data,
		}
		if cb.Message != nil && cb.Message.Chat != nil {
			query.ChatID = cb.Message.Chat.ID
		} else {
			// private chat with the bot: chat id equals user id
			query.ChatID = cb.From.ID
		}
		return entities.Event{UpdateID: update.UpdateID, Callback: &query}, true
	}
	return entities.Event{}, false
}

func parseMessage(m *tgbotapi.Message) (entities.IncomingMessage, bool) {
	if m.From == nil || m.Chat == nil {
		return entities.IncomingMessage{}, false
	}
	msg := entities.IncomingMessage{
		MessageID: m.MessageID,
		ChatID:    m.Chat.ID,
		From:      parseSender(m.From),
		Content:   parseContent(m),
	}
	if m.IsCommand() {
		msg.Command = m.Command()
	}
	return msg, true
}

func parseSender(u *tgbotapi.User) entities.Sender {
	return entities.Sender{
		ID:        u.ID,
		Username:  u.UserName,
		FirstName: u.FirstName,
	}
}

func parseContent(m *tgbotapi.Message) entities.Content {
	switch {
	case len(m.Photo) > 0:
		// sizes are ordered smallest first
		largest := m.Photo[len(m.Photo)-1]
		return entities.Photo{File: entities.FileRef(largest.FileID), Caption: m.Caption}
	case m.Video != nil:
		return entities.Video{File: entities.FileRef(m.Video.FileID), Caption: m.Caption}
	case m.Text != "":
		return entities.Text{Body: m.Text}
	}
	return entities.Unsupported{Kind: unsupportedKind(m)}
}

func unsupportedKind(m *tgbotapi.Message) string {
	switch {
	case m.Sticker != nil:
		return "sticker"
	case m.Voice != nil:
		return "voice"
	case m.VideoNote != nil:
		return "video_note"
	case m.Animation != nil:
		return "animation"
	case m.Audio != nil:
		return "audio"
	case m.Document != nil:
		return "document"
	case m.Location != nil:
		return "location"
	case m.Contact != nil:
		return "contact"
	case m.Poll != nil:
		return "poll"
	}
	return "unsupported"
}
