package infrastructure

import (
	"relaybot/internal/entities"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// ReplyButtonLabel is the text of the button attached to relayed messages
const ReplyButtonLabel = "Ответить"

// ReplyKeyboard creates the single-button keyboard bound to the original sender
func ReplyKeyboard(action entities.ReplyAction) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(ReplyButtonLabel, action.Pack()),
		),
	)
}
