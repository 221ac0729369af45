package usecases

import (
	"fmt"

	"relaybot/internal/entities"
)

// User-visible texts
const (
	WelcomeCaption = "Добро пожаловать в магическое пространство Таро и Рун!\n\n" +
		"Меня зовут Бари, я Тарунолог...\n\n" +
		"С любовью и светом!\n— Тарунолог Бари"
	AckCaption = "Благодарю вас за обращение! Расклад будет готов в течение 24 часов."

	UnsupportedMarker  = "[неподдерживаемый тип сообщения]"
	UnsupportedNotice  = "❌ Неподдерживаемый тип сообщения."
	ReplySentNotice    = "✅ Ответ отправлен."
	replyPromptFormat  = "Введите сообщение для пользователя ID: %d"
	replyFailureFormat = "❌ Ошибка при отправке: %v"
	relayHeaderFormat  = "Сообщение от @%s (ID: %d)"
	startCommand       = "start"
)

// RelayHeader names the original sender on messages relayed to the admin
func RelayHeader(from entities.Sender) string {
	return fmt.Sprintf(relayHeaderFormat, from.Handle(), from.ID)
}

// withHeader joins the header and a body the way every relayed message is laid out
func withHeader(header, body string) string {
	return header + "\n\n" + body
}

func ReplyPrompt(userID int64) string {
	return fmt.Sprintf(replyPromptFormat, userID)
}

func ReplyFailure(err error) string {
	return fmt.Sprintf(replyFailureFormat, err)
}
