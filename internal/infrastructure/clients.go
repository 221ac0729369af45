package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"relaybot/internal/entities"
	"relaybot/internal/interfaces"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Bot API limits
const (
	MaxTextLength    = 4096
	MaxCaptionLength = 1024
)

// TelegramClient implements interfaces.Gateway on top of the Bot API.
type TelegramClient struct {
	Bot      *tgbotapi.BotAPI
	throttle *SendThrottle
	log      *zap.Logger
}

var _ interfaces.Gateway = (*TelegramClient)(nil)

// NewTelegramClient connects to the Bot API (getMe) with the given token.
func NewTelegramClient(token string, throttle *SendThrottle, log *zap.Logger) (*TelegramClient, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	return newTelegramClient(bot, throttle, log), nil
}

// NewTelegramClientWithEndpoint is NewTelegramClient against a custom Bot API
// endpoint (format "https://host/bot%s/%s"), used for local Bot API servers.
func NewTelegramClientWithEndpoint(token, endpoint string, client tgbotapi.HTTPClient, throttle *SendThrottle, log *zap.Logger) (*TelegramClient, error) {
	bot, err := tgbotapi.NewBotAPIWithClient(token, endpoint, client)
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	return newTelegramClient(bot, throttle, log), nil
}

func newTelegramClient(bot *tgbotapi.BotAPI, throttle *SendThrottle, log *zap.Logger) *TelegramClient {
	if log == nil {
		log = zap.NewNop()
	}
	return &TelegramClient{
		Bot:      bot,
		throttle: throttle,
		log:      log.With(zap.String("component", "telegram")),
	}
}

func (t *TelegramClient) SendText(ctx context.Context, chatID int64, text string, opts interfaces.SendOptions) error {
	msg := tgbotapi.NewMessage(chatID, truncateRunes(text, MaxTextLength))
	msg.ReplyToMessageID = opts.ReplyToMessageID
	if opts.ReplyAction != nil {
		msg.ReplyMarkup = ReplyKeyboard(*opts.ReplyAction)
	}
	return t.send(ctx, msg)
}

func (t *TelegramClient) SendPhoto(ctx context.Context, chatID int64, photo entities.MediaRef, caption string, opts interfaces.SendOptions) error {
	file, err := requestFile(photo)
	if err != nil {
		return err
	}
	msg := tgbotapi.NewPhoto(chatID, file)
	msg.Caption = truncateRunes(caption, MaxCaptionLength)
	msg.ReplyToMessageID = opts.ReplyToMessageID
	if opts.ReplyAction != nil {
		msg.ReplyMarkup = ReplyKeyboard(*opts.ReplyAction)
	}
	return t.send(ctx, msg)
}

func (t *TelegramClient) SendVideo(ctx context.Context, chatID int64, video entities.MediaRef, caption string, opts interfaces.SendOptions) error {
	file, err := requestFile(video)
	if err != nil {
		return err
	}
	msg := tgbotapi.NewVideo(chatID, file)
	msg.Caption = truncateRunes(caption, MaxCaptionLength)
	msg.ReplyToMessageID = opts.ReplyToMessageID
	if opts.ReplyAction != nil {
		msg.ReplyMarkup = ReplyKeyboard(*opts.ReplyAction)
	}
	return t.send(ctx, msg)
}

// AnswerCallback clears the loading indicator on the pressed button
func (t *TelegramClient) AnswerCallback(ctx context.Context, callbackID string) error {
	return t.request(ctx, tgbotapi.NewCallback(callbackID, ""))
}

func (t *TelegramClient) RegisterWebhook(ctx context.Context, url string) error {
	wh, err := tgbotapi.NewWebhook(url)
	if err != nil {
		return fmt.Errorf("invalid webhook url: %w", err)
	}
	if err := t.request(ctx, wh); err != nil {
		return fmt.Errorf("set webhook: %w", err)
	}
	return nil
}

func (t *TelegramClient) DeleteWebhook(ctx context.Context) error {
	if err := t.request(ctx, tgbotapi.DeleteWebhookConfig{}); err != nil {
		return fmt.Errorf("delete webhook: %w", err)
	}
	return nil
}

// Username returns the bot's @handle as reported by getMe
func (t *TelegramClient) Username() string {
	return t.Bot.Self.UserName
}

func (t *TelegramClient) send(ctx context.Context, c tgbotapi.Chattable) error {
	if err := t.throttle.Wait(ctx); err != nil {
		return err
	}
	_, err := t.Bot.Send(c)
	if err != nil {
		t.log.Debug("send failed", zap.Error(err))
	}
	return err
}

func (t *TelegramClient) request(ctx context.Context, c tgbotapi.Chattable) error {
	if err := t.throttle.Wait(ctx); err != nil {
		return err
	}
	_, err := t.Bot.Request(c)
	return err
}

func requestFile(ref entities.MediaRef) (tgbotapi.RequestFileData, error) {
	switch {
	case ref.FileID != "":
		return tgbotapi.FileID(ref.FileID), nil
	case ref.IsLocal():
		return tgbotapi.FilePath(ref.Path), nil
	default:
		return nil, errors.New("empty media reference")
	}
}

func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}
