// Package telegram adapts the Telegram Bot API to the chat boundary: it turns
// updates into chat events and implements chat.Messenger.
package telegram

import (
	"context"
	"fmt"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/dmitrijs2005/tokenbot/internal/chat"
	"github.com/dmitrijs2005/tokenbot/internal/logging"
	"github.com/dmitrijs2005/tokenbot/internal/netx"
)

// api is the subset of *tgbotapi.BotAPI the adapter uses.
type api interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

var newBotAPI = func(token string, client *http.Client) (api, error) {
	return tgbotapi.NewBotAPIWithClient(token, tgbotapi.APIEndpoint, client)
}

type Bot struct {
	api    api
	client *http.Client
	logger logging.Logger
}

var _ chat.Messenger = (*Bot)(nil)

// New connects to the Bot API with token. client is used both for API calls
// and for file downloads.
func New(token string, client *http.Client, logger logging.Logger) (*Bot, error) {
	if client == nil {
		client = http.DefaultClient
	}
	a, err := newBotAPI(token, client)
	if err != nil {
		return nil, fmt.Errorf("telegram init: %w", err)
	}
	return &Bot{api: a, client: client, logger: logger.With("module", "telegram")}, nil
}

func (b *Bot) SendText(ctx context.Context, chatID int64, text string, kb chat.Keyboard) (int, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	if len(kb) > 0 {
		msg.ReplyMarkup = markup(kb)
	}
	sent, err := b.api.Send(msg)
	if err != nil {
		return 0, fmt.Errorf("telegram send: %w", err)
	}
	return sent.MessageID, nil
}

// EditText replaces a message in place. An empty kb removes the keyboard.
func (b *Bot) EditText(ctx context.Context, chatID int64, messageID int, text string, kb chat.Keyboard) error {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	if len(kb) > 0 {
		m := markup(kb)
		edit.ReplyMarkup = &m
	}
	if _, err := b.api.Request(edit); err != nil {
		return fmt.Errorf("telegram edit: %w", err)
	}
	return nil
}

func (b *Bot) DownloadFile(ctx context.Context, fileID, path string) error {
	url, err := b.api.GetFileDirectURL(fileID)
	if err != nil {
		return fmt.Errorf("telegram file url: %w", err)
	}
	if err := netx.DownloadToFile(ctx, b.client, url, path); err != nil {
		return fmt.Errorf("telegram download: %w", err)
	}
	return nil
}

func markup(kb chat.Keyboard) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(kb))
	for _, r := range kb {
		row := make([]tgbotapi.InlineKeyboardButton, 0, len(r))
		for _, btn := range r {
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(btn.Text, btn.Payload))
		}
		rows = append(rows, row)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
