package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Messenger is the slice of the chat transport the rest of the app needs.
// Handlers and the relay depend on this, not on the Telegram client.
type Messenger interface {
	Send(chatID int64, text string) error
	SendMenu(chatID int64, text string, rows [][]string) error
	SendDocument(chatID int64, path, caption string) error
	FileURL(fileID string) (string, error)
}

// Telegram adapts tgbotapi to Messenger.
type Telegram struct {
	API *tgbotapi.BotAPI
}

func NewTelegram(token string) (*Telegram, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &Telegram{API: api}, nil
}

func (t *Telegram) Send(chatID int64, text string) error {
	_, err := t.API.Send(tgbotapi.NewMessage(chatID, text))
	return err
}

func (t *Telegram) SendMenu(chatID int64, text string, rows [][]string) error {
	keyboard := make([][]tgbotapi.KeyboardButton, 0, len(rows))
	for _, row := range rows {
		buttons := make([]tgbotapi.KeyboardButton, 0, len(row))
		for _, label := range row {
			buttons = append(buttons, tgbotapi.NewKeyboardButton(label))
		}
		keyboard = append(keyboard, buttons)
	}
	msg := tgbotapi.NewMessage(chatID, text)
	markup := tgbotapi.NewReplyKeyboard(keyboard...)
	markup.ResizeKeyboard = true
	msg.ReplyMarkup = markup
	_, err := t.API.Send(msg)
	return err
}

func (t *Telegram) SendDocument(chatID int64, path, caption string) error {
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FilePath(path))
	doc.Caption = caption
	_, err := t.API.Send(doc)
	return err
}

func (t *Telegram) FileURL(fileID string) (string, error) {
	return t.API.GetFileDirectURL(fileID)
}

// Inbound converts a Telegram update into the transport-neutral message
// the session machine consumes. The largest photo rendition wins.
func Inbound(upd tgbotapi.Update) (Message, bool) {
	if upd.Message == nil {
		return Message{}, false
	}
	msg := Message{ChatID: upd.Message.Chat.ID, Text: upd.Message.Text}
	if n := len(upd.Message.Photo); n > 0 {
		msg.PhotoID = upd.Message.Photo[n-1].FileID
	}
	return msg, true
}
