// Package notify sends operational notices to the bot admins
package notify

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/hiddify/hidyctl/internal/botdb"
)

// sender matches the one BotAPI method used, so tests can fake it
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Notifier delivers short Telegram messages to the bot admin chats
type Notifier struct {
	api      sender
	adminIDs []int64
}

// New creates a notifier from admin credentials stored in the bot
// database.
func New(dbPath string) (*Notifier, error) {
	creds, err := botdb.AdminCredentials(dbPath)
	if err != nil {
		return nil, err
	}

	api, err := tgbotapi.NewBotAPI(creds.AdminToken)
	if err != nil {
		return nil, fmt.Errorf("create bot client: %w", err)
	}
	api.Debug = false

	return &Notifier{api: api, adminIDs: creds.AdminIDs}, nil
}

// Send delivers text to every admin chat. Partial delivery returns
// the first error but still attempts the remaining chats.
func (n *Notifier) Send(text string) error {
	var firstErr error
	for _, chatID := range n.adminIDs {
		msg := tgbotapi.NewMessage(chatID, text)
		if _, err := n.api.Send(msg); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("notify admin %d: %w", chatID, err)
		}
	}
	return firstErr
}
