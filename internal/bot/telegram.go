package bot

import (
	"context"
	"strings"

	"github.com/go-telegram/bot/models"
)

// HandleUpdate converts a Telegram update into an event and handles it.
// Updates without a text message or sender are dropped.
func (b *Bot) HandleUpdate(ctx context.Context, u *models.Update) {
	if u == nil {
		return
	}
	msg := u.Message
	if msg == nil || msg.From == nil || msg.Text == "" {
		return
	}
	b.Handle(ctx, ParseEvent(msg.From.ID, msg.Chat.ID, msg.Text))
}

// BotCommands returns the command menu in Bot API form. The Bot API only
// accepts lower-case command names; typed commands match case-insensitively.
func BotCommands() []models.BotCommand {
	cmds := make([]models.BotCommand, len(Commands))
	for i, c := range Commands {
		cmds[i] = models.BotCommand{Command: strings.ToLower(c.Name), Description: c.Description}
	}
	return cmds
}
