package bot

import (
	"context"
	"time"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/snowflake/v2"
)

const (
	emojiConfirm = "✅"
	emojiAbort   = "❌"
)

// awaitConfirmation waits for the requester to react to the prompt message
// with the confirm or abort emoji. Reactions from anyone else, on other
// messages, or with other emojis are ignored. Returns false on abort or
// once the timeout elapses.
func (b *Bot) awaitConfirmation(
	ctx context.Context, messageID, requesterID snowflake.ID, timeout time.Duration,
) bool {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	decision := make(chan bool, 1)
	listener := bot.NewListenerFunc(func(e *events.MessageReactionAdd) {
		if e.MessageID != messageID || e.UserID != requesterID || e.Emoji.Name == nil {
			return
		}

		switch *e.Emoji.Name {
		case emojiConfirm:
			select {
			case decision <- true:
			default:
			}
		case emojiAbort:
			select {
			case decision <- false:
			default:
			}
		}
	})

	b.client.AddEventListeners(listener)
	defer b.client.RemoveEventListeners(listener)

	select {
	case confirmed := <-decision:
		return confirmed
	case <-ctx.Done():
		return false
	}
}
