package bot

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"

	"github.com/guildwarden/guildwarden/internal/scanner"
)

// memberPageSize is the largest member page Discord serves per request.
const memberPageSize = 1000

// historyClient adapts the Discord REST API to the scanner's
// HistoryFetcher interface.
type historyClient struct {
	rest rest.Rest
}

func (h *historyClient) TextChannels(ctx context.Context, guildID snowflake.ID) ([]scanner.Channel, error) {
	channels, err := h.rest.GetGuildChannels(guildID, rest.WithCtx(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to get guild channels: %w", err)
	}

	textChannels := make([]scanner.Channel, 0, len(channels))
	for _, channel := range channels {
		if channel.Type() != discord.ChannelTypeGuildText {
			continue
		}
		textChannels = append(textChannels, scanner.Channel{
			ID:   channel.ID(),
			Name: channel.Name(),
		})
	}
	return textChannels, nil
}

func (h *historyClient) Members(ctx context.Context, guildID snowflake.ID) ([]scanner.Member, error) {
	var members []scanner.Member
	var after snowflake.ID

	for {
		chunk, err := h.rest.GetMembers(guildID, memberPageSize, after, rest.WithCtx(ctx))
		if err != nil {
			return nil, fmt.Errorf("failed to get guild members: %w", err)
		}

		for _, member := range chunk {
			members = append(members, scanner.Member{
				UserID:      member.User.ID,
				DisplayName: member.EffectiveName(),
				JoinedAt:    member.JoinedAt,
				Bot:         member.User.Bot,
				RoleIDs:     member.RoleIDs,
			})
		}

		if len(chunk) < memberPageSize {
			return members, nil
		}
		after = chunk[len(chunk)-1].User.ID
	}
}

func (h *historyClient) Messages(
	ctx context.Context, channelID snowflake.ID, before snowflake.ID, limit int,
) ([]scanner.Message, error) {
	messages, err := h.rest.GetMessages(channelID, 0, before, 0, limit, rest.WithCtx(ctx))
	if err != nil {
		if isForbidden(err) {
			return nil, fmt.Errorf("%w: %w", scanner.ErrChannelUnreadable, err)
		}
		return nil, fmt.Errorf("failed to get messages: %w", err)
	}

	result := make([]scanner.Message, len(messages))
	for i, msg := range messages {
		result[i] = scanner.Message{
			ID:         msg.ID,
			AuthorID:   msg.Author.ID,
			AuthorName: msg.Author.EffectiveName(),
			Bot:        msg.Author.Bot || msg.Author.System,
			CreatedAt:  msg.CreatedAt,
		}
	}
	return result, nil
}

func isForbidden(err error) bool {
	var restErr *rest.Error
	return errors.As(err, &restErr) &&
		restErr.Response != nil &&
		restErr.Response.StatusCode == http.StatusForbidden
}
