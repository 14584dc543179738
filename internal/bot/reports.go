package bot

import (
	"github.com/guildwarden/guildwarden/internal/report"
)

// leaderboardSize caps how many chatters the leaderboard shows.
const leaderboardSize = 10

func (b *Bot) handleInactive(ctx *Context) error {
	status, err := b.sendMessage(ctx.ChannelID, "Scanning message history, this can take a while...")
	if err != nil {
		return err
	}

	result, err := b.scanner.Scan(ctx.Ctx, ctx.GuildID, b.scanOptions(true))
	if err != nil {
		return err
	}

	tiers := report.InactivityBuckets(result.Records, ctx.Now)
	b.editToEmbed(ctx.ChannelID, status.ID, buildInactivityEmbed(tiers, result))
	return nil
}

func (b *Bot) handleTopChatter(ctx *Context) error {
	status, err := b.sendMessage(ctx.ChannelID, "Counting messages...")
	if err != nil {
		return err
	}

	result, err := b.scanner.Scan(ctx.Ctx, ctx.GuildID, b.scanOptions(false))
	if err != nil {
		return err
	}

	entries := report.Leaderboard(result.Records, ctx.Now, leaderboardSize)
	b.editToEmbed(ctx.ChannelID, status.ID, buildLeaderboardEmbed(entries, result))
	return nil
}
