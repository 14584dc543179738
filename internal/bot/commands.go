package bot

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/guildwarden/guildwarden/internal/setup/config"
)

func (b *Bot) registerCommands() {
	limits := b.cfg.Limits
	b.router.Register(
		&Command{
			Name:        "help",
			Description: "lists available commands",
			Handler:     b.handleHelp,
		},
		&Command{
			Name:        "ping",
			Description: "checks the bot is alive",
			Handler:     b.handlePing,
		},
		&Command{
			Name:        "meme",
			Description: "fetches a random meme",
			Handler:     b.handleMeme,
		},
		&Command{
			Name:        "roastme",
			Description: "asks the AI to roast you",
			Cooldown:    config.Seconds(limits.RoastCooldown),
			Handler:     b.handleRoast,
		},
		&Command{
			Name:        "inactive",
			Description: "reports inactive members across all channels",
			Access:      AccessAuthorized,
			Cooldown:    config.Seconds(limits.ScanCooldown),
			Handler:     b.handleInactive,
		},
		&Command{
			Name:        "topchatter",
			Description: "shows the most active chatters",
			Cooldown:    config.Seconds(limits.ScanCooldown),
			Handler:     b.handleTopChatter,
		},
		&Command{
			Name:        "nuke",
			Description: "removes long-inactive members after confirmation",
			Access:      AccessOwner,
			Cooldown:    config.Seconds(limits.NukeCooldown),
			Handler:     b.handleNuke,
		},
	)
}

func (b *Bot) handleHelp(ctx *Context) error {
	names := b.router.CommandNames()
	listed := make([]string, len(names))
	for i, name := range names {
		listed[i] = b.cfg.Bot.Prefix + name
	}
	b.Reply(ctx.ChannelID, "Current commands: "+strings.Join(listed, ", "))
	return nil
}

func (b *Bot) handlePing(ctx *Context) error {
	b.Reply(ctx.ChannelID, "You pinged? :)")
	return nil
}

func (b *Bot) handleMeme(ctx *Context) error {
	meme, err := b.memes.Random(ctx.Ctx)
	if err != nil {
		b.logger.Warn("Meme fetch failed", zap.Error(err))
		b.Reply(ctx.ChannelID, "Couldn't fetch a meme right now. Try again later.")
		return nil
	}

	b.Reply(ctx.ChannelID, meme.URL)
	return nil
}

func (b *Bot) handleRoast(ctx *Context) error {
	roast, err := b.roasts.Roast(ctx.Ctx, ctx.Username)
	if err != nil {
		b.logger.Warn("Roast generation failed", zap.Error(err))
		b.Reply(ctx.ChannelID, "The roast machine is taking a break. Try again later.")
		return nil
	}

	b.Reply(ctx.ChannelID, fmt.Sprintf("<@%d> %s", ctx.UserID, roast))
	return nil
}
