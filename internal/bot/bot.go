// Package bot wires the Discord client to the command router, the
// moderation guards, the history scanner and the content providers.
package bot

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/disgoorg/disgo"
	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/disgo/gateway"
	"github.com/disgoorg/snowflake/v2"
	"go.uber.org/zap"

	"github.com/guildwarden/guildwarden/internal/guard"
	"github.com/guildwarden/guildwarden/internal/provider"
	"github.com/guildwarden/guildwarden/internal/scanner"
	"github.com/guildwarden/guildwarden/internal/setup/config"
)

// Bot owns all components needed to process Discord message events.
type Bot struct {
	cfg     *config.Config
	client  bot.Client
	router  *Router
	history *historyClient
	scanner *scanner.Scanner
	roasts  *provider.RoastClient
	memes   *provider.MemeClient
	logger  *zap.Logger
	selfID  atomic.Uint64
}

// New builds the bot: guards, router, providers, scanner and the Discord
// client with its gateway intents and event listeners.
func New(cfg *config.Config, logger *zap.Logger) (*Bot, error) {
	providerTimeout := config.Seconds(cfg.Provider.RequestTimeout)

	b := &Bot{
		cfg:    cfg,
		logger: logger.Named("bot"),
		roasts: provider.NewRoastClient(cfg.Provider.OpenAIKey, cfg.Provider.OpenAIModel, providerTimeout, logger),
		memes:  provider.NewMemeClient(cfg.Provider.MemeURL, cfg.Provider.MemeToken, providerTimeout, logger),
	}

	authorized := make([]snowflake.ID, 0, len(cfg.Bot.AuthorizedIDs))
	for _, id := range cfg.Bot.AuthorizedIDs {
		authorized = append(authorized, snowflake.ID(id))
	}

	limits := cfg.Limits
	b.router = NewRouter(RouterOptions{
		Prefix:        cfg.Bot.Prefix,
		OwnerID:       snowflake.ID(cfg.Bot.OwnerID),
		AuthorizedIDs: authorized,
		Limiter:       guard.NewRateLimiter(config.Seconds(limits.RateLimitInterval)),
		Spam: guard.NewSpamGuard(
			config.Seconds(limits.SpamWindow), limits.MaxMessagesPerWindow, config.Seconds(limits.MuteDuration)),
		Cooldowns: guard.NewCooldownRegistry(),
		Replier:   b,
		Logger:    logger,
	})
	b.registerCommands()

	client, err := disgo.New(cfg.Bot.Token,
		bot.WithGatewayConfigOpts(
			gateway.WithIntents(
				gateway.IntentGuilds,
				gateway.IntentGuildMessages,
				gateway.IntentGuildMembers,
				gateway.IntentGuildMessageReactions,
				gateway.IntentDirectMessages,
				gateway.IntentMessageContent,
			),
		),
		// Events run on their own goroutines so a long scan never blocks
		// unrelated commands.
		bot.WithEventManagerConfigOpts(bot.WithAsyncEventsEnabled()),
		bot.WithEventListeners(&events.ListenerAdapter{
			OnReady:         b.onReady,
			OnMessageCreate: b.onMessageCreate,
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord client: %w", err)
	}

	b.client = client
	b.history = &historyClient{rest: client.Rest()}
	b.scanner = scanner.New(b.history, logger)
	return b, nil
}

// Start opens the gateway connection, retrying with exponential backoff so
// a transient outage at boot does not kill the process.
func (b *Bot) Start(ctx context.Context) error {
	policy := backoff.WithMaxRetries(backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(time.Second),
		backoff.WithMaxInterval(30*time.Second),
	), 5)

	operation := func() error {
		return b.client.OpenGateway(ctx)
	}
	if err := backoff.Retry(operation, backoff.WithContext(policy, ctx)); err != nil {
		return fmt.Errorf("failed to open gateway: %w", err)
	}

	return nil
}

// Close shuts the gateway connection down cleanly.
func (b *Bot) Close(ctx context.Context) {
	b.client.Close(ctx)
}

func (b *Bot) onReady(e *events.Ready) {
	b.selfID.Store(uint64(e.User.ID))
	b.logger.Info("Bot has logged in",
		zap.String("username", e.User.Username),
		zap.Uint64("user_id", uint64(e.User.ID)))
}

func (b *Bot) onMessageCreate(e *events.MessageCreate) {
	msg := e.Message
	b.router.Handle(context.Background(), Inbound{
		UserID:    msg.Author.ID,
		Username:  msg.Author.EffectiveName(),
		ChannelID: e.ChannelID,
		GuildID:   e.GuildID,
		Content:   msg.Content,
		Timestamp: msg.CreatedAt,
		Bot:       msg.Author.Bot || msg.Author.System,
	})
}

// Reply sends a plain-text message, logging instead of propagating send
// failures so one undeliverable reply never fails a command.
func (b *Bot) Reply(channelID snowflake.ID, content string) {
	_, err := b.client.Rest().CreateMessage(channelID,
		discord.NewMessageCreateBuilder().SetContent(content).Build())
	if err != nil {
		b.logger.Error("Failed to send reply",
			zap.Uint64("channel_id", uint64(channelID)),
			zap.Error(err))
	}
}

func (b *Bot) replyEmbed(channelID snowflake.ID, embed discord.Embed) {
	_, err := b.client.Rest().CreateMessage(channelID,
		discord.NewMessageCreateBuilder().SetEmbeds(embed).Build())
	if err != nil {
		b.logger.Error("Failed to send embed",
			zap.Uint64("channel_id", uint64(channelID)),
			zap.Error(err))
	}
}

func (b *Bot) sendMessage(channelID snowflake.ID, content string) (*discord.Message, error) {
	msg, err := b.client.Rest().CreateMessage(channelID,
		discord.NewMessageCreateBuilder().SetContent(content).Build())
	if err != nil {
		return nil, fmt.Errorf("failed to send message: %w", err)
	}
	return msg, nil
}

// editToEmbed replaces a status message's text with a finished embed.
func (b *Bot) editToEmbed(channelID, messageID snowflake.ID, embed discord.Embed) {
	_, err := b.client.Rest().UpdateMessage(channelID, messageID,
		discord.NewMessageUpdateBuilder().SetContent("").SetEmbeds(embed).Build())
	if err != nil {
		b.logger.Error("Failed to edit message",
			zap.Uint64("channel_id", uint64(channelID)),
			zap.Error(err))
	}
}

func (b *Bot) editMessage(channelID, messageID snowflake.ID, content string) {
	_, err := b.client.Rest().UpdateMessage(channelID, messageID,
		discord.NewMessageUpdateBuilder().SetContent(content).Build())
	if err != nil {
		b.logger.Error("Failed to edit message",
			zap.Uint64("channel_id", uint64(channelID)),
			zap.Error(err))
	}
}

func (b *Bot) scanOptions(deep bool) scanner.Options {
	limits := b.cfg.Limits
	pageLimit := limits.QuickScanPageLimit
	if deep {
		pageLimit = limits.DeepScanPageLimit
	}
	return scanner.Options{
		PageLimit:      pageLimit,
		MaxConcurrency: limits.ScanConcurrency,
	}
}
