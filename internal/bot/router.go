package bot

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"go.uber.org/zap"

	"github.com/guildwarden/guildwarden/internal/guard"
)

// Access describes who may invoke a command.
type Access int

const (
	// AccessAny lets every guild member invoke the command.
	AccessAny Access = iota
	// AccessAuthorized restricts the command to the configured authorized
	// users and the owner.
	AccessAuthorized
	// AccessOwner restricts the command to the single owner identity.
	AccessOwner
)

const (
	deniedReply         = "You don't have permission to use this command."
	dmReply             = "Commands only work inside a server."
	genericFailureReply = "Something went wrong. Please try again."
)

// Context carries everything a command handler needs about the inbound
// message that triggered it.
type Context struct {
	Ctx       context.Context
	GuildID   snowflake.ID
	ChannelID snowflake.ID
	UserID    snowflake.ID
	Username  string
	Args      []string
	Now       time.Time
}

// Handler executes one command. A returned error is logged and answered
// with a generic failure reply; it never crashes the event loop.
type Handler func(ctx *Context) error

// Command declares a command's name, access requirement and cooldown. A
// zero cooldown means the command is cheap and only rate limited.
type Command struct {
	Name        string
	Description string
	Access      Access
	Cooldown    time.Duration
	Handler     Handler
}

// Replier sends plain-text replies back through the messaging platform.
type Replier interface {
	Reply(channelID snowflake.ID, content string)
}

// Inbound is the router's view of one received message event.
type Inbound struct {
	UserID    snowflake.ID
	Username  string
	ChannelID snowflake.ID
	GuildID   *snowflake.ID
	Content   string
	Timestamp time.Time
	Bot       bool
}

// RouterOptions bundles the router's dependencies.
type RouterOptions struct {
	Prefix        string
	OwnerID       snowflake.ID
	AuthorizedIDs []snowflake.ID
	Limiter       *guard.RateLimiter
	Spam          *guard.SpamGuard
	Cooldowns     *guard.CooldownRegistry
	Replier       Replier
	Logger        *zap.Logger
}

// Router resolves inbound messages to command handlers, applying the spam,
// rate-limit, access and cooldown gates in a fixed order.
type Router struct {
	prefix     string
	ownerID    snowflake.ID
	authorized map[snowflake.ID]struct{}
	commands   map[string]*Command
	order      []string
	limiter    *guard.RateLimiter
	spam       *guard.SpamGuard
	cooldowns  *guard.CooldownRegistry
	replier    Replier
	logger     *zap.Logger
}

// NewRouter creates a router with an empty command registry.
func NewRouter(opts RouterOptions) *Router {
	authorized := make(map[snowflake.ID]struct{}, len(opts.AuthorizedIDs))
	for _, id := range opts.AuthorizedIDs {
		authorized[id] = struct{}{}
	}

	return &Router{
		prefix:     opts.Prefix,
		ownerID:    opts.OwnerID,
		authorized: authorized,
		commands:   make(map[string]*Command),
		limiter:    opts.Limiter,
		spam:       opts.Spam,
		cooldowns:  opts.Cooldowns,
		replier:    opts.Replier,
		logger:     opts.Logger.Named("router"),
	}
}

// Register adds commands to the registry. Registration order is the order
// the help listing uses.
func (r *Router) Register(commands ...*Command) {
	for _, cmd := range commands {
		r.commands[cmd.Name] = cmd
		r.order = append(r.order, cmd.Name)
	}
}

// CommandNames returns the registered command names in registration order.
func (r *Router) CommandNames() []string {
	return r.order
}

// Handle runs one inbound message through the full gate pipeline and
// dispatches the resolved command, if any.
func (r *Router) Handle(ctx context.Context, msg Inbound) {
	if msg.Bot {
		return
	}
	now := msg.Timestamp

	// DMs are rejected outright; only prefixed messages get a notice so
	// the bot doesn't answer every stray DM.
	if msg.GuildID == nil {
		if strings.HasPrefix(msg.Content, r.prefix) {
			r.replier.Reply(msg.ChannelID, dmReply)
		}
		return
	}

	// Muted users are dropped silently. The only notification they get is
	// the one sent at the moment the mute started.
	if r.spam.IsMuted(msg.UserID, now) {
		return
	}

	// Every guild message counts toward the spam window, command or not.
	if r.spam.Record(msg.UserID, now) {
		until := r.spam.Mute(msg.UserID, now)
		r.logger.Info("User muted for spamming",
			zap.Uint64("user_id", uint64(msg.UserID)),
			zap.Time("until", until))
		r.replier.Reply(msg.ChannelID, fmt.Sprintf(
			"<@%d> You're sending messages too quickly and have been muted until <t:%d:T>.",
			msg.UserID, until.Unix()))
		return
	}

	if !strings.HasPrefix(msg.Content, r.prefix) {
		return
	}

	fields := strings.Fields(msg.Content)
	if len(fields) == 0 {
		return
	}

	cmd, ok := r.commands[strings.TrimPrefix(fields[0], r.prefix)]
	if !ok {
		// Unknown commands are ignored without a reply, on purpose.
		return
	}

	if allowed, retryAfter := r.limiter.Check(msg.UserID, now); !allowed {
		// This reply repeats on every rejected attempt; that matches the
		// observed behavior and is deliberately not throttled.
		r.replier.Reply(msg.ChannelID, fmt.Sprintf(
			"You're doing that too fast. Try again in %.1fs.", retryAfter.Seconds()))
		return
	}

	if !r.hasAccess(cmd.Access, msg.UserID) {
		r.replier.Reply(msg.ChannelID, deniedReply)
		return
	}

	// Cooldown comes after the access check so a denied attempt never
	// consumes it.
	if cmd.Cooldown > 0 {
		if allowed, retryAfter := r.cooldowns.Check(msg.UserID, cmd.Name, cmd.Cooldown, now); !allowed {
			r.replier.Reply(msg.ChannelID, fmt.Sprintf("%s%s is on cooldown. Try again in %.0fs.",
				r.prefix, cmd.Name, math.Ceil(retryAfter.Seconds())))
			return
		}
	}

	r.execute(ctx, cmd, msg, now)
}

func (r *Router) execute(ctx context.Context, cmd *Command, msg Inbound, now time.Time) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("Command handler panicked",
				zap.String("command", cmd.Name),
				zap.Uint64("user_id", uint64(msg.UserID)),
				zap.Any("panic", rec))
			r.replier.Reply(msg.ChannelID, genericFailureReply)
		}
	}()

	cmdCtx := &Context{
		Ctx:       ctx,
		GuildID:   *msg.GuildID,
		ChannelID: msg.ChannelID,
		UserID:    msg.UserID,
		Username:  msg.Username,
		Args:      strings.Fields(msg.Content)[1:],
		Now:       now,
	}

	if err := cmd.Handler(cmdCtx); err != nil {
		r.logger.Error("Command failed",
			zap.String("command", cmd.Name),
			zap.Uint64("user_id", uint64(msg.UserID)),
			zap.Error(err))
		r.replier.Reply(msg.ChannelID, genericFailureReply)
	}
}

func (r *Router) hasAccess(access Access, userID snowflake.ID) bool {
	switch access {
	case AccessAuthorized:
		if userID == r.ownerID {
			return true
		}
		_, ok := r.authorized[userID]
		return ok
	case AccessOwner:
		return userID == r.ownerID
	default:
		return true
	}
}
