package bot

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"
	"go.uber.org/zap"

	"github.com/guildwarden/guildwarden/internal/report"
	"github.com/guildwarden/guildwarden/internal/scanner"
	"github.com/guildwarden/guildwarden/internal/setup/config"
)

const (
	removalRemoved = "removed"
	removalSkipped = "skipped"
	removalFailed  = "failed"
)

type removalOutcome struct {
	Entry  report.Entry
	Status string
	Reason string
}

func (b *Bot) handleNuke(ctx *Context) error {
	limits := b.cfg.Limits

	status, err := b.sendMessage(ctx.ChannelID, "Scanning message history, this can take a while...")
	if err != nil {
		return err
	}

	result, err := b.scanner.Scan(ctx.Ctx, ctx.GuildID, b.scanOptions(true))
	if err != nil {
		return err
	}

	flags, botTopRole, err := b.memberSafety(ctx)
	if err != nil {
		return err
	}

	candidates := report.PruneCandidates(
		result.Records, ctx.Now, limits.PruneThresholdDays,
		flags, botTopRole, snowflake.ID(b.cfg.Bot.OwnerID))
	if len(candidates) == 0 {
		b.editMessage(ctx.ChannelID, status.ID,
			fmt.Sprintf("No members have been inactive for %d+ days. Nothing to do.",
				limits.PruneThresholdDays))
		return nil
	}

	prompt, err := b.client.Rest().CreateMessage(ctx.ChannelID,
		discord.NewMessageCreateBuilder().
			SetEmbeds(buildNukeSummaryEmbed(candidates, limits.PruneThresholdDays, limits.ConfirmTimeout)).
			Build())
	if err != nil {
		return fmt.Errorf("failed to send confirmation prompt: %w", err)
	}

	for _, emoji := range []string{emojiConfirm, emojiAbort} {
		if err := b.client.Rest().AddReaction(ctx.ChannelID, prompt.ID, emoji); err != nil {
			b.logger.Warn("Failed to add confirmation reaction", zap.Error(err))
		}
	}

	confirmed := b.awaitConfirmation(ctx.Ctx, prompt.ID, ctx.UserID,
		config.Seconds(limits.ConfirmTimeout))
	if !confirmed {
		b.Reply(ctx.ChannelID, "Nuke aborted. No members were removed.")
		return nil
	}

	outcomes := b.executeRemovals(ctx, candidates)
	b.replyEmbed(ctx.ChannelID, buildNukeReportEmbed(outcomes))
	return nil
}

// memberSafety gathers the per-member attributes the prune exclusions
// need: admin capability and highest role position, plus the bot's own
// highest role position.
func (b *Bot) memberSafety(ctx *Context) (map[snowflake.ID]report.MemberFlags, int, error) {
	members, err := b.history.Members(ctx.Ctx, ctx.GuildID)
	if err != nil {
		return nil, 0, err
	}

	roles, err := b.client.Rest().GetRoles(ctx.GuildID, rest.WithCtx(ctx.Ctx))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get guild roles: %w", err)
	}

	positions := make(map[snowflake.ID]int, len(roles))
	adminRoles := make(map[snowflake.ID]bool, len(roles))
	for _, role := range roles {
		positions[role.ID] = role.Position
		adminRoles[role.ID] = role.Permissions.Has(discord.PermissionAdministrator)
	}

	memberFlags := func(member scanner.Member) report.MemberFlags {
		var flags report.MemberFlags
		for _, roleID := range member.RoleIDs {
			if adminRoles[roleID] {
				flags.Admin = true
			}
			if position := positions[roleID]; position > flags.TopRolePosition {
				flags.TopRolePosition = position
			}
		}
		return flags
	}

	selfID := snowflake.ID(b.selfID.Load())
	botTopRole := 0
	flags := make(map[snowflake.ID]report.MemberFlags, len(members))
	for _, member := range members {
		memberFlag := memberFlags(member)
		if member.UserID == selfID {
			botTopRole = memberFlag.TopRolePosition
			continue
		}
		if member.Bot {
			continue
		}
		flags[member.UserID] = memberFlag
	}

	return flags, botTopRole, nil
}

// executeRemovals kicks each candidate sequentially with a fixed delay in
// between, so the platform's own rate limits are respected, and collects a
// per-member outcome.
func (b *Bot) executeRemovals(ctx *Context, candidates []report.Entry) []removalOutcome {
	delay := config.Seconds(b.cfg.Limits.KickDelay)
	outcomes := make([]removalOutcome, 0, len(candidates))

	for i, candidate := range candidates {
		if i > 0 {
			time.Sleep(delay)
		}

		reason := fmt.Sprintf("Inactive for %d days", candidate.DaysInactive)
		err := b.client.Rest().RemoveMember(ctx.GuildID, candidate.UserID,
			rest.WithReason(reason), rest.WithCtx(ctx.Ctx))

		switch {
		case err == nil:
			outcomes = append(outcomes, removalOutcome{Entry: candidate, Status: removalRemoved})
		case isNotFound(err):
			outcomes = append(outcomes, removalOutcome{
				Entry: candidate, Status: removalSkipped, Reason: "already left"})
		default:
			b.logger.Error("Failed to remove member",
				zap.Uint64("user_id", uint64(candidate.UserID)),
				zap.Error(err))
			outcomes = append(outcomes, removalOutcome{
				Entry: candidate, Status: removalFailed, Reason: err.Error()})
		}
	}

	return outcomes
}

func isNotFound(err error) bool {
	var restErr *rest.Error
	return errors.As(err, &restErr) &&
		restErr.Response != nil &&
		restErr.Response.StatusCode == http.StatusNotFound
}
