package bot

import (
	"fmt"
	"strings"

	"github.com/disgoorg/disgo/discord"

	"github.com/guildwarden/guildwarden/internal/report"
	"github.com/guildwarden/guildwarden/internal/scanner"
)

const (
	embedColorInfo    = 0x3498DB
	embedColorWarn    = 0xE67E22
	embedColorDanger  = 0xE74C3C
	embedColorSuccess = 0x2ECC71
)

// maxEntriesPerField keeps embed fields under Discord's length limits.
const maxEntriesPerField = 15

func scanFooter(result *scanner.ScanResult) string {
	return fmt.Sprintf("%d messages across %d channels, %d skipped",
		result.TotalMessages, result.ChannelsScanned, len(result.Skipped))
}

func buildInactivityEmbed(tiers []report.Tier, result *scanner.ScanResult) discord.Embed {
	builder := discord.NewEmbedBuilder().
		SetTitle("📉 Inactivity Report").
		SetColor(embedColorWarn).
		SetFooter(scanFooter(result), "")

	for _, tier := range tiers {
		if len(tier.Entries) == 0 {
			builder.AddField(tier.Label, "Nobody here. 🎉", false)
			continue
		}

		lines := make([]string, 0, maxEntriesPerField+1)
		for i, entry := range tier.Entries {
			if i == maxEntriesPerField {
				lines = append(lines, fmt.Sprintf("…and %d more", len(tier.Entries)-maxEntriesPerField))
				break
			}
			lines = append(lines, fmt.Sprintf("%s — %d days", entry.DisplayName, entry.DaysInactive))
		}
		builder.AddField(fmt.Sprintf("%s (%d)", tier.Label, len(tier.Entries)),
			strings.Join(lines, "\n"), false)
	}

	return builder.Build()
}

func buildLeaderboardEmbed(entries []report.Entry, result *scanner.ScanResult) discord.Embed {
	builder := discord.NewEmbedBuilder().
		SetTitle("🏆 Top Chatters").
		SetColor(embedColorInfo).
		SetFooter(scanFooter(result), "")

	if len(entries) == 0 {
		builder.SetDescription("Nobody has said anything yet.")
		return builder.Build()
	}

	medals := []string{"🥇", "🥈", "🥉"}
	lines := make([]string, len(entries))
	for i, entry := range entries {
		rank := fmt.Sprintf("%d.", i+1)
		if i < len(medals) {
			rank = medals[i]
		}
		lines[i] = fmt.Sprintf("%s %s — %d messages", rank, entry.DisplayName, entry.MessageCount)
	}
	builder.SetDescription(strings.Join(lines, "\n"))

	return builder.Build()
}

func buildNukeSummaryEmbed(candidates []report.Entry, thresholdDays, confirmTimeout int) discord.Embed {
	lines := make([]string, 0, maxEntriesPerField+1)
	for i, entry := range candidates {
		if i == maxEntriesPerField {
			lines = append(lines, fmt.Sprintf("…and %d more", len(candidates)-maxEntriesPerField))
			break
		}
		lines = append(lines, fmt.Sprintf("%s — %d days", entry.DisplayName, entry.DaysInactive))
	}

	return discord.NewEmbedBuilder().
		SetTitle("☢️ Nuke Confirmation").
		SetDescriptionf("%d members have been inactive for %d+ days and will be removed.",
			len(candidates), thresholdDays).
		AddField("Candidates", strings.Join(lines, "\n"), false).
		AddField("Confirm", fmt.Sprintf(
			"React with %s within %d seconds to proceed, %s to abort.",
			emojiConfirm, confirmTimeout, emojiAbort), false).
		SetColor(embedColorDanger).
		Build()
}

func buildNukeReportEmbed(outcomes []removalOutcome) discord.Embed {
	var removed, skipped, failed []string
	for _, outcome := range outcomes {
		line := outcome.Entry.DisplayName
		if outcome.Reason != "" {
			line = fmt.Sprintf("%s — %s", outcome.Entry.DisplayName, outcome.Reason)
		}
		switch outcome.Status {
		case removalRemoved:
			removed = append(removed, line)
		case removalSkipped:
			skipped = append(skipped, line)
		case removalFailed:
			failed = append(failed, line)
		}
	}

	builder := discord.NewEmbedBuilder().
		SetTitle("☢️ Nuke Report").
		SetDescriptionf("Removed %d, skipped %d, failed %d.",
			len(removed), len(skipped), len(failed)).
		SetColor(embedColorSuccess)

	addOutcomeField(builder, "Removed", removed)
	addOutcomeField(builder, "Skipped", skipped)
	addOutcomeField(builder, "Failed", failed)

	return builder.Build()
}

func addOutcomeField(builder *discord.EmbedBuilder, label string, lines []string) {
	if len(lines) == 0 {
		return
	}
	if len(lines) > maxEntriesPerField {
		lines = append(lines[:maxEntriesPerField],
			fmt.Sprintf("…and %d more", len(lines)-maxEntriesPerField))
	}
	builder.AddField(label, strings.Join(lines, "\n"), false)
}
