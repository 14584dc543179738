// Package report turns scan aggregates into ranked report structures. All
// functions here are pure; they depend only on their inputs.
package report

import (
	"sort"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/samber/lo"

	"github.com/guildwarden/guildwarden/internal/scanner"
)

// Entry is one user's row in a report.
type Entry struct {
	UserID       snowflake.ID
	DisplayName  string
	LastSeen     time.Time
	DaysInactive int
	MessageCount int
}

// Tier is one inactivity bucket. MaxDays of zero means unbounded.
type Tier struct {
	Label   string
	MinDays int
	MaxDays int
	Entries []Entry
}

// MemberFlags carries the per-member attributes the prune safety checks
// need. Only current members have flags; users sighted in history but no
// longer in the guild cannot be pruned.
type MemberFlags struct {
	Admin           bool
	TopRolePosition int
}

// DaysInactive returns the whole days elapsed since the user was last seen.
func DaysInactive(record *scanner.UserActivityRecord, now time.Time) int {
	if days := int(now.Sub(record.LastSeen).Hours() / 24); days > 0 {
		return days
	}
	return 0
}

func entry(record *scanner.UserActivityRecord, now time.Time) Entry {
	return Entry{
		UserID:       record.UserID,
		DisplayName:  record.DisplayName,
		LastSeen:     record.LastSeen,
		DaysInactive: DaysInactive(record, now),
		MessageCount: record.MessageCount,
	}
}

// InactivityBuckets partitions users into the [7,14), [14,30) and [30,∞)
// day tiers. A user exactly on a boundary lands in the higher tier. Tiers
// are sorted by days inactive descending; ties break by ascending user ID
// so the output is deterministic.
func InactivityBuckets(records map[snowflake.ID]*scanner.UserActivityRecord, now time.Time) []Tier {
	tiers := []Tier{
		{Label: "7-13 days", MinDays: 7, MaxDays: 14},
		{Label: "14-29 days", MinDays: 14, MaxDays: 30},
		{Label: "30+ days", MinDays: 30},
	}

	entries := lo.MapToSlice(records, func(_ snowflake.ID, record *scanner.UserActivityRecord) Entry {
		return entry(record, now)
	})

	for i := range tiers {
		tier := &tiers[i]
		tier.Entries = lo.Filter(entries, func(e Entry, _ int) bool {
			if e.DaysInactive < tier.MinDays {
				return false
			}
			return tier.MaxDays == 0 || e.DaysInactive < tier.MaxDays
		})
		sortEntries(tier.Entries, func(a, b Entry) bool {
			return a.DaysInactive > b.DaysInactive
		})
	}

	return tiers
}

// Leaderboard ranks users by message count descending, dropping users with
// no messages on record. Ties break by ascending user ID. At most limit
// entries are returned; a non-positive limit returns everything.
func Leaderboard(records map[snowflake.ID]*scanner.UserActivityRecord, now time.Time, limit int) []Entry {
	entries := lo.MapToSlice(records, func(_ snowflake.ID, record *scanner.UserActivityRecord) Entry {
		return entry(record, now)
	})
	entries = lo.Filter(entries, func(e Entry, _ int) bool {
		return e.MessageCount > 0
	})

	sortEntries(entries, func(a, b Entry) bool {
		return a.MessageCount > b.MessageCount
	})

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}

// PruneCandidates selects users inactive for at least thresholdDays that
// are safe to remove. Administrators, members whose highest role is at or
// above the bot's own highest role, and the super-owner are excluded
// unconditionally. Users without member flags are no longer in the guild
// and are excluded as well.
func PruneCandidates(
	records map[snowflake.ID]*scanner.UserActivityRecord,
	now time.Time,
	thresholdDays int,
	flags map[snowflake.ID]MemberFlags,
	botTopRolePosition int,
	superOwnerID snowflake.ID,
) []Entry {
	candidates := make([]Entry, 0)

	for userID, record := range records {
		memberFlags, present := flags[userID]
		if !present {
			continue
		}
		if userID == superOwnerID || memberFlags.Admin || memberFlags.TopRolePosition >= botTopRolePosition {
			continue
		}
		if e := entry(record, now); e.DaysInactive >= thresholdDays {
			candidates = append(candidates, e)
		}
	}

	sortEntries(candidates, func(a, b Entry) bool {
		return a.DaysInactive > b.DaysInactive
	})
	return candidates
}

// sortEntries sorts stably by the given ordering, breaking remaining ties
// by ascending user ID.
func sortEntries(entries []Entry, less func(a, b Entry) bool) {
	sort.Slice(entries, func(i, j int) bool {
		if less(entries[i], entries[j]) {
			return true
		}
		if less(entries[j], entries[i]) {
			return false
		}
		return entries[i].UserID < entries[j].UserID
	})
}
