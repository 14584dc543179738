package report

import (
	"testing"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guildwarden/guildwarden/internal/scanner"
)

var now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func record(id snowflake.ID, daysAgo int, count int) *scanner.UserActivityRecord {
	return &scanner.UserActivityRecord{
		UserID:       id,
		DisplayName:  "user",
		LastSeen:     now.AddDate(0, 0, -daysAgo),
		MessageCount: count,
	}
}

func records(recs ...*scanner.UserActivityRecord) map[snowflake.ID]*scanner.UserActivityRecord {
	m := make(map[snowflake.ID]*scanner.UserActivityRecord, len(recs))
	for _, r := range recs {
		m[r.UserID] = r
	}
	return m
}

func tierUserIDs(tier Tier) []snowflake.ID {
	ids := make([]snowflake.ID, len(tier.Entries))
	for i, e := range tier.Entries {
		ids[i] = e.UserID
	}
	return ids
}

func TestInactivityBuckets(t *testing.T) {
	t.Run("users land in the right tiers", func(t *testing.T) {
		tiers := InactivityBuckets(records(
			record(1, 3, 5),   // active, no tier
			record(2, 8, 5),   // 7-13
			record(3, 20, 5),  // 14-29
			record(4, 45, 5),  // 30+
		), now)

		require.Len(t, tiers, 3)
		assert.Equal(t, []snowflake.ID{2}, tierUserIDs(tiers[0]))
		assert.Equal(t, []snowflake.ID{3}, tierUserIDs(tiers[1]))
		assert.Equal(t, []snowflake.ID{4}, tierUserIDs(tiers[2]))
	})

	t.Run("boundary goes to the higher tier", func(t *testing.T) {
		tiers := InactivityBuckets(records(
			record(1, 7, 0),
			record(2, 14, 0),
			record(3, 30, 0),
		), now)

		assert.Equal(t, []snowflake.ID{1}, tierUserIDs(tiers[0]))
		assert.Equal(t, []snowflake.ID{2}, tierUserIDs(tiers[1]))
		assert.Equal(t, []snowflake.ID{3}, tierUserIDs(tiers[2]))
	})

	t.Run("tiers sort by days inactive descending with id tie-break", func(t *testing.T) {
		tiers := InactivityBuckets(records(
			record(5, 8, 0),
			record(1, 12, 0),
			record(9, 8, 0),
		), now)

		assert.Equal(t, []snowflake.ID{1, 5, 9}, tierUserIDs(tiers[0]))
	})

	t.Run("empty input yields empty tiers", func(t *testing.T) {
		tiers := InactivityBuckets(records(), now)
		for _, tier := range tiers {
			assert.Empty(t, tier.Entries)
		}
	})
}

func TestLeaderboard(t *testing.T) {
	t.Run("ranks by message count descending", func(t *testing.T) {
		entries := Leaderboard(records(
			record(1, 0, 5),
			record(2, 0, 50),
			record(3, 0, 20),
		), now, 10)

		require.Len(t, entries, 3)
		assert.Equal(t, snowflake.ID(2), entries[0].UserID)
		assert.Equal(t, snowflake.ID(3), entries[1].UserID)
		assert.Equal(t, snowflake.ID(1), entries[2].UserID)
	})

	t.Run("users with zero messages are dropped", func(t *testing.T) {
		entries := Leaderboard(records(record(1, 0, 0), record(2, 0, 1)), now, 10)
		require.Len(t, entries, 1)
		assert.Equal(t, snowflake.ID(2), entries[0].UserID)
	})

	t.Run("ties break by ascending user id", func(t *testing.T) {
		entries := Leaderboard(records(record(7, 0, 3), record(2, 0, 3)), now, 10)
		require.Len(t, entries, 2)
		assert.Equal(t, snowflake.ID(2), entries[0].UserID)
	})

	t.Run("limit caps the output", func(t *testing.T) {
		entries := Leaderboard(records(
			record(1, 0, 1), record(2, 0, 2), record(3, 0, 3),
		), now, 2)
		assert.Len(t, entries, 2)
	})
}

func TestPruneCandidates(t *testing.T) {
	const threshold = 60
	superOwner := snowflake.ID(999)

	memberFlags := func(ids ...snowflake.ID) map[snowflake.ID]MemberFlags {
		m := make(map[snowflake.ID]MemberFlags, len(ids))
		for _, id := range ids {
			m[id] = MemberFlags{}
		}
		return m
	}

	t.Run("selects members past the threshold", func(t *testing.T) {
		candidates := PruneCandidates(records(
			record(1, 100, 0),
			record(2, 59, 0),
			record(3, 60, 0),
		), now, threshold, memberFlags(1, 2, 3), 10, superOwner)

		require.Len(t, candidates, 2)
		assert.Equal(t, snowflake.ID(1), candidates[0].UserID)
		assert.Equal(t, snowflake.ID(3), candidates[1].UserID)
	})

	t.Run("administrators are never pruned", func(t *testing.T) {
		flags := map[snowflake.ID]MemberFlags{1: {Admin: true}}
		candidates := PruneCandidates(records(record(1, 100, 0)), now, threshold, flags, 10, superOwner)
		assert.Empty(t, candidates)
	})

	t.Run("members at or above the bot role are never pruned", func(t *testing.T) {
		flags := map[snowflake.ID]MemberFlags{
			1: {TopRolePosition: 10},
			2: {TopRolePosition: 12},
		}
		candidates := PruneCandidates(
			records(record(1, 100, 0), record(2, 100, 0)), now, threshold, flags, 10, superOwner)
		assert.Empty(t, candidates)
	})

	t.Run("super-owner is never pruned", func(t *testing.T) {
		candidates := PruneCandidates(
			records(record(superOwner, 300, 0)), now, threshold, memberFlags(superOwner), 10, superOwner)
		assert.Empty(t, candidates)
	})

	t.Run("departed users are not candidates", func(t *testing.T) {
		candidates := PruneCandidates(
			records(record(1, 100, 0)), now, threshold, memberFlags(), 10, superOwner)
		assert.Empty(t, candidates)
	})
}
