package scanner

import (
	"context"
	"errors"
	"time"

	"github.com/disgoorg/snowflake/v2"
)

// ErrChannelUnreadable marks a channel whose history could not be read,
// typically because the bot lacks the read-history permission. Channels
// failing with this error are skipped without aborting the scan.
var ErrChannelUnreadable = errors.New("channel history is not readable")

// Channel identifies a scannable text channel.
type Channel struct {
	ID   snowflake.ID
	Name string
}

// Message is the slice of a platform message the aggregator needs.
type Message struct {
	ID         snowflake.ID
	AuthorID   snowflake.ID
	AuthorName string
	Bot        bool
	CreatedAt  time.Time
}

// Member is a guild member with the attributes used for seeding records
// and for prune safety checks.
type Member struct {
	UserID      snowflake.ID
	DisplayName string
	JoinedAt    time.Time
	Bot         bool
	RoleIDs     []snowflake.ID
}

// HistoryFetcher is the messaging-platform capability the scanner depends
// on. Messages returns up to limit messages older than before, newest first;
// a zero before means start from the most recent message.
type HistoryFetcher interface {
	TextChannels(ctx context.Context, guildID snowflake.ID) ([]Channel, error)
	Members(ctx context.Context, guildID snowflake.ID) ([]Member, error)
	Messages(ctx context.Context, channelID snowflake.ID, before snowflake.ID, limit int) ([]Message, error)
}

// UserActivityRecord aggregates one user's activity across all scanned
// channels. LastSeen starts at the member's join time and only ever moves
// forward as newer messages are found.
type UserActivityRecord struct {
	UserID       snowflake.ID
	DisplayName  string
	LastSeen     time.Time
	MessageCount int
}

// SkippedChannel records a channel the scan could not cover and why.
type SkippedChannel struct {
	ID     snowflake.ID
	Name   string
	Reason string
}

// ScanResult is the aggregate over all scanned channels. Records contains
// an entry for every member passed in, plus any departed users sighted in
// the history. A channel failing mid-pagination keeps the pages already
// folded into TotalMessages and Records while appearing in Skipped;
// ChannelsScanned counts only channels read to completion.
type ScanResult struct {
	TotalMessages   int
	ChannelsScanned int
	Skipped         []SkippedChannel
	Records         map[snowflake.ID]*UserActivityRecord
}

// Options controls the depth and parallelism of a scan.
type Options struct {
	// PageLimit caps how many messages are read per channel.
	PageLimit int
	// MaxConcurrency bounds how many channels are scanned in flight.
	MaxConcurrency int
}
