// Package scanner walks the message history of every readable text channel
// in a guild and folds each non-bot message into a per-user activity record.
// One unreadable channel never fails the scan; partial results are always
// produced.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

// restPageSize is the largest page the platform serves per history request.
const restPageSize = 100

// Scanner produces ScanResults for a guild using a HistoryFetcher.
type Scanner struct {
	fetcher HistoryFetcher
	logger  *zap.Logger
}

// New creates a Scanner.
func New(fetcher HistoryFetcher, logger *zap.Logger) *Scanner {
	return &Scanner{
		fetcher: fetcher,
		logger:  logger.Named("scanner"),
	}
}

// Scan aggregates activity across all text channels of the guild. Channels
// are scanned concurrently up to opts.MaxConcurrency; aggregation mutations
// happen under a short-held mutex. Failing to list members or channels fails
// the scan, since nothing useful can be produced without them; every
// per-channel failure is only recorded as a skip.
func (s *Scanner) Scan(ctx context.Context, guildID snowflake.ID, opts Options) (*ScanResult, error) {
	members, err := s.fetcher.Members(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to list guild members: %w", err)
	}

	channels, err := s.fetcher.TextChannels(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to list guild channels: %w", err)
	}

	// Seed one record per human member using their join time as the
	// last-seen floor, so members with no messages still appear.
	result := &ScanResult{
		Records: make(map[snowflake.ID]*UserActivityRecord, len(members)),
	}
	for _, member := range members {
		if member.Bot {
			continue
		}
		result.Records[member.UserID] = &UserActivityRecord{
			UserID:      member.UserID,
			DisplayName: member.DisplayName,
			LastSeen:    member.JoinedAt,
		}
	}

	concurrency := opts.MaxConcurrency
	if concurrency < 1 {
		concurrency = 1
	}

	var mu sync.Mutex
	p := pool.New().WithMaxGoroutines(concurrency)

	for _, channel := range channels {
		p.Go(func() {
			scanned, err := s.scanChannel(ctx, channel, opts.PageLimit, func(messages []Message) {
				mu.Lock()
				defer mu.Unlock()
				for _, msg := range messages {
					if msg.Bot {
						continue
					}
					result.TotalMessages++

					record, ok := result.Records[msg.AuthorID]
					if !ok {
						// Departed user sighted in history.
						record = &UserActivityRecord{
							UserID:      msg.AuthorID,
							DisplayName: msg.AuthorName,
							LastSeen:    msg.CreatedAt,
						}
						result.Records[msg.AuthorID] = record
					}

					record.MessageCount++
					if msg.CreatedAt.After(record.LastSeen) {
						record.LastSeen = msg.CreatedAt
					}
				}
			})

			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				reason := "unexpected error"
				if errors.Is(err, ErrChannelUnreadable) {
					reason = "missing read permission"
				}
				s.logger.Warn("Skipping channel",
					zap.Uint64("channel_id", uint64(channel.ID)),
					zap.String("channel_name", channel.Name),
					zap.Int("messages_read", scanned),
					zap.Error(err))
				result.Skipped = append(result.Skipped, SkippedChannel{
					ID:     channel.ID,
					Name:   channel.Name,
					Reason: reason,
				})
				return
			}
			result.ChannelsScanned++
		})
	}

	p.Wait()

	s.logger.Info("Scan complete",
		zap.Uint64("guild_id", uint64(guildID)),
		zap.Int("total_messages", result.TotalMessages),
		zap.Int("channels_scanned", result.ChannelsScanned),
		zap.Int("channels_skipped", len(result.Skipped)))

	return result, nil
}

// scanChannel pages through one channel's history newest-first until the
// page limit is reached or the history is exhausted, handing each page to
// fold. Returns how many messages were read before stopping.
func (s *Scanner) scanChannel(
	ctx context.Context, channel Channel, pageLimit int, fold func([]Message),
) (int, error) {
	var before snowflake.ID
	scanned := 0

	for scanned < pageLimit {
		limit := min(restPageSize, pageLimit-scanned)

		messages, err := s.fetcher.Messages(ctx, channel.ID, before, limit)
		if err != nil {
			return scanned, err
		}
		if len(messages) == 0 {
			break
		}

		fold(messages)
		scanned += len(messages)
		before = messages[len(messages)-1].ID

		if len(messages) < limit {
			break
		}
	}

	return scanned, nil
}
