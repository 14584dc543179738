// Package config loads the bot configuration from a TOML file.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

var (
	ErrConfigFileNotFound    = errors.New("could not find config.toml in any config path")
	ErrConfigVersionMismatch = errors.New("config file version mismatch")
	ErrMissingToken          = errors.New("bot.token is required")
	ErrMissingOwner          = errors.New("bot.owner_id is required")
)

// CurrentVersion is the config file version this build expects.
const CurrentVersion = 1

// Config is the entire application configuration.
type Config struct {
	Version  int            `koanf:"version"`
	Bot      Bot            `koanf:"bot"`
	Limits   Limits         `koanf:"limits"`
	Provider ProviderConfig `koanf:"provider"`
	Debug    Debug          `koanf:"debug"`
}

// Bot contains Discord-specific configuration.
type Bot struct {
	Token         string   `koanf:"token"`          // Discord bot token
	Prefix        string   `koanf:"prefix"`         // Command prefix
	OwnerID       uint64   `koanf:"owner_id"`       // Super-owner, the only identity allowed to nuke
	AuthorizedIDs []uint64 `koanf:"authorized_ids"` // Users allowed to run the inactivity report
}

// Limits contains every abuse-prevention and scan tunable.
type Limits struct {
	RateLimitInterval    int `koanf:"rate_limit_interval"`    // Minimum seconds between commands per user
	SpamWindow           int `koanf:"spam_window"`            // Sliding window in seconds
	MaxMessagesPerWindow int `koanf:"max_messages_per_window"` // Messages allowed inside the window
	MuteDuration         int `koanf:"mute_duration"`          // Mute length in seconds
	RoastCooldown        int `koanf:"roast_cooldown"`         // Seconds between roasts per user
	ScanCooldown         int `koanf:"scan_cooldown"`          // Seconds between leaderboard scans per user
	NukeCooldown         int `koanf:"nuke_cooldown"`          // Seconds between nuke attempts
	DeepScanPageLimit    int `koanf:"deep_scan_page_limit"`   // Messages per channel for deep scans
	QuickScanPageLimit   int `koanf:"quick_scan_page_limit"`  // Messages per channel for quick scans
	ScanConcurrency      int `koanf:"scan_concurrency"`       // Channels scanned in flight
	PruneThresholdDays   int `koanf:"prune_threshold_days"`   // Days of inactivity before prune eligibility
	KickDelay            int `koanf:"kick_delay"`             // Seconds between member removals
	ConfirmTimeout       int `koanf:"confirm_timeout"`        // Seconds to wait for nuke confirmation
}

// ProviderConfig contains outbound content-provider settings.
type ProviderConfig struct {
	OpenAIKey      string `koanf:"openai_key"`
	OpenAIModel    string `koanf:"openai_model"`
	MemeURL        string `koanf:"meme_url"`
	MemeToken      string `koanf:"meme_token"`
	RequestTimeout int    `koanf:"request_timeout"` // Provider timeout in seconds
}

// Debug contains logging configuration.
type Debug struct {
	LogLevel      string `koanf:"log_level"`
	LogDir        string `koanf:"log_dir"`
	MaxLogsToKeep int    `koanf:"max_logs_to_keep"`
}

// Load reads config.toml from the first path that has one and validates it.
func Load() (*Config, error) {
	k := koanf.New(".")

	configPaths := []string{".", "config", "/etc/guildwarden"}

	loaded := false
	for _, path := range configPaths {
		if err := k.Load(file.Provider(path+"/config.toml"), toml.Parser()); err == nil {
			loaded = true
			break
		}
	}
	if !loaded {
		return nil, ErrConfigFileNotFound
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if cfg.Version != CurrentVersion {
		return nil, fmt.Errorf("%w: found %d, expected %d",
			ErrConfigVersionMismatch, cfg.Version, CurrentVersion)
	}
	if cfg.Bot.Token == "" {
		return nil, ErrMissingToken
	}
	if cfg.Bot.OwnerID == 0 {
		return nil, ErrMissingOwner
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	setIfZero(&c.Bot.Prefix, "!")
	setIfZero(&c.Limits.RateLimitInterval, 3)
	setIfZero(&c.Limits.SpamWindow, 60)
	setIfZero(&c.Limits.MaxMessagesPerWindow, 10)
	setIfZero(&c.Limits.MuteDuration, 60)
	setIfZero(&c.Limits.RoastCooldown, 60)
	setIfZero(&c.Limits.ScanCooldown, 120)
	setIfZero(&c.Limits.NukeCooldown, 300)
	setIfZero(&c.Limits.DeepScanPageLimit, 1000)
	setIfZero(&c.Limits.QuickScanPageLimit, 200)
	setIfZero(&c.Limits.ScanConcurrency, 4)
	setIfZero(&c.Limits.PruneThresholdDays, 60)
	setIfZero(&c.Limits.KickDelay, 1)
	setIfZero(&c.Limits.ConfirmTimeout, 15)
	setIfZero(&c.Provider.OpenAIModel, "gpt-4o-mini")
	setIfZero(&c.Provider.MemeURL, "https://meme-api.com/gimme")
	setIfZero(&c.Provider.RequestTimeout, 10)
	setIfZero(&c.Debug.LogLevel, "info")
	setIfZero(&c.Debug.LogDir, "logs")
	setIfZero(&c.Debug.MaxLogsToKeep, 10)
}

func setIfZero[T comparable](target *T, value T) {
	var zero T
	if *target == zero {
		*target = value
	}
}

// Seconds converts a config integer to a duration.
func Seconds(v int) time.Duration {
	return time.Duration(v) * time.Second
}
