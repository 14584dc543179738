package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"
)

// Meme is one fetched media item.
type Meme struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

// MemeClient fetches random media items from a meme API.
type MemeClient struct {
	httpClient *http.Client
	url        string
	token      string
	logger     *zap.Logger
}

// NewMemeClient creates a meme client. token may be empty; when set it is
// sent as a bearer credential.
func NewMemeClient(url, token string, timeout time.Duration, logger *zap.Logger) *MemeClient {
	return &MemeClient{
		httpClient: &http.Client{Timeout: timeout},
		url:        url,
		token:      token,
		logger:     logger.Named("meme_client"),
	}
}

// Random fetches one meme.
func (c *MemeClient) Random(ctx context.Context) (*Meme, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build meme request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		var urlErr interface{ Timeout() bool }
		if errors.As(err, &urlErr) && urlErr.Timeout() {
			return nil, fmt.Errorf("%w: %w", ErrTimeout, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrStatus, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d", ErrStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStatus, err)
	}

	var meme Meme
	if err := sonic.Unmarshal(body, &meme); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStatus, err)
	}
	if meme.URL == "" {
		return nil, fmt.Errorf("%w: response missing url", ErrStatus)
	}

	c.logger.Debug("Fetched meme", zap.String("url", meme.URL))
	return &meme, nil
}
