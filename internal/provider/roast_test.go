package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func roastClientFor(serverURL string, timeout time.Duration) *RoastClient {
	cfg := openai.DefaultConfig("test-key")
	cfg.BaseURL = serverURL + "/v1"
	return newRoastClientWithConfig(cfg, "test-model", timeout, zap.NewNop())
}

func TestRoastClient(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the generated text", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  You type like a captcha.  "}}]}`))
		}))
		defer server.Close()

		roast, err := roastClientFor(server.URL, time.Second).Roast(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, "You type like a captcha.", roast)
	})

	t.Run("provider error status surfaces as ErrStatus", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		_, err := roastClientFor(server.URL, time.Second).Roast(ctx, "alice")
		assert.ErrorIs(t, err, ErrStatus)
	})

	t.Run("empty completion is an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"choices":[]}`))
		}))
		defer server.Close()

		_, err := roastClientFor(server.URL, time.Second).Roast(ctx, "alice")
		assert.ErrorIs(t, err, ErrStatus)
	})

	t.Run("slow provider is a timeout", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
		}))
		defer server.Close()

		_, err := roastClientFor(server.URL, 50*time.Millisecond).Roast(ctx, "alice")
		assert.ErrorIs(t, err, ErrTimeout)
	})
}
