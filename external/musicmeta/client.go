package musicmeta

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"

	"github.com/musileague/backend/internal/domain/artist"
	"github.com/musileague/backend/internal/platform/logging"
	"github.com/musileague/backend/internal/platform/resilience"
	"github.com/musileague/backend/internal/usecase"
)

const (
	defaultBaseURL    = "https://api.musicmeta.dev/v1"
	artistChunkSize   = 50
	responseBodyLimit = 4 << 20
)

var bearerTokenRegex = regexp.MustCompile(`Bearer [^\s"']+`)
var errMusicMetaTransient = crerr.New("musicmeta transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Token          string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client talks to the artist metadata provider. Lookups are chunked,
// deduplicated through singleflight and guarded by a circuit breaker
// so a provider outage cannot pile up goroutines.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	token          string
	maxRetries     int
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 15 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		token:          strings.TrimSpace(cfg.Token),
		maxRetries:     maxRetries,
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

type artistPayload struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	ImageURL   string `json:"image_url"`
	Popularity int    `json:"popularity"`
	Followers  int64  `json:"followers"`
	IsFeatured bool   `json:"is_featured"`
}

type artistsEnvelope struct {
	Artists []artistPayload `json:"artists"`
}

// GetArtists resolves current metadata for the given artist ids. Ids
// the provider does not know are silently absent from the result; the
// caller decides whether that is an error.
func (c *Client) GetArtists(ctx context.Context, artistIDs []string) ([]artist.Artist, error) {
	ids := make([]string, 0, len(artistIDs))
	seen := make(map[string]struct{}, len(artistIDs))
	for _, id := range artistIDs {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	out := make([]artist.Artist, 0, len(ids))
	for start := 0; start < len(ids); start += artistChunkSize {
		end := start + artistChunkSize
		if end > len(ids) {
			end = len(ids)
		}

		chunk, err := c.fetchChunk(ctx, ids[start:end])
		if err != nil {
			return nil, err
		}
		out = append(out, chunk...)
	}

	return out, nil
}

func (c *Client) fetchChunk(ctx context.Context, ids []string) ([]artist.Artist, error) {
	query := map[string]string{"ids": strings.Join(ids, ",")}

	var envelope artistsEnvelope
	if err := c.doJSON(ctx, "/artists", query, &envelope); err != nil {
		return nil, fmt.Errorf("fetch artists: %w", err)
	}

	now := time.Now().UTC()
	out := make([]artist.Artist, 0, len(envelope.Artists))
	for _, item := range envelope.Artists {
		if strings.TrimSpace(item.ID) == "" {
			continue
		}
		out = append(out, artist.Artist{
			ID:         item.ID,
			Name:       item.Name,
			ImageURL:   item.ImageURL,
			Popularity: item.Popularity,
			Followers:  item.Followers,
			IsFeatured: item.IsFeatured,
			UpdatedAt:  now,
		})
	}
	return out, nil
}

func (c *Client) doJSON(ctx context.Context, path string, query map[string]string, target any) error {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "musicmeta circuit breaker rejected request", "state", c.breaker.State())
			return fmt.Errorf("%w: artist metadata provider is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	values := url.Values{}
	for key, value := range query {
		values.Set(key, value)
	}

	fullURL := c.baseURL + path
	if encoded := values.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	out, err, _ := c.flight.Do(fullURL, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL)
		if c.circuitEnabled {
			if reqErr != nil && crerr.Is(reqErr, errMusicMetaTransient) {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return raw, reqErr
	})
	if err != nil {
		return err
	}

	raw, ok := out.([]byte)
	if !ok {
		return fmt.Errorf("unexpected response payload type %T", out)
	}

	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode provider payload: %w", err)
	}
	return nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("accept", "application/json")
		if c.token != "" {
			req.Header.Set("authorization", "Bearer "+c.token)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %s", errMusicMetaTransient, sanitizeSensitiveText(err.Error(), c.token))
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, responseBodyLimit))
			_ = resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr = fmt.Errorf("%w: read response body: %v", errMusicMetaTransient, readErr)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, nil
			case isRetryableStatus(resp.StatusCode):
				lastErr = fmt.Errorf("%w: provider status=%d body=%s", errMusicMetaTransient, resp.StatusCode, abbreviateBody(raw))
			default:
				return nil, fmt.Errorf("provider status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
			}
		}

		if attempt == c.maxRetries {
			break
		}
		backoff := time.Duration(attempt+1) * time.Second
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("provider request failed")
	}
	c.logger.WarnContext(ctx, "musicmeta request failed",
		"url", fullURL,
		"error", sanitizeSensitiveText(lastErr.Error(), c.token),
	)
	return nil, lastErr
}

func isRetryableStatus(status int) bool {
	switch status {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

func abbreviateBody(raw []byte) string {
	const limit = 256
	body := strings.TrimSpace(string(raw))
	if len(body) > limit {
		return body[:limit] + "..."
	}
	return body
}

func sanitizeSensitiveText(value, token string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return value
	}
	if token != "" {
		value = strings.ReplaceAll(value, token, "REDACTED")
	}
	return bearerTokenRegex.ReplaceAllString(value, "Bearer REDACTED")
}
