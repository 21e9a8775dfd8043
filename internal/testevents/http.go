package testevents

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
	"github.com/sourcegraph/conc/pool"

	"github.com/okian/spadl/internal/domain/types"
	"github.com/okian/spadl/pkg/logger"
)

// HTTPClient wraps http.Client with a timeout and JSON helpers.
type HTTPClient struct {
	client  *http.Client
	baseURL string
}

// NewHTTPClient creates a client for the service at baseURL.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{client: &http.Client{Timeout: timeout}, baseURL: baseURL}
}

// do sends a request and decodes the JSON reply into out when out is not nil.
func (c *HTTPClient) do(ctx context.Context, method, path string, body []byte, out any) (int, error) {
	var reader io.Reader = http.NoBody
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, errors.Wrapf(err, "build %s %s", method, path)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, errors.Wrapf(err, "%s %s", method, path)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Get().Error(ctx, "failed to close response body", logger.Error(err))
		}
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, errors.Wrapf(err, "read %s %s", method, path)
	}
	if out != nil && len(data) > 0 {
		if err := sonic.Unmarshal(data, out); err != nil {
			return resp.StatusCode, errors.Wrapf(err, "decode %s %s (status %d)", method, path, resp.StatusCode)
		}
	}
	return resp.StatusCode, nil
}

// Health checks GET /healthz.
func (c *HTTPClient) Health(ctx context.Context) error {
	status, err := c.do(ctx, http.MethodGet, "/healthz", nil, nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return errors.Newf("health check returned %d", status)
	}
	return nil
}

// Submit posts a match for asynchronous conversion.
func (c *HTTPClient) Submit(ctx context.Context, m *Match) (types.SubmitResponse, int, error) {
	payload, err := m.Payload()
	if err != nil {
		return types.SubmitResponse{}, 0, err
	}
	var ack types.SubmitResponse
	status, err := c.do(ctx, http.MethodPost, "/games/"+m.GameID+"?home_team_id="+m.HomeTeamID, payload, &ack)
	return ack, status, err
}

// Actions fetches GET /games/{id}/actions.
func (c *HTTPClient) Actions(ctx context.Context, gameID string) (types.ActionsResponse, int, error) {
	var resp types.ActionsResponse
	status, err := c.do(ctx, http.MethodGet, "/games/"+gameID+"/actions", nil, &resp)
	return resp, status, err
}

// Minutes fetches GET /games/{id}/minutes.
func (c *HTTPClient) Minutes(ctx context.Context, gameID string) (types.MinutesResponse, int, error) {
	var resp types.MinutesResponse
	status, err := c.do(ctx, http.MethodGet, "/games/"+gameID+"/minutes", nil, &resp)
	return resp, status, err
}

// submitMatches posts every match using config.Workers concurrent submitters.
func submitMatches(ctx context.Context, config *Config, client *HTTPClient, matches []*Match, stats *Stats) {
	logger.Get().Info(ctx, "submitting games",
		logger.Int("games", len(matches)),
		logger.Int("workers", config.Workers))

	var accepted, duplicate, failed atomic.Int64
	p := pool.New().WithMaxGoroutines(max(config.Workers, 1))
	for _, m := range matches {
		p.Go(func() {
			ack, status, err := client.Submit(ctx, m)
			switch {
			case err != nil:
				failed.Add(1)
				logger.Get().Warn(ctx, "submit failed", logger.String("game_id", m.GameID), logger.Error(err))
			case status == http.StatusAccepted:
				accepted.Add(1)
			case status == http.StatusOK && ack.Duplicate:
				duplicate.Add(1)
			default:
				failed.Add(1)
				logger.Get().Warn(ctx, "submit rejected", logger.String("game_id", m.GameID), logger.Int("status", status))
			}
		})
	}
	p.Wait()

	stats.GamesSubmitted = len(matches)
	stats.GamesAccepted = int(accepted.Load())
	stats.GamesDuplicate = int(duplicate.Load())
	stats.GamesFailed = int(failed.Load())
}
