package leetcode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"codequest/internal/platform/logger"
)

// ErrUserNotFound means the stats API has no public profile for the username.
var ErrUserNotFound = errors.New("leetcode: user not found")

type Client struct {
	httpClient *http.Client
	baseURL    string
}

func New(baseURL string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

type SolvedStats struct {
	TotalSolved  int `json:"totalSolved"`
	EasySolved   int `json:"easySolved"`
	MediumSolved int `json:"mediumSolved"`
	HardSolved   int `json:"hardSolved"`
}

type statsResp struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	SolvedStats
}

func (c *Client) FetchSolvedStats(ctx context.Context, username string) (*SolvedStats, error) {
	log := logger.FromContext(ctx).With().Str("component", "leetcode").Str("username", username).Logger()
	endpoint := c.baseURL + "/" + url.PathEscape(username)

	log.Debug().Str("url", endpoint).Msg("fetching solved stats")
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error().Err(err).Msg("stats request failed")
		return nil, err
	}
	defer resp.Body.Close()

	log.Debug().Dur("elapsed", time.Since(start)).Int("status", resp.StatusCode).Msg("stats response received")

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrUserNotFound
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("stats status %d: %s", resp.StatusCode, string(body))
	}

	var out statsResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode stats: %w", err)
	}
	if out.Status != "" && out.Status != "success" {
		return nil, ErrUserNotFound
	}

	log.Info().Int("total", out.TotalSolved).Msg("fetched solved stats")
	return &out.SolvedStats, nil
}
