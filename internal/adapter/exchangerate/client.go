package exchangerate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"subpage-service/internal/entity"

	"github.com/sirupsen/logrus"
)

const maxBodySize = 1 << 20

var (
	ErrUnexpectedStatus = errors.New("unexpected status from rate provider")
	ErrEmptyBody        = errors.New("empty response body")
	ErrNoRates          = errors.New("response has no rates")
)

type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *logrus.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger *logrus.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				ResponseHeaderTimeout: timeout,
			},
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

func (c *Client) FetchRates(ctx context.Context, base entity.CurrencyCode) (*LatestRates, error) {
	url := fmt.Sprintf("%s/latest/%s", c.baseURL, base)

	c.logger.Debugf("Fetching rates from URL: %s", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	if len(body) == 0 {
		return nil, ErrEmptyBody
	}

	var latest LatestRates
	if err := json.Unmarshal(body, &latest); err != nil {
		c.logger.Debugf("First 200 chars: %s", string(body)[:min(200, len(body))])
		return nil, fmt.Errorf("parse JSON: %w", err)
	}
	if len(latest.Rates) == 0 {
		return nil, ErrNoRates
	}

	c.logger.WithFields(logrus.Fields{
		"base":  base,
		"rates": len(latest.Rates),
		"date":  latest.Date,
	}).Debug("Fetched provider rates")

	return &latest, nil
}
