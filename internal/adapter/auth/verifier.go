package auth

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

var (
	ErrMissingToken = errors.New("Missing authorization header")
	ErrUnauthorized = errors.New("Unauthorized")
)

type Verifier interface {
	UserFromToken(ctx context.Context, authorization string) (*entity.User, error)
}

// Client resolves bearer tokens against the hosted auth service.
type Client struct {
	httpClient *http.Client
	baseURL    string
	anonKey    string
	logger     *logrus.Logger
}

func NewClient(baseURL, anonKey string, timeout time.Duration, logger *logrus.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		anonKey:    anonKey,
		logger:     logger,
	}
}

type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

func (c *Client) UserFromToken(ctx context.Context, authorization string) (*entity.User, error) {
	if strings.TrimSpace(authorization) == "" {
		return nil, ErrMissingToken
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", authorization)
	if c.anonKey != "" {
		req.Header.Set("apikey", c.anonKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("auth request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		c.logger.WithField("status", resp.StatusCode).Debug("Auth service rejected token")
		return nil, ErrUnauthorized
	}

	var user userResponse
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	if user.ID == "" {
		return nil, ErrUnauthorized
	}

	return &entity.User{ID: user.ID, Email: user.Email}, nil
}
