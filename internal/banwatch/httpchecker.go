package banwatch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"budgeter/internal/httpx"
)

// BanStatusPath is the server endpoint that reports the caller's ban status
const BanStatusPath = "/api/v1/auth/ban-status"

// HTTPChecker asks a budgeter server for the ban status of the token holder
type HTTPChecker struct {
	BaseURL string
	// Token returns the current session token
	Token  func() string
	Client *http.Client
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type statusData struct {
	IsBanned    bool       `json:"isBanned"`
	Reason      *string    `json:"reason"`
	BannedUntil *time.Time `json:"bannedUntil"`
}

// Check implements Checker. A 403 session-revoked response counts as banned;
// every other non-2xx response is an error.
func (c *HTTPChecker) Check(ctx context.Context) (Result, error) {
	token := ""
	if c.Token != nil {
		token = c.Token()
	}
	if token == "" {
		return Result{}, fmt.Errorf("no session token")
	}

	url := strings.TrimRight(c.BaseURL, "/") + BanStatusPath
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Result{}, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("ban status request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Result{}, fmt.Errorf("failed to read ban status response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return Result{}, fmt.Errorf("invalid ban status response (HTTP %d): %w", resp.StatusCode, err)
	}

	switch {
	case resp.StatusCode == http.StatusOK && env.Code == httpx.CodeSuccess:
	case resp.StatusCode == http.StatusForbidden && env.Code == httpx.CodeSessionRevoked:
	default:
		return Result{}, fmt.Errorf("ban status check failed: HTTP %d code=%d message=%s", resp.StatusCode, env.Code, env.Message)
	}

	var data statusData
	if len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, &data); err != nil {
			return Result{}, fmt.Errorf("invalid ban status data: %w", err)
		}
	}
	if env.Code == httpx.CodeSessionRevoked {
		data.IsBanned = true
	}

	return Result{Banned: data.IsBanned, Reason: data.Reason, BannedUntil: data.BannedUntil}, nil
}
