package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const defaultBaseURL = "https://identitytoolkit.googleapis.com"

// Profile is the provider-side view of a user account.
type Profile struct {
	UID       string     `json:"uid"`
	Email     string     `json:"email"`
	FullName  string     `json:"full_name,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// Client talks to the Identity Toolkit REST surface for token verification
// and profile access.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates an identity provider client. baseURL may be empty to use
// the hosted endpoint; tests point it at a local server.
func NewClient(apiKey, baseURL string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("identity api key is required")
	}
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		apiKey:     strings.TrimSpace(apiKey),
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}, nil
}

type accountInfo struct {
	LocalID     string `json:"localId"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	CreatedAt   string `json:"createdAt"`   // epoch millis, string-encoded
	LastLoginAt string `json:"lastLoginAt"` // epoch millis, string-encoded
	Disabled    bool   `json:"disabled"`
}

type lookupResponse struct {
	Users []accountInfo `json:"users"`
}

func (c *Client) post(ctx context.Context, endpoint string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/%s?key=%s", c.baseURL, endpoint, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("identity provider call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("identity provider returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode provider response: %w", err)
	}
	return nil
}

func (c *Client) lookup(ctx context.Context, idToken string) (accountInfo, error) {
	var resp lookupResponse
	err := c.post(ctx, "accounts:lookup", map[string]string{"idToken": idToken}, &resp)
	if err != nil {
		return accountInfo{}, err
	}
	if len(resp.Users) == 0 {
		return accountInfo{}, fmt.Errorf("no account for token")
	}
	acct := resp.Users[0]
	if acct.Disabled {
		return accountInfo{}, fmt.Errorf("account disabled")
	}
	return acct, nil
}

// VerifyToken resolves a bearer credential to the stable user ID. Every
// failure mode collapses to ErrUnauthorized.
func (c *Client) VerifyToken(ctx context.Context, idToken string) (string, error) {
	acct, err := c.lookup(ctx, idToken)
	if err != nil {
		return "", ErrUnauthorized
	}
	return acct.LocalID, nil
}

// GetProfile returns the provider-side profile for the token's account.
func (c *Client) GetProfile(ctx context.Context, idToken string) (Profile, error) {
	acct, err := c.lookup(ctx, idToken)
	if err != nil {
		return Profile{}, fmt.Errorf("fetch profile: %w", err)
	}
	return profileFromAccount(acct), nil
}

// UpdateDisplayName sets the account's display name and returns the updated
// profile. Name length validation is the HTTP layer's responsibility.
func (c *Client) UpdateDisplayName(ctx context.Context, idToken, displayName string) (Profile, error) {
	var updated accountInfo
	err := c.post(ctx, "accounts:update", map[string]any{
		"idToken":           idToken,
		"displayName":       displayName,
		"returnSecureToken": false,
	}, &updated)
	if err != nil {
		return Profile{}, fmt.Errorf("update display name: %w", err)
	}

	// The update response omits metadata timestamps; re-read the account.
	acct, err := c.lookup(ctx, idToken)
	if err != nil {
		return Profile{}, fmt.Errorf("reload profile: %w", err)
	}
	return profileFromAccount(acct), nil
}

func profileFromAccount(acct accountInfo) Profile {
	p := Profile{
		UID:       acct.LocalID,
		Email:     acct.Email,
		FullName:  acct.DisplayName,
		CreatedAt: millisToTime(acct.CreatedAt),
	}
	if t := millisToTime(acct.LastLoginAt); !t.IsZero() {
		p.UpdatedAt = &t
	}
	return p
}

func millisToTime(s string) time.Time {
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil || ms <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}
