// Package identity talks to the hosted identity provider and holds the
// station's single signed-in session. The daemon serves one reader; there is
// exactly one session slot, guarded for concurrent handler access.
package identity

import (
	"bytes"
	"context"
	"encoding/json/v2"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yuzhenbei/booktravel/internal/domain"
	"github.com/yuzhenbei/booktravel/internal/errors"
)

const defaultTimeout = 15 * time.Second

// Client authenticates against the provider's auth endpoints and exposes the
// current session's bearer token to the gateway client.
type Client struct {
	http     *http.Client
	baseURL  string
	anonKey  string
	deviceID string
	logger   *slog.Logger

	mu      sync.RWMutex
	session *domain.Session
}

// New creates an identity client. The device id labels this station's
// sessions so the provider can distinguish installs.
func New(baseURL, anonKey string, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		http:     &http.Client{Timeout: timeout},
		baseURL:  baseURL,
		anonKey:  anonKey,
		deviceID: uuid.NewString(),
		logger:   logger,
	}
}

// AccessToken returns the signed-in user's bearer token, or empty when
// nobody is signed in or the session has lapsed.
func (c *Client) AccessToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.session == nil || c.session.Expired() {
		return ""
	}
	return c.session.AccessToken
}

// CurrentUser returns the signed-in user, if any.
func (c *Client) CurrentUser() (domain.User, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.session == nil || c.session.Expired() {
		return domain.User{}, false
	}
	return c.session.User, true
}

type sessionResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	User         struct {
		ID           string `json:"id"`
		Email        string `json:"email"`
		UserMetadata struct {
			Username  string `json:"username"`
			AvatarURL string `json:"avatar_url"`
		} `json:"user_metadata"`
	} `json:"user"`
}

func (r *sessionResponse) toSession(now time.Time) *domain.Session {
	return &domain.Session{
		AccessToken:  r.AccessToken,
		RefreshToken: r.RefreshToken,
		ExpiresAt:    now.Add(time.Duration(r.ExpiresIn) * time.Second),
		User: domain.User{
			ID:          r.User.ID,
			Email:       r.User.Email,
			DisplayName: r.User.UserMetadata.Username,
			AvatarURL:   r.User.UserMetadata.AvatarURL,
		},
	}
}

// SignUp registers a new account and signs it in. Username and avatar travel
// as user metadata so the provider can materialize the profile row.
func (c *Client) SignUp(ctx context.Context, email, password, username, avatarURL string) (domain.User, error) {
	payload := map[string]any{
		"email":    email,
		"password": password,
		"data": map[string]any{
			"username":   username,
			"avatar_url": avatarURL,
		},
	}

	var resp sessionResponse
	if err := c.post(ctx, "/auth/v1/signup", "", payload, &resp); err != nil {
		return domain.User{}, err
	}
	return c.adopt(&resp), nil
}

// SignIn exchanges email and password for a session.
func (c *Client) SignIn(ctx context.Context, email, password string) (domain.User, error) {
	payload := map[string]any{
		"email":    email,
		"password": password,
	}

	var resp sessionResponse
	if err := c.post(ctx, "/auth/v1/token?grant_type=password", "", payload, &resp); err != nil {
		return domain.User{}, err
	}
	return c.adopt(&resp), nil
}

func (c *Client) adopt(resp *sessionResponse) domain.User {
	session := resp.toSession(time.Now())

	c.mu.Lock()
	c.session = session
	c.mu.Unlock()

	c.logger.Info("session established", "user_id", session.User.ID, "device_id", c.deviceID)
	return session.User
}

// SignOut revokes the current session with the provider and clears the local
// slot. The local slot is cleared even when revocation fails; a dead token
// on the server is preferable to a zombie session on the station.
func (c *Client) SignOut(ctx context.Context) error {
	c.mu.Lock()
	session := c.session
	c.session = nil
	c.mu.Unlock()

	if session == nil {
		return nil
	}

	err := c.post(ctx, "/auth/v1/logout", session.AccessToken, nil, nil)
	if err != nil {
		c.logger.Warn("session revocation failed", "error", err)
		return errors.Wrap(err, errors.CodeTransport, "revoke session")
	}
	return nil
}

// ResetPassword asks the provider to send a recovery email.
func (c *Client) ResetPassword(ctx context.Context, email string) error {
	return c.post(ctx, "/auth/v1/recover", "", map[string]any{"email": email}, nil)
}

// UpdatePassword changes the signed-in user's password.
func (c *Client) UpdatePassword(ctx context.Context, newPassword string) error {
	token := c.AccessToken()
	if token == "" {
		return errors.NotAuthenticated("no active session")
	}
	return c.request(ctx, http.MethodPut, "/auth/v1/user", token,
		map[string]any{"password": newPassword}, nil)
}

// GetProfile fetches a public profile row by user id.
func (c *Client) GetProfile(ctx context.Context, userID string) (domain.Profile, error) {
	var rows []domain.Profile
	path := "/rest/v1/profiles?select=id,username,avatar_url,department,bio&id=eq." + userID
	if err := c.request(ctx, http.MethodGet, path, c.AccessToken(), nil, &rows); err != nil {
		return domain.Profile{}, err
	}
	if len(rows) == 0 {
		return domain.Profile{}, errors.NotFoundf("profile %s not found", userID)
	}
	return rows[0], nil
}

func (c *Client) post(ctx context.Context, path, token string, payload, out any) error {
	return c.request(ctx, http.MethodPost, path, token, payload, out)
}

func (c *Client) request(ctx context.Context, method, path, token string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return errors.Wrap(err, errors.CodeInternal, "encode request")
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return errors.Wrap(err, errors.CodeInternal, "create request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("apikey", c.anonKey)
	if token == "" {
		token = c.anonKey
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(err, errors.CodeTransport, "execute request")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, errors.CodeTransport, "read response")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return authError(resp.StatusCode, respBody)
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return errors.Wrap(err, errors.CodeTransport, "decode response")
		}
	}
	return nil
}

// authError maps provider failures onto the domain taxonomy. Credential
// failures arrive as 400 with an error description, not only as 401.
func authError(status int, body []byte) error {
	var detail struct {
		Message   string `json:"msg"`
		ErrorDesc string `json:"error_description"`
	}
	_ = json.Unmarshal(body, &detail)
	msg := detail.Message
	if msg == "" {
		msg = detail.ErrorDesc
	}

	switch {
	case status == http.StatusBadRequest || status == http.StatusUnauthorized || status == http.StatusForbidden:
		if msg == "" {
			msg = "invalid credentials"
		}
		return errors.NotAuthenticated(msg)
	case status == http.StatusUnprocessableEntity:
		if msg == "" {
			msg = "invalid request"
		}
		return errors.Validation(msg)
	case status == http.StatusConflict:
		return errors.Conflict("account already exists")
	default:
		return errors.Transportf("identity provider error %d: %s", status, msg)
	}
}
