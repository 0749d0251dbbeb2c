// ABOUTME: HTTP client for the remote auth authority (login, identity, logout)
// ABOUTME: Sends cookies via a jar and attaches the fallback bearer token

package authority

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"strings"

	"github.com/vdspices/spicefront/internal/credstore"
)

// ErrUnauthenticated is returned by CurrentUser when the authority does not
// recognize the presented credential.
var ErrUnauthenticated = errors.New("not authenticated")

// Client talks to the remote auth authority. All requests carry the cookie
// jar and, when the fallback store holds a token, an Authorization header.
// The client never retries; a failed call is reported as-is and retry policy
// belongs to the caller.
type Client struct {
	baseURL string
	httpc   *http.Client
	creds   credstore.Store
	logger  *slog.Logger
}

// New creates a client for the authority at baseURL. The credential store is
// consulted on every request for the fallback bearer token; it is never
// written by the client.
func New(baseURL string, creds credstore.Store) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("creating cookie jar: %w", err)
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Jar: jar},
		creds:   creds,
		logger:  slog.Default().With("component", "authority"),
	}, nil
}

// do issues a request against the authority with cookies and bearer attached.
func (c *Client) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if token, err := c.creds.Read(); err == nil {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return c.httpc.Do(req)
}

// Login submits credentials to the authority. A rejection comes back as a
// LoginResult with Success=false; only transport failures return an error.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	payload := map[string]string{
		"email":    email,
		"password": password,
	}

	resp, err := c.do(ctx, http.MethodPost, "/login", payload)
	if err != nil {
		return nil, fmt.Errorf("login request: %w", err)
	}
	defer resp.Body.Close()

	var result LoginResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding login response: %w", err)
	}
	result.Cookies = resp.Cookies()

	if !result.Success && result.Message == "" {
		result.Message = "invalid email or password"
	}

	return &result, nil
}

// CurrentUser resolves the identity bound to the presented credential.
// Any non-200 response means the credential is not (or no longer) valid.
func (c *Client) CurrentUser(ctx context.Context) (*Identity, error) {
	resp, err := c.do(ctx, http.MethodGet, "/me", nil)
	if err != nil {
		return nil, fmt.Errorf("identity request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, ErrUnauthenticated
	}

	var identity Identity
	if err := json.NewDecoder(resp.Body).Decode(&identity); err != nil {
		return nil, fmt.Errorf("decoding identity response: %w", err)
	}

	return &identity, nil
}

// Logout asks the authority to invalidate the session. The response status
// and body are ignored: callers proceed to local cleanup regardless, and
// only a transport failure is reported (so it can be logged, not acted on).
func (c *Client) Logout(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodPost, "/logout", nil)
	if err != nil {
		return fmt.Errorf("logout request: %w", err)
	}
	resp.Body.Close()
	return nil
}

// ChangePassword submits a password change for the current session.
func (c *Client) ChangePassword(ctx context.Context, current, newPassword, confirm string) (*ChangeResult, error) {
	payload := map[string]string{
		"current_password": current,
		"new_password":     newPassword,
		"confirm_password": confirm,
	}

	resp, err := c.do(ctx, http.MethodPost, "/change-password", payload)
	if err != nil {
		return nil, fmt.Errorf("change password request: %w", err)
	}
	defer resp.Body.Close()

	var result ChangeResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding change password response: %w", err)
	}

	return &result, nil
}
