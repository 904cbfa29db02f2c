package portal

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/frederic-klein/modcheck/internal/mod"
)

const (
	DefaultPortalURL  = "https://mods.factorio.com"
	DefaultAuthURL    = "https://auth.factorio.com"
	DefaultVerifyPath = "/api-validate"
	DefaultTimeout    = 30 * time.Second

	loginAPIVersion = "4"
)

// Config holds the endpoints the client talks to.
type Config struct {
	PortalURL  string
	AuthURL    string
	VerifyPath string
	Timeout    time.Duration
}

// Client queries the mod portal and its authentication server.
type Client struct {
	portalURL  string
	authURL    string
	verifyPath string
	client     *http.Client
}

// NewClient creates a portal client. Empty fields fall back to defaults.
func NewClient(cfg Config) *Client {
	if cfg.PortalURL == "" {
		cfg.PortalURL = DefaultPortalURL
	}
	if cfg.AuthURL == "" {
		cfg.AuthURL = DefaultAuthURL
	}
	if cfg.VerifyPath == "" {
		cfg.VerifyPath = DefaultVerifyPath
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Client{
		portalURL:  strings.TrimSuffix(cfg.PortalURL, "/"),
		authURL:    strings.TrimSuffix(cfg.AuthURL, "/"),
		verifyPath: "/" + strings.TrimPrefix(cfg.VerifyPath, "/"),
		client:     &http.Client{Timeout: cfg.Timeout},
	}
}

type fullModResponse struct {
	Name     string            `json:"name"`
	Releases []releaseResponse `json:"releases"`
}

type releaseResponse struct {
	Version    string `json:"version"`
	ReleasedAt string `json:"released_at"`
}

type loginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// FullModInfo fetches the release history of a mod. It never returns a
// Go error; failures are reported through the Result kind.
func (c *Client) FullModInfo(ctx context.Context, token Token, name string) Result {
	apiURL := fmt.Sprintf("%s/api/mods/%s/full", c.portalURL, url.PathEscape(name))
	if token.Token != "" {
		q := url.Values{}
		q.Set("username", token.Username)
		q.Set("token", token.Token)
		apiURL += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return Failure(fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return Failure(fmt.Errorf("querying mod portal: %w", err))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return Failure(fmt.Errorf("%w: %s", ErrNotFound, name))
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return Failure(fmt.Errorf("%w: HTTP %d", ErrUnauthorized, resp.StatusCode))
	case resp.StatusCode != http.StatusOK:
		return Failure(fmt.Errorf("mod portal error: HTTP %d", resp.StatusCode))
	}

	var body fullModResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Failure(fmt.Errorf("%w: %v", ErrMalformed, err))
	}

	info, err := body.toInfo(name)
	if err != nil {
		return Failure(err)
	}
	return OK(info)
}

func (r fullModResponse) toInfo(requested string) (*mod.Info, error) {
	info := &mod.Info{Name: r.Name}
	if info.Name == "" {
		info.Name = requested
	}
	info.Releases = make([]mod.Release, 0, len(r.Releases))
	for _, rel := range r.Releases {
		t, err := mod.ParseTime(rel.ReleasedAt)
		if err != nil {
			return nil, fmt.Errorf("%w: release %s: %v", ErrMalformed, rel.Version, err)
		}
		info.Releases = append(info.Releases, mod.Release{Version: rel.Version, ReleasedAt: t})
	}
	return info, nil
}

// Login exchanges a username and password for a portal token.
func (c *Client) Login(ctx context.Context, username, password string) (Token, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)
	form.Set("api_version", loginAPIVersion)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.authURL+"/api-login", strings.NewReader(form.Encode()))
	if err != nil {
		return Token{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return Token{}, fmt.Errorf("logging in: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Token{}, fmt.Errorf("%w: %s", ErrUnauthorized, readErrorMessage(resp))
	}

	var body loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Token{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if body.Token == "" {
		return Token{}, fmt.Errorf("%w: login response has no token", ErrMalformed)
	}
	if body.Username == "" {
		body.Username = username
	}
	return Token{Username: body.Username, Token: body.Token}, nil
}

// VerifyToken asks the authentication server whether token is valid. The
// server answers with a bare JSON boolean.
func (c *Client) VerifyToken(ctx context.Context, token Token) (bool, error) {
	q := url.Values{}
	q.Set("username", token.Username)
	q.Set("token", token.Token)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.authURL+c.verifyPath+"?"+q.Encode(), nil)
	if err != nil {
		return false, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("verifying token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("auth server error: HTTP %d", resp.StatusCode)
	}

	var valid *bool
	if err := json.NewDecoder(resp.Body).Decode(&valid); err != nil {
		return false, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if valid == nil {
		return false, fmt.Errorf("%w: empty verification response", ErrMalformed)
	}
	return *valid, nil
}

func readErrorMessage(resp *http.Response) string {
	data, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err == nil {
		var body errorResponse
		if json.Unmarshal(data, &body) == nil && body.Message != "" {
			return body.Message
		}
	}
	return fmt.Sprintf("HTTP %d", resp.StatusCode)
}
