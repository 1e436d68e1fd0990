// Package stackspot implements the client for the remote modernization
// service: credential exchange, authenticated requests, execution submission
// and polling.
package stackspot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const (
	defaultAPIBaseURL  = "https://genai-code-buddy-api.stackspot.com"
	defaultIDMBaseURL  = "https://idm.stackspot.com"
	defaultRealm       = "zup"
	defaultCallTimeout = 30 * time.Second

	maxErrorBody = 2048
)

// Credentials is the client identity exchanged for a bearer token.
type Credentials struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	Realm        string `json:"realm,omitempty"`
}

// Validate checks that the identity is usable.
func (c Credentials) Validate() error {
	if c.ClientID == "" {
		return errors.New("credentials missing client_id")
	}
	if c.ClientSecret == "" {
		return errors.New("credentials missing client_secret")
	}
	return nil
}

// Transport performs authenticated HTTP calls to the remote service. It
// caches the bearer token for its own lifetime and re-acquires it exactly
// once when a call fails with an authorization status.
type Transport struct {
	http    *http.Client
	apiBase string
	idmBase string
	creds   Credentials

	mu    sync.Mutex
	token string
}

// TransportOption configures a Transport.
type TransportOption func(*Transport)

// WithAPIBaseURL overrides the API base URL (used by tests).
func WithAPIBaseURL(base string) TransportOption {
	return func(t *Transport) { t.apiBase = strings.TrimRight(base, "/") }
}

// WithIDMBaseURL overrides the identity provider base URL (used by tests).
func WithIDMBaseURL(base string) TransportOption {
	return func(t *Transport) { t.idmBase = strings.TrimRight(base, "/") }
}

// WithCallTimeout overrides the per-call timeout.
func WithCallTimeout(d time.Duration) TransportOption {
	return func(t *Transport) { t.http.Timeout = d }
}

// NewTransport creates a transport for the given client identity. No network
// call is made until the first request needs a token.
func NewTransport(creds Credentials, opts ...TransportOption) *Transport {
	t := &Transport{
		http:    &http.Client{Timeout: defaultCallTimeout},
		apiBase: defaultAPIBaseURL,
		idmBase: defaultIDMBaseURL,
		creds:   creds,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// AcquireToken exchanges the client identity for a bearer token and caches
// it. Callers normally never invoke this directly; Do acquires lazily.
func (t *Transport) AcquireToken(ctx context.Context) error {
	if err := t.creds.Validate(); err != nil {
		return &AuthError{Reason: "invalid client identity", Err: err}
	}

	realm := t.creds.Realm
	if realm == "" {
		realm = defaultRealm
	}
	tokenURL := fmt.Sprintf("%s/%s/oidc/oauth/token", t.idmBase, realm)

	form := url.Values{
		"client_id":     {t.creds.ClientID},
		"client_secret": {t.creds.ClientSecret},
		"grant_type":    {"client_credentials"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return &AuthError{Reason: "building token request", Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.http.Do(req)
	if err != nil {
		return &AuthError{Reason: "credential exchange unreachable", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body := readCapped(resp.Body)
		return &AuthError{Reason: fmt.Sprintf("credential exchange returned %s: %s", resp.Status, body)}
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return &AuthError{Reason: "decoding token response", Err: err}
	}
	if tokenResp.AccessToken == "" {
		return &AuthError{Reason: "credential exchange returned no access_token"}
	}

	t.mu.Lock()
	t.token = tokenResp.AccessToken
	t.mu.Unlock()
	return nil
}

// bearer returns the cached token, which may be empty before first use.
func (t *Transport) bearer() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.token
}

// Do performs one authenticated call and returns the response body and
// status. A 401/403 triggers exactly one token re-acquisition followed by a
// single retry of the same call; a second authorization failure surfaces as
// *AuthError. Non-2xx statuses surface as *TransportError with the status
// attached so callers can apply their own policy (the poller treats 404 as
// pending, for example).
func (t *Transport) Do(ctx context.Context, method, path string, payload any) ([]byte, int, error) {
	if t.bearer() == "" {
		if err := t.AcquireToken(ctx); err != nil {
			return nil, 0, err
		}
	}

	body, status, err := t.doOnce(ctx, method, path, payload)
	if !isAuthStatus(status) {
		return body, status, err
	}

	// One reactive refresh: the token has no advertised expiry, so the
	// first authorization failure after a long run is expected.
	if err := t.AcquireToken(ctx); err != nil {
		return nil, status, err
	}
	body, status, err = t.doOnce(ctx, method, path, payload)
	if isAuthStatus(status) {
		return nil, status, &AuthError{Reason: fmt.Sprintf("still unauthorized after token refresh (status %d)", status)}
	}
	return body, status, err
}

func (t *Transport) doOnce(ctx context.Context, method, path string, payload any) ([]byte, int, error) {
	var reqBody io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, 0, &TransportError{Kind: TransportNetwork, Err: fmt.Errorf("encoding request: %w", err)}
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, t.apiBase+path, reqBody)
	if err != nil {
		return nil, 0, &TransportError{Kind: TransportNetwork, Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+t.bearer())
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := t.http.Do(req)
	if err != nil {
		return nil, 0, classifyCallError(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, &TransportError{Kind: TransportNetwork, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return data, resp.StatusCode, &TransportError{Kind: TransportHTTPStatus, Status: resp.StatusCode, Err: cappedStatusError(resp.Status, data)}
	}
	return data, resp.StatusCode, nil
}

// classifyCallError maps a client-level error to the transport taxonomy.
func classifyCallError(err error) *TransportError {
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return &TransportError{Kind: TransportTimeout, Err: err}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &TransportError{Kind: TransportTimeout, Err: err}
	}
	return &TransportError{Kind: TransportNetwork, Err: err}
}

// isAuthStatus reports whether a status indicates missing or expired auth.
func isAuthStatus(status int) bool {
	return status == http.StatusUnauthorized || status == http.StatusForbidden
}

func cappedStatusError(status string, body []byte) error {
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody]
	}
	return fmt.Errorf("%s: %s", status, string(body))
}

func readCapped(r io.Reader) string {
	data, _ := io.ReadAll(io.LimitReader(r, maxErrorBody))
	return string(data)
}
