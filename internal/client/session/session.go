// Package session owns the client's authentication state: the bearer
// token, the current user identity and the session status. Every
// authenticated request the client makes goes through the session's
// transport, so the credential has a single writer and a single source
// of truth.
package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/iamlokanath/imagehub/internal/models"
)

// Status is the lifecycle state of the session.
type Status int

const (
	// StatusInitializing means Initialize has not finished yet;
	// callers must treat the UI as indeterminate.
	StatusInitializing Status = iota
	// StatusAuthenticated means a user identity is resolved and a token is held.
	StatusAuthenticated
	// StatusAnonymous means no valid credential is held.
	StatusAnonymous
)

// String implements fmt.Stringer for log and prompt output.
func (s Status) String() string {
	switch s {
	case StatusInitializing:
		return "initializing"
	case StatusAuthenticated:
		return "authenticated"
	case StatusAnonymous:
		return "anonymous"
	}
	return "unknown"
}

// ErrInvalidCredentials is returned when the server rejects a login or
// registration attempt.
var ErrInvalidCredentials = errors.New("invalid credentials")

// RegisterPayload carries the fields of a registration request.
type RegisterPayload struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Session is the authenticated identity and credential bound to this
// client process. The zero status is StatusInitializing; Initialize
// always leaves the session in a terminal status.
type Session struct {
	baseURL string
	store   TokenStore
	base    http.RoundTripper

	mu     sync.Mutex
	status Status
	token  string
	user   *models.User
}

// New returns a Session talking to the given server base URL and
// persisting its token in store.
func New(baseURL string, store TokenStore) *Session {
	return &Session{
		baseURL: baseURL,
		store:   store,
		base:    http.DefaultTransport,
		status:  StatusInitializing,
	}
}

// Status returns the current lifecycle state.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// CurrentUser returns a copy of the authenticated user, or nil when the
// session is not authenticated.
func (s *Session) CurrentUser() *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Token returns the bearer token currently held, or "" when anonymous.
func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// BaseURL returns the server base address requests are resolved against.
func (s *Session) BaseURL() string {
	return s.baseURL
}

// Client returns an http.Client whose transport attaches the session's
// current bearer token to every request. The token is read at request
// time, so a login taking effect is observed by the next request issued,
// not by requests already in flight.
func (s *Session) Client() *http.Client {
	return &http.Client{Transport: roundTripper{s: s}}
}

type roundTripper struct {
	s *Session
}

func (rt roundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if tok := rt.s.Token(); tok != "" {
		req = req.Clone(req.Context())
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	return rt.s.base.RoundTrip(req)
}

// Initialize resolves the persisted token, if any, into a user identity.
//
// No persisted token means the session becomes anonymous immediately.
// A persisted token is validated against /api/auth/me; any failure
// (network, expired or rejected token) discards the token and downgrades
// to anonymous without surfacing an error, since a stale token is an
// expected steady state. The session always ends in a terminal status.
func (s *Session) Initialize(ctx context.Context) error {
	tok, err := s.store.Load()
	if err != nil || tok == "" {
		s.set(StatusAnonymous, "", nil)
		return nil
	}

	// Hold the candidate token so the identity check carries it.
	s.set(StatusInitializing, tok, nil)

	user, err := s.checkUser(ctx)
	if err != nil {
		_ = s.store.Clear()
		s.set(StatusAnonymous, "", nil)
		return nil
	}

	s.set(StatusAuthenticated, tok, user)
	return nil
}

// Login exchanges credentials for a token and user identity. On success
// the token is persisted and installed as the session credential. On
// failure the session state is left untouched.
func (s *Session) Login(ctx context.Context, email, password string) (*models.User, error) {
	body := map[string]string{"email": email, "password": password}
	return s.authenticate(ctx, "/api/auth/login", body)
}

// Register creates a new account. The contract is identical to Login.
func (s *Session) Register(ctx context.Context, payload RegisterPayload) (*models.User, error) {
	return s.authenticate(ctx, "/api/auth/register", payload)
}

// Logout discards the persisted token and returns the session to
// anonymous. It never fails.
func (s *Session) Logout() {
	_ = s.store.Clear()
	s.set(StatusAnonymous, "", nil)
}

func (s *Session) authenticate(ctx context.Context, path string, payload any) (*models.User, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	// Auth endpoints are public; send them without a credential.
	resp, err := (&http.Client{Transport: s.base}).Do(req)
	if err != nil {
		return nil, fmt.Errorf("auth request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return nil, ErrInvalidCredentials
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("auth request: %s", resp.Status)
	}

	var result struct {
		Token string `json:"token"`
		models.User
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode auth response: %w", err)
	}
	if result.Token == "" {
		return nil, fmt.Errorf("auth response missing token")
	}
	if _, err := models.ParseRole(string(result.Role)); err != nil {
		return nil, fmt.Errorf("auth response: %w", err)
	}

	if err := s.store.Save(result.Token); err != nil {
		return nil, fmt.Errorf("persist token: %w", err)
	}

	user := result.User
	s.set(StatusAuthenticated, result.Token, &user)
	return &user, nil
}

func (s *Session) checkUser(ctx context.Context) (*models.User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/api/auth/me", nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.Client().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("identity check: %s", resp.Status)
	}
	var user models.User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, err
	}
	if _, err := models.ParseRole(string(user.Role)); err != nil {
		return nil, err
	}
	return &user, nil
}

// set updates status, token and user together. In both terminal
// statuses the invariant "user non-nil iff authenticated, token
// non-empty iff authenticated" holds; while initializing the candidate
// token may be held before an identity is resolved.
func (s *Session) set(status Status, token string, user *models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
	s.token = token
	s.user = user
}
