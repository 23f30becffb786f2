package graphql

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/sync/singleflight"
)

const loginMutation = `
mutation login($input: LoginInput!) {
  login(input: $input) {
    access_token
    refresh_token
  }
}`

const refreshMutation = `
mutation refreshTokenV2 {
  refreshTokenV2 {
    access_token
    refresh_token
  }
}`

// tokenLeeway refreshes tokens slightly before they actually expire.
const tokenLeeway = 30 * time.Second

var errNoCredentials = errors.New("access token expired and no refresh token or login credentials configured")

type tokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// tokenSource hands out a valid access token, refreshing it (or logging in
// again) when the JWT "exp" claim is near. Concurrent callers share one refresh.
type tokenSource struct {
	client *Client
	group  singleflight.Group
	now    func() time.Time

	mu       sync.Mutex
	access   string
	refresh  string
	username string
	password string
}

func newTokenSource(c *Client, access, refresh, username, password string) *tokenSource {
	return &tokenSource{
		client:   c,
		now:      time.Now,
		access:   access,
		refresh:  refresh,
		username: username,
		password: password,
	}
}

func (s *tokenSource) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	access := s.access
	s.mu.Unlock()
	if access != "" && !expiresWithin(access, s.now(), tokenLeeway) {
		return access, nil
	}

	v, err, _ := s.group.Do("token", func() (any, error) {
		s.mu.Lock()
		access, refresh := s.access, s.refresh
		username, password := s.username, s.password
		s.mu.Unlock()

		// Another caller may have refreshed while we waited.
		if access != "" && !expiresWithin(access, s.now(), tokenLeeway) {
			return access, nil
		}

		var (
			pair tokenPair
			err  error
		)
		switch {
		case refresh != "":
			pair, err = s.exchangeRefresh(ctx, refresh)
			if err != nil && username != "" {
				pair, err = s.login(ctx, username, password)
			}
		case username != "":
			pair, err = s.login(ctx, username, password)
		default:
			return "", errNoCredentials
		}
		if err != nil {
			return "", err
		}

		s.mu.Lock()
		s.access = pair.AccessToken
		if pair.RefreshToken != "" {
			s.refresh = pair.RefreshToken
		}
		s.mu.Unlock()
		return pair.AccessToken, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// invalidate drops the access token the server rejected. A token replaced in
// the meantime by another caller is kept.
func (s *tokenSource) invalidate(rejected string) {
	s.mu.Lock()
	if s.access == rejected {
		s.access = ""
	}
	s.mu.Unlock()
}

func (s *tokenSource) canRenew() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refresh != "" || s.username != ""
}

func (s *tokenSource) login(ctx context.Context, username, password string) (tokenPair, error) {
	var out struct {
		Login tokenPair `json:"login"`
	}
	req := Request{
		Query:         loginMutation,
		OperationName: "login",
		Variables: map[string]any{
			"input": map[string]string{"username": username, "password": password},
		},
	}
	if err := s.client.send(ctx, req, "", &out); err != nil {
		return tokenPair{}, err
	}
	if out.Login.AccessToken == "" {
		return tokenPair{}, errors.New("login returned no access token")
	}
	return out.Login, nil
}

func (s *tokenSource) exchangeRefresh(ctx context.Context, refresh string) (tokenPair, error) {
	var out struct {
		RefreshTokenV2 tokenPair `json:"refreshTokenV2"`
	}
	req := Request{Query: refreshMutation, OperationName: "refreshTokenV2"}
	if err := s.client.send(ctx, req, refresh, &out); err != nil {
		return tokenPair{}, err
	}
	if out.RefreshTokenV2.AccessToken == "" {
		return tokenPair{}, errors.New("refresh returned no access token")
	}
	return out.RefreshTokenV2, nil
}

// expiresWithin reports whether a JWT's exp claim falls before now+leeway.
// Tokens that are not JWTs, or carry no exp, never expire from our side.
func expiresWithin(token string, now time.Time, leeway time.Duration) bool {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return !claims.ExpiresAt.Time.After(now.Add(leeway))
}
