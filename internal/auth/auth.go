// Package auth implements login, registration and logout against the
// storefront API, and owns putting the resulting token into the session
// store.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/groupe1-react/storefront-client/internal/api"
	"github.com/groupe1-react/storefront-client/internal/session"
)

// ErrNoTokenInResponse is returned when a login succeeded at the HTTP level
// but no recognizable token came back.
var ErrNoTokenInResponse = errors.New("authentication succeeded but no token was returned")

type Service struct {
	client   *api.Client
	sessions session.Store
	logger   *zap.Logger
}

func NewService(client *api.Client, sessions session.Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{client: client, sessions: sessions, logger: logger}
}

// User is the profile the API optionally returns alongside a token.
type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterParams is the payload for account creation.
type RegisterParams struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates and stores the returned token in the session store.
// The profile is returned when the server included one.
func (s *Service) Login(ctx context.Context, email, password string) (*User, error) {
	var raw json.RawMessage
	if err := s.client.Post(ctx, "/auth/login", credentials{Email: email, Password: password}, &raw); err != nil {
		return nil, err
	}

	token, ok := extractToken(raw)
	if !ok {
		if msg := serverMessage(raw); msg != "" {
			return nil, fmt.Errorf("%w: %s", ErrNoTokenInResponse, msg)
		}
		return nil, ErrNoTokenInResponse
	}

	if err := s.sessions.SetToken(token); err != nil {
		// The in-memory session is already set; a persistence failure
		// only costs durability across restarts.
		s.logger.Warn("token not persisted", zap.Error(err))
	}
	return extractUser(raw), nil
}

// Register creates an account. When the response carries a token the session
// is logged in immediately; otherwise the caller still has to log in.
func (s *Service) Register(ctx context.Context, params RegisterParams) (*User, error) {
	var raw json.RawMessage
	if err := s.client.Post(ctx, "/auth/register", params, &raw); err != nil {
		return nil, err
	}

	if token, ok := extractToken(raw); ok {
		if err := s.sessions.SetToken(token); err != nil {
			s.logger.Warn("token not persisted", zap.Error(err))
		}
	}
	return extractUser(raw), nil
}

// Logout discards the local token. The server-side call is best effort: the
// token is gone locally whatever the server says.
func (s *Service) Logout(ctx context.Context) error {
	if err := s.client.Post(ctx, "/auth/logout", nil, nil); err != nil {
		s.logger.Debug("server-side logout failed", zap.Error(err))
	}
	return s.sessions.Clear()
}

// tokenEnvelope covers the token locations different revisions of the API
// have used.
type tokenEnvelope struct {
	Token       string          `json:"token"`
	AccessToken string          `json:"access_token"`
	Data        json.RawMessage `json:"data"`
	Meta        json.RawMessage `json:"meta"`
	Message     string          `json:"message"`
	User        json.RawMessage `json:"user"`
}

// extractToken finds the bearer token in a response. Precedence: token,
// access_token, data.token, data.access_token, meta.token.
func extractToken(raw json.RawMessage) (string, bool) {
	var env tokenEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return "", false
	}
	if env.Token != "" {
		return env.Token, true
	}
	if env.AccessToken != "" {
		return env.AccessToken, true
	}
	for _, nested := range []json.RawMessage{env.Data, env.Meta} {
		if len(nested) == 0 {
			continue
		}
		var inner tokenEnvelope
		if err := json.Unmarshal(nested, &inner); err != nil {
			continue
		}
		if inner.Token != "" {
			return inner.Token, true
		}
		if inner.AccessToken != "" {
			return inner.AccessToken, true
		}
	}
	return "", false
}

func extractUser(raw json.RawMessage) *User {
	var env tokenEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil
	}
	for _, candidate := range []json.RawMessage{env.User, env.Data} {
		if len(candidate) == 0 {
			continue
		}
		var user User
		if err := json.Unmarshal(candidate, &user); err == nil && (user.ID != 0 || user.Email != "") {
			return &user
		}
		// data may wrap the user one level deeper
		var inner tokenEnvelope
		if err := json.Unmarshal(candidate, &inner); err == nil && len(inner.User) > 0 {
			if err := json.Unmarshal(inner.User, &user); err == nil && (user.ID != 0 || user.Email != "") {
				return &user
			}
		}
	}
	return nil
}

func serverMessage(raw json.RawMessage) string {
	var env tokenEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return ""
	}
	return env.Message
}
