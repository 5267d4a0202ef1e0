package msgraph

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/him6ul/AIAssistant/internal/core/domain"
	"github.com/him6ul/AIAssistant/internal/logger"
)

// user is the signed-in account returned by GET /me.
type user struct {
	ID                string `json:"id"`
	DisplayName       string `json:"displayName"`
	Mail              string `json:"mail"`
	UserPrincipalName string `json:"userPrincipalName"`
}

func (u user) identity() domain.Identity {
	email := u.Mail
	if email == "" {
		email = u.UserPrincipalName
	}
	return domain.Identity{ID: u.ID, Name: u.DisplayName, Email: email}
}

// session is the connection state shared by the Graph sources.
type session struct {
	cfg    *Config
	scopes []string
	now    func() time.Time

	mu     sync.RWMutex
	client *Client
	me     user
}

func newSession(cfg *Config, scopes ...string) session {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return session{cfg: cfg, scopes: scopes, now: time.Now}
}

// Connect builds the authenticated client and verifies the account.
func (s *session) Connect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client != nil {
		return nil
	}

	// The token source outlives the Connect call.
	base := context.WithoutCancel(ctx)
	ts, err := s.cfg.TokenSource(base, s.scopes...)
	if err != nil {
		return domain.Permanent(err)
	}
	c := NewClient(oauth2.NewClient(base, ts), s.cfg.BaseURL)

	var me user
	if err := c.Get(ctx, "/me", nil, &me); err != nil {
		return fmt.Errorf("verify graph account: %w", err)
	}

	s.client = c
	s.me = me
	logger.Debug("msgraph: connected as %s", me.identity())
	return nil
}

// Disconnect drops the client.
func (s *session) Disconnect(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.client = nil
	return nil
}

// IsConnected reports whether Connect succeeded.
func (s *session) IsConnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.client != nil
}

func (s *session) conn() (*Client, user, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.client == nil {
		return nil, user{}, domain.ErrNotConnected
	}
	return s.client, s.me, nil
}

// pageSize returns the $top value for a fetch of limit items.
func (s *session) pageSize(limit int) int {
	if limit > 0 && limit < s.cfg.PageSize {
		return limit
	}
	return s.cfg.PageSize
}

// graphTime formats t for an OData $filter.
func graphTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
