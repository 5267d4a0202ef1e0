package github

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"sync"
	"time"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"

	"github.com/him6ul/AIAssistant/internal/core/domain"
	"github.com/him6ul/AIAssistant/internal/core/ports/driven"
	"github.com/him6ul/AIAssistant/internal/logger"
)

// Ensure Source implements the interface.
var _ driven.MessageSource = (*Source)(nil)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// Reasons that mean someone asked for the user directly.
var importantReasons = map[string]bool{
	"mention":          true,
	"team_mention":     true,
	"review_requested": true,
	"assign":           true,
	"security_alert":   true,
}

// subjectURL matches the API URL of an issue or pull request subject.
var subjectURL = regexp.MustCompile(`/repos/([^/]+)/([^/]+)/(?:issues|pulls)/(\d+)$`)

// Source reads GitHub notification threads as messages.
type Source struct {
	cfg *Config

	mu     sync.RWMutex
	client *gh.Client
	me     *gh.User
}

// New creates a GitHub notifications source.
func New(cfg *Config) *Source {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Source{cfg: cfg}
}

// SourceType returns the provider identifier.
func (s *Source) SourceType() domain.SourceType { return domain.SourceGitHub }

// Capabilities returns the adapter feature flags.
func (s *Source) Capabilities() domain.Capabilities {
	return domain.Capabilities{
		CanSend:           true,
		CanReceive:        true,
		SupportsThreading: true,
		ConcurrentSafe:    true,
	}
}

// Connect builds the API client and validates the token.
func (s *Source) Connect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client != nil {
		return nil
	}
	if s.cfg.Token == "" {
		return domain.Permanent(fmt.Errorf("%w: github token is required", domain.ErrAuthRequired))
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: s.cfg.Token})
	tc := oauth2.NewClient(context.WithoutCancel(ctx), ts)
	tc.Timeout = DefaultTimeout
	client := gh.NewClient(tc)
	if s.cfg.BaseURL != "" {
		base, err := url.Parse(s.cfg.BaseURL)
		if err != nil {
			return domain.Permanent(fmt.Errorf("%w: base_url: %w", domain.ErrInvalidInput, err))
		}
		client.BaseURL = base
	}

	me, _, err := client.Users.Get(ctx, "")
	if err != nil {
		return wrapError(err, "validate credentials")
	}

	s.client = client
	s.me = me
	logger.Debug("github: connected as %s", me.GetLogin())
	return nil
}

// Disconnect drops the API client.
func (s *Source) Disconnect(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.client = nil
	s.me = nil
	return nil
}

// IsConnected reports whether Connect succeeded.
func (s *Source) IsConnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.client != nil
}

func (s *Source) session() (*gh.Client, *gh.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.client == nil {
		return nil, nil, domain.ErrNotConnected
	}
	return s.client, s.me, nil
}

// FetchMessages lists notification threads, most recently updated first.
// A ThreadID fetches that single thread.
func (s *Source) FetchMessages(ctx context.Context, q domain.MessageQuery) ([]domain.UnifiedMessage, error) {
	client, _, err := s.session()
	if err != nil {
		return nil, err
	}

	if q.ThreadID != "" {
		n, _, err := client.Activity.GetThread(ctx, q.ThreadID)
		if err != nil {
			return nil, wrapError(err, "get thread")
		}
		return domain.FilterMessages([]domain.UnifiedMessage{toUnifiedMessage(n)}, q), nil
	}

	limit := q.EffectiveLimit()
	opts := &gh.NotificationListOptions{
		All:           !q.UnreadOnly,
		Participating: s.cfg.Participating,
		ListOptions:   gh.ListOptions{PerPage: min(limit, s.cfg.PerPage)},
	}
	if q.Since != nil {
		opts.Since = *q.Since
	}

	var out []domain.UnifiedMessage
	for {
		notifications, resp, err := client.Activity.ListNotifications(ctx, opts)
		if err != nil {
			return nil, wrapError(err, "list notifications")
		}
		for _, n := range notifications {
			out = append(out, toUnifiedMessage(n))
		}
		if len(out) >= limit || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return domain.FilterMessages(out, q), nil
}

// SearchMessages is not supported by the notifications API.
func (s *Source) SearchMessages(context.Context, string, int) ([]domain.UnifiedMessage, error) {
	return nil, &domain.CapabilityMisuseError{Source: domain.SourceGitHub, Capability: "CanSearch", Op: "SearchMessages"}
}

// SendMessage comments on the issue or pull request behind a thread.
// The thread is taken from To, or ThreadID when To is empty.
func (s *Source) SendMessage(ctx context.Context, msg domain.OutgoingMessage) (*domain.UnifiedMessage, error) {
	client, me, err := s.session()
	if err != nil {
		return nil, err
	}
	threadID := msg.To
	if threadID == "" {
		threadID = msg.ThreadID
	}
	if threadID == "" {
		return nil, fmt.Errorf("%w: github reply needs a thread ID", domain.ErrInvalidInput)
	}

	thread, _, err := client.Activity.GetThread(ctx, threadID)
	if err != nil {
		return nil, wrapError(err, "get thread")
	}
	owner, repo, number, err := parseSubject(thread.GetSubject().GetURL())
	if err != nil {
		return nil, err
	}

	comment, _, err := client.Issues.CreateComment(ctx, owner, repo, number, &gh.IssueComment{Body: gh.Ptr(msg.Content)})
	if err != nil {
		return nil, wrapError(err, "create comment")
	}

	nativeID := "comment-" + strconv.FormatInt(comment.GetID(), 10)
	return &domain.UnifiedMessage{
		ID:         domain.UnifiedID(domain.SourceGitHub, nativeID),
		SourceType: domain.SourceGitHub,
		SourceID:   nativeID,
		Content:    comment.GetBody(),
		FromUser:   userIdentity(me),
		ToUsers:    []domain.Identity{{ID: owner + "/" + repo, Name: owner + "/" + repo}},
		Timestamp:  comment.GetCreatedAt().UTC(),
		ThreadID:   threadID,
		IsRead:     true,
		RawData:    domain.RawJSON(comment),
	}, nil
}

// parseSubject extracts owner, repo and number from a subject API URL.
func parseSubject(subject string) (string, string, int, error) {
	m := subjectURL.FindStringSubmatch(subject)
	if m == nil {
		return "", "", 0, fmt.Errorf("%w: thread subject %q is not an issue or pull request", domain.ErrUnsupportedType, subject)
	}
	number, err := strconv.Atoi(m[3])
	if err != nil {
		return "", "", 0, fmt.Errorf("%w: issue number %q", domain.ErrInvalidInput, m[3])
	}
	return m[1], m[2], number, nil
}

func toUnifiedMessage(n *gh.Notification) domain.UnifiedMessage {
	repo := n.GetRepository().GetFullName()
	subject := n.GetSubject()

	content := subject.GetTitle()
	if kind := subject.GetType(); kind != "" {
		content = kind + ": " + content
	}
	if repo != "" {
		content = "[" + repo + "] " + content
	}

	return domain.UnifiedMessage{
		ID:          domain.UnifiedID(domain.SourceGitHub, n.GetID()),
		SourceType:  domain.SourceGitHub,
		SourceID:    n.GetID(),
		Content:     content,
		FromUser:    domain.Identity{ID: repo, Name: repo},
		Timestamp:   n.GetUpdatedAt().UTC(),
		ThreadID:    n.GetID(),
		IsRead:      !n.GetUnread(),
		IsImportant: importantReasons[n.GetReason()],
		RawData:     domain.RawJSON(n),
	}
}

func userIdentity(u *gh.User) domain.Identity {
	if u == nil {
		return domain.Identity{}
	}
	name := u.GetName()
	if name == "" {
		name = u.GetLogin()
	}
	return domain.Identity{ID: u.GetLogin(), Name: name, Email: u.GetEmail()}
}
