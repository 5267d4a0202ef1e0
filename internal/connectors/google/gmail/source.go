// Package gmail implements a mail source backed by the Gmail API.
package gmail

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/him6ul/AIAssistant/internal/connectors/google"
	"github.com/him6ul/AIAssistant/internal/core/domain"
	"github.com/him6ul/AIAssistant/internal/core/ports/driven"
	"github.com/him6ul/AIAssistant/internal/logger"
	"github.com/him6ul/AIAssistant/internal/normalisers/eml"
)

// Ensure Source implements the interface.
var _ driven.MailSource = (*Source)(nil)

const userID = "me"

// Source reads, searches and sends mail through the Gmail API.
type Source struct {
	cfg  *Config
	opts []option.ClientOption
	now  func() time.Time

	mu      sync.RWMutex
	svc     *gmail.Service
	address string
}

// New creates a Gmail source. Options are passed to the API client.
func New(cfg *Config, opts ...option.ClientOption) *Source {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Source{cfg: cfg, opts: opts, now: time.Now}
}

// SourceType returns the provider identifier.
func (s *Source) SourceType() domain.SourceType { return domain.SourceGmail }

// Capabilities returns the adapter feature flags.
func (s *Source) Capabilities() domain.Capabilities {
	return domain.Capabilities{
		CanSend:           true,
		CanReceive:        true,
		CanSearch:         true,
		SupportsThreading: true,
		ConcurrentSafe:    true,
	}
}

// Connect builds the API client and verifies the account.
func (s *Source) Connect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.svc != nil {
		return nil
	}

	svc, err := google.NewGmailService(ctx, s.cfg.Credentials, s.opts...)
	if err != nil {
		return domain.Permanent(err)
	}

	profile, err := svc.Users.GetProfile(userID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("verify gmail account: %w", google.WrapError(err))
	}

	s.svc = svc
	s.address = profile.EmailAddress
	logger.Debug("gmail: connected as %s", s.address)
	return nil
}

// Disconnect drops the API client.
func (s *Source) Disconnect(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.svc = nil
	return nil
}

// IsConnected reports whether Connect succeeded.
func (s *Source) IsConnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.svc != nil
}

func (s *Source) service() (*gmail.Service, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.svc == nil {
		return nil, "", domain.ErrNotConnected
	}
	return s.svc, s.address, nil
}

// FetchEmails lists messages matching q, newest first.
func (s *Source) FetchEmails(ctx context.Context, q domain.EmailQuery) ([]domain.UnifiedEmail, error) {
	svc, _, err := s.service()
	if err != nil {
		return nil, err
	}

	labels := s.cfg.LabelIDs
	if q.Folder != "" {
		labels = []string{strings.ToUpper(q.Folder)}
	}

	emails, err := s.list(ctx, svc, s.buildQuery(q), labels, q.EffectiveLimit())
	if err != nil {
		return nil, err
	}
	return domain.FilterEmails(emails, q), nil
}

// SearchEmails runs a Gmail search query across all mail.
func (s *Source) SearchEmails(ctx context.Context, query string, limit int) ([]domain.UnifiedEmail, error) {
	svc, _, err := s.service()
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = domain.DefaultFetchLimit
	}
	return s.list(ctx, svc, query, nil, limit)
}

// SendEmail composes an RFC 2822 message and sends it from the connected account.
func (s *Source) SendEmail(ctx context.Context, email domain.OutgoingEmail) (*domain.UnifiedEmail, error) {
	svc, from, err := s.service()
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	var buf bytes.Buffer
	if err := eml.Compose(&buf, from, email, now); err != nil {
		return nil, domain.Permanent(err)
	}

	sent, err := svc.Users.Messages.Send(userID, &gmail.Message{Raw: encodeRaw(buf.Bytes())}).Context(ctx).Do()
	if err != nil {
		return nil, google.WrapError(err)
	}

	out := &domain.UnifiedEmail{
		ID:          domain.UnifiedID(domain.SourceGmail, sent.Id),
		SourceType:  domain.SourceGmail,
		SourceID:    sent.Id,
		Subject:     email.Subject,
		FromAddress: domain.Identity{ID: from, Email: from},
		ToAddresses: eml.Recipients(email.To),
		Timestamp:   now,
		IsRead:      true,
		Importance:  domain.ImportanceNormal,
		ThreadID:    sent.ThreadId,
		Labels:      sent.LabelIds,
		RawData: domain.RawJSON(rawPayload{
			ID:       sent.Id,
			ThreadID: sent.ThreadId,
			LabelIDs: sent.LabelIds,
		}),
	}
	if email.HTML {
		out.BodyHTML = email.Body
	} else {
		out.BodyText = email.Body
	}
	return out, nil
}

// buildQuery translates an email query into Gmail search syntax.
func (s *Source) buildQuery(q domain.EmailQuery) string {
	var parts []string
	if s.cfg.Query != "" {
		parts = append(parts, s.cfg.Query)
	}
	if q.Since != nil {
		// after: is exclusive at second granularity; step back one
		// second and let FilterEmails apply the inclusive bound.
		parts = append(parts, "after:"+strconv.FormatInt(q.Since.Unix()-1, 10))
	}
	if q.UnreadOnly {
		parts = append(parts, "is:unread")
	}
	return strings.Join(parts, " ")
}

// list pages through message IDs and fetches each message in raw form.
func (s *Source) list(ctx context.Context, svc *gmail.Service, query string, labels []string, limit int) ([]domain.UnifiedEmail, error) {
	var (
		emails    []domain.UnifiedEmail
		pageToken string
	)

	for len(emails) < limit {
		pageSize := s.cfg.MaxResults
		if remaining := int64(limit - len(emails)); remaining < pageSize {
			pageSize = remaining
		}

		call := svc.Users.Messages.List(userID).
			MaxResults(pageSize).
			IncludeSpamTrash(s.cfg.IncludeSpamTrash).
			Context(ctx)
		if query != "" {
			call = call.Q(query)
		}
		if len(labels) > 0 {
			call = call.LabelIds(labels...)
		}
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		resp, err := call.Do()
		if err != nil {
			return nil, google.WrapError(err)
		}

		for _, ref := range resp.Messages {
			if len(emails) >= limit {
				break
			}
			msg, err := svc.Users.Messages.Get(userID, ref.Id).Format("raw").Context(ctx).Do()
			if err != nil {
				return nil, google.WrapError(err)
			}
			if !shouldInclude(msg, s.cfg) {
				continue
			}
			email, err := toUnifiedEmail(msg)
			if err != nil {
				logger.Warn("gmail: skipping message %s: %v", ref.Id, err)
				continue
			}
			emails = append(emails, email)
		}

		if resp.NextPageToken == "" {
			break
		}
		pageToken = resp.NextPageToken
	}

	return emails, nil
}
