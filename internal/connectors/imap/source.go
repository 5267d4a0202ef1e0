// Package imap implements a read-only mail source over any IMAP server.
package imap

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	goimap "github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"

	"github.com/him6ul/AIAssistant/internal/core/domain"
	"github.com/him6ul/AIAssistant/internal/core/ports/driven"
	"github.com/him6ul/AIAssistant/internal/logger"
	"github.com/him6ul/AIAssistant/internal/normalisers/eml"
)

// Ensure Source implements the interface.
var _ driven.MailSource = (*Source)(nil)

// Flags some servers use for provider-side importance.
const (
	flagImportant      = "\\Important"
	flagGmailImportant = "$Important"
)

// Source reads and searches one IMAP account over a single connection.
// The connection is not safe for concurrent commands, so the adapter
// advertises ConcurrentSafe=false and the middleware serialises calls.
type Source struct {
	cfg *Config

	// dial opens a logged-out client. Replaced in tests.
	dial func(cfg *Config) (*client.Client, error)

	mu sync.Mutex
	c  *client.Client

	connected atomic.Bool
}

// New creates an IMAP source.
func New(cfg *Config) *Source {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Source{cfg: cfg, dial: dial}
}

func dial(cfg *Config) (*client.Client, error) {
	if cfg.TLS {
		return client.DialTLS(cfg.Addr(), nil)
	}
	return client.Dial(cfg.Addr())
}

// SourceType returns the provider identifier.
func (s *Source) SourceType() domain.SourceType { return domain.SourceIMAP }

// Capabilities returns the adapter feature flags.
func (s *Source) Capabilities() domain.Capabilities {
	return domain.Capabilities{
		CanReceive: true,
		CanSearch:  true,
	}
}

// Connect dials and logs in.
func (s *Source) Connect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.connected.Load() && s.c != nil {
		return nil
	}
	if err := s.login(ctx); err != nil {
		return err
	}
	s.connected.Store(true)
	logger.Debug("imap: connected to %s as %s", s.cfg.Addr(), s.cfg.Username)
	return nil
}

// login must be called with mu held.
func (s *Source) login(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c, err := s.dial(s.cfg)
	if err != nil {
		return domain.Transient(fmt.Errorf("imap connect %s: %w", s.cfg.Addr(), err))
	}
	c.Timeout = s.cfg.Timeout

	if err := c.Login(s.cfg.Username, s.cfg.Password); err != nil {
		_ = c.Logout()
		if isConnectionError(err) {
			return wrapError("login", err)
		}
		return domain.Permanent(fmt.Errorf("%w: imap login: %w", domain.ErrAuthInvalid, err))
	}

	s.c = c
	return nil
}

// Disconnect logs out. Safe to call when not connected.
func (s *Source) Disconnect(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.connected.Store(false)
	if s.c == nil {
		return nil
	}
	err := s.c.Logout()
	s.c = nil
	if err != nil && !isConnectionError(err) {
		return fmt.Errorf("imap logout: %w", err)
	}
	return nil
}

// IsConnected reports whether the adapter holds a session.
func (s *Source) IsConnected() bool {
	return s.connected.Load()
}

// FetchEmails returns the newest messages in the query folder.
func (s *Source) FetchEmails(ctx context.Context, q domain.EmailQuery) ([]domain.UnifiedEmail, error) {
	criteria := goimap.NewSearchCriteria()
	if q.Since != nil {
		// SINCE has day granularity; FilterEmails applies the exact bound.
		criteria.Since = q.Since.UTC().Truncate(24 * time.Hour)
	}
	if q.UnreadOnly {
		criteria.WithoutFlags = []string{goimap.SeenFlag}
	}

	mailbox := s.cfg.Mailbox
	if q.Folder != "" {
		mailbox = q.Folder
	}

	emails, err := s.query(ctx, mailbox, criteria, q.EffectiveLimit())
	if err != nil {
		return nil, err
	}
	return domain.FilterEmails(emails, q), nil
}

// SearchEmails runs an IMAP TEXT search over headers and bodies.
func (s *Source) SearchEmails(ctx context.Context, query string, limit int) ([]domain.UnifiedEmail, error) {
	if limit <= 0 {
		limit = domain.DefaultFetchLimit
	}
	criteria := goimap.NewSearchCriteria()
	criteria.Text = []string{query}
	return s.query(ctx, s.cfg.Mailbox, criteria, limit)
}

// SendEmail is not supported; IMAP only reads mail.
func (s *Source) SendEmail(context.Context, domain.OutgoingEmail) (*domain.UnifiedEmail, error) {
	return nil, &domain.CapabilityMisuseError{Source: domain.SourceIMAP, Capability: "CanSend", Op: "SendEmail"}
}

// query searches mailbox and fetches the newest limit matches.
func (s *Source) query(ctx context.Context, mailbox string, criteria *goimap.SearchCriteria, limit int) ([]domain.UnifiedEmail, error) {
	var emails []domain.UnifiedEmail

	err := s.withSession(ctx, func(c *client.Client) error {
		if _, err := c.Select(mailbox, true); err != nil {
			return wrapError("select "+mailbox, err)
		}

		uids, err := c.UidSearch(criteria)
		if err != nil {
			return wrapError("search", err)
		}
		if len(uids) == 0 {
			return nil
		}

		// Higher UIDs are newer.
		sort.Slice(uids, func(i, j int) bool { return uids[i] > uids[j] })
		if len(uids) > limit {
			uids = uids[:limit]
		}

		emails, err = fetch(c, mailbox, uids)
		return err
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(emails, func(i, j int) bool { return emails[i].Timestamp.After(emails[j].Timestamp) })
	return emails, nil
}

func fetch(c *client.Client, mailbox string, uids []uint32) ([]domain.UnifiedEmail, error) {
	seqSet := new(goimap.SeqSet)
	seqSet.AddNum(uids...)

	section := &goimap.BodySectionName{Peek: true}
	items := []goimap.FetchItem{section.FetchItem(), goimap.FetchFlags, goimap.FetchInternalDate, goimap.FetchUid}

	messages := make(chan *goimap.Message, len(uids))
	done := make(chan error, 1)
	go func() {
		done <- c.UidFetch(seqSet, items, messages)
	}()

	emails := make([]domain.UnifiedEmail, 0, len(uids))
	for msg := range messages {
		email, err := toUnifiedEmail(mailbox, msg, section)
		if err != nil {
			logger.Warn("imap: skipping uid %d: %v", msg.Uid, err)
			continue
		}
		emails = append(emails, email)
	}

	if err := <-done; err != nil {
		return nil, wrapError("fetch", err)
	}
	return emails, nil
}

// withSession runs fn on a live session, reconnecting once if the
// previous connection dropped. fn runs under mu; cancelling ctx
// terminates the connection so the blocked command returns.
func (s *Source) withSession(ctx context.Context, fn func(c *client.Client) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.connected.Load() {
		return domain.ErrNotConnected
	}
	if s.c == nil || s.c.State() == goimap.LogoutState {
		if err := s.login(ctx); err != nil {
			return err
		}
	}

	c := s.c
	stop := context.AfterFunc(ctx, func() { _ = c.Terminate() })
	err := fn(c)
	if !stop() {
		// ctx fired mid-command; the connection is gone.
		s.c = nil
		return ctx.Err()
	}
	if err != nil && isConnectionError(err) {
		s.c = nil
	}
	return err
}

// rawPayload is what RawData records for an IMAP message.
type rawPayload struct {
	Mailbox      string    `json:"mailbox"`
	UID          uint32    `json:"uid"`
	Flags        []string  `json:"flags"`
	InternalDate time.Time `json:"internal_date"`
	MessageID    string    `json:"message_id,omitempty"`
}

func toUnifiedEmail(mailbox string, msg *goimap.Message, section *goimap.BodySectionName) (domain.UnifiedEmail, error) {
	body := msg.GetBody(section)
	if body == nil {
		return domain.UnifiedEmail{}, fmt.Errorf("no body returned")
	}
	parsed, err := eml.Parse(body)
	if err != nil {
		return domain.UnifiedEmail{}, err
	}

	ts := parsed.Date
	if !msg.InternalDate.IsZero() {
		ts = msg.InternalDate.UTC()
	}

	nativeID := mailbox + "/" + strconv.FormatUint(uint64(msg.Uid), 10)
	threadID := parsed.InReplyTo
	if threadID == "" {
		threadID = parsed.MessageID
	}

	return domain.UnifiedEmail{
		ID:          domain.UnifiedID(domain.SourceIMAP, nativeID),
		SourceType:  domain.SourceIMAP,
		SourceID:    nativeID,
		Subject:     parsed.Subject,
		BodyText:    parsed.BodyText,
		BodyHTML:    parsed.BodyHTML,
		FromAddress: parsed.From,
		ToAddresses: parsed.To,
		Timestamp:   ts,
		IsRead:      hasFlag(msg.Flags, goimap.SeenFlag),
		Importance:  importance(msg.Flags, parsed.Importance),
		ThreadID:    threadID,
		Labels:      append([]string(nil), msg.Flags...),
		RawData: domain.RawJSON(rawPayload{
			Mailbox:      mailbox,
			UID:          msg.Uid,
			Flags:        msg.Flags,
			InternalDate: msg.InternalDate.UTC(),
			MessageID:    parsed.MessageID,
		}),
	}, nil
}

// importance treats \Flagged and Gmail's important flags as high priority.
func importance(flags []string, header domain.Importance) domain.Importance {
	if hasFlag(flags, goimap.FlaggedFlag) || hasFlag(flags, flagImportant) || hasFlag(flags, flagGmailImportant) {
		if header == domain.ImportanceUrgent {
			return header
		}
		return domain.ImportanceHigh
	}
	if header != domain.ImportanceNone {
		return header
	}
	return domain.ImportanceNormal
}

func hasFlag(flags []string, want string) bool {
	for _, f := range flags {
		if f == want {
			return true
		}
	}
	return false
}
