package msgraph

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/him6ul/AIAssistant/internal/core/domain"
	"github.com/him6ul/AIAssistant/internal/core/ports/driven"
	"github.com/him6ul/AIAssistant/internal/normalisers/html"
)

var _ driven.MailSource = (*OutlookSource)(nil)

const mailSelect = "id,subject,body,bodyPreview,from,toRecipients,receivedDateTime,isRead,importance,conversationId,categories,flag"

// OutlookSource reads, searches and sends Outlook mail.
type OutlookSource struct {
	session
}

// NewOutlook creates an Outlook mail source.
func NewOutlook(cfg *Config) *OutlookSource {
	return &OutlookSource{session: newSession(cfg, scope("Mail.ReadWrite"), scope("Mail.Send"), scope("User.Read"))}
}

// SourceType returns the provider identifier.
func (s *OutlookSource) SourceType() domain.SourceType { return domain.SourceOutlook }

// Capabilities returns the adapter feature flags.
func (s *OutlookSource) Capabilities() domain.Capabilities {
	return domain.Capabilities{
		CanSend:           true,
		CanReceive:        true,
		CanSearch:         true,
		SupportsThreading: true,
		ConcurrentSafe:    true,
	}
}

type emailAddress struct {
	Name    string `json:"name,omitempty"`
	Address string `json:"address"`
}

type recipient struct {
	EmailAddress emailAddress `json:"emailAddress"`
}

type itemBody struct {
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
}

type mailMessage struct {
	ID               string      `json:"id"`
	Subject          string      `json:"subject"`
	Body             itemBody    `json:"body"`
	BodyPreview      string      `json:"bodyPreview"`
	From             *recipient  `json:"from"`
	ToRecipients     []recipient `json:"toRecipients"`
	ReceivedDateTime time.Time   `json:"receivedDateTime"`
	IsRead           bool        `json:"isRead"`
	Importance       string      `json:"importance"`
	ConversationID   string      `json:"conversationId"`
	Categories       []string    `json:"categories"`
	Flag             *struct {
		FlagStatus string `json:"flagStatus"`
	} `json:"flag"`
}

// FetchEmails lists a mail folder, newest first.
func (s *OutlookSource) FetchEmails(ctx context.Context, q domain.EmailQuery) ([]domain.UnifiedEmail, error) {
	c, _, err := s.conn()
	if err != nil {
		return nil, err
	}

	folder := q.Folder
	if folder == "" {
		folder = s.cfg.MailFolder
	}
	limit := q.EffectiveLimit()

	query := url.Values{}
	query.Set("$top", strconv.Itoa(s.pageSize(limit)))
	query.Set("$select", mailSelect)
	query.Set("$orderby", "receivedDateTime desc")
	if filter := mailFilter(q); filter != "" {
		query.Set("$filter", filter)
	}

	msgs, err := list[mailMessage](ctx, c, "/me/mailFolders/"+url.PathEscape(folder)+"/messages", query, limit)
	if err != nil {
		return nil, err
	}
	return domain.FilterEmails(toUnifiedEmails(msgs), q), nil
}

// mailFilter builds the $filter clause. Graph rejects a $filter that
// does not lead with the $orderby property, so receivedDateTime always
// comes first.
func mailFilter(q domain.EmailQuery) string {
	if q.Since == nil && !q.UnreadOnly {
		return ""
	}
	since := time.Unix(0, 0)
	if q.Since != nil {
		since = *q.Since
	}
	clauses := []string{"receivedDateTime ge " + graphTime(since)}
	if q.UnreadOnly {
		clauses = append(clauses, "isRead eq false")
	}
	return strings.Join(clauses, " and ")
}

// SearchEmails runs a $search over every folder.
func (s *OutlookSource) SearchEmails(ctx context.Context, query string, limit int) ([]domain.UnifiedEmail, error) {
	c, _, err := s.conn()
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = domain.DefaultFetchLimit
	}

	params := url.Values{}
	params.Set("$search", `"`+strings.ReplaceAll(query, `"`, `\"`)+`"`)
	params.Set("$select", mailSelect)
	params.Set("$top", strconv.Itoa(s.pageSize(limit)))

	msgs, err := list[mailMessage](ctx, c, "/me/messages", params, limit)
	if err != nil {
		return nil, err
	}
	emails := toUnifiedEmails(msgs)
	// $search results come back in relevance order.
	sort.SliceStable(emails, func(i, j int) bool { return emails[i].Timestamp.After(emails[j].Timestamp) })
	return emails, nil
}

type sendMailRequest struct {
	Message struct {
		Subject      string      `json:"subject"`
		Body         itemBody    `json:"body"`
		ToRecipients []recipient `json:"toRecipients"`
		CcRecipients []recipient `json:"ccRecipients,omitempty"`
	} `json:"message"`
	SaveToSentItems bool `json:"saveToSentItems"`
}

// SendEmail sends through /me/sendMail. Graph returns no message ID, so
// the returned email carries a generated one.
func (s *OutlookSource) SendEmail(ctx context.Context, email domain.OutgoingEmail) (*domain.UnifiedEmail, error) {
	c, me, err := s.conn()
	if err != nil {
		return nil, err
	}
	if len(email.To) == 0 {
		return nil, fmt.Errorf("%w: email needs at least one recipient", domain.ErrInvalidInput)
	}

	var req sendMailRequest
	req.Message.Subject = email.Subject
	req.Message.Body = itemBody{ContentType: "Text", Content: email.Body}
	if email.HTML {
		req.Message.Body.ContentType = "HTML"
	}
	req.Message.ToRecipients = recipients(email.To)
	req.Message.CcRecipients = recipients(email.Cc)
	req.SaveToSentItems = true

	if err := c.Post(ctx, "/me/sendMail", req, nil); err != nil {
		return nil, err
	}

	nativeID := "sent-" + uuid.NewString()
	sent := &domain.UnifiedEmail{
		ID:          domain.UnifiedID(domain.SourceOutlook, nativeID),
		SourceType:  domain.SourceOutlook,
		SourceID:    nativeID,
		Subject:     email.Subject,
		FromAddress: me.identity(),
		Timestamp:   s.now().UTC(),
		IsRead:      true,
		Importance:  domain.ImportanceNormal,
		RawData:     domain.RawJSON(req),
	}
	for _, r := range req.Message.ToRecipients {
		sent.ToAddresses = append(sent.ToAddresses, domain.Identity{Email: r.EmailAddress.Address})
	}
	if email.HTML {
		sent.BodyHTML = email.Body
		sent.BodyText = html.Text(email.Body)
	} else {
		sent.BodyText = email.Body
	}
	return sent, nil
}

func recipients(addrs []string) []recipient {
	out := make([]recipient, 0, len(addrs))
	for _, a := range addrs {
		if a = strings.TrimSpace(a); a != "" {
			out = append(out, recipient{EmailAddress: emailAddress{Address: a}})
		}
	}
	return out
}

func toUnifiedEmails(msgs []mailMessage) []domain.UnifiedEmail {
	out := make([]domain.UnifiedEmail, 0, len(msgs))
	for i := range msgs {
		out = append(out, toUnifiedEmail(&msgs[i]))
	}
	return out
}

func toUnifiedEmail(m *mailMessage) domain.UnifiedEmail {
	e := domain.UnifiedEmail{
		ID:         domain.UnifiedID(domain.SourceOutlook, m.ID),
		SourceType: domain.SourceOutlook,
		SourceID:   m.ID,
		Subject:    m.Subject,
		Timestamp:  m.ReceivedDateTime.UTC(),
		IsRead:     m.IsRead,
		Importance: mailImportance(m),
		ThreadID:   m.ConversationID,
		Labels:     m.Categories,
		RawData:    domain.RawJSON(m),
	}
	if m.From != nil {
		e.FromAddress = domain.Identity{Name: m.From.EmailAddress.Name, Email: m.From.EmailAddress.Address}
	}
	for _, r := range m.ToRecipients {
		e.ToAddresses = append(e.ToAddresses, domain.Identity{Name: r.EmailAddress.Name, Email: r.EmailAddress.Address})
	}

	if strings.EqualFold(m.Body.ContentType, "html") {
		e.BodyHTML = m.Body.Content
		e.BodyText = html.Text(m.Body.Content)
	} else {
		e.BodyText = m.Body.Content
	}
	if e.BodyText == "" {
		e.BodyText = m.BodyPreview
	}
	return e
}

// mailImportance maps the importance field; a follow-up flag counts as high.
func mailImportance(m *mailMessage) domain.Importance {
	imp := domain.ImportanceNormal
	switch strings.ToLower(m.Importance) {
	case "high":
		imp = domain.ImportanceHigh
	case "low":
		imp = domain.ImportanceLow
	}
	if m.Flag != nil && m.Flag.FlagStatus == "flagged" {
		imp = domain.ImportanceHigh
	}
	return imp
}
