package gmail

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"google.golang.org/api/gmail/v1"

	"github.com/him6ul/AIAssistant/internal/core/domain"
	"github.com/him6ul/AIAssistant/internal/normalisers/eml"
)

// Gmail system labels the adapter interprets.
const (
	labelUnread    = "UNREAD"
	labelImportant = "IMPORTANT"
	labelStarred   = "STARRED"
	labelSpam      = "SPAM"
	labelTrash     = "TRASH"
)

// rawPayload is what RawData records for a Gmail message.
type rawPayload struct {
	ID           string   `json:"id"`
	ThreadID     string   `json:"threadId"`
	LabelIDs     []string `json:"labelIds"`
	Snippet      string   `json:"snippet,omitempty"`
	HistoryID    uint64   `json:"historyId,omitempty"`
	InternalDate int64    `json:"internalDate"`
	SizeEstimate int64    `json:"sizeEstimate,omitempty"`
}

// toUnifiedEmail converts a Gmail message fetched with Format("raw").
// msg.Raw contains the base64url-encoded RFC 2822 message.
func toUnifiedEmail(msg *gmail.Message) (domain.UnifiedEmail, error) {
	rawBytes, err := decodeRaw(msg.Raw)
	if err != nil {
		return domain.UnifiedEmail{}, fmt.Errorf("decode message %s: %w", msg.Id, err)
	}
	parsed, err := eml.Parse(bytes.NewReader(rawBytes))
	if err != nil {
		return domain.UnifiedEmail{}, fmt.Errorf("parse message %s: %w", msg.Id, err)
	}

	ts := parsed.Date
	if msg.InternalDate > 0 {
		ts = time.UnixMilli(msg.InternalDate).UTC()
	}

	return domain.UnifiedEmail{
		ID:          domain.UnifiedID(domain.SourceGmail, msg.Id),
		SourceType:  domain.SourceGmail,
		SourceID:    msg.Id,
		Subject:     parsed.Subject,
		BodyText:    bodyText(parsed, msg.Snippet),
		BodyHTML:    parsed.BodyHTML,
		FromAddress: parsed.From,
		ToAddresses: parsed.To,
		Timestamp:   ts,
		IsRead:      !hasLabel(msg.LabelIds, labelUnread),
		Importance:  importance(msg.LabelIds, parsed.Importance),
		ThreadID:    msg.ThreadId,
		Labels:      append([]string(nil), msg.LabelIds...),
		RawData: domain.RawJSON(rawPayload{
			ID:           msg.Id,
			ThreadID:     msg.ThreadId,
			LabelIDs:     msg.LabelIds,
			Snippet:      msg.Snippet,
			HistoryID:    msg.HistoryId,
			InternalDate: msg.InternalDate,
			SizeEstimate: msg.SizeEstimate,
		}),
	}, nil
}

// importance prefers Gmail's own labels over the message headers.
// IMPORTANT and STARRED both count as high priority.
func importance(labels []string, header domain.Importance) domain.Importance {
	if hasLabel(labels, labelImportant) || hasLabel(labels, labelStarred) {
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

func bodyText(p *eml.Parsed, snippet string) string {
	if p.BodyText != "" {
		return p.BodyText
	}
	return snippet
}

// decodeRaw accepts base64url with or without padding.
func decodeRaw(raw string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(strings.TrimRight(raw, "="))
}

// encodeRaw produces the base64url form Messages.Send expects.
func encodeRaw(b []byte) string {
	return base64.URLEncoding.EncodeToString(b)
}

// shouldInclude applies the spam/trash policy to a fetched message.
func shouldInclude(msg *gmail.Message, cfg *Config) bool {
	if !cfg.IncludeSpamTrash && (hasLabel(msg.LabelIds, labelSpam) || hasLabel(msg.LabelIds, labelTrash)) {
		return false
	}
	return true
}

func hasLabel(labels []string, want string) bool {
	for _, l := range labels {
		if l == want {
			return true
		}
	}
	return false
}
