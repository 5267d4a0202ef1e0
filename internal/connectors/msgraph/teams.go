package msgraph

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/him6ul/AIAssistant/internal/core/domain"
	"github.com/him6ul/AIAssistant/internal/core/ports/driven"
	"github.com/him6ul/AIAssistant/internal/normalisers/html"
)

var _ driven.MessageSource = (*TeamsSource)(nil)

// TeamsSource reads and sends Teams chat messages.
// Channel conversations are not covered.
type TeamsSource struct {
	session
}

// NewTeams creates a Teams chat source.
func NewTeams(cfg *Config) *TeamsSource {
	return &TeamsSource{session: newSession(cfg, scope("Chat.ReadWrite"), scope("User.Read"))}
}

// SourceType returns the provider identifier.
func (s *TeamsSource) SourceType() domain.SourceType { return domain.SourceTeams }

// Capabilities returns the adapter feature flags.
func (s *TeamsSource) Capabilities() domain.Capabilities {
	return domain.Capabilities{
		CanSend:           true,
		CanReceive:        true,
		SupportsThreading: true,
		ConcurrentSafe:    true,
	}
}

type chat struct {
	ID        string `json:"id"`
	Topic     string `json:"topic"`
	ChatType  string `json:"chatType"`
	Viewpoint *struct {
		LastMessageReadDateTime *time.Time `json:"lastMessageReadDateTime"`
	} `json:"viewpoint"`
}

// lastRead returns when the signed-in user last read the chat.
func (c chat) lastRead() (time.Time, bool) {
	if c.Viewpoint == nil || c.Viewpoint.LastMessageReadDateTime == nil {
		return time.Time{}, false
	}
	return *c.Viewpoint.LastMessageReadDateTime, true
}

type chatMessage struct {
	ID              string    `json:"id"`
	ChatID          string    `json:"chatId"`
	ReplyToID       string    `json:"replyToId"`
	MessageType     string    `json:"messageType"`
	CreatedDateTime time.Time `json:"createdDateTime"`
	Importance      string    `json:"importance"`
	Body            itemBody  `json:"body"`
	From            *struct {
		User *struct {
			ID          string `json:"id"`
			DisplayName string `json:"displayName"`
		} `json:"user"`
	} `json:"from"`
}

// FetchMessages reads the most recent chats and their newest messages.
// A ThreadID restricts the fetch to that chat.
func (s *TeamsSource) FetchMessages(ctx context.Context, q domain.MessageQuery) ([]domain.UnifiedMessage, error) {
	c, me, err := s.conn()
	if err != nil {
		return nil, err
	}
	limit := q.EffectiveLimit()

	chats := []chat{{ID: q.ThreadID}}
	if q.ThreadID == "" {
		query := url.Values{}
		query.Set("$top", strconv.Itoa(s.cfg.MaxChats))
		query.Set("$orderby", "lastMessagePreview/createdDateTime desc")
		query.Set("$expand", "lastMessagePreview")
		if chats, err = list[chat](ctx, c, "/me/chats", query, s.cfg.MaxChats); err != nil {
			return nil, err
		}
	}

	var out []domain.UnifiedMessage
	for _, ch := range chats {
		msgs, err := s.chatMessages(ctx, c, ch.ID, limit)
		if err != nil {
			return nil, fmt.Errorf("chat %s: %w", ch.ID, err)
		}
		for i := range msgs {
			if msgs[i].MessageType != "" && msgs[i].MessageType != "message" {
				continue
			}
			out = append(out, toUnifiedMessage(&msgs[i], ch, me))
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return domain.FilterMessages(out, q), nil
}

func (s *TeamsSource) chatMessages(ctx context.Context, c *Client, chatID string, limit int) ([]chatMessage, error) {
	query := url.Values{}
	query.Set("$top", strconv.Itoa(s.pageSize(limit)))
	query.Set("$orderby", "createdDateTime desc")
	return list[chatMessage](ctx, c, "/chats/"+url.PathEscape(chatID)+"/messages", query, limit)
}

// SearchMessages is not supported by the chat API.
func (s *TeamsSource) SearchMessages(context.Context, string, int) ([]domain.UnifiedMessage, error) {
	return nil, &domain.CapabilityMisuseError{Source: domain.SourceTeams, Capability: "CanSearch", Op: "SearchMessages"}
}

// SendMessage posts to the chat named by To, or by ThreadID when To is empty.
func (s *TeamsSource) SendMessage(ctx context.Context, msg domain.OutgoingMessage) (*domain.UnifiedMessage, error) {
	c, me, err := s.conn()
	if err != nil {
		return nil, err
	}
	chatID := msg.To
	if chatID == "" {
		chatID = msg.ThreadID
	}
	if chatID == "" {
		return nil, fmt.Errorf("%w: teams message needs a chat ID", domain.ErrInvalidInput)
	}

	req := map[string]any{"body": itemBody{ContentType: "text", Content: msg.Content}}
	var sent chatMessage
	if err := c.Post(ctx, "/chats/"+url.PathEscape(chatID)+"/messages", req, &sent); err != nil {
		return nil, err
	}
	if sent.ChatID == "" {
		sent.ChatID = chatID
	}
	m := toUnifiedMessage(&sent, chat{ID: chatID}, me)
	m.IsRead = true
	return &m, nil
}

func toUnifiedMessage(m *chatMessage, ch chat, me user) domain.UnifiedMessage {
	chatID := m.ChatID
	if chatID == "" {
		chatID = ch.ID
	}
	nativeID := chatID + "/" + m.ID

	u := domain.UnifiedMessage{
		ID:          domain.UnifiedID(domain.SourceTeams, nativeID),
		SourceType:  domain.SourceTeams,
		SourceID:    nativeID,
		Timestamp:   m.CreatedDateTime.UTC(),
		ThreadID:    chatID,
		IsImportant: m.Importance == "high" || m.Importance == "urgent",
		RawData:     domain.RawJSON(m),
	}
	if strings.EqualFold(m.Body.ContentType, "html") {
		u.Content = html.Text(m.Body.Content)
	} else {
		u.Content = strings.TrimSpace(m.Body.Content)
	}
	if m.From != nil && m.From.User != nil {
		u.FromUser = domain.Identity{ID: m.From.User.ID, Name: m.From.User.DisplayName}
	}

	switch {
	case u.FromUser.ID != "" && u.FromUser.ID == me.ID:
		u.IsRead = true
	default:
		if read, ok := ch.lastRead(); ok {
			u.IsRead = !m.CreatedDateTime.After(read)
		}
	}
	return u
}
