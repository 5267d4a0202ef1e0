// Package eml parses and composes RFC 5322 messages for the mail adapters.
package eml

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	_ "github.com/emersion/go-message/charset" // register non-UTF-8 charsets
	"github.com/emersion/go-message/mail"

	"github.com/him6ul/AIAssistant/internal/core/domain"
	"github.com/him6ul/AIAssistant/internal/normalisers/html"
)

// Parsed is the provider-independent content of a message.
type Parsed struct {
	MessageID  string
	Subject    string
	From       domain.Identity
	To         []domain.Identity
	Cc         []domain.Identity
	Date       time.Time
	BodyText   string
	BodyHTML   string
	Importance domain.Importance
	InReplyTo  string
}

// Parse reads a full message. Attachments are skipped.
func Parse(r io.Reader) (*Parsed, error) {
	mr, err := mail.CreateReader(r)
	if err != nil {
		return nil, fmt.Errorf("read message: %w", err)
	}
	defer mr.Close()

	p := &Parsed{}
	h := mr.Header

	p.Subject, _ = h.Subject()
	p.MessageID, _ = h.MessageID()
	if ids, err := h.MsgIDList("In-Reply-To"); err == nil && len(ids) > 0 {
		p.InReplyTo = ids[0]
	}
	if from, err := h.AddressList("From"); err == nil && len(from) > 0 {
		p.From = identity(from[0])
	}
	p.To = identities(&h, "To")
	p.Cc = identities(&h, "Cc")
	if date, err := h.Date(); err == nil {
		p.Date = date.UTC()
	}
	p.Importance = Importance(h.Get("Importance"), h.Get("X-Priority"))

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// Keep what was decoded so far; a broken trailing part
			// should not hide the headers.
			if p.BodyText == "" && p.BodyHTML == "" {
				return p, fmt.Errorf("read part: %w", err)
			}
			break
		}

		inline, ok := part.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}
		contentType := "text/plain"
		if inline.Get("Content-Type") != "" {
			if contentType, _, err = inline.ContentType(); err != nil {
				continue
			}
		}
		body, err := io.ReadAll(part.Body)
		if err != nil {
			continue
		}
		switch contentType {
		case "text/plain":
			if p.BodyText == "" {
				p.BodyText = string(body)
			}
		case "text/html":
			if p.BodyHTML == "" {
				p.BodyHTML = string(body)
			}
		}
	}

	if p.BodyText == "" && p.BodyHTML != "" {
		p.BodyText = html.Text(p.BodyHTML)
	}
	return p, nil
}

// Importance maps the Importance and X-Priority headers.
func Importance(importance, xPriority string) domain.Importance {
	switch strings.ToLower(strings.TrimSpace(importance)) {
	case "high":
		return domain.ImportanceHigh
	case "low":
		return domain.ImportanceLow
	case "normal":
		return domain.ImportanceNormal
	}

	// X-Priority: 1 (Highest) .. 5 (Lowest), optionally followed by a label.
	if p := strings.TrimSpace(xPriority); p != "" {
		switch p[0] {
		case '1':
			return domain.ImportanceUrgent
		case '2':
			return domain.ImportanceHigh
		case '3':
			return domain.ImportanceNormal
		case '4', '5':
			return domain.ImportanceLow
		}
	}
	return domain.ImportanceNone
}

// Compose writes email as a single-part RFC 5322 message.
func Compose(w io.Writer, from string, email domain.OutgoingEmail, now time.Time) error {
	var h mail.Header
	h.SetDate(now)
	h.SetSubject(email.Subject)

	fromAddr, err := mail.ParseAddress(from)
	if err != nil {
		return fmt.Errorf("%w: from address %q: %w", domain.ErrInvalidInput, from, err)
	}
	h.SetAddressList("From", []*mail.Address{fromAddr})

	to, err := parseAddresses(email.To)
	if err != nil {
		return err
	}
	h.SetAddressList("To", to)
	if len(email.Cc) > 0 {
		cc, err := parseAddresses(email.Cc)
		if err != nil {
			return err
		}
		h.SetAddressList("Cc", cc)
	}
	if err := h.GenerateMessageID(); err != nil {
		return fmt.Errorf("generate message id: %w", err)
	}

	contentType := "text/plain"
	if email.HTML {
		contentType = "text/html"
	}
	h.SetContentType(contentType, map[string]string{"charset": "utf-8"})

	body, err := mail.CreateSingleInlineWriter(w, h)
	if err != nil {
		return fmt.Errorf("create message: %w", err)
	}
	if _, err := io.WriteString(body, email.Body); err != nil {
		body.Close()
		return fmt.Errorf("write body: %w", err)
	}
	return body.Close()
}

// Recipients parses the addresses of an outgoing email for display.
func Recipients(addrs []string) []domain.Identity {
	out := make([]domain.Identity, 0, len(addrs))
	for _, a := range addrs {
		if parsed, err := mail.ParseAddress(a); err == nil {
			out = append(out, identity(parsed))
			continue
		}
		out = append(out, domain.Identity{Email: a})
	}
	return out
}

func parseAddresses(addrs []string) ([]*mail.Address, error) {
	out := make([]*mail.Address, 0, len(addrs))
	for _, a := range addrs {
		parsed, err := mail.ParseAddress(a)
		if err != nil {
			return nil, fmt.Errorf("%w: address %q: %w", domain.ErrInvalidInput, a, err)
		}
		out = append(out, parsed)
	}
	return out, nil
}

func identities(h *mail.Header, key string) []domain.Identity {
	list, err := h.AddressList(key)
	if err != nil || len(list) == 0 {
		return nil
	}
	out := make([]domain.Identity, 0, len(list))
	for _, a := range list {
		out = append(out, identity(a))
	}
	return out
}

func identity(a *mail.Address) domain.Identity {
	return domain.Identity{ID: a.Address, Name: a.Name, Email: a.Address}
}
