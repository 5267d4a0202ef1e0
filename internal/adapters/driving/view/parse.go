package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/him6ul/AIAssistant/internal/core/domain"
)

// ParseSourceTypes parses a comma separated source type list.
// An empty string yields nil, meaning every source.
func ParseSourceTypes(csv string) ([]domain.SourceType, error) {
	if strings.TrimSpace(csv) == "" {
		return nil, nil
	}
	var out []domain.SourceType
	for _, part := range strings.Split(csv, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		st, err := domain.ParseSourceType(part)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", err, strings.TrimSpace(part))
		}
		out = append(out, st)
	}
	return out, nil
}

// ParseSince parses a lower time bound relative to now. It accepts a
// duration ("24h", "90m"), a day count ("7d"), an RFC 3339 timestamp or a
// date ("2024-01-31"). An empty string yields nil.
func ParseSince(s string, now time.Time) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if strings.HasSuffix(s, "d") {
		var days int
		if _, err := fmt.Sscanf(s, "%dd", &days); err == nil && days >= 0 {
			t := now.AddDate(0, 0, -days).UTC()
			return &t, nil
		}
	}
	if d, err := time.ParseDuration(s); err == nil {
		if d < 0 {
			return nil, fmt.Errorf("%w: negative duration %q", domain.ErrInvalidInput, s)
		}
		t := now.Add(-d).UTC()
		return &t, nil
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, fmt.Errorf("%w: cannot parse time %q", domain.ErrInvalidInput, s)
}

// ParseCapabilities parses capability names for a partial refresh.
func ParseCapabilities(names []string) ([]domain.Capability, error) {
	var out []domain.Capability
	for _, n := range names {
		c := domain.Capability(strings.ToLower(strings.TrimSpace(n)))
		switch c {
		case "":
			continue
		case "messages":
			c = domain.CapabilityMessage
		case "emails", "email":
			c = domain.CapabilityMail
		case "notes":
			c = domain.CapabilityNote
		}
		switch c {
		case domain.CapabilityMessage, domain.CapabilityMail, domain.CapabilityNote:
			out = append(out, c)
		default:
			return nil, fmt.Errorf("%w: unknown capability %q", domain.ErrInvalidInput, n)
		}
	}
	return out, nil
}
