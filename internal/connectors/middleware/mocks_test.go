package middleware

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/him6ul/AIAssistant/internal/core/domain"
)

// fakeMail is a scriptable driven.MailSource.
type fakeMail struct {
	caps domain.Capabilities

	mu        sync.Mutex
	connected bool
	connects  int

	calls   atomic.Int32
	active  atomic.Int32
	maxSeen atomic.Int32

	// fetch decides the outcome of the nth call (1-based).
	fetch func(ctx context.Context, n int) ([]domain.UnifiedEmail, error)
	hold  time.Duration
}

func (f *fakeMail) SourceType() domain.SourceType     { return domain.SourceGmail }
func (f *fakeMail) Capabilities() domain.Capabilities { return f.caps }

func (f *fakeMail) Connect(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connects++
	f.connected = true
	return nil
}

func (f *fakeMail) Disconnect(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connected = false
	return nil
}

func (f *fakeMail) IsConnected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connected
}

func (f *fakeMail) FetchEmails(ctx context.Context, _ domain.EmailQuery) ([]domain.UnifiedEmail, error) {
	n := int(f.calls.Add(1))

	cur := f.active.Add(1)
	defer f.active.Add(-1)
	for {
		seen := f.maxSeen.Load()
		if cur <= seen || f.maxSeen.CompareAndSwap(seen, cur) {
			break
		}
	}
	if f.hold > 0 {
		time.Sleep(f.hold)
	}

	if f.fetch == nil {
		return []domain.UnifiedEmail{email("1")}, nil
	}
	return f.fetch(ctx, n)
}

func (f *fakeMail) SearchEmails(context.Context, string, int) ([]domain.UnifiedEmail, error) {
	f.calls.Add(1)
	return []domain.UnifiedEmail{email("s")}, nil
}

func (f *fakeMail) SendEmail(context.Context, domain.OutgoingEmail) (*domain.UnifiedEmail, error) {
	f.calls.Add(1)
	return nil, domain.Transient(domain.ErrTimeout)
}

func email(id string) domain.UnifiedEmail {
	return domain.UnifiedEmail{
		ID:         domain.UnifiedID(domain.SourceGmail, id),
		SourceType: domain.SourceGmail,
		SourceID:   id,
		RawData:    []byte(`{}`),
	}
}

// fastConfig keeps tests quick and deterministic.
func fastConfig() Config {
	return Config{
		Retry: RetryConfig{
			MaxRetries:     3,
			InitialDelay:   time.Second,
			MaxDelay:       30 * time.Second,
			Multiplier:     2,
			AttemptTimeout: time.Second,
			Ceiling:        5 * time.Second,
		},
	}
}

// recordSleeps replaces the retry wait with a recorder.
func recordSleeps(w *MailSource) *[]time.Duration {
	var mu sync.Mutex
	slept := []time.Duration{}
	w.chain.retrier.sleep = func(_ context.Context, d time.Duration) error {
		mu.Lock()
		defer mu.Unlock()
		slept = append(slept, d)
		return nil
	}
	return &slept
}
