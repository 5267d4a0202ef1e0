package middleware

import (
	"context"

	"github.com/him6ul/AIAssistant/internal/core/domain"
	"github.com/him6ul/AIAssistant/internal/core/ports/driven"
	"github.com/him6ul/AIAssistant/internal/logger"
)

// Ensure wrappers implement the capability interfaces.
var (
	_ driven.MessageSource = (*MessageSource)(nil)
	_ driven.MailSource    = (*MailSource)(nil)
	_ driven.NoteSource    = (*NoteSource)(nil)
	_ driven.Watcher       = (*NoteSource)(nil)
)

// base carries the lifecycle methods shared by every wrapper.
type base struct {
	inner driven.Source
	chain *chain
}

func newBase(inner driven.Source, cfg Config) base {
	if !inner.Capabilities().ConcurrentSafe {
		cfg.Serialize = true
	}
	return base{inner: inner, chain: newChain(inner.SourceType(), cfg)}
}

// SourceType returns the wrapped adapter's source type.
func (b *base) SourceType() domain.SourceType { return b.inner.SourceType() }

// Capabilities returns the wrapped adapter's capabilities.
func (b *base) Capabilities() domain.Capabilities { return b.inner.Capabilities() }

// IsConnected reports the wrapped adapter's connection state.
func (b *base) IsConnected() bool { return b.inner.IsConnected() }

// Connect connects the wrapped adapter through the middleware chain.
func (b *base) Connect(ctx context.Context) error {
	if b.inner.IsConnected() {
		return nil
	}
	_, err := invoke(ctx, b.chain, callOpts{op: "Connect"}, struct{}{},
		func(ctx context.Context) (struct{}, error) {
			return struct{}{}, b.inner.Connect(ctx)
		})
	return err
}

// Disconnect disconnects the wrapped adapter. It is not retried.
func (b *base) Disconnect(ctx context.Context) error {
	if err := b.inner.Disconnect(ctx); err != nil {
		logger.Warn("%s: disconnect failed: %v", b.inner.SourceType(), err)
		return normalise(err, b.inner.SourceType(), "Disconnect", 1)
	}
	return nil
}

// Limiter exposes the adapter's rate limiter.
func (b *base) Limiter() *RateLimiter { return b.chain.limiter }

func (b *base) misuse(flag, op string) error {
	return &domain.CapabilityMisuseError{Source: b.inner.SourceType(), Capability: flag, Op: op}
}

// MessageSource decorates a driven.MessageSource with the middleware chain.
type MessageSource struct {
	base
	src driven.MessageSource
}

// WrapMessageSource applies the middleware chain to src.
func WrapMessageSource(src driven.MessageSource, cfg Config) *MessageSource {
	return &MessageSource{base: newBase(src, cfg), src: src}
}

// Unwrap returns the undecorated adapter.
func (w *MessageSource) Unwrap() driven.MessageSource { return w.src }

// FetchMessages fetches through the chain. On failure it returns an
// empty list together with the classified error.
func (w *MessageSource) FetchMessages(ctx context.Context, q domain.MessageQuery) ([]domain.UnifiedMessage, error) {
	return invoke(ctx, w.chain, callOpts{op: "FetchMessages", detail: logger.Fields{"limit": q.EffectiveLimit()}},
		[]domain.UnifiedMessage{}, func(ctx context.Context) ([]domain.UnifiedMessage, error) {
			return w.src.FetchMessages(ctx, q)
		})
}

// SearchMessages searches through the chain.
func (w *MessageSource) SearchMessages(ctx context.Context, query string, limit int) ([]domain.UnifiedMessage, error) {
	if !w.Capabilities().CanSearch {
		return []domain.UnifiedMessage{}, w.misuse("CanSearch", "SearchMessages")
	}
	return invoke(ctx, w.chain, callOpts{op: "SearchMessages", detail: logger.Fields{"limit": limit, "query_len": len(query)}},
		[]domain.UnifiedMessage{}, func(ctx context.Context) ([]domain.UnifiedMessage, error) {
			return w.src.SearchMessages(ctx, query, limit)
		})
}

// SendMessage sends through the chain. Sends are never retried.
func (w *MessageSource) SendMessage(ctx context.Context, msg domain.OutgoingMessage) (*domain.UnifiedMessage, error) {
	if !w.Capabilities().CanSend {
		return nil, w.misuse("CanSend", "SendMessage")
	}
	return invoke(ctx, w.chain, callOpts{op: "SendMessage", noRetry: true}, (*domain.UnifiedMessage)(nil),
		func(ctx context.Context) (*domain.UnifiedMessage, error) {
			return w.src.SendMessage(ctx, msg)
		})
}

// MailSource decorates a driven.MailSource with the middleware chain.
type MailSource struct {
	base
	src driven.MailSource
}

// WrapMailSource applies the middleware chain to src.
func WrapMailSource(src driven.MailSource, cfg Config) *MailSource {
	return &MailSource{base: newBase(src, cfg), src: src}
}

// Unwrap returns the undecorated adapter.
func (w *MailSource) Unwrap() driven.MailSource { return w.src }

// FetchEmails fetches through the chain.
func (w *MailSource) FetchEmails(ctx context.Context, q domain.EmailQuery) ([]domain.UnifiedEmail, error) {
	return invoke(ctx, w.chain, callOpts{op: "FetchEmails", detail: logger.Fields{"limit": q.EffectiveLimit()}},
		[]domain.UnifiedEmail{}, func(ctx context.Context) ([]domain.UnifiedEmail, error) {
			return w.src.FetchEmails(ctx, q)
		})
}

// SearchEmails searches through the chain.
func (w *MailSource) SearchEmails(ctx context.Context, query string, limit int) ([]domain.UnifiedEmail, error) {
	if !w.Capabilities().CanSearch {
		return []domain.UnifiedEmail{}, w.misuse("CanSearch", "SearchEmails")
	}
	return invoke(ctx, w.chain, callOpts{op: "SearchEmails", detail: logger.Fields{"limit": limit, "query_len": len(query)}},
		[]domain.UnifiedEmail{}, func(ctx context.Context) ([]domain.UnifiedEmail, error) {
			return w.src.SearchEmails(ctx, query, limit)
		})
}

// SendEmail sends through the chain. Sends are never retried.
func (w *MailSource) SendEmail(ctx context.Context, email domain.OutgoingEmail) (*domain.UnifiedEmail, error) {
	if !w.Capabilities().CanSend {
		return nil, w.misuse("CanSend", "SendEmail")
	}
	return invoke(ctx, w.chain, callOpts{op: "SendEmail", noRetry: true, detail: logger.Fields{"recipients": len(email.To)}}, (*domain.UnifiedEmail)(nil),
		func(ctx context.Context) (*domain.UnifiedEmail, error) {
			return w.src.SendEmail(ctx, email)
		})
}

// NoteSource decorates a driven.NoteSource with the middleware chain.
type NoteSource struct {
	base
	src driven.NoteSource
}

// WrapNoteSource applies the middleware chain to src.
func WrapNoteSource(src driven.NoteSource, cfg Config) *NoteSource {
	return &NoteSource{base: newBase(src, cfg), src: src}
}

// Unwrap returns the undecorated adapter.
func (w *NoteSource) Unwrap() driven.NoteSource { return w.src }

// FetchNotes fetches through the chain.
func (w *NoteSource) FetchNotes(ctx context.Context, q domain.NoteQuery) ([]domain.UnifiedNote, error) {
	return invoke(ctx, w.chain, callOpts{op: "FetchNotes", detail: logger.Fields{"limit": q.EffectiveLimit()}},
		[]domain.UnifiedNote{}, func(ctx context.Context) ([]domain.UnifiedNote, error) {
			return w.src.FetchNotes(ctx, q)
		})
}

// SearchNotes searches through the chain.
func (w *NoteSource) SearchNotes(ctx context.Context, query string, limit int) ([]domain.UnifiedNote, error) {
	if !w.Capabilities().CanSearch {
		return []domain.UnifiedNote{}, w.misuse("CanSearch", "SearchNotes")
	}
	return invoke(ctx, w.chain, callOpts{op: "SearchNotes", detail: logger.Fields{"limit": limit, "query_len": len(query)}},
		[]domain.UnifiedNote{}, func(ctx context.Context) ([]domain.UnifiedNote, error) {
			return w.src.SearchNotes(ctx, query, limit)
		})
}

// CreateNote creates through the chain. Creates are never retried.
func (w *NoteSource) CreateNote(ctx context.Context, note domain.NewNote) (*domain.UnifiedNote, error) {
	if !w.Capabilities().CanSend {
		return nil, w.misuse("CanSend", "CreateNote")
	}
	return invoke(ctx, w.chain, callOpts{op: "CreateNote", noRetry: true}, (*domain.UnifiedNote)(nil),
		func(ctx context.Context) (*domain.UnifiedNote, error) {
			return w.src.CreateNote(ctx, note)
		})
}

// Watch forwards to the adapter when it advertises CanSubscribe.
func (w *NoteSource) Watch(ctx context.Context) (<-chan domain.SourceEvent, error) {
	watcher, ok := w.src.(driven.Watcher)
	if !w.Capabilities().CanSubscribe || !ok {
		return nil, w.misuse("CanSubscribe", "Watch")
	}
	return watcher.Watch(ctx)
}
