package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/him6ul/AIAssistant/internal/core/domain"
	"github.com/him6ul/AIAssistant/internal/core/ports/driven"
	"github.com/him6ul/AIAssistant/internal/core/ports/driving"
	"github.com/him6ul/AIAssistant/internal/logger"
)

// Ensure Orchestrator implements the interface.
var _ driving.Orchestrator = (*Orchestrator)(nil)

// DefaultConnectTimeout bounds a single adapter connect during Initialize.
const DefaultConnectTimeout = 30 * time.Second

// OrchestratorConfig tunes the orchestrator.
type OrchestratorConfig struct {
	// CacheTTL is how long aggregation results are reused.
	// Zero means DefaultCacheTTL; negative disables caching.
	CacheTTL time.Duration

	// ConnectTimeout bounds each adapter connect.
	ConnectTimeout time.Duration

	Ranking domain.RankingConfig

	// Now is the clock. Defaults to time.Now.
	Now func() time.Time
}

// DefaultOrchestratorConfig returns the default configuration.
func DefaultOrchestratorConfig() OrchestratorConfig {
	return OrchestratorConfig{
		CacheTTL:       DefaultCacheTTL,
		ConnectTimeout: DefaultConnectTimeout,
		Ranking:        domain.DefaultRankingConfig(),
		Now:            time.Now,
	}
}

// sourceState is the availability the orchestrator tracks per source type.
type sourceState struct {
	available bool
	lastError string
}

// Orchestrator is the façade downstream consumers drive the hub through.
type Orchestrator struct {
	registry *ConnectorRegistry
	messages *MessageService
	mail     *MailService
	notes    *NoteService
	cache    *ResultCache
	cfg      OrchestratorConfig

	mu    sync.RWMutex
	state map[domain.SourceType]*sourceState

	events      chan domain.SourceEvent
	watchCancel context.CancelFunc
	watchWG     sync.WaitGroup
}

// NewOrchestrator creates an orchestrator over registry.
func NewOrchestrator(registry *ConnectorRegistry, cfg OrchestratorConfig) *Orchestrator {
	d := DefaultOrchestratorConfig()
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = d.CacheTTL
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = d.ConnectTimeout
	}
	if cfg.Now == nil {
		cfg.Now = d.Now
	}
	if cfg.Ranking.HalfLife <= 0 {
		cfg.Ranking = d.Ranking
	}
	if len(cfg.Ranking.Priority) == 0 {
		cfg.Ranking.Priority = domain.DefaultCapabilityPriority()
	}

	return &Orchestrator{
		registry: registry,
		messages: NewMessageService(registry),
		mail:     NewMailService(registry),
		notes:    NewNoteService(registry),
		cache:    NewResultCache(cfg.CacheTTL, cfg.Now),
		cfg:      cfg,
		state:    make(map[domain.SourceType]*sourceState),
		events:   make(chan domain.SourceEvent, 64),
	}
}

// Registry returns the connector registry.
func (o *Orchestrator) Registry() *ConnectorRegistry { return o.registry }

// Cache returns the result cache.
func (o *Orchestrator) Cache() *ResultCache { return o.cache }

// Events delivers change notifications from subscribing sources.
// Events are dropped when nobody is reading.
func (o *Orchestrator) Events() <-chan domain.SourceEvent { return o.events }

// Initialize connects every registered adapter concurrently.
// A failing adapter is logged and marked unavailable; the others still start.
func (o *Orchestrator) Initialize(ctx context.Context) (domain.InitReport, error) {
	regs := o.registry.All()
	report := domain.InitReport{Failed: make(map[domain.SourceType]string)}

	type outcome struct {
		st  domain.SourceType
		err error
	}
	results := make([]outcome, len(regs))

	var wg sync.WaitGroup
	for i, reg := range regs {
		wg.Add(1)
		go func(i int, src driven.Source) {
			defer wg.Done()
			connectCtx, cancel := context.WithTimeout(ctx, o.cfg.ConnectTimeout)
			defer cancel()
			results[i] = outcome{st: src.SourceType(), err: src.Connect(connectCtx)}
		}(i, reg.Source)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return report, err
	}

	seen := make(map[domain.SourceType]bool)
	for i, r := range results {
		if r.err != nil {
			logger.WithFields(logger.Fields{
				"source":     string(r.st),
				"capability": string(regs[i].Capability),
				"error":      r.err.Error(),
			}).Error("adapter failed to connect")
			report.Failed[r.st] = r.err.Error()
			o.setState(r.st, false, r.err.Error())
			continue
		}
		if _, failed := report.Failed[r.st]; !failed {
			o.setState(r.st, true, "")
		}
		if !seen[r.st] {
			seen[r.st] = true
			report.Connected = append(report.Connected, r.st)
		}
	}
	// A source type is connected only when every capability it serves connected.
	connected := report.Connected[:0]
	for _, st := range report.Connected {
		if _, failed := report.Failed[st]; !failed {
			connected = append(connected, st)
		}
	}
	report.Connected = connected

	logger.Info("initialised %d adapters, %d failed", len(report.Connected), len(report.Failed))
	o.startWatchers()
	return report, nil
}

// startWatchers subscribes to every note source that can push changes.
// Events only invalidate the cache; they are also forwarded to Events.
func (o *Orchestrator) startWatchers() {
	o.mu.Lock()
	if o.watchCancel != nil {
		o.mu.Unlock()
		return
	}
	watchCtx, cancel := context.WithCancel(context.Background())
	o.watchCancel = cancel
	o.mu.Unlock()

	for _, src := range o.registry.NoteSources() {
		if !src.Capabilities().CanSubscribe || !src.IsConnected() {
			continue
		}
		watcher, ok := src.(driven.Watcher)
		if !ok {
			continue
		}
		ch, err := watcher.Watch(watchCtx)
		if err != nil {
			logger.Warn("%s: watch failed: %v", src.SourceType(), err)
			continue
		}

		o.watchWG.Add(1)
		go func(st domain.SourceType, ch <-chan domain.SourceEvent) {
			defer o.watchWG.Done()
			for ev := range ch {
				capability := ev.Capability
				if capability == "" {
					capability = domain.CapabilityNote
				}
				logger.Debug("%s: %s %s, invalidating %s cache", st, ev.Type, ev.ItemID, capability)
				o.cache.Invalidate(capability)
				select {
				case o.events <- ev:
				default:
				}
			}
		}(src.SourceType(), ch)
	}
}

func (o *Orchestrator) setState(st domain.SourceType, available bool, lastError string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	s, ok := o.state[st]
	if !ok {
		s = &sourceState{}
		o.state[st] = s
	}
	s.available = available
	s.lastError = lastError
}

func (o *Orchestrator) recordFailures(failed []domain.SourceFailure) {
	if len(failed) == 0 {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, f := range failed {
		s, ok := o.state[f.SourceType]
		if !ok {
			s = &sourceState{available: true}
			o.state[f.SourceType] = s
		}
		s.lastError = f.Err.Error()
	}
}

// GetAllMessages returns messages from every source, served from cache when fresh.
func (o *Orchestrator) GetAllMessages(ctx context.Context, q domain.MessageQuery) ([]domain.UnifiedMessage, error) {
	items, _, err := cached(ctx, o.cache, domain.CapabilityMessage, messageKey(q),
		func(ctx context.Context) ([]domain.UnifiedMessage, error) {
			agg, err := o.messages.Aggregate(ctx, q)
			o.recordFailures(agg.Failed)
			return agg.Items, err
		})
	if err != nil {
		return []domain.UnifiedMessage{}, err
	}
	return items, nil
}

// GetAllEmails returns emails from every source, served from cache when fresh.
func (o *Orchestrator) GetAllEmails(ctx context.Context, q domain.EmailQuery) ([]domain.UnifiedEmail, error) {
	items, _, err := cached(ctx, o.cache, domain.CapabilityMail, emailKey(q),
		func(ctx context.Context) ([]domain.UnifiedEmail, error) {
			agg, err := o.mail.Aggregate(ctx, q)
			o.recordFailures(agg.Failed)
			return agg.Items, err
		})
	if err != nil {
		return []domain.UnifiedEmail{}, err
	}
	return items, nil
}

// GetAllNotes returns notes from every source, served from cache when fresh.
func (o *Orchestrator) GetAllNotes(ctx context.Context, q domain.NoteQuery) ([]domain.UnifiedNote, error) {
	items, _, err := cached(ctx, o.cache, domain.CapabilityNote, noteKey(q),
		func(ctx context.Context) ([]domain.UnifiedNote, error) {
			agg, err := o.notes.Aggregate(ctx, q)
			o.recordFailures(agg.Failed)
			return agg.Items, err
		})
	if err != nil {
		return []domain.UnifiedNote{}, err
	}
	return items, nil
}

// SearchAcrossSources searches messages, emails and notes concurrently.
// It fails only on capability misuse or when every capability that has
// registered sources failed.
func (o *Orchestrator) SearchAcrossSources(ctx context.Context, query string, limit int) (*driving.SearchResults, error) {
	if query == "" {
		return nil, fmt.Errorf("%w: empty search query", domain.ErrInvalidInput)
	}

	results := &driving.SearchResults{
		Messages: []domain.UnifiedMessage{},
		Emails:   []domain.UnifiedEmail{},
		Notes:    []domain.UnifiedNote{},
	}
	var msgErr, mailErr, noteErr error

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		results.Messages, msgErr = o.messages.Search(ctx, query, limit)
	}()
	go func() {
		defer wg.Done()
		results.Emails, mailErr = o.mail.Search(ctx, query, limit)
	}()
	go func() {
		defer wg.Done()
		results.Notes, noteErr = o.notes.Search(ctx, query, limit)
	}()
	wg.Wait()

	return results, o.combine(msgErr, mailErr, noteErr)
}

// GetNextActions ranks unread emails and messages and recently edited notes.
func (o *Orchestrator) GetNextActions(ctx context.Context, limit int) ([]domain.NextAction, error) {
	now := o.cfg.Now()
	// Truncated so repeated calls within a minute share a cache entry.
	since := now.Add(-o.cfg.Ranking.NoteWindow).Truncate(time.Minute)

	var c actionCandidates
	var msgErr, mailErr, noteErr error
	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		c.Emails, mailErr = o.GetAllEmails(ctx, domain.EmailQuery{UnreadOnly: true})
	}()
	go func() {
		defer wg.Done()
		c.Messages, msgErr = o.GetAllMessages(ctx, domain.MessageQuery{UnreadOnly: true})
	}()
	go func() {
		defer wg.Done()
		c.Notes, noteErr = o.GetAllNotes(ctx, domain.NoteQuery{Window: domain.Window{Since: &since}})
	}()
	wg.Wait()

	if err := o.combine(msgErr, mailErr, noteErr); err != nil {
		return []domain.NextAction{}, err
	}
	return rankActions(c, o.cfg.Ranking, now, limit), nil
}

// combine reduces per-capability errors. Misuse always surfaces; otherwise
// an error is returned only when no capability with sources succeeded.
func (o *Orchestrator) combine(msgErr, mailErr, noteErr error) error {
	errs := []struct {
		capability domain.Capability
		err        error
	}{
		{domain.CapabilityMessage, msgErr},
		{domain.CapabilityMail, mailErr},
		{domain.CapabilityNote, noteErr},
	}

	var failed []error
	succeeded := 0
	for _, e := range errs {
		if e.err == nil {
			if len(o.registry.Types(e.capability)) > 0 {
				succeeded++
			}
			continue
		}
		if domain.IsCapabilityMisuse(e.err) {
			return e.err
		}
		logger.Warn("%s: %v", e.capability, e.err)
		failed = append(failed, e.err)
	}
	if len(failed) > 0 && succeeded == 0 {
		return errors.Join(failed...)
	}
	return nil
}

// SendMessage sends through the named source and invalidates the message cache.
func (o *Orchestrator) SendMessage(ctx context.Context, msg domain.OutgoingMessage) (*domain.UnifiedMessage, error) {
	sent, err := o.messages.Send(ctx, msg)
	if err != nil {
		return nil, err
	}
	o.cache.Invalidate(domain.CapabilityMessage)
	return sent, nil
}

// SendEmail sends through the named source and invalidates the mail cache.
func (o *Orchestrator) SendEmail(ctx context.Context, email domain.OutgoingEmail) (*domain.UnifiedEmail, error) {
	sent, err := o.mail.Send(ctx, email)
	if err != nil {
		return nil, err
	}
	o.cache.Invalidate(domain.CapabilityMail)
	return sent, nil
}

// CreateNote creates through the named source and invalidates the note cache.
func (o *Orchestrator) CreateNote(ctx context.Context, note domain.NewNote) (*domain.UnifiedNote, error) {
	created, err := o.notes.Create(ctx, note)
	if err != nil {
		return nil, err
	}
	o.cache.Invalidate(domain.CapabilityNote)
	return created, nil
}

// Refresh invalidates the cache for the given capabilities, or all of them.
func (o *Orchestrator) Refresh(capabilities ...domain.Capability) {
	o.cache.Invalidate(capabilities...)
}

// RefreshAll drops the cache and re-fetches every capability with the
// default queries, repopulating the cache.
func (o *Orchestrator) RefreshAll(ctx context.Context) (domain.RefreshReport, error) {
	report := domain.RefreshReport{ID: uuid.NewString(), StartedAt: o.cfg.Now()}
	o.cache.Invalidate()

	var (
		mu     sync.Mutex
		failed = make(map[domain.SourceType]bool)
		wg     sync.WaitGroup
		errs   [3]error
	)
	track := func(f []domain.SourceFailure) {
		mu.Lock()
		defer mu.Unlock()
		for _, sf := range f {
			failed[sf.SourceType] = true
		}
	}

	wg.Add(3)
	go func() {
		defer wg.Done()
		items, _, err := cached(ctx, o.cache, domain.CapabilityMessage, messageKey(domain.MessageQuery{}),
			func(ctx context.Context) ([]domain.UnifiedMessage, error) {
				agg, err := o.messages.Aggregate(ctx, domain.MessageQuery{})
				track(agg.Failed)
				o.recordFailures(agg.Failed)
				return agg.Items, err
			})
		report.Messages, errs[0] = len(items), err
	}()
	go func() {
		defer wg.Done()
		items, _, err := cached(ctx, o.cache, domain.CapabilityMail, emailKey(domain.EmailQuery{}),
			func(ctx context.Context) ([]domain.UnifiedEmail, error) {
				agg, err := o.mail.Aggregate(ctx, domain.EmailQuery{})
				track(agg.Failed)
				o.recordFailures(agg.Failed)
				return agg.Items, err
			})
		report.Emails, errs[1] = len(items), err
	}()
	go func() {
		defer wg.Done()
		items, _, err := cached(ctx, o.cache, domain.CapabilityNote, noteKey(domain.NoteQuery{}),
			func(ctx context.Context) ([]domain.UnifiedNote, error) {
				agg, err := o.notes.Aggregate(ctx, domain.NoteQuery{})
				track(agg.Failed)
				o.recordFailures(agg.Failed)
				return agg.Items, err
			})
		report.Notes, errs[2] = len(items), err
	}()
	wg.Wait()

	for st := range failed {
		report.Failed = append(report.Failed, st)
	}
	sort.Slice(report.Failed, func(i, j int) bool { return report.Failed[i] < report.Failed[j] })
	report.EndedAt = o.cfg.Now()

	logger.WithFields(logger.Fields{
		"run_id":   report.ID,
		"messages": report.Messages,
		"emails":   report.Emails,
		"notes":    report.Notes,
		"failed":   len(report.Failed),
	}).Info("refresh completed")

	return report, o.combine(errs[0], errs[1], errs[2])
}

// Status reports every registered source type with its capabilities and availability.
func (o *Orchestrator) Status() []domain.SourceStatus {
	byType := make(map[domain.SourceType]*domain.SourceStatus)
	var order []domain.SourceType

	for _, reg := range o.registry.All() {
		st := reg.Source.SourceType()
		s, ok := byType[st]
		if !ok {
			s = &domain.SourceStatus{SourceType: st, Connected: true, Available: true}
			byType[st] = s
			order = append(order, st)
		}
		s.Capabilities = append(s.Capabilities, reg.Capability)
		s.Connected = s.Connected && reg.Source.IsConnected()
		flags := reg.Source.Capabilities()
		s.Flags.CanSend = s.Flags.CanSend || flags.CanSend
		s.Flags.CanReceive = s.Flags.CanReceive || flags.CanReceive
		s.Flags.CanSearch = s.Flags.CanSearch || flags.CanSearch
		s.Flags.CanSubscribe = s.Flags.CanSubscribe || flags.CanSubscribe
		s.Flags.SupportsThreading = s.Flags.SupportsThreading || flags.SupportsThreading
		s.Flags.SupportsAttachments = s.Flags.SupportsAttachments || flags.SupportsAttachments
		s.Flags.ConcurrentSafe = s.Flags.ConcurrentSafe || flags.ConcurrentSafe
	}

	o.mu.RLock()
	defer o.mu.RUnlock()

	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })
	out := make([]domain.SourceStatus, 0, len(order))
	for _, st := range order {
		s := byType[st]
		if state, ok := o.state[st]; ok {
			s.Available = state.available
			s.LastError = state.lastError
		}
		out = append(out, *s)
	}
	return out
}

// Shutdown stops watchers, disconnects every adapter best-effort and clears the cache.
func (o *Orchestrator) Shutdown(ctx context.Context) error {
	o.mu.Lock()
	cancel := o.watchCancel
	o.watchCancel = nil
	o.mu.Unlock()
	if cancel != nil {
		cancel()
		o.watchWG.Wait()
	}

	regs := o.registry.All()
	errs := make([]error, len(regs))

	var wg sync.WaitGroup
	for i, reg := range regs {
		wg.Add(1)
		go func(i int, src driven.Source) {
			defer wg.Done()
			if err := src.Disconnect(ctx); err != nil {
				logger.Warn("%s: disconnect failed: %v", src.SourceType(), err)
				errs[i] = fmt.Errorf("%s: %w", src.SourceType(), err)
			}
		}(i, reg.Source)
	}
	wg.Wait()

	o.cache.Clear()
	return errors.Join(errs...)
}
