package services

import (
	"sort"
	"sync"

	"github.com/him6ul/AIAssistant/internal/core/domain"
	"github.com/him6ul/AIAssistant/internal/core/ports/driven"
	"github.com/him6ul/AIAssistant/internal/core/ports/driving"
	"github.com/him6ul/AIAssistant/internal/logger"
)

// Ensure ConnectorRegistry implements the catalogue interface.
var _ driving.ConnectorCatalogue = (*ConnectorRegistry)(nil)

// ConnectorRegistry holds the live adapter instances, one per
// (capability, source type) pair, and the catalogue of built-in adapter types.
//
// It is populated at startup, read on every call and cleared at shutdown.
// Readers never block each other.
type ConnectorRegistry struct {
	mu       sync.RWMutex
	messages map[domain.SourceType]driven.MessageSource
	mail     map[domain.SourceType]driven.MailSource
	notes    map[domain.SourceType]driven.NoteSource

	connectors map[string]domain.ConnectorType
}

// NewConnectorRegistry creates an empty registry with the built-in catalogue.
func NewConnectorRegistry() *ConnectorRegistry {
	r := &ConnectorRegistry{
		messages:   make(map[domain.SourceType]driven.MessageSource),
		mail:       make(map[domain.SourceType]driven.MailSource),
		notes:      make(map[domain.SourceType]driven.NoteSource),
		connectors: make(map[string]domain.ConnectorType),
	}
	r.registerBuiltinConnectors()
	return r
}

// RegisterMessageSource registers src under its source type.
// An existing entry for the same source type is replaced.
func (r *ConnectorRegistry) RegisterMessageSource(src driven.MessageSource) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st := src.SourceType()
	if _, ok := r.messages[st]; ok {
		logger.Warn("registry: replacing message source %s", st)
	}
	r.messages[st] = src
}

// RegisterMailSource registers src under its source type.
func (r *ConnectorRegistry) RegisterMailSource(src driven.MailSource) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st := src.SourceType()
	if _, ok := r.mail[st]; ok {
		logger.Warn("registry: replacing mail source %s", st)
	}
	r.mail[st] = src
}

// RegisterNoteSource registers src under its source type.
func (r *ConnectorRegistry) RegisterNoteSource(src driven.NoteSource) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st := src.SourceType()
	if _, ok := r.notes[st]; ok {
		logger.Warn("registry: replacing note source %s", st)
	}
	r.notes[st] = src
}

// GetMessageSource returns the message source for st.
func (r *ConnectorRegistry) GetMessageSource(st domain.SourceType) (driven.MessageSource, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	src, ok := r.messages[st]
	return src, ok
}

// GetMailSource returns the mail source for st.
func (r *ConnectorRegistry) GetMailSource(st domain.SourceType) (driven.MailSource, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	src, ok := r.mail[st]
	return src, ok
}

// GetNoteSource returns the note source for st.
func (r *ConnectorRegistry) GetNoteSource(st domain.SourceType) (driven.NoteSource, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	src, ok := r.notes[st]
	return src, ok
}

// MessageSources returns every message source ordered by source type.
func (r *ConnectorRegistry) MessageSources() []driven.MessageSource {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedValues(r.messages)
}

// MailSources returns every mail source ordered by source type.
func (r *ConnectorRegistry) MailSources() []driven.MailSource {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedValues(r.mail)
}

// NoteSources returns every note source ordered by source type.
func (r *ConnectorRegistry) NoteSources() []driven.NoteSource {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedValues(r.notes)
}

// Registration pairs an adapter with the capability it is registered under.
// An adapter serving two capabilities appears twice.
type Registration struct {
	Capability domain.Capability
	Source     driven.Source
}

// All returns every registration in capability priority order, then by source type.
func (r *ConnectorRegistry) All() []Registration {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Registration, 0, len(r.messages)+len(r.mail)+len(r.notes))
	for _, src := range sortedValues(r.mail) {
		out = append(out, Registration{Capability: domain.CapabilityMail, Source: src})
	}
	for _, src := range sortedValues(r.notes) {
		out = append(out, Registration{Capability: domain.CapabilityNote, Source: src})
	}
	for _, src := range sortedValues(r.messages) {
		out = append(out, Registration{Capability: domain.CapabilityMessage, Source: src})
	}
	return out
}

// Types returns the registered source types for capability c, sorted.
func (r *ConnectorRegistry) Types(c domain.Capability) []domain.SourceType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var keys []domain.SourceType
	switch c {
	case domain.CapabilityMessage:
		keys = sortedKeys(r.messages)
	case domain.CapabilityMail:
		keys = sortedKeys(r.mail)
	case domain.CapabilityNote:
		keys = sortedKeys(r.notes)
	}
	return keys
}

// IsRegistered reports whether an adapter exists for (c, st).
func (r *ConnectorRegistry) IsRegistered(c domain.Capability, st domain.SourceType) bool {
	for _, t := range r.Types(c) {
		if t == st {
			return true
		}
	}
	return false
}

// Unregister removes the adapter for (c, st). It is a no-op when absent.
func (r *ConnectorRegistry) Unregister(c domain.Capability, st domain.SourceType) {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch c {
	case domain.CapabilityMessage:
		delete(r.messages, st)
	case domain.CapabilityMail:
		delete(r.mail, st)
	case domain.CapabilityNote:
		delete(r.notes, st)
	}
}

// Len returns the number of registrations across all capabilities.
func (r *ConnectorRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.messages) + len(r.mail) + len(r.notes)
}

// Clear removes every adapter. The catalogue is kept.
func (r *ConnectorRegistry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = make(map[domain.SourceType]driven.MessageSource)
	r.mail = make(map[domain.SourceType]driven.MailSource)
	r.notes = make(map[domain.SourceType]driven.NoteSource)
}

func sortedKeys[V any](m map[domain.SourceType]V) []domain.SourceType {
	keys := make([]domain.SourceType, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func sortedValues[V any](m map[domain.SourceType]V) []V {
	keys := sortedKeys(m)
	out := make([]V, 0, len(keys))
	for _, k := range keys {
		out = append(out, m[k])
	}
	return out
}

// --- Built-in adapter catalogue ---

func (r *ConnectorRegistry) registerBuiltinConnectors() {
	r.registerGmail()
	r.registerIMAP()
	r.registerOutlook()
	r.registerTeams()
	r.registerOneNote()
	r.registerGitHub()
	r.registerNotion()
	r.registerFilesystem()
}

func (r *ConnectorRegistry) registerGmail() {
	r.connectors["gmail"] = domain.ConnectorType{
		ID:          "gmail",
		SourceType:  domain.SourceGmail,
		Name:        "Gmail",
		Description: "Read, search and send email through the Gmail API",
		Capability:  domain.CapabilityMail,
		AuthMethod:  domain.AuthMethodOAuth,
		ConfigKeys: append(oauthConfigKeys(),
			domain.ConfigKey{
				Key:         "label_ids",
				Label:       "Label IDs",
				Description: "Labels to read: INBOX,SENT,etc",
				Default:     "INBOX",
			},
			domain.ConfigKey{
				Key:         "query",
				Label:       "Base Query",
				Description: "Gmail search query applied to every fetch",
			},
		),
	}
}

func (r *ConnectorRegistry) registerIMAP() {
	r.connectors["imap"] = domain.ConnectorType{
		ID:          "imap",
		SourceType:  domain.SourceIMAP,
		Name:        "IMAP Mailbox",
		Description: "Read and search any IMAP mailbox",
		Capability:  domain.CapabilityMail,
		AuthMethod:  domain.AuthMethodPassword,
		ConfigKeys: []domain.ConfigKey{
			{Key: "host", Label: "Host", Description: "IMAP server host", Default: "imap.gmail.com", Required: true},
			{Key: "port", Label: "Port", Description: "IMAP TLS port", Default: "993"},
			{Key: "username", Label: "Username", Description: "Mailbox login", Required: true},
			{Key: "password", Label: "Password", Description: "App password", Required: true, Secret: true},
			{Key: "mailbox", Label: "Mailbox", Description: "Mailbox to read", Default: "INBOX"},
		},
	}
}

func (r *ConnectorRegistry) registerOutlook() {
	r.connectors["outlook"] = domain.ConnectorType{
		ID:          "outlook",
		SourceType:  domain.SourceOutlook,
		Name:        "Outlook",
		Description: "Read, search and send email through Microsoft Graph",
		Capability:  domain.CapabilityMail,
		AuthMethod:  domain.AuthMethodOAuth,
		ConfigKeys:  graphConfigKeys(),
	}
}

func (r *ConnectorRegistry) registerTeams() {
	r.connectors["teams"] = domain.ConnectorType{
		ID:          "teams",
		SourceType:  domain.SourceTeams,
		Name:        "Microsoft Teams",
		Description: "Read and send chat messages through Microsoft Graph",
		Capability:  domain.CapabilityMessage,
		AuthMethod:  domain.AuthMethodOAuth,
		ConfigKeys:  graphConfigKeys(),
	}
}

func (r *ConnectorRegistry) registerOneNote() {
	r.connectors["onenote"] = domain.ConnectorType{
		ID:          "onenote",
		SourceType:  domain.SourceOneNote,
		Name:        "OneNote",
		Description: "Read and create OneNote pages through Microsoft Graph",
		Capability:  domain.CapabilityNote,
		AuthMethod:  domain.AuthMethodOAuth,
		ConfigKeys:  graphConfigKeys(),
	}
}

func (r *ConnectorRegistry) registerGitHub() {
	r.connectors["github"] = domain.ConnectorType{
		ID:          "github",
		SourceType:  domain.SourceGitHub,
		Name:        "GitHub",
		Description: "Read GitHub notifications as messages",
		Capability:  domain.CapabilityMessage,
		AuthMethod:  domain.AuthMethodToken,
		ConfigKeys: []domain.ConfigKey{
			{Key: "token", Label: "Token", Description: "Personal access token", Required: true, Secret: true},
			{Key: "participating", Label: "Participating Only", Description: "Only direct participation (true/false)", Default: "false"},
		},
	}
}

func (r *ConnectorRegistry) registerNotion() {
	r.connectors["notion"] = domain.ConnectorType{
		ID:          "notion",
		SourceType:  domain.SourceNotion,
		Name:        "Notion",
		Description: "Read, search and create Notion pages",
		Capability:  domain.CapabilityNote,
		AuthMethod:  domain.AuthMethodToken,
		ConfigKeys: []domain.ConfigKey{
			{Key: "token", Label: "Integration Token", Description: "Internal integration secret", Required: true, Secret: true},
			{Key: "parent_page_id", Label: "Parent Page", Description: "Page new notes are created under"},
		},
	}
}

func (r *ConnectorRegistry) registerFilesystem() {
	r.connectors["filesystem"] = domain.ConnectorType{
		ID:          "filesystem",
		SourceType:  domain.SourceFilesystem,
		Name:        "Local Notes",
		Description: "Markdown and text notes in a local directory",
		Capability:  domain.CapabilityNote,
		AuthMethod:  domain.AuthMethodNone,
		ConfigKeys: []domain.ConfigKey{
			{Key: "path", Label: "Directory Path", Description: "Directory holding the notes", Required: true},
			{Key: "patterns", Label: "File Patterns", Description: "Glob patterns to match", Default: "*.md,*.txt"},
			{Key: "watch", Label: "Watch", Description: "Watch for changes (true/false)", Default: "false"},
		},
	}
}

func oauthConfigKeys() []domain.ConfigKey {
	return []domain.ConfigKey{
		{Key: "client_id", Label: "Client ID", Description: "OAuth client ID", Required: true},
		{Key: "client_secret", Label: "Client Secret", Description: "OAuth client secret", Required: true, Secret: true},
		{Key: "refresh_token", Label: "Refresh Token", Description: "Long-lived refresh token", Required: true, Secret: true},
	}
}

func graphConfigKeys() []domain.ConfigKey {
	return append(oauthConfigKeys(),
		domain.ConfigKey{Key: "tenant", Label: "Tenant", Description: "Azure AD tenant", Default: "common"},
	)
}

// List returns all built-in adapter types sorted by ID.
func (r *ConnectorRegistry) List() []domain.ConnectorType {
	result := make([]domain.ConnectorType, 0, len(r.connectors))
	for _, c := range r.connectors {
		result = append(result, c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

// Get returns a built-in adapter type by ID.
func (r *ConnectorRegistry) Get(id string) (*domain.ConnectorType, error) {
	c, ok := r.connectors[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &c, nil
}

// ValidateConfig checks that every required key is present for an adapter type.
func (r *ConnectorRegistry) ValidateConfig(connectorID string, config map[string]string) error {
	connector, ok := r.connectors[connectorID]
	if !ok {
		return domain.ErrNotFound
	}

	for _, key := range connector.ConfigKeys {
		if key.Required {
			val, exists := config[key.Key]
			if !exists || val == "" {
				return domain.ErrInvalidInput
			}
		}
	}
	return nil
}
