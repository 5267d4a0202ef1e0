package domain

import "time"

// SourceStatus reports the availability of one registered adapter.
type SourceStatus struct {
	SourceType   SourceType
	Capabilities []Capability
	Connected    bool

	// Available is false when the last connect attempt failed.
	Available bool

	// LastError is the last connect or call error, if any.
	LastError string

	Flags Capabilities
}

// InitReport summarises an orchestrator initialisation.
type InitReport struct {
	Connected []SourceType
	Failed    map[SourceType]string
}

// OK reports whether at least one adapter connected.
func (r InitReport) OK() bool {
	return len(r.Connected) > 0
}

// SourceFailure records one adapter failing during a fan-out.
type SourceFailure struct {
	SourceType SourceType
	Err        error
}

// RefreshReport summarises a full refresh of every capability.
type RefreshReport struct {
	// ID uniquely identifies the run.
	ID string

	StartedAt time.Time
	EndedAt   time.Time

	Messages int
	Emails   int
	Notes    int

	// Failed lists providers that failed during the refresh.
	Failed []SourceType
}

// Total returns the number of items fetched.
func (r RefreshReport) Total() int {
	return r.Messages + r.Emails + r.Notes
}

// ChangeType classifies a pushed source event.
type ChangeType int

const (
	// ChangeCreated indicates a new item.
	ChangeCreated ChangeType = iota
	// ChangeUpdated indicates a modified item.
	ChangeUpdated
	// ChangeDeleted indicates a removed item.
	ChangeDeleted
)

// String returns the change type name.
func (c ChangeType) String() string {
	switch c {
	case ChangeCreated:
		return "created"
	case ChangeUpdated:
		return "updated"
	case ChangeDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// SourceEvent is pushed by adapters that advertise CanSubscribe.
type SourceEvent struct {
	Type       ChangeType
	Capability Capability
	SourceType SourceType
	// ItemID is the unified ID of the affected item.
	ItemID string
	At     time.Time
}
