package domain

// AuthMethod defines how an adapter authenticates.
type AuthMethod string

const (
	// AuthMethodNone requires no authentication (e.g., filesystem).
	AuthMethodNone AuthMethod = "none"
	// AuthMethodPassword uses a username and app password (IMAP).
	AuthMethodPassword AuthMethod = "password"
	// AuthMethodToken uses a static API or integration token.
	AuthMethodToken AuthMethod = "token"
	// AuthMethodOAuth uses an OAuth 2.0 refresh token or client credentials.
	AuthMethodOAuth AuthMethod = "oauth"
)

// ConnectorType describes a built-in adapter.
type ConnectorType struct {
	// ID is the config section name (e.g., "gmail", "outlook").
	ID string
	// SourceType is the source type the adapter registers under.
	SourceType SourceType
	// Name is the human-readable display name.
	Name string
	// Description provides a brief explanation of the adapter.
	Description string
	// Capability is the provider role the adapter fills.
	Capability Capability
	// AuthMethod specifies how the adapter authenticates.
	AuthMethod AuthMethod
	// ConfigKeys lists the configuration fields read by this adapter.
	ConfigKeys []ConfigKey
}

// RequiresAuth returns true if this adapter needs credentials.
func (c *ConnectorType) RequiresAuth() bool {
	return c.AuthMethod != AuthMethodNone && c.AuthMethod != ""
}

// ConfigKey describes a configuration field for an adapter.
type ConfigKey struct {
	// Key is the configuration key name within the provider section.
	Key string
	// Label is the human-readable label for UI display.
	Label string
	// Description explains what this field is for.
	Description string
	// Default is the default value for this field.
	Default string
	// Required indicates whether this field must be provided.
	Required bool
	// Secret indicates whether this field should be masked in output (e.g., tokens).
	Secret bool
}
