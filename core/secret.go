package core

// Secret wraps a provider API key (or any credential a Provider Config
// holds) with protection against accidental logging. The underlying value
// is never exposed through String(), GoString(), or JSON marshaling — only
// a Config's HTTP request construction and, via Preview, a structured log
// field see anything derived from it.
//
// Use Expose() to access the actual value when needed (e.g., for HTTP
// authentication headers built in a provider's buildHeaders).
//
// Example:
//
//	secret := NewSecret("sk-abc123")
//	fmt.Println(secret)        // prints: [REDACTED]
//	fmt.Printf("%#v", secret)  // prints: core.Secret{[REDACTED]}
//	secret.Expose()            // returns: "sk-abc123"
type Secret struct {
	value string
}

// NewSecret creates a new Secret from a string value.
func NewSecret(value string) Secret {
	return Secret{value: value}
}

// String returns a redacted placeholder.
// This prevents accidental logging of the secret value.
// Implements fmt.Stringer.
func (s Secret) String() string {
	return "[REDACTED]"
}

// GoString returns a redacted placeholder for %#v formatting.
// Implements fmt.GoStringer.
func (s Secret) GoString() string {
	return "core.Secret{[REDACTED]}"
}

// MarshalJSON returns a redacted JSON string.
// This prevents accidental JSON serialization of the secret value.
func (s Secret) MarshalJSON() ([]byte, error) {
	return []byte(`"[REDACTED]"`), nil
}

// MarshalText returns a redacted text representation.
// This prevents accidental text serialization (e.g., in YAML).
// Implements encoding.TextMarshaler.
func (s Secret) MarshalText() ([]byte, error) {
	return []byte("[REDACTED]"), nil
}

// Expose returns the actual secret value.
// Use this only when the value is genuinely needed (e.g., for authentication headers).
//
// Security note: Be careful not to log or serialize the returned value.
func (s Secret) Expose() string {
	return s.value
}

// IsEmpty returns true if the secret value is empty.
func (s Secret) IsEmpty() bool {
	return s.value == ""
}

// Preview returns a masked form safe to put in a structured log field: the
// last 4 characters, preceded by asterisks, e.g. "****c123". An empty or
// shorter-than-4-character secret returns "[EMPTY]" and "[REDACTED]"
// respectively, so a preview never leaks more than it's meant to.
func (s Secret) Preview() string {
	if s.value == "" {
		return "[EMPTY]"
	}
	if len(s.value) < 4 {
		return "[REDACTED]"
	}
	tail := s.value[len(s.value)-4:]
	return "****" + tail
}
