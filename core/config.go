package core

import (
	"context"
	"os"
	"regexp"
	"strings"
)

// ProviderDefaults holds the immutable, per-provider defaults resolved at
// process startup (§4.2). It is never mutated after construction.
type ProviderDefaults struct {
	Provider      string
	DefaultModel  ModelID
	BaseURL       string
	EnvVar        string   // canonical API key environment variable
	AliasEnvVars  []string // checked in order if EnvVar is unset/placeholder
	SQLitePragmas map[string]string
}

// DefaultSQLitePragmas is the pragma set every persistence adapter opens a
// connection with (§6): WAL journaling, a busy timeout so concurrent
// readers don't immediately fail, NORMAL synchronous durability, and
// foreign-key enforcement.
func DefaultSQLitePragmas() map[string]string {
	return map[string]string{
		"journal_mode": "WAL",
		"busy_timeout": "5000",
		"synchronous":  "NORMAL",
		"foreign_keys": "1",
	}
}

// Defaults is the process-wide, immutable defaults table (§4.2). It is
// built once at init and never mutated; callers that need to vary a
// provider's base URL do so by constructing their own provider instance,
// not by mutating this table.
var Defaults = map[string]ProviderDefaults{
	"openai": {
		Provider: "openai", DefaultModel: "gpt-4o", BaseURL: "https://api.openai.com/v1",
		EnvVar: "OPENAI_API_KEY", SQLitePragmas: DefaultSQLitePragmas(),
	},
	"anthropic": {
		Provider: "anthropic", DefaultModel: "claude-sonnet-4-5", BaseURL: "https://api.anthropic.com/v1",
		EnvVar: "ANTHROPIC_API_KEY", SQLitePragmas: DefaultSQLitePragmas(),
	},
	"ollama": {
		Provider: "ollama", DefaultModel: "llama3.1", BaseURL: "http://localhost:11434",
		EnvVar: "OLLAMA_API_KEY", SQLitePragmas: DefaultSQLitePragmas(),
	},
	"gemini": {
		Provider: "gemini", DefaultModel: "gemini-2.5-flash", BaseURL: "https://generativelanguage.googleapis.com/v1beta",
		EnvVar: "GEMINI_API_KEY", AliasEnvVars: []string{"GOOGLE_API_KEY"}, SQLitePragmas: DefaultSQLitePragmas(),
	},
	"deepseek": {
		Provider: "deepseek", DefaultModel: "deepseek-chat", BaseURL: "https://api.deepseek.com/v1",
		EnvVar: "DEEPSEEK_API_KEY", SQLitePragmas: DefaultSQLitePragmas(),
	},
	"openrouter": {
		Provider: "openrouter", DefaultModel: "openrouter/auto", BaseURL: "https://openrouter.ai/api/v1",
		EnvVar: "OPENROUTER_API_KEY", SQLitePragmas: DefaultSQLitePragmas(),
	},
	"xai": {
		Provider: "xai", DefaultModel: "grok-2-latest", BaseURL: "https://api.x.ai/v1",
		EnvVar: "XAI_API_KEY", SQLitePragmas: DefaultSQLitePragmas(),
	},
}

var placeholderPattern = regexp.MustCompile(`(?i)^(|placeholder|your[-_].*|changeme|xxx+|sk-\*+)$`)

// IsPlaceholderKey reports whether raw is a placeholder value rather than a
// real credential, per §4.2's pattern: empty, whitespace-only, or one of
// the well-known filler strings.
func IsPlaceholderKey(raw string) bool {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return true
	}
	return placeholderPattern.MatchString(trimmed)
}

// KeyVaultResolver is the narrow read path ResolveAPIKey needs from a
// persisted key vault. persistence.KeyVaultRepository satisfies it
// structurally; core never imports the persistence package.
type KeyVaultResolver interface {
	GetKey(ctx context.Context, provider string) (string, bool, error)
}

// ResolveAPIKey resolves provider's API key in the order defined by §4.2:
// canonical environment variable, then each alias in turn, then the
// persisted key vault, else nil (IsEmpty Secret). The first non-placeholder
// value wins. When an alias resolves the value, the canonical environment
// variable is populated in-process (alias promotion) so that later,
// independent lookups of the canonical variable succeed without having to
// repeat the alias walk.
func ResolveAPIKey(ctx context.Context, defaults ProviderDefaults, vault KeyVaultResolver) Secret {
	if v := os.Getenv(defaults.EnvVar); !IsPlaceholderKey(v) {
		return NewSecret(v)
	}

	for _, alias := range defaults.AliasEnvVars {
		if v := os.Getenv(alias); !IsPlaceholderKey(v) {
			if defaults.EnvVar != "" {
				os.Setenv(defaults.EnvVar, v)
			}
			return NewSecret(v)
		}
	}

	if vault != nil {
		if v, ok, err := vault.GetKey(ctx, defaults.Provider); err == nil && ok && !IsPlaceholderKey(v) {
			return NewSecret(v)
		}
	}

	return Secret{}
}
