package providers

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/petal-labs/iris/core"
)

// ProviderFactory creates a provider instance with the given API key.
// Some providers (like Ollama) may ignore the key parameter.
type ProviderFactory func(apiKey string) core.Provider

// registry holds registered provider factories.
var (
	registryMu sync.RWMutex
	registry   = make(map[string]ProviderFactory)
)

// mockProviderName is the registry name every request is redirected to when
// USE_MOCKS is truthy (§4.9). providers/mock registers under this name; it
// must be blank-imported by the caller for the substitution to succeed,
// the same way every other provider must be imported for Get/Create to see
// it — this package never imports providers/mock directly to avoid an
// import cycle (providers/mock imports this package to register itself).
const mockProviderName = "mock"

// Register adds a provider factory to the registry.
// It is typically called from a provider's init() function.
// If a provider with the same name is already registered, it will be overwritten.
//
// Example usage in a provider package:
//
//	func init() {
//	    providers.Register("openai", func(apiKey string) core.Provider {
//	        return New(apiKey)
//	    })
//	}
func Register(name string, factory ProviderFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = factory
}

// Get retrieves a provider factory by name.
// Returns nil if the provider is not registered.
func Get(name string) ProviderFactory {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return registry[name]
}

// useMocks reports whether the USE_MOCKS environment variable is truthy.
func useMocks() bool {
	v, ok := os.LookupEnv("USE_MOCKS")
	if !ok {
		return false
	}
	v = strings.TrimSpace(v)
	if v == "" {
		return false
	}
	b, err := strconv.ParseBool(v)
	return err == nil && b
}

// Create creates a new provider instance by name with the given API key.
// When USE_MOCKS is truthy, every request is substituted with the
// registered "mock" provider regardless of the requested name (§4.9).
// Returns a *core.ProviderError{Code: core.ErrCodeUnsupported} if the
// resolved name is not registered.
func Create(name, apiKey string) (core.Provider, error) {
	resolved := name
	if useMocks() {
		resolved = mockProviderName
	}

	factory := Get(resolved)
	if factory == nil {
		return nil, &core.ProviderError{
			Code:      core.ErrCodeUnsupported,
			Message:   fmt.Sprintf("unknown provider: %s (available: %v)", resolved, List()),
			Provider:  resolved,
			Operation: "create",
		}
	}
	return factory(apiKey), nil
}

// List returns the names of all registered providers in sorted order.
func List() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRegistered returns true if a provider with the given name is registered.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := registry[name]
	return ok
}
