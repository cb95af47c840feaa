package mock

import (
	"github.com/petal-labs/iris/core"
	"github.com/petal-labs/iris/providers"
)

func init() {
	// Mock needs no API key; the factory parameter is ignored.
	providers.Register("mock", func(apiKey string) core.Provider {
		return New()
	})
}
