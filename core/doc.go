// Package core provides the Iris SDK client and types for interacting
// with AI providers behind a single, normalized surface.
//
// # Client and Provider
//
// The primary entry point is [Client], which wraps a [Provider] and adds a
// fluent builder API:
//
//	provider := openai.NewFromEnv()
//	client := core.NewClient(provider,
//	    core.WithLogger(core.NewDefaultLogger()),
//	    core.WithMetrics(core.NoopMetricsExporter{}),
//	)
//
// # ChatBuilder
//
// [ChatBuilder] provides a fluent API for constructing chat requests:
//
//	resp, err := client.Chat("gpt-4o").
//	    System("You are a helpful assistant.").
//	    User("Hello!").
//	    Temperature(0.7).
//	    GetResponse(ctx)
//
// ChatBuilder is NOT thread-safe. Each goroutine should create its own
// builder, or use [ChatBuilder.Clone] to branch from a shared base:
//
//	base := client.Chat(model).System("You are helpful.").Temperature(0.7)
//	go func() { resp1, _ := base.Clone().User("Q1").GetResponse(ctx) }()
//	go func() { resp2, _ := base.Clone().User("Q2").GetResponse(ctx) }()
//
// # Streaming
//
// Use [ChatBuilder.Stream] for a streaming response. The returned
// [StreamHandle] emits a [ChatStreamEvent] per chunk, ending with exactly
// one Terminal event, success or failure:
//
//	handle, err := client.Chat(model).User("Tell me a story.").Stream(ctx)
//	if err != nil {
//	    return err
//	}
//	for ev := range handle.Events {
//	    switch ev.Kind {
//	    case core.EventKindDelta:
//	        fmt.Print(ev.Delta.Text)
//	    case core.EventKindTerminal:
//	        if ev.Terminal.ErrorCode != "" {
//	            return fmt.Errorf("stream failed: %s", ev.Terminal.Error)
//	        }
//	    }
//	}
//
// Use [DrainStream] as a convenience to accumulate a stream into a single
// [ChatResponse].
//
// # Provider Interface
//
// All providers implement the [Provider] interface:
//
//	type Provider interface {
//	    ID() string
//	    Models() []ModelInfo
//	    Supports(feature Feature) bool
//	    Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error)
//	    StreamChat(ctx context.Context, req *ChatRequest) (*StreamHandle, error)
//	}
//
// Use [Provider.Supports] to check capabilities before relying on a
// feature:
//
//	if provider.Supports(core.FeatureToolCalling) {
//	    // Safe to use tools
//	}
//
// Capability is never inferred from a model name: [ModelInfo.Capabilities]
// starts from the provider's snapshot and is overlaid with
// [ObservedCapability] evidence gathered from actual calls (§4.7 in the
// design notes — see [OverlayCapabilities]).
//
// # Features
//
// Providers declare their capabilities through [Feature] constants: see
// [AllFeatures] for the closed set (chat, streaming, json_output,
// structured_streaming, tool_use, vision, embeddings, responses_api).
//
// # Timeout, Retry, and Cancellation
//
// [StartPhaseGuard] bounds only the synchronous start of a call: the first
// streamed chunk, or the entire response for a non-stream call. It never
// bounds anything past that point. [RetryPolicy] only retries during that
// same start phase. [CancellationToken] is cooperative: a caller signals
// it, and the running call observes it at its next checkpoint, never
// mid-translation.
//
// # Error Handling
//
// [ProviderError] carries a normalized [ErrorCode] alongside the
// provider's raw cause. [Classify] maps an HTTP status and/or native error
// to that closed code set; sentinel errors ([ErrUnauthorized],
// [ErrRateLimited], [ErrBadRequest], [ErrNotFound], [ErrServer],
// [ErrNetwork], [ErrDecode], [ErrNotSupported], [ErrModelRequired],
// [ErrNoMessages]) are suitable targets for errors.Is.
//
// # Logging and Metrics
//
// [Logger] and [MetricsExporter] are narrow ports. [NewDefaultLogger]
// wires a JSON [log/slog] logger whose level follows the LOG_LEVEL
// environment variable. [NoopMetricsExporter] is the default; concrete
// exporters are left to the composition root.
//
// # Multimodal Messages
//
// For vision requests, use [ChatBuilder.UserMultimodal]:
//
//	resp, err := client.Chat(model).
//	    UserMultimodal().
//	        Text("What's in this image?").
//	        ImageURL("https://example.com/image.jpg").
//	        Done().
//	    GetResponse(ctx)
//
// # Thread Safety
//
// [Client] is safe for concurrent use. [ChatBuilder] and [MessageBuilder]
// are not. A [StreamHandle]'s Events channel should be read by one
// goroutine at a time; Cancel is safe to call from any goroutine.
package core
