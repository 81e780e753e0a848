// Package provider holds the compile-time registry of upstream LLM APIs
// the proxy is willing to front.
//
// The registry is a Go source constant, not configuration: per spec.md §9
// ("Provider registry shape"), adding a provider is a source edit plus a
// secret-store entry, never a config-file change. A misconfiguration here
// would be a trust-boundary bug, not a user setting.
package provider

import "sort"

// AuthStyle selects how the proxy injects the credential into the
// upstream request.
type AuthStyle string

const (
	AuthBearer      AuthStyle = "bearer"
	AuthXAPIKey     AuthStyle = "x-api-key"
	AuthXGoogAPIKey AuthStyle = "x-goog-api-key"
)

// Sanitizer rewrites a JSON request body before it is forwarded upstream.
// It returns the (possibly unmodified) body and whether it changed.
type Sanitizer func(body []byte) (out []byte, changed bool)

// Descriptor is an immutable provider registration, loaded once at
// startup and never mutated.
type Descriptor struct {
	// ID is the short lowercase token used both as the URL prefix and as
	// the secret-store account name.
	ID string

	// UpstreamBase is the absolute origin (scheme + host, no trailing
	// path) the proxy forwards to.
	UpstreamBase string

	// AuthStyle selects the header the credential is injected under.
	AuthStyle AuthStyle

	// PassthroughHeaders are request header names copied verbatim onto
	// the upstream call, beyond the always-copied content-type.
	PassthroughHeaders []string

	// DefaultHeaders are applied when the caller omits the header.
	DefaultHeaders map[string]string

	// Sanitize, if set, is applied to the captured JSON request body
	// before the upstream call.
	Sanitize Sanitizer
}

var registry = map[string]Descriptor{}

func register(d Descriptor) {
	registry[d.ID] = d
}

func init() {
	register(Descriptor{
		ID:                 "anthropic",
		UpstreamBase:       "https://api.anthropic.com",
		AuthStyle:          AuthXAPIKey,
		PassthroughHeaders: []string{"anthropic-version", "anthropic-beta"},
		DefaultHeaders:     map[string]string{"anthropic-version": "2023-06-01"},
		Sanitize:           stripContextManagement,
	})
	register(Descriptor{
		ID:           "openai",
		UpstreamBase: "https://api.openai.com",
		AuthStyle:    AuthBearer,
	})
	register(Descriptor{
		ID:           "xai",
		UpstreamBase: "https://api.x.ai",
		AuthStyle:    AuthBearer,
	})
	register(Descriptor{
		ID:           "grok",
		UpstreamBase: "https://api.x.ai",
		AuthStyle:    AuthBearer,
	})
	register(Descriptor{
		ID:           "google",
		UpstreamBase: "https://generativelanguage.googleapis.com",
		AuthStyle:    AuthXGoogAPIKey,
	})
	register(Descriptor{
		ID:           "mistral",
		UpstreamBase: "https://api.mistral.ai",
		AuthStyle:    AuthBearer,
	})
	register(Descriptor{
		ID:           "groq",
		UpstreamBase: "https://api.groq.com",
		AuthStyle:    AuthBearer,
	})
	register(Descriptor{
		ID:           "deepseek",
		UpstreamBase: "https://api.deepseek.com",
		AuthStyle:    AuthBearer,
	})
}

// Get returns the descriptor for id. The registry is scanned by exact,
// case-sensitive match on id — there is no prefix ambiguity.
func Get(id string) (Descriptor, bool) {
	d, ok := registry[id]
	return d, ok
}

// Names returns all registered provider ids, sorted for deterministic
// output in the health and providers-list endpoints.
func Names() []string {
	names := make([]string, 0, len(registry))
	for id := range registry {
		names = append(names, id)
	}
	sort.Strings(names)
	return names
}
