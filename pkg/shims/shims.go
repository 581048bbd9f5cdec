// Package shims resolves the user-facing shim selection into the complete
// option set handed to the transpiler.
package shims

// Package identifies an npm package providing a custom shim
type Package struct {
	Name    string `koanf:"name" json:"name"`
	Version string `koanf:"version" json:"version,omitempty"`
	SubPath string `koanf:"sub_path" json:"subPath,omitempty"`
}

// Custom is a user supplied shim mapping global names onto a package
type Custom struct {
	Package     Package  `koanf:"package" json:"package"`
	GlobalNames []string `koanf:"global_names" json:"globalNames"`
}

// Options is the shim selection as written in configuration. Nil fields
// take their defaults in Resolve.
type Options struct {
	// Blob shims Blob via node:buffer (needed below Node 18)
	Blob *bool `koanf:"blob"`
	// Crypto shims crypto (needed below Node 16)
	Crypto *bool `koanf:"crypto"`
	// Deno shims the Deno namespace
	Deno *bool `koanf:"deno"`
	// Prompts shims alert, confirm and prompt
	Prompts *bool `koanf:"prompts"`
	// Undici shims fetch and friends via undici (needed below Node 18)
	Undici *bool `koanf:"undici"`
	// WeakRef shims WeakRef (needed below Node 14)
	WeakRef *bool `koanf:"weak_ref"`
	// WebSocket shims WebSocket via ws (needed below Node 22)
	WebSocket *bool    `koanf:"web_socket"`
	Custom    []Custom `koanf:"custom"`
}

// Resolved is the full shim option set in the transpiler's wire format
type Resolved struct {
	Blob         bool     `json:"blob"`
	Crypto       bool     `json:"crypto"`
	Deno         bool     `json:"deno"`
	DOMException bool     `json:"domException"`
	Prompts      bool     `json:"prompts"`
	Timers       bool     `json:"timers"`
	Undici       bool     `json:"undici"`
	WeakRef      bool     `json:"weakRef"`
	WebSocket    bool     `json:"webSocket"`
	Custom       []Custom `json:"custom,omitempty"`
	CustomDev    []Custom `json:"customDev"`
}

// Resolve applies defaults: deno and prompts are on unless disabled,
// timers are always on, domException is always off and no dev shims are
// injected. Everything else is off unless enabled.
func Resolve(opts Options) Resolved {
	return Resolved{
		Blob:         valueOr(opts.Blob, false),
		Crypto:       valueOr(opts.Crypto, false),
		Deno:         valueOr(opts.Deno, true),
		DOMException: false,
		Prompts:      valueOr(opts.Prompts, true),
		Timers:       true,
		Undici:       valueOr(opts.Undici, false),
		WeakRef:      valueOr(opts.WeakRef, false),
		WebSocket:    valueOr(opts.WebSocket, false),
		Custom:       opts.Custom,
		CustomDev:    []Custom{},
	}
}

func valueOr(v *bool, fallback bool) bool {
	if v == nil {
		return fallback
	}
	return *v
}
