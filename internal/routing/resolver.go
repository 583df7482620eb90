// Package routing decides whether an inbound path is tenant-facing capture
// traffic or the reserved internal path that must bypass capture.
package routing

import "strings"

// Kind is the outcome of resolving a raw path.
type Kind int

const (
	// Capture means the path belongs to a tenant and the call must be
	// recorded as a webhook event.
	Capture Kind = iota
	// Reserved means the path is the internal marker and the call is handed
	// back to the transport layer's own routing.
	Reserved
)

// Decision carries the resolved kind and the normalized path.
type Decision struct {
	Kind Kind
	Path string
}

// Resolver resolves raw inbound paths against a reserved marker.
type Resolver struct {
	reserved string
}

// NewResolver creates a resolver for the given reserved marker. The marker
// is a single path segment ("graphql" and "/graphql" are equivalent).
func NewResolver(marker string) *Resolver {
	return &Resolver{reserved: Normalize(marker)}
}

// Resolve normalizes rawPath and classifies it. Only an exact match with the
// reserved marker is Reserved: "/graphql-webhook" or "/graphql/sub" resolve
// to Capture so tenants can still receive webhooks on such paths.
func (r *Resolver) Resolve(rawPath string) Decision {
	p := Normalize(rawPath)
	if p != "/" && p == r.reserved {
		return Decision{Kind: Reserved, Path: p}
	}
	return Decision{Kind: Capture, Path: p}
}

// Normalize returns the canonical form of a raw path: exactly one leading
// slash, no trailing slashes, empty input becomes the root "/". Normalize is
// idempotent.
func Normalize(rawPath string) string {
	trimmed := strings.Trim(rawPath, "/")
	if trimmed == "" {
		return "/"
	}
	return "/" + trimmed
}
