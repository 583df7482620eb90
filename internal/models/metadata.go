package models

import "time"

// AuthMetadata describes the authentication scheme in effect. It is built
// once from configuration and served unauthenticated so callers can discover
// how to prove a capability.
type AuthMetadata struct {
	Scheme       string                 `json:"scheme"`
	TokenFormat  string                 `json:"token_format"`
	Header       string                 `json:"header"`
	Issuer       string                 `json:"issuer"`
	Capabilities []CapabilityDescriptor `json:"capabilities"`
}

// CapabilityDescriptor describes one capability level and how a token
// proves it.
type CapabilityDescriptor struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	BoundClaim  string `json:"bound_claim,omitempty"`
}

// StoreMetadata is the per-tenant storage descriptor. Configuration fields
// are process-wide; Usage is filled from the live stats collector when one
// is configured.
type StoreMetadata struct {
	Host          string       `json:"host"`
	ReservedPath  string       `json:"reserved_path"`
	MaxBodyBytes  int64        `json:"max_body_bytes"`
	RetentionDays int          `json:"retention_days,omitempty"`
	Usage         *TenantUsage `json:"usage,omitempty"`
}

// TenantUsage is a point-in-time view of a tenant's capture activity.
type TenantUsage struct {
	TotalEvents    int64      `json:"total_events"`
	EventsLast24h  int64      `json:"events_last_24h"`
	LastCapturedAt *time.Time `json:"last_captured_at,omitempty"`
	LastSourceIP   string     `json:"last_source_ip,omitempty"`
}
