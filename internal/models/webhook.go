package models

import "time"

// WebhookEvent is one captured inbound HTTP call. Events are immutable once
// stored: the identifier and creation timestamp are assigned by the event
// store at insert time, never by the caller.
type WebhookEvent struct {
	ID          string            `json:"id"`
	Host        string            `json:"host"`
	Path        string            `json:"path"`
	Body        []byte            `json:"body,omitempty"`
	Headers     map[string]string `json:"headers,omitempty"`
	Attachments []Attachment      `json:"attachments,omitempty"`
	SourceIP    string            `json:"source_ip,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

// Attachment is a binary part of a multipart capture. Attachments are stored
// alongside the event body and returned with it on capture responses.
type Attachment struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type,omitempty"`
	Size        int64  `json:"size"`
	Data        []byte `json:"data,omitempty"`
}

// HostCount is one entry of the per-host aggregate.
type HostCount struct {
	Host  string `json:"host"`
	Count int64  `json:"count"`
}

// DeleteResult reports how many events a bulk delete removed.
type DeleteResult struct {
	Count int64 `json:"count"`
}
