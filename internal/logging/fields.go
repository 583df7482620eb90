package logging

import "log/slog"

// Common field names for consistent logging across the relay.
const (
	FieldService = "service"
	FieldHost    = "host"
	FieldPath    = "path"
	FieldEventID = "event_id"
	FieldTarget  = "target"
	FieldIP      = "ip"
	FieldError   = "error"
)

// Service returns a slog attribute for the service name.
func Service(name string) slog.Attr {
	return slog.String(FieldService, name)
}

// Host returns a slog attribute for a tenant host.
func Host(host string) slog.Attr {
	return slog.String(FieldHost, host)
}

// Path returns a slog attribute for a capture path.
func Path(path string) slog.Attr {
	return slog.String(FieldPath, path)
}

// EventID returns a slog attribute for a webhook event identifier.
func EventID(id string) slog.Attr {
	return slog.String(FieldEventID, id)
}

// Target returns a slog attribute for a forwarding target.
func Target(target string) slog.Attr {
	return slog.String(FieldTarget, target)
}

// IP returns a slog attribute for a source IP.
func IP(ip string) slog.Attr {
	return slog.String(FieldIP, ip)
}

// Error returns a slog attribute for an error.
func Error(err error) slog.Attr {
	return slog.String(FieldError, err.Error())
}
