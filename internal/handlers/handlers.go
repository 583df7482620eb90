// Package handlers is the HTTP boundary of the relay: the catch-all capture
// route plus the guarded aggregation and metadata endpoints.
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/hookrelay-systems/hookrelay/internal/auth"
	"github.com/hookrelay-systems/hookrelay/internal/forwarder"
	"github.com/hookrelay-systems/hookrelay/internal/httputil"
	"github.com/hookrelay-systems/hookrelay/internal/logging"
	"github.com/hookrelay-systems/hookrelay/internal/models"
	"github.com/hookrelay-systems/hookrelay/internal/repository"
	"github.com/hookrelay-systems/hookrelay/internal/routing"
	"github.com/hookrelay-systems/hookrelay/internal/service"
)

// Handler serves all relay routes.
type Handler struct {
	svc          *service.WebhookService
	meta         *service.MetadataService
	gate         *auth.Gate
	resolver     *routing.Resolver
	fwd          *forwarder.Forwarder
	reserved     http.Handler
	maxBodyBytes int64
	logger       *logging.Logger
}

// Options configures a Handler.
type Options struct {
	Service  *service.WebhookService
	Metadata *service.MetadataService
	Gate     *auth.Gate
	Resolver *routing.Resolver

	// Forwarder is nil when no forward target is configured.
	Forwarder *forwarder.Forwarder

	// Reserved handles calls on the reserved internal path. Defaults to a
	// JSON 404.
	Reserved http.Handler

	MaxBodyBytes int64
	Logger       *logging.Logger
}

// New creates the handler set.
func New(opts Options) *Handler {
	reserved := opts.Reserved
	if reserved == nil {
		reserved = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			httputil.WriteError(w, http.StatusNotFound, "no handler mounted on the reserved path")
		})
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Default()
	}
	maxBody := opts.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = 1 << 20
	}

	return &Handler{
		svc:          opts.Service,
		meta:         opts.Metadata,
		gate:         opts.Gate,
		resolver:     opts.Resolver,
		fwd:          opts.Forwarder,
		reserved:     reserved,
		maxBodyBytes: maxBody,
		logger:       logger,
	}
}

// Root is the catch-all route: POST captures on any path, DELETE at the
// root is the bulk-delete operation, anything else is unknown.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.capture(w, r)
	case http.MethodDelete:
		if routing.Normalize(r.URL.Path) != "/" {
			httputil.WriteError(w, http.StatusNotFound, "not found")
			return
		}
		h.deleteWebhooks(w, r)
	default:
		httputil.WriteError(w, http.StatusNotFound, "not found")
	}
}

// capture records one inbound webhook call and, when a forward target is
// configured, hands the stored event to the forwarder without waiting on it.
func (h *Handler) capture(w http.ResponseWriter, r *http.Request) {
	decision := h.resolver.Resolve(r.URL.Path)
	if decision.Kind == routing.Reserved {
		h.reserved.ServeHTTP(w, r)
		return
	}

	host := httputil.TenantHost(r)
	if host == "" {
		httputil.WriteError(w, http.StatusBadRequest, "could not resolve tenant host")
		return
	}

	body, attachments, err := h.readPayload(w, r)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			httputil.WriteError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		httputil.WriteError(w, http.StatusBadRequest, "could not read request body")
		return
	}

	event, err := h.svc.Ingest(r.Context(), service.CaptureRequest{
		Host:        host,
		Path:        decision.Path,
		Body:        body,
		Headers:     httputil.FlattenHeaders(r.Header),
		SourceIP:    httputil.ClientIP(r),
		Attachments: attachments,
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, event)

	// Forwarding is fire-and-forget: the response above does not depend on
	// it and its outcome is never surfaced to the sender.
	if h.fwd != nil {
		h.fwd.Dispatch(event)
	}
}

// readPayload reads the request body, splitting multipart uploads into form
// fields (the body) and file parts (attachments).
func (h *Handler) readPayload(w http.ResponseWriter, r *http.Request) ([]byte, []models.Attachment, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)

	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err == nil && strings.HasPrefix(mediaType, "multipart/") {
		return h.readMultipart(r)
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, nil, err
	}
	return body, nil, nil
}

func (h *Handler) readMultipart(r *http.Request) ([]byte, []models.Attachment, error) {
	if err := r.ParseMultipartForm(h.maxBodyBytes); err != nil {
		return nil, nil, err
	}

	var body []byte
	if len(r.MultipartForm.Value) > 0 {
		fields := make(map[string]string, len(r.MultipartForm.Value))
		for name, values := range r.MultipartForm.Value {
			if len(values) > 0 {
				fields[name] = values[0]
			}
		}
		encoded, err := encodeFields(fields)
		if err != nil {
			return nil, nil, err
		}
		body = encoded
	}

	var attachments []models.Attachment
	for _, files := range r.MultipartForm.File {
		for _, fh := range files {
			file, err := fh.Open()
			if err != nil {
				return nil, nil, err
			}
			data, err := io.ReadAll(file)
			file.Close()
			if err != nil {
				return nil, nil, err
			}
			attachments = append(attachments, models.Attachment{
				Filename:    fh.Filename,
				ContentType: fh.Header.Get("Content-Type"),
				Size:        fh.Size,
				Data:        data,
			})
		}
	}

	return body, attachments, nil
}

// encodeFields serializes multipart form fields as the event body, the same
// JSON-object shape a sender posting application/json would produce.
func encodeFields(fields map[string]string) ([]byte, error) {
	return json.Marshal(fields)
}

// CountForTenant returns the caller's own event count. Tenant capability
// bound to the token's host.
func (h *Handler) CountForTenant(w http.ResponseWriter, r *http.Request) {
	claims, err := h.gate.Authenticate(r)
	if err != nil {
		httputil.WriteError(w, http.StatusUnauthorized, "invalid or missing token")
		return
	}

	host := claims.Host
	if err := h.gate.RequireTenant(claims, host); err != nil {
		httputil.WriteError(w, http.StatusForbidden, "forbidden")
		return
	}

	count, err := h.svc.CountForHost(r.Context(), host)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, models.HostCount{Host: host, Count: count})
}

// CountsPerHost returns grouped counts across all tenants. Administrator
// capability required.
func (h *Handler) CountsPerHost(w http.ResponseWriter, r *http.Request) {
	claims, err := h.gate.Authenticate(r)
	if err != nil {
		httputil.WriteError(w, http.StatusUnauthorized, "invalid or missing token")
		return
	}
	if err := h.gate.RequireAdmin(claims); err != nil {
		httputil.WriteError(w, http.StatusForbidden, "forbidden")
		return
	}

	counts, err := h.svc.CountsPerHost(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, counts)
}

// AuthMetadata describes the auth scheme. No capability required so callers
// can discover how to authenticate.
func (h *Handler) AuthMetadata(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.gate.Metadata())
}

// StoreMetadata returns the caller's storage descriptor. Tenant capability
// bound to the token's host.
func (h *Handler) StoreMetadata(w http.ResponseWriter, r *http.Request) {
	claims, err := h.gate.Authenticate(r)
	if err != nil {
		httputil.WriteError(w, http.StatusUnauthorized, "invalid or missing token")
		return
	}

	host := claims.Host
	if err := h.gate.RequireTenant(claims, host); err != nil {
		httputil.WriteError(w, http.StatusForbidden, "forbidden")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, h.meta.StoreMetadata(r.Context(), host))
}

// deleteWebhooks removes events for the host named in the query, or across
// all tenants when no host is given. Scoped deletes need the tenant
// capability bound to that host; the unscoped delete needs administrator.
func (h *Handler) deleteWebhooks(w http.ResponseWriter, r *http.Request) {
	claims, err := h.gate.Authenticate(r)
	if err != nil {
		httputil.WriteError(w, http.StatusUnauthorized, "invalid or missing token")
		return
	}

	host := r.URL.Query().Get("host")

	var result models.DeleteResult
	if host != "" {
		if err := h.gate.RequireTenant(claims, host); err != nil {
			httputil.WriteError(w, http.StatusForbidden, "forbidden")
			return
		}
		result, err = h.svc.DeleteForHost(r.Context(), host)
	} else {
		if err := h.gate.RequireAdmin(claims); err != nil {
			httputil.WriteError(w, http.StatusForbidden, "forbidden")
			return
		}
		result, err = h.svc.DeleteAll(r.Context())
	}
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// Ready reports readiness, including whether the event store is reachable.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Ready(r.Context()); err != nil {
		httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unavailable",
			"store":  "unreachable",
		})
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrMissingHost):
		httputil.WriteError(w, http.StatusBadRequest, "tenant host is required")
	case errors.Is(err, repository.ErrStorageFailure):
		h.logger.ErrorContext(r.Context(), "event store failure", logging.Error(err))
		httputil.WriteError(w, http.StatusServiceUnavailable, "event store unavailable")
	default:
		h.logger.ErrorContext(r.Context(), "internal error", logging.Error(err))
		httputil.WriteError(w, http.StatusInternalServerError, "internal error")
	}
}
