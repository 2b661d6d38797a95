// Package httpapi exposes ListingService over HTTP/JSON with a chi router.
package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/roach88/rollcall/internal/domain"
	"github.com/roach88/rollcall/internal/service"
)

// Service is the subset of service.ListingService the handlers call.
type Service interface {
	CreateListing(ctx context.Context, req service.CreateListingRequest) (domain.Listing, error)
	ComputeListing(ctx context.Context, listingID string) (domain.ComputedListing, error)
	SubmitAdd(ctx context.Context, listingID, name string, isInvitee bool) (domain.Event, error)
	SubmitRemove(ctx context.Context, listingID, name string) (domain.Event, error)
	ListListings(ctx context.Context) ([]domain.Listing, error)
}

// AddParticipantRequest is the body of POST /listings/{id}/participants.
type AddParticipantRequest struct {
	Name      string `json:"name"`
	IsInvitee bool   `json:"is_invitee"`
}

// SubmissionResponse is returned by both participant routes: the accepted
// event plus the roster it produced.
type SubmissionResponse struct {
	Event   domain.Event           `json:"event"`
	Listing domain.ComputedListing `json:"listing"`
}

// Handler holds the HTTP handlers for the listing API.
type Handler struct {
	svc    Service
	logger *slog.Logger
}

// NewHandler constructs a Handler.
func NewHandler(svc Service, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := errorBody(err)
	if status == http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, body)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, ErrorBody{Error: ErrorDetail{
		Code:    domain.KindInvalid.String(),
		Message: msg,
	}})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// CreateListing handles POST /listings.
func (h *Handler) CreateListing(w http.ResponseWriter, r *http.Request) {
	var req service.CreateListingRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(w, "invalid request body: "+err.Error())
		return
	}

	l, err := h.svc.CreateListing(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, l)
}

// ListListings handles GET /listings.
func (h *Handler) ListListings(w http.ResponseWriter, r *http.Request) {
	listings, err := h.svc.ListListings(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if listings == nil {
		listings = []domain.Listing{}
	}
	writeJSON(w, http.StatusOK, listings)
}

// GetListing handles GET /listings/{id} and returns the computed roster.
func (h *Handler) GetListing(w http.ResponseWriter, r *http.Request) {
	computed, err := h.svc.ComputeListing(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, computed)
}

// AddParticipant handles POST /listings/{id}/participants.
func (h *Handler) AddParticipant(w http.ResponseWriter, r *http.Request) {
	var req AddParticipantRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(w, "invalid request body: "+err.Error())
		return
	}

	id := chi.URLParam(r, "id")
	ev, err := h.svc.SubmitAdd(r.Context(), id, req.Name, req.IsInvitee)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.respondSubmission(w, r, http.StatusCreated, ev)
}

// RemoveParticipant handles DELETE /listings/{id}/participants/{name}.
func (h *Handler) RemoveParticipant(w http.ResponseWriter, r *http.Request) {
	name := participantParam(r)

	id := chi.URLParam(r, "id")
	ev, err := h.svc.SubmitRemove(r.Context(), id, name)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.respondSubmission(w, r, http.StatusOK, ev)
}

// participantParam returns the decoded {name} segment. chi matches against
// r.URL.RawPath when it is set (an escaped "/" in the path), and only then
// is the parameter still escaped.
func participantParam(r *http.Request) string {
	name := chi.URLParam(r, "name")
	if r.URL.RawPath == "" {
		return name
	}
	if unescaped, err := url.PathUnescape(name); err == nil {
		return unescaped
	}
	return name
}

func (h *Handler) respondSubmission(w http.ResponseWriter, r *http.Request, status int, ev domain.Event) {
	computed, err := h.svc.ComputeListing(r.Context(), ev.ListingID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, status, SubmissionResponse{Event: ev, Listing: computed})
}

// Health handles GET /healthz.
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
