package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/target/totem-api/internal/domain/model"
	apperrors "github.com/target/totem-api/internal/errors"
	"github.com/target/totem-api/internal/service"
)

const maxAccessPage = 500

// AccessHandlers serves access events and the present-visitors view.
type AccessHandlers struct {
	Svc *service.AccessService
}

// Presence lists visitors currently on site.
// GET /api/presence.
func (h *AccessHandlers) Presence(w http.ResponseWriter, r *http.Request) {
	visitors, err := h.Svc.PresentVisitors(r.Context())
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, visitors)
}

// Create records a new access event.
// POST /api/accesses.
func (h *AccessHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateAccessRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	access, err := h.Svc.CreateAccess(r.Context(), &req)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, access)
}

type updateDestinationRequest struct {
	DestinationPath string `json:"PercorsoDestinazione"`
}

// UpdateDestination sets the destination path of an access event.
// PATCH /api/accesses/{accessID}/destination.
func (h *AccessHandlers) UpdateDestination(w http.ResponseWriter, r *http.Request) {
	var req updateDestinationRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if err := h.Svc.UpdateDestinationPath(r.Context(), chi.URLParam(r, "accessID"), req.DestinationPath); err != nil {
		WriteServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// List reads access events with caller supplied paging and OData options.
// GET /api/accesses?top=&filter=&orderby=.
func (h *AccessHandlers) List(w http.ResponseWriter, r *http.Request) {
	accesses, err := h.Svc.ListAccesses(r.Context(), model.ListAccessesOptions{
		Top:     parseTop(r, maxAccessPage),
		Filter:  queryString(r, "filter"),
		OrderBy: queryString(r, "orderby"),
	})
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, accesses)
}

// ByVisitor lists a visitor's accesses, newest first.
// GET /api/visitors/{visitorID}/accesses.
func (h *AccessHandlers) ByVisitor(w http.ResponseWriter, r *http.Request) {
	accesses, err := h.Svc.AccessesByVisitor(r.Context(), chi.URLParam(r, "visitorID"))
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, accesses)
}

// LastAccess returns a visitor's most recent access.
// GET /api/visitors/{visitorID}/last-access.
func (h *AccessHandlers) LastAccess(w http.ResponseWriter, r *http.Request) {
	access, err := h.Svc.LastAccess(r.Context(), chi.URLParam(r, "visitorID"))
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, access)
}

// ResolveList looks a list id up by display name.
// GET /api/lists/resolve?name=.
func (h *AccessHandlers) ResolveList(w http.ResponseWriter, r *http.Request) {
	name := queryString(r, "name")
	if name == "" {
		WriteServiceError(w, apperrors.ValidationField("name", "name is required"))
		return
	}
	id, err := h.Svc.ResolveListID(r.Context(), name)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"id": id, "name": name})
}
