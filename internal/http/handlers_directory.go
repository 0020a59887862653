package httpx

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	apperrors "github.com/target/totem-api/internal/errors"
	"github.com/target/totem-api/internal/service"
)

const photoCacheControl = "private, max-age=3600"

// DirectoryHandlers serves the signed-in profile, sites and people search.
type DirectoryHandlers struct {
	Svc *service.DirectoryService
}

// Me returns the signed-in user's profile.
// GET /api/me.
func (h *DirectoryHandlers) Me(w http.ResponseWriter, r *http.Request) {
	p, err := h.Svc.Profile(r.Context())
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, p)
}

// Sites searches SharePoint sites.
// GET /api/sites?search=.
func (h *DirectoryHandlers) Sites(w http.ResponseWriter, r *http.Request) {
	sites, err := h.Svc.Sites(r.Context(), queryString(r, "search"))
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, sites)
}

// SiteByPath resolves a site by hostname and server-relative path.
// GET /api/sites/by-path?hostname=&path=.
func (h *DirectoryHandlers) SiteByPath(w http.ResponseWriter, r *http.Request) {
	site, err := h.Svc.SiteByPath(r.Context(), queryString(r, "hostname"), queryString(r, "path"))
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, site)
}

// Users searches tenant users. Failures yield an empty list.
// GET /api/users?q=.
func (h *DirectoryHandlers) Users(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.Svc.SearchUsers(r.Context(), queryString(r, "q")))
}

// Photo streams a user's profile picture.
// GET /api/users/{userID}/photo.
func (h *DirectoryHandlers) Photo(w http.ResponseWriter, r *http.Request) {
	photo, ok := h.Svc.UserPhoto(r.Context(), chi.URLParam(r, "userID"))
	if !ok {
		WriteServiceError(w, apperrors.NotFound("photo not available"))
		return
	}
	contentType := photo.ContentType
	if contentType == "" {
		contentType = http.DetectContentType(photo.Data)
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(photo.Data)))
	w.Header().Set("Cache-Control", photoCacheControl)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(photo.Data); err != nil {
		return
	}
}
