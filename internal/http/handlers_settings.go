package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/target/totem-api/internal/domain/model"
	apperrors "github.com/target/totem-api/internal/errors"
	"github.com/target/totem-api/internal/service"
)

// SettingsHandlers serves the kiosk settings list.
type SettingsHandlers struct {
	Svc *service.SettingsService
}

// List returns every setting.
// GET /api/settings.
func (h *SettingsHandlers) List(w http.ResponseWriter, r *http.Request) {
	settings, err := h.Svc.AllSettings(r.Context())
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, settings)
}

// Get returns one setting, or 404 when it is absent or unreadable.
// GET /api/settings/{key}.
func (h *SettingsHandlers) Get(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	st, ok := h.Svc.Setting(r.Context(), key)
	if !ok {
		WriteServiceError(w, apperrors.NotFoundf("setting %q not found", key))
		return
	}
	WriteJSON(w, http.StatusOK, st)
}

// Put creates or updates a setting.
// PUT /api/settings/{key}.
func (h *SettingsHandlers) Put(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateSettingRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	st, err := h.Svc.UpdateSetting(r.Context(), chi.URLParam(r, "key"), req.Value)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, st)
}
