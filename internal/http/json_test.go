package httpx

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "github.com/target/totem-api/internal/errors"
)

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Destinazione string `json:"destinazione"`
	}

	tests := []struct {
		name string
		body string
		ok   bool
	}{
		{name: "single object", body: `{"destinazione":"Sala riunioni"}`, ok: true},
		{name: "trailing whitespace", body: "{\"destinazione\":\"Reception\"}\n\n", ok: true},
		{name: "unknown field", body: `{"destinazione":"x","piano":2}`},
		{name: "two objects", body: `{"destinazione":"a"}{"destinazione":"b"}`},
		{name: "malformed", body: `{"destinazione":`},
		{name: "oversized", body: `{"destinazione":"` + strings.Repeat("a", maxRequestBody) + `"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodPost, "/api/accesses", strings.NewReader(tt.body))

			var dst payload
			ok := DecodeJSON(w, r, &dst)
			assert.Equal(t, tt.ok, ok)
			if !tt.ok {
				assert.Equal(t, http.StatusBadRequest, w.Code)
				assert.Contains(t, w.Body.String(), `"error":"invalid_json"`)
			}
		})
	}
}

func TestWriteJSON_EncodeFailure(t *testing.T) {
	w := httptest.NewRecorder()
	WriteJSON(w, http.StatusOK, map[string]any{"bad": make(chan int)})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"internal","message":"encode response"}`, w.Body.String())
}

func TestWriteServiceError(t *testing.T) {
	w := httptest.NewRecorder()
	err := fmt.Errorf("create access: %w", apperrors.ValidationField("visitatore", "visitor is required"))
	WriteServiceError(w, err)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"error":"validation"`)
	assert.Contains(t, w.Body.String(), `"field":"visitatore"`)

	w = httptest.NewRecorder()
	WriteServiceError(w, errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `"error":"internal"`)
	assert.NotContains(t, w.Body.String(), `"field"`)
}
