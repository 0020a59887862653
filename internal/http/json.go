package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	apperrors "github.com/target/totem-api/internal/errors"
)

// maxRequestBody caps kiosk request payloads; access and settings bodies are tiny.
const maxRequestBody = 64 << 10

// errorBody is the JSON shape of every non-2xx response.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// DecodeJSON reads exactly one JSON object from the request body into dst.
// On failure it writes a 400 invalid_json response and returns false.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err == nil && !errors.Is(dec.Decode(&struct{}{}), io.EOF) {
		err = errors.New("body must contain a single JSON object")
	}
	if err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_json", Err: err})
		return false
	}
	return true
}

// WriteJSON encodes v and writes it with the given status.
// Encoding happens first so a marshal failure can still become a 500.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		code = http.StatusInternalServerError
		payload = []byte(`{"error":"internal","message":"encode response"}`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(append(payload, '\n'))
}

// ErrorParams groups parameters for WriteError.
type ErrorParams struct {
	Code    int
	ErrCode string
	Err     error
}

// WriteError writes an error body with an explicit status and code.
func WriteError(w http.ResponseWriter, p ErrorParams) {
	body := errorBody{Error: p.ErrCode}
	if p.Err != nil {
		body.Message = p.Err.Error()
	}
	WriteJSON(w, p.Code, body)
}

// WriteServiceError derives status and code from an apperrors chain.
func WriteServiceError(w http.ResponseWriter, err error) {
	code := string(apperrors.GetCode(err))
	if code == "" {
		code = string(apperrors.ErrCodeInternal)
	}
	WriteJSON(w, apperrors.HTTPStatus(err), errorBody{
		Error:   code,
		Message: err.Error(),
		Field:   apperrors.GetField(err),
	})
}
