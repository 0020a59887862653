package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "error without cause",
			err: &AppError{
				Code:    ErrCodeNotFound,
				Message: "list not found",
			},
			want: "list not found",
		},
		{
			name: "error with cause",
			err: &AppError{
				Code:    ErrCodeUpstream,
				Message: "graph request failed",
				Cause:   errors.New("connection reset"),
			},
			want: "graph request failed: connection reset",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("AppError.Error() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := &AppError{
		Code:    ErrCodeInternal,
		Message: "wrapped error",
		Cause:   cause,
	}

	if unwrapped := err.Unwrap(); !errors.Is(unwrapped, cause) {
		t.Errorf("AppError.Unwrap() = %v, want %v", unwrapped, cause)
	}
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		code ErrorCode
		msg  string
	}{
		{"not found", NotFound("setting not found"), ErrCodeNotFound, "setting not found"},
		{"not foundf", NotFoundf("list %q not found", "Accessi"), ErrCodeNotFound, `list "Accessi" not found`},
		{"conflict", Conflict("already exists"), ErrCodeConflict, "already exists"},
		{"validation", Validation("invalid input"), ErrCodeValidation, "invalid input"},
		{"validationf", Validationf("bad %s", "action"), ErrCodeValidation, "bad action"},
		{"unauthorized", Unauthorized("no account"), ErrCodeUnauthorized, "no account"},
		{"forbidden", Forbidden("admin only"), ErrCodeForbidden, "admin only"},
		{"internal", Internal("boom"), ErrCodeInternal, "boom"},
		{"internalf", Internalf("boom %d", 2), ErrCodeInternal, "boom 2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.code {
				t.Errorf("Code = %v, want %v", tt.err.Code, tt.code)
			}
			if tt.err.Message != tt.msg {
				t.Errorf("Message = %v, want %v", tt.err.Message, tt.msg)
			}
		})
	}
}

func TestValidationField(t *testing.T) {
	err := ValidationField("VisitoreID", "visitor id is required")
	if err.Code != ErrCodeValidation {
		t.Errorf("ValidationField().Code = %v, want %v", err.Code, ErrCodeValidation)
	}
	if GetField(err) != "VisitoreID" {
		t.Errorf("GetField() = %v, want %v", GetField(err), "VisitoreID")
	}
}

func TestUpstream_StatusMapping(t *testing.T) {
	tests := []struct {
		status int
		code   ErrorCode
	}{
		{http.StatusNotFound, ErrCodeNotFound},
		{http.StatusUnauthorized, ErrCodeUnauthorized},
		{http.StatusForbidden, ErrCodeForbidden},
		{http.StatusConflict, ErrCodeConflict},
		{http.StatusPreconditionFailed, ErrCodeConflict},
		{http.StatusBadRequest, ErrCodeValidation},
		{http.StatusGatewayTimeout, ErrCodeTimeout},
		{http.StatusTooManyRequests, ErrCodeUpstream},
		{http.StatusInternalServerError, ErrCodeUpstream},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.status), func(t *testing.T) {
			err := Upstream(tt.status, "graph")
			if err.Code != tt.code {
				t.Errorf("Upstream(%d).Code = %v, want %v", tt.status, err.Code, tt.code)
			}
			if GetStatus(err) != tt.status {
				t.Errorf("GetStatus() = %d, want %d", GetStatus(err), tt.status)
			}
		})
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(cause, ErrCodeInternal, "wrapped error")

	if err.Code != ErrCodeInternal {
		t.Errorf("Wrap().Code = %v, want %v", err.Code, ErrCodeInternal)
	}
	if !errors.Is(err, cause) {
		t.Errorf("errors.Is(Wrap(), cause) = false")
	}
}

func TestWrap_NilError(t *testing.T) {
	if err := Wrap(nil, ErrCodeInternal, "wrapped error"); err != nil {
		t.Errorf("Wrap(nil) = %v, want nil", err)
	}
	if err := Wrapf(nil, ErrCodeInternal, "wrapped %s", "error"); err != nil {
		t.Errorf("Wrapf(nil) = %v, want nil", err)
	}
}

func TestWrapf(t *testing.T) {
	err := Wrapf(errors.New("eof"), ErrCodeUpstream, "fetch list %s", "abc")
	if err.Message != "fetch list abc" {
		t.Errorf("Wrapf().Message = %v, want %v", err.Message, "fetch list abc")
	}
}

func TestPredicates_ThroughWrapping(t *testing.T) {
	base := NotFound("missing")
	wrapped := fmt.Errorf("outer: %w", base)

	if !IsNotFound(wrapped) {
		t.Error("IsNotFound(wrapped) = false, want true")
	}
	if IsConflict(wrapped) {
		t.Error("IsConflict(wrapped) = true, want false")
	}
	if GetCode(errors.New("plain")) != "" {
		t.Error("GetCode(plain) should be empty")
	}
	if !IsUnauthorized(Unauthorized("x")) || !IsForbidden(Forbidden("x")) || !IsUpstream(Upstream(502, "x")) {
		t.Error("predicate mismatch")
	}
	if !IsTimeout(Wrap(errors.New("x"), ErrCodeTimeout, "t")) || !IsCanceled(Wrap(errors.New("x"), ErrCodeCanceled, "c")) {
		t.Error("timeout/canceled predicate mismatch")
	}
	if !IsValidation(Validation("x")) || !IsInternal(Internal("x")) {
		t.Error("validation/internal predicate mismatch")
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{NotFound("x"), http.StatusNotFound},
		{Conflict("x"), http.StatusConflict},
		{Validation("x"), http.StatusBadRequest},
		{Unauthorized("x"), http.StatusUnauthorized},
		{Forbidden("x"), http.StatusForbidden},
		{Upstream(http.StatusServiceUnavailable, "x"), http.StatusBadGateway},
		{Wrap(errors.New("x"), ErrCodeTimeout, "t"), http.StatusGatewayTimeout},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := HTTPStatus(tt.err); got != tt.want {
			t.Errorf("HTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
