package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestAppErrorError(t *testing.T) {
	t.Run("plain", func(t *testing.T) {
		err := Unauthorized("no token")
		if got := err.Error(); got != "UNAUTHORIZED: no token" {
			t.Errorf("unexpected message: %q", got)
		}
	})

	t.Run("with reason", func(t *testing.T) {
		err := TokenValidation(ReasonExpired)
		if !strings.Contains(err.Error(), "EXPIRED") {
			t.Errorf("expected reason in message, got %q", err.Error())
		}
	})

	t.Run("with cause", func(t *testing.T) {
		cause := stderrors.New("boom")
		err := Internal(cause)
		if !strings.Contains(err.Error(), "boom") {
			t.Errorf("expected cause in message, got %q", err.Error())
		}
		if !stderrors.Is(err, cause) {
			t.Error("expected errors.Is to find the cause")
		}
	})
}

func TestConstructorStatusCodes(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		wantCode   ErrorCode
		wantStatus int
	}{
		{"startup config", StartupConfig("bad secret"), ErrCodeStartupConfig, http.StatusInternalServerError},
		{"unknown setting", UnknownSetting("NOPE"), ErrCodeUnknownSetting, http.StatusInternalServerError},
		{"token validation", TokenValidation(ReasonBadSignature), ErrCodeTokenValidation, http.StatusUnauthorized},
		{"malformed header", MalformedHeader(""), ErrCodeMalformedHeader, http.StatusUnauthorized},
		{"feature disabled", FeatureDisabled("dev-login"), ErrCodeFeatureDisabled, http.StatusNotFound},
		{"validation", Validation("bad"), ErrCodeInvalidInput, http.StatusBadRequest},
		{"not found", NotFound("thing"), ErrCodeNotFound, http.StatusNotFound},
		{"internal", Internal(stderrors.New("x")), ErrCodeInternal, http.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.err.Code != tc.wantCode {
				t.Errorf("code = %s, want %s", tc.err.Code, tc.wantCode)
			}
			if tc.err.HTTPStatus != tc.wantStatus {
				t.Errorf("status = %d, want %d", tc.err.HTTPStatus, tc.wantStatus)
			}
		})
	}
}

func TestFeatureDisabledHidesEndpoint(t *testing.T) {
	err := FeatureDisabled("dev-login")
	if err.Message != "Not found." {
		t.Errorf("message should not reveal the feature, got %q", err.Message)
	}
	resp := err.ToResponse()
	if !strings.Contains(strings.ToLower(resp.Error.Message), "not found") {
		t.Errorf("response should read as a 404, got %q", resp.Error.Message)
	}
}

func TestToResponseDropsCause(t *testing.T) {
	err := Internal(stderrors.New("secret detail"))
	resp := err.ToResponse()
	if strings.Contains(resp.Error.Message, "secret detail") {
		t.Error("cause leaked into the client response")
	}
}

func TestAsAppError(t *testing.T) {
	wrapped := fmt.Errorf("context: %w", TokenValidation(ReasonIssuerMismatch))

	appErr, ok := AsAppError(wrapped)
	if !ok {
		t.Fatal("expected AsAppError to unwrap")
	}
	if appErr.Reason != ReasonIssuerMismatch {
		t.Errorf("reason = %s, want %s", appErr.Reason, ReasonIssuerMismatch)
	}
	if ReasonOf(wrapped) != ReasonIssuerMismatch {
		t.Errorf("ReasonOf = %s, want %s", ReasonOf(wrapped), ReasonIssuerMismatch)
	}
	if ReasonOf(stderrors.New("plain")) != "" {
		t.Error("ReasonOf should be empty for non-app errors")
	}
}
