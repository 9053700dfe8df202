package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestClientError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *ClientError
		want string
	}{
		{
			name: "op with status and wrapped error",
			err: &ClientError{
				Op:     "GET /productos/9",
				Status: 404,
				Err:    ErrNotFound,
			},
			want: "GET /productos/9 (status 404): not found",
		},
		{
			name: "op without status",
			err: &ClientError{
				Op:  "POST /auth/login",
				Err: ErrConnectionFailed,
			},
			want: "POST /auth/login: connection failed",
		},
		{
			name: "api message only",
			err: &ClientError{
				APIMessage: "stock insuficiente",
			},
			want: "stock insuficiente",
		},
		{
			name: "wrapped error only",
			err: &ClientError{
				Err: ErrEmptyCart,
			},
			want: "cart is empty",
		},
		{
			name: "kind fallback",
			err: &ClientError{
				Kind: "transport",
			},
			want: "transport error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClientError_Unwrap(t *testing.T) {
	err := &ClientError{
		Op:     "GET /ventas",
		Status: 401,
		Err:    ErrUnauthorized,
	}

	if !errors.Is(err, ErrUnauthorized) {
		t.Error("errors.Is should see through ClientError to the sentinel")
	}

	wrapped := fmt.Errorf("failed to list orders: %w", err)
	if !errors.Is(wrapped, ErrUnauthorized) {
		t.Error("errors.Is should see through double wrapping")
	}

	var ce *ClientError
	if !errors.As(wrapped, &ce) {
		t.Fatal("errors.As should recover the ClientError")
	}
	if ce.Status != 401 {
		t.Errorf("recovered Status = %d, want 401", ce.Status)
	}
}

func TestErrorClassifiers(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		classify  func(error) bool
		want      bool
		classifer string
	}{
		{"unauthorized is auth", ErrUnauthorized, IsAuthError, true, "IsAuthError"},
		{"invalid credentials is auth", fmt.Errorf("login: %w", ErrInvalidCredentials), IsAuthError, true, "IsAuthError"},
		{"session expired is auth", ErrSessionExpired, IsAuthError, true, "IsAuthError"},
		{"not found is not auth", ErrNotFound, IsAuthError, false, "IsAuthError"},
		{"not found", fmt.Errorf("order 9: %w", ErrNotFound), IsNotFound, true, "IsNotFound"},
		{"empty cart is not not-found", ErrEmptyCart, IsNotFound, false, "IsNotFound"},
		{"connection failed retryable", ErrConnectionFailed, IsRetryable, true, "IsRetryable"},
		{"timeout retryable", fmt.Errorf("x: %w", ErrTimeout), IsRetryable, true, "IsRetryable"},
		{"unauthorized not retryable", ErrUnauthorized, IsRetryable, false, "IsRetryable"},
		{"invalid config", ErrInvalidConfiguration, IsConfigurationError, true, "IsConfigurationError"},
		{"missing config", ErrMissingConfiguration, IsConfigurationError, true, "IsConfigurationError"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.classify(tt.err); got != tt.want {
				t.Errorf("%s(%v) = %v, want %v", tt.classifer, tt.err, got, tt.want)
			}
		})
	}
}
