package session

import (
	"context"
	"fmt"

	"github.com/verdemarket/storefront/core"
	"github.com/verdemarket/storefront/transport"
)

// LoginRequest carries the credentials for /auth/login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest carries the new-user payload for /auth/registro
type RegisterRequest struct {
	Name     string `json:"nombre"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"telefono,omitempty"`
	Address  string `json:"direccion,omitempty"`
}

// LoginResponse is the backend's reply to both login and registration
type LoginResponse struct {
	Message string `json:"mensaje"`
	Token   string `json:"token"`
	User    User   `json:"usuario"`
}

// AuthService shapes authentication requests against the backend.
// It is stateless; the session manager owns what happens with the
// returned token and user.
type AuthService struct {
	client *transport.Client
	logger core.Logger
}

// NewAuthService creates an auth service over the given pipeline
func NewAuthService(client *transport.Client, logger core.Logger) *AuthService {
	if logger == nil {
		logger = &core.NoOpLogger{}
	}
	return &AuthService{client: client, logger: logger}
}

// Login exchanges credentials for a token and user record
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	var resp LoginResponse
	err := s.client.Post(ctx, "/auth/login", LoginRequest{Email: email, Password: password}, &resp)
	if err != nil {
		if core.IsAuthError(err) {
			return nil, fmt.Errorf("login rejected for %s: %w", email, core.ErrInvalidCredentials)
		}
		return nil, fmt.Errorf("login failed: %w", err)
	}

	if resp.Token == "" {
		return nil, fmt.Errorf("login response missing token: %w", core.ErrRequestFailed)
	}

	return &resp, nil
}

// Register creates a new account and returns the initial session
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*LoginResponse, error) {
	var resp LoginResponse
	if err := s.client.Post(ctx, "/auth/registro", req, &resp); err != nil {
		return nil, fmt.Errorf("registration failed: %w", err)
	}

	if resp.Token == "" {
		return nil, fmt.Errorf("registration response missing token: %w", core.ErrRequestFailed)
	}

	return &resp, nil
}

// Refresh implements transport.Refresher. The backend exposes no refresh
// endpoint, so this always fails and the pipeline falls through to
// session teardown. Kept as the single seam to fill in when the backend
// grows one.
func (s *AuthService) Refresh(ctx context.Context) (string, error) {
	return "", core.ErrRefreshUnsupported
}
