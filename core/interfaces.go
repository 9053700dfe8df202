package core

import "context"

// Logger interface - minimal logging interface
type Logger interface {
	Info(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Debug(msg string, fields map[string]interface{})
}

// Store is the persisted key-value storage the state managers depend on.
// It is the Go-side stand-in for the browser's durable string storage:
// the session manager keeps the token and user record under fixed keys,
// and the cart manager keeps its full snapshot under another.
//
// Contract: Get on a missing key returns ("", nil), not an error. Callers
// that need to distinguish missing from empty use Exists.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// Well-known storage keys shared by the session and cart managers.
const (
	KeyToken = "token"
	KeyUser  = "user"
	KeyCart  = "cart-storage"
)

// NoOpLogger provides a no-op logger implementation
type NoOpLogger struct{}

func (n *NoOpLogger) Info(msg string, fields map[string]interface{})  {}
func (n *NoOpLogger) Error(msg string, fields map[string]interface{}) {}
func (n *NoOpLogger) Warn(msg string, fields map[string]interface{})  {}
func (n *NoOpLogger) Debug(msg string, fields map[string]interface{}) {}
