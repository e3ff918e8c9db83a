package domain

import "errors"

// RetriableError defines an interface for errors that can be retried
type RetriableError interface {
	error
	IsRetriable() bool
}

// IsRetriable checks if an error is retriable
func IsRetriable(err error) bool {
	var re RetriableError
	if errors.As(err, &re) {
		return re.IsRetriable()
	}
	return false
}

// TransportError represents a feed or backend transport failure.
// Feed transport failures are always retriable (reconnect, never fatal);
// backend failures degrade the current operation to its safe default.
type TransportError struct {
	Op        string // Operation that failed (e.g., "dial", "subscribe", "cache.get")
	Err       error  // Underlying error
	Retriable bool
}

func (e *TransportError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *TransportError) IsRetriable() bool {
	return e.Retriable
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// NewTransportError creates a retriable transport error
func NewTransportError(op string, err error) *TransportError {
	return &TransportError{Op: op, Err: err, Retriable: true}
}

// ValidationError rejects a malformed inbound order at the API boundary,
// before the execution algorithm runs. Never retriable.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return "invalid order [" + e.Field + "]: " + e.Message
}

func (e *ValidationError) IsRetriable() bool {
	return false
}

// ConfigError represents a configuration error (never retriable)
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return "config error [" + e.Field + "]: " + e.Err.Error()
}

func (e *ConfigError) IsRetriable() bool {
	return false
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

var (
	// ErrConnectionFailed is returned when the feed websocket connection fails. Usually retriable.
	ErrConnectionFailed = errors.New("connection failed")

	// ErrSubscriptionClosed is returned by a subscription whose delivery
	// channel was closed by the consumer rather than by a transport fault.
	ErrSubscriptionClosed = errors.New("subscription closed")

	// ErrTokenRejected is returned when a subscription credential was
	// expired or already redeemed. Terminal for that subscription instance;
	// the subscriber must re-authenticate, not retry the same credential.
	ErrTokenRejected = errors.New("token rejected")
)
