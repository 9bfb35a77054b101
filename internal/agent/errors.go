package agent

import (
	"fmt"

	"github.com/pkg/errors"
)

// ServiceError is returned when the service answered but reported a failure.
type ServiceError struct {
	// Message is the error string sent by the service. It may be empty.
	Message    string
	StatusCode int
}

func (e *ServiceError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("service reported failure (status %d)", e.StatusCode)
	}
	return fmt.Sprintf("service reported failure (status %d): %s", e.StatusCode, e.Message)
}

// ConnectivityError is returned when no usable response came back: the request
// could not be sent, timed out, or the body could not be decoded.
type ConnectivityError struct {
	Op  string
	Err error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ConnectivityError) Unwrap() error { return e.Err }

// IsServiceError returns the *ServiceError in err's chain, if any.
func IsServiceError(err error) (*ServiceError, bool) {
	var serviceErr *ServiceError
	if errors.As(err, &serviceErr) {
		return serviceErr, true
	}
	return nil, false
}

// IsConnectivityError returns true if err's chain holds a *ConnectivityError.
func IsConnectivityError(err error) bool {
	var connectivityErr *ConnectivityError
	return errors.As(err, &connectivityErr)
}
