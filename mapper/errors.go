package mapper

import (
	"errors"
	"fmt"
)

var (
	// ErrServiceUnavailable is matched by errors returned when routing
	// information of a service can not be obtained.
	ErrServiceUnavailable = errors.New("mapper: service unavailable")

	// ErrMultipleOverrides is returned when more than one request in a batch
	// carries overridden partition ids.
	ErrMultipleOverrides = errors.New("mapper: more than one request with overridden partition ids")

	// ErrEmptyOverride is returned when request overrides partitioning with
	// an empty list of partitions.
	ErrEmptyOverride = errors.New("mapper: partition override with no partitions")

	// ErrNoServiceName is returned when service name can not be taken from
	// request URI.
	ErrNoServiceName = errors.New("mapper: no service name in uri")

	// ErrPartitionAccess is returned by partition accessors which can not
	// resolve partition of a request.
	ErrPartitionAccess = errors.New("mapper: can not find partition")
)

// ServiceUnavailableError describes failure to obtain routing information of
// a service.
type ServiceUnavailableError struct {
	Service string
	Reason  string
	Err     error
}

func (e *ServiceUnavailableError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("mapper: service %q is unavailable: %s", e.Service, e.Reason)
	}
	return fmt.Sprintf("mapper: service %q is unavailable: %s: %v", e.Service, e.Reason, e.Err)
}

func (e *ServiceUnavailableError) Unwrap() error {
	return e.Err
}

// Is makes ServiceUnavailableError match ErrServiceUnavailable.
func (e *ServiceUnavailableError) Is(target error) bool {
	return target == ErrServiceUnavailable
}

func unavailable(service, reason string, err error) error {
	return &ServiceUnavailableError{
		Service: service,
		Reason:  reason,
		Err:     err,
	}
}
