package engine

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrIncompatibleDevice = errors.New("device is not compatible with the app")
	ErrInvalidRequest     = errors.New("invalid match request")
	ErrInvariantViolation = errors.New("archive invariant violated")
)

// IncompatibleDeviceError reports a dimension along which the device is
// outside everything the app supports.
type IncompatibleDeviceError struct {
	Dimension   Dimension
	DeviceValue string
	Supported   []string
}

func (e *IncompatibleDeviceError) Error() string {
	return fmt.Sprintf("the app doesn't support the %s of the device: device has %s, app supports [%s]",
		e.Dimension, e.DeviceValue, strings.Join(e.Supported, ", "))
}

func (e *IncompatibleDeviceError) Is(target error) bool { return target == ErrIncompatibleDevice }

// MissingSplitsError reports a module that ships configuration splits along
// some dimension none of which matched the device.
type MissingSplitsError struct {
	Module     string
	Dimensions []Dimension
}

func (e *MissingSplitsError) Error() string {
	dims := make([]string, len(e.Dimensions))
	for i, d := range e.Dimensions {
		dims[i] = d.String()
	}
	return fmt.Sprintf("missing APKs for [%s] dimensions in module %q for the provided device",
		strings.Join(dims, ", "), e.Module)
}

func (e *MissingSplitsError) Is(target error) bool { return target == ErrIncompatibleDevice }

// InvalidRequestError reports a match request that cannot be served for any
// device. Module is set when a specific module name is at fault.
type InvalidRequestError struct {
	Module string
	msg    string
}

func (e *InvalidRequestError) Error() string { return e.msg }

func (e *InvalidRequestError) Is(target error) bool { return target == ErrInvalidRequest }

func invalidRequest(format string, args ...any) error {
	return &InvalidRequestError{msg: fmt.Sprintf(format, args...)}
}

func unknownModule(name string) error {
	return &InvalidRequestError{Module: name, msg: fmt.Sprintf("module %q not found in the archive", name)}
}

func invariant(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvariantViolation, fmt.Sprintf(format, args...))
}
