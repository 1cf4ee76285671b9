package device

import "errors"

// Domain errors for the device package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, device.ErrUnsupportedCommand) {
//	    // handle unsupported command
//	}
var (
	// ErrNotFound is returned when a device ID does not exist.
	ErrNotFound = errors.New("device: not found")

	// ErrDuplicateID is returned when registering a device with an ID
	// that is already registered.
	ErrDuplicateID = errors.New("device: duplicate id")

	// ErrUnknownType is returned when the factory has no constructor
	// registered for the requested device type.
	ErrUnknownType = errors.New("device: unknown type")

	// ErrUnsupportedCommand is returned when a command is not in the
	// device's capability set. The device state is left unchanged.
	ErrUnsupportedCommand = errors.New("device: unsupported command")

	// ErrInvalidArgs is returned when command arguments are missing,
	// of the wrong type, or out of range.
	ErrInvalidArgs = errors.New("device: invalid command arguments")

	// ErrCommandRejected is returned when a supported command cannot be
	// applied in the device's current state.
	ErrCommandRejected = errors.New("device: command rejected")

	// ErrInvalidConfig is returned when device configuration validation fails.
	ErrInvalidConfig = errors.New("device: invalid config")

	// ErrSendFailed is returned when the underlying driver fails to
	// deliver a command. The device state is left unchanged.
	ErrSendFailed = errors.New("device: send failed")
)
