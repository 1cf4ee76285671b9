package device

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// maxNameLength bounds device names for storage and UI display.
const maxNameLength = 100

// idSuffixLength is how many characters of the UUID are used in
// generated device IDs.
const idSuffixLength = 8

// ValidateConfig checks a device config and fills in a generated ID
// when none is provided.
//
// Rules:
//   - Type must be a recognised device type
//   - Name is required, max 100 characters
//   - ID, when provided, must not contain '/' or '+' or '#'
//     (they would corrupt MQTT topics)
func ValidateConfig(cfg *Config) error {
	if !IsValidType(cfg.Type) {
		return fmt.Errorf("%w: %q", ErrUnknownType, cfg.Type)
	}

	name := strings.TrimSpace(cfg.Name)
	if name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidConfig)
	}
	if len(name) > maxNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidConfig, maxNameLength)
	}
	cfg.Name = name

	if cfg.ID == "" {
		cfg.ID = GenerateID(cfg.Type)
		return nil
	}

	if strings.ContainsAny(cfg.ID, "/+#") {
		return fmt.Errorf("%w: id %q contains MQTT topic characters", ErrInvalidConfig, cfg.ID)
	}

	return nil
}

// GenerateID creates a device ID of the form "{type}-{uuid8}".
//
// Example: "light-3f8a2c1d"
func GenerateID(t Type) string {
	id := uuid.New().String()
	return fmt.Sprintf("%s-%s", t, id[:idSuffixLength])
}
