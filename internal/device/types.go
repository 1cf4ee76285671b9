package device

// Type classifies a device by its hardware category.
type Type string

// Device type constants.
const (
	TypeLight      Type = "light"
	TypeThermostat Type = "thermostat"
	TypeCamera     Type = "camera"
	TypeLock       Type = "lock"
)

// AllTypes returns all valid device types.
func AllTypes() []Type {
	return []Type{TypeLight, TypeThermostat, TypeCamera, TypeLock}
}

// IsValidType reports whether t is a recognised device type.
func IsValidType(t Type) bool {
	switch t {
	case TypeLight, TypeThermostat, TypeCamera, TypeLock:
		return true
	default:
		return false
	}
}

// Command identifies an operation a device can perform.
type Command string

// Command constants.
const (
	CmdTurnOn         Command = "TURN_ON"
	CmdTurnOff        Command = "TURN_OFF"
	CmdSetBrightness  Command = "SET_BRIGHTNESS"
	CmdSetTemperature Command = "SET_TEMPERATURE"
	CmdStartRecord    Command = "START_RECORD"
	CmdStopRecord     Command = "STOP_RECORD"
	CmdLock           Command = "LOCK"
	CmdUnlock         Command = "UNLOCK"
)

// State holds a device's current state as a JSON-compatible map.
//
// Examples:
//   - Light: {"on": true, "brightness": 75}
//   - Thermostat: {"on": true, "target_temperature": 21.5, "current_temperature": 19.8}
//   - Camera: {"on": true, "recording": false, "motion_detected": false}
//   - Lock: {"locked": true}
type State map[string]any

// Args holds command arguments as a JSON-compatible map.
//
// Examples:
//   - SET_BRIGHTNESS: {"brightness": 75}
//   - SET_TEMPERATURE: {"temperature": 21.5}
type Args map[string]any

// DeepCopy creates an independent copy of the State.
// Nested maps and slices are cloned so modifications to the copy
// do not affect the original. This is essential for cache isolation.
func (s State) DeepCopy() State {
	return State(deepCopyMap(s))
}

// DeepCopy creates an independent copy of the Args.
func (a Args) DeepCopy() Args {
	return Args(deepCopyMap(a))
}

// deepCopyMap creates a deep copy of a map[string]any.
// Nested maps and slices are recursively copied.
func deepCopyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	cpy := make(map[string]any, len(m))
	for k, v := range m {
		cpy[k] = deepCopyValue(v)
	}
	return cpy
}

// deepCopyValue recursively copies a value, handling nested maps and slices.
func deepCopyValue(v any) any {
	if v == nil {
		return nil
	}
	switch val := v.(type) {
	case map[string]any:
		return deepCopyMap(val)
	case []any:
		cpy := make([]any, len(val))
		for i, elem := range val {
			cpy[i] = deepCopyValue(elem)
		}
		return cpy
	default:
		// Primitives (string, bool, int, float64) are safe to copy by value
		return v
	}
}

// Config describes a device to be created by the factory.
type Config struct {
	// ID uniquely identifies the device. Generated if empty.
	ID string `json:"id" yaml:"id"`

	// Name is the human-readable device name.
	Name string `json:"name" yaml:"name"`

	// Room is the room the device is located in (free-form, optional).
	Room string `json:"room,omitempty" yaml:"room,omitempty"`

	// Type selects the device implementation.
	Type Type `json:"type" yaml:"type"`

	// Defaults override the type's initial state field by field.
	Defaults State `json:"defaults,omitempty" yaml:"defaults,omitempty"`
}

// Summary is a read-only snapshot of a device for listings and API responses.
type Summary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Room  string `json:"room,omitempty"`
	Type  Type   `json:"type"`
	State State  `json:"state"`
}

// numericArg extracts a float64 from command args, accepting the numeric
// types JSON decoding and Go literals produce.
func numericArg(args Args, key string) (float64, bool) {
	v, ok := args[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
