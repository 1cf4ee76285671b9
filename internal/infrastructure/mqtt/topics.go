package mqtt

import "fmt"

// Topic prefixes for the Hearth MQTT hierarchy.
//
// Command and state topics use a flat scheme:
//
//	hearth/command/{type}/{device_id}   commands to device transports
//	hearth/state/{device_id}            state reports from device transports
//	hearth/core/...                     canonical events published by core
//	hearth/system/...                   service-level topics (status, LWT)
const (
	// TopicPrefix is the base for all Hearth topics.
	TopicPrefix = "hearth"

	// TopicPrefixCore is the base for canonical core topics.
	TopicPrefixCore = "hearth/core"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "hearth/system"
)

// Topics provides builders for Hearth MQTT topics.
// Using these helpers keeps topic naming consistent across the codebase.
//
//	topics := mqtt.Topics{}
//	cmdTopic := topics.DeviceCommand("light", "light-living-room")
//	// Returns: "hearth/command/light/light-living-room"
type Topics struct{}

// DeviceCommand returns the topic for commands to a device transport.
//
// Example: hearth/command/light/light-living-room
func (Topics) DeviceCommand(deviceType, deviceID string) string {
	return fmt.Sprintf("%s/command/%s/%s", TopicPrefix, deviceType, deviceID)
}

// DeviceStateReport returns the topic on which device transports report state.
//
// Example: hearth/state/light-living-room
func (Topics) DeviceStateReport(deviceID string) string {
	return fmt.Sprintf("%s/state/%s", TopicPrefix, deviceID)
}

// CoreDeviceState returns the canonical device state topic.
// This is the authoritative state published by core after a dispatch or
// an accepted state report.
//
// Example: hearth/core/device/light-living-room/state
func (Topics) CoreDeviceState(deviceID string) string {
	return fmt.Sprintf("%s/device/%s/state", TopicPrefixCore, deviceID)
}

// CoreScheduleFired returns the topic for schedule execution events.
//
// Example: hearth/core/schedule/morning-routine/fired
func (Topics) CoreScheduleFired(scheduleID string) string {
	return fmt.Sprintf("%s/schedule/%s/fired", TopicPrefixCore, scheduleID)
}

// CoreEvent returns the topic for core system events.
//
// Example: hearth/core/event/device_registered
func (Topics) CoreEvent(eventType string) string {
	return fmt.Sprintf("%s/event/%s", TopicPrefixCore, eventType)
}

// SystemStatus returns the service status topic (also used for the LWT).
//
// Example: hearth/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}

// AllDeviceStateReports returns a pattern matching all device state reports.
//
// Pattern: hearth/state/+
func (Topics) AllDeviceStateReports() string {
	return fmt.Sprintf("%s/state/+", TopicPrefix)
}

// AllDeviceCommands returns a pattern matching all device commands.
//
// Pattern: hearth/command/+/+
func (Topics) AllDeviceCommands() string {
	return fmt.Sprintf("%s/command/+/+", TopicPrefix)
}

// AllCoreDeviceStates returns a pattern matching all canonical device states.
//
// Pattern: hearth/core/device/+/state
func (Topics) AllCoreDeviceStates() string {
	return fmt.Sprintf("%s/device/+/state", TopicPrefixCore)
}

// AllTopics returns a pattern matching every Hearth topic.
// Use with caution, this receives ALL traffic.
//
// Pattern: hearth/#
func (Topics) AllTopics() string {
	return TopicPrefix + "/#"
}

// DeviceIDFromStateTopic extracts the device ID from a state report topic.
// Returns an empty string if the topic does not match the expected shape.
//
// "hearth/state/light-living-room" -> "light-living-room"
func DeviceIDFromStateTopic(topic string) string {
	prefix := TopicPrefix + "/state/"
	if len(topic) <= len(prefix) || topic[:len(prefix)] != prefix {
		return ""
	}
	id := topic[len(prefix):]
	for i := 0; i < len(id); i++ {
		if id[i] == '/' {
			return "" // Nested topics are not device state reports
		}
	}
	return id
}
