package mqtt

import "testing"

func TestTopics_Builders(t *testing.T) {
	topics := Topics{}

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"device command", topics.DeviceCommand("light", "light-living-room"), "hearth/command/light/light-living-room"},
		{"device state report", topics.DeviceStateReport("lock-front-door"), "hearth/state/lock-front-door"},
		{"core device state", topics.CoreDeviceState("thermostat-hall"), "hearth/core/device/thermostat-hall/state"},
		{"schedule fired", topics.CoreScheduleFired("morning-routine"), "hearth/core/schedule/morning-routine/fired"},
		{"core event", topics.CoreEvent("device_registered"), "hearth/core/event/device_registered"},
		{"system status", topics.SystemStatus(), "hearth/system/status"},
		{"all state reports", topics.AllDeviceStateReports(), "hearth/state/+"},
		{"all commands", topics.AllDeviceCommands(), "hearth/command/+/+"},
		{"all core states", topics.AllCoreDeviceStates(), "hearth/core/device/+/state"},
		{"all topics", topics.AllTopics(), "hearth/#"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestDeviceIDFromStateTopic(t *testing.T) {
	tests := []struct {
		topic string
		want  string
	}{
		{"hearth/state/light-living-room", "light-living-room"},
		{"hearth/state/lock-front-door", "lock-front-door"},
		{"hearth/state/", ""},
		{"hearth/state/nested/topic", ""},
		{"hearth/command/light/x", ""},
		{"other/state/x", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.topic, func(t *testing.T) {
			if got := DeviceIDFromStateTopic(tt.topic); got != tt.want {
				t.Errorf("DeviceIDFromStateTopic(%q) = %q, want %q", tt.topic, got, tt.want)
			}
		})
	}
}

func TestPublish_Validation(t *testing.T) {
	c := &Client{subscriptions: make(map[string]subscription)}

	if err := c.Publish("", []byte("x"), 0, false); err != ErrInvalidTopic {
		t.Errorf("empty topic: got %v, want ErrInvalidTopic", err)
	}
	if err := c.Publish("hearth/state/x", []byte("x"), 3, false); err != ErrInvalidQoS {
		t.Errorf("qos 3: got %v, want ErrInvalidQoS", err)
	}
}

func TestSubscribe_Validation(t *testing.T) {
	c := &Client{subscriptions: make(map[string]subscription)}

	if err := c.Subscribe("", 0, func(string, []byte) error { return nil }); err != ErrInvalidTopic {
		t.Errorf("empty topic: got %v, want ErrInvalidTopic", err)
	}
	if err := c.Subscribe("hearth/state/+", 5, func(string, []byte) error { return nil }); err != ErrInvalidQoS {
		t.Errorf("qos 5: got %v, want ErrInvalidQoS", err)
	}
}
