package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteDeviceState records a snapshot of one device state field.
//
// Each numeric or boolean field of a device state becomes its own point
// so dashboards can graph individual fields over time. The write is
// non-blocking; data is batched and sent asynchronously.
//
// Parameters:
//   - deviceID: Unique identifier for the device (e.g., "light-living-room")
//   - deviceType: The device type tag (e.g., "light", "thermostat")
//   - field: The state field name (e.g., "brightness", "target_temperature")
//   - value: The numeric value to record (booleans as 0/1)
//
// Example:
//
//	client.WriteDeviceState("thermostat-hall", "thermostat", "current_temperature", 21.5)
func (c *Client) WriteDeviceState(deviceID, deviceType, field string, value float64) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"device_state",
		map[string]string{
			"device_id":   deviceID,
			"device_type": deviceType,
			"field":       field,
		},
		map[string]interface{}{
			"value": value,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteScheduleRun records the outcome of a schedule execution.
//
// Parameters:
//   - scheduleID: Schedule identifier
//   - status: Run outcome ("completed", "partial", "failed")
//   - actionsTotal: Number of actions in the schedule
//   - actionsFailed: Number of actions that failed
//   - duration: Wall-clock time the run took
func (c *Client) WriteScheduleRun(scheduleID, status string, actionsTotal, actionsFailed int, duration time.Duration) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"schedule_run",
		map[string]string{
			"schedule_id": scheduleID,
			"status":      status,
		},
		map[string]interface{}{
			"actions_total":  actionsTotal,
			"actions_failed": actionsFailed,
			"duration_ms":    duration.Milliseconds(),
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point with full control over tags and fields.
//
// Use this for measurements that don't fit the helper methods.
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, time.Now())
	c.writeAPI.WritePoint(point)
}
