// Package mqtt wraps the Eclipse Paho client with the conveniences the
// Hearth core needs: topic builders for the hearth/... hierarchy, LWT
// based offline detection, automatic re-subscription after reconnect,
// and panic-recovering message handlers.
//
// Topic hierarchy:
//
//	hearth/command/{type}/{device_id}   commands to device transports
//	hearth/state/{device_id}            state reports from device transports
//	hearth/core/device/{id}/state       canonical state published by core
//	hearth/core/schedule/{id}/fired     schedule execution events
//	hearth/system/status                service status (retained, LWT)
//
// The client is optional at runtime. When MQTT is disabled in config the
// core runs with in-process drivers only and no transport traffic.
package mqtt
