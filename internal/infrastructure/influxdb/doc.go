// Package influxdb records device state history and schedule run
// outcomes in InfluxDB v2.
//
// The client is optional. When disabled in config, Connect returns
// ErrDisabled and callers run without history recording. Writes are
// non-blocking and batched so a slow or unavailable InfluxDB never
// stalls a dispatch or a schedule run.
package influxdb
