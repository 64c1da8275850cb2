// Package influxdb is the optional replay mirror: numeric sensor values
// pushed to Ditto during a CSV replay are also written to an InfluxDB
// bucket, giving operators a queryable history of the replayed telemetry.
//
// Writes are non-blocking and batched by the underlying client; a replay
// never stalls on the mirror.
package influxdb
