package influxdb

import "errors"

var (
	// ErrDisabled indicates the mirror is not enabled in configuration.
	ErrDisabled = errors.New("influxdb: disabled in configuration")

	// ErrConnectionFailed indicates the server could not be reached.
	ErrConnectionFailed = errors.New("influxdb: connection failed")

	// ErrNotConnected indicates an operation was attempted after Close.
	ErrNotConnected = errors.New("influxdb: not connected")
)
