package mqtt

import "errors"

var (
	// ErrConnectionFailed indicates the initial broker connection failed.
	ErrConnectionFailed = errors.New("mqtt: connection failed")

	// ErrNotConnected indicates an operation was attempted while disconnected.
	ErrNotConnected = errors.New("mqtt: not connected")

	// ErrPublishFailed indicates a publish did not complete.
	ErrPublishFailed = errors.New("mqtt: publish failed")

	// ErrInvalidTopic indicates an empty or malformed topic.
	ErrInvalidTopic = errors.New("mqtt: invalid topic")
)
