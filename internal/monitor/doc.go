// Package monitor provides the live update listener: a long-lived WebSocket
// connection that subscribes to twin change notifications and pretty-prints
// each change for the operator.
//
// The listener runs exactly two goroutines: the receive loop and a keep-alive
// timer. The only state they share is the running flag, an atomic boolean the
// timer reads and the receive loop clears on exit; no lock is needed.
// Malformed inbound messages are logged with their raw payload and never
// crash the listener.
//
// An optional event sink republishes every parsed change to a local MQTT
// broker, so other factory-floor tooling can follow twin changes without its
// own Ditto session.
package monitor
