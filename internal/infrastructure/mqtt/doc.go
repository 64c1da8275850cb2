// Package mqtt is the optional event bridge: twin change notifications
// received over the WebSocket monitor are republished to a local MQTT
// broker so other tooling on the operator's network can consume them
// without talking to Ditto directly.
//
// The bridge is publish only. It announces its own liveness on a retained
// status topic and pushes each event to <prefix>/<thing-name>.
package mqtt
