package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/NelisKaars/DigitalTwinAnalyzer/internal/ditto"
	"github.com/NelisKaars/DigitalTwinAnalyzer/internal/infrastructure/mqtt"
	"github.com/NelisKaars/DigitalTwinAnalyzer/internal/monitor"
)

func newMonitorCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "monitor",
		Short: "Print live twin changes from the Ditto WebSocket until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			listener := monitor.New(monitor.Options{
				URL: a.cfg.Ditto.WebSocketURL,
				Credentials: ditto.Credentials{
					Username: a.cfg.Ditto.Username,
					Password: a.cfg.Ditto.Password,
					Token:    a.cfg.Ditto.Token,
				},
				Namespace:    a.cfg.Ditto.Namespace,
				PingInterval: a.cfg.Monitor.GetPingInterval(),
				Output:       cmd.OutOrStdout(),
			})
			listener.SetLogger(a.log.With("component", "monitor"))

			if a.cfg.MQTT.Enabled {
				bridge, err := mqtt.Connect(a.cfg.MQTT)
				if err != nil {
					// The bridge republishes events for other tooling; the
					// operator's terminal view works without it.
					a.log.Warn("event bridge unavailable, continuing without it", "error", err)
				} else {
					defer bridge.Close()
					bridge.SetLogger(a.log.With("component", "mqtt"))
					listener.SetEventSink(bridge)
				}
			}

			err := listener.Run(cmd.Context())
			if errors.Is(err, context.Canceled) {
				// Ctrl+C is the normal way to leave the monitor.
				return nil
			}
			return err
		},
	}
}
