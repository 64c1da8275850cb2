package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/NelisKaars/DigitalTwinAnalyzer/internal/ditto"
	"github.com/NelisKaars/DigitalTwinAnalyzer/internal/factory"
	"github.com/NelisKaars/DigitalTwinAnalyzer/internal/twin"
)

func newCreateTwinCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "create-twin",
		Short: "Create the factory twins if they do not exist yet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.reconcileTwins(cmd.Context(), a.dittoClient())
		},
	}
}

func newTwinCommand(a *app) *cobra.Command {
	twinCmd := &cobra.Command{
		Use:   "twin",
		Short: "Update and simulate mixer twin properties",
	}

	twinCmd.AddCommand(
		newPropertyCommand(a, "temperature", factory.TempProperty, "Set the mixer temperature"),
		newPropertyCommand(a, "rpm", factory.RPMProperty, "Set the mixer RPM"),
		newAlarmCommand(a),
		newSimCommand(a, "sim-temp", factory.TempProperty, "Simulate a gradual temperature change", 1.0, time.Second),
		newSimCommand(a, "sim-rpm", factory.RPMProperty, "Simulate a gradual RPM change", 5.0, 500*time.Millisecond),
	)

	return twinCmd
}

// newPropertyCommand builds a single numeric property write verb.
func newPropertyCommand(a *app, use, property, short string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <value>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("invalid value %q: %w", args[0], err)
			}
			return a.setMixerProperty(cmd.Context(), factory.MixerFeature, property, value)
		},
	}
}

func newAlarmCommand(a *app) *cobra.Command {
	valid := map[string]bool{"NORMAL": true, "ACTIVE": true, "ACKNOWLEDGED": true}

	return &cobra.Command{
		Use:   "alarm <NORMAL|ACTIVE|ACKNOWLEDGED>",
		Short: "Set the mixer alarm status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			status := args[0]
			if !valid[status] {
				return fmt.Errorf("invalid alarm status %q: must be NORMAL, ACTIVE, or ACKNOWLEDGED", status)
			}
			return a.setMixerProperty(cmd.Context(), factory.AlarmFeature, factory.AlarmProperty, status)
		},
	}
}

// newSimCommand builds a ramp simulator verb. Defaults mirror the recorded
// operator workflow: temperature moves in steps of 1 every second, RPM in
// steps of 5 every half second.
func newSimCommand(a *app, use, property, short string, defaultStep float64, defaultInterval time.Duration) *cobra.Command {
	var (
		step     float64
		interval time.Duration
	)

	cmd := &cobra.Command{
		Use:   use + " <start> <end>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("invalid start %q: %w", args[0], err)
			}
			end, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid end %q: %w", args[1], err)
			}

			client := a.dittoClient()
			thingID := a.mixerThingID()
			succeeded := client.RunRamp(cmd.Context(), thingID, factory.MixerFeature, property, start, end, step, interval)

			total := len(ditto.RampValues(start, end, step))
			a.log.Info("simulation finished",
				"property", property,
				"writes", succeeded,
				"steps", total,
			)
			return nil
		},
	}

	cmd.Flags().Float64Var(&step, "step", defaultStep, "step size per update")
	cmd.Flags().DurationVar(&interval, "interval", defaultInterval, "time between updates")
	return cmd
}

// setMixerProperty writes one property on the mixer twin.
func (a *app) setMixerProperty(ctx context.Context, feature, property string, value any) error {
	client := a.dittoClient()
	thingID := a.mixerThingID()

	if err := client.SetProperty(ctx, thingID, feature, property, value); err != nil {
		return err
	}
	a.log.Info("property updated",
		"thing_id", thingID,
		"feature", feature,
		"property", property,
		"value", value,
	)
	return nil
}

// dittoClient builds the REST client from the resolved configuration.
func (a *app) dittoClient() *ditto.Client {
	client := ditto.New(a.cfg.Ditto)
	client.SetLogger(a.log.With("component", "ditto"))
	return client
}

// mixerThingID is the namespaced identifier of the demo mixer twin.
func (a *app) mixerThingID() string {
	return twin.EnsureNamespaced("Mixer", a.cfg.Ditto.Namespace)
}
