package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/NelisKaars/DigitalTwinAnalyzer/internal/infrastructure/influxdb"
	"github.com/NelisKaars/DigitalTwinAnalyzer/internal/replay"
)

func newReplayCommand(a *app) *cobra.Command {
	var (
		csvPath  string
		interval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay a recorded CSV file against the twins, one row at a time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := csvPath
			if path == "" {
				path = a.cfg.Replay.CSVPath
			}
			if path == "" {
				return errors.New("no CSV file: pass --csv or set replay.csv_path in the config")
			}

			rowDelay := interval
			if !cmd.Flags().Changed("interval") {
				rowDelay = a.cfg.Replay.GetInterval()
			}

			var mirror replay.Mirror
			if a.cfg.InfluxDB.Enabled {
				m, err := influxdb.Connect(a.cfg.InfluxDB)
				if err != nil {
					// The mirror is an archive, not the delivery path.
					a.log.Warn("replay mirror unavailable, continuing without it", "error", err)
				} else {
					defer m.Close()
					mirror = m
				}
			}

			engine := replay.New(a.dittoClient(), replay.Options{
				Namespace: a.cfg.Ditto.Namespace,
				Interval:  rowDelay,
			}, mirror)
			engine.SetLogger(a.log.With("component", "replay"))

			summary, err := engine.Run(cmd.Context(), path)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Replay finished: %d rows, %d updates delivered\n",
				summary.Rows, summary.Successes)
			return nil
		},
	}

	cmd.Flags().StringVar(&csvPath, "csv", "", "CSV file to replay")
	cmd.Flags().DurationVar(&interval, "interval", time.Second, "delay after each row")
	return cmd
}
