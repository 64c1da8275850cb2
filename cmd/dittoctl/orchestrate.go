package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/NelisKaars/DigitalTwinAnalyzer/internal/ditto"
	"github.com/NelisKaars/DigitalTwinAnalyzer/internal/factory"
	"github.com/NelisKaars/DigitalTwinAnalyzer/internal/orchestrate"
)

// Phase names the manifest is expected to declare.
const (
	setupPhase     = "setup"
	shutdownPhase  = "shutdown"
	devServerPhase = "dev-server"
)

func newStartCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the Ditto stack, wait for it, and create the factory twins",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.startStack(cmd.Context())
		},
	}
}

func newStopCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the Ditto stack",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runPhase(cmd.Context(), shutdownPhase)
		},
	}
}

func newRestartCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "restart",
		Short: "Stop and start the Ditto stack",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.runPhase(cmd.Context(), shutdownPhase); err != nil {
				return err
			}
			return a.startStack(cmd.Context())
		},
	}
}

func newDevServerCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "dev-server",
		Short: "Run the development server phase from the manifest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runPhase(cmd.Context(), devServerPhase)
		},
	}
}

func newInfoCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show service URLs, requirements, and usage notes from the manifest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			manifest, err := orchestrate.LoadManifest(a.cfg.Setup.ManifestPath)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(manifest.URLs) > 0 {
				fmt.Fprintln(out, "Services:")
				names := make([]string, 0, len(manifest.URLs))
				for name := range manifest.URLs {
					names = append(names, name)
				}
				sort.Strings(names)
				for _, name := range names {
					fmt.Fprintf(out, "  %s: %s\n", name, manifest.URLs[name])
				}
			}
			if len(manifest.Requirements) > 0 {
				fmt.Fprintln(out, "Requirements:")
				for _, req := range manifest.Requirements {
					fmt.Fprintf(out, "  - %s\n", req)
				}
			}
			if len(manifest.Instructions) > 0 {
				fmt.Fprintln(out, "Usage:")
				for _, line := range manifest.Instructions {
					fmt.Fprintf(out, "  %s\n", line)
				}
			}
			return nil
		},
	}
}

// runPhase loads the manifest and executes one named phase.
func (a *app) runPhase(ctx context.Context, name string) error {
	manifest, err := orchestrate.LoadManifest(a.cfg.Setup.ManifestPath)
	if err != nil {
		return err
	}

	executor := orchestrate.NewExecutor(manifest, nil)
	executor.SetLogger(a.log.With("component", "orchestrate"))
	return executor.RunPhase(ctx, name)
}

// startStack runs the setup phase, waits for the Ditto API to answer, and
// reconciles the factory twins.
func (a *app) startStack(ctx context.Context) error {
	if err := a.runPhase(ctx, setupPhase); err != nil {
		return err
	}

	client := a.dittoClient()

	a.log.Info("waiting for Ditto to become available",
		"url", a.cfg.Ditto.URL,
		"timeout", a.cfg.Availability.GetTimeout(),
	)
	if err := client.WaitUntilAvailable(ctx, a.cfg.Availability.GetTimeout(), a.cfg.Availability.GetInterval()); err != nil {
		return fmt.Errorf("ditto did not become available: %w", err)
	}

	return a.reconcileTwins(ctx, client)
}

// reconcileTwins converges the demo factory twins.
func (a *app) reconcileTwins(ctx context.Context, client *ditto.Client) error {
	reconciler := factory.NewReconciler(client, a.cfg.Ditto.Namespace)
	reconciler.SetLogger(a.log.With("component", "factory"))
	return reconciler.EnsureAll(ctx)
}
