package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/NelisKaars/DigitalTwinAnalyzer/internal/infrastructure/config"
	"github.com/NelisKaars/DigitalTwinAnalyzer/internal/infrastructure/logging"
)

// defaultConfigPath is used when --config is not given.
const defaultConfigPath = "configs/config.yaml"

// app carries the state shared by every subcommand: parsed flags, the
// resolved configuration, and the logger. Flags override file and
// environment values; the config package owns the rest of the precedence
// chain.
type app struct {
	configPath string

	// Connection flag overrides.
	url       string
	wsURL     string
	user      string
	password  string
	token     string
	namespace string

	// Logging flag overrides.
	logLevel  string
	logFormat string

	cfg *config.Config
	log *logging.Logger
}

func newRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "dittoctl",
		Short: "Operate a local Eclipse Ditto digital-twin sandbox",
		Long: `dittoctl manages a demo digital-twin environment around Eclipse Ditto:
it starts and stops the container stack, creates the factory twins, pushes
property updates and simulated ramps, replays recorded CSV telemetry, and
tails live twin changes over WebSocket.`,
		Version:       fmt.Sprintf("%s (%s)", version, commit),
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.initialise(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", defaultConfigPath, "path to the configuration file")
	pf.StringVar(&a.url, "url", "", "Ditto HTTP API base URL")
	pf.StringVar(&a.wsURL, "ws-url", "", "Ditto WebSocket endpoint")
	pf.StringVar(&a.user, "user", "", "username for basic authentication")
	pf.StringVar(&a.password, "password", "", "password for basic authentication")
	pf.StringVar(&a.token, "token", "", "bearer token (overrides basic auth)")
	pf.StringVar(&a.namespace, "namespace", "", "default namespace for thing identifiers")
	pf.StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.StringVar(&a.logFormat, "log-format", "", "log format (text, json)")

	root.AddCommand(
		newStartCommand(a),
		newStopCommand(a),
		newRestartCommand(a),
		newDevServerCommand(a),
		newInfoCommand(a),
		newCreateTwinCommand(a),
		newTwinCommand(a),
		newReplayCommand(a),
		newMonitorCommand(a),
	)

	return root
}

// initialise loads configuration, applies flag overrides, and builds the
// logger. Runs before every subcommand.
func (a *app) initialise(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if a.url != "" {
		cfg.Ditto.URL = a.url
	}
	if a.wsURL != "" {
		cfg.Ditto.WebSocketURL = a.wsURL
	}
	if a.user != "" {
		cfg.Ditto.Username = a.user
	}
	if a.password != "" {
		cfg.Ditto.Password = a.password
	}
	if a.token != "" {
		cfg.Ditto.Token = a.token
	}
	if a.namespace != "" {
		cfg.Ditto.Namespace = a.namespace
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}
	if a.logFormat != "" {
		cfg.Logging.Format = a.logFormat
	}

	// A --user without a password or token means the operator wants
	// different credentials than the configured ones; ask, but only on a
	// terminal. Non-interactive runs must fail fast instead of hanging.
	if a.user != "" && a.password == "" && cfg.Ditto.Token == "" {
		password, err := promptPassword(cmd, cfg.Ditto.Username)
		if err != nil {
			return err
		}
		cfg.Ditto.Password = password
	}

	a.cfg = cfg
	a.log = logging.New(cfg.Logging, version)
	return nil
}

// promptPassword reads a password without echo from a terminal stdin.
func promptPassword(cmd *cobra.Command, username string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		// Piped stdin: read a single line, the way docker login does.
		reader := bufio.NewReader(cmd.InOrStdin())
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return "", fmt.Errorf("reading password for %s: %w", username, err)
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Password for %s: ", username)
	password, err := term.ReadPassword(fd)
	fmt.Fprintln(cmd.ErrOrStderr())
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return string(password), nil
}
