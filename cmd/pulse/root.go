// ABOUTME: Root Cobra command for pulse CLI.
// ABOUTME: Loads config and opens the session journal; Execute always closes it.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/harperreed/pulse/internal/config"
	"github.com/harperreed/pulse/internal/health"
	"github.com/harperreed/pulse/internal/journal"
	"github.com/harperreed/pulse/internal/tracker"
	"github.com/spf13/cobra"
)

var (
	configPath     string
	sessionJournal *journal.Journal
	session        *tracker.Tracker
)

var rootCmd = &cobra.Command{
	Use:   "pulse",
	Short: "Personal health journal",
	Long: `Pulse is an interactive journal for BMI, menstrual periods and
medical appointments.

Running 'pulse' with no arguments starts a shell. Records live for the
length of the session; every add and delete is written to the journal log.

SHELL COMMANDS:

  health /h:bmi /height:1.70 /weight:70.50 /date:15-06-2024
  health /h:period /start:01-06-2024 /end:05-06-2024
  health /h:prediction
  appointment /date:03-07-2024 /time:14:30 /description:dentist
  history /item:bmi|period|appointment|all
  latest /item:bmi|period|appointment
  delete /item:bmi|period|appointment /index:1
  export /format:json|yaml|markdown [/output:FILE]
  help
  exit

Dates are DD-MM-YYYY, times HH:MM. Indexes start at 1 and follow the
order shown by 'history'.

MCP INTEGRATION:

  Run 'pulse mcp' to expose a session through the Model Context Protocol
  for AI assistants.

CONFIGURATION:

  ~/.config/pulse/config.json (or --config) sets log_file, log_format
  (logfmt, text, json) and no_color.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip session setup for commands that don't need it
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		var cfg *config.Config
		var err error
		if configPath != "" {
			cfg, err = config.LoadFrom(config.ExpandPath(configPath))
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if cfg.NoColor {
			color.NoColor = true
		}

		sessionJournal, err = cfg.OpenJournal()
		if err != nil {
			return fmt.Errorf("failed to open journal: %w", err)
		}
		session = tracker.New(health.NewStore(sessionJournal))
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeSession()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return newShell(session, cmd.InOrStdin(), cmd.OutOrStdout()).Run()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: ~/.config/pulse/config.json)")
}

// closeSession closes the session journal, if one is open.
func closeSession() error {
	if sessionJournal == nil {
		return nil
	}
	err := sessionJournal.Close()
	sessionJournal = nil
	return err
}

// Execute runs the root command. Cobra skips PersistentPostRunE when RunE
// fails, so the journal is closed here as well.
func Execute() error {
	err := rootCmd.Execute()
	if cerr := closeSession(); err == nil {
		err = cerr
	}
	return err
}
