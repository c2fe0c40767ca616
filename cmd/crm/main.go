package main

import (
	"errors"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/crm/internal/client"
	"github.com/alfredjeanlab/crm/internal/config"
	"github.com/alfredjeanlab/crm/internal/session"
	"github.com/alfredjeanlab/crm/internal/ui"
)

var (
	apiURL     string
	jsonOutput bool
	noColor    bool

	cfg       *config.Config
	logger    *slog.Logger
	sessions  *session.Store
	current   *session.Session
	crmClient client.CRMClient
)

var rootCmd = &cobra.Command{
	Use:           "crm <command>",
	Short:         "Command-line client for the CRM service",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfg, err = config.Load(); err != nil {
			return err
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
		slog.SetDefault(logger)

		if noColor || !ui.ShouldUseColor() {
			ui.ForceNoColor()
		}
		if apiURL != "" {
			cfg.APIURL = apiURL
		}

		sessions = session.NewStore(cfg.SessionPath())
		current, err = sessions.Load()
		if err != nil && !errors.Is(err, session.ErrNoSession) {
			logger.Warn("ignoring unreadable session", "path", sessions.Path(), "err", err)
		}
		if current != nil && current.APIURL != "" && current.APIURL != cfg.APIURL {
			logger.Debug("session was issued by a different API", "session_api", current.APIURL, "api", cfg.APIURL)
		}

		crmClient = client.NewHTTPClient(cfg.APIURL, current,
			client.WithLogger(logger),
			client.WithRateLimit(cfg.RateLimit, 1),
		)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if crmClient != nil {
			crmClient.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "CRM API base URL (overrides CRM_API_URL)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddGroup(
		&cobra.Group{ID: "data", Title: "Data:"},
		&cobra.Group{ID: "account", Title: "Account:"},
		&cobra.Group{ID: "system", Title: "System:"},
	)

	cobra.EnableCommandSorting = false
	rootCmd.SetHelpFunc(colorizedHelpFunc())

	// Data
	rootCmd.AddCommand(contactsCmd)
	rootCmd.AddCommand(activitiesCmd)

	// Account
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(signupCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)

	// System
	rootCmd.AddCommand(profileCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}
