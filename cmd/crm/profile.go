package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/crm/internal/config"
	"github.com/alfredjeanlab/crm/internal/ui"
)

var profileCmd = &cobra.Command{
	Use:     "profile",
	Short:   "Manage named API profiles",
	GroupID: "system",
}

var profileListCmd = &cobra.Command{
	Use:   "list",
	Short: "List profiles",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		profiles, err := config.LoadProfiles(cfg.ProfilesPath())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if jsonOutput {
			return printJSON(out, profiles)
		}
		if len(profiles.Profiles) == 0 {
			fmt.Fprintln(out, "No profiles. Add one with 'crm profile add <name> <api-url>'.")
			return nil
		}
		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "\tNAME\tAPI URL\tNATS URL")
		for _, name := range profiles.Names() {
			p := profiles.Profiles[name]
			marker := ""
			if name == profiles.Active {
				marker = ui.RenderAccent("*")
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", marker, name, p.APIURL, p.NATSURL)
		}
		return tw.Flush()
	},
}

var profileAddCmd = &cobra.Command{
	Use:   "add <name> <api-url>",
	Short: "Add or replace a profile",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		natsURL, _ := cmd.Flags().GetString("nats-url")
		use, _ := cmd.Flags().GetBool("use")

		profiles, err := config.LoadProfiles(cfg.ProfilesPath())
		if err != nil {
			return err
		}
		profiles.Profiles[args[0]] = config.Profile{APIURL: args[1], NATSURL: natsURL}
		if use || profiles.Active == "" {
			profiles.Active = args[0]
		}
		if err := config.SaveProfiles(cfg.ProfilesPath(), profiles); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved profile %s\n", args[0])
		return nil
	},
}

var profileUseCmd = &cobra.Command{
	Use:   "use <name>",
	Short: "Make a profile the default",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		profiles, err := config.LoadProfiles(cfg.ProfilesPath())
		if err != nil {
			return err
		}
		if err := profiles.Use(args[0]); err != nil {
			return err
		}
		if err := config.SaveProfiles(cfg.ProfilesPath(), profiles); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Using profile %s\n", args[0])
		return nil
	},
}

func init() {
	profileAddCmd.Flags().String("nats-url", "", "NATS URL for live contact events")
	profileAddCmd.Flags().Bool("use", false, "make this the active profile")

	profileCmd.AddCommand(profileListCmd)
	profileCmd.AddCommand(profileAddCmd)
	profileCmd.AddCommand(profileUseCmd)
}
