package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/crm/internal/client"
	"github.com/alfredjeanlab/crm/internal/collection"
	"github.com/alfredjeanlab/crm/internal/model"
)

var activitiesCmd = &cobra.Command{
	Use:     "activities",
	Aliases: []string{"activity", "log"},
	Short:   "Show the contact activity log",
	GroupID: "data",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSession(); err != nil {
			return err
		}
		actionFlag, _ := cmd.Flags().GetString("action")
		pages, _ := cmd.Flags().GetInt("pages")
		all, _ := cmd.Flags().GetBool("all")

		action := strings.ToLower(strings.TrimSpace(actionFlag))
		if action == "all" {
			action = ""
		}
		if action != "" && !model.ActivityAction(action).IsValid() {
			return fmt.Errorf("invalid action %q (want create, update or delete)", actionFlag)
		}

		ctrl, err := newActivitiesController()
		if err != nil {
			return err
		}
		defer ctrl.Close()

		snap, err := loadPages(ctrl, collection.Filter{Action: action}, pages, all)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			return printJSON(out, client.ListActivitiesResponse{Activities: snap.Items, Total: snap.TotalCount})
		}
		if len(snap.Items) == 0 {
			fmt.Fprintln(out, "No activities found.")
			return nil
		}
		printActivityTable(out, snap.Items)
		fmt.Fprintln(out)
		printFooter(out, snap, "activities")
		return nil
	},
}

func init() {
	activitiesCmd.Flags().StringP("action", "a", "", "filter by action (create, update, delete)")
	activitiesCmd.Flags().Int("pages", 1, "number of pages to load")
	activitiesCmd.Flags().Bool("all", false, "load every page")
}
