package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/crm/internal/client"
	"github.com/alfredjeanlab/crm/internal/collection"
	"github.com/alfredjeanlab/crm/internal/events"
	"github.com/alfredjeanlab/crm/internal/export"
	"github.com/alfredjeanlab/crm/internal/model"
	"github.com/alfredjeanlab/crm/internal/ui"
)

var contactsCmd = &cobra.Command{
	Use:     "contacts",
	Aliases: []string{"contact", "c"},
	Short:   "List, edit and export contacts",
	GroupID: "data",
}

// parseStatus accepts a status in any case; "" and "all" mean no filter.
func parseStatus(s string) (model.ContactStatus, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "all") {
		return "", nil
	}
	for _, st := range model.ContactStatuses {
		if strings.EqualFold(s, string(st)) {
			return st, nil
		}
	}
	return "", fmt.Errorf("invalid status %q (want Lead, Prospect or Customer)", s)
}

var contactsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List contacts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSession(); err != nil {
			return err
		}
		search, _ := cmd.Flags().GetString("search")
		statusFlag, _ := cmd.Flags().GetString("status")
		pages, _ := cmd.Flags().GetInt("pages")
		all, _ := cmd.Flags().GetBool("all")

		status, err := parseStatus(statusFlag)
		if err != nil {
			return err
		}

		ctrl, err := newContactsController(nil)
		if err != nil {
			return err
		}
		defer ctrl.Close()

		snap, err := loadPages(ctrl, collection.Filter{Search: strings.TrimSpace(search), Status: string(status)}, pages, all)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			return printJSON(out, client.ListContactsResponse{Contacts: snap.Items, Total: snap.TotalCount})
		}
		if len(snap.Items) == 0 {
			fmt.Fprintln(out, "No contacts found.")
			return nil
		}
		printContactTable(out, snap.Items)
		fmt.Fprintln(out)
		printFooter(out, snap, "contacts")
		return nil
	},
}

func contactInputFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("name", "n", "", "full name")
	cmd.Flags().StringP("email", "e", "", "email address")
	cmd.Flags().StringP("phone", "p", "", "phone number")
	cmd.Flags().StringP("company", "c", "", "company")
	cmd.Flags().StringP("status", "s", string(model.StatusLead), "status (Lead, Prospect, Customer)")
	cmd.Flags().String("notes", "", "free-form notes")
}

// applyInputFlags copies every flag the user set onto in and returns the
// changed fields by JSON name.
func applyInputFlags(cmd *cobra.Command, in *model.ContactInput, onlyChanged bool) (map[string]any, error) {
	changes := map[string]any{}
	for _, f := range []struct {
		flag string
		dst  *string
	}{
		{"name", &in.Name},
		{"email", &in.Email},
		{"phone", &in.Phone},
		{"company", &in.Company},
		{"notes", &in.Notes},
	} {
		if onlyChanged && !cmd.Flags().Changed(f.flag) {
			continue
		}
		v, _ := cmd.Flags().GetString(f.flag)
		*f.dst = strings.TrimSpace(v)
		changes[f.flag] = *f.dst
	}
	if !onlyChanged || cmd.Flags().Changed("status") {
		v, _ := cmd.Flags().GetString("status")
		st, err := parseStatus(v)
		if err != nil {
			return nil, err
		}
		if st == "" {
			st = model.StatusLead
		}
		in.Status = st
		changes["status"] = string(st)
	}
	return changes, nil
}

var contactsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a contact",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSession(); err != nil {
			return err
		}
		var in model.ContactInput
		if _, err := applyInputFlags(cmd, &in, false); err != nil {
			return err
		}

		g := &client.ContactsGateway{Client: crmClient}
		c, err := g.Create(cmd.Context(), &in)
		if err != nil {
			return err
		}
		announce(cmd.Context(), events.TopicContactCreated, events.ContactCreated{Contact: c})

		out := cmd.OutOrStdout()
		if jsonOutput {
			return printJSON(out, c)
		}
		fmt.Fprintf(out, "%s %s\n", ui.RenderSuccess("Created"), c.ID)
		printContact(out, c)
		return nil
	},
}

var contactsUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a contact; only the given fields change",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSession(); err != nil {
			return err
		}
		existing, err := findContact(args[0])
		if err != nil {
			return err
		}
		in := model.InputFromContact(existing)
		changes, err := applyInputFlags(cmd, &in, true)
		if err != nil {
			return err
		}
		if len(changes) == 0 {
			return fmt.Errorf("nothing to update (pass at least one field flag)")
		}

		g := &client.ContactsGateway{Client: crmClient}
		c, err := g.Update(cmd.Context(), existing.ID, &in)
		if err != nil {
			return err
		}
		announce(cmd.Context(), events.TopicContactUpdated, events.ContactUpdated{Contact: c, Changes: changes})

		out := cmd.OutOrStdout()
		if jsonOutput {
			return printJSON(out, c)
		}
		fmt.Fprintf(out, "%s %s\n", ui.RenderSuccess("Updated"), c.ID)
		printContact(out, c)
		return nil
	},
}

var contactsDeleteCmd = &cobra.Command{
	Use:   "delete <id>...",
	Short: "Delete one or more contacts",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSession(); err != nil {
			return err
		}
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes {
			if !ui.IsTerminal(os.Stdin) {
				return fmt.Errorf("refusing to delete without --yes when stdin is not a terminal")
			}
			ok, err := confirm(cmd.InOrStdin(), cmd.OutOrStdout(),
				fmt.Sprintf("Are you sure you want to delete %d contact(s)?", len(args)))
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
				return nil
			}
		}

		g := &client.ContactsGateway{Client: crmClient}
		for _, id := range args {
			if err := g.Delete(cmd.Context(), id); err != nil {
				return fmt.Errorf("deleting %s: %w", id, err)
			}
			announce(cmd.Context(), events.TopicContactDeleted, events.ContactDeleted{ContactID: id})
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", id)
		}
		return nil
	},
}

// confirm asks a yes/no question; anything but y/yes is no.
func confirm(in io.Reader, out io.Writer, question string) (bool, error) {
	fmt.Fprintf(out, "%s [y/N] ", question)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

var contactsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all contacts as CSV",
	Long: `Export all contacts as CSV.

Writes contacts.csv in the current directory by default. Use --output - to
write to stdout, --s3 to upload to CRM_EXPORT_S3_BUCKET, and --every to keep
exporting on an interval until interrupted.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSession(); err != nil {
			return err
		}
		output, _ := cmd.Flags().GetString("output")
		toS3, _ := cmd.Flags().GetBool("s3")
		every, _ := cmd.Flags().GetDuration("every")
		if !cmd.Flags().Changed("every") {
			every = cfg.ExportInterval
		}

		ctx := cmd.Context()
		g := &client.ContactsGateway{Client: crmClient}

		if output == "-" {
			data, err := g.Export(ctx)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		}

		var dests []export.Destination
		if output != "" || !toS3 {
			dests = append(dests, export.NewFileDestination(output))
		}
		if toS3 {
			if cfg.ExportS3Bucket == "" {
				return fmt.Errorf("--s3 requires CRM_EXPORT_S3_BUCKET")
			}
			s3dest, err := export.NewS3Destination(ctx, cfg.ExportS3Bucket, cfg.ExportS3Key, cfg.ExportS3Region, cfg.ExportS3Endpoint)
			if err != nil {
				return err
			}
			dests = append(dests, s3dest)
		}

		if every > 0 {
			ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
			defer stop()
			sched := export.NewScheduler(g, dests, every, nil, logger)
			sched.Start()
			fmt.Fprintf(cmd.OutOrStdout(), "Exporting every %s; press Ctrl-C to stop.\n", every)
			<-ctx.Done()
			sched.Stop()
			return nil
		}

		n, err := export.Run(ctx, g, dests, logger)
		if err != nil {
			return err
		}
		for _, d := range dests {
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d bytes to %s\n", n, d)
		}
		return nil
	},
}

func init() {
	contactsListCmd.Flags().StringP("search", "q", "", "search name, email and company")
	contactsListCmd.Flags().StringP("status", "s", "", "filter by status (Lead, Prospect, Customer)")
	contactsListCmd.Flags().Int("pages", 1, "number of pages to load")
	contactsListCmd.Flags().Bool("all", false, "load every page")

	contactInputFlags(contactsCreateCmd)
	contactInputFlags(contactsUpdateCmd)

	contactsDeleteCmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation")

	contactsExportCmd.Flags().StringP("output", "o", "", "file or directory to write (\"-\" for stdout)")
	contactsExportCmd.Flags().Bool("s3", false, "upload to the configured S3 bucket")
	contactsExportCmd.Flags().Duration("every", 0, "repeat the export on this interval")

	contactsCmd.AddCommand(contactsListCmd)
	contactsCmd.AddCommand(contactsCreateCmd)
	contactsCmd.AddCommand(contactsUpdateCmd)
	contactsCmd.AddCommand(contactsDeleteCmd)
	contactsCmd.AddCommand(contactsExportCmd)
	contactsCmd.AddCommand(contactsBrowseCmd)
	contactsCmd.AddCommand(contactsWatchCmd)
}
