package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/alfredjeanlab/crm/internal/client"
	"github.com/alfredjeanlab/crm/internal/collection"
	"github.com/alfredjeanlab/crm/internal/model"
	"github.com/alfredjeanlab/crm/internal/ui"
)

const timeLayout = "2006-01-02 15:04"

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func printContact(w io.Writer, c *model.Contact) {
	fmt.Fprintf(w, "ID:       %s\n", c.ID)
	fmt.Fprintf(w, "Name:     %s\n", c.Name)
	fmt.Fprintf(w, "Email:    %s\n", c.Email)
	if c.Phone != "" {
		fmt.Fprintf(w, "Phone:    %s\n", c.Phone)
	}
	if c.Company != "" {
		fmt.Fprintf(w, "Company:  %s\n", c.Company)
	}
	fmt.Fprintf(w, "Status:   %s\n", ui.RenderStatus(string(c.Status)))
	if c.Notes != "" {
		fmt.Fprintf(w, "Notes:    %s\n", c.Notes)
	}
	if !c.CreatedAt.IsZero() {
		fmt.Fprintf(w, "Created:  %s\n", c.CreatedAt.Local().Format(timeLayout))
	}
	if !c.UpdatedAt.IsZero() {
		fmt.Fprintf(w, "Updated:  %s\n", c.UpdatedAt.Local().Format(timeLayout))
	}
}

func printContactTable(w io.Writer, contacts []*model.Contact) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tPHONE\tCOMPANY\tSTATUS")
	for _, c := range contacts {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			c.ID,
			ui.Truncate(c.Name, 30),
			c.Email,
			c.Phone,
			ui.Truncate(c.Company, 24),
			ui.RenderStatus(string(c.Status)),
		)
	}
	tw.Flush()
}

func printActivityTable(w io.Writer, activities []*model.Activity) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tACTION\tCONTACT\tUSER\tDETAILS")
	for _, a := range activities {
		fmt.Fprintf(tw, "%s\t%s %s\t%s\t%s\t%s\n",
			formatTime(a.CreatedAt),
			ui.ActionIcon(string(a.Action)),
			ui.RenderAction(string(a.Action)),
			ui.Truncate(a.ResourceName, 30),
			a.Username(),
			strings.Join(a.Summary(), "; "),
		)
	}
	tw.Flush()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(timeLayout)
}

// printFooter summarizes a snapshot below its table.
func printFooter[T any](w io.Writer, s collection.Snapshot[T], noun string) {
	line := fmt.Sprintf("Showing %d of %d %s", len(s.Items), s.TotalCount, noun)
	if f := describeFilter(s.Applied); f != "" {
		line += " matching " + f
	}
	fmt.Fprintln(w, line)
	if s.HasMore {
		fmt.Fprintln(w, ui.RenderMuted(fmt.Sprintf("page %d loaded; more available", s.Page)))
	}
	if s.State.Kind == collection.StateError {
		fmt.Fprintln(w, ui.RenderError("Error: "+s.State.Message))
	}
}

func describeFilter(f collection.Filter) string {
	var parts []string
	if f.Search != "" {
		parts = append(parts, fmt.Sprintf("search=%q", f.Search))
	}
	if f.Status != "" {
		parts = append(parts, "status="+f.Status)
	}
	if f.Action != "" {
		parts = append(parts, "action="+f.Action)
	}
	return strings.Join(parts, " ")
}

// printError writes err for the user, adding a hint for credential problems.
func printError(w io.Writer, err error) {
	var ve *model.ValidationError
	if errors.As(err, &ve) {
		fmt.Fprintln(w, "Error: invalid input")
		for _, fe := range ve.Errors {
			fmt.Fprintf(w, "  %s: %s\n", fe.Field, fe.Message)
		}
		return
	}
	fmt.Fprintf(w, "Error: %s\n", collection.ErrorMessage(err))
	if client.IsAuth(err) {
		fmt.Fprintln(w, ui.RenderMuted("Run 'crm login' to sign in."))
	}
}
