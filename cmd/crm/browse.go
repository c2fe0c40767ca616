package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/crm/internal/collection"
	"github.com/alfredjeanlab/crm/internal/export"
	"github.com/alfredjeanlab/crm/internal/model"
	"github.com/alfredjeanlab/crm/internal/ui"
)

const browseHelp = `Commands:
  n, more            load the next page
  s <text>           search name, email and company (empty clears)
  status <status>    filter by Lead, Prospect, Customer or all
  r, reload          reload from page 1
  a, add             create a contact
  edit <id>          edit a loaded contact ("-" clears a field)
  d <id>             delete a contact
  x [path]           export all contacts as CSV
  e                  dismiss the current error
  h, ?               show this help
  q, quit            leave`

var contactsBrowseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Page through contacts interactively",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSession(); err != nil {
			return err
		}
		ctrl, err := newContactsController(nil)
		if err != nil {
			return err
		}
		defer ctrl.Close()

		b := &browser{ctrl: ctrl, out: cmd.OutOrStdout()}
		return b.run(cmd.Context(), cmd.InOrStdin())
	},
}

// contactsView is the part of the contacts controller the browser drives.
type contactsView interface {
	Start() error
	LoadFresh(f collection.Filter) error
	LoadMore() error
	Create(in *model.ContactInput) error
	Update(id string, in *model.ContactInput) error
	Delete(id string) error
	Export(ctx context.Context) ([]byte, error)
	OnFilterFieldChange(key, value string) error
	SubmitSearch() error
	DismissError()
	Snapshot() collection.Snapshot[*model.Contact]
	Wait()
}

type browser struct {
	ctrl contactsView
	out  io.Writer
	in   *bufio.Scanner
}

func (b *browser) run(ctx context.Context, in io.Reader) error {
	if err := b.ctrl.Start(); err != nil {
		return err
	}
	b.settle()
	fmt.Fprintln(b.out, ui.RenderMuted("Type h for help."))

	b.in = bufio.NewScanner(in)
	for {
		fmt.Fprint(b.out, "> ")
		if !b.in.Scan() {
			fmt.Fprintln(b.out)
			return b.in.Err()
		}
		quit, err := b.exec(ctx, b.in.Text())
		if err != nil {
			fmt.Fprintln(b.out, ui.RenderError("Error: "+err.Error()))
		}
		if quit {
			return nil
		}
	}
}

// exec runs one browser command and reports whether the session should end.
func (b *browser) exec(ctx context.Context, line string) (bool, error) {
	verb, arg := splitCommand(line)
	switch verb {
	case "", "n", "more":
		if !b.ctrl.Snapshot().HasMore {
			fmt.Fprintln(b.out, "All contacts loaded.")
			return false, nil
		}
		if err := b.ctrl.LoadMore(); err != nil {
			return false, err
		}
	case "s", "search":
		if err := b.ctrl.OnFilterFieldChange(collection.FieldSearch, arg); err != nil {
			return false, err
		}
		if err := b.ctrl.SubmitSearch(); err != nil {
			return false, err
		}
	case "status", "f":
		st, err := parseStatus(arg)
		if err != nil {
			return false, err
		}
		if err := b.ctrl.OnFilterFieldChange(collection.FieldStatus, string(st)); err != nil {
			return false, err
		}
	case "r", "reload":
		if err := b.ctrl.LoadFresh(b.ctrl.Snapshot().Applied); err != nil {
			return false, err
		}
	case "a", "add":
		in := model.InputFromContact(nil)
		if ok, err := b.form(&in); !ok || err != nil {
			return false, err
		}
		if err := b.ctrl.Create(&in); err != nil {
			return false, err
		}
	case "edit":
		if arg == "" {
			return false, fmt.Errorf("usage: edit <id>")
		}
		c := b.cached(arg)
		if c == nil {
			return false, fmt.Errorf("contact %s is not loaded", arg)
		}
		in := model.InputFromContact(c)
		if ok, err := b.form(&in); !ok || err != nil {
			return false, err
		}
		if err := b.ctrl.Update(c.ID, &in); err != nil {
			return false, err
		}
	case "d", "delete":
		if arg == "" {
			return false, fmt.Errorf("usage: d <id>")
		}
		if err := b.ctrl.Delete(arg); err != nil {
			return false, err
		}
	case "x", "export":
		data, err := b.ctrl.Export(ctx)
		if err != nil {
			b.settle()
			return false, nil
		}
		dest := export.NewFileDestination(arg)
		if err := dest.Write(ctx, data); err != nil {
			return false, err
		}
		fmt.Fprintf(b.out, "Exported %d bytes to %s\n", len(data), dest.Path)
		return false, nil
	case "e":
		b.ctrl.DismissError()
	case "h", "?", "help":
		fmt.Fprintln(b.out, browseHelp)
		return false, nil
	case "q", "quit", "exit":
		return true, nil
	default:
		return false, fmt.Errorf("unknown command %q (h for help)", verb)
	}
	b.settle()
	return false, nil
}

// form prompts for every contact field, keeping the shown value on an empty
// answer and clearing it on "-". It reports false when the input does not validate; the field
// errors have been printed by then.
func (b *browser) form(in *model.ContactInput) (bool, error) {
	for _, f := range []struct {
		label string
		dst   *string
	}{
		{"Name", &in.Name},
		{"Email", &in.Email},
		{"Phone", &in.Phone},
		{"Company", &in.Company},
	} {
		v, err := b.prompt(f.label, *f.dst)
		if err != nil {
			return false, err
		}
		*f.dst = v
	}
	v, err := b.prompt("Status", string(in.Status))
	if err != nil {
		return false, err
	}
	st, err := parseStatus(v)
	if err != nil {
		return false, err
	}
	if st != "" {
		in.Status = st
	}
	if in.Notes, err = b.prompt("Notes", in.Notes); err != nil {
		return false, err
	}

	if err := model.ValidateContactInput(in); err != nil {
		printError(b.out, err)
		return false, nil
	}
	return true, nil
}

func (b *browser) prompt(label, current string) (string, error) {
	if current != "" {
		fmt.Fprintf(b.out, "%s [%s]: ", label, current)
	} else {
		fmt.Fprintf(b.out, "%s: ", label)
	}
	if b.in == nil || !b.in.Scan() {
		if b.in != nil && b.in.Err() != nil {
			return "", b.in.Err()
		}
		return "", fmt.Errorf("reading %s: no input", strings.ToLower(label))
	}
	switch v := strings.TrimSpace(b.in.Text()); v {
	case "":
		return current, nil
	case "-":
		return "", nil
	default:
		return v, nil
	}
}

func (b *browser) cached(id string) *model.Contact {
	for _, c := range b.ctrl.Snapshot().Items {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// settle waits for in-flight requests and redraws the list.
func (b *browser) settle() {
	b.ctrl.Wait()
	snap := b.ctrl.Snapshot()
	if jsonOutput {
		_ = printJSON(b.out, snap.Items)
		return
	}
	if len(snap.Items) == 0 {
		fmt.Fprintln(b.out, "No contacts found.")
	} else {
		printContactTable(b.out, snap.Items)
		fmt.Fprintln(b.out)
	}
	printFooter(b.out, snap, "contacts")
}

func splitCommand(line string) (verb, arg string) {
	line = strings.TrimSpace(line)
	if strings.HasPrefix(line, "/") {
		return "s", strings.TrimSpace(line[1:])
	}
	verb, arg, _ = strings.Cut(line, " ")
	return strings.ToLower(verb), strings.TrimSpace(arg)
}
