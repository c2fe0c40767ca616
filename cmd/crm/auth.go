package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/crm/internal/client"
	"github.com/alfredjeanlab/crm/internal/model"
	"github.com/alfredjeanlab/crm/internal/session"
	"github.com/alfredjeanlab/crm/internal/ui"
)

// prompter asks for missing form fields on the command's input.
type prompter struct {
	in     *bufio.Reader
	out    io.Writer
	secret func() (string, error) // nil when input is not a terminal
}

func newPrompter(cmd *cobra.Command) *prompter {
	p := &prompter{in: bufio.NewReader(cmd.InOrStdin()), out: cmd.ErrOrStderr()}
	if cmd.InOrStdin() == os.Stdin && ui.IsTerminal(os.Stdin) {
		p.secret = func() (string, error) { return ui.ReadSecret(os.Stdin) }
	}
	return p
}

func (p *prompter) ask(label string, hidden bool) (string, error) {
	fmt.Fprintf(p.out, "%s: ", label)
	if hidden && p.secret != nil {
		s, err := p.secret()
		fmt.Fprintln(p.out)
		return s, err
	}
	line, err := p.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("reading %s: %w", strings.ToLower(label), err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// fill prompts for each empty field in order.
func (p *prompter) fill(fields ...formField) error {
	for _, f := range fields {
		if *f.dst != "" {
			continue
		}
		v, err := p.ask(f.label, f.hidden)
		if err != nil {
			return err
		}
		*f.dst = v
	}
	return nil
}

type formField struct {
	label  string
	dst    *string
	hidden bool
}

func saveSession(cmd *cobra.Command, res *model.AuthResult) error {
	sess := session.FromAuthResult(res, cfg.APIURL)
	if err := sessions.Save(sess); err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), res.User)
	}
	name := res.User.Username
	if name == "" {
		name = res.User.Email
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", ui.RenderAccent(name))
	return nil
}

var loginCmd = &cobra.Command{
	Use:     "login",
	Short:   "Sign in and store the session",
	GroupID: "account",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var creds model.Credentials
		creds.Email, _ = cmd.Flags().GetString("email")
		creds.Password, _ = cmd.Flags().GetString("password")
		if err := newPrompter(cmd).fill(
			formField{label: "Email", dst: &creds.Email},
			formField{label: "Password", dst: &creds.Password, hidden: true},
		); err != nil {
			return err
		}
		creds.Email = strings.TrimSpace(creds.Email)
		if err := model.ValidateCredentials(&creds); err != nil {
			return err
		}

		res, err := crmClient.Login(cmd.Context(), &creds)
		if err != nil {
			return err
		}
		return saveSession(cmd, res)
	},
}

var signupCmd = &cobra.Command{
	Use:     "signup",
	Short:   "Create an account and sign in",
	GroupID: "account",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var reg model.Registration
		reg.Username, _ = cmd.Flags().GetString("username")
		reg.Email, _ = cmd.Flags().GetString("email")
		reg.Password, _ = cmd.Flags().GetString("password")
		reg.Confirm, _ = cmd.Flags().GetString("confirm")
		if err := newPrompter(cmd).fill(
			formField{label: "Username", dst: &reg.Username},
			formField{label: "Email", dst: &reg.Email},
			formField{label: "Password", dst: &reg.Password, hidden: true},
			formField{label: "Confirm password", dst: &reg.Confirm, hidden: true},
		); err != nil {
			return err
		}
		reg.Username = strings.TrimSpace(reg.Username)
		reg.Email = strings.TrimSpace(reg.Email)
		if err := model.ValidateRegistration(&reg); err != nil {
			return err
		}

		res, err := crmClient.Signup(cmd.Context(), &reg)
		if err != nil {
			return err
		}
		return saveSession(cmd, res)
	},
}

var logoutCmd = &cobra.Command{
	Use:     "logout",
	Short:   "Forget the stored session",
	GroupID: "account",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := sessions.Clear(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:     "whoami",
	Short:   "Show the signed-in user",
	GroupID: "account",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if current == nil {
			return &client.AuthError{Message: "not logged in"}
		}
		out := cmd.OutOrStdout()
		if jsonOutput {
			return printJSON(out, map[string]string{
				"username": current.Username,
				"email":    current.Email,
				"api_url":  current.APIURL,
			})
		}
		fmt.Fprintf(out, "User:     %s\n", current.Username)
		fmt.Fprintf(out, "Email:    %s\n", current.Email)
		fmt.Fprintf(out, "API:      %s\n", current.APIURL)
		if exp, ok := current.ExpiresAt(); ok {
			state := "valid"
			if current.Expired(time.Now()) {
				state = ui.RenderError("expired")
			}
			fmt.Fprintf(out, "Expires:  %s (%s)\n", exp.Local().Format(timeLayout), state)
		}
		return nil
	},
}

func init() {
	loginCmd.Flags().String("email", "", "account email")
	loginCmd.Flags().String("password", "", "account password (prompted when omitted)")

	signupCmd.Flags().String("username", "", "username (letters, numbers and underscores)")
	signupCmd.Flags().String("email", "", "account email")
	signupCmd.Flags().String("password", "", "password (prompted when omitted)")
	signupCmd.Flags().String("confirm", "", "password confirmation (prompted when omitted)")
}
