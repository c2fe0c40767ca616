package main

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/crm/internal/config"
	"github.com/alfredjeanlab/crm/internal/ui"
)

// helpEnv is listed under "Environment:" in the root help.
var helpEnv = []struct{ name, desc string }{
	{"CRM_API_URL", "API base URL (default " + config.DefaultAPIURL + ")"},
	{"CRM_NATS_URL", "NATS server for live contact events"},
	{"CRM_PROFILE", "profile to use instead of the active one"},
	{"CRM_STATE_DIR", "where the session and profiles are kept"},
	{"CRM_LOG_LEVEL", "debug, info, warn or error (default warn)"},
}

var (
	// "Data:", "Flags:", "Environment:"; a line that is only a title.
	reSection = regexp.MustCompile(`(?m)^([A-Z][A-Za-z ]*:)[ \t]*$`)

	// Subcommand rows: two-space indent, name, then the aligned short text.
	reCommand = regexp.MustCompile(`(?m)^(  )([a-z][\w-]*)( {2,})`)

	reFlagType = regexp.MustCompile(`(--[\w-]+ )(string|int|bool|duration|float64)\b`)
	reDefault  = regexp.MustCompile(`\(default [^)]*\)`)
	reEnvVar   = regexp.MustCompile(`\bCRM_[A-Z0-9_]+\b`)
	reStatus   = regexp.MustCompile(`\b(Lead|Prospect|Customer)\b`)
)

// colorizedHelpFunc prints the description, cobra's usage block and, for
// the root command, the environment variables. Output is colored unless
// color is off.
func colorizedHelpFunc() func(*cobra.Command, []string) {
	return func(cmd *cobra.Command, args []string) {
		text := helpText(cmd)
		if !noColor && ui.ShouldUseColor() {
			text = colorizeHelpOutput(text)
		}
		fmt.Fprint(cmd.OutOrStdout(), text)
	}
}

func helpText(cmd *cobra.Command) string {
	var buf bytes.Buffer
	desc := strings.TrimSpace(cmd.Long)
	if desc == "" {
		desc = cmd.Short
	}
	if desc != "" {
		buf.WriteString(desc + "\n\n")
	}

	out := cmd.OutOrStdout()
	cmd.SetOut(&buf)
	_ = cmd.Usage()
	cmd.SetOut(out)

	if !cmd.HasParent() {
		buf.WriteString("\nEnvironment:\n")
		for _, e := range helpEnv {
			fmt.Fprintf(&buf, "  %-15s %s\n", e.name, e.desc)
		}
	}
	return buf.String()
}

func colorizeHelpOutput(s string) string {
	s = reSection.ReplaceAllStringFunc(s, func(m string) string {
		return ui.RenderAccent(strings.TrimSpace(m))
	})
	s = reCommand.ReplaceAllString(s, "${1}"+ui.RenderCommand("${2}")+"${3}")
	s = reFlagType.ReplaceAllString(s, "${1}"+ui.RenderMuted("${2}"))
	s = reDefault.ReplaceAllStringFunc(s, ui.RenderMuted)
	s = reEnvVar.ReplaceAllStringFunc(s, ui.RenderCommand)
	return reStatus.ReplaceAllStringFunc(s, ui.RenderStatus)
}
