package ui

import (
	"strings"
	"testing"
)

func TestRenderStatus(t *testing.T) {
	for _, s := range []string{"Lead", "Prospect", "Customer"} {
		got := RenderStatus(s)
		if !strings.Contains(got, s) {
			t.Errorf("RenderStatus(%q) = %q, lost the text", s, got)
		}
	}
	if got := RenderStatus("Churned"); got != "Churned" {
		t.Errorf("unknown status should be unstyled, got %q", got)
	}
}

func TestActionIcon(t *testing.T) {
	for action, want := range map[string]string{"create": "+", "update": "~", "delete": "-", "merge": "•"} {
		if got := ActionIcon(action); got != want {
			t.Errorf("ActionIcon(%q) = %q, want %q", action, got, want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("short", 10); got != "short" {
		t.Errorf("got %q", got)
	}
	if got := Truncate("a very long company name", 10); got != "a very ..." {
		t.Errorf("got %q", got)
	}
	if got := Truncate("héllo wörld", 8); got != "héllo..." {
		t.Errorf("got %q", got)
	}
}

func TestShouldUseColor_NoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	t.Setenv("CLICOLOR_FORCE", "1")
	if ShouldUseColor() {
		t.Error("NO_COLOR must win")
	}
}

func TestShouldUseColor_Force(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	t.Setenv("CLICOLOR_FORCE", "1")
	if !ShouldUseColor() {
		t.Error("CLICOLOR_FORCE=1 should enable color")
	}
}

// ForceNoColor is global; keep this test last in the file.
func TestForceNoColor(t *testing.T) {
	ForceNoColor()
	if ColorEnabled() {
		t.Error("expected color disabled")
	}
	if got := RenderAction("delete"); got != "delete" {
		t.Errorf("got %q, want plain text", got)
	}
}
