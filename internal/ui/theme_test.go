package ui

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestGetThemeFallsBackToNightfox(t *testing.T) {
	if got := GetTheme("Dracula").Name; got != "Nightfox" {
		t.Fatalf("GetTheme(unknown) = %q, want Nightfox", got)
	}
	if got := GetTheme("Slate").Name; got != "Slate" {
		t.Fatalf("GetTheme(Slate) = %q", got)
	}
}

func TestNextThemeCycles(t *testing.T) {
	names := ThemeNames()
	if len(names) != 3 {
		t.Fatalf("ThemeNames() = %v, want 3 themes", names)
	}
	current := names[0]
	for i := 0; i < len(names); i++ {
		current = NextTheme(current)
	}
	if current != names[0] {
		t.Fatalf("cycling %d times ended on %q, want %q", len(names), current, names[0])
	}
	if got := NextTheme("unknown"); got != names[0] {
		t.Fatalf("NextTheme(unknown) = %q, want %q", got, names[0])
	}
}

func TestThemesCoverCatalogStatuses(t *testing.T) {
	for _, name := range ThemeNames() {
		th := GetTheme(name)
		for _, status := range []string{"idle", "loading", "succeeded", "failed", busyStatus} {
			if th.StatusColors[status] == "" {
				t.Errorf("theme %s has no color for %q", name, status)
			}
		}
	}
}

func TestWithBackgroundKeepsStatusColors(t *testing.T) {
	th := GetTheme("Kanagawa")
	styles := th.Styles().WithBackground(th.Surface)
	if got := styles.StatusStyle("failed").GetBackground(); got != lipgloss.Color(th.Danger) {
		t.Fatalf("failed badge background = %v, want %s", got, th.Danger)
	}
	if got := styles.Price.GetBackground(); got != lipgloss.Color(th.Surface) {
		t.Fatalf("price background = %v, want %s", got, th.Surface)
	}
}
