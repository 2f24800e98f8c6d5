package prefs

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writePrefs(t *testing.T, path, body string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name string
		body string // empty means no file
		want Prefs
	}{
		{
			name: "missing file",
			want: Prefs{Theme: defaultTheme},
		},
		{
			name: "theme and username",
			body: "theme = \"Slate\"\nlast_username = \"mor_2314\"\n",
			want: Prefs{Theme: "Slate", LastUsername: "mor_2314"},
		},
		{
			name: "blank theme",
			body: "theme = \"  \"\n",
			want: Prefs{Theme: defaultTheme},
		},
		{
			name: "username is trimmed",
			body: "theme = \"Kanagawa\"\nlast_username = \"  johnd \"\n",
			want: Prefs{Theme: "Kanagawa", LastUsername: "johnd"},
		},
		{
			name: "malformed toml",
			body: "not valid toml {{{\n",
			want: Prefs{Theme: defaultTheme},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "prefs.toml")
			if tt.body != "" {
				writePrefs(t, path, tt.body)
			}
			got, err := Load(path)
			if err != nil {
				t.Fatalf("Load returned error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("Load = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestLoad_DefaultPathUnderHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	writePrefs(t, filepath.Join(home, ".config", "shelf", "prefs.toml"), "theme = \"Slate\"\n")

	p, err := Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if p.Theme != "Slate" {
		t.Fatalf("Theme = %q, want Slate", p.Theme)
	}
}

func TestSave_RoundTripCreatesDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "prefs.toml")

	want := Prefs{Theme: "Slate", LastUsername: "mor_2314"}
	if err := Save(path, want); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if got != want {
		t.Fatalf("Load = %+v, want %+v", got, want)
	}
}

func TestSave_OmitsEmptyUsername(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.toml")
	if err := Save(path, Default()); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if strings.Contains(string(data), "last_username") {
		t.Fatalf("unexpected last_username in %q", data)
	}
}

func TestSave_OverwritesPrevious(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.toml")
	for _, theme := range []string{"Slate", "Kanagawa"} {
		if err := Save(path, Prefs{Theme: theme}); err != nil {
			t.Fatalf("Save(%s): %v", theme, err)
		}
	}
	got, _ := Load(path)
	if got.Theme != "Kanagawa" {
		t.Fatalf("Theme = %q, want Kanagawa", got.Theme)
	}
}
