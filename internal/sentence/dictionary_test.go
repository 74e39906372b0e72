package sentence

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultDictionary(t *testing.T) {
	d := DefaultDictionary()

	tests := []struct {
		label string
		want  string
	}{
		{"Muraho", "Hello"},
		{"Murakoze_Cyane", "Thank you very much"},
		{"Nta", "No"},
		{"Yego", "Yes"},
		{"Unknown", "Unknown"},
	}
	for _, tt := range tests {
		if got := d.Display(tt.label); got != tt.want {
			t.Errorf("Display(%q) = %q, want %q", tt.label, got, tt.want)
		}
	}

	if got := d.Translate("Water", Kinyarwanda); got != "Amazi" {
		t.Errorf("Translate(Water) = %q", got)
	}
	if got := d.Reverse("Amazi", Kinyarwanda); got != "Water" {
		t.Errorf("Reverse(Amazi) = %q", got)
	}
	if got := d.Reverse("Ntabwo", Kinyarwanda); got != "Ntabwo" {
		t.Errorf("Reverse(unknown) = %q", got)
	}
}

func TestLoadDictionary_Override(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dict.yaml")
	content := `
signs:
  Muraho: Hi
  Inka: Cow
languages:
  kinyarwanda:
    Cow: Inka
    Hi: Muraho
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	d, err := LoadDictionary(path)
	if err != nil {
		t.Fatalf("LoadDictionary() error = %v", err)
	}
	if got := d.Display("Muraho"); got != "Hi" {
		t.Errorf("Display(Muraho) = %q, want Hi", got)
	}
	if got := d.Display("Amazi"); got != "Water" {
		t.Errorf("built-in entries should survive: Display(Amazi) = %q", got)
	}
	if got := d.Translate("Cow", Kinyarwanda); got != "Inka" {
		t.Errorf("Translate(Cow) = %q", got)
	}
}

func TestLoadDictionary_Errors(t *testing.T) {
	dir := t.TempDir()

	if _, err := LoadDictionary(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	bad := filepath.Join(dir, "bad.yaml")
	os.WriteFile(bad, []byte("languages:\n  french:\n    Hello: Bonjour\n"), 0o644)
	if _, err := LoadDictionary(bad); err == nil {
		t.Error("expected error for unsupported language")
	}
}

func TestParseLanguage(t *testing.T) {
	for _, s := range []string{"english", "kinyarwanda"} {
		if _, err := ParseLanguage(s); err != nil {
			t.Errorf("ParseLanguage(%q) error = %v", s, err)
		}
	}
	if _, err := ParseLanguage("french"); err == nil {
		t.Error("ParseLanguage(french) should fail")
	}
}

func TestAddTranslation_ReplacesReverse(t *testing.T) {
	d := NewDictionary()
	d.AddTranslation(Kinyarwanda, "Hello", "Muraho")
	d.AddTranslation(Kinyarwanda, "Hello", "Mwiriwe")

	if got := d.Reverse("Muraho", Kinyarwanda); got != "Muraho" {
		t.Errorf("stale reverse entry: %q", got)
	}
	if got := d.Reverse("Mwiriwe", Kinyarwanda); got != "Hello" {
		t.Errorf("Reverse(Mwiriwe) = %q", got)
	}
}
