package classifier

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReadLabelTable(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"plain", "None\nMuraho\nAmazi\n", []string{"None", "Muraho", "Amazi"}},
		{"bom stripped", "\ufeffNone\nYego\n", []string{"None", "Yego"}},
		{"first column only", "Muraho,extra\nAmazi,more,fields\n", []string{"Muraho", "Amazi"}},
		{"empty", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := ReadLabelTable(strings.NewReader(tt.input))
			if err != nil {
				t.Fatalf("ReadLabelTable() error = %v", err)
			}
			got := table.Labels()
			if len(got) != len(tt.want) {
				t.Fatalf("Labels() = %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("label %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestLoadLabelTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labels.csv")
	if err := os.WriteFile(path, []byte("\ufeffNone\nMurakoze_Cyane\n"), 0o644); err != nil {
		t.Fatalf("write labels: %v", err)
	}

	table, err := LoadLabelTable(path)
	if err != nil {
		t.Fatalf("LoadLabelTable() error = %v", err)
	}
	if table.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", table.Len())
	}
	if label, ok := table.Lookup(1); !ok || label != "Murakoze_Cyane" {
		t.Errorf("Lookup(1) = %q, %v", label, ok)
	}
	if table.IndexOf("None") != 0 {
		t.Errorf("IndexOf(None) = %d, want 0", table.IndexOf("None"))
	}
}

func TestLoadLabelTable_Missing(t *testing.T) {
	if _, err := LoadLabelTable(filepath.Join(t.TempDir(), "nope.csv")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLabelTable_Lookup(t *testing.T) {
	table := NewLabelTable("a", "b")

	if _, ok := table.Lookup(-1); ok {
		t.Error("Lookup(-1) should fail")
	}
	if _, ok := table.Lookup(2); ok {
		t.Error("Lookup(2) should fail")
	}

	var nilTable *LabelTable
	if nilTable.Len() != 0 {
		t.Error("nil table should be empty")
	}
	if _, ok := nilTable.Lookup(0); ok {
		t.Error("nil table lookup should fail")
	}
}
