package classifier

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

const utf8BOM = "\ufeff"

// LabelTable maps classifier indices to human-readable labels.
type LabelTable struct {
	labels []string
}

// NewLabelTable builds a table from an in-memory list.
func NewLabelTable(labels ...string) *LabelTable {
	return &LabelTable{labels: append([]string(nil), labels...)}
}

// LoadLabelTable reads a label CSV where the first column of each row is the
// label for the row's index. A missing file is an error; an empty file is a
// valid empty table.
func LoadLabelTable(path string) (*LabelTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open label table: %w", err)
	}
	defer f.Close()

	return ReadLabelTable(f)
}

// ReadLabelTable parses a label CSV from r.
func ReadLabelTable(r io.Reader) (*LabelTable, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	var labels []string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse label table: %w", err)
		}
		if len(record) == 0 {
			continue
		}
		label := record[0]
		if len(labels) == 0 {
			label = strings.TrimPrefix(label, utf8BOM)
		}
		labels = append(labels, strings.TrimSpace(label))
	}

	return &LabelTable{labels: labels}, nil
}

// Lookup returns the label at index i.
func (t *LabelTable) Lookup(i int) (string, bool) {
	if t == nil || i < 0 || i >= len(t.labels) {
		return "", false
	}
	return t.labels[i], true
}

// Len returns the number of labels.
func (t *LabelTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.labels)
}

// Labels returns a copy of all labels in index order.
func (t *LabelTable) Labels() []string {
	if t == nil {
		return nil
	}
	return append([]string(nil), t.labels...)
}

// IndexOf returns the index of label, or -1.
func (t *LabelTable) IndexOf(label string) int {
	if t == nil {
		return -1
	}
	for i, l := range t.labels {
		if l == label {
			return i
		}
	}
	return -1
}
