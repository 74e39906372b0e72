package sentence

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed dictionary.yaml
var defaultDictionary []byte

// Language identifies a translation target.
type Language string

const (
	English     Language = "english"
	Kinyarwanda Language = "kinyarwanda"
)

// ParseLanguage validates a language name.
func ParseLanguage(s string) (Language, error) {
	switch l := Language(s); l {
	case English, Kinyarwanda:
		return l, nil
	}
	return "", fmt.Errorf("unsupported language %q", s)
}

type dictionaryFile struct {
	Signs     map[string]string            `yaml:"signs"`
	Languages map[string]map[string]string `yaml:"languages"`
}

// Dictionary maps sign labels to display text and display text to other
// languages. Lookups that miss fall back to the input unchanged.
type Dictionary struct {
	signs   map[string]string
	forward map[Language]map[string]string
	reverse map[Language]map[string]string
}

// NewDictionary returns an empty dictionary.
func NewDictionary() *Dictionary {
	return &Dictionary{
		signs:   make(map[string]string),
		forward: make(map[Language]map[string]string),
		reverse: make(map[Language]map[string]string),
	}
}

// DefaultDictionary returns the built-in Rwandan Sign Language vocabulary.
func DefaultDictionary() *Dictionary {
	d := NewDictionary()
	if err := d.Merge(defaultDictionary); err != nil {
		panic(fmt.Sprintf("sentence: embedded dictionary: %v", err))
	}
	return d
}

// LoadDictionary returns the built-in dictionary with the YAML file at path
// merged over it. An empty path yields the built-in dictionary.
func LoadDictionary(path string) (*Dictionary, error) {
	d := DefaultDictionary()
	if path == "" {
		return d, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dictionary: %w", err)
	}
	if err := d.Merge(data); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// Merge adds entries from a YAML document, replacing existing keys.
func (d *Dictionary) Merge(data []byte) error {
	var f dictionaryFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("parse dictionary: %w", err)
	}

	for label, display := range f.Signs {
		d.AddSign(label, display)
	}
	for name, entries := range f.Languages {
		lang, err := ParseLanguage(name)
		if err != nil {
			return err
		}
		for src, dst := range entries {
			d.AddTranslation(lang, src, dst)
		}
	}
	return nil
}

// AddSign maps a raw classifier label to display text.
func (d *Dictionary) AddSign(label, display string) {
	d.signs[label] = display
}

// AddTranslation maps English display text to text in lang.
func (d *Dictionary) AddTranslation(lang Language, english, translated string) {
	if d.forward[lang] == nil {
		d.forward[lang] = make(map[string]string)
		d.reverse[lang] = make(map[string]string)
	}
	if old, ok := d.forward[lang][english]; ok {
		delete(d.reverse[lang], old)
	}
	d.forward[lang][english] = translated
	d.reverse[lang][translated] = english
}

// Display resolves a sign label to display text.
func (d *Dictionary) Display(label string) string {
	if display, ok := d.signs[label]; ok {
		return display
	}
	return label
}

// Translate maps one English token into lang.
func (d *Dictionary) Translate(token string, lang Language) string {
	if t, ok := d.forward[lang][token]; ok {
		return t
	}
	return token
}

// Reverse maps a token in lang back to English.
func (d *Dictionary) Reverse(token string, lang Language) string {
	if t, ok := d.reverse[lang][token]; ok {
		return t
	}
	return token
}

// Signs returns the known sign labels in sorted order.
func (d *Dictionary) Signs() []string {
	labels := make([]string, 0, len(d.signs))
	for l := range d.signs {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	return labels
}
