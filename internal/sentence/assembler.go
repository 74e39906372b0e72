// Package sentence accumulates committed words into sentences and
// translates them for display and speech.
package sentence

import (
	"strings"
	"sync"
)

// Speaker receives text to be spoken.
type Speaker interface {
	Speak(text string)
}

// Assembler holds the sentence being signed and the history of finished
// sentences. Tokens in the current sentence are always display text.
type Assembler struct {
	mu       sync.Mutex
	dict     *Dictionary
	speaker  Speaker
	language Language
	current  []string
	history  []string
}

// NewAssembler creates an assembler. A nil dictionary uses the built-in one
// and a nil speaker discards speech.
func NewAssembler(dict *Dictionary, speaker Speaker) *Assembler {
	if dict == nil {
		dict = DefaultDictionary()
	}
	return &Assembler{
		dict:     dict,
		speaker:  speaker,
		language: English,
	}
}

// AppendWord resolves raw to display text, appends it and speaks it.
func (a *Assembler) AppendWord(raw string) string {
	a.mu.Lock()
	display := a.dict.Display(raw)
	a.current = append(a.current, display)
	a.mu.Unlock()

	a.speak(display)
	return display
}

// Backspace removes the last word, if any.
func (a *Assembler) Backspace() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if len(a.current) > 0 {
		a.current = a.current[:len(a.current)-1]
	}
}

// ClearSentence moves the current sentence into history and returns it.
// It reports false when there was nothing to clear.
func (a *Assembler) ClearSentence() (string, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if len(a.current) == 0 {
		return "", false
	}
	text := strings.Join(a.current, " ")
	a.history = append(a.history, text)
	a.current = nil
	return text, true
}

// Text returns the current sentence joined with single spaces.
func (a *Assembler) Text() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return strings.Join(a.current, " ")
}

// Words returns a copy of the current sentence tokens.
func (a *Assembler) Words() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.current...)
}

// History returns a copy of finished sentences, oldest first.
func (a *Assembler) History() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.history...)
}

// FullHistory returns finished sentences joined by newlines.
func (a *Assembler) FullHistory() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return strings.Join(a.history, "\n")
}

// Translate converts English text into lang word by word. English, empty
// text and unsupported languages return text unchanged.
func (a *Assembler) Translate(text string, lang Language) string {
	if text == "" || lang == English {
		return text
	}
	if lang != Kinyarwanda {
		return text
	}

	words := strings.Split(text, " ")
	for i, w := range words {
		words[i] = a.dict.Translate(w, lang)
	}
	return strings.Join(words, " ")
}

// ToEnglish maps text written in lang back to English token by token.
func (a *Assembler) ToEnglish(text string, lang Language) string {
	if text == "" || lang == English {
		return text
	}

	words := strings.Split(text, " ")
	for i, w := range words {
		words[i] = a.dict.Reverse(w, lang)
	}
	return strings.Join(words, " ")
}

// TranslatedText returns the current sentence in the selected language.
func (a *Assembler) TranslatedText() string {
	return a.Translate(a.Text(), a.Language())
}

// SpeakCurrentSentence speaks the current sentence if it is not empty.
func (a *Assembler) SpeakCurrentSentence() {
	if text := a.Text(); text != "" {
		a.speak(text)
	}
}

// SetLanguage selects the display language.
func (a *Assembler) SetLanguage(lang Language) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.language = lang
}

// Language returns the selected display language.
func (a *Assembler) Language() Language {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.language
}

// Dictionary returns the dictionary in use.
func (a *Assembler) Dictionary() *Dictionary {
	return a.dict
}

func (a *Assembler) speak(text string) {
	if a.speaker != nil {
		a.speaker.Speak(text)
	}
}
