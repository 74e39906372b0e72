// Package tray provides a system tray menu for controlling Signova.
package tray

import (
	"sync"

	"github.com/getlantern/systray"
)

// Tray represents the system tray application.
type Tray struct {
	onToggle func(capturing bool) error
	onSpeak  func()
	onClear  func()
	onOpen   func()
	onQuit   func()
	running  bool
	mu       sync.RWMutex

	// Menu items stored for later updates
	menuToggle   *systray.MenuItem
	menuLastWord *systray.MenuItem
	menuSentence *systray.MenuItem
}

// New creates a new Tray. Capture starts off.
func New() *Tray {
	return &Tray{}
}

// OnToggle sets the callback run when capture is switched on or off. If it
// returns an error the state is left unchanged.
func (t *Tray) OnToggle(fn func(capturing bool) error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnSpeak sets the callback for the speak sentence item.
func (t *Tray) OnSpeak(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onSpeak = fn
}

// OnClear sets the callback for the clear sentence item.
func (t *Tray) OnClear(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onClear = fn
}

// OnOpen sets the callback for the open interface item.
func (t *Tray) OnOpen(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onOpen = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until systray.Quit() is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, func() {})
}

// onReady sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("Signova")
	systray.SetTooltip("Signova sign language translator")

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem(toggleTitle(t.running), "Start or stop the camera")
	systray.AddSeparator()

	t.menuLastWord = systray.AddMenuItem("Last: none", "Last recognized sign")
	t.menuLastWord.Disable()
	t.menuSentence = systray.AddMenuItem("Sentence: empty", "Current sentence")
	t.menuSentence.Disable()
	t.mu.Unlock()

	menuSpeak := systray.AddMenuItem("Speak Sentence", "Read the current sentence aloud")
	menuClear := systray.AddMenuItem("Clear Sentence", "Finish the current sentence")
	systray.AddSeparator()

	menuOpen := systray.AddMenuItem("Open Interface...", "Open the web interface in a browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit Signova")

	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-menuSpeak.ClickedCh:
				t.call(func() func() { return t.onSpeak })
			case <-menuClear.ClickedCh:
				t.call(func() func() { return t.onClear })
			case <-menuOpen.ClickedCh:
				t.call(func() func() { return t.onOpen })
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

func toggleTitle(running bool) string {
	if running {
		return "● Capturing"
	}
	return "○ Start Capture"
}

// handleToggle flips capture and updates the menu once the callback accepts.
func (t *Tray) handleToggle() {
	t.mu.RLock()
	next := !t.running
	callback := t.onToggle
	t.mu.RUnlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		if err := callback(next); err != nil {
			return
		}
	}
	t.SetRunning(next)
}

// call runs the callback returned by get without holding the lock.
func (t *Tray) call(get func() func()) {
	t.mu.RLock()
	callback := get()
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// handleQuit handles the quit menu item click.
func (t *Tray) handleQuit() {
	t.call(func() func() { return t.onQuit })
	systray.Quit()
}

// SetRunning records whether a session is active, for example after the
// camera disconnects.
func (t *Tray) SetRunning(running bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.running = running
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(running))
	}
}

// SetLastWord updates the last word display in the menu.
func (t *Tray) SetLastWord(word string) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.menuLastWord != nil {
		if word == "" {
			t.menuLastWord.SetTitle("Last: none")
		} else {
			t.menuLastWord.SetTitle("Last: " + word)
		}
	}
}

// SetSentence updates the sentence display in the menu.
func (t *Tray) SetSentence(text string) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.menuSentence != nil {
		if text == "" {
			t.menuSentence.SetTitle("Sentence: empty")
		} else {
			t.menuSentence.SetTitle("Sentence: " + text)
		}
	}
}

// IsRunning reports whether capture is on.
func (t *Tray) IsRunning() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.running
}
