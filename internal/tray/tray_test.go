package tray

import (
	"errors"
	"testing"
)

func TestTray_Toggle(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		want    bool
		wantArg bool
	}{
		{"start accepted", nil, true, true},
		{"start rejected", errors.New("no camera"), false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := New()
			var got []bool
			tr.OnToggle(func(capturing bool) error {
				got = append(got, capturing)
				return tt.err
			})

			tr.handleToggle()

			if tr.IsRunning() != tt.want {
				t.Errorf("IsRunning() = %v, want %v", tr.IsRunning(), tt.want)
			}
			if len(got) != 1 || got[0] != tt.wantArg {
				t.Errorf("callback args = %v, want [%v]", got, tt.wantArg)
			}
		})
	}
}

func TestTray_ToggleStops(t *testing.T) {
	tr := New()
	tr.SetRunning(true)

	got := true
	tr.OnToggle(func(capturing bool) error {
		got = capturing
		return nil
	})
	tr.handleToggle()

	if got || tr.IsRunning() {
		t.Errorf("toggle from running: arg = %v, running = %v", got, tr.IsRunning())
	}
}

func TestTray_Callbacks(t *testing.T) {
	tr := New()

	var spoke, cleared int
	tr.OnSpeak(func() { spoke++ })
	tr.OnClear(func() { cleared++ })

	tr.call(func() func() { return tr.onSpeak })
	tr.call(func() func() { return tr.onClear })
	tr.call(func() func() { return tr.onOpen })

	if spoke != 1 || cleared != 1 {
		t.Errorf("spoke = %d, cleared = %d", spoke, cleared)
	}
}

func TestTray_SettersBeforeReady(t *testing.T) {
	tr := New()
	tr.SetLastWord("Hello")
	tr.SetSentence("Hello")
	tr.SetRunning(true)
	if !tr.IsRunning() {
		t.Error("IsRunning() = false after SetRunning(true)")
	}
}
