package hotkey

import (
	"image"
	"testing"

	gohook "github.com/robotn/gohook"
)

func TestKeyNameToRawcodes(t *testing.T) {
	tests := []struct {
		keyName  string
		expected []uint16
	}{
		// Modifier keys
		{"ctrl", []uint16{162, 163}},
		{"alt", []uint16{164, 165}},
		{"shift", []uint16{160, 161}},
		{"win", []uint16{91, 92}},
		{"cmd", []uint16{91, 92}},
		{"super", []uint16{91, 92}},

		// Letter keys
		{"q", []uint16{81}},
		{"e", []uint16{69}},
		{"o", []uint16{79}},
		{"t", []uint16{84}},

		// Number keys
		{"0", []uint16{48}},
		{"1", []uint16{49}},
		{"9", []uint16{57}},

		// Function keys
		{"f1", []uint16{112}},
		{"f12", []uint16{123}},
		{"f13", []uint16{124}},
		{"f24", []uint16{135}},

		// Special keys
		{"space", []uint16{32}},
		{"enter", []uint16{13}},
		{"esc", []uint16{27}},

		// Unknown key
		{"unknown", nil},
	}

	for _, tt := range tests {
		t.Run(tt.keyName, func(t *testing.T) {
			result := keyNameToRawcodes(tt.keyName)
			if len(result) != len(tt.expected) {
				t.Errorf("keyNameToRawcodes(%q) returned %d rawcodes, expected %d",
					tt.keyName, len(result), len(tt.expected))
				return
			}
			for i := range result {
				if result[i] != tt.expected[i] {
					t.Errorf("keyNameToRawcodes(%q)[%d] = %d, expected %d",
						tt.keyName, i, result[i], tt.expected[i])
				}
			}
		})
	}
}

func TestParseHotkey(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
	}{
		{"Ctrl+Alt+Q", []string{"ctrl", "alt", "q"}},
		{"Ctrl+Shift+O", []string{"ctrl", "shift", "o"}},
		{"Ctrl+alt+e", []string{"ctrl", "alt", "e"}},
		{"Alt+F4", []string{"alt", "f4"}},
		{"Ctrl+Shift+F13", []string{"ctrl", "shift", "f13"}},
		{"Alt+F24", []string{"alt", "f24"}},
		{"Ctrl+Shift+T", []string{"ctrl", "shift", "t"}},
		{"Ctrl+Win+E", []string{"ctrl", "cmd", "e"}},
		{"Win+Shift+S", []string{"cmd", "shift", "s"}},
		{"Super+Alt+T", []string{"cmd", "alt", "t"}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := parseHotkey(tt.input)
			if len(result) != len(tt.expected) {
				t.Errorf("parseHotkey(%q) returned %d keys, expected %d",
					tt.input, len(result), len(tt.expected))
				return
			}
			for i := range result {
				if result[i] != tt.expected[i] {
					t.Errorf("parseHotkey(%q)[%d] = %q, expected %q",
						tt.input, i, result[i], tt.expected[i])
				}
			}
		})
	}
}

func TestKeyNameToRawcodesExtended(t *testing.T) {
	tests := map[string]uint16{
		"b":     66,
		"z":     90,
		"f4":    115,
		"prtsc": 44,
		"del":   46,
	}
	for name, want := range tests {
		got := keyNameToRawcodes(name)
		if len(got) != 1 || got[0] != want {
			t.Errorf("keyNameToRawcodes(%q) = %v, want [%d]", name, got, want)
		}
	}
	for _, bad := range []string{"f0", "f25", "f1x", "ab"} {
		if got := keyNameToRawcodes(bad); got != nil {
			t.Errorf("keyNameToRawcodes(%q) = %v, want nil", bad, got)
		}
	}
}

func TestComboFiresOnce(t *testing.T) {
	c, err := ParseCombo("Shift+Alt+B")
	if err != nil {
		t.Fatalf("ParseCombo: %v", err)
	}
	if c.Press(160) || c.Press(164) {
		t.Fatal("combo fired before the last key")
	}
	if !c.Press(66) {
		t.Fatal("combo did not fire")
	}
	if c.Press(66) {
		t.Error("holding the key must not fire again without the modifiers")
	}

	// right-hand modifiers count too
	c.Release(66)
	c.Press(161)
	c.Press(165)
	c.Release(161)
	if c.Press(66) {
		t.Error("released modifier must block the combo")
	}
}

func TestParseComboErrors(t *testing.T) {
	for _, in := range []string{"", "+", "Ctrl+Hyper"} {
		if _, err := ParseCombo(in); err == nil {
			t.Errorf("ParseCombo(%q) succeeded, want error", in)
		}
	}
}

func TestListenerTracksCursor(t *testing.T) {
	fired := 0
	c, _ := ParseCombo("Ctrl+Q")
	l := &Listener{combo: c, callback: func() { fired++ }}

	if _, ok := l.Cursor(); ok {
		t.Error("no cursor before any mouse event")
	}
	l.handle(gohook.Event{Kind: gohook.MouseMove, X: 120, Y: 45})
	if p, ok := l.Cursor(); !ok || p != image.Pt(120, 45) {
		t.Errorf("Cursor() = %v, %v", p, ok)
	}

	l.handle(gohook.Event{Kind: gohook.KeyDown, Rawcode: 162})
	l.handle(gohook.Event{Kind: gohook.KeyDown, Rawcode: 81})
	if fired != 1 {
		t.Errorf("callback fired %d times, want 1", fired)
	}

	var nilListener *Listener
	if _, ok := nilListener.Cursor(); ok {
		t.Error("nil listener has no cursor")
	}
}
