package hotkey

import (
	"fmt"
	"image"
	"log"
	"strings"
	"sync"

	gohook "github.com/robotn/gohook"
)

// Combo tracks the pressed state of one key combination.
type Combo struct {
	name string

	mu   sync.Mutex
	keys []keyState
}

type keyState struct {
	name     string
	rawcodes []uint16
	pressed  bool
}

// ParseCombo builds a Combo from a hotkey string like "Shift+Alt+B".
func ParseCombo(hotkeyConfig string) (*Combo, error) {
	c := &Combo{name: hotkeyConfig}
	for _, keyName := range parseHotkey(hotkeyConfig) {
		rawcodes := keyNameToRawcodes(keyName)
		if len(rawcodes) == 0 {
			return nil, fmt.Errorf("cannot map key %q in hotkey %q", keyName, hotkeyConfig)
		}
		c.keys = append(c.keys, keyState{name: keyName, rawcodes: rawcodes})
	}
	if len(c.keys) == 0 {
		return nil, fmt.Errorf("no valid keys in hotkey configuration %q", hotkeyConfig)
	}
	return c, nil
}

func (c *Combo) String() string { return c.name }

// Press records a key-down and reports whether it completed the
// combination. A completed combination resets, so holding the keys fires
// once.
func (c *Combo) Press(rawcode uint16) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.set(rawcode, true)
	for i := range c.keys {
		if !c.keys[i].pressed {
			return false
		}
	}
	for i := range c.keys {
		c.keys[i].pressed = false
	}
	return true
}

// Release records a key-up.
func (c *Combo) Release(rawcode uint16) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.set(rawcode, false)
}

func (c *Combo) set(rawcode uint16, pressed bool) {
	for i := range c.keys {
		for _, rc := range c.keys[i].rawcodes {
			if rc == rawcode {
				c.keys[i].pressed = pressed
				break
			}
		}
	}
}

// Listener delivers hotkey presses and remembers the last pointer position
// seen by the global hook.
type Listener struct {
	combo    *Combo
	callback func()

	mu        sync.Mutex
	cursor    image.Point
	hasCursor bool
}

// Listen starts the global hook on its own goroutine. callback runs on that
// goroutine and must not block.
func Listen(hotkeyConfig string, callback func()) (*Listener, error) {
	combo, err := ParseCombo(hotkeyConfig)
	if err != nil {
		return nil, err
	}
	log.Printf("Hotkey listener configured for: %s", hotkeyConfig)

	l := &Listener{combo: combo, callback: callback}
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("PANIC in hotkey goroutine: %v", r)
			}
		}()

		evChan := gohook.Start()
		if evChan == nil {
			log.Printf("ERROR: gohook.Start() returned nil channel")
			return
		}
		for ev := range evChan {
			l.handle(ev)
		}
		log.Printf("Event channel closed")
	}()
	return l, nil
}

func (l *Listener) handle(ev gohook.Event) {
	switch ev.Kind {
	case gohook.KeyDown:
		if l.combo.Press(ev.Rawcode) {
			log.Printf("Hotkey activated: %s", l.combo)
			if l.callback != nil {
				l.callback()
			}
		}
	case gohook.KeyUp:
		l.combo.Release(ev.Rawcode)
	case gohook.MouseMove, gohook.MouseDrag, gohook.MouseDown:
		l.mu.Lock()
		l.cursor = image.Pt(int(ev.X), int(ev.Y))
		l.hasCursor = true
		l.mu.Unlock()
	}
}

// Cursor returns the last pointer position reported by the hook.
func (l *Listener) Cursor() (image.Point, bool) {
	if l == nil {
		return image.Point{}, false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cursor, l.hasCursor
}

// Stop ends the global hook.
func Stop() {
	gohook.End()
}

// parseHotkey converts a hotkey string like "Ctrl+Alt+q" to normalized key names
func parseHotkey(hotkeyConfig string) []string {
	var keys []string
	for _, part := range strings.Split(strings.ToLower(hotkeyConfig), "+") {
		part = strings.TrimSpace(part)
		switch part {
		case "":
			continue
		case "control":
			part = "ctrl"
		case "option":
			part = "alt"
		case "win", "cmd", "super", "meta":
			part = "cmd"
		}
		keys = append(keys, part)
	}
	return keys
}

// namedKeys maps non-alphanumeric key names to Windows virtual key codes.
// Modifiers list both left and right variants.
var namedKeys = map[string][]uint16{
	"ctrl":      {162, 163}, // VK_LCONTROL, VK_RCONTROL
	"alt":       {164, 165}, // VK_LMENU, VK_RMENU
	"shift":     {160, 161}, // VK_LSHIFT, VK_RSHIFT
	"cmd":       {91, 92},   // VK_LWIN, VK_RWIN
	"space":     {32},
	"enter":     {13},
	"return":    {13},
	"esc":       {27},
	"escape":    {27},
	"tab":       {9},
	"backspace": {8},
	"delete":    {46},
	"del":       {46},
	"insert":    {45},
	"ins":       {45},
	"home":      {36},
	"end":       {35},
	"pageup":    {33},
	"pgup":      {33},
	"pagedown":  {34},
	"pgdn":      {34},
	"left":      {37},
	"up":        {38},
	"right":     {39},
	"down":      {40},

	"printscreen": {44}, // VK_SNAPSHOT
	"prtsc":       {44},
}

// keyNameToRawcodes maps a key name to its Windows virtual key code rawcodes
func keyNameToRawcodes(keyName string) []uint16 {
	keyName = strings.ToLower(strings.TrimSpace(keyName))
	if keyName == "win" || keyName == "super" {
		keyName = "cmd"
	}
	if codes, ok := namedKeys[keyName]; ok {
		return codes
	}

	if len(keyName) == 1 {
		switch c := keyName[0]; {
		case c >= 'a' && c <= 'z':
			return []uint16{uint16(c-'a') + 65} // VK 0x41-0x5A
		case c >= '0' && c <= '9':
			return []uint16{uint16(c-'0') + 48} // VK 0x30-0x39
		}
	}

	var n int
	if _, err := fmt.Sscanf(keyName, "f%d", &n); err == nil && n >= 1 && n <= 24 && keyName == fmt.Sprintf("f%d", n) {
		return []uint16{uint16(111 + n)} // VK_F1 = 112
	}

	log.Printf("WARNING: Unknown key name '%s', cannot map to rawcode", keyName)
	return nil
}
