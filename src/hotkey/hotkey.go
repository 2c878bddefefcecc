// Package hotkey registers global keyboard shortcuts through a single
// low-level event hook shared by every binding.
package hotkey

import (
	"log"
	"strconv"
	"strings"
	"sync"

	gohook "github.com/robotn/gohook"
)

// Binding pairs a key combination such as "Shift+Q+R" with the callback
// to run when all of its keys are held at once.
type Binding struct {
	Combo     string
	OnTrigger func()
}

type keyState struct {
	name     string
	rawcodes []uint16
	pressed  bool
}

type comboState struct {
	combo string
	keys  []*keyState
}

// Listen starts the global keyboard hook and watches for the given
// bindings. Callbacks run on the hook goroutine, so they must return
// quickly; a non-blocking channel send is the expected shape.
func Listen(bindings ...Binding) {
	var combos []*comboState
	var callbacks []func()

	for _, b := range bindings {
		if b.Combo == "" || b.OnTrigger == nil {
			continue
		}
		cs := buildComboState(b.Combo)
		if cs == nil {
			log.Printf("ERROR: no valid keys in hotkey combination '%s'", b.Combo)
			continue
		}
		combos = append(combos, cs)
		callbacks = append(callbacks, b.OnTrigger)
	}

	if len(combos) == 0 {
		log.Printf("ERROR: no usable hotkey bindings, listener not started")
		return
	}

	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("PANIC in hotkey listener goroutine: %v", r)
			}
		}()

		evChan := gohook.Start()
		if evChan == nil {
			log.Printf("ERROR: failed to start keyboard hook")
			return
		}
		log.Printf("Hotkey listener started with %d bindings", len(combos))

		var mu sync.Mutex
		for ev := range evChan {
			switch ev.Kind {
			case gohook.KeyDown:
				var fire []func()
				mu.Lock()
				for i, cs := range combos {
					cs.press(ev.Rawcode)
					if cs.allPressed() {
						log.Printf("Hotkey combination detected: %s", cs.combo)
						cs.reset()
						fire = append(fire, callbacks[i])
					}
				}
				mu.Unlock()
				for _, cb := range fire {
					cb()
				}
			case gohook.KeyUp:
				mu.Lock()
				for _, cs := range combos {
					cs.release(ev.Rawcode)
				}
				mu.Unlock()
			}
		}
		log.Printf("Hotkey event channel closed")
	}()
}

func buildComboState(combo string) *comboState {
	cs := &comboState{combo: combo}
	for _, name := range parseCombo(combo) {
		rawcodes := keyNameToRawcodes(name)
		if len(rawcodes) == 0 {
			log.Printf("WARNING: cannot map key '%s' to rawcodes, hotkey '%s' may not trigger", name, combo)
			continue
		}
		cs.keys = append(cs.keys, &keyState{name: name, rawcodes: rawcodes})
	}
	if len(cs.keys) == 0 {
		return nil
	}
	return cs
}

func (cs *comboState) press(rawcode uint16) {
	for _, ks := range cs.keys {
		if ks.matches(rawcode) {
			ks.pressed = true
		}
	}
}

func (cs *comboState) release(rawcode uint16) {
	for _, ks := range cs.keys {
		if ks.matches(rawcode) {
			ks.pressed = false
		}
	}
}

func (cs *comboState) allPressed() bool {
	for _, ks := range cs.keys {
		if !ks.pressed {
			return false
		}
	}
	return true
}

func (cs *comboState) reset() {
	for _, ks := range cs.keys {
		ks.pressed = false
	}
}

func (ks *keyState) matches(rawcode uint16) bool {
	for _, rc := range ks.rawcodes {
		if rc == rawcode {
			return true
		}
	}
	return false
}

// parseCombo splits "Shift+Q+R" into normalized lowercase key names.
func parseCombo(combo string) []string {
	parts := strings.Split(strings.ToLower(combo), "+")
	var keys []string
	for _, part := range parts {
		part = strings.TrimSpace(part)
		switch part {
		case "":
			// skip empty segments from malformed strings like "Shift++R"
		case "ctrl", "control":
			keys = append(keys, "ctrl")
		case "win", "cmd", "super":
			keys = append(keys, "cmd")
		default:
			keys = append(keys, part)
		}
	}
	return keys
}

// modifierRawcodes lists both left and right variants so either side of
// the keyboard satisfies the combination.
var modifierRawcodes = map[string][]uint16{
	"ctrl":  {162, 163}, // VK_LCONTROL, VK_RCONTROL
	"alt":   {164, 165}, // VK_LMENU, VK_RMENU
	"shift": {160, 161}, // VK_LSHIFT, VK_RSHIFT
	"win":   {91, 92},   // VK_LWIN, VK_RWIN
	"cmd":   {91, 92},
	"super": {91, 92},
}

// keyNameToRawcodes maps a normalized key name to the Windows virtual-key
// codes gohook reports in Event.Rawcode. Returns nil for unknown keys.
func keyNameToRawcodes(keyName string) []uint16 {
	keyName = strings.TrimSpace(strings.ToLower(keyName))

	if rc, ok := modifierRawcodes[keyName]; ok {
		return rc
	}

	if len(keyName) == 1 {
		c := keyName[0]
		switch {
		case c >= 'a' && c <= 'z':
			// VK_A..VK_Z are the uppercase ASCII values
			return []uint16{uint16(c - 'a' + 'A')}
		case c >= '0' && c <= '9':
			// VK_0..VK_9 match the ASCII digit values
			return []uint16{uint16(c)}
		}
	}

	if n, ok := functionKeyNumber(keyName); ok {
		// VK_F1 is 112
		return []uint16{uint16(111 + n)}
	}

	switch keyName {
	case "space":
		return []uint16{32}
	case "enter":
		return []uint16{13}
	case "esc":
		return []uint16{27}
	}
	return nil
}

func functionKeyNumber(name string) (int, bool) {
	if len(name) < 2 || name[0] != 'f' {
		return 0, false
	}
	n, err := strconv.Atoi(name[1:])
	if err != nil || n < 1 || n > 24 {
		return 0, false
	}
	return n, true
}
