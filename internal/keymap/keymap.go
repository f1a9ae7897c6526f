// Package keymap translates human-readable key combinations ("Ctrl+F1") into
// the token vocabulary robotgo expects. Translation is purely table-driven so
// malformed input degrades to an empty key list instead of an error.
package keymap

import (
	"fmt"
	"strings"
)

// Combo is a parsed shortcut: the modifier set plus the translated main keys.
// Keys may legitimately be empty (unconfigured or modifier-only shortcut), in
// which case dispatching it is a no-op.
type Combo struct {
	Ctrl  bool
	Alt   bool
	Shift bool
	Keys  []string
}

// Modifiers returns the robotgo modifier tokens for the combo.
func (c Combo) Modifiers() []string {
	var mods []string
	if c.Ctrl {
		mods = append(mods, "ctrl")
	}
	if c.Alt {
		mods = append(mods, "alt")
	}
	if c.Shift {
		mods = append(mods, "shift")
	}
	return mods
}

// Named keys that robotgo spells differently from common shortcut notation.
var specialKeys = map[string]string{
	"enter":       "enter",
	"return":      "enter",
	"tab":         "tab",
	"escape":      "esc",
	"esc":         "esc",
	"space":       "space",
	"spacebar":    "space",
	"backspace":   "backspace",
	"bs":          "backspace",
	"delete":      "delete",
	"del":         "delete",
	"insert":      "insert",
	"ins":         "insert",
	"home":        "home",
	"end":         "end",
	"pageup":      "pageup",
	"pgup":        "pageup",
	"pagedown":    "pagedown",
	"pgdn":        "pagedown",
	"up":          "up",
	"down":        "down",
	"left":        "left",
	"right":       "right",
	"capslock":    "capslock",
	"numlock":     "num_lock",
	"printscreen": "printscreen",
	"prtsc":       "printscreen",
	"menu":        "menu",
	"apps":        "menu",
	"win":         "cmd",
	"windows":     "cmd",
	"lwin":        "cmd",
	"rwin":        "rcmd",
}

// Numpad aliases, both long and short forms.
var numpadKeys = map[string]string{
	"numpadmultiply": "num*", "num*": "num*",
	"numpadadd": "num+", "num+": "num+",
	"numpadsubtract": "num-", "num-": "num-",
	"numpaddecimal": "num.", "num.": "num.",
	"numpaddivide": "num/", "num/": "num/",
	"numpadenter": "num_enter",
}

// Punctuation that collides with robotgo's token syntax and must be escaped
// to a named token instead of passed through literally.
var symbolKeys = map[string]string{
	"*": "num*",
	"/": "num/",
	"-": "num-",
	".": "num.",
	" ": "space",
	"~": "`",
}

// Parse splits a shortcut into modifiers and main keys and translates each
// main key to a robotgo token. Empty components (e.g. from "Ctrl++") are
// dropped; a shortcut with no main keys is legal and parses to an empty list.
func Parse(shortcut string) Combo {
	var c Combo
	for _, part := range strings.Split(shortcut, "+") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		switch strings.ToLower(part) {
		case "ctrl":
			c.Ctrl = true
		case "alt":
			c.Alt = true
		case "shift":
			c.Shift = true
		default:
			c.Keys = append(c.Keys, translate(part))
		}
	}
	return c
}

// translate maps a single main key to its robotgo token.
func translate(key string) string {
	lower := strings.ToLower(key)

	// Function keys f1..f24 pass through lowercased.
	if len(lower) >= 2 && lower[0] == 'f' && isDigits(lower[1:]) {
		return lower
	}
	if tok, ok := specialKeys[lower]; ok {
		return tok
	}
	if tok, ok := numpadKeys[lower]; ok {
		return tok
	}
	// Numbered hotbar slots go out as numpad keys, matching how the game
	// binds crafting actions.
	if len(key) == 1 && key[0] >= '0' && key[0] <= '9' {
		return fmt.Sprintf("num%c", key[0])
	}
	if strings.HasPrefix(lower, "numpad") && len(lower) == 7 {
		return "num" + lower[6:]
	}
	if tok, ok := symbolKeys[key]; ok {
		return tok
	}
	return lower
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
