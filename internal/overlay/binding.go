package overlay

import (
	"fmt"
	"math/bits"
	"strconv"
	"strings"
)

// Modifier is a Win32 hotkey modifier bitmask.
type Modifier uint32

// VKey is a Win32 virtual-key code.
type VKey uint32

const (
	ModAlt      Modifier = 0x0001
	ModControl  Modifier = 0x0002
	ModShift    Modifier = 0x0004
	ModWin      Modifier = 0x0008
	ModNoRepeat Modifier = 0x4000
)

const (
	vkTab    VKey = 0x09
	vkReturn VKey = 0x0D
	vkEscape VKey = 0x1B
	vkSpace  VKey = 0x20
	vkLeft   VKey = 0x25
	vkUp     VKey = 0x26
	vkRight  VKey = 0x27
	vkDown   VKey = 0x28
	vkDelete VKey = 0x2E
	vkF1     VKey = 0x70
	vkOem3   VKey = 0xC0
)

// DefaultBinding toggles the overlay.
const DefaultBinding = "Ctrl+Alt+Shift+Space"

var modifierByName = map[string]Modifier{
	"CTRL":    ModControl,
	"CONTROL": ModControl,
	"SHIFT":   ModShift,
	"ALT":     ModAlt,
	"WIN":     ModWin,
	"SUPER":   ModWin,
}

// modifierOrder fixes the order used for normalized names.
var modifierOrder = []Modifier{ModControl, ModAlt, ModShift, ModWin}

var keyByName = map[string]VKey{
	"SPACE":  vkSpace,
	"TAB":    vkTab,
	"ENTER":  vkReturn,
	"RETURN": vkReturn,
	"ESC":    vkEscape,
	"ESCAPE": vkEscape,
	"DELETE": vkDelete,
	"LEFT":   vkLeft,
	"RIGHT":  vkRight,
	"UP":     vkUp,
	"DOWN":   vkDown,
}

// Binding is a parsed global hotkey. Construct it with ParseBinding.
type Binding struct {
	modifiers  Modifier
	key        VKey
	normalized string
}

func (b Binding) Modifiers() Modifier { return b.modifiers }

func (b Binding) Key() VKey { return b.key }

func (b Binding) String() string { return b.normalized }

// toggleModifierCount is how many modifiers the toggle hotkey combines.
const toggleModifierCount = 3

// Validate requires three distinct modifiers plus one key.
func (b Binding) Validate() error {
	if b.key == 0 {
		return fmt.Errorf("hotkey has no key")
	}
	if n := bits.OnesCount32(uint32(b.modifiers &^ ModNoRepeat)); n != toggleModifierCount {
		return fmt.Errorf("hotkey %q must combine exactly %d modifiers, got %d", b.normalized, toggleModifierCount, n)
	}
	return nil
}

// MustParseBinding is ParseBinding for compile-time constants.
func MustParseBinding(spec string) Binding {
	b, err := ParseBinding(spec)
	if err != nil {
		panic(err)
	}
	return b
}

// ParseBinding parses a binding like "Ctrl+Alt+Shift+Space".
func ParseBinding(spec string) (Binding, error) {
	raw := strings.TrimSpace(spec)
	if raw == "" {
		return Binding{}, fmt.Errorf("hotkey spec is empty")
	}

	parts := strings.Split(raw, "+")
	if len(parts) < 2 {
		return Binding{}, fmt.Errorf("hotkey must include modifiers and key: %s", raw)
	}

	var modifiers Modifier
	for _, token := range parts[:len(parts)-1] {
		name := strings.ToUpper(strings.TrimSpace(token))
		mod, ok := modifierByName[name]
		if !ok {
			return Binding{}, fmt.Errorf("unknown modifier %q in hotkey %q", token, raw)
		}
		if modifiers&mod != 0 {
			return Binding{}, fmt.Errorf("duplicate modifier %q in hotkey %q", token, raw)
		}
		modifiers |= mod
	}

	key, keyName, err := parseKey(parts[len(parts)-1])
	if err != nil {
		return Binding{}, err
	}

	names := make([]string, 0, len(modifierOrder)+1)
	for _, mod := range modifierOrder {
		if modifiers&mod != 0 {
			names = append(names, modifierName(mod))
		}
	}
	names = append(names, keyName)

	return Binding{
		modifiers:  modifiers,
		key:        key,
		normalized: strings.Join(names, "+"),
	}, nil
}

func parseKey(raw string) (VKey, string, error) {
	token := strings.ToUpper(strings.TrimSpace(raw))
	if token == "" {
		return 0, "", fmt.Errorf("missing hotkey key token")
	}

	if key, ok := keyByName[token]; ok {
		return key, token, nil
	}

	if len(token) >= 2 && token[0] == 'F' {
		if n, err := strconv.Atoi(token[1:]); err == nil && n >= 1 && n <= 24 {
			return vkF1 + VKey(n-1), token, nil
		}
	}

	if len(token) == 1 {
		ch := token[0]
		switch {
		case ch >= 'A' && ch <= 'Z', ch >= '0' && ch <= '9':
			return VKey(ch), token, nil
		case ch == '`':
			return vkOem3, "`", nil
		}
	}

	switch token {
	case "BACKQUOTE", "GRAVE":
		return vkOem3, "`", nil
	}

	if strings.HasPrefix(token, "0X") {
		value, err := strconv.ParseUint(token[2:], 16, 8)
		if err != nil {
			return 0, "", fmt.Errorf("invalid hex key %q", raw)
		}
		if value == 0 {
			return 0, "", fmt.Errorf("key code 0x00 is not a valid virtual key")
		}
		return VKey(value), token, nil
	}

	return 0, "", fmt.Errorf("unknown key %q in hotkey spec", raw)
}

func modifierName(mod Modifier) string {
	switch mod {
	case ModControl:
		return "Ctrl"
	case ModAlt:
		return "Alt"
	case ModShift:
		return "Shift"
	case ModWin:
		return "Win"
	default:
		return "Mod"
	}
}
