// Package input provides InputSink implementations: OS injection through
// robotgo and an in-memory recorder.
package input

import (
	"fmt"
	"strings"

	"github.com/ayusman/mudra/internal/control"
)

// knownKeys are the robotgo key names accepted in bindings.
var knownKeys = map[string]bool{
	"space": true, "enter": true, "tab": true, "esc": true, "escape": true,
	"backspace": true, "delete": true,
	"ctrl": true, "lctrl": true, "rctrl": true, "control": true,
	"shift": true, "lshift": true, "rshift": true,
	"alt": true, "lalt": true, "ralt": true,
	"cmd": true, "command": true,
	"up": true, "down": true, "left": true, "right": true,
	"home": true, "end": true, "pageup": true, "pagedown": true, "insert": true,
}

func init() {
	for c := 'a'; c <= 'z'; c++ {
		knownKeys[string(c)] = true
	}
	for c := '0'; c <= '9'; c++ {
		knownKeys[string(c)] = true
	}
	for i := 1; i <= 12; i++ {
		knownKeys[fmt.Sprintf("f%d", i)] = true
	}
}

// ParseKey normalizes a key name and checks that robotgo knows it.
func ParseKey(name string) (control.Key, error) {
	k := strings.ToLower(strings.TrimSpace(name))
	if !knownKeys[k] {
		return "", fmt.Errorf("unsupported key %q", name)
	}
	return control.Key(k), nil
}
