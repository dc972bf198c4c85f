package keybinds

import (
	"fmt"
	"sort"
	"strings"
)

// reservedKeys must keep their default action
var reservedKeys = map[string]Action{
	"ctrl+c": ActionQuitForce,
}

// Warning is a non-fatal issue in a registry
type Warning struct {
	Context Context
	Key     string
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s in context '%s': %s", w.Key, w.Context, w.Message)
}

// Check reports reserved keys that were rebound and context bindings
// that shadow a different global binding
func (r *Registry) Check() []Warning {
	var warnings []Warning
	global := r.bindings[ContextGlobal]

	for context, bindings := range r.bindings {
		for key, action := range bindings {
			if want, ok := reservedKeys[key]; ok && action != want {
				warnings = append(warnings, Warning{context, key, "reserved key rebound (may cause issues)"})
			}
			if context == ContextGlobal {
				continue
			}
			if globalAction, ok := global[key]; ok && globalAction != action {
				warnings = append(warnings, Warning{context, key,
					fmt.Sprintf("shadows global binding (%s -> %s)", globalAction, action)})
			}
		}
	}

	sort.Slice(warnings, func(i, j int) bool {
		return warnings[i].String() < warnings[j].String()
	})
	return warnings
}

// ValidateKey checks if a key string is valid
func ValidateKey(key string) error {
	if key == "" {
		return fmt.Errorf("key cannot be empty")
	}

	for _, mod := range []string{"ctrl+", "alt+", "shift+", "super+"} {
		if key == mod {
			return fmt.Errorf("modifier without key: %s", key)
		}
	}

	if strings.ContainsAny(key, " \t") && key != " " {
		return fmt.Errorf("key must not contain whitespace: %q", key)
	}

	return nil
}

// ValidateAction checks if an action string names a known action
func ValidateAction(actionStr string) error {
	if actionStr == "" {
		return fmt.Errorf("action cannot be empty")
	}
	if !KnownActions[Action(actionStr)] {
		return fmt.Errorf("unknown action %q", actionStr)
	}
	return nil
}
