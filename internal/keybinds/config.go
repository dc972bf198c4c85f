package keybinds

import "fmt"

// Config maps context -> key -> action. It is the "keybinds" section of the config file.
type Config map[string]map[string]string

// ApplyConfig applies user configuration to a registry.
// User bindings override default bindings.
func ApplyConfig(registry *Registry, config Config) error {
	for contextName, bindings := range config {
		context := Context(contextName)
		if !KnownContexts[context] {
			return fmt.Errorf("unknown keybind context %q", contextName)
		}
		for key, actionStr := range bindings {
			if err := ValidateKey(key); err != nil {
				return fmt.Errorf("context %s: %w", contextName, err)
			}
			if err := ValidateAction(actionStr); err != nil {
				return fmt.Errorf("context %s, key %s: %w", contextName, key, err)
			}
			registry.Register(context, key, Action(actionStr))
		}
	}
	return nil
}

// LoadOrDefault returns the default registry with overrides applied
func LoadOrDefault(config Config) (*Registry, error) {
	registry := NewDefaultRegistry()
	if len(config) == 0 {
		return registry, nil
	}

	if err := ApplyConfig(registry, config); err != nil {
		return nil, fmt.Errorf("failed to apply keybinds config: %w", err)
	}
	return registry, nil
}
