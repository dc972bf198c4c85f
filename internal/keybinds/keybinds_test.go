package keybinds

import (
	"strings"
	"testing"
)

func TestDefaultRegistry_Match(t *testing.T) {
	r := NewDefaultRegistry()

	tests := []struct {
		name    string
		context Context
		key     string
		want    Action
		found   bool
	}{
		{"global fallback", ContextResults, "ctrl+c", ActionQuitForce, true},
		{"input submit", ContextInput, "ctrl+s", ActionSubmit, true},
		{"input leaves plain keys alone", ContextInput, "e", "", false},
		{"results export", ContextResults, "e", ActionExportCSV, true},
		{"results xlsx", ContextResults, "E", ActionExportXLSX, true},
		{"dataset search", ContextDataset, "/", ActionSearch, true},
		{"confirm", ContextConfirm, "y", ActionConfirm, true},
		{"unbound", ContextLogin, "z", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := r.Match(tt.context, tt.key)
			if ok != tt.found || got != tt.want {
				t.Errorf("Match(%s, %q) = %q, %v; want %q, %v", tt.context, tt.key, got, ok, tt.want, tt.found)
			}
		})
	}
}

func TestRegistry_MatchMultiKey(t *testing.T) {
	r := NewDefaultRegistry()

	if _, complete, partial := r.MatchMultiKey(ContextResults, "g"); complete || !partial {
		t.Fatalf("first g: complete=%v partial=%v, want partial", complete, partial)
	}
	action, complete, _ := r.MatchMultiKey(ContextResults, "g")
	if !complete || action != ActionGoToTop {
		t.Fatalf("second g: got %q complete=%v, want go_to_top", action, complete)
	}

	r.MatchMultiKey(ContextResults, "g")
	if _, complete, _ := r.MatchMultiKey(ContextResults, "x"); complete {
		t.Error("g then x should not match")
	}

	if action, complete, _ := r.MatchMultiKey(ContextResults, "e"); !complete || action != ActionExportCSV {
		t.Errorf("single key: got %q complete=%v", action, complete)
	}
}

func TestRegistry_KeyString(t *testing.T) {
	r := NewDefaultRegistry()

	if got := r.KeyString(ContextInput, ActionSubmit); got != "ctrl+r/ctrl+s" {
		t.Errorf("KeyString(submit) = %q", got)
	}
	if got := r.KeyString(ContextInput, ActionDismiss); got != "ctrl+n" {
		t.Errorf("KeyString(dismiss) should fall back to global, got %q", got)
	}
	if got := r.KeyString(ContextLogin, ActionExportCSV); got != "unbound" {
		t.Errorf("KeyString(export in login) = %q", got)
	}
}

func TestRegistry_ListBindings(t *testing.T) {
	r := NewRegistry()
	r.Register(ContextGlobal, "ctrl+c", ActionQuitForce)
	r.Register(ContextResults, "q", ActionQuit)
	r.Register(ContextResults, "e", ActionExportCSV)

	got := r.ListBindings(ContextResults)
	if len(got) != 3 {
		t.Fatalf("got %d bindings, want 3", len(got))
	}
	if got[0].Key != "e" || got[1].Key != "q" || got[2].Context != ContextGlobal {
		t.Errorf("unexpected order: %+v", got)
	}
}

func TestApplyConfig(t *testing.T) {
	r, err := LoadOrDefault(Config{
		"results": {"y": "copy_keywords"},
	})
	if err != nil {
		t.Fatalf("LoadOrDefault: %v", err)
	}
	if action, _ := r.Match(ContextResults, "y"); action != ActionCopyKeywords {
		t.Errorf("override not applied, got %q", action)
	}
	if action, _ := r.Match(ContextResults, "e"); action != ActionExportCSV {
		t.Errorf("defaults lost, got %q", action)
	}
}

func TestApplyConfig_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		config Config
		errSub string
	}{
		{"unknown context", Config{"sidebar": {"x": "quit"}}, "unknown keybind context"},
		{"unknown action", Config{"results": {"x": "launch"}}, "unknown action"},
		{"empty key", Config{"results": {"": "quit"}}, "key cannot be empty"},
		{"bare modifier", Config{"results": {"ctrl+": "quit"}}, "modifier without key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadOrDefault(tt.config)
			if err == nil || !strings.Contains(err.Error(), tt.errSub) {
				t.Errorf("got %v, want error containing %q", err, tt.errSub)
			}
		})
	}
}

func TestRegistry_Check(t *testing.T) {
	if w := NewDefaultRegistry().Check(); len(w) != 0 {
		t.Errorf("default registry has warnings: %v", w)
	}

	r := NewDefaultRegistry()
	r.Register(ContextGlobal, "ctrl+c", ActionQuit)
	r.Register(ContextResults, "ctrl+n", ActionExportCSV)

	warnings := r.Check()
	if len(warnings) != 2 {
		t.Fatalf("got %d warnings, want 2: %v", len(warnings), warnings)
	}
	if !strings.Contains(warnings[0].Message, "reserved") && !strings.Contains(warnings[1].Message, "reserved") {
		t.Errorf("missing reserved key warning: %v", warnings)
	}
}
