package keymap

import (
	"slices"
	"strings"
)

// Resolver maps key strings to actions. When two bindings claim the same
// key, the first one wins.
type Resolver struct {
	bindings []Binding
	actions  map[string]Action
	keys     map[Action][]string
}

// HelpEntry is one line of the help view.
type HelpEntry struct {
	Keys        string
	Description string
}

// NewResolver creates a resolver from bindings.
func NewResolver(bindings []Binding) *Resolver {
	r := &Resolver{
		bindings: bindings,
		actions:  make(map[string]Action),
		keys:     make(map[Action][]string),
	}
	for _, b := range bindings {
		for _, key := range b.Keys {
			if _, taken := r.actions[key]; !taken {
				r.actions[key] = b.Action
			}
			if !slices.Contains(r.keys[b.Action], key) {
				r.keys[b.Action] = append(r.keys[b.Action], key)
			}
		}
	}
	return r
}

// Resolve returns the action bound to key, or "" if there is none.
func (r *Resolver) Resolve(key string) Action {
	return r.actions[key]
}

// KeysFor returns the keys bound to action, in binding order.
func (r *Resolver) KeysFor(action Action) []string {
	return r.keys[action]
}

// Help lists the bindings of the given contexts, in context order. Each
// action appears once.
func (r *Resolver) Help(contexts ...string) []HelpEntry {
	var entries []HelpEntry
	var seen []Action
	for _, ctx := range contexts {
		for _, b := range r.bindings {
			if b.Context != ctx || slices.Contains(seen, b.Action) {
				continue
			}
			seen = append(seen, b.Action)
			names := make([]string, 0, len(r.keys[b.Action]))
			for _, k := range r.keys[b.Action] {
				names = append(names, DisplayKey(k))
			}
			entries = append(entries, HelpEntry{
				Keys:        strings.Join(names, "/"),
				Description: b.Description,
			})
		}
	}
	return entries
}

// DisplayKey returns the name shown for key in help text.
func DisplayKey(key string) string {
	if key == " " {
		return "space"
	}
	return key
}
