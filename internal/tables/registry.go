package tables

import (
	"fmt"
	"sort"
	"sync"

	"github.com/JonMunkholm/quotedesk/internal/datatable"
)

// Table groups.
const (
	GroupEntity = "entity"
	GroupReport = "report"
	GroupSystem = "system"
)

// Info describes a registered table.
type Info struct {
	Name  string `json:"name"`
	Group string `json:"group"`
	// Label is the translation id of the table title.
	Label string `json:"label"`
}

// Factory builds a request-scoped table instance.
type Factory func(d Deps) (*datatable.Table, error)

// Definition is a registry entry.
type Definition struct {
	Info    Info
	Factory Factory
}

var (
	registry   = make(map[string]Definition)
	registryMu sync.RWMutex
)

// Register adds a table definition to the registry.
// Panics if a table with the same name is already registered.
func Register(def Definition) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[def.Info.Name]; exists {
		panic(fmt.Sprintf("table already registered: %s", def.Info.Name))
	}
	if def.Factory == nil {
		panic(fmt.Sprintf("table without factory: %s", def.Info.Name))
	}
	registry[def.Info.Name] = def
}

// Get returns a table definition by name.
func Get(name string) (Definition, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	def, ok := registry[name]
	return def, ok
}

// All returns all registered definitions, sorted by group then name.
func All() []Definition {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]Definition, 0, len(registry))
	for _, def := range registry {
		result = append(result, def)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Info.Group != result[j].Info.Group {
			return result[i].Info.Group < result[j].Info.Group
		}
		return result[i].Info.Name < result[j].Info.Name
	})
	return result
}

// ByGroup returns the definitions of group, sorted by name.
func ByGroup(group string) []Definition {
	registryMu.RLock()
	defer registryMu.RUnlock()

	var result []Definition
	for _, def := range registry {
		if def.Info.Group == group {
			result = append(result, def)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Info.Name < result[j].Info.Name
	})
	return result
}

// Groups returns all unique group names, sorted.
func Groups() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	seen := make(map[string]bool)
	for _, def := range registry {
		seen[def.Info.Group] = true
	}

	groups := make([]string, 0, len(seen))
	for g := range seen {
		groups = append(groups, g)
	}
	sort.Strings(groups)
	return groups
}

// Names returns the registered table names, sorted.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Create builds a fresh instance of the named table.
func Create(name string, d Deps) (*datatable.Table, error) {
	def, ok := Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", datatable.ErrUnknownTable, name)
	}
	return def.Factory(d)
}

// Clear removes all registered tables.
// Primarily useful for testing.
func Clear() {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = make(map[string]Definition)
}
