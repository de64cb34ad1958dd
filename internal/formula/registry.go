package formula

import "sort"

// Default is used when a request or the config names no variant.
const Default = "canonical"

var registry = map[string]Variant{
	"canonical":  Canonical{},
	"retirement": Retirement{},
	"target":     Target{},
}

// Get resolves a variant by name; the empty name means Default.
func Get(name string) (Variant, bool) {
	if name == "" {
		name = Default
	}
	v, ok := registry[name]
	return v, ok
}

func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
