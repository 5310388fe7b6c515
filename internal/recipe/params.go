package recipe

import (
	"fmt"
	"maps"
	"os"

	"gopkg.in/yaml.v3"
)

// Build-time parameters supplied per invocation.
//
// Values are strings; boolean parameters are carried as "true" or "false".
// The set is treated as immutable once rendering begins.
type Params map[string]string

// Looks up a parameter by name.
func (p Params) Lookup(name string) (string, bool) {
	v, ok := p[name]
	return v, ok
}

// Returns a new parameter set with overrides layered on top of p.
//
// Neither input is modified. Keys present in both take the override value.
func (p Params) Merge(overrides Params) Params {
	merged := make(Params, len(p)+len(overrides))
	maps.Copy(merged, p)
	maps.Copy(merged, overrides)
	return merged
}

// Reads a parameter set from a YAML file of scalar key/value pairs.
//
// Booleans and numbers are stringified, so "proxy: true" yields the
// parameter value "true".
func LoadParams(path string) (Params, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecipe, err)
	}

	raw := make(map[string]any)
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: parameter file %s: %v", ErrInvalidRecipe, path, err)
	}

	params := make(Params, len(raw))
	for k, v := range raw {
		params[k] = fmt.Sprint(v)
	}
	return params, nil
}
