package config

import (
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Get returns the value at a dotted key such as "api.results", formatted for display.
func (c *Config) Get(key string) (string, error) {
	tree, err := c.tree()
	if err != nil {
		return "", err
	}
	section, field, err := splitKey(key)
	if err != nil {
		return "", err
	}
	fields, ok := tree[section].(map[string]any)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	v, ok := fields[field]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return fmt.Sprint(v), nil
}

// Set assigns value to a dotted key. The value is parsed as YAML so numbers,
// booleans and durations keep their types. The result is validated.
func (c *Config) Set(key, value string) error {
	tree, err := c.tree()
	if err != nil {
		return err
	}
	section, field, err := splitKey(key)
	if err != nil {
		return err
	}
	fields, ok := tree[section].(map[string]any)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	if _, ok := fields[field]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}

	var parsed any
	if err := yaml.Unmarshal([]byte(value), &parsed); err != nil {
		parsed = value
	}
	fields[field] = parsed

	data, err := yaml.Marshal(tree)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	next := *c
	if err := yaml.Unmarshal(data, &next); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidConfig, key, err)
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*c = next
	return nil
}

// Keys returns every dotted key with its current value, sorted by key.
func (c *Config) Keys() ([][2]string, error) {
	tree, err := c.tree()
	if err != nil {
		return nil, err
	}
	var out [][2]string
	for section, v := range tree {
		fields, ok := v.(map[string]any)
		if !ok {
			continue
		}
		for field, fv := range fields {
			out = append(out, [2]string{section + "." + field, fmt.Sprint(fv)})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i][0] < out[j][0] })
	return out, nil
}

func (c *Config) tree() (map[string]any, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	return tree, nil
}

func splitKey(key string) (string, string, error) {
	section, field, ok := strings.Cut(key, ".")
	if !ok || section == "" || field == "" {
		return "", "", fmt.Errorf("%w: %q (expected section.field)", ErrUnknownKey, key)
	}
	return section, field, nil
}
