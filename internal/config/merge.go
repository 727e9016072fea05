package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Top-level YAML config key names used for shallow merge.
const (
	keyAPI     = "api"
	keyQuery   = "query"
	keyCache   = "cache"
	keyLogging = "logging"
	keyOutput  = "output"
	keyServer  = "server"
)

// knownTopLevelKeys lists the YAML keys that correspond to exported Config fields.
// Keys not in this list are silently ignored during merge.
//
//nolint:gochecknoglobals // Compile-time constant lookup table.
var knownTopLevelKeys = map[string]bool{
	keyAPI:     true,
	keyQuery:   true,
	keyCache:   true,
	keyLogging: true,
	keyOutput:  true,
	keyServer:  true,
}

// ShallowMergeYAML loads a YAML file and merges its top-level keys onto
// the target Config. Keys present in the overlay replace entire sections
// in the target. Keys absent in the overlay are left unchanged.
func ShallowMergeYAML(target *Config, overlayPath string) error {
	if target == nil {
		return errors.New("nil target *Config in ShallowMergeYAML")
	}

	data, err := os.ReadFile(overlayPath)
	if err != nil {
		return fmt.Errorf("reading overlay file %s: %w", overlayPath, err)
	}

	var overlay map[string]any
	if err = yaml.Unmarshal(data, &overlay); err != nil {
		return fmt.Errorf("parsing overlay YAML from %s: %w", overlayPath, err)
	}
	if len(overlay) == 0 {
		return nil
	}

	for key, value := range overlay {
		if !knownTopLevelKeys[key] {
			continue
		}

		sectionBytes, marshalErr := yaml.Marshal(value)
		if marshalErr != nil {
			return fmt.Errorf("re-marshalling overlay section %q: %w", key, marshalErr)
		}
		if err = unmarshalSection(target, key, sectionBytes); err != nil {
			return fmt.Errorf("applying overlay section %q: %w", key, err)
		}
	}

	return nil
}

// unmarshalSection decodes data into a fresh value of the section named key and
// replaces that section of target.
func unmarshalSection(target *Config, key string, data []byte) error {
	switch key {
	case keyAPI:
		return replaceSection(data, &target.API)
	case keyQuery:
		return replaceSection(data, &target.Query)
	case keyCache:
		return replaceSection(data, &target.Cache)
	case keyLogging:
		return replaceSection(data, &target.Logging)
	case keyOutput:
		return replaceSection(data, &target.Output)
	case keyServer:
		return replaceSection(data, &target.Server)
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
}

func replaceSection[S any](data []byte, dst *S) error {
	var v S
	if err := yaml.Unmarshal(data, &v); err != nil {
		return err
	}
	*dst = v
	return nil
}
