package heater

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// modelFile is the YAML layout of an extra-models file:
//
//	models:
//	  - id: zhimi.heater.mc2
//	    extends: zhimi.heater.za1
//	    properties: [hw_enable]
//	    props_per_request: 15
type modelFile struct {
	Models []modelFileEntry `yaml:"models"`
}

type modelFileEntry struct {
	ID                  string            `yaml:"id"`
	Extends             string            `yaml:"extends"`
	Properties          []string          `yaml:"properties"`
	TargetTemperature   *TemperatureRange `yaml:"target_temperature"`
	DelayOff            *DelayOffSpec     `yaml:"delay_off"`
	PropsPerRequest     int               `yaml:"props_per_request"`
	CountdownProperties []string          `yaml:"countdown_properties"`
}

// toSpec composes an entry on top of its base: the base model when extends
// is set, otherwise the common property list.
func (e modelFileEntry) toSpec(r *Registry) (ModelSpec, error) {
	spec := ModelSpec{ID: e.ID, Properties: composeProperties(commonProperties, nil)}
	if e.Extends != "" {
		base, ok := r.Lookup(e.Extends)
		if !ok {
			return ModelSpec{}, fmt.Errorf("model %s extends unknown model %s", e.ID, e.Extends)
		}
		spec = base
		spec.ID = e.ID
	}
	spec.Properties = composeProperties(spec.Properties, e.Properties)
	if e.TargetTemperature != nil {
		spec.TargetTemperature = *e.TargetTemperature
	}
	if e.DelayOff != nil {
		spec.DelayOff = *e.DelayOff
		if spec.DelayOff.Unit == "" {
			spec.DelayOff.Unit = DelayOffSeconds
		}
	}
	if e.PropsPerRequest > 0 {
		spec.PropsPerRequest = e.PropsPerRequest
	} else if e.Extends == "" {
		spec.PropsPerRequest = defaultPropsPerRequest
	}
	if len(e.CountdownProperties) > 0 {
		spec.CountdownProperties = e.CountdownProperties
	}
	return spec, nil
}

// LoadModels parses YAML model definitions and registers them in order, so
// an entry may extend one defined earlier in the same document.
func (r *Registry) LoadModels(data []byte) (int, error) {
	var f modelFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return 0, fmt.Errorf("parse models: %w", err)
	}
	for i, e := range f.Models {
		spec, err := e.toSpec(r)
		if err != nil {
			return i, err
		}
		if err := r.Register(spec); err != nil {
			return i, err
		}
	}
	return len(f.Models), nil
}

// LoadModelsFile reads and registers models from a YAML file.
func (r *Registry) LoadModelsFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", path, err)
	}
	n, err := r.LoadModels(data)
	if err != nil {
		return n, fmt.Errorf("%s: %w", path, err)
	}
	return n, nil
}
