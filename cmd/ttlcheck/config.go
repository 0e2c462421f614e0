package main

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/krux02/ttl/stubhost"
)

// seedConfig is the yaml shape a --config file seeds a stubhost.Scope
// from: the named types an annotation is allowed to resolve, which of
// them are templatizable, and the declared type of program symbols
// typeOfVar can see.
type seedConfig struct {
	Types []seedType        `yaml:"types"`
	Slots map[string]string `yaml:"slots"`
}

type seedType struct {
	Name          string `yaml:"name"`
	Templatizable bool   `yaml:"templatizable,omitempty"`
}

func loadScope(path string) (*stubhost.Scope, error) {
	scope := stubhost.NewScope()
	if path == "" {
		return scope, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading config %s", path)
	}
	var cfg seedConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrapf(err, "parsing config %s", path)
	}
	for _, t := range cfg.Types {
		scope.DefineType(t.Name, t.Templatizable)
	}
	for slotName, typeName := range cfg.Slots {
		resolved, ok := stubhost.NewHost(scope).Resolve(typeName)
		if !ok {
			return nil, errors.Errorf("config: slot %q refers to undeclared type %q", slotName, typeName)
		}
		scope.DefineSlot(slotName, resolved)
	}
	return scope, nil
}
