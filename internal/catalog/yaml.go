package catalog

import (
	"bytes"
	"fmt"
	"io/fs"
	"path"
	"sort"

	"gopkg.in/yaml.v3"

	"cnmaturity/internal/model"
)

// ParseModule decodes one YAML question module.
// Unknown fields are rejected so typos surface at startup.
func ParseModule(name string, data []byte) (model.QuestionModule, error) {
	var m model.QuestionModule
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		return model.QuestionModule{}, fmt.Errorf("parse module %s: %w", name, err)
	}
	if m.Name == "" {
		m.Name = name
	}
	return m, nil
}

// ReadModules parses every *.yaml file under dir in fsys.
// Modules are returned sorted by their order field, then by name.
func ReadModules(fsys fs.FS, dir string) ([]model.QuestionModule, error) {
	matches, err := fs.Glob(fsys, path.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no question modules in %s", dir)
	}

	modules := make([]model.QuestionModule, 0, len(matches))
	for _, p := range matches {
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("read module %s: %w", p, err)
		}
		m, err := ParseModule(path.Base(p), data)
		if err != nil {
			return nil, err
		}
		modules = append(modules, m)
	}
	SortModules(modules)
	return modules, nil
}

// SortModules orders modules by their order field, breaking ties by name
func SortModules(modules []model.QuestionModule) {
	sort.SliceStable(modules, func(i, j int) bool {
		if modules[i].Order != modules[j].Order {
			return modules[i].Order < modules[j].Order
		}
		return modules[i].Name < modules[j].Name
	})
}
