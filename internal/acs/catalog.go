// Package acs holds the American Community Survey catalog: which source
// extracts exist and which fact tables are cut from each of them.
package acs

import (
	"os"
	"sort"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/census-tidy/internal/reshape"
)

// Source is a family of yearly extract files, e.g. education_2023.csv.
type Source struct {
	Name string
	// Pattern is a glob on the base name, without extension.
	Pattern     string
	LabelColumn string
}

// Catalog is the set of sources and the facts built from them.
type Catalog struct {
	Sources []Source
	Facts   []reshape.FactSpec
}

// Fact returns the named fact.
func (c *Catalog) Fact(name string) (reshape.FactSpec, bool) {
	for _, f := range c.Facts {
		if f.Name == name {
			return f, true
		}
	}
	return reshape.FactSpec{}, false
}

// Source returns the named source.
func (c *Catalog) Source(name string) (Source, bool) {
	for _, s := range c.Sources {
		if s.Name == name {
			return s, true
		}
	}
	return Source{}, false
}

// FactNames returns fact names in catalog order.
func (c *Catalog) FactNames() []string {
	out := make([]string, len(c.Facts))
	for i, f := range c.Facts {
		out[i] = f.Name
	}
	return out
}

// Validate checks every fact and that each fact's source exists.
func (c *Catalog) Validate() error {
	seen := make(map[string]bool, len(c.Facts))
	for _, f := range c.Facts {
		if err := f.Validate(); err != nil {
			return eris.Wrap(err, "acs: invalid catalog")
		}
		if seen[f.Name] {
			return eris.Errorf("acs: fact %s defined twice", f.Name)
		}
		seen[f.Name] = true
		if _, ok := c.Source(f.Source); !ok {
			return eris.Errorf("acs: fact %s uses unknown source %q", f.Name, f.Source)
		}
	}
	for _, s := range c.Sources {
		if s.Pattern == "" {
			return eris.Errorf("acs: source %s has no pattern", s.Name)
		}
	}
	return nil
}

type catalogFile struct {
	Sources []sourceFile `yaml:"sources"`
	Facts   []factFile   `yaml:"facts"`
}

type sourceFile struct {
	Name        string `yaml:"name"`
	Pattern     string `yaml:"pattern"`
	LabelColumn string `yaml:"label_column"`
}

type factFile struct {
	Name           string            `yaml:"name"`
	Source         string            `yaml:"source"`
	Columns        []columnFile      `yaml:"columns"`
	Key            []string          `yaml:"key"`
	Partition      string            `yaml:"partition"`
	Roles          rolesFile         `yaml:"roles"`
	Vocabulary     map[string]string `yaml:"vocabulary"`
	SectionHeaders []string          `yaml:"section_headers"`
	GroupHeaders   map[string]string `yaml:"group_headers"`
	Scope          []string          `yaml:"scope"`
	Entities       []string          `yaml:"entities"`
	RequireContext bool              `yaml:"require_context"`
	Dedupe         bool              `yaml:"dedupe"`
}

type columnFile struct {
	Name string `yaml:"name"`
	Kind string `yaml:"kind"`
}

type rolesFile struct {
	Dimension string `yaml:"dimension"`
	Partition string `yaml:"partition"`
	Entity    string `yaml:"entity"`
	Context   string `yaml:"context"`
}

// LoadCatalog reads a catalog from a YAML file.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "acs: read catalog %s", path)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes and validates a YAML catalog.
func ParseCatalog(data []byte) (*Catalog, error) {
	var wrapper struct {
		Catalog catalogFile `yaml:"catalog"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return nil, eris.Wrap(err, "acs: parse catalog")
	}

	cat := &Catalog{}
	for _, s := range wrapper.Catalog.Sources {
		cat.Sources = append(cat.Sources, Source(s))
	}
	for _, f := range wrapper.Catalog.Facts {
		spec, err := f.spec()
		if err != nil {
			return nil, err
		}
		cat.Facts = append(cat.Facts, spec)
	}

	if err := cat.Validate(); err != nil {
		return nil, err
	}
	return cat, nil
}

func (f factFile) spec() (reshape.FactSpec, error) {
	cols := make([]reshape.Column, 0, len(f.Columns))
	for _, c := range f.Columns {
		kind, err := ParseKind(c.Kind)
		if err != nil {
			return reshape.FactSpec{}, eris.Wrapf(err, "acs: fact %s column %s", f.Name, c.Name)
		}
		cols = append(cols, reshape.Column{Name: c.Name, Kind: kind})
	}

	return reshape.FactSpec{
		Name:   f.Name,
		Source: f.Source,
		Schema: reshape.Schema{
			Name:      f.Name,
			Columns:   cols,
			Key:       f.Key,
			Partition: f.Partition,
		},
		Roles:          reshape.Roles(f.Roles),
		Vocabulary:     reshape.NewVocabulary(f.Vocabulary),
		SectionHeaders: f.SectionHeaders,
		GroupHeaders:   f.GroupHeaders,
		Scope:          f.Scope,
		Entities:       f.Entities,
		RequireContext: f.RequireContext,
		Dedupe:         f.Dedupe,
	}, nil
}

var kinds = map[string]reshape.Kind{
	"text":    reshape.KindText,
	"year":    reshape.KindYear,
	"count":   reshape.KindCount,
	"percent": reshape.KindPercent,
	"amount":  reshape.KindAmount,
}

// ParseKind parses a column kind name. Empty means text.
func ParseKind(s string) (reshape.Kind, error) {
	if s == "" {
		return reshape.KindText, nil
	}
	k, ok := kinds[s]
	if !ok {
		names := make([]string, 0, len(kinds))
		for n := range kinds {
			names = append(names, n)
		}
		sort.Strings(names)
		return 0, eris.Errorf("acs: unknown column kind %q (want one of %v)", s, names)
	}
	return k, nil
}
