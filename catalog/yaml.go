package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"
)

type yamlMethod struct {
	Name        string         `yaml:"name"`
	Request     bool           `yaml:"request"`
	Receive     bool           `yaml:"receive"`
	ResultEvent string         `yaml:"result_event"`
	FailedEvent string         `yaml:"failed_event"`
	Platforms   []string       `yaml:"platforms"`
	PropsSchema map[string]any `yaml:"props_schema"`
}

type yamlFile struct {
	Methods []yamlMethod `yaml:"methods"`
}

// Parse reads a catalogue from YAML. Each entry mirrors the Method
// descriptor; props_schema is an inline OpenAPI schema.
func Parse(r io.Reader) (*Catalog, error) {
	var f yamlFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("catalog: decode: %w", err)
	}
	methods := make([]Method, 0, len(f.Methods))
	for _, ym := range f.Methods {
		if ym.Name == "" {
			return nil, fmt.Errorf("catalog: method with empty name")
		}
		m := Method{
			Name:        ym.Name,
			Request:     ym.Request,
			Receive:     ym.Receive,
			ResultEvent: ym.ResultEvent,
			FailedEvent: ym.FailedEvent,
			Platforms:   ym.Platforms,
		}
		if ym.PropsSchema != nil {
			b, err := json.Marshal(ym.PropsSchema)
			if err != nil {
				return nil, fmt.Errorf("catalog: %s: props_schema: %w", ym.Name, err)
			}
			s := &openapi3.Schema{}
			if err := s.UnmarshalJSON(b); err != nil {
				return nil, fmt.Errorf("catalog: %s: props_schema: %w", ym.Name, err)
			}
			m.PropsSchema = s
		}
		methods = append(methods, m)
	}
	return New(methods...), nil
}

// LoadFile reads a catalogue from a YAML file on disk.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return Parse(f)
}
