package decl

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsimple"
	"github.com/zclconf/go-cty/cty"
	"gopkg.in/yaml.v3"
)

// EvalContext returns the HCL evaluation context used for declaration files.
func EvalContext() *hcl.EvalContext {
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"big":    cty.StringVal("big"),
			"little": cty.StringVal("little"),
			"native": cty.StringVal("native"),
			"nul":    cty.StringVal("\x00"),
		},
	}
}

// ParseYAML decodes a YAML declaration file. Unknown keys are rejected.
func ParseYAML(data []byte) (*File, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse declarations: %w", err)
	}
	return &f, nil
}

// ParseHCL decodes an HCL declaration file. filename is used in
// diagnostics and must end in .hcl.
func ParseHCL(filename string, data []byte) (*File, error) {
	var f File
	if err := hclsimple.Decode(filename, data, EvalContext(), &f); err != nil {
		return nil, fmt.Errorf("failed to parse declarations: %w", err)
	}
	return &f, nil
}

// Parse picks the format from the file extension: .hcl for HCL, .yaml or
// .yml for YAML.
func Parse(filename string, data []byte) (*File, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".hcl":
		return ParseHCL(filename, data)
	case ".yaml", ".yml":
		return ParseYAML(data)
	default:
		return nil, fmt.Errorf("unsupported declaration file %q: expected .hcl, .yaml or .yml", filename)
	}
}

// LoadFile reads, parses and compiles a declaration file.
func LoadFile(path string, opts ...Option) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read declarations: %w", err)
	}
	f, err := Parse(path, data)
	if err != nil {
		return nil, err
	}
	return Compile(f, opts...)
}

// Save writes f as YAML.
func (f *File) Save(path string) error {
	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("failed to marshal declarations: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write declarations: %w", err)
	}
	return nil
}
