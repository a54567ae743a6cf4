package config

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"pixelforge/internal/algorithms"
	"pixelforge/internal/pixbuf"
)

// Step names one operation. Params stay as a raw node until the operation
// is known, so they decode straight into its parameter record.
type Step struct {
	Op     string    `yaml:"op"`
	Params yaml.Node `yaml:"params"`
}

type Recipe struct {
	Name  string `yaml:"name"`
	Steps []Step `yaml:"steps"`
}

func LoadRecipe(path string) (*Recipe, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open recipe: %w", err)
	}
	defer f.Close()
	return ParseRecipe(f)
}

func ParseRecipe(r io.Reader) (*Recipe, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read recipe: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var rec Recipe
	if err := dec.Decode(&rec); err != nil {
		return nil, fmt.Errorf("parse recipe: %v: %w", err, pixbuf.ErrInvalidInput)
	}
	if len(rec.Steps) == 0 {
		return nil, pixbuf.Invalid("recipe", "steps", 0, "recipe has no steps")
	}
	for i, s := range rec.Steps {
		if s.Op == "" {
			return nil, pixbuf.Invalid("recipe", fmt.Sprintf("steps[%d].op", i), "", "operation name is empty")
		}
	}
	return &rec, nil
}

// Operations resolves every step against the registry.
func (r *Recipe) Operations(m *algorithms.Manager) ([]algorithms.Operation, error) {
	ops := make([]algorithms.Operation, 0, len(r.Steps))
	for i := range r.Steps {
		op, err := m.DecodeNode(r.Steps[i].Op, &r.Steps[i].Params)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
		ops = append(ops, op)
	}
	return ops, nil
}
