package flow

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/futig/garage-bot/internal/entity"
)

//go:embed variants/*.yaml
var builtin embed.FS

// Registry holds the known flow variants by name
type Registry struct {
	variants map[string]*Variant
}

// LoadRegistry reads the built-in variants and, when dir is set, the *.yaml
// files of dir. A file in dir replaces a built-in variant of the same name.
func LoadRegistry(dir string) (*Registry, error) {
	r := &Registry{variants: make(map[string]*Variant)}

	if err := r.loadFS(builtin, "variants"); err != nil {
		return nil, fmt.Errorf("load built-in variants: %w", err)
	}

	if dir != "" {
		if err := r.loadFS(os.DirFS(dir), "."); err != nil {
			return nil, fmt.Errorf("load variants from %s: %w", dir, err)
		}
	}

	return r, nil
}

func (r *Registry) loadFS(fsys fs.FS, root string) error {
	matches, err := fs.Glob(fsys, filepath.ToSlash(filepath.Join(root, "*.yaml")))
	if err != nil {
		return err
	}

	for _, path := range matches {
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return err
		}

		v, err := ParseVariant(data)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}

		r.variants[v.Name] = v
	}

	return nil
}

// ParseVariant decodes and validates a single variant document
func ParseVariant(data []byte) (*Variant, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var v Variant
	if err := dec.Decode(&v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty variant document")
		}
		return nil, err
	}

	if err := v.Validate(); err != nil {
		return nil, err
	}

	return &v, nil
}

// Get returns a variant by name
func (r *Registry) Get(name string) (*Variant, error) {
	v, ok := r.variants[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", entity.ErrUnknownVariant, name)
	}
	return v, nil
}

// Names lists the registered variants in sorted order
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.variants))
	for name := range r.variants {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
