package settings

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Library maps settings names to Settings.
type Library struct {
	byName map[string]*Settings
}

// NewLibrary returns a library holding the given settings.
func NewLibrary(all ...*Settings) *Library {
	l := &Library{byName: make(map[string]*Settings)}
	for _, s := range all {
		l.Add(s)
	}
	return l
}

// Add stores s under its name, replacing any previous entry.
func (l *Library) Add(s *Settings) {
	if l.byName == nil {
		l.byName = make(map[string]*Settings)
	}
	l.byName[s.Name] = s
}

// Get returns the settings named name.
func (l *Library) Get(name string) (*Settings, error) {
	if l != nil {
		if s, ok := l.byName[name]; ok {
			return s, nil
		}
	}
	return nil, fmt.Errorf("settings: %q: %w", name, ErrNotFound)
}

// Names returns the stored names in sorted order.
func (l *Library) Names() []string {
	if l == nil {
		return nil
	}
	names := make([]string, 0, len(l.byName))
	for n := range l.byName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// file is the on-disk layout: a list of settings bundles.
type file struct {
	Settings []*Settings `yaml:"settings"`
}

// Load decodes a YAML settings document. Every bundle needs a unique,
// non-empty name.
func Load(r io.Reader) (*Library, error) {
	var f file
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("settings: parse: %w", err)
	}
	l := NewLibrary()
	for i, s := range f.Settings {
		if s == nil || s.Name == "" {
			return nil, fmt.Errorf("settings: bundle %d has no name", i)
		}
		if _, ok := l.byName[s.Name]; ok {
			return nil, fmt.Errorf("settings: duplicate bundle %q", s.Name)
		}
		l.Add(s)
	}
	return l, nil
}

// LoadFile reads a YAML settings document from path.
func LoadFile(path string) (*Library, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("settings: read %s: %w", path, err)
	}
	l, err := Load(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return l, nil
}

// Encode writes the library as a YAML settings document, bundles sorted by
// name.
func (l *Library) Encode(w io.Writer) error {
	var f file
	for _, n := range l.Names() {
		f.Settings = append(f.Settings, l.byName[n])
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&f); err != nil {
		return fmt.Errorf("settings: encode: %w", err)
	}
	return enc.Close()
}
