package templates

import (
	"bufio"
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
	"sync"
)

// Built-in template names.
const (
	General     = "general"
	Security    = "security"
	Performance = "performance"
)

// DefaultName is the template used when a name cannot be resolved.
const DefaultName = General

//go:embed review_templates/*.md
var builtinFS embed.FS

// Section is one checklist grouping under a heading.
type Section struct {
	Heading string   `json:"heading" yaml:"heading"`
	Items   []string `json:"items" yaml:"items"`
}

// Template is a named checklist skeleton used to structure a report.
// Templates never affect detection.
type Template struct {
	Name     string    `json:"name" yaml:"name"`
	Title    string    `json:"title,omitempty" yaml:"title,omitempty"`
	Sections []Section `json:"sections" yaml:"sections"`
}

// ItemCount returns the number of checklist items across all sections.
func (t *Template) ItemCount() int {
	n := 0
	for _, s := range t.Sections {
		n += len(s.Items)
	}
	return n
}

// Parse reads a markdown checklist document. The first "# " line is the
// title, "## " lines start sections and "- [ ] " lines are items. Items before
// the first heading go into an unnamed section. Everything else is ignored.
func Parse(name string, data []byte) (*Template, error) {
	t := &Template{Name: name}
	var cur *Section

	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		switch {
		case strings.HasPrefix(line, "## "):
			t.Sections = append(t.Sections, Section{Heading: strings.TrimSpace(line[3:])})
			cur = &t.Sections[len(t.Sections)-1]
		case strings.HasPrefix(line, "# "):
			if t.Title == "" {
				t.Title = strings.TrimSpace(line[2:])
			}
		case strings.HasPrefix(line, "- [ ] "):
			item := strings.TrimSpace(line[6:])
			if item == "" {
				continue
			}
			if cur == nil {
				t.Sections = append(t.Sections, Section{})
				cur = &t.Sections[len(t.Sections)-1]
			}
			cur.Items = append(cur.Items, item)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("parse template %s: %w", name, err)
	}
	return t, nil
}

// LoadDir loads every *.md file in dir as a template named after the file.
// Templates are returned sorted by name.
func LoadDir(dir string) ([]*Template, error) {
	return loadFS(os.DirFS(dir), ".")
}

func loadFS(fsys fs.FS, dir string) ([]*Template, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read template dir: %w", err)
	}

	var out []*Template
	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != ".md" {
			continue
		}
		data, err := fs.ReadFile(fsys, path.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("read template %s: %w", e.Name(), err)
		}
		name := strings.ToLower(strings.TrimSuffix(e.Name(), ".md"))
		t, err := Parse(name, data)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Registry maps template names to templates. It is read-only once built.
type Registry struct {
	byName map[string]*Template
}

// NewRegistry builds a registry. Later templates replace earlier ones with
// the same name.
func NewRegistry(tmpls ...*Template) *Registry {
	r := &Registry{byName: make(map[string]*Template, len(tmpls))}
	for _, t := range tmpls {
		if t == nil {
			continue
		}
		r.byName[strings.ToLower(t.Name)] = t
	}
	return r
}

var builtin = sync.OnceValue(func() *Registry {
	tmpls, err := loadFS(builtinFS, "review_templates")
	if err != nil {
		panic("templates: embedded templates: " + err.Error())
	}
	return NewRegistry(tmpls...)
})

// Builtin returns the registry of embedded templates.
func Builtin() *Registry {
	return builtin()
}

// WithDir returns a registry holding r's templates plus those in dir, with
// dir taking precedence. An empty dir returns r.
func (r *Registry) WithDir(dir string) (*Registry, error) {
	if dir == "" {
		return r, nil
	}
	extra, err := LoadDir(dir)
	if err != nil {
		return nil, err
	}
	all := make([]*Template, 0, len(r.byName)+len(extra))
	for _, name := range r.Names() {
		all = append(all, r.byName[name])
	}
	return NewRegistry(append(all, extra...)...), nil
}

// Get looks up a template by name (case-insensitive).
func (r *Registry) Get(name string) (*Template, bool) {
	t, ok := r.byName[strings.ToLower(strings.TrimSpace(name))]
	return t, ok
}

// Resolve returns the named template, falling back to the general template
// for unknown names. It never returns nil.
func (r *Registry) Resolve(name string) *Template {
	if t, ok := r.Get(name); ok {
		return t
	}
	if t, ok := r.byName[DefaultName]; ok {
		return t
	}
	return &Template{Name: DefaultName}
}

// Names returns the template names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.byName))
	for n := range r.byName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Resolve resolves name against the built-in registry.
func Resolve(name string) *Template {
	return Builtin().Resolve(name)
}
