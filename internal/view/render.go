// internal/view/render.go
//
// Central view engine: template lookup, func-map injection, and an LRU of
// parsed *template.Template* sets.
//
// Public helpers
// --------------
//   - RegisterSource – components hand over their embedded template FS.
//   - Render         – write rendered HTML to an http.ResponseWriter.
//   - RenderToString – return template.HTML (fragments, previews).
//
// Each component embeds its templates directory (go:embed) and registers it
// at init time.  All templates in a component's set are parsed together so
// sub-templates ({{ template "row" . }}) work out-of-the-box, and the parsed
// set is cached in a small LRU keyed by component and name.
//
// Style
// -----
// • Oxford commas, two spaces after periods.

package view

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"sync"

	"github.com/formrelayer/formrelayer/internal/cache"
)

//
// cache definitions
//

// CachePolicy hints how the caller wants this template cached.
type CachePolicy int

const (
	CacheDefault CachePolicy = iota // cache parsed sets
	CacheSkip                       // re-parse on every call (dev)
)

var (
	mu      sync.Mutex
	sources = map[string]fs.FS{}
	tmplLRU = cache.New(256)
)

//
// public helpers
//

// RegisterSource binds a component name to its template filesystem.  The FS
// must contain the *.html files at its root.
func RegisterSource(comp string, fsys fs.FS) {
	mu.Lock()
	sources[comp] = fsys
	mu.Unlock()
}

// Render executes the named template of a component and streams it to w.
func Render(w http.ResponseWriter, comp, name string, data any, policy CachePolicy) error {
	t, err := load(comp, name, policy)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return t.ExecuteTemplate(w, execName(t, name), data)
}

// RenderToString executes and returns HTML.  It mirrors Render, but writes
// to a buffer instead of w.
func RenderToString(comp, name string, data any) (template.HTML, error) {
	t, err := load(comp, name, CacheDefault)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, execName(t, name), data); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

//
// internal: load
//

// load finds and (if necessary) parses the template set for the given
// component and base name, obeying the provided cache policy.
func load(comp, name string, policy CachePolicy) (*template.Template, error) {
	key := comp + "::" + name

	mu.Lock()
	defer mu.Unlock()

	if policy != CacheSkip {
		if v, ok := tmplLRU.Get(key); ok {
			return v.(*template.Template), nil
		}
	}

	fsys, ok := sources[comp]
	if !ok {
		return nil, fmt.Errorf("view: no template source registered for component %q", comp)
	}

	t, err := template.New(name).Funcs(funcMap()).ParseFS(fsys, "*.html")
	if err != nil {
		return nil, err
	}

	if policy != CacheSkip {
		tmplLRU.Add(key, t)
	}
	return t, nil
}

//
// func-map and helpers
//

func funcMap() template.FuncMap {
	return template.FuncMap{
		"dict": dict,
		"safe": func(s string) template.HTML { return template.HTML(s) },
	}
}

// execName picks the template name to execute.
//
// Priority:
//  1. If the set has "<name>.html" (file-based template), run that.
//  2. Otherwise, fall back to "<name>" (root template defined in code).
func execName(t *template.Template, name string) string {
	if tmpl := t.Lookup(name + ".html"); tmpl != nil {
		return name + ".html"
	}
	return name
}

// dict builds a map in templates: {{ dict "k" 1 "k2" "v" }}.
func dict(kv ...any) map[string]any {
	m := make(map[string]any, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, _ := kv[i].(string)
		m[key] = kv[i+1]
	}
	return m
}
