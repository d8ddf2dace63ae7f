// internal/component/registry.go
//
// Component registry (cycle-free).
//
// Each concrete component lives under components/<name> and calls
// component.Register() in an init() function.  Boot mounts every component's
// Routes() at its MountPath() and, before serving, invokes Init(deps) so
// components receive their shared collaborators without package-level
// globals.

package component

import (
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"

	"github.com/formrelayer/formrelayer/internal/config"
	"github.com/formrelayer/formrelayer/internal/form"
	"github.com/formrelayer/formrelayer/internal/settings"
	"github.com/formrelayer/formrelayer/internal/submission"
)

// Deps carries the shared services handed to every component at boot.
type Deps struct {
	Config      *config.Config
	DB          *sqlx.DB
	Forms       *form.Repository
	FormCache   *form.Cache
	Submissions *submission.Repository
	Settings    *settings.Repository
	Processor   *submission.Processor
}

// Component contract.
//
// MountPath() is where the router attaches ("/" for public surfaces,
// "/admin" for the builder).  Routes() should mount BOTH page and API
// endpoints, e.g:
//
//	r := chi.NewRouter()
//	r.Get("/forms/{slug}", getForm)
//	r.Route("/v1", func(api chi.Router) { ... })
//	return r
type Component interface {
	Name() string
	MountPath() string
	Init(Deps) error
	Routes() chi.Router
}

var (
	mu       sync.RWMutex
	registry = map[string]Component{}
)

// Register is invoked from component init() functions.
func Register(c Component) {
	mu.Lock()
	registry[c.Name()] = c
	mu.Unlock()
}

// All returns every registered component in arbitrary order.
func All() []Component {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]Component, 0, len(registry))
	for _, c := range registry {
		out = append(out, c)
	}
	return out
}
