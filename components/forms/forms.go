// components/forms/forms.go
//
// FormRelayer – public component: hosted form pages, the embed script, and
// the submission endpoint.
//
// Context
//   This is the visitor-facing surface.  It serves published forms only:
//
//     GET  /forms/{slug}            hosted form page
//     GET  /embed/{slug}.js         script tag target for third-party pages
//     POST /v1/forms/{ref}/submit   the submission pipeline ({ref} is a
//                                   numeric ID or a slug)
//     GET  /assets/formrelayer.css  shared field styling
//     GET  /assets/formrelayer.js   conditional-logic runtime
//
//   Form lookups go through the singleflight-backed cache, so a hot form
//   costs one DB read per TTL regardless of traffic.
//
//------------------------------------------------------------------------------

package forms

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/formrelayer/formrelayer/internal/component"
	"github.com/formrelayer/formrelayer/internal/form"
	"github.com/formrelayer/formrelayer/internal/render"
	"github.com/formrelayer/formrelayer/internal/requestinfo"
	"github.com/formrelayer/formrelayer/internal/settings"
	"github.com/formrelayer/formrelayer/internal/submission"
	"github.com/formrelayer/formrelayer/internal/view"
)

//go:embed templates/*.html
var templateFS embed.FS

// Forms is the public component.
type Forms struct {
	deps component.Deps
}

func init() {
	component.Register(&Forms{})

	sub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		panic(err)
	}
	view.RegisterSource("forms", sub)
}

func (c *Forms) Name() string      { return "forms" }
func (c *Forms) MountPath() string { return "/" }

// Init receives shared services at boot.
func (c *Forms) Init(deps component.Deps) error {
	c.deps = deps
	return nil
}

// Routes mounts the public endpoints.
func (c *Forms) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/forms/{slug}", c.getFormPage)
	r.Get("/embed/{slug}.js", c.getEmbedScript)
	r.Post("/v1/forms/{ref}/submit", c.postSubmit)
	r.Get("/assets/formrelayer.css", asset("text/css", render.FormCSS))
	r.Get("/assets/formrelayer.js", asset("application/javascript", render.ConditionalJS))
	return r
}

// -----------------------------------------------------------------------------
// Hosted page
// -----------------------------------------------------------------------------

// pageData feeds the hosted form template.
type pageData struct {
	Form         *form.Form
	FieldsHTML   any
	Eff          settings.Effective
	ConsentField string
	Embedded     bool
}

func (c *Forms) getFormPage(w http.ResponseWriter, r *http.Request) {
	f, err := c.deps.FormCache.Get(r.Context(), chi.URLParam(r, "slug"))
	if err != nil || !f.Servable() {
		http.NotFound(w, r)
		return
	}

	fieldsHTML, err := render.Fields(f.Fields, render.ModeLive)
	if err != nil {
		zap.S().Errorw("form render failed", "form", f.ID, "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	eff, err := c.effective(r, f)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	data := pageData{
		Form:         f,
		FieldsHTML:   fieldsHTML,
		Eff:          eff,
		ConsentField: submission.ConsentField,
		Embedded:     r.URL.Query().Get("embed") == "1",
	}
	if err := view.Render(w, "forms", "form", data, view.CacheDefault); err != nil {
		zap.S().Errorw("form page template failed", "form", f.ID, "err", err)
	}
}

// -----------------------------------------------------------------------------
// Embed script
// -----------------------------------------------------------------------------

// getEmbedScript serves a loader that injects the hosted page as an iframe
// sized to its content.  Third-party pages add a single script tag; the
// iframe isolates our CSS and theirs from each other.
func (c *Forms) getEmbedScript(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	f, err := c.deps.FormCache.Get(r.Context(), slug)
	if err != nil || !f.Servable() {
		http.NotFound(w, r)
		return
	}

	base := c.deps.Config.HTTP.BaseURL
	if base == "" {
		base = "//" + r.Host
	}
	src := fmt.Sprintf("%s/forms/%s?embed=1", base, url.PathEscape(slug))

	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=300")
	fmt.Fprintf(w, `(function () {
  var s = document.currentScript;
  var frame = document.createElement("iframe");
  frame.src = %q;
  frame.style.width = "100%%";
  frame.style.border = "0";
  frame.setAttribute("title", %q);
  frame.setAttribute("loading", "lazy");
  window.addEventListener("message", function (ev) {
    if (ev.data && ev.data.frHeight && ev.source === frame.contentWindow) {
      frame.style.height = ev.data.frHeight + "px";
    }
  });
  s.parentNode.insertBefore(frame, s);
})();
`, src, f.Title)
}

// -----------------------------------------------------------------------------
// Submission endpoint
// -----------------------------------------------------------------------------

func (c *Forms) postSubmit(w http.ResponseWriter, r *http.Request) {
	f, err := c.resolveForm(r)
	if err != nil {
		writeJSON(w, http.StatusNotFound, submission.Result{Message: "form not found"})
		return
	}
	if !f.Servable() {
		writeJSON(w, http.StatusNotFound, submission.Result{Message: "form not found"})
		return
	}

	posted, err := parseBody(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, submission.Result{Message: "unreadable request body"})
		return
	}

	eff, err := c.effective(r, f)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, submission.Result{Message: "internal error"})
		return
	}

	res := c.deps.Processor.Process(r.Context(), f, eff, posted, metaFrom(r))
	writeJSON(w, res.Status, res)
}

// resolveForm accepts a numeric ID or a slug in the {ref} position.
func (c *Forms) resolveForm(r *http.Request) (*form.Form, error) {
	ref := chi.URLParam(r, "ref")
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		return c.deps.Forms.ByID(r.Context(), id)
	}
	return c.deps.FormCache.Get(r.Context(), ref)
}

// parseBody accepts form-encoded and JSON payloads.  JSON objects map keys
// to either a string or an array of strings.
func parseBody(r *http.Request) (url.Values, error) {
	ct := r.Header.Get("Content-Type")
	if !strings.HasPrefix(ct, "application/json") {
		if err := r.ParseForm(); err != nil {
			return nil, err
		}
		return r.PostForm, nil
	}

	var loose map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&loose); err != nil {
		return nil, err
	}
	out := make(url.Values, len(loose))
	for k, v := range loose {
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			out[k] = []string{s}
			continue
		}
		var list []string
		if err := json.Unmarshal(v, &list); err == nil {
			out[k] = list
			continue
		}
		out[k] = []string{string(v)}
	}
	return out, nil
}

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

// effective resolves the layered settings for one request.
func (c *Forms) effective(r *http.Request, f *form.Form) (settings.Effective, error) {
	g, err := c.deps.Settings.Load(r.Context())
	if err != nil {
		zap.S().Errorw("settings load failed", "err", err)
		return settings.Effective{}, err
	}
	return settings.Resolve(f.Settings, g), nil
}

// metaFrom extracts submission metadata from the enriched request context.
func metaFrom(r *http.Request) submission.Meta {
	meta := submission.Meta{}
	if info := requestinfo.FromContext(r.Context()); info != nil {
		if info.Geo.IP != nil {
			meta.IP = info.Geo.IP.String()
		}
		meta.UserAgent = info.UA.Raw
		meta.Country = info.Geo.CountryISO
	}
	if meta.IP == "" {
		meta.IP = r.RemoteAddr
	}
	if meta.UserAgent == "" {
		meta.UserAgent = r.UserAgent()
	}
	return meta
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func asset(contentType string, body []byte) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Cache-Control", "public, max-age=3600")
		_, _ = w.Write(body)
	}
}
